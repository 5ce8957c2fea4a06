package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/filmsfather/CampusWoodieVer2/core/workbook"
)

func (cli *commandLine) importItemsCmd() *cobra.Command {
	var wbID, path string
	cmd := &cobra.Command{
		Use:   "importitems",
		Short: "Append the items of an xlsx sheet to an SRS workbook",
		Long: "Append the items of an xlsx sheet to an SRS workbook.\n" +
			"The first row is a header; columns are prompt, type (mcq|short), options separated by \"|\" and answer key.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if wbID == "" || path == "" {
				_ = cmd.Help()
				return errHelp
			}
			f, err := os.Open(path)
			if err != nil {
				return errors.Wrap(err, "opening sheet")
			}
			defer f.Close()

			rows, err := workbook.ParseItemsSheet(f)
			if err != nil {
				return err
			}
			items := make([]workbook.NewItem, 0, len(rows))
			for _, row := range rows {
				ni := row.Item
				if err = ni.Validate(cli.validate); err != nil {
					return errors.Wrap(cli.explain(err), fmt.Sprintf("row %d", row.Row))
				}
				items = append(items, ni)
			}

			added, err := cli.wbSvc.AddItems(cmd.Context(), wbID, items...)
			if err != nil {
				return cli.explain(errors.Wrap(err, "adding items"))
			}
			cli.printf("%d item(s) imported\n", len(added))
			return nil
		},
	}
	cmd.Flags().StringVar(&wbID, "workbook", "", "workbook id")
	cmd.Flags().StringVar(&path, "file", "", "path of the xlsx file")
	return cmd
}
