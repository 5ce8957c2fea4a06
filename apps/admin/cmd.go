package main

import (
	"errors"
	"fmt"
	"io"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/filmsfather/CampusWoodieVer2/core"
	"github.com/filmsfather/CampusWoodieVer2/core/class"
	"github.com/filmsfather/CampusWoodieVer2/core/user"
	"github.com/filmsfather/CampusWoodieVer2/core/workbook"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	db         *sqlx.DB
	usrSvc     user.Service
	classSvc   class.Service
	wbSvc      workbook.Service
	validate   *validator.Validate
	translator ut.Translator
	out        io.Writer
}

func (cli *commandLine) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "admin",
		Short:         "Campus Woodie administration",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return errHelp
		},
	}
	root.SetOut(cli.out)
	root.SetErr(cli.out)
	root.CompletionOptions.DisableDefaultCmd = true

	root.AddCommand(
		cli.migrateCmd(),
		cli.addUserCmd(),
		cli.addClassCmd(),
		cli.enrollCmd(),
		cli.importItemsCmd(),
	)
	return root
}

// run executes the command line, args[0] being the program name.
func (cli *commandLine) run(args []string) error {
	root := cli.rootCmd()
	root.SetArgs(args[1:])
	return root.Execute()
}

func (cli *commandLine) printf(format string, a ...interface{}) {
	_, _ = fmt.Fprintf(cli.out, format, a...)
}

// explain formats validation errors for the terminal.
func (cli *commandLine) explain(err error) error {
	var vErrs validator.ValidationErrors
	if errors.As(err, &vErrs) {
		return fmt.Errorf("invalid input: %v", core.ValidationFieldErrors(vErrs, cli.translator))
	}
	var vErr *core.ValidationError
	if errors.As(err, &vErr) && len(vErr.Fields) > 0 {
		return fmt.Errorf("invalid input: %v", vErr.FieldMap())
	}
	return err
}
