package workbook

import (
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/filmsfather/CampusWoodieVer2/core/srs"
)

const optionsSeparator = "|"

// Sheet columns, in order.
const (
	colPrompt = iota
	colType
	colOptions
	colAnswerKey
)

var ErrEmptySheet = errors.New("spreadsheet has no items")

// SheetRow is an item read from a spreadsheet along with its 1-based row number.
type SheetRow struct {
	Row  int
	Item NewItem
}

// ParseItemsSheet reads items from the first sheet of an xlsx document.
// The first row is a header. Columns are prompt, type (mcq|short), options separated by "|" and answer key.
// Blank rows are skipped. Items are not validated.
func ParseItemsSheet(r io.Reader) ([]SheetRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "opening spreadsheet")
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptySheet
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, errors.Wrap(err, "reading rows")
	}

	items := make([]SheetRow, 0, len(rows))
	for i, row := range rows {
		if i == 0 || isBlankRow(row) {
			continue
		}
		ni := NewItem{
			Prompt:    cell(row, colPrompt),
			Type:      srs.ItemType(strings.ToLower(cell(row, colType))),
			AnswerKey: cell(row, colAnswerKey),
		}
		if opts := cell(row, colOptions); opts != "" {
			ni.Options = strings.Split(opts, optionsSeparator)
		}
		items = append(items, SheetRow{Row: i + 1, Item: ni})
	}
	if len(items) == 0 {
		return nil, ErrEmptySheet
	}
	return items, nil
}

func cell(row []string, col int) string {
	if col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
