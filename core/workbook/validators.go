package workbook

import (
	"strconv"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/filmsfather/CampusWoodieVer2/core"
	"github.com/filmsfather/CampusWoodieVer2/core/srs"
)

var (
	mcqOptionsTag  = "mcqoptions"
	mcqOptionsText = "multiple-choice items need at least 2 options"

	mcqKeyTag  = "mcqkey"
	mcqKeyText = "must be the index of one of the options, starting at 0"

	shortKeyTag  = "shortkey"
	shortKeyText = "the expected answer is required"

	srsItemsTag  = "srsitems"
	srsItemsText = "only SRS workbooks have items"
)

// InitValidators registers the workbook validators and their translations.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	validate.RegisterStructValidation(itemStructValidation, NewItem{})
	validate.RegisterStructValidation(workbookStructValidation, NewWorkbook{})

	core.RegisterCustomTranslation(validate, translator, mcqOptionsTag, mcqOptionsText)
	core.RegisterCustomTranslation(validate, translator, mcqKeyTag, mcqKeyText)
	core.RegisterCustomTranslation(validate, translator, shortKeyTag, shortKeyText)
	core.RegisterCustomTranslation(validate, translator, srsItemsTag, srsItemsText)
}

// itemStructValidation checks the answer key against the item type.
func itemStructValidation(sl validator.StructLevel) {
	ni, ok := sl.Current().Interface().(NewItem)
	if !ok {
		return
	}

	switch ni.Type {
	case srs.ItemMCQ:
		if len(ni.Options) < 2 {
			sl.ReportError(ni.Options, "options", "Options", mcqOptionsTag, "")
		}
		idx, err := strconv.Atoi(ni.AnswerKey)
		if err != nil || idx < 0 || idx >= len(ni.Options) {
			sl.ReportError(ni.AnswerKey, "answer_key", "AnswerKey", mcqKeyTag, "")
		}
	case srs.ItemShort:
		if ni.AnswerKey == "" {
			sl.ReportError(ni.AnswerKey, "answer_key", "AnswerKey", shortKeyTag, "")
		}
	}
}

func workbookStructValidation(sl validator.StructLevel) {
	nw, ok := sl.Current().Interface().(NewWorkbook)
	if !ok {
		return
	}
	if len(nw.Items) > 0 && nw.Type != TypeSRS {
		sl.ReportError(nw.Items, "items", "Items", srsItemsTag, "")
	}
}
