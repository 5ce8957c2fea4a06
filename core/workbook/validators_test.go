package workbook

import (
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filmsfather/CampusWoodieVer2/core"
	"github.com/filmsfather/CampusWoodieVer2/core/srs"
)

func newValidator() (*validator.Validate, ut.Translator) {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	validate := validator.New()
	core.InitValidators(validate, translator)
	InitValidators(validate, translator)
	return validate, translator
}

func fieldErrors(t *testing.T, err error, translator ut.Translator) map[string]string {
	t.Helper()
	var vErrs validator.ValidationErrors
	require.ErrorAs(t, err, &vErrs)
	return core.ValidationFieldErrors(vErrs, translator)
}

func TestNewItem_Validate(t *testing.T) {
	validate, translator := newValidator()

	tests := []struct {
		name    string
		item    NewItem
		want    NewItem
		wantErr map[string]string
	}{
		{
			name: "valid mcq",
			item: NewItem{Prompt: " Who directed Rashomon? ", Type: "MCQ", Options: []string{" Kurosawa", "Ozu "}, AnswerKey: " 0 "},
			want: NewItem{Prompt: "Who directed Rashomon?", Type: srs.ItemMCQ, Options: []string{"Kurosawa", "Ozu"}, AnswerKey: "0"},
		},
		{
			name: "valid short drops options",
			item: NewItem{Prompt: "Cut between shots?", Type: "short", Options: []string{"x"}, AnswerKey: "Montage"},
			want: NewItem{Prompt: "Cut between shots?", Type: srs.ItemShort, AnswerKey: "Montage"},
		},
		{
			name:    "blank prompt",
			item:    NewItem{Prompt: "  ", Type: srs.ItemShort, AnswerKey: "a"},
			wantErr: map[string]string{"prompt": "this field cannot be blank"},
		},
		{
			name:    "unknown type",
			item:    NewItem{Prompt: "p", Type: "essay", AnswerKey: "a"},
			wantErr: map[string]string{"type": "type must be one of [mcq short]"},
		},
		{
			name: "mcq with one option",
			item: NewItem{Prompt: "p", Type: srs.ItemMCQ, Options: []string{"a"}, AnswerKey: "0"},
			wantErr: map[string]string{
				"options": mcqOptionsText,
			},
		},
		{
			name:    "mcq key out of range",
			item:    NewItem{Prompt: "p", Type: srs.ItemMCQ, Options: []string{"a", "b"}, AnswerKey: "2"},
			wantErr: map[string]string{"answer_key": mcqKeyText},
		},
		{
			name:    "mcq key not a number",
			item:    NewItem{Prompt: "p", Type: srs.ItemMCQ, Options: []string{"a", "b"}, AnswerKey: "b"},
			wantErr: map[string]string{"answer_key": mcqKeyText},
		},
		{
			name:    "short without key",
			item:    NewItem{Prompt: "p", Type: srs.ItemShort, AnswerKey: " "},
			wantErr: map[string]string{"answer_key": shortKeyText},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.item.Validate(validate)
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, fieldErrors(t, err, translator))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, tt.item)
		})
	}
}

func TestNewWorkbook_Validate(t *testing.T) {
	validate, translator := newValidator()
	week := 0

	tests := []struct {
		name    string
		wb      NewWorkbook
		wantErr map[string]string
	}{
		{
			name: "valid srs with items",
			wb: NewWorkbook{Title: "Film terms", Subject: "Directing", Type: "srs", Items: []NewItem{
				{Prompt: "p", Type: srs.ItemShort, AnswerKey: "a"},
			}},
		},
		{name: "valid pdf", wb: NewWorkbook{Title: "Reading", Subject: "writing", Type: TypePDF}},
		{
			name:    "missing fields",
			wb:      NewWorkbook{},
			wantErr: map[string]string{"title": "this field cannot be blank", "subject": "this field is required", "type": "this field is required"},
		},
		{
			name:    "invalid week",
			wb:      NewWorkbook{Title: "t", Subject: SubjectResearch, Type: TypeEssay, Week: &week},
			wantErr: map[string]string{"week": "week must be 1 or greater"},
		},
		{
			name: "items on a non-SRS workbook",
			wb: NewWorkbook{Title: "t", Subject: SubjectResearch, Type: TypeEssay, Items: []NewItem{
				{Prompt: "p", Type: srs.ItemShort, AnswerKey: "a"},
			}},
			wantErr: map[string]string{"items": srsItemsText},
		},
		{
			name: "invalid nested item",
			wb: NewWorkbook{Title: "t", Subject: SubjectResearch, Type: TypeSRS, Items: []NewItem{
				{Prompt: "p", Type: srs.ItemShort},
			}},
			wantErr: map[string]string{"items[0].answer_key": shortKeyText},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.wb.Validate(validate)
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, fieldErrors(t, err, translator))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestNewItems_Validate(t *testing.T) {
	validate, translator := newValidator()

	err := (&NewItems{}).Validate(validate)
	assert.Equal(t, map[string]string{"items": "this field is required"}, fieldErrors(t, err, translator))

	nis := NewItems{Items: []NewItem{
		{Prompt: " ok ", Type: srs.ItemShort, AnswerKey: "a"},
		{Prompt: "p", Type: srs.ItemMCQ, Options: []string{"a", "b"}, AnswerKey: "5"},
	}}
	err = nis.Validate(validate)
	assert.Equal(t, map[string]string{"items[1].answer_key": mcqKeyText}, fieldErrors(t, err, translator))
	assert.Equal(t, "ok", nis.Items[0].Prompt)
}

func TestUpdateItem_Apply(t *testing.T) {
	orig := Item{ID: "i1", Prompt: "old", Type: srs.ItemMCQ, Options: []string{"a", "b"}, AnswerKey: "1"}
	prompt := "new"
	key := "0"

	got := UpdateItem{Prompt: &prompt, AnswerKey: &key}.Apply(orig)
	assert.Equal(t, NewItem{Prompt: "new", Type: srs.ItemMCQ, Options: []string{"a", "b"}, AnswerKey: "0"}, got)

	typ := srs.ItemShort
	got = UpdateItem{Type: &typ, AnswerKey: &prompt}.Apply(orig)
	assert.Equal(t, srs.ItemShort, got.Type)
	assert.Equal(t, "new", got.AnswerKey)
}

func TestItem_Question(t *testing.T) {
	it := Item{Type: srs.ItemMCQ, Options: []string{"a", "b", "c"}, AnswerKey: "2"}
	two := 2
	assert.True(t, srs.Grade(it.Question(), srs.Submission{SelectedOption: &two}))
}
