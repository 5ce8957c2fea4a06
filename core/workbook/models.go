package workbook

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/filmsfather/CampusWoodieVer2/core"
	"github.com/filmsfather/CampusWoodieVer2/core/srs"
)

// Subjects
const (
	SubjectDirecting  = "directing"
	SubjectWriting    = "writing"
	SubjectResearch   = "research"
	SubjectIntegrated = "integrated"
)

// Types
const (
	TypeSRS     = "SRS"
	TypePDF     = "PDF"
	TypeEssay   = "ESSAY"
	TypeViewing = "VIEWING"
	TypeLecture = "LECTURE"
)

type Workbook struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Subject  string `json:"subject"`
	Type     string `json:"type"`
	Week     *int   `json:"week,omitempty"`
	IsCommon bool   `json:"is_common"`
	// RequiredCount is the number of viewing notes completing a VIEWING task, 0 for other types.
	RequiredCount int       `json:"required_count,omitempty"`
	CreatedBy     string    `json:"created_by,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	Items         []Item    `json:"items"`
}

func (wb Workbook) IsSRS() bool { return wb.Type == TypeSRS }

// IsTextSubmitted reports whether tasks of the workbook are completed by submitting a text.
func IsTextSubmitted(typ string) bool { return typ == TypeEssay || typ == TypeLecture }

// Item is a question of an SRS workbook. Items are ordered by Position, starting at 1.
type Item struct {
	ID         string       `json:"id"`
	WorkbookID string       `json:"workbook_id"`
	Position   int          `json:"position"`
	Prompt     string       `json:"prompt"`
	Type       srs.ItemType `json:"type"`
	Options    []string     `json:"options,omitempty"`
	AnswerKey  string       `json:"answer_key"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

// Question returns the grading view of the item.
func (it Item) Question() srs.Question {
	return srs.Question{Type: it.Type, Options: it.Options, AnswerKey: it.AnswerKey}
}

// NewWorkbook contains information needed to create a new Workbook.
type NewWorkbook struct {
	Title    string `json:"title" validate:"notblank,max=200"`
	Subject  string `json:"subject" validate:"required,oneof=directing writing research integrated"`
	Type     string `json:"type" validate:"required,oneof=SRS PDF ESSAY VIEWING LECTURE"`
	Week     *int   `json:"week" validate:"omitempty,min=1,max=53"`
	IsCommon bool   `json:"is_common"`
	// RequiredCount defaults to 1 on VIEWING workbooks and is ignored on others.
	RequiredCount *int      `json:"required_count" validate:"omitempty,min=1,max=50"`
	Items         []NewItem `json:"items" validate:"dive"`
}

func (nw NewWorkbook) requiredCount() int {
	switch {
	case nw.Type != TypeViewing:
		return 0
	case nw.RequiredCount != nil:
		return *nw.RequiredCount
	default:
		return 1
	}
}

func (nw *NewWorkbook) Validate(validate *validator.Validate) error {
	nw.Title = core.CleanString(nw.Title)
	nw.Subject = core.CleanString(nw.Subject, true /* lower */)
	nw.Type = strings.ToUpper(core.CleanString(nw.Type))
	for i := range nw.Items {
		nw.Items[i].clean()
	}
	return validate.Struct(nw)
}

// NewItem contains information needed to add an Item to a workbook.
type NewItem struct {
	Prompt    string       `json:"prompt" validate:"notblank"`
	Type      srs.ItemType `json:"type" validate:"required,oneof=mcq short"`
	Options   []string     `json:"options" validate:"omitempty,dive,notblank"`
	AnswerKey string       `json:"answer_key"`
}

func (ni *NewItem) clean() {
	ni.Prompt = core.CleanString(ni.Prompt)
	ni.Type = srs.ItemType(core.CleanString(string(ni.Type), true /* lower */))
	ni.AnswerKey = core.CleanString(ni.AnswerKey)
	if ni.Type != srs.ItemMCQ {
		ni.Options = nil
	}
	for i, opt := range ni.Options {
		ni.Options[i] = core.CleanString(opt)
	}
}

func (ni *NewItem) Validate(validate *validator.Validate) error {
	ni.clean()
	return validate.Struct(ni)
}

// NewItems is a batch of items appended to a workbook.
type NewItems struct {
	Items []NewItem `json:"items" validate:"required,min=1,dive"`
}

func (nis *NewItems) Validate(validate *validator.Validate) error {
	for i := range nis.Items {
		nis.Items[i].clean()
	}
	return validate.Struct(nis)
}

// UpdateItem defines what may be modified on an existing Item. Nil fields are kept.
type UpdateItem struct {
	Prompt    *string       `json:"prompt"`
	Type      *srs.ItemType `json:"type"`
	Options   []string      `json:"options"`
	AnswerKey *string       `json:"answer_key"`
}

// Apply merges the update onto orig. The result still needs validating.
func (ui UpdateItem) Apply(orig Item) NewItem {
	ni := NewItem{
		Prompt:    orig.Prompt,
		Type:      orig.Type,
		Options:   append([]string(nil), orig.Options...),
		AnswerKey: orig.AnswerKey,
	}
	if ui.Prompt != nil {
		ni.Prompt = *ui.Prompt
	}
	if ui.Type != nil {
		ni.Type = *ui.Type
	}
	if ui.Options != nil {
		ni.Options = ui.Options
	}
	if ui.AnswerKey != nil {
		ni.AnswerKey = *ui.AnswerKey
	}
	return ni
}
