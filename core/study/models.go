package study

import (
	"math"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/filmsfather/CampusWoodieVer2/core"
	"github.com/filmsfather/CampusWoodieVer2/core/srs"
	"github.com/filmsfather/CampusWoodieVer2/core/workbook"
)

// Task statuses
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
)

var statusRank = map[string]int{StatusPending: 0, StatusInProgress: 1, StatusCompleted: 2}

// NextStatus computes the status of a task after a review. A status never regresses.
func NextStatus(current string, started bool, progressPct int) string {
	next := current
	switch {
	case progressPct >= 100:
		next = StatusCompleted
	case started || progressPct > 0:
		next = StatusInProgress
	}
	if statusRank[next] < statusRank[current] {
		return current
	}
	return next
}

// Task is a learner's copy of an assignment.
type Task struct {
	ID            string    `json:"id"`
	AssignmentID  string    `json:"assignment_id"`
	WorkbookID    string    `json:"workbook_id"`
	WorkbookTitle string    `json:"workbook_title"`
	WorkbookType  string    `json:"workbook_type"`
	RequiredCount int       `json:"required_count,omitempty"` // viewing notes needed, VIEWING tasks only
	UserID        string    `json:"user_id"`
	AssignedBy    string    `json:"assigned_by,omitempty"`
	DueAt         time.Time `json:"due_at"`
	Status        string    `json:"status"`
	ProgressPct   int       `json:"progress_pct"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (t Task) IsSRS() bool { return t.WorkbookType == workbook.TypeSRS }

// notesProgress is the progress of a VIEWING task holding n notes.
func (t Task) notesProgress(n int) int {
	required := t.RequiredCount
	if required < 1 {
		required = 1
	}
	if n >= required {
		return 100
	}
	return int(math.Round(100 * float64(n) / float64(required)))
}

// Prompt is a question as presented to a learner, without its answer key.
type Prompt struct {
	ItemID   string       `json:"item_id"`
	Position int          `json:"position"`
	Prompt   string       `json:"prompt"`
	Type     srs.ItemType `json:"type"`
	Options  []string     `json:"options,omitempty"`
}

func newPrompt(it workbook.Item) *Prompt {
	return &Prompt{ItemID: it.ID, Position: it.Position, Prompt: it.Prompt, Type: it.Type, Options: it.Options}
}

// NextResult is the next question to study. Question is nil when nothing is due.
type NextResult struct {
	Question    *Prompt    `json:"question"`
	NextDueAt   *time.Time `json:"next_due_at,omitempty"` // set when nothing is due yet
	ProgressPct int        `json:"progress_pct"`
	Status      string     `json:"status"`
	Mastered    int        `json:"mastered"`
	Total       int        `json:"total"`
}

// Submission is a learner's answer to one item.
type Submission struct {
	ItemID         string  `json:"item_id" validate:"notblank"`
	SelectedOption *int    `json:"selected_option" validate:"required_without=ResponseText"`
	ResponseText   *string `json:"response_text"`
}

func (s *Submission) Validate(validate *validator.Validate) error {
	s.ItemID = core.CleanString(s.ItemID)
	return validate.Struct(s)
}

func (s Submission) grading() srs.Submission {
	return srs.Submission{SelectedOption: s.SelectedOption, ResponseText: s.ResponseText}
}

type SubmitResult struct {
	Correct     bool            `json:"correct"`
	Correctness srs.Correctness `json:"correctness"`
	Streak      int             `json:"streak"`
	NextDueAt   time.Time       `json:"next_due_at"`
	ProgressPct int             `json:"progress_pct"`
	Status      string          `json:"status"`
}

type ProgressResult struct {
	TaskID      string `json:"task_id"`
	Status      string `json:"status"`
	ProgressPct int    `json:"progress_pct"`
	Mastered    int    `json:"mastered"`
	Due         int    `json:"due"`
	Total       int    `json:"total"`
}

// Answer is the latest response of a learner to an item of a task.
type Answer struct {
	ID             string          `json:"id"`
	TaskID         string          `json:"task_id"`
	ItemID         string          `json:"item_id"`
	ResponseText   *string         `json:"response_text,omitempty"`
	SelectedOption *int            `json:"selected_option,omitempty"`
	Correctness    srs.Correctness `json:"correctness"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// Review is everything persisted after grading one submission.
type Review struct {
	Answer      Answer
	State       srs.ReviewState
	TaskStatus  string
	ProgressPct int
	At          time.Time
}

// buildDeck pairs the ordered items with their review states.
func buildDeck(items []workbook.Item, states map[string]*srs.ReviewState) []srs.Card {
	cards := make([]srs.Card, len(items))
	for i, it := range items {
		cards[i] = srs.Card{ID: it.ID, State: states[it.ID]}
	}
	return cards
}

// nextDueAt returns the earliest due time among the cards that are not mastered.
func nextDueAt(cards []srs.Card) *time.Time {
	var next *time.Time
	for _, c := range cards {
		if c.State == nil || c.State.Mastered() {
			continue
		}
		if next == nil || c.State.NextDueAt.Before(*next) {
			due := c.State.NextDueAt
			next = &due
		}
	}
	return next
}

// TextSubmission is the text handed in for an ESSAY or LECTURE task.
// SubmittedAt is set by the final submission, after which the text is frozen.
type TextSubmission struct {
	TaskID      string     `json:"task_id"`
	Text        string     `json:"text"`
	SubmittedAt *time.Time `json:"submitted_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NewTextSubmission saves a draft, or hands the text in when Final is set.
type NewTextSubmission struct {
	Text  string `json:"text" validate:"notblank,max=20000"`
	Final bool   `json:"final"`
}

func (s *NewTextSubmission) Validate(validate *validator.Validate) error {
	s.Text = core.CleanString(s.Text)
	return validate.Struct(s)
}

// ViewingNote is a learner's note about a film watched for a VIEWING task.
type ViewingNote struct {
	ID        string    `json:"id"`
	TaskID    string    `json:"task_id"`
	Title     string    `json:"title"`
	Country   string    `json:"country,omitempty"`
	Director  string    `json:"director,omitempty"`
	Genre     string    `json:"genre,omitempty"`
	Subgenre  string    `json:"subgenre,omitempty"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type NewViewingNote struct {
	Title    string `json:"title" validate:"notblank,max=200"`
	Country  string `json:"country" validate:"max=100"`
	Director string `json:"director" validate:"max=100"`
	Genre    string `json:"genre" validate:"max=100"`
	Subgenre string `json:"subgenre" validate:"max=100"`
	Notes    string `json:"notes" validate:"notblank,max=20000"`
}

func (n *NewViewingNote) Validate(validate *validator.Validate) error {
	n.Title = core.CleanString(n.Title)
	n.Country = core.CleanString(n.Country)
	n.Director = core.CleanString(n.Director)
	n.Genre = core.CleanString(n.Genre)
	n.Subgenre = core.CleanString(n.Subgenre)
	n.Notes = core.CleanString(n.Notes)
	return validate.Struct(n)
}

type NoteResult struct {
	Note        ViewingNote `json:"note"`
	Count       int         `json:"count"`
	Required    int         `json:"required"`
	ProgressPct int         `json:"progress_pct"`
	Status      string      `json:"status"`
}
