package review

import (
	"math"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/filmsfather/CampusWoodieVer2/core"
)

// Submission is an essay handed in by a learner, with its review if any.
type Submission struct {
	TaskID        string    `json:"task_id"`
	AssignmentID  string    `json:"assignment_id"`
	AssignedBy    string    `json:"assigned_by,omitempty"`
	WorkbookTitle string    `json:"workbook_title"`
	StudentID     string    `json:"student_id"`
	StudentName   string    `json:"student_name"`
	Text          string    `json:"text"`
	SubmittedAt   time.Time `json:"submitted_at"`
	Review        *Review   `json:"review,omitempty"`
}

func (s Submission) Reviewed() bool { return s.Review != nil }

type Review struct {
	TaskID     string    `json:"task_id"`
	Grade      string    `json:"grade,omitempty"`
	Feedback   string    `json:"feedback,omitempty"`
	ReviewedBy string    `json:"reviewed_by,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NewReview grades an essay. At least one of grade and feedback is given.
type NewReview struct {
	Grade    string `json:"grade" validate:"required_without=Feedback,max=20"`
	Feedback string `json:"feedback" validate:"max=5000"`
}

func (nr *NewReview) Validate(validate *validator.Validate) error {
	nr.Grade = core.CleanString(nr.Grade)
	nr.Feedback = core.CleanString(nr.Feedback)
	return validate.Struct(nr)
}

type Stats struct {
	Total    int `json:"total_submissions"`
	Reviewed int `json:"reviewed"`
	Pending  int `json:"pending"`
	Rate     int `json:"review_rate"` // rounded percentage
}

func newStats(subs []Submission) Stats {
	st := Stats{Total: len(subs)}
	for _, s := range subs {
		if s.Reviewed() {
			st.Reviewed++
		}
	}
	st.Pending = st.Total - st.Reviewed
	if st.Total > 0 {
		st.Rate = int(math.Round(100 * float64(st.Reviewed) / float64(st.Total)))
	}
	return st
}
