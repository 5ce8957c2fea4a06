package assignment

import (
	"math"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/filmsfather/CampusWoodieVer2/core"
)

// Targets
const (
	TargetClass   = "class"
	TargetStudent = "student"
)

type Assignment struct {
	ID         string    `json:"id"`
	WorkbookID string    `json:"workbook_id"`
	TargetType string    `json:"target_type"`
	TargetID   string    `json:"target_id"`
	DueAt      time.Time `json:"due_at"`
	CreatedBy  string    `json:"created_by,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewAssignment contains information needed to assign a workbook to a class or a student.
type NewAssignment struct {
	WorkbookID string    `json:"workbook_id" validate:"notblank"`
	TargetType string    `json:"target_type" validate:"required,oneof=class student"`
	TargetID   string    `json:"target_id" validate:"notblank"`
	DueAt      time.Time `json:"due_at" validate:"required"`
}

func (na *NewAssignment) Validate(validate *validator.Validate) error {
	na.WorkbookID = core.CleanString(na.WorkbookID)
	na.TargetType = core.CleanString(na.TargetType, true /* lower */)
	na.TargetID = core.CleanString(na.TargetID)
	na.DueAt = na.DueAt.UTC()
	return validate.Struct(na)
}

// Stats summarizes how many learners completed an assignment.
type Stats struct {
	AssignmentID string `json:"assignment_id"`
	Total        int    `json:"total"`
	Completed    int    `json:"completed"`
	Incomplete   int    `json:"incomplete"`
	Rate         int    `json:"completion_rate"` // rounded percentage
}

func newStats(assignmentID string, total, completed int) Stats {
	st := Stats{AssignmentID: assignmentID, Total: total, Completed: completed, Incomplete: total - completed}
	if total > 0 {
		st.Rate = int(math.Round(100 * float64(completed) / float64(total)))
	}
	return st
}
