package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/filmsfather/CampusWoodieVer2/core"
	"github.com/filmsfather/CampusWoodieVer2/core/assignment"
	"github.com/filmsfather/CampusWoodieVer2/core/study"
)

type assignmentRow struct {
	ID         string      `db:"id"`
	WorkbookID string      `db:"workbook_id"`
	TargetType string      `db:"target_type"`
	TargetID   string      `db:"target_id"`
	DueAt      time.Time   `db:"due_at"`
	CreatedBy  null.String `db:"created_by"`
	CreatedAt  time.Time   `db:"created_at"`
}

func (row assignmentRow) assignment() assignment.Assignment {
	return assignment.Assignment{
		ID:         row.ID,
		WorkbookID: row.WorkbookID,
		TargetType: row.TargetType,
		TargetID:   row.TargetID,
		DueAt:      row.DueAt.UTC(),
		CreatedBy:  row.CreatedBy.String,
		CreatedAt:  row.CreatedAt.UTC(),
	}
}

const assignmentColumns = "id, workbook_id, target_type, target_id, due_at, created_by, created_at"

type assignmentRepository struct {
	repository
}

var _ assignment.Repository = (*assignmentRepository)(nil) // interface compliance check

func NewAssignmentRepository(exec core.DBExecutor) *assignmentRepository {
	return &assignmentRepository{repository{exec: exec}}
}

func (repo assignmentRepository) CreateAssignment(ctx context.Context, a assignment.Assignment, exec ...core.DBExecutor) (assignment.Assignment, error) {
	exe := repo.getExec(exec)
	row := assignmentRow{
		ID:         uuid.NewString(),
		WorkbookID: a.WorkbookID,
		TargetType: a.TargetType,
		TargetID:   a.TargetID,
		DueAt:      a.DueAt.UTC(),
		CreatedBy:  null.NewString(a.CreatedBy, a.CreatedBy != ""),
		CreatedAt:  a.CreatedAt.UTC(),
	}

	q := exe.Rebind("INSERT INTO assignments (" + assignmentColumns + ") VALUES (?, ?, ?, ?, ?, ?, ?)")
	_, err := exe.ExecContext(ctx, q, row.ID, row.WorkbookID, row.TargetType, row.TargetID, row.DueAt, row.CreatedBy, row.CreatedAt)
	if err != nil {
		return assignment.Assignment{}, errors.Wrap(err, "inserting assignment")
	}
	return row.assignment(), nil
}

func (repo assignmentRepository) GetAssignmentByID(ctx context.Context, id string, exec ...core.DBExecutor) (assignment.Assignment, error) {
	exe := repo.getExec(exec)
	var row assignmentRow
	q := exe.Rebind("SELECT " + assignmentColumns + " FROM assignments WHERE id = ?")
	if err := exe.GetContext(ctx, &row, q, id); err != nil {
		return assignment.Assignment{}, notFound(errors.Wrap(err, "selecting assignment"), assignment.ErrNotFound)
	}
	return row.assignment(), nil
}

func (repo assignmentRepository) CreateTasks(ctx context.Context, assignmentID string, userIDs []string, now time.Time, exec ...core.DBExecutor) (int, error) {
	exe := repo.getExec(exec)
	q := exe.Rebind(`
		INSERT INTO student_tasks (id, assignment_id, user_id, status, progress_pct, created_at, updated_at)
		VALUES (?, ?, ?, ?, 0, ?, ?)
		ON CONFLICT (assignment_id, user_id) DO NOTHING`)

	now = now.UTC()
	var created int64
	for _, userID := range userIDs {
		res, err := exe.ExecContext(ctx, q, uuid.NewString(), assignmentID, userID, study.StatusPending, now, now)
		if err != nil {
			return 0, errors.Wrap(err, "inserting task")
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, errors.Wrap(err, "counting inserted tasks")
		}
		created += n
	}
	return int(created), nil
}

func (repo assignmentRepository) CountTasks(ctx context.Context, assignmentID string, exec ...core.DBExecutor) (int, int, error) {
	exe := repo.getExec(exec)
	var counts struct {
		Total     int `db:"total"`
		Completed int `db:"completed"`
	}
	q := exe.Rebind(`
		SELECT COUNT(*) AS total,
		       COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS completed
		FROM student_tasks WHERE assignment_id = ?`)
	if err := exe.GetContext(ctx, &counts, q, study.StatusCompleted, assignmentID); err != nil {
		return 0, 0, errors.Wrap(err, "counting tasks")
	}
	return counts.Total, counts.Completed, nil
}
