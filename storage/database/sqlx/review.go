package sqlxrepos

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/filmsfather/CampusWoodieVer2/core"
	"github.com/filmsfather/CampusWoodieVer2/core/review"
	"github.com/filmsfather/CampusWoodieVer2/core/workbook"
)

type submissionRow struct {
	TaskID        string      `db:"task_id"`
	AssignmentID  string      `db:"assignment_id"`
	AssignedBy    null.String `db:"assigned_by"`
	WorkbookTitle string      `db:"workbook_title"`
	StudentID     string      `db:"student_id"`
	StudentName   string      `db:"student_name"`
	Text          string      `db:"response_text"`
	SubmittedAt   time.Time   `db:"submitted_at"`
	Grade         null.String `db:"grade"`
	Feedback      null.String `db:"feedback"`
	ReviewedBy    null.String `db:"reviewed_by"`
	ReviewedAt    null.Time   `db:"review_created_at"`
	RevisedAt     null.Time   `db:"review_updated_at"`
}

func (row submissionRow) submission() review.Submission {
	sub := review.Submission{
		TaskID:        row.TaskID,
		AssignmentID:  row.AssignmentID,
		AssignedBy:    row.AssignedBy.String,
		WorkbookTitle: row.WorkbookTitle,
		StudentID:     row.StudentID,
		StudentName:   row.StudentName,
		Text:          row.Text,
		SubmittedAt:   row.SubmittedAt.UTC(),
	}
	if row.ReviewedAt.Valid {
		sub.Review = &review.Review{
			TaskID:     row.TaskID,
			Grade:      row.Grade.String,
			Feedback:   row.Feedback.String,
			ReviewedBy: row.ReviewedBy.String,
			CreatedAt:  row.ReviewedAt.Time.UTC(),
			UpdatedAt:  row.RevisedAt.Time.UTC(),
		}
	}
	return sub
}

// essays that are not handed in yet are not listed
const selectSubmissions = `
	SELECT t.id AS task_id, t.assignment_id, a.created_by AS assigned_by, w.title AS workbook_title,
	       t.user_id AS student_id, u.name AS student_name, s.response_text, s.submitted_at,
	       r.grade, r.feedback, r.reviewed_by, r.created_at AS review_created_at, r.updated_at AS review_updated_at
	FROM text_submissions s
	JOIN student_tasks t ON t.id = s.student_task_id
	JOIN assignments a ON a.id = t.assignment_id
	JOIN workbooks w ON w.id = a.workbook_id
	JOIN users u ON u.id = t.user_id
	LEFT JOIN essay_reviews r ON r.student_task_id = t.id
	WHERE s.submitted_at IS NOT NULL AND w.type = ?`

type reviewRepository struct {
	repository
}

var _ review.Repository = (*reviewRepository)(nil) // interface compliance check

func NewReviewRepository(exec core.DBExecutor) *reviewRepository {
	return &reviewRepository{repository{exec: exec}}
}

func (repo reviewRepository) GetSubmission(ctx context.Context, taskID string, exec ...core.DBExecutor) (review.Submission, error) {
	exe := repo.getExec(exec)
	var row submissionRow
	q := exe.Rebind(selectSubmissions + " AND t.id = ?")
	if err := exe.GetContext(ctx, &row, q, workbook.TypeEssay, taskID); err != nil {
		return review.Submission{}, notFound(errors.Wrap(err, "selecting essay submission"), review.ErrNotFound)
	}
	return row.submission(), nil
}

func (repo reviewRepository) ListSubmissions(ctx context.Context, teacherID string, exec ...core.DBExecutor) ([]review.Submission, error) {
	exe := repo.getExec(exec)
	q := selectSubmissions
	args := []interface{}{workbook.TypeEssay}
	if teacherID != "" {
		q += " AND a.created_by = ?"
		args = append(args, teacherID)
	}

	var rows []submissionRow
	if err := exe.SelectContext(ctx, &rows, exe.Rebind(q+" ORDER BY s.submitted_at, t.id"), args...); err != nil {
		return nil, errors.Wrap(err, "selecting essay submissions")
	}
	subs := make([]review.Submission, 0, len(rows))
	for _, row := range rows {
		subs = append(subs, row.submission())
	}
	return subs, nil
}

func (repo reviewRepository) SaveReview(ctx context.Context, rv review.Review, exec ...core.DBExecutor) (review.Review, error) {
	exe := repo.getExec(exec)
	q := exe.Rebind(`
		INSERT INTO essay_reviews (student_task_id, grade, feedback, reviewed_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (student_task_id) DO UPDATE SET
			grade = excluded.grade,
			feedback = excluded.feedback,
			reviewed_by = excluded.reviewed_by,
			updated_at = excluded.updated_at`)
	_, err := exe.ExecContext(ctx, q,
		rv.TaskID,
		null.NewString(rv.Grade, rv.Grade != ""), null.NewString(rv.Feedback, rv.Feedback != ""),
		null.NewString(rv.ReviewedBy, rv.ReviewedBy != ""),
		rv.CreatedAt.UTC(), rv.UpdatedAt.UTC())
	if err != nil {
		return review.Review{}, errors.Wrap(err, "upserting essay review")
	}

	var createdAt time.Time
	q = exe.Rebind("SELECT created_at FROM essay_reviews WHERE student_task_id = ?")
	if err = exe.GetContext(ctx, &createdAt, q, rv.TaskID); err != nil {
		return review.Review{}, errors.Wrap(err, "selecting essay review")
	}
	rv.CreatedAt = createdAt.UTC()
	rv.UpdatedAt = rv.UpdatedAt.UTC()
	return rv, nil
}
