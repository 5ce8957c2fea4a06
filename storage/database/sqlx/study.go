package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/filmsfather/CampusWoodieVer2/core"
	"github.com/filmsfather/CampusWoodieVer2/core/srs"
	"github.com/filmsfather/CampusWoodieVer2/core/study"
)

type taskRow struct {
	ID            string      `db:"id"`
	AssignmentID  string      `db:"assignment_id"`
	WorkbookID    string      `db:"workbook_id"`
	WorkbookTitle string      `db:"workbook_title"`
	WorkbookType  string      `db:"workbook_type"`
	RequiredCount int         `db:"required_count"`
	UserID        string      `db:"user_id"`
	AssignedBy    null.String `db:"assigned_by"`
	DueAt         time.Time   `db:"due_at"`
	Status        string      `db:"status"`
	ProgressPct   int         `db:"progress_pct"`
	CreatedAt     time.Time   `db:"created_at"`
	UpdatedAt     time.Time   `db:"updated_at"`
}

func (row taskRow) task() study.Task {
	return study.Task{
		ID:            row.ID,
		AssignmentID:  row.AssignmentID,
		WorkbookID:    row.WorkbookID,
		WorkbookTitle: row.WorkbookTitle,
		WorkbookType:  row.WorkbookType,
		RequiredCount: row.RequiredCount,
		UserID:        row.UserID,
		AssignedBy:    row.AssignedBy.String,
		DueAt:         row.DueAt.UTC(),
		Status:        row.Status,
		ProgressPct:   row.ProgressPct,
		CreatedAt:     row.CreatedAt.UTC(),
		UpdatedAt:     row.UpdatedAt.UTC(),
	}
}

type stateRow struct {
	ItemID    string    `db:"workbook_item_id"`
	Streak    int       `db:"streak"`
	NextDueAt null.Time `db:"next_due_at"`
}

const selectTasks = `
	SELECT t.id, t.assignment_id, a.workbook_id, w.title AS workbook_title, w.type AS workbook_type,
	       w.required_count, t.user_id, a.created_by AS assigned_by, a.due_at, t.status, t.progress_pct, t.created_at, t.updated_at
	FROM student_tasks t
	JOIN assignments a ON a.id = t.assignment_id
	JOIN workbooks w ON w.id = a.workbook_id`

type studyRepository struct {
	repository
}

var _ study.Repository = (*studyRepository)(nil) // interface compliance check

func NewStudyRepository(exec core.DBExecutor) *studyRepository {
	return &studyRepository{repository{exec: exec}}
}

func (repo studyRepository) GetTask(ctx context.Context, id string, exec ...core.DBExecutor) (study.Task, error) {
	exe := repo.getExec(exec)
	var row taskRow
	if err := exe.GetContext(ctx, &row, exe.Rebind(selectTasks+" WHERE t.id = ?"), id); err != nil {
		return study.Task{}, notFound(errors.Wrap(err, "selecting task"), study.ErrTaskNotFound)
	}
	return row.task(), nil
}

func (repo studyRepository) ListTaskStates(ctx context.Context, taskID string, exec ...core.DBExecutor) (map[string]*srs.ReviewState, error) {
	exe := repo.getExec(exec)
	var rows []stateRow
	q := exe.Rebind(`
		SELECT a.workbook_item_id, s.streak, s.next_due_at
		FROM answers a
		JOIN srs_state s ON s.answer_id = a.id
		WHERE a.student_task_id = ?`)
	if err := exe.SelectContext(ctx, &rows, q, taskID); err != nil {
		return nil, errors.Wrap(err, "selecting review states")
	}

	states := make(map[string]*srs.ReviewState, len(rows))
	for _, row := range rows {
		// a missing due date means due now
		states[row.ItemID] = &srs.ReviewState{Streak: row.Streak, NextDueAt: row.NextDueAt.Time.UTC()}
	}
	return states, nil
}

func (repo studyRepository) SaveReview(ctx context.Context, rv study.Review, exec ...core.DBExecutor) (study.Answer, error) {
	exe := repo.getExec(exec)
	at := rv.At.UTC()
	ans := rv.Answer
	ans.UpdatedAt = at

	var saved struct {
		ID        string    `db:"id"`
		CreatedAt time.Time `db:"created_at"`
	}
	q := exe.Rebind(`
		INSERT INTO answers (id, student_task_id, workbook_item_id, response_text, selected_option, correctness, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (student_task_id, workbook_item_id) DO UPDATE SET
			response_text = excluded.response_text,
			selected_option = excluded.selected_option,
			correctness = excluded.correctness,
			updated_at = excluded.updated_at`)
	_, err := exe.ExecContext(ctx, q,
		uuid.NewString(), ans.TaskID, ans.ItemID,
		null.StringFromPtr(ans.ResponseText), null.IntFromPtr(ans.SelectedOption), string(ans.Correctness),
		at, at)
	if err != nil {
		return study.Answer{}, errors.Wrap(err, "upserting answer")
	}
	q = exe.Rebind("SELECT id, created_at FROM answers WHERE student_task_id = ? AND workbook_item_id = ?")
	if err = exe.GetContext(ctx, &saved, q, ans.TaskID, ans.ItemID); err != nil {
		return study.Answer{}, errors.Wrap(err, "selecting answer")
	}
	ans.ID = saved.ID
	ans.CreatedAt = saved.CreatedAt.UTC()

	q = exe.Rebind(`
		INSERT INTO srs_state (answer_id, streak, next_due_at) VALUES (?, ?, ?)
		ON CONFLICT (answer_id) DO UPDATE SET streak = excluded.streak, next_due_at = excluded.next_due_at`)
	if _, err = exe.ExecContext(ctx, q, ans.ID, rv.State.Streak, rv.State.NextDueAt.UTC()); err != nil {
		return study.Answer{}, errors.Wrap(err, "upserting review state")
	}

	q = exe.Rebind("UPDATE student_tasks SET status = ?, progress_pct = ?, updated_at = ? WHERE id = ?")
	if _, err = exe.ExecContext(ctx, q, rv.TaskStatus, rv.ProgressPct, at, ans.TaskID); err != nil {
		return study.Answer{}, errors.Wrap(err, "updating task progress")
	}
	return ans, nil
}

func (repo studyRepository) ListOpenTasks(ctx context.Context, workbookType string, exec ...core.DBExecutor) ([]study.Task, error) {
	exe := repo.getExec(exec)
	var rows []taskRow
	q := exe.Rebind(selectTasks + " WHERE t.status <> ? AND w.type = ? ORDER BY t.user_id, a.created_at, t.id")
	if err := exe.SelectContext(ctx, &rows, q, study.StatusCompleted, workbookType); err != nil {
		return nil, errors.Wrap(err, "selecting open tasks")
	}

	tasks := make([]study.Task, 0, len(rows))
	for _, row := range rows {
		tasks = append(tasks, row.task())
	}
	return tasks, nil
}

func (repo studyRepository) UpdateTaskProgress(ctx context.Context, taskID, status string, progressPct int, at time.Time, exec ...core.DBExecutor) error {
	exe := repo.getExec(exec)
	q := exe.Rebind("UPDATE student_tasks SET status = ?, progress_pct = ?, updated_at = ? WHERE id = ?")
	res, err := exe.ExecContext(ctx, q, status, progressPct, at.UTC(), taskID)
	if err != nil {
		return errors.Wrap(err, "updating task progress")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return study.ErrTaskNotFound
	}
	return nil
}

func (repo studyRepository) RemindedSince(ctx context.Context, since time.Time, exec ...core.DBExecutor) (map[string]bool, error) {
	exe := repo.getExec(exec)
	var rows []struct {
		UserID     string    `db:"user_id"`
		RemindedAt time.Time `db:"reminded_at"`
	}
	if err := exe.SelectContext(ctx, &rows, "SELECT user_id, reminded_at FROM review_reminders"); err != nil {
		return nil, errors.Wrap(err, "selecting reminders")
	}

	reminded := make(map[string]bool, len(rows))
	for _, row := range rows {
		if row.RemindedAt.After(since) {
			reminded[row.UserID] = true
		}
	}
	return reminded, nil
}

func (repo studyRepository) MarkReminded(ctx context.Context, userIDs []string, at time.Time, exec ...core.DBExecutor) error {
	exe := repo.getExec(exec)
	q := exe.Rebind(`
		INSERT INTO review_reminders (user_id, reminded_at) VALUES (?, ?)
		ON CONFLICT (user_id) DO UPDATE SET reminded_at = excluded.reminded_at`)
	for _, id := range userIDs {
		if _, err := exe.ExecContext(ctx, q, id, at.UTC()); err != nil {
			return errors.Wrapf(err, "upserting reminder of %s", id)
		}
	}
	return nil
}

type textSubmissionRow struct {
	TaskID      string    `db:"student_task_id"`
	Text        string    `db:"response_text"`
	SubmittedAt null.Time `db:"submitted_at"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (row textSubmissionRow) submission() study.TextSubmission {
	sub := study.TextSubmission{
		TaskID:    row.TaskID,
		Text:      row.Text,
		CreatedAt: row.CreatedAt.UTC(),
		UpdatedAt: row.UpdatedAt.UTC(),
	}
	if row.SubmittedAt.Valid {
		at := row.SubmittedAt.Time.UTC()
		sub.SubmittedAt = &at
	}
	return sub
}

func (repo studyRepository) GetTextSubmission(ctx context.Context, taskID string, exec ...core.DBExecutor) (study.TextSubmission, error) {
	exe := repo.getExec(exec)
	var row textSubmissionRow
	q := exe.Rebind(`
		SELECT student_task_id, response_text, submitted_at, created_at, updated_at
		FROM text_submissions WHERE student_task_id = ?`)
	if err := exe.GetContext(ctx, &row, q, taskID); err != nil {
		return study.TextSubmission{}, notFound(errors.Wrap(err, "selecting text submission"), study.ErrNoSubmission)
	}
	return row.submission(), nil
}

func (repo studyRepository) SaveTextSubmission(ctx context.Context, sub study.TextSubmission, exec ...core.DBExecutor) (study.TextSubmission, error) {
	exe := repo.getExec(exec)
	q := exe.Rebind(`
		INSERT INTO text_submissions (student_task_id, response_text, submitted_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (student_task_id) DO UPDATE SET
			response_text = excluded.response_text,
			submitted_at = excluded.submitted_at,
			updated_at = excluded.updated_at`)
	submittedAt := null.TimeFromPtr(sub.SubmittedAt)
	if submittedAt.Valid {
		submittedAt.Time = submittedAt.Time.UTC()
	}
	_, err := exe.ExecContext(ctx, q, sub.TaskID, sub.Text, submittedAt, sub.CreatedAt.UTC(), sub.UpdatedAt.UTC())
	if err != nil {
		return study.TextSubmission{}, errors.Wrap(err, "upserting text submission")
	}
	return repo.GetTextSubmission(ctx, sub.TaskID, exe)
}

type viewingNoteRow struct {
	ID        string      `db:"id"`
	TaskID    string      `db:"student_task_id"`
	Title     string      `db:"title"`
	Country   null.String `db:"country"`
	Director  null.String `db:"director"`
	Genre     null.String `db:"genre"`
	Subgenre  null.String `db:"subgenre"`
	Notes     string      `db:"notes"`
	CreatedAt time.Time   `db:"created_at"`
	UpdatedAt time.Time   `db:"updated_at"`
}

func (repo studyRepository) CreateViewingNote(ctx context.Context, note study.ViewingNote, exec ...core.DBExecutor) (study.ViewingNote, error) {
	exe := repo.getExec(exec)
	note.ID = uuid.NewString()
	note.CreatedAt = note.CreatedAt.UTC()
	note.UpdatedAt = note.UpdatedAt.UTC()
	q := exe.Rebind(`
		INSERT INTO viewing_notes (id, student_task_id, title, country, director, genre, subgenre, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := exe.ExecContext(ctx, q,
		note.ID, note.TaskID, note.Title,
		null.NewString(note.Country, note.Country != ""), null.NewString(note.Director, note.Director != ""),
		null.NewString(note.Genre, note.Genre != ""), null.NewString(note.Subgenre, note.Subgenre != ""),
		note.Notes, note.CreatedAt, note.UpdatedAt)
	if err != nil {
		return study.ViewingNote{}, errors.Wrap(err, "inserting viewing note")
	}
	return note, nil
}

func (repo studyRepository) ListViewingNotes(ctx context.Context, taskID string, exec ...core.DBExecutor) ([]study.ViewingNote, error) {
	exe := repo.getExec(exec)
	var rows []viewingNoteRow
	q := exe.Rebind(`
		SELECT id, student_task_id, title, country, director, genre, subgenre, notes, created_at, updated_at
		FROM viewing_notes WHERE student_task_id = ? ORDER BY created_at, id`)
	if err := exe.SelectContext(ctx, &rows, q, taskID); err != nil {
		return nil, errors.Wrap(err, "selecting viewing notes")
	}

	notes := make([]study.ViewingNote, 0, len(rows))
	for _, row := range rows {
		notes = append(notes, study.ViewingNote{
			ID:        row.ID,
			TaskID:    row.TaskID,
			Title:     row.Title,
			Country:   row.Country.String,
			Director:  row.Director.String,
			Genre:     row.Genre.String,
			Subgenre:  row.Subgenre.String,
			Notes:     row.Notes,
			CreatedAt: row.CreatedAt.UTC(),
			UpdatedAt: row.UpdatedAt.UTC(),
		})
	}
	return notes, nil
}
