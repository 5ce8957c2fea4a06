package study

import (
	"context"

	"github.com/pkg/errors"

	"github.com/filmsfather/CampusWoodieVer2/core"
	"github.com/filmsfather/CampusWoodieVer2/core/workbook"
)

func (svc *service) typedTask(ctx context.Context, learnerID, taskID string, accept func(string) bool) (Task, error) {
	task, err := svc.ownTask(ctx, learnerID, taskID)
	if err != nil {
		return Task{}, err
	}
	if !accept(task.WorkbookType) {
		return Task{}, ErrWrongTaskType
	}
	return task, nil
}

func isViewing(typ string) bool { return typ == workbook.TypeViewing }

func (svc *service) SubmitText(ctx context.Context, learnerID, taskID string, nts NewTextSubmission) (TextSubmission, error) {
	task, err := svc.typedTask(ctx, learnerID, taskID, workbook.IsTextSubmitted)
	if err != nil {
		return TextSubmission{}, err
	}

	var (
		saved     TextSubmission
		completed bool
	)
	err = core.WithTx(ctx, svc.db, func(tx core.DBExecutor) error {
		fresh, err := svc.repo.GetTask(ctx, task.ID, tx)
		if err != nil {
			return err
		}
		if fresh.Status == StatusCompleted {
			return ErrTaskSubmitted
		}

		now := svc.clock.Now().UTC()
		sub := TextSubmission{TaskID: task.ID, Text: nts.Text, CreatedAt: now, UpdatedAt: now}
		status, pct := NextStatus(fresh.Status, true, fresh.ProgressPct), fresh.ProgressPct
		if nts.Final {
			sub.SubmittedAt = &now
			status, pct = StatusCompleted, 100
		}
		if saved, err = svc.repo.SaveTextSubmission(ctx, sub, tx); err != nil {
			return errors.Wrap(err, "saving text submission")
		}
		if err = svc.repo.UpdateTaskProgress(ctx, task.ID, status, pct, now, tx); err != nil {
			return errors.Wrap(err, "updating task progress")
		}
		completed = status == StatusCompleted
		return nil
	})
	if err != nil {
		return TextSubmission{}, err
	}

	if completed {
		svc.notifyCompletion(ctx, task)
	}
	return saved, nil
}

func (svc *service) TextSubmission(ctx context.Context, learnerID, taskID string) (TextSubmission, error) {
	task, err := svc.typedTask(ctx, learnerID, taskID, workbook.IsTextSubmitted)
	if err != nil {
		return TextSubmission{}, err
	}
	return svc.repo.GetTextSubmission(ctx, task.ID)
}

func (svc *service) AddViewingNote(ctx context.Context, learnerID, taskID string, nn NewViewingNote) (NoteResult, error) {
	task, err := svc.typedTask(ctx, learnerID, taskID, isViewing)
	if err != nil {
		return NoteResult{}, err
	}

	var (
		res       NoteResult
		completed bool
	)
	err = core.WithTx(ctx, svc.db, func(tx core.DBExecutor) error {
		fresh, err := svc.repo.GetTask(ctx, task.ID, tx)
		if err != nil {
			return err
		}

		now := svc.clock.Now().UTC()
		note, err := svc.repo.CreateViewingNote(ctx, ViewingNote{
			TaskID:    task.ID,
			Title:     nn.Title,
			Country:   nn.Country,
			Director:  nn.Director,
			Genre:     nn.Genre,
			Subgenre:  nn.Subgenre,
			Notes:     nn.Notes,
			CreatedAt: now,
			UpdatedAt: now,
		}, tx)
		if err != nil {
			return errors.Wrap(err, "creating viewing note")
		}
		notes, err := svc.repo.ListViewingNotes(ctx, task.ID, tx)
		if err != nil {
			return errors.Wrap(err, "listing viewing notes")
		}

		pct := fresh.notesProgress(len(notes))
		status := NextStatus(fresh.Status, true, pct)
		if pct < fresh.ProgressPct {
			pct = fresh.ProgressPct
		}
		if err = svc.repo.UpdateTaskProgress(ctx, task.ID, status, pct, now, tx); err != nil {
			return errors.Wrap(err, "updating task progress")
		}

		completed = status == StatusCompleted && fresh.Status != StatusCompleted
		res = NoteResult{Note: note, Count: len(notes), Required: fresh.RequiredCount, ProgressPct: pct, Status: status}
		return nil
	})
	if err != nil {
		return NoteResult{}, err
	}

	if completed {
		svc.notifyCompletion(ctx, task)
	}
	return res, nil
}

func (svc *service) ViewingNotes(ctx context.Context, learnerID, taskID string) ([]ViewingNote, error) {
	task, err := svc.typedTask(ctx, learnerID, taskID, isViewing)
	if err != nil {
		return nil, err
	}
	return svc.repo.ListViewingNotes(ctx, task.ID)
}
