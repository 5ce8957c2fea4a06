package study

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/filmsfather/CampusWoodieVer2/core"
	"github.com/filmsfather/CampusWoodieVer2/core/srs"
	"github.com/filmsfather/CampusWoodieVer2/core/user"
	"github.com/filmsfather/CampusWoodieVer2/core/workbook"
)

var (
	ErrTaskNotFound     = errors.New("task not found")
	ErrItemNotFound     = errors.New("question not found in this task")
	ErrNotSRSTask       = errors.New("task is not a spaced-repetition task")
	ErrQuestionMastered = errors.New("question already mastered")
	ErrQuestionNotDue   = errors.New("question is not due for review yet")
	ErrWrongTaskType    = errors.New("operation not available for this type of task")
	ErrTaskSubmitted    = errors.New("task already submitted")
	ErrNoSubmission     = errors.New("nothing submitted for this task yet")
)

type (
	Repository interface {
		GetTask(ctx context.Context, id string, exec ...core.DBExecutor) (Task, error)
		// ListTaskStates returns the review state of every reviewed item of a task, keyed by item id.
		// Items never reviewed have no entry.
		ListTaskStates(ctx context.Context, taskID string, exec ...core.DBExecutor) (map[string]*srs.ReviewState, error)
		// SaveReview upserts the answer and its review state and updates the task progress.
		SaveReview(ctx context.Context, rv Review, exec ...core.DBExecutor) (Answer, error)
		// ListOpenTasks returns the tasks not completed yet whose workbook has the given type.
		ListOpenTasks(ctx context.Context, workbookType string, exec ...core.DBExecutor) ([]Task, error)
		UpdateTaskProgress(ctx context.Context, taskID, status string, progressPct int, at time.Time, exec ...core.DBExecutor) error
		// RemindedSince returns the ids of the learners reminded after since.
		RemindedSince(ctx context.Context, since time.Time, exec ...core.DBExecutor) (map[string]bool, error)
		MarkReminded(ctx context.Context, userIDs []string, at time.Time, exec ...core.DBExecutor) error
		GetTextSubmission(ctx context.Context, taskID string, exec ...core.DBExecutor) (TextSubmission, error)
		// SaveTextSubmission upserts the text of a task.
		SaveTextSubmission(ctx context.Context, sub TextSubmission, exec ...core.DBExecutor) (TextSubmission, error)
		CreateViewingNote(ctx context.Context, note ViewingNote, exec ...core.DBExecutor) (ViewingNote, error)
		// ListViewingNotes returns the notes of a task, oldest first.
		ListViewingNotes(ctx context.Context, taskID string, exec ...core.DBExecutor) ([]ViewingNote, error)
	}

	Service interface {
		// Task returns a task of the learner.
		Task(ctx context.Context, learnerID, taskID string) (Task, error)
		Next(ctx context.Context, learnerID, taskID string) (NextResult, error)
		Submit(ctx context.Context, learnerID, taskID string, sub Submission) (SubmitResult, error)
		Progress(ctx context.Context, learnerID, taskID string) (ProgressResult, error)
		// SubmitText saves the text of an ESSAY or LECTURE task. A final submission completes the task.
		SubmitText(ctx context.Context, learnerID, taskID string, nts NewTextSubmission) (TextSubmission, error)
		TextSubmission(ctx context.Context, learnerID, taskID string) (TextSubmission, error)
		// AddViewingNote records a note of a VIEWING task, completed once it has its required notes.
		AddViewingNote(ctx context.Context, learnerID, taskID string, nn NewViewingNote) (NoteResult, error)
		ViewingNotes(ctx context.Context, learnerID, taskID string) ([]ViewingNote, error)
		// SendReviewReminders emails every learner having questions due and not reminded within cooldown.
		// It returns the number of emails sent.
		SendReviewReminders(ctx context.Context, cooldown time.Duration) (int, error)
	}

	service struct {
		db      core.DB
		repo    Repository
		wbSvc   workbook.Service
		usrSvc  user.Service
		mailSvc core.EmailService
		clock   srs.Clock
		logger  core.Logger
	}
)

var _ Service = (*service)(nil)

func NewService(
	db core.DB,
	repo Repository,
	wbSvc workbook.Service,
	usrSvc user.Service,
	mailSvc core.EmailService,
	clock srs.Clock,
	logger core.Logger,
) Service {
	return &service{
		db:      db,
		repo:    repo,
		wbSvc:   wbSvc,
		usrSvc:  usrSvc,
		mailSvc: mailSvc,
		clock:   clock,
		logger:  logger,
	}
}

func (svc *service) ownTask(ctx context.Context, learnerID, taskID string) (Task, error) {
	task, err := svc.repo.GetTask(ctx, taskID)
	if err != nil {
		return Task{}, err
	}
	if task.UserID != learnerID {
		return Task{}, ErrTaskNotFound
	}
	return task, nil
}

func (svc *service) srsTask(ctx context.Context, learnerID, taskID string) (Task, error) {
	task, err := svc.ownTask(ctx, learnerID, taskID)
	if err != nil {
		return Task{}, err
	}
	if !task.IsSRS() {
		return Task{}, ErrNotSRSTask
	}
	return task, nil
}

// deck loads the ordered items of the task's workbook and their review states.
func (svc *service) deck(ctx context.Context, task Task) ([]workbook.Item, []srs.Card, error) {
	items, err := svc.wbSvc.Items(ctx, task.WorkbookID)
	if err != nil {
		return nil, nil, errors.Wrap(err, "listing items")
	}
	states, err := svc.repo.ListTaskStates(ctx, task.ID)
	if err != nil {
		return nil, nil, errors.Wrap(err, "listing review states")
	}
	return items, buildDeck(items, states), nil
}

func (svc *service) Task(ctx context.Context, learnerID, taskID string) (Task, error) {
	return svc.ownTask(ctx, learnerID, taskID)
}

func (svc *service) Next(ctx context.Context, learnerID, taskID string) (NextResult, error) {
	task, err := svc.srsTask(ctx, learnerID, taskID)
	if err != nil {
		return NextResult{}, err
	}
	items, cards, err := svc.deck(ctx, task)
	if err != nil {
		return NextResult{}, err
	}

	res := NextResult{
		ProgressPct: srs.Progress(cards),
		Status:      task.Status,
		Mastered:    srs.Mastered(cards),
		Total:       len(cards),
	}
	if i, ok := srs.Select(cards, svc.clock.Now()); ok {
		res.Question = newPrompt(items[i])
	} else {
		res.NextDueAt = nextDueAt(cards)
	}
	return res, nil
}

func (svc *service) Submit(ctx context.Context, learnerID, taskID string, sub Submission) (SubmitResult, error) {
	task, err := svc.srsTask(ctx, learnerID, taskID)
	if err != nil {
		return SubmitResult{}, err
	}
	items, err := svc.wbSvc.Items(ctx, task.WorkbookID)
	if err != nil {
		return SubmitResult{}, errors.Wrap(err, "listing items")
	}
	idx := -1
	for i, it := range items {
		if it.ID == sub.ItemID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return SubmitResult{}, ErrItemNotFound
	}

	var (
		res       SubmitResult
		completed bool
	)
	err = core.WithTx(ctx, svc.db, func(tx core.DBExecutor) error {
		// reload within the transaction for the current status
		fresh, err := svc.repo.GetTask(ctx, task.ID, tx)
		if err != nil {
			return err
		}
		states, err := svc.repo.ListTaskStates(ctx, task.ID, tx)
		if err != nil {
			return errors.Wrap(err, "listing review states")
		}
		cards := buildDeck(items, states)

		now := svc.clock.Now()
		current := cards[idx].State
		if current.Mastered() {
			return ErrQuestionMastered
		}
		if !current.IsDue(now) {
			return ErrQuestionNotDue
		}

		out := srs.Schedule(items[idx].Question(), sub.grading(), current, now)
		state := out.State()
		cards[idx].State = &state

		pct := srs.Progress(cards)
		status := NextStatus(fresh.Status, srs.Started(cards), pct)
		_, err = svc.repo.SaveReview(ctx, Review{
			Answer: Answer{
				TaskID:         task.ID,
				ItemID:         sub.ItemID,
				ResponseText:   sub.ResponseText,
				SelectedOption: sub.SelectedOption,
				Correctness:    out.Correctness(),
			},
			State:       state,
			TaskStatus:  status,
			ProgressPct: pct,
			At:          now,
		}, tx)
		if err != nil {
			return errors.Wrap(err, "saving review")
		}

		completed = status == StatusCompleted && fresh.Status != StatusCompleted
		res = SubmitResult{
			Correct:     out.Correct,
			Correctness: out.Correctness(),
			Streak:      out.Streak,
			NextDueAt:   out.NextDueAt,
			ProgressPct: pct,
			Status:      status,
		}
		return nil
	})
	if err != nil {
		return SubmitResult{}, err
	}

	if completed {
		svc.notifyCompletion(ctx, task)
	}
	return res, nil
}

func (svc *service) Progress(ctx context.Context, learnerID, taskID string) (ProgressResult, error) {
	task, err := svc.ownTask(ctx, learnerID, taskID)
	if err != nil {
		return ProgressResult{}, err
	}
	res := ProgressResult{TaskID: task.ID, Status: task.Status, ProgressPct: task.ProgressPct}
	if !task.IsSRS() {
		return res, nil
	}

	_, cards, err := svc.deck(ctx, task)
	if err != nil {
		return ProgressResult{}, err
	}
	res.ProgressPct = srs.Progress(cards)
	res.Mastered = srs.Mastered(cards)
	res.Due = srs.DueCount(cards, svc.clock.Now())
	res.Total = len(cards)
	return res, nil
}
