package review

import (
	"context"
	"fmt"
	"net/mail"

	"github.com/pkg/errors"

	"github.com/filmsfather/CampusWoodieVer2/core"
	"github.com/filmsfather/CampusWoodieVer2/core/srs"
	"github.com/filmsfather/CampusWoodieVer2/core/user"
)

var ErrNotFound = errors.New("essay submission not found")

const essayReviewedTemplate = "essay_reviewed"

type (
	Repository interface {
		// GetSubmission returns the handed-in essay of a task.
		GetSubmission(ctx context.Context, taskID string, exec ...core.DBExecutor) (Submission, error)
		// ListSubmissions returns the handed-in essays of the assignments created by teacherID,
		// or every essay when teacherID is empty. Oldest first.
		ListSubmissions(ctx context.Context, teacherID string, exec ...core.DBExecutor) ([]Submission, error)
		// SaveReview upserts the review of a task.
		SaveReview(ctx context.Context, rv Review, exec ...core.DBExecutor) (Review, error)
	}

	// Service lets teachers read and grade essays. A teacher only sees the essays of their
	// own assignments, admins see all of them.
	Service interface {
		Get(ctx context.Context, reviewer user.User, taskID string) (Submission, error)
		List(ctx context.Context, reviewer user.User, pendingOnly bool) ([]Submission, error)
		Review(ctx context.Context, reviewer user.User, taskID string, nr NewReview) (Submission, error)
		Stats(ctx context.Context, reviewer user.User) (Stats, error)
	}

	service struct {
		db      core.DB
		repo    Repository
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
	usrSvc user.Service,
	mailSvc core.EmailService,
	clock srs.Clock,
	logger core.Logger,
) Service {
	return &service{db: db, repo: repo, usrSvc: usrSvc, mailSvc: mailSvc, clock: clock, logger: logger}
}

func scope(reviewer user.User) string {
	if reviewer.IsAdmin() {
		return ""
	}
	return reviewer.ID
}

func canReview(reviewer user.User, sub Submission) bool {
	return reviewer.IsAdmin() || (reviewer.IsTeacher() && sub.AssignedBy == reviewer.ID)
}

func (svc *service) get(ctx context.Context, reviewer user.User, taskID string, exec ...core.DBExecutor) (Submission, error) {
	sub, err := svc.repo.GetSubmission(ctx, taskID, exec...)
	if err != nil {
		return Submission{}, err
	}
	if !canReview(reviewer, sub) {
		return Submission{}, ErrNotFound
	}
	return sub, nil
}

func (svc *service) Get(ctx context.Context, reviewer user.User, taskID string) (Submission, error) {
	return svc.get(ctx, reviewer, taskID)
}

func (svc *service) List(ctx context.Context, reviewer user.User, pendingOnly bool) ([]Submission, error) {
	subs, err := svc.repo.ListSubmissions(ctx, scope(reviewer))
	if err != nil {
		return nil, errors.Wrap(err, "listing essay submissions")
	}
	if !pendingOnly {
		return subs, nil
	}
	pending := subs[:0]
	for _, s := range subs {
		if !s.Reviewed() {
			pending = append(pending, s)
		}
	}
	return pending, nil
}

func (svc *service) Review(ctx context.Context, reviewer user.User, taskID string, nr NewReview) (Submission, error) {
	var sub Submission
	err := core.WithTx(ctx, svc.db, func(tx core.DBExecutor) error {
		var err error
		if sub, err = svc.get(ctx, reviewer, taskID, tx); err != nil {
			return err
		}

		now := svc.clock.Now().UTC()
		rv, err := svc.repo.SaveReview(ctx, Review{
			TaskID:     taskID,
			Grade:      nr.Grade,
			Feedback:   nr.Feedback,
			ReviewedBy: reviewer.ID,
			CreatedAt:  now,
			UpdatedAt:  now,
		}, tx)
		if err != nil {
			return errors.Wrap(err, "saving essay review")
		}
		sub.Review = &rv
		return nil
	})
	if err != nil {
		return Submission{}, err
	}

	svc.notifyStudent(ctx, sub)
	return sub, nil
}

func (svc *service) Stats(ctx context.Context, reviewer user.User) (Stats, error) {
	subs, err := svc.repo.ListSubmissions(ctx, scope(reviewer))
	if err != nil {
		return Stats{}, errors.Wrap(err, "listing essay submissions")
	}
	return newStats(subs), nil
}

type EssayReviewedData struct {
	StudentName   string
	WorkbookTitle string
	Grade         string
	Feedback      string
	TaskID        string
}

// notifyStudent emails the learner their review. Failures are logged only.
func (svc *service) notifyStudent(ctx context.Context, sub Submission) {
	learner, err := svc.usrSvc.GetByID(ctx, sub.StudentID)
	if err != nil {
		svc.logger.Error("getting learner", errors.Wrap(err, "notifying essay review"), sub)
		return
	}
	to, ok := learner.Address()
	if !ok {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{to},
		Subject:      fmt.Sprintf("Your essay %q was reviewed", sub.WorkbookTitle),
		TemplateName: essayReviewedTemplate,
		TemplateData: EssayReviewedData{
			StudentName:   learner.Name,
			WorkbookTitle: sub.WorkbookTitle,
			Grade:         sub.Review.Grade,
			Feedback:      sub.Review.Feedback,
			TaskID:        sub.TaskID,
		},
	})
}
