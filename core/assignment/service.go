package assignment

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/filmsfather/CampusWoodieVer2/core"
	"github.com/filmsfather/CampusWoodieVer2/core/class"
	"github.com/filmsfather/CampusWoodieVer2/core/user"
	"github.com/filmsfather/CampusWoodieVer2/core/workbook"
)

var (
	ErrNotFound  = errors.New("assignment not found")
	ErrNoLearner = errors.New("the target has no students")
)

type (
	Repository interface {
		CreateAssignment(ctx context.Context, a Assignment, exec ...core.DBExecutor) (Assignment, error)
		GetAssignmentByID(ctx context.Context, id string, exec ...core.DBExecutor) (Assignment, error)
		// CreateTasks creates one pending task per learner, skipping learners that already have one.
		// It returns the number of tasks created.
		CreateTasks(ctx context.Context, assignmentID string, userIDs []string, now time.Time, exec ...core.DBExecutor) (int, error)
		// CountTasks returns the number of tasks of an assignment and how many are completed.
		CountTasks(ctx context.Context, assignmentID string, exec ...core.DBExecutor) (total, completed int, err error)
	}

	Service interface {
		// Assign creates the assignment and one pending task per target learner.
		// It returns the assignment and the number of tasks created.
		Assign(ctx context.Context, creatorID string, na NewAssignment) (Assignment, int, error)
		Get(ctx context.Context, id string) (Assignment, error)
		CompletionStats(ctx context.Context, id string) (Stats, error)
	}

	service struct {
		db       core.DB
		repo     Repository
		wbSvc    workbook.Service
		classSvc class.Service
		usrSvc   user.Service
	}
)

var _ Service = (*service)(nil)

func NewService(db core.DB, repo Repository, wbSvc workbook.Service, classSvc class.Service, usrSvc user.Service) Service {
	return &service{db: db, repo: repo, wbSvc: wbSvc, classSvc: classSvc, usrSvc: usrSvc}
}

func (svc *service) learners(ctx context.Context, na NewAssignment) ([]string, error) {
	switch na.TargetType {
	case TargetClass:
		if _, err := svc.classSvc.GetByID(ctx, na.TargetID); err != nil {
			if errors.Cause(err) == class.ErrNotFound {
				return nil, core.FieldValidationError("target_id", err)
			}
			return nil, errors.Wrap(err, "getting class")
		}
		ids, err := svc.classSvc.MemberIDs(ctx, na.TargetID)
		if err != nil {
			return nil, errors.Wrap(err, "listing class members")
		}
		if len(ids) == 0 {
			return nil, core.FieldValidationError("target_id", ErrNoLearner)
		}
		return ids, nil
	default:
		usr, err := svc.usrSvc.GetByID(ctx, na.TargetID)
		if err != nil {
			if errors.Cause(err) == user.ErrNotFound {
				return nil, core.FieldValidationError("target_id", err)
			}
			return nil, errors.Wrap(err, "getting student")
		}
		if !usr.IsStudent() {
			return nil, core.FieldValidationError("target_id", ErrNoLearner)
		}
		return []string{usr.ID}, nil
	}
}

func (svc *service) Assign(ctx context.Context, creatorID string, na NewAssignment) (Assignment, int, error) {
	if _, err := svc.wbSvc.Get(ctx, na.WorkbookID); err != nil {
		if errors.Cause(err) == workbook.ErrNotFound {
			return Assignment{}, 0, core.FieldValidationError("workbook_id", err)
		}
		return Assignment{}, 0, errors.Wrap(err, "getting workbook")
	}
	learnerIDs, err := svc.learners(ctx, na)
	if err != nil {
		return Assignment{}, 0, err
	}

	now := time.Now().UTC()
	a := Assignment{
		WorkbookID: na.WorkbookID,
		TargetType: na.TargetType,
		TargetID:   na.TargetID,
		DueAt:      na.DueAt,
		CreatedBy:  creatorID,
		CreatedAt:  now,
	}
	var created int
	err = core.WithTx(ctx, svc.db, func(tx core.DBExecutor) error {
		var err error
		if a, err = svc.repo.CreateAssignment(ctx, a, tx); err != nil {
			return errors.Wrap(err, "creating assignment")
		}
		created, err = svc.repo.CreateTasks(ctx, a.ID, learnerIDs, now, tx)
		return errors.Wrap(err, "creating tasks")
	})
	if err != nil {
		return Assignment{}, 0, err
	}
	return a, created, nil
}

func (svc *service) Get(ctx context.Context, id string) (Assignment, error) {
	return svc.repo.GetAssignmentByID(ctx, id)
}

func (svc *service) CompletionStats(ctx context.Context, id string) (Stats, error) {
	if _, err := svc.repo.GetAssignmentByID(ctx, id); err != nil {
		return Stats{}, err
	}
	total, completed, err := svc.repo.CountTasks(ctx, id)
	if err != nil {
		return Stats{}, errors.Wrap(err, "counting tasks")
	}
	return newStats(id, total, completed), nil
}
