package class

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/filmsfather/CampusWoodieVer2/core"
	"github.com/filmsfather/CampusWoodieVer2/core/user"
)

var (
	ErrNotFound   = errors.New("class not found")
	ErrNameExists = errors.New("a class with this name already exists")
)

type (
	Repository interface {
		CheckClassNameUniqueness(ctx context.Context, name string, exec ...core.DBExecutor) error
		CreateClass(ctx context.Context, cls Class, exec ...core.DBExecutor) (Class, error)
		GetClassByID(ctx context.Context, id string, exec ...core.DBExecutor) (Class, error)
		GetClassByName(ctx context.Context, name string, exec ...core.DBExecutor) (Class, error)
		AddClassMember(ctx context.Context, classID, userID string, exec ...core.DBExecutor) error
		ListClassMemberIDs(ctx context.Context, classID string, exec ...core.DBExecutor) ([]string, error)
	}

	Service interface {
		CheckNameUniqueness(ctx context.Context, name string) error
		Create(ctx context.Context, nc NewClass) (Class, error)
		GetByID(ctx context.Context, id string) (Class, error)
		GetByName(ctx context.Context, name string) (Class, error)
		Enroll(ctx context.Context, classID, userID string) error
		MemberIDs(ctx context.Context, classID string) ([]string, error)
	}

	service struct {
		repo   Repository
		usrSvc user.Service
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, usrSvc user.Service) Service {
	return &service{repo: repo, usrSvc: usrSvc}
}

func (svc *service) CheckNameUniqueness(ctx context.Context, name string) error {
	if err := svc.repo.CheckClassNameUniqueness(ctx, name); err != nil {
		if errors.Cause(err) == ErrNameExists {
			return core.FieldValidationError("name", ErrNameExists)
		}
		return errors.Wrap(err, "checking class name uniqueness")
	}
	return nil
}

func (svc *service) Create(ctx context.Context, nc NewClass) (Class, error) {
	now := time.Now().UTC()
	return svc.repo.CreateClass(ctx, Class{Name: nc.Name, CreatedAt: now, UpdatedAt: now})
}

func (svc *service) GetByID(ctx context.Context, id string) (Class, error) {
	return svc.repo.GetClassByID(ctx, id)
}

func (svc *service) GetByName(ctx context.Context, name string) (Class, error) {
	return svc.repo.GetClassByName(ctx, core.CleanString(name))
}

// Enroll adds a student to the class. Enrolling twice is a no-op.
func (svc *service) Enroll(ctx context.Context, classID, userID string) error {
	if _, err := svc.repo.GetClassByID(ctx, classID); err != nil {
		return errors.Wrap(err, "getting class")
	}
	usr, err := svc.usrSvc.GetByID(ctx, userID)
	if err != nil {
		return errors.Wrap(err, "getting user")
	}
	if !usr.IsStudent() {
		return core.FieldValidationError("user", errors.New("only students can be enrolled"))
	}
	return errors.Wrap(svc.repo.AddClassMember(ctx, classID, userID), "adding class member")
}

func (svc *service) MemberIDs(ctx context.Context, classID string) ([]string, error) {
	return svc.repo.ListClassMemberIDs(ctx, classID)
}
