package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/filmsfather/CampusWoodieVer2/core"
	"github.com/filmsfather/CampusWoodieVer2/core/class"
)

type classRow struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (row classRow) class() class.Class {
	return class.Class{ID: row.ID, Name: row.Name, CreatedAt: row.CreatedAt.UTC(), UpdatedAt: row.UpdatedAt.UTC()}
}

type classRepository struct {
	repository
}

var _ class.Repository = (*classRepository)(nil) // interface compliance check

func NewClassRepository(exec core.DBExecutor) *classRepository {
	return &classRepository{repository{exec: exec}}
}

func (repo classRepository) CheckClassNameUniqueness(ctx context.Context, name string, exec ...core.DBExecutor) error {
	exe := repo.getExec(exec)
	var count int
	if err := exe.GetContext(ctx, &count, exe.Rebind("SELECT COUNT(*) FROM classes WHERE name = ?"), name); err != nil {
		return errors.Wrap(err, "counting classes")
	}
	if count > 0 {
		return class.ErrNameExists
	}
	return nil
}

func (repo classRepository) CreateClass(ctx context.Context, cls class.Class, exec ...core.DBExecutor) (class.Class, error) {
	exe := repo.getExec(exec)
	row := classRow{ID: uuid.NewString(), Name: cls.Name, CreatedAt: cls.CreatedAt.UTC(), UpdatedAt: cls.UpdatedAt.UTC()}

	q := exe.Rebind("INSERT INTO classes (id, name, created_at, updated_at) VALUES (?, ?, ?, ?)")
	if _, err := exe.ExecContext(ctx, q, row.ID, row.Name, row.CreatedAt, row.UpdatedAt); err != nil {
		return class.Class{}, errors.Wrap(err, "inserting class")
	}
	return row.class(), nil
}

func (repo classRepository) getClass(ctx context.Context, exe core.DBExecutor, where string, arg interface{}) (class.Class, error) {
	var row classRow
	q := exe.Rebind("SELECT id, name, created_at, updated_at FROM classes WHERE " + where)
	if err := exe.GetContext(ctx, &row, q, arg); err != nil {
		return class.Class{}, notFound(errors.Wrap(err, "selecting class"), class.ErrNotFound)
	}
	return row.class(), nil
}

func (repo classRepository) GetClassByID(ctx context.Context, id string, exec ...core.DBExecutor) (class.Class, error) {
	return repo.getClass(ctx, repo.getExec(exec), "id = ?", id)
}

func (repo classRepository) GetClassByName(ctx context.Context, name string, exec ...core.DBExecutor) (class.Class, error) {
	return repo.getClass(ctx, repo.getExec(exec), "name = ?", name)
}

func (repo classRepository) AddClassMember(ctx context.Context, classID, userID string, exec ...core.DBExecutor) error {
	exe := repo.getExec(exec)
	q := exe.Rebind("INSERT INTO class_members (class_id, user_id) VALUES (?, ?) ON CONFLICT (class_id, user_id) DO NOTHING")
	_, err := exe.ExecContext(ctx, q, classID, userID)
	return errors.Wrap(err, "inserting class member")
}

func (repo classRepository) ListClassMemberIDs(ctx context.Context, classID string, exec ...core.DBExecutor) ([]string, error) {
	exe := repo.getExec(exec)
	ids := make([]string, 0)
	q := exe.Rebind(`
		SELECT m.user_id FROM class_members m
		JOIN users u ON u.id = m.user_id
		WHERE m.class_id = ?
		ORDER BY u.name, u.id`)
	if err := exe.SelectContext(ctx, &ids, q, classID); err != nil {
		return nil, errors.Wrap(err, "selecting class members")
	}
	return ids, nil
}
