package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/filmsfather/CampusWoodieVer2/core"
	"github.com/filmsfather/CampusWoodieVer2/core/user"
)

type userRow struct {
	ID        string      `db:"id"`
	Name      string      `db:"name"`
	Email     null.String `db:"email"`
	Role      string      `db:"role"`
	CreatedAt time.Time   `db:"created_at"`
	UpdatedAt time.Time   `db:"updated_at"`
}

const userColumns = "id, name, email, role, created_at, updated_at"

type userRepository struct {
	repository
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(exec core.DBExecutor) *userRepository {
	return &userRepository{repository{exec: exec}}
}

func (repo userRepository) toRow(usr user.User) userRow {
	return userRow{
		ID:        usr.ID,
		Name:      usr.Name,
		Email:     null.NewString(usr.Email, usr.Email != ""),
		Role:      usr.Role,
		CreatedAt: usr.CreatedAt.UTC(),
		UpdatedAt: usr.UpdatedAt.UTC(),
	}
}

func (repo userRepository) fromRow(row userRow) user.User {
	return user.User{
		ID:        row.ID,
		Name:      row.Name,
		Email:     row.Email.String,
		Role:      row.Role,
		CreatedAt: row.CreatedAt.UTC(),
		UpdatedAt: row.UpdatedAt.UTC(),
	}
}

func (repo userRepository) CheckEmailUniqueness(ctx context.Context, email string, exec ...core.DBExecutor) error {
	exe := repo.getExec(exec)
	var count int
	if err := exe.GetContext(ctx, &count, exe.Rebind("SELECT COUNT(*) FROM users WHERE email = ?"), email); err != nil {
		return errors.Wrap(err, "counting users")
	}
	if count > 0 {
		return user.ErrEmailExists
	}
	return nil
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	exe := repo.getExec(exec)
	usr.ID = uuid.NewString()
	row := repo.toRow(usr)

	q := exe.Rebind("INSERT INTO users (" + userColumns + ") VALUES (?, ?, ?, ?, ?, ?)")
	if _, err := exe.ExecContext(ctx, q, row.ID, row.Name, row.Email, row.Role, row.CreatedAt, row.UpdatedAt); err != nil {
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return repo.fromRow(row), nil
}

func (repo userRepository) getUser(ctx context.Context, exe core.DBExecutor, where string, arg interface{}) (user.User, error) {
	var row userRow
	q := exe.Rebind("SELECT " + userColumns + " FROM users WHERE " + where)
	if err := exe.GetContext(ctx, &row, q, arg); err != nil {
		return user.User{}, notFound(errors.Wrap(err, "selecting user"), user.ErrNotFound)
	}
	return repo.fromRow(row), nil
}

func (repo userRepository) GetUserByID(ctx context.Context, id string, exec ...core.DBExecutor) (user.User, error) {
	return repo.getUser(ctx, repo.getExec(exec), "id = ?", id)
}

func (repo userRepository) GetUserByEmail(ctx context.Context, email string, exec ...core.DBExecutor) (user.User, error) {
	return repo.getUser(ctx, repo.getExec(exec), "email = ?", email)
}
