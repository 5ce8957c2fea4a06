package user

import (
	"context"
	"net/mail"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/filmsfather/CampusWoodieVer2/core"
)

// Roles
const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
	RoleAdmin   = "admin"
)

var AllRoles = []string{RoleStudent, RoleTeacher, RoleAdmin}

type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

func (u User) IsAdmin() bool   { return u.Role == RoleAdmin }
func (u User) IsTeacher() bool { return u.Role == RoleTeacher }
func (u User) IsStudent() bool { return u.Role == RoleStudent }

// HasAnyRole reports whether the user holds one of roles. No roles means any.
func (u User) HasAnyRole(roles ...string) bool {
	if len(roles) == 0 {
		return true
	}
	for _, role := range roles {
		if u.Role == role {
			return true
		}
	}
	return false
}

// Address returns the mail address of the user, ok is false when the user has no email.
func (u User) Address() (mail.Address, bool) {
	return mail.Address{Name: u.Name, Address: u.Email}, u.Email != ""
}

// NewUser contains information needed to create a new User.
type NewUser struct {
	Name  string `json:"name" validate:"notblank"`
	Email string `json:"email" validate:"omitempty,email"`
	Role  string `json:"role" validate:"required,oneof=student teacher admin"`
}

func (nu *NewUser) Validate(ctx context.Context, validate *validator.Validate, svc Service) error {
	nu.Name = core.CleanString(nu.Name)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	nu.Role = core.CleanString(nu.Role, true /* lower */)

	if err := validate.Struct(nu); err != nil {
		return err
	}
	return svc.CheckEmailUniqueness(ctx, nu.Email)
}
