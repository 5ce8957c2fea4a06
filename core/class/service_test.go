package class_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filmsfather/CampusWoodieVer2/core"
	"github.com/filmsfather/CampusWoodieVer2/core/class"
	"github.com/filmsfather/CampusWoodieVer2/core/user"
	sqlxrepos "github.com/filmsfather/CampusWoodieVer2/storage/database/sqlx"
	"github.com/filmsfather/CampusWoodieVer2/tests"
)

func TestService(t *testing.T) {
	db := testutil.PrepareDB(t)
	usrRepo := sqlxrepos.NewUserRepository(db)
	svc := class.NewService(sqlxrepos.NewClassRepository(db), user.NewService(usrRepo))
	ctx := context.Background()

	student := testutil.CreateUser(t, usrRepo, "Student", "s@test.kr", user.RoleStudent)
	teacher := testutil.CreateUser(t, usrRepo, "Teacher", "t@test.kr", user.RoleTeacher)

	cls, err := svc.Create(ctx, class.NewClass{Name: "Writing B"})
	require.NoError(t, err)

	var verr *core.ValidationError
	err = svc.CheckNameUniqueness(ctx, "Writing B")
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "name", verr.Fields[0].Field)

	got, err := svc.GetByName(ctx, "  Writing B ")
	require.NoError(t, err)
	assert.Equal(t, cls.ID, got.ID)

	require.NoError(t, svc.Enroll(ctx, cls.ID, student.ID))
	require.NoError(t, svc.Enroll(ctx, cls.ID, student.ID))
	ids, err := svc.MemberIDs(ctx, cls.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{student.ID}, ids)

	err = svc.Enroll(ctx, cls.ID, teacher.ID)
	assert.True(t, errors.As(err, &verr))
	assert.ErrorIs(t, svc.Enroll(ctx, "missing", student.ID), class.ErrNotFound)
	assert.ErrorIs(t, svc.Enroll(ctx, cls.ID, "missing"), user.ErrNotFound)
}
