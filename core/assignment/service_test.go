package assignment_test

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filmsfather/CampusWoodieVer2/core"
	"github.com/filmsfather/CampusWoodieVer2/core/assignment"
	"github.com/filmsfather/CampusWoodieVer2/core/class"
	"github.com/filmsfather/CampusWoodieVer2/core/srs"
	"github.com/filmsfather/CampusWoodieVer2/core/user"
	"github.com/filmsfather/CampusWoodieVer2/core/workbook"
	sqlxrepos "github.com/filmsfather/CampusWoodieVer2/storage/database/sqlx"
	"github.com/filmsfather/CampusWoodieVer2/tests"
)

func TestService_Assign(t *testing.T) {
	db := testutil.PrepareDB(t)
	usrRepo := sqlxrepos.NewUserRepository(db)
	classRepo := sqlxrepos.NewClassRepository(db)
	wbRepo := sqlxrepos.NewWorkbookRepository(db)
	usrSvc := user.NewService(usrRepo)
	svc := assignment.NewService(
		db,
		sqlxrepos.NewAssignmentRepository(db),
		workbook.NewService(db, wbRepo, srs.SystemClock),
		class.NewService(classRepo, usrSvc),
		usrSvc,
	)
	ctx := context.Background()
	due := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)

	teacher := testutil.CreateUser(t, usrRepo, "Teacher", "t@test.kr", user.RoleTeacher)
	s1 := testutil.CreateUser(t, usrRepo, "Ahn", "s1@test.kr", user.RoleStudent)
	s2 := testutil.CreateUser(t, usrRepo, "Baek", "s2@test.kr", user.RoleStudent)
	cls := testutil.CreateClass(t, classRepo, "Directing A", s1.ID, s2.ID)
	empty := testutil.CreateClass(t, classRepo, "Empty")
	wb := testutil.CreateWorkbook(t, wbRepo, teacher.ID, "Cards", workbook.TypeSRS, testutil.Short("q", "a"))

	a, created, err := svc.Assign(ctx, teacher.ID, assignment.NewAssignment{
		WorkbookID: wb.ID,
		TargetType: assignment.TargetClass,
		TargetID:   cls.ID,
		DueAt:      due,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, created)
	assert.Equal(t, teacher.ID, a.CreatedBy)

	got, err := svc.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, got.DueAt.Equal(due))

	_, created, err = svc.Assign(ctx, teacher.ID, assignment.NewAssignment{
		WorkbookID: wb.ID,
		TargetType: assignment.TargetStudent,
		TargetID:   s1.ID,
		DueAt:      due,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, created)

	stats, err := svc.CompletionStats(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, assignment.Stats{AssignmentID: a.ID, Total: 2, Completed: 0, Incomplete: 2, Rate: 0}, stats)

	_, err = svc.CompletionStats(ctx, "missing")
	assert.ErrorIs(t, err, assignment.ErrNotFound)

	tests := []struct {
		name  string
		na    assignment.NewAssignment
		field string
	}{
		{"unknown workbook", assignment.NewAssignment{WorkbookID: "missing", TargetType: assignment.TargetStudent, TargetID: s1.ID}, "workbook_id"},
		{"unknown class", assignment.NewAssignment{WorkbookID: wb.ID, TargetType: assignment.TargetClass, TargetID: "missing"}, "target_id"},
		{"empty class", assignment.NewAssignment{WorkbookID: wb.ID, TargetType: assignment.TargetClass, TargetID: empty.ID}, "target_id"},
		{"unknown student", assignment.NewAssignment{WorkbookID: wb.ID, TargetType: assignment.TargetStudent, TargetID: "missing"}, "target_id"},
		{"not a student", assignment.NewAssignment{WorkbookID: wb.ID, TargetType: assignment.TargetStudent, TargetID: teacher.ID}, "target_id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.na.DueAt = due
			_, _, err := svc.Assign(ctx, teacher.ID, tt.na)
			var verr *core.ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			require.Len(t, verr.Fields, 1)
			assert.Equal(t, tt.field, verr.Fields[0].Field)
		})
	}
}
