package sqlxrepos_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filmsfather/CampusWoodieVer2/core/assignment"
	"github.com/filmsfather/CampusWoodieVer2/core/class"
	"github.com/filmsfather/CampusWoodieVer2/core/srs"
	"github.com/filmsfather/CampusWoodieVer2/core/study"
	"github.com/filmsfather/CampusWoodieVer2/core/user"
	"github.com/filmsfather/CampusWoodieVer2/core/workbook"
	sqlxrepos "github.com/filmsfather/CampusWoodieVer2/storage/database/sqlx"
	"github.com/filmsfather/CampusWoodieVer2/tests"
)

func TestUserRepository(t *testing.T) {
	db := testutil.PrepareDB(t)
	repo := sqlxrepos.NewUserRepository(db)
	ctx := context.Background()

	usr := testutil.CreateUser(t, repo, "Kim Teacher", "kim@test.kr", user.RoleTeacher)
	anon := testutil.CreateUser(t, repo, "No Mail", "", user.RoleStudent)

	got, err := repo.GetUserByID(ctx, usr.ID)
	require.NoError(t, err)
	assert.Equal(t, "Kim Teacher", got.Name)
	assert.Equal(t, user.RoleTeacher, got.Role)

	got, err = repo.GetUserByEmail(ctx, "kim@test.kr")
	require.NoError(t, err)
	assert.Equal(t, usr.ID, got.ID)

	got, err = repo.GetUserByID(ctx, anon.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Email)

	_, err = repo.GetUserByID(ctx, "missing")
	assert.ErrorIs(t, err, user.ErrNotFound)

	assert.ErrorIs(t, repo.CheckEmailUniqueness(ctx, "kim@test.kr"), user.ErrEmailExists)
	assert.NoError(t, repo.CheckEmailUniqueness(ctx, "lee@test.kr"))
}

func TestClassRepository(t *testing.T) {
	db := testutil.PrepareDB(t)
	usrRepo := sqlxrepos.NewUserRepository(db)
	repo := sqlxrepos.NewClassRepository(db)
	ctx := context.Background()

	s1 := testutil.CreateUser(t, usrRepo, "Student 1", "s1@test.kr", user.RoleStudent)
	s2 := testutil.CreateUser(t, usrRepo, "Student 2", "s2@test.kr", user.RoleStudent)
	cls := testutil.CreateClass(t, repo, "Directing A", s1.ID, s2.ID)

	got, err := repo.GetClassByName(ctx, "Directing A")
	require.NoError(t, err)
	assert.Equal(t, cls.ID, got.ID)

	_, err = repo.GetClassByID(ctx, "missing")
	assert.ErrorIs(t, err, class.ErrNotFound)
	assert.ErrorIs(t, repo.CheckClassNameUniqueness(ctx, "Directing A"), class.ErrNameExists)

	// adding a member twice is a no-op
	require.NoError(t, repo.AddClassMember(ctx, cls.ID, s1.ID))
	ids, err := repo.ListClassMemberIDs(ctx, cls.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{s1.ID, s2.ID}, ids)
}

func TestWorkbookRepository(t *testing.T) {
	db := testutil.PrepareDB(t)
	usrRepo := sqlxrepos.NewUserRepository(db)
	repo := sqlxrepos.NewWorkbookRepository(db)
	ctx := context.Background()

	teacher := testutil.CreateUser(t, usrRepo, "Teacher", "t@test.kr", user.RoleTeacher)
	wb := testutil.CreateWorkbook(t, repo, teacher.ID, "Film History", workbook.TypeSRS,
		testutil.MCQ("Who directed Rashomon?", "1", "Ozu", "Kurosawa", "Mizoguchi"),
		testutil.Short("Year of Rashomon?", "1950"),
	)

	got, err := repo.GetWorkbookByID(ctx, wb.ID)
	require.NoError(t, err)
	assert.Equal(t, "Film History", got.Title)
	assert.Equal(t, teacher.ID, got.CreatedBy)
	assert.Nil(t, got.Week)

	items, err := repo.ListItems(ctx, wb.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, 1, items[0].Position)
	assert.Equal(t, []string{"Ozu", "Kurosawa", "Mizoguchi"}, items[0].Options)
	assert.Equal(t, srs.ItemShort, items[1].Type)
	assert.Nil(t, items[1].Options)

	max, err := repo.MaxItemPosition(ctx, wb.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, max)

	empty := testutil.CreateWorkbook(t, repo, teacher.ID, "Empty", workbook.TypeSRS)
	max, err = repo.MaxItemPosition(ctx, empty.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, max)

	it := items[1]
	it.AnswerKey = "1950년"
	it.UpdatedAt = time.Now().UTC()
	_, err = repo.UpdateItem(ctx, it)
	require.NoError(t, err)
	got2, err := repo.GetItemByID(ctx, it.ID)
	require.NoError(t, err)
	assert.Equal(t, "1950년", got2.AnswerKey)

	_, err = repo.GetItemByID(ctx, "missing")
	assert.ErrorIs(t, err, workbook.ErrItemNotFound)
	_, err = repo.GetWorkbookByID(ctx, "missing")
	assert.ErrorIs(t, err, workbook.ErrNotFound)
}

func TestAssignmentRepository(t *testing.T) {
	db := testutil.PrepareDB(t)
	usrRepo := sqlxrepos.NewUserRepository(db)
	wbRepo := sqlxrepos.NewWorkbookRepository(db)
	repo := sqlxrepos.NewAssignmentRepository(db)
	ctx := context.Background()

	teacher := testutil.CreateUser(t, usrRepo, "Teacher", "t@test.kr", user.RoleTeacher)
	s1 := testutil.CreateUser(t, usrRepo, "S1", "s1@test.kr", user.RoleStudent)
	s2 := testutil.CreateUser(t, usrRepo, "S2", "s2@test.kr", user.RoleStudent)
	wb := testutil.CreateWorkbook(t, wbRepo, teacher.ID, "Essay", workbook.TypeEssay)

	a := testutil.CreateAssignment(t, repo, wb.ID, teacher.ID, s1.ID, s2.ID)

	got, err := repo.GetAssignmentByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, wb.ID, got.WorkbookID)
	assert.Equal(t, assignment.TargetStudent, got.TargetType)

	// existing tasks are kept
	n, err := repo.CreateTasks(ctx, a.ID, []string{s1.ID, s2.ID}, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	total, completed, err := repo.CountTasks(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Equal(t, 0, completed)

	_, err = repo.GetAssignmentByID(ctx, "missing")
	assert.ErrorIs(t, err, assignment.ErrNotFound)
}

func TestStudyRepository(t *testing.T) {
	db := testutil.PrepareDB(t)
	usrRepo := sqlxrepos.NewUserRepository(db)
	wbRepo := sqlxrepos.NewWorkbookRepository(db)
	asgRepo := sqlxrepos.NewAssignmentRepository(db)
	repo := sqlxrepos.NewStudyRepository(db)
	ctx := context.Background()

	teacher := testutil.CreateUser(t, usrRepo, "Teacher", "t@test.kr", user.RoleTeacher)
	student := testutil.CreateUser(t, usrRepo, "Student", "s@test.kr", user.RoleStudent)
	wb := testutil.CreateWorkbook(t, wbRepo, teacher.ID, "Vocabulary", workbook.TypeSRS,
		testutil.Short("mise-en-scene", "staging"),
		testutil.Short("montage", "editing"),
	)
	a := testutil.CreateAssignment(t, asgRepo, wb.ID, teacher.ID, student.ID)
	taskID := testutil.TaskID(t, db, a.ID, student.ID)

	task, err := repo.GetTask(ctx, taskID)
	require.NoError(t, err)
	assert.Equal(t, study.StatusPending, task.Status)
	assert.Equal(t, wb.ID, task.WorkbookID)
	assert.Equal(t, "Vocabulary", task.WorkbookTitle)
	assert.Equal(t, teacher.ID, task.AssignedBy)
	assert.True(t, task.IsSRS())

	_, err = repo.GetTask(ctx, "missing")
	assert.ErrorIs(t, err, study.ErrTaskNotFound)

	states, err := repo.ListTaskStates(ctx, taskID)
	require.NoError(t, err)
	assert.Empty(t, states)

	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	resp := "staging"
	ans, err := repo.SaveReview(ctx, study.Review{
		Answer: study.Answer{
			TaskID:       taskID,
			ItemID:       wb.Items[0].ID,
			ResponseText: &resp,
			Correctness:  srs.Once,
		},
		State:       srs.ReviewState{Streak: 1, NextDueAt: now.Add(10 * time.Minute)},
		TaskStatus:  study.StatusInProgress,
		ProgressPct: 17,
		At:          now,
	})
	require.NoError(t, err)
	require.NotEmpty(t, ans.ID)

	// a second review of the same item updates the same answer
	wrong := "cutting"
	ans2, err := repo.SaveReview(ctx, study.Review{
		Answer: study.Answer{
			TaskID:       taskID,
			ItemID:       wb.Items[0].ID,
			ResponseText: &wrong,
			Correctness:  srs.Wrong,
		},
		State:       srs.ReviewState{Streak: 0, NextDueAt: now.Add(11 * time.Minute)},
		TaskStatus:  study.StatusInProgress,
		ProgressPct: 0,
		At:          now.Add(10 * time.Minute),
	})
	require.NoError(t, err)
	assert.Equal(t, ans.ID, ans2.ID)

	states, err = repo.ListTaskStates(ctx, taskID)
	require.NoError(t, err)
	require.Len(t, states, 1)
	st := states[wb.Items[0].ID]
	require.NotNil(t, st)
	assert.Equal(t, 0, st.Streak)
	assert.True(t, st.NextDueAt.Equal(now.Add(11*time.Minute)))

	task, err = repo.GetTask(ctx, taskID)
	require.NoError(t, err)
	assert.Equal(t, study.StatusInProgress, task.Status)
	assert.Equal(t, 0, task.ProgressPct)

	open, err := repo.ListOpenTasks(ctx, workbook.TypeSRS)
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, taskID, open[0].ID)

	open, err = repo.ListOpenTasks(ctx, workbook.TypePDF)
	require.NoError(t, err)
	assert.Empty(t, open)
}

func TestStudyRepository_reminders(t *testing.T) {
	db := testutil.PrepareDB(t)
	usrRepo := sqlxrepos.NewUserRepository(db)
	repo := sqlxrepos.NewStudyRepository(db)
	ctx := context.Background()

	s1 := testutil.CreateUser(t, usrRepo, "One", "one@test.kr", user.RoleStudent)
	s2 := testutil.CreateUser(t, usrRepo, "Two", "two@test.kr", user.RoleStudent)
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	reminded, err := repo.RemindedSince(ctx, now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Empty(t, reminded)

	require.NoError(t, repo.MarkReminded(ctx, []string{s1.ID, s2.ID}, now.Add(-30*time.Hour)))
	require.NoError(t, repo.MarkReminded(ctx, []string{s1.ID}, now.Add(-time.Hour)))

	reminded, err = repo.RemindedSince(ctx, now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{s1.ID: true}, reminded)
}

func TestStudyRepository_submissions(t *testing.T) {
	db := testutil.PrepareDB(t)
	usrRepo := sqlxrepos.NewUserRepository(db)
	wbRepo := sqlxrepos.NewWorkbookRepository(db)
	asgRepo := sqlxrepos.NewAssignmentRepository(db)
	repo := sqlxrepos.NewStudyRepository(db)
	ctx := context.Background()

	teacher := testutil.CreateUser(t, usrRepo, "Teacher", "t@test.kr", user.RoleTeacher)
	student := testutil.CreateUser(t, usrRepo, "Student", "s@test.kr", user.RoleStudent)
	essay := testutil.CreateWorkbook(t, wbRepo, teacher.ID, "Essay", workbook.TypeEssay)
	viewing := testutil.CreateWorkbook(t, wbRepo, teacher.ID, "Films", workbook.TypeViewing)
	essayTask := testutil.TaskID(t, db, testutil.CreateAssignment(t, asgRepo, essay.ID, teacher.ID, student.ID).ID, student.ID)
	viewTask := testutil.TaskID(t, db, testutil.CreateAssignment(t, asgRepo, viewing.ID, teacher.ID, student.ID).ID, student.ID)
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	_, err := repo.GetTextSubmission(ctx, essayTask)
	assert.ErrorIs(t, err, study.ErrNoSubmission)

	sub, err := repo.SaveTextSubmission(ctx, study.TextSubmission{TaskID: essayTask, Text: "draft", CreatedAt: now, UpdatedAt: now})
	require.NoError(t, err)
	assert.Nil(t, sub.SubmittedAt)

	later := now.Add(time.Hour)
	sub, err = repo.SaveTextSubmission(ctx, study.TextSubmission{TaskID: essayTask, Text: "final", SubmittedAt: &later, CreatedAt: later, UpdatedAt: later})
	require.NoError(t, err)
	assert.Equal(t, "final", sub.Text)
	require.NotNil(t, sub.SubmittedAt)
	assert.True(t, sub.SubmittedAt.Equal(later))
	assert.True(t, sub.CreatedAt.Equal(now), "created_at is kept on update")
	assert.True(t, sub.UpdatedAt.Equal(later))

	require.NoError(t, repo.UpdateTaskProgress(ctx, essayTask, study.StatusCompleted, 100, later))
	task, err := repo.GetTask(ctx, essayTask)
	require.NoError(t, err)
	assert.Equal(t, study.StatusCompleted, task.Status)
	assert.Equal(t, 100, task.ProgressPct)
	assert.ErrorIs(t, repo.UpdateTaskProgress(ctx, "missing", study.StatusCompleted, 100, later), study.ErrTaskNotFound)

	for i, title := range []string{"Stalker", "Mirror"} {
		at := now.Add(time.Duration(i) * time.Minute)
		note, err := repo.CreateViewingNote(ctx, study.ViewingNote{TaskID: viewTask, Title: title, Director: "Tarkovsky", Notes: "long takes", CreatedAt: at, UpdatedAt: at})
		require.NoError(t, err)
		assert.NotEmpty(t, note.ID)
	}
	notes, err := repo.ListViewingNotes(ctx, viewTask)
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, "Stalker", notes[0].Title)
	assert.Equal(t, "Tarkovsky", notes[0].Director)
	assert.Empty(t, notes[0].Country)
	assert.Equal(t, "Mirror", notes[1].Title)

	notes, err = repo.ListViewingNotes(ctx, essayTask)
	require.NoError(t, err)
	assert.Empty(t, notes)
}
