package testutil

import (
	"context"
	"fmt"
	"net/mail"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/filmsfather/CampusWoodieVer2/core"
	"github.com/filmsfather/CampusWoodieVer2/core/assignment"
	"github.com/filmsfather/CampusWoodieVer2/core/class"
	"github.com/filmsfather/CampusWoodieVer2/core/srs"
	"github.com/filmsfather/CampusWoodieVer2/core/user"
	"github.com/filmsfather/CampusWoodieVer2/core/workbook"
	"github.com/filmsfather/CampusWoodieVer2/storage/database"
)

// Config returns the configuration used by tests.
func Config() *core.Config {
	return &core.Config{
		AppName:          "Campus Woodie",
		Env:              "TEST",
		TestMode:         true,
		FrontendBaseURL:  "http://localhost:3000",
		DefaultFromEmail: mail.Address{Name: "Campus Woodie", Address: "noreply@localhost"},
		Server:           core.ServerConfig{DisableReqLogs: true},
		Reminder:         core.ReminderConfig{Enabled: true, Interval: time.Hour, Cooldown: 24 * time.Hour},
	}
}

// Logger logs through testing.T.
type Logger struct {
	t      *testing.T
	Errors []string
}

var _ core.Logger = (*Logger)(nil)

func NewLogger(t *testing.T) *Logger { return &Logger{t: t} }

func (l *Logger) log(level, msg string, args []interface{}) {
	l.t.Logf("%s: %s %v", level, msg, args)
}

func (l *Logger) Debug(msg string, args ...interface{}) { l.log("DEBUG", msg, args) }
func (l *Logger) Info(msg string, args ...interface{})  { l.log("INFO", msg, args) }
func (l *Logger) Warn(msg string, args ...interface{})  { l.log("WARN", msg, args) }
func (l *Logger) Error(msg string, args ...interface{}) {
	l.Errors = append(l.Errors, msg)
	l.log("ERROR", msg, args)
}
func (l *Logger) Fatal(msg string, args ...interface{}) {
	l.log("FATAL", msg, args)
	l.t.FailNow()
}

// PrepareDB opens a fresh in-memory SQLite database with every migration applied.
func PrepareDB(t *testing.T) *sqlx.DB {
	t.Helper()

	sqlx.BindDriver("sqlite", sqlx.QUESTION)
	db, err := sqlx.Open("sqlite", "file::memory:?_pragma=foreign_keys(1)")
	require.NoError(t, err, "opening test database")
	// every connection to :memory: is a new database
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	t.Cleanup(func() { _ = db.Close() })

	goose.SetLogger(goose.NopLogger())
	require.NoError(t, database.Migrate(context.Background(), db), "migrating test database")
	return db
}

// Clock is a settable srs.Clock.
type Clock struct {
	Time time.Time
}

func (c *Clock) Now() time.Time          { return c.Time }
func (c *Clock) Advance(d time.Duration) { c.Time = c.Time.Add(d) }

var _ srs.Clock = (*Clock)(nil)

func CreateUser(t *testing.T, repo user.Repository, name, email, role string) user.User {
	t.Helper()
	now := time.Now().UTC()
	usr, err := repo.CreateUser(context.Background(), user.User{
		Name:      name,
		Email:     email,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	})
	require.NoError(t, err, "CreateUser()")
	return usr
}

func CreateClass(t *testing.T, repo class.Repository, name string, memberIDs ...string) class.Class {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC()
	cls, err := repo.CreateClass(ctx, class.Class{Name: name, CreatedAt: now, UpdatedAt: now})
	require.NoError(t, err, "CreateClass()")
	for _, id := range memberIDs {
		require.NoError(t, repo.AddClassMember(ctx, cls.ID, id), "AddClassMember()")
	}
	return cls
}

func MCQ(prompt, key string, options ...string) workbook.NewItem {
	return workbook.NewItem{Prompt: prompt, Type: srs.ItemMCQ, Options: options, AnswerKey: key}
}

func Short(prompt, key string) workbook.NewItem {
	return workbook.NewItem{Prompt: prompt, Type: srs.ItemShort, AnswerKey: key}
}

// CreateWorkbook creates a workbook of type typ with items at positions 1..n.
func CreateWorkbook(t *testing.T, repo workbook.Repository, creatorID, title, typ string, items ...workbook.NewItem) workbook.Workbook {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC()
	wb, err := repo.CreateWorkbook(ctx, workbook.Workbook{
		Title:     title,
		Subject:   workbook.SubjectDirecting,
		Type:      typ,
		CreatedBy: creatorID,
		CreatedAt: now,
		UpdatedAt: now,
	})
	require.NoError(t, err, "CreateWorkbook()")
	for i, ni := range items {
		it, err := repo.CreateItem(ctx, workbook.Item{
			WorkbookID: wb.ID,
			Position:   i + 1,
			Prompt:     ni.Prompt,
			Type:       ni.Type,
			Options:    ni.Options,
			AnswerKey:  ni.AnswerKey,
			CreatedAt:  now,
			UpdatedAt:  now,
		})
		require.NoError(t, err, "CreateItem()")
		wb.Items = append(wb.Items, it)
	}
	return wb
}

// CreateAssignment assigns a workbook to students directly and creates their tasks.
func CreateAssignment(t *testing.T, repo assignment.Repository, workbookID, creatorID string, studentIDs ...string) assignment.Assignment {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC()
	target := ""
	if len(studentIDs) > 0 {
		target = studentIDs[0]
	}
	a, err := repo.CreateAssignment(ctx, assignment.Assignment{
		WorkbookID: workbookID,
		TargetType: assignment.TargetStudent,
		TargetID:   target,
		DueAt:      now.Add(7 * 24 * time.Hour),
		CreatedBy:  creatorID,
		CreatedAt:  now,
	})
	require.NoError(t, err, "CreateAssignment()")
	_, err = repo.CreateTasks(ctx, a.ID, studentIDs, now)
	require.NoError(t, err, "CreateTasks()")
	return a
}

// TaskID returns the id of the task of a student for an assignment.
func TaskID(t *testing.T, db *sqlx.DB, assignmentID, userID string) string {
	t.Helper()
	var id string
	err := db.Get(&id, "SELECT id FROM student_tasks WHERE assignment_id = ? AND user_id = ?", assignmentID, userID)
	require.NoError(t, err, fmt.Sprintf("TaskID(%s, %s)", assignmentID, userID))
	return id
}
