package tests

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filmsfather/CampusWoodieVer2/core/review"
	"github.com/filmsfather/CampusWoodieVer2/core/study"
	"github.com/filmsfather/CampusWoodieVer2/core/user"
	"github.com/filmsfather/CampusWoodieVer2/core/workbook"
	"github.com/filmsfather/CampusWoodieVer2/tests"
)

func Test_essayFlow(t *testing.T) {
	app := setup(t)
	teacher := testutil.CreateUser(t, usrRepo, "Teacher", "t@test.kr", user.RoleTeacher)
	otherTeacher := testutil.CreateUser(t, usrRepo, "Other Teacher", "", user.RoleTeacher)
	student := testutil.CreateUser(t, usrRepo, "Student", "s@test.kr", user.RoleStudent)
	wb := testutil.CreateWorkbook(t, wbRepo, teacher.ID, "On Bresson", workbook.TypeEssay)
	cards := testutil.CreateWorkbook(t, wbRepo, teacher.ID, "Cards", workbook.TypeSRS, testutil.Short("q", "a"))
	taskID := testutil.TaskID(t, db, testutil.CreateAssignment(t, asgRepo, wb.ID, teacher.ID, student.ID).ID, student.ID)
	srsTask := testutil.TaskID(t, db, testutil.CreateAssignment(t, asgRepo, cards.ID, teacher.ID, student.ID).ID, student.ID)
	taskPath := "/v1/tasks/" + taskID
	essayPath := "/v1/essays/" + taskID

	runTests(t, app, []httpTest{
		{
			name:     "nothing yet",
			method:   http.MethodGet,
			path:     taskPath + "/submission",
			userID:   student.ID,
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: study.ErrNoSubmission.Error()}),
		},
		{
			name:     "blank text",
			method:   http.MethodPut,
			path:     taskPath + "/submission",
			body:     []byte(`{"text": "   "}`),
			userID:   student.ID,
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"text": "this field cannot be blank"}),
		},
		{
			name:     "srs task",
			method:   http.MethodPut,
			path:     "/v1/tasks/" + srsTask + "/submission",
			body:     []byte(`{"text": "essay"}`),
			userID:   student.ID,
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: study.ErrWrongTaskType.Error()}),
		},
		{
			name:     "draft",
			method:   http.MethodPut,
			path:     taskPath + "/submission",
			body:     []byte(`{"text": "Pickpocket is about hands."}`),
			userID:   student.ID,
			wantCode: http.StatusOK,
			wantData: marchallObj(t, study.TextSubmission{
				TaskID:    taskID,
				Text:      "Pickpocket is about hands.",
				CreatedAt: clock.Now(),
				UpdatedAt: clock.Now(),
			}),
		},
		{
			name:     "draft is not reviewable",
			method:   http.MethodGet,
			path:     essayPath,
			userID:   teacher.ID,
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: review.ErrNotFound.Error()}),
		},
	})

	clock.Advance(time.Hour)
	req, rec := newAuthRequest(http.MethodPut, taskPath+"/submission", student.ID,
		[]byte(`{"text": "Pickpocket is about hands and grace.", "final": true}`))
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var sub study.TextSubmission
	unmarchallObj(t, rec, &sub)
	require.NotNil(t, sub.SubmittedAt)
	assert.True(t, sub.SubmittedAt.Equal(clock.Now()))

	sent := mailSvc.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "t@test.kr", sent[0].To[0].Address)
	mailSvc.Reset()

	runTests(t, app, []httpTest{
		{
			name:     "resubmission",
			method:   http.MethodPut,
			path:     taskPath + "/submission",
			body:     []byte(`{"text": "changed my mind", "final": true}`),
			userID:   student.ID,
			wantCode: http.StatusConflict,
			wantData: marchallObj(t, httpErr{Error: study.ErrTaskSubmitted.Error()}),
		},
		{
			name:     "progress",
			method:   http.MethodGet,
			path:     taskPath,
			userID:   student.ID,
			wantCode: http.StatusOK,
			wantData: marchallObj(t, study.ProgressResult{TaskID: taskID, Status: study.StatusCompleted, ProgressPct: 100}),
		},
		{
			name:     "student cannot review",
			method:   http.MethodGet,
			path:     essayPath,
			userID:   student.ID,
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, errForbidden),
		},
		{
			name:     "another teacher's essay",
			method:   http.MethodGet,
			path:     essayPath,
			userID:   otherTeacher.ID,
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: review.ErrNotFound.Error()}),
		},
		{
			name:     "empty review",
			method:   http.MethodPut,
			path:     essayPath + "/review",
			body:     []byte(`{}`),
			userID:   teacher.ID,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "stats before review",
			method:   http.MethodGet,
			path:     "/v1/essays/stats",
			userID:   teacher.ID,
			wantCode: http.StatusOK,
			wantData: marchallObj(t, review.Stats{Total: 1, Pending: 1}),
		},
		{
			name:     "invalid pending filter",
			method:   http.MethodGet,
			path:     "/v1/essays?pending=maybe",
			userID:   teacher.ID,
			wantCode: http.StatusBadRequest,
		},
	})

	req, rec = newAuthRequest(http.MethodPut, essayPath+"/review", teacher.ID,
		marchallObj(t, review.NewReview{Grade: "A", Feedback: "Good reading of the hands."}))
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var reviewed review.Submission
	unmarchallObj(t, rec, &reviewed)
	require.NotNil(t, reviewed.Review)
	assert.Equal(t, "A", reviewed.Review.Grade)
	assert.Equal(t, "Pickpocket is about hands and grace.", reviewed.Text)

	sent = mailSvc.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "s@test.kr", sent[0].To[0].Address)

	req, rec = newAuthRequest(http.MethodGet, "/v1/essays?pending=true", teacher.ID)
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: []byte(`[]`)}, rec)

	req, rec = newAuthRequest(http.MethodGet, "/v1/essays/stats", teacher.ID)
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusOK,
		wantData: marchallObj(t, review.Stats{Total: 1, Reviewed: 1, Rate: 100}),
	}, rec)
}

func Test_viewingNotes(t *testing.T) {
	app := setup(t)
	teacher := testutil.CreateUser(t, usrRepo, "Teacher", "", user.RoleTeacher)
	student := testutil.CreateUser(t, usrRepo, "Student", "s@test.kr", user.RoleStudent)
	wb := testutil.CreateWorkbook(t, wbRepo, teacher.ID, "Films", workbook.TypeViewing)
	taskID := testutil.TaskID(t, db, testutil.CreateAssignment(t, asgRepo, wb.ID, teacher.ID, student.ID).ID, student.ID)
	taskPath := "/v1/tasks/" + taskID

	runTests(t, app, []httpTest{
		{
			name:     "no notes",
			method:   http.MethodGet,
			path:     taskPath + "/notes",
			userID:   student.ID,
			wantCode: http.StatusOK,
			wantData: []byte(`[]`),
		},
		{
			name:     "empty note",
			method:   http.MethodPost,
			path:     taskPath + "/notes",
			body:     []byte(`{}`),
			userID:   student.ID,
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"title": "this field cannot be blank",
				"notes": "this field cannot be blank",
			}),
		},
		{
			name:     "essay endpoint",
			method:   http.MethodPut,
			path:     taskPath + "/submission",
			body:     []byte(`{"text": "wrong place"}`),
			userID:   student.ID,
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: study.ErrWrongTaskType.Error()}),
		},
	})

	req, rec := newAuthRequest(http.MethodPost, taskPath+"/notes", student.ID,
		marchallObj(t, study.NewViewingNote{Title: "L'Argent", Country: "France", Director: "Bresson", Notes: "money changes hands"}))
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var res study.NoteResult
	unmarchallObj(t, rec, &res)
	assert.Equal(t, 1, res.Count)
	assert.Equal(t, 100, res.ProgressPct)
	assert.Equal(t, study.StatusCompleted, res.Status)
	assert.Equal(t, "Bresson", res.Note.Director)

	req, rec = newAuthRequest(http.MethodGet, taskPath+"/notes", student.ID)
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var notes []study.ViewingNote
	unmarchallObj(t, rec, &notes)
	require.Len(t, notes, 1)
	assert.Equal(t, res.Note.ID, notes[0].ID)
}
