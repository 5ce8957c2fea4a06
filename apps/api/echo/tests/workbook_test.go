package tests

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filmsfather/CampusWoodieVer2/core/srs"
	"github.com/filmsfather/CampusWoodieVer2/core/user"
	"github.com/filmsfather/CampusWoodieVer2/core/workbook"
	"github.com/filmsfather/CampusWoodieVer2/tests"
)

func Test_home(t *testing.T) {
	app := setup(t)
	req, rec := newRequest(http.MethodGet, "/")
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Welcome to Campus Woodie API!", rec.Body.String())
}

func Test_workbookApi_create(t *testing.T) {
	app := setup(t)
	teacher := testutil.CreateUser(t, usrRepo, "Teacher", "t@test.kr", user.RoleTeacher)
	student := testutil.CreateUser(t, usrRepo, "Student", "s@test.kr", user.RoleStudent)

	valid := marchallObj(t, workbook.NewWorkbook{
		Title:   " Week 1 terms ",
		Subject: "Directing",
		Type:    "srs",
		Items: []workbook.NewItem{
			testutil.MCQ("Who directed Rashomon?", "1", "Ozu", "Kurosawa"),
			testutil.Short("Release year?", "1950"),
		},
	})

	runTests(t, app, []httpTest{
		{
			name:     "anonymous",
			method:   http.MethodPost,
			path:     "/v1/workbooks",
			body:     valid,
			wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, errUnauthorized),
		},
		{
			name:     "unknown user",
			method:   http.MethodPost,
			path:     "/v1/workbooks",
			body:     valid,
			userID:   "ghost",
			wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, errUnauthorized),
		},
		{
			name:     "student",
			method:   http.MethodPost,
			path:     "/v1/workbooks",
			body:     valid,
			userID:   student.ID,
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, errForbidden),
		},
		{
			name:     "invalid",
			method:   http.MethodPost,
			path:     "/v1/workbooks",
			body:     []byte(`{"title": " ", "subject": "music", "type": "PDF", "items": [{"prompt": "p", "type": "short", "answer_key": "a"}]}`),
			userID:   teacher.ID,
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"title":   "this field cannot be blank",
				"subject": "subject must be one of [directing writing research integrated]",
				"items":   "only SRS workbooks have items",
			}),
		},
	})

	req, rec := newAuthRequest(http.MethodPost, "/v1/workbooks", teacher.ID, valid)
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var wb workbook.Workbook
	unmarchallObj(t, rec, &wb)
	assert.Equal(t, "Week 1 terms", wb.Title)
	assert.Equal(t, workbook.SubjectDirecting, wb.Subject)
	assert.Equal(t, workbook.TypeSRS, wb.Type)
	assert.Equal(t, teacher.ID, wb.CreatedBy)
	require.Len(t, wb.Items, 2)
	assert.Equal(t, 2, wb.Items[1].Position)

	req, rec = newAuthRequest(http.MethodGet, "/v1/workbooks/"+wb.ID, teacher.ID)
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var got workbook.Workbook
	unmarchallObj(t, rec, &got)
	assert.Equal(t, wb.ID, got.ID)
	assert.Len(t, got.Items, 2)
}

func Test_workbookApi_items(t *testing.T) {
	app := setup(t)
	teacher := testutil.CreateUser(t, usrRepo, "Teacher", "t@test.kr", user.RoleTeacher)
	admin := testutil.CreateUser(t, usrRepo, "Admin", "a@test.kr", user.RoleAdmin)
	wb := testutil.CreateWorkbook(t, wbRepo, teacher.ID, "Cards", workbook.TypeSRS, testutil.Short("q1", "a1"))
	pdf := testutil.CreateWorkbook(t, wbRepo, teacher.ID, "Reading", workbook.TypePDF)

	runTests(t, app, []httpTest{
		{
			name:     "unknown workbook",
			method:   http.MethodGet,
			path:     "/v1/workbooks/missing",
			userID:   teacher.ID,
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, errNotFound),
		},
		{
			name:     "no items",
			method:   http.MethodPost,
			path:     "/v1/workbooks/" + wb.ID + "/items",
			body:     []byte(`{"items": []}`),
			userID:   teacher.ID,
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"items": "items must contain at least 1 item"}),
		},
		{
			name:     "invalid item",
			method:   http.MethodPost,
			path:     "/v1/workbooks/" + wb.ID + "/items",
			body:     []byte(`{"items": [{"prompt": "q", "type": "mcq", "options": ["a", "b"], "answer_key": "2"}]}`),
			userID:   teacher.ID,
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"items[0].answer_key": "must be the index of one of the options, starting at 0"}),
		},
		{
			name:     "not an SRS workbook",
			method:   http.MethodPost,
			path:     "/v1/workbooks/" + pdf.ID + "/items",
			body:     []byte(`{"items": [{"prompt": "q", "type": "short", "answer_key": "a"}]}`),
			userID:   teacher.ID,
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"items": "only SRS workbooks have items"}),
		},
		{
			name:     "item of another workbook",
			method:   http.MethodPut,
			path:     "/v1/workbooks/" + pdf.ID + "/items/" + wb.Items[0].ID,
			body:     []byte(`{"prompt": "new"}`),
			userID:   teacher.ID,
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, errNotFound),
		},
	})

	req, rec := newAuthRequest(http.MethodPost, "/v1/workbooks/"+wb.ID+"/items", admin.ID,
		[]byte(`{"items": [{"prompt": "q2", "type": "MCQ", "options": ["a", "b"], "answer_key": "1"}]}`))
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var added []workbook.Item
	unmarchallObj(t, rec, &added)
	require.Len(t, added, 1)
	assert.Equal(t, 2, added[0].Position)
	assert.Equal(t, srs.ItemMCQ, added[0].Type)

	req, rec = newAuthRequest(http.MethodPut, "/v1/workbooks/"+wb.ID+"/items/"+added[0].ID, teacher.ID,
		[]byte(`{"answer_key": "5"}`))
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusBadRequest,
		wantData: marchallObj(t, map[string]string{"answer_key": "must be the index of one of the options, starting at 0"}),
	}, rec)

	req, rec = newAuthRequest(http.MethodPut, "/v1/workbooks/"+wb.ID+"/items/"+added[0].ID, teacher.ID,
		[]byte(`{"type": "short", "answer_key": "b"}`))
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated workbook.Item
	unmarchallObj(t, rec, &updated)
	assert.Equal(t, srs.ItemShort, updated.Type)
	assert.Nil(t, updated.Options)
	assert.Equal(t, "b", updated.AnswerKey)
}
