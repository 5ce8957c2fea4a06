package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"

	. "github.com/filmsfather/CampusWoodieVer2/apps/api/echo"
	"github.com/filmsfather/CampusWoodieVer2/core"
	"github.com/filmsfather/CampusWoodieVer2/core/assignment"
	"github.com/filmsfather/CampusWoodieVer2/core/class"
	"github.com/filmsfather/CampusWoodieVer2/core/review"
	"github.com/filmsfather/CampusWoodieVer2/core/study"
	"github.com/filmsfather/CampusWoodieVer2/core/user"
	"github.com/filmsfather/CampusWoodieVer2/core/workbook"
	"github.com/filmsfather/CampusWoodieVer2/services/email"
	sqlxrepos "github.com/filmsfather/CampusWoodieVer2/storage/database/sqlx"
	"github.com/filmsfather/CampusWoodieVer2/tests"
)

var (
	db        *sqlx.DB
	usrRepo   user.Repository
	classRepo class.Repository
	wbRepo    workbook.Repository
	asgRepo   assignment.Repository
	clock     *testutil.Clock
	mailSvc   *emailsvc.ConsoleMock

	errUnauthorized = httpErr{Error: "user not authenticated"}
	errForbidden    = httpErr{Error: "permission denied"}
	errNotFound     = httpErr{Error: "not found"}
)

func setup(t *testing.T) *Server {
	conf := testutil.Config()
	logger := testutil.NewLogger(t)
	core.ParseEmailTemplates(conf, logger)

	// set up DB & repos
	db = testutil.PrepareDB(t)
	usrRepo = sqlxrepos.NewUserRepository(db)
	classRepo = sqlxrepos.NewClassRepository(db)
	wbRepo = sqlxrepos.NewWorkbookRepository(db)
	asgRepo = sqlxrepos.NewAssignmentRepository(db)

	// set up services
	clock = &testutil.Clock{Time: time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)}
	mailSvc = emailsvc.NewConsoleMock(conf, logger)
	usrSvc := user.NewService(usrRepo)
	wbSvc := workbook.NewService(db, wbRepo, clock)
	classSvc := class.NewService(classRepo, usrSvc)

	_en := en.New()
	translator, _ := ut.New(_en, _en).GetTranslator("en")
	validate := validator.New()
	core.InitValidators(validate, translator)
	workbook.InitValidators(validate, translator)

	// set up server
	return NewServer(
		ServerDeps{
			Conf:          conf,
			Logger:        logger,
			Validate:      validate,
			Translator:    translator,
			UserSvc:       usrSvc,
			WorkbookSvc:   wbSvc,
			AssignmentSvc: assignment.NewService(db, asgRepo, wbSvc, classSvc, usrSvc),
			StudySvc:      study.NewService(db, sqlxrepos.NewStudyRepository(db), wbSvc, usrSvc, mailSvc, clock, logger),
			ReviewSvc:     review.NewService(db, sqlxrepos.NewReviewRepository(db), usrSvc, mailSvc, clock, logger),
		},
	)
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	userID   string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, userID string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

func unmarchallObj(t *testing.T, rec *httptest.ResponseRecorder, obj interface{}) {
	if err := json.Unmarshal(rec.Body.Bytes(), obj); err != nil {
		t.Fatalf("unmarchallObj(): %v; body %s", err, rec.Body.String())
	}
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ObjectsAreEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func runTests(t *testing.T, app *Server, tests []httpTest) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.userID, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
