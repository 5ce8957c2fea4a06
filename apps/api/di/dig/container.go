package dig_container

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/filmsfather/CampusWoodieVer2/apps/api/echo"
	"github.com/filmsfather/CampusWoodieVer2/core"
	"github.com/filmsfather/CampusWoodieVer2/core/assignment"
	"github.com/filmsfather/CampusWoodieVer2/core/class"
	"github.com/filmsfather/CampusWoodieVer2/core/review"
	"github.com/filmsfather/CampusWoodieVer2/core/srs"
	"github.com/filmsfather/CampusWoodieVer2/core/study"
	"github.com/filmsfather/CampusWoodieVer2/core/user"
	"github.com/filmsfather/CampusWoodieVer2/core/workbook"
	emailsvc "github.com/filmsfather/CampusWoodieVer2/services/email"
	logsvc "github.com/filmsfather/CampusWoodieVer2/services/logger"
	schedsvc "github.com/filmsfather/CampusWoodieVer2/services/scheduler"
	"github.com/filmsfather/CampusWoodieVer2/storage/database"
	sqlxrepos "github.com/filmsfather/CampusWoodieVer2/storage/database/sqlx"
)

type DBLoggerParam struct {
	dig.In
	Logger core.Logger `name:"dbLogger"`
}

type serverParams struct {
	dig.In
	Conf          *core.Config
	Logger        core.Logger
	Validate      *validator.Validate
	Translator    ut.Translator
	UserSvc       user.Service
	WorkbookSvc   workbook.Service
	AssignmentSvc assignment.Service
	StudySvc      study.Service
	ReviewSvc     review.Service
}

func newLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "API : ", log.LstdFlags)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newDBLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newDB(conf *core.Config, loggerParam DBLoggerParam) (*sqlx.DB, core.DB, core.DBExecutor) {
	setUp := func() (*sqlx.DB, error) {
		if err := database.CreateIfNotExist(conf); err != nil {
			return nil, err
		}

		db, err := database.Open(conf)
		if err != nil {
			return nil, err
		}

		if err = database.Migrate(context.Background(), db); err != nil {
			return nil, err
		}
		return db, nil
	}

	db, err := setUp()
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	return db, db, db
}

func newEmailService(conf *core.Config, logger core.Logger) core.EmailService {
	if conf.Debug {
		return emailsvc.NewConsoleService(conf, logger)
	}
	return emailsvc.NewSendgridService(conf, logger)
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

func newClock() srs.Clock {
	return srs.SystemClock
}

func newServer(p serverParams) *echoapi.Server {
	return echoapi.NewServer(echoapi.ServerDeps{
		Conf:          p.Conf,
		Logger:        p.Logger,
		Validate:      p.Validate,
		Translator:    p.Translator,
		UserSvc:       p.UserSvc,
		WorkbookSvc:   p.WorkbookSvc,
		AssignmentSvc: p.AssignmentSvc,
		StudySvc:      p.StudySvc,
		ReviewSvc:     p.ReviewSvc,
	})
}

func newScheduler(conf *core.Config, svc study.Service, logger core.Logger) *schedsvc.Scheduler {
	return schedsvc.New(conf, svc, logger)
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newDB))
	must(c.Provide(newEmailService))
	must(c.Provide(newClock))
	must(c.Provide(validator.New))
	must(c.Provide(newTranslator))

	// repositories
	must(c.Provide(sqlxrepos.NewUserRepository, dig.As(new(user.Repository))))
	must(c.Provide(sqlxrepos.NewClassRepository, dig.As(new(class.Repository))))
	must(c.Provide(sqlxrepos.NewWorkbookRepository, dig.As(new(workbook.Repository))))
	must(c.Provide(sqlxrepos.NewAssignmentRepository, dig.As(new(assignment.Repository))))
	must(c.Provide(sqlxrepos.NewStudyRepository, dig.As(new(study.Repository))))
	must(c.Provide(sqlxrepos.NewReviewRepository, dig.As(new(review.Repository))))

	// services
	must(c.Provide(user.NewService))
	must(c.Provide(class.NewService))
	must(c.Provide(workbook.NewService))
	must(c.Provide(assignment.NewService))
	must(c.Provide(study.NewService))
	must(c.Provide(review.NewService))

	must(c.Provide(newServer))
	must(c.Provide(newScheduler))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
