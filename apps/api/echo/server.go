package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/filmsfather/CampusWoodieVer2/core"
	"github.com/filmsfather/CampusWoodieVer2/core/assignment"
	"github.com/filmsfather/CampusWoodieVer2/core/review"
	"github.com/filmsfather/CampusWoodieVer2/core/study"
	"github.com/filmsfather/CampusWoodieVer2/core/user"
	"github.com/filmsfather/CampusWoodieVer2/core/workbook"
)

type ServerDeps struct {
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

type Server struct {
	app      *echo.Echo
	addr     string
	errors   chan error
	shutdown chan os.Signal
}

func NewServer(deps ServerDeps) *Server {
	s := &Server{
		app:      echo.New(),
		addr:     deps.Conf.Server.Address,
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.setup(deps)
	return s
}

func (s *Server) setup(deps ServerDeps) {
	conf := deps.Conf

	s.app.HideBanner = true
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !conf.Server.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(deps.Logger, deps.Translator, s.signalShutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/", home(conf.AppName))

	v1 := s.app.Group("/v1", userMiddleware(deps.UserSvc))
	registerWorkbookAPI(v1, deps.WorkbookSvc, deps.Validate)
	registerAssignmentAPI(v1, deps.AssignmentSvc, deps.Validate)
	registerTaskAPI(v1, deps.StudySvc, deps.Validate)
	registerEssayAPI(v1, deps.ReviewSvc, deps.Validate)
}

// Start listens until the server is shut down. Listening errors are sent to Errors.
func (s *Server) Start() {
	if err := s.app.Start(s.addr); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *Server) Errors() <-chan error { return s.errors }

func (s *Server) ShutdownSignal() <-chan os.Signal { return s.shutdown }

func (s *Server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default:
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(appName string) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		return ctx.String(http.StatusOK, "Welcome to "+appName+" API!")
	}
}
