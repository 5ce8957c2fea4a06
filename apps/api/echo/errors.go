package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/filmsfather/CampusWoodieVer2/core"
	"github.com/filmsfather/CampusWoodieVer2/core/assignment"
	"github.com/filmsfather/CampusWoodieVer2/core/class"
	"github.com/filmsfather/CampusWoodieVer2/core/review"
	"github.com/filmsfather/CampusWoodieVer2/core/study"
	"github.com/filmsfather/CampusWoodieVer2/core/user"
	"github.com/filmsfather/CampusWoodieVer2/core/workbook"
)

var (
	errUnauthorized  = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	errHttpForbidden = echo.NewHTTPError(http.StatusForbidden, "permission denied")
	errHttpNotFound  = echo.NewHTTPError(http.StatusNotFound, "not found")
)

// domainErrors maps the domain errors a client can trigger to HTTP errors.
var domainErrors = map[error]*echo.HTTPError{
	user.ErrNotFound:          errHttpNotFound,
	class.ErrNotFound:         errHttpNotFound,
	workbook.ErrNotFound:      errHttpNotFound,
	workbook.ErrItemNotFound:  errHttpNotFound,
	assignment.ErrNotFound:    errHttpNotFound,
	study.ErrTaskNotFound:     errHttpNotFound,
	study.ErrItemNotFound:     echo.NewHTTPError(http.StatusNotFound, study.ErrItemNotFound.Error()),
	study.ErrNotSRSTask:       echo.NewHTTPError(http.StatusBadRequest, study.ErrNotSRSTask.Error()),
	study.ErrQuestionMastered: echo.NewHTTPError(http.StatusConflict, study.ErrQuestionMastered.Error()),
	study.ErrQuestionNotDue:   echo.NewHTTPError(http.StatusConflict, study.ErrQuestionNotDue.Error()),
	study.ErrWrongTaskType:    echo.NewHTTPError(http.StatusBadRequest, study.ErrWrongTaskType.Error()),
	study.ErrTaskSubmitted:    echo.NewHTTPError(http.StatusConflict, study.ErrTaskSubmitted.Error()),
	study.ErrNoSubmission:     echo.NewHTTPError(http.StatusNotFound, study.ErrNoSubmission.Error()),
	review.ErrNotFound:        echo.NewHTTPError(http.StatusNotFound, review.ErrNotFound.Error()),
	workbook.ErrEmptySheet:    echo.NewHTTPError(http.StatusBadRequest, workbook.ErrEmptySheet.Error()),
	assignment.ErrNoLearner:   echo.NewHTTPError(http.StatusBadRequest, assignment.ErrNoLearner.Error()),
}

// domainHTTPError returns the HTTP error of a known domain error.
// Validation errors are slices, so they are matched with errors.Is rather than used as map keys.
func domainHTTPError(err error) (*echo.HTTPError, bool) {
	for target, herr := range domainErrors {
		if errors.Is(err, target) {
			return herr, true
		}
	}
	return nil, false
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		cause := errors.Cause(err)
		if herr, ok := domainHTTPError(cause); ok {
			cause = herr
		}

		switch origErr := cause.(type) {
		case *echo.HTTPError:
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = origErr.Message
		case validator.ValidationErrors:
			code = http.StatusBadRequest
			message = core.ValidationFieldErrors(origErr, translator)
		case *core.ValidationError:
			if flds := origErr.FieldMap(); flds != nil {
				message = flds
			} else {
				message = origErr.Error()
			}
			code = http.StatusBadRequest
		default: // any other error is a server error
			code = http.StatusInternalServerError
			msg := http.StatusText(http.StatusInternalServerError)
			message = msg

			args := []interface{}{errors.Wrap(err, msg)}
			if usr, ok := ctx.Get(contextUserKey).(user.User); ok {
				args = append(args, usr)
			}
			logger.Error(msg, args...)

			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}
		}

		if ctx.Echo().Debug {
			message = err.Error()
		}
		if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
