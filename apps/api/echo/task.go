package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/filmsfather/CampusWoodieVer2/core/study"
)

type taskApi struct {
	svc      study.Service
	validate *validator.Validate
}

// Tasks are only visible to their learner, whatever the role.
func registerTaskAPI(g *echo.Group, svc study.Service, validate *validator.Validate) {
	api := taskApi{svc: svc, validate: validate}

	tg := g.Group("/tasks/:id")
	tg.GET("", api.progress)
	tg.GET("/next", api.next)
	tg.POST("/answers", api.submit)
	tg.GET("/submission", api.textSubmission)
	tg.PUT("/submission", api.submitText)
	tg.GET("/notes", api.viewingNotes)
	tg.POST("/notes", api.addViewingNote)
}

func (api *taskApi) progress(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	res, err := api.svc.Progress(ctx.Request().Context(), usr.ID, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting task progress")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *taskApi) next(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	res, err := api.svc.Next(ctx.Request().Context(), usr.ID, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting next question")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *taskApi) submit(ctx echo.Context) error {
	var data study.Submission
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Submission")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	res, err := api.svc.Submit(ctx.Request().Context(), usr.ID, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "submitting answer")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *taskApi) textSubmission(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	sub, err := api.svc.TextSubmission(ctx.Request().Context(), usr.ID, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting text submission")
	}
	return ctx.JSON(http.StatusOK, sub)
}

func (api *taskApi) submitText(ctx echo.Context) error {
	var data study.NewTextSubmission
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTextSubmission")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	sub, err := api.svc.SubmitText(ctx.Request().Context(), usr.ID, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "submitting text")
	}
	return ctx.JSON(http.StatusOK, sub)
}

func (api *taskApi) viewingNotes(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	notes, err := api.svc.ViewingNotes(ctx.Request().Context(), usr.ID, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "listing viewing notes")
	}
	return ctx.JSON(http.StatusOK, notes)
}

func (api *taskApi) addViewingNote(ctx echo.Context) error {
	var data study.NewViewingNote
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewViewingNote")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	res, err := api.svc.AddViewingNote(ctx.Request().Context(), usr.ID, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "adding viewing note")
	}
	return ctx.JSON(http.StatusCreated, res)
}
