package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/filmsfather/CampusWoodieVer2/core/assignment"
	"github.com/filmsfather/CampusWoodieVer2/core/user"
)

type assignmentApi struct {
	svc      assignment.Service
	validate *validator.Validate
}

type AssignResponse struct {
	assignment.Assignment
	TasksCreated int `json:"tasks_created"`
}

func registerAssignmentAPI(g *echo.Group, svc assignment.Service, validate *validator.Validate) {
	api := assignmentApi{svc: svc, validate: validate}

	ag := g.Group("/assignments", roleMiddleware(user.RoleTeacher, user.RoleAdmin))
	ag.POST("", api.create)
	ag.GET("/:id", api.retrieve)
	ag.GET("/:id/stats", api.stats)
}

func (api *assignmentApi) create(ctx echo.Context) error {
	var data assignment.NewAssignment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAssignment")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	a, created, err := api.svc.Assign(ctx.Request().Context(), usr.ID, data)
	if err != nil {
		return errors.Wrap(err, "assigning workbook")
	}
	return ctx.JSON(http.StatusCreated, AssignResponse{Assignment: a, TasksCreated: created})
}

func (api *assignmentApi) retrieve(ctx echo.Context) error {
	a, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting assignment")
	}
	return ctx.JSON(http.StatusOK, a)
}

func (api *assignmentApi) stats(ctx echo.Context) error {
	st, err := api.svc.CompletionStats(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting completion stats")
	}
	return ctx.JSON(http.StatusOK, st)
}
