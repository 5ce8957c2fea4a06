package echoapi

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/filmsfather/CampusWoodieVer2/core/review"
	"github.com/filmsfather/CampusWoodieVer2/core/user"
)

type essayApi struct {
	svc      review.Service
	validate *validator.Validate
}

func registerEssayAPI(g *echo.Group, svc review.Service, validate *validator.Validate) {
	api := essayApi{svc: svc, validate: validate}

	eg := g.Group("/essays", roleMiddleware(user.RoleTeacher, user.RoleAdmin))
	eg.GET("", api.list)
	eg.GET("/stats", api.stats)
	eg.GET("/:taskID", api.retrieve)
	eg.PUT("/:taskID/review", api.review)
}

// list returns the handed-in essays, only the unreviewed ones with ?pending=true.
func (api *essayApi) list(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	var pending bool
	if p := ctx.QueryParam("pending"); p != "" {
		if pending, err = strconv.ParseBool(p); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid pending parameter")
		}
	}
	subs, err := api.svc.List(ctx.Request().Context(), usr, pending)
	if err != nil {
		return errors.Wrap(err, "listing essays")
	}
	return ctx.JSON(http.StatusOK, subs)
}

func (api *essayApi) stats(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	st, err := api.svc.Stats(ctx.Request().Context(), usr)
	if err != nil {
		return errors.Wrap(err, "getting essay review stats")
	}
	return ctx.JSON(http.StatusOK, st)
}

func (api *essayApi) retrieve(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	sub, err := api.svc.Get(ctx.Request().Context(), usr, ctx.Param("taskID"))
	if err != nil {
		return errors.Wrap(err, "getting essay")
	}
	return ctx.JSON(http.StatusOK, sub)
}

func (api *essayApi) review(ctx echo.Context) error {
	var data review.NewReview
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewReview")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	sub, err := api.svc.Review(ctx.Request().Context(), usr, ctx.Param("taskID"), data)
	if err != nil {
		return errors.Wrap(err, "reviewing essay")
	}
	return ctx.JSON(http.StatusOK, sub)
}
