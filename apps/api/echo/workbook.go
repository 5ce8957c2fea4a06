package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/filmsfather/CampusWoodieVer2/core/user"
	"github.com/filmsfather/CampusWoodieVer2/core/workbook"
)

type workbookApi struct {
	svc      workbook.Service
	validate *validator.Validate
}

func registerWorkbookAPI(g *echo.Group, svc workbook.Service, validate *validator.Validate) {
	api := workbookApi{svc: svc, validate: validate}

	wg := g.Group("/workbooks", roleMiddleware(user.RoleTeacher, user.RoleAdmin))
	wg.POST("", api.create)
	wg.GET("/:id", api.retrieve)
	wg.POST("/:id/items", api.addItems)
	wg.PUT("/:id/items/:itemID", api.updateItem)
}

func (api *workbookApi) create(ctx echo.Context) error {
	var data workbook.NewWorkbook
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewWorkbook")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	wb, err := api.svc.Create(ctx.Request().Context(), usr.ID, data)
	if err != nil {
		return errors.Wrap(err, "creating workbook")
	}
	return ctx.JSON(http.StatusCreated, wb)
}

func (api *workbookApi) retrieve(ctx echo.Context) error {
	wb, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting workbook")
	}
	return ctx.JSON(http.StatusOK, wb)
}

func (api *workbookApi) addItems(ctx echo.Context) error {
	var data workbook.NewItems
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewItems")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	items, err := api.svc.AddItems(ctx.Request().Context(), ctx.Param("id"), data.Items...)
	if err != nil {
		return errors.Wrap(err, "adding items")
	}
	return ctx.JSON(http.StatusCreated, items)
}

func (api *workbookApi) updateItem(ctx echo.Context) error {
	var data workbook.UpdateItem
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateItem")
	}

	rctx := ctx.Request().Context()
	wbID, itemID := ctx.Param("id"), ctx.Param("itemID")
	orig, err := api.svc.GetItem(rctx, wbID, itemID)
	if err != nil {
		return errors.Wrap(err, "getting item")
	}
	ni := data.Apply(orig)
	if err = ni.Validate(api.validate); err != nil {
		return err
	}

	it, err := api.svc.UpdateItem(rctx, wbID, itemID, ni)
	if err != nil {
		return errors.Wrap(err, "updating item")
	}
	return ctx.JSON(http.StatusOK, it)
}
