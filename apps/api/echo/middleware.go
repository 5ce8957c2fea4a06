package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/filmsfather/CampusWoodieVer2/core/user"
)

const (
	userIDHeader   = "X-User-ID"
	contextUserKey = "user"
)

// userMiddleware loads the acting user from the header set by the gateway.
func userMiddleware(svc user.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			id := ctx.Request().Header.Get(userIDHeader)
			if id == "" {
				return errUnauthorized
			}
			usr, err := svc.GetByID(ctx.Request().Context(), id)
			if err != nil {
				if errors.Cause(err) == user.ErrNotFound {
					return errUnauthorized
				}
				return errors.Wrap(err, "getting context user")
			}
			ctx.Set(contextUserKey, usr)
			return next(ctx)
		}
	}
}

func roleMiddleware(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			usr, err := getContextUser(ctx)
			if err != nil {
				return err
			}
			if !usr.HasAnyRole(roles...) {
				return errHttpForbidden
			}
			return next(ctx)
		}
	}
}

func getContextUser(ctx echo.Context) (user.User, error) {
	if usr, ok := ctx.Get(contextUserKey).(user.User); ok {
		return usr, nil
	}
	return user.User{}, errUnauthorized
}
