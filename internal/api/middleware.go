package api

import (
	"github.com/labstack/echo/v4"
	"github.com/ougirez/sidra/internal/pkg/constants"
)

// AdminMiddleware пускает только с cookie secret_token, выданной /admin/login.
func (svc *APIService) AdminMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		cookie, err := ctx.Cookie(constants.CookieKeySecretToken)
		if err != nil {
			return constants.ErrUnauthorized
		}

		if err = svc.authService.Authorize(ctx.Request().Context(), cookie.Value); err != nil {
			return err
		}

		return next(ctx)
	}
}
