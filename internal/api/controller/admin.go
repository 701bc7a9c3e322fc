package controller

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/ougirez/sidra/internal/pkg/constants"
	"github.com/ougirez/sidra/internal/service/auth"
)

type loginAdminRequest struct {
	Secret string `json:"secret" validate:"required"`
}

func (c *Controller) LoginAdmin(ctx echo.Context) error {
	var req loginAdminRequest
	if err := ctx.Bind(&req); err != nil {
		return err
	}

	token, err := c.auth.LoginAdmin(ctx.Request().Context(), req.Secret)
	if err != nil {
		return err
	}

	ctx.SetCookie(&http.Cookie{
		Name:     constants.CookieKeySecretToken,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(auth.AdminTokenTTL),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return ctx.NoContent(http.StatusNoContent)
}
