package controller

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type periodsRequest struct {
	Frequency string `query:"frequency" validate:"required"`
	Start     string `query:"start" validate:"required"`
	End       string `query:"end" validate:"required"`
}

// GetPeriods окна периода, на которые будет разбит запрос.
func (c *Controller) GetPeriods(ctx echo.Context) error {
	var req periodsRequest
	if err := ctx.Bind(&req); err != nil {
		return err
	}

	windows, err := c.catalog.PreviewWindows(req.Frequency, req.Start, req.End)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, windows)
}
