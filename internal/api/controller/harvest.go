package controller

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/ougirez/sidra/internal/domain/dto"
)

type harvestRequest struct {
	TableIDs    []int64 `json:"table_ids" validate:"required,min=1,dive,gt=0"`
	RetryFailed bool    `json:"retry_failed"`
}

type harvestResponse struct {
	dto.HarvestSummary
	Retry *dto.HarvestSummary `json:"retry,omitempty"`
}

func (c *Controller) Harvest(ctx echo.Context) error {
	var req harvestRequest
	if err := ctx.Bind(&req); err != nil {
		return err
	}

	result, err := c.harvest.Run(ctx.Request().Context(), req.TableIDs)
	if err != nil {
		return err
	}
	resp := harvestResponse{HarvestSummary: result.Summary()}

	if req.RetryFailed && len(resp.Failures) > 0 {
		retried, err := c.harvest.RetryFailed(ctx.Request().Context(), resp.Failures)
		if err != nil {
			return err
		}
		summary := retried.Summary()
		resp.Retry = &summary
	}

	return ctx.JSON(http.StatusOK, resp)
}
