package controller

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/ougirez/sidra/internal/pkg/store"
)

type tableRequest struct {
	ID int64 `param:"id" validate:"gt=0"`
}

type categoriesRequest struct {
	ID               int64  `param:"id" validate:"gt=0"`
	ClassificationID *int64 `query:"classification_id"`
}

type sheetRequest struct {
	ID         int64  `param:"id" validate:"gt=0"`
	VariableID int64  `param:"variable_id" validate:"gt=0"`
	Limit      uint64 `query:"limit" validate:"lte=100000"`
	Offset     uint64 `query:"offset"`
}

type failuresRequest struct {
	RunID string `query:"run_id" validate:"omitempty,uuid"`
}

func (c *Controller) GetTables(ctx echo.Context) error {
	tables, err := c.catalog.ListTables(ctx.Request().Context())
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, tables)
}

func (c *Controller) GetTable(ctx echo.Context) error {
	var req tableRequest
	if err := ctx.Bind(&req); err != nil {
		return err
	}

	table, err := c.catalog.GetTable(ctx.Request().Context(), req.ID)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, table)
}

func (c *Controller) GetVariables(ctx echo.Context) error {
	var req tableRequest
	if err := ctx.Bind(&req); err != nil {
		return err
	}

	variables, err := c.catalog.ListVariables(ctx.Request().Context(), req.ID)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, variables)
}

func (c *Controller) GetCategories(ctx echo.Context) error {
	var req categoriesRequest
	if err := ctx.Bind(&req); err != nil {
		return err
	}

	categories, err := c.catalog.ListCategories(ctx.Request().Context(), store.ListCategoriesOpts{
		TableID:          req.ID,
		ClassificationID: req.ClassificationID,
	})
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, categories)
}

func (c *Controller) GetSheet(ctx echo.Context) error {
	var req sheetRequest
	if err := ctx.Bind(&req); err != nil {
		return err
	}

	sheet, err := c.catalog.GetSheet(ctx.Request().Context(), store.ListObservationsOpts{
		TableID:    req.ID,
		VariableID: req.VariableID,
		Limit:      req.Limit,
		Offset:     req.Offset,
	})
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, sheet)
}

func (c *Controller) GetDescription(ctx echo.Context) error {
	var req tableRequest
	if err := ctx.Bind(&req); err != nil {
		return err
	}

	description, err := c.catalog.Describe(ctx.Request().Context(), req.ID)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, description)
}

func (c *Controller) GetFailures(ctx echo.Context) error {
	var req failuresRequest
	if err := ctx.Bind(&req); err != nil {
		return err
	}

	var runID *string
	if req.RunID != "" {
		runID = &req.RunID
	}

	failures, err := c.catalog.ListFailures(ctx.Request().Context(), runID)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, failures)
}
