package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/wholesaleops/stockledger/internal/inventory"
	"github.com/wholesaleops/stockledger/internal/inventory/dto"
	"github.com/wholesaleops/stockledger/internal/inventory/usecase"
	"github.com/wholesaleops/stockledger/internal/model"
	"github.com/wholesaleops/stockledger/pkg/httpres"
)

type InventoryHandler struct {
	uc     inventory.UseCase
	logger *zap.Logger
}

func NewInventoryHandler(uc inventory.UseCase, log *zap.Logger) *InventoryHandler {
	return &InventoryHandler{uc: uc, logger: log}
}

func (h *InventoryHandler) stockTable(c *fiber.Ctx) (string, bool) {
	table := c.Params("table")
	if !model.IsStockTable(table) {
		return "", false
	}
	return table, true
}

func (h *InventoryHandler) List(c *fiber.Ctx) error {
	table, ok := h.stockTable(c)
	if !ok {
		return httpres.BadRequest(c, "Unknown stock table", map[string]interface{}{
			"table": c.Params("table"),
		})
	}

	items, err := h.uc.List(c.UserContext(), table, c.Query("search"))
	if err != nil {
		h.logger.Error("failed to list stock items", zap.String("table", table), zap.Error(err))
		return httpres.InternalServerError(c, "Failed to list stock items", nil)
	}
	return httpres.Success(c, "Stock items retrieved", items)
}

func (h *InventoryHandler) Create(c *fiber.Ctx) error {
	table, ok := h.stockTable(c)
	if !ok {
		return httpres.BadRequest(c, "Unknown stock table", nil)
	}

	var input dto.StockItemInput
	if err := c.BodyParser(&input); err != nil {
		return httpres.BadRequest(c, "Invalid request body", map[string]interface{}{
			"parse_error": err.Error(),
		})
	}

	item, err := h.uc.Create(c.UserContext(), table, &input)
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidInput) {
			return httpres.BadRequest(c, err.Error(), nil)
		}
		h.logger.Error("failed to create stock item", zap.String("table", table), zap.Error(err))
		return httpres.InternalServerError(c, "Failed to create stock item", nil)
	}
	return httpres.Created(c, "Stock item created", item)
}

func (h *InventoryHandler) Update(c *fiber.Ctx) error {
	table, ok := h.stockTable(c)
	if !ok {
		return httpres.BadRequest(c, "Unknown stock table", nil)
	}

	var input dto.StockItemInput
	if err := c.BodyParser(&input); err != nil {
		return httpres.BadRequest(c, "Invalid request body", map[string]interface{}{
			"parse_error": err.Error(),
		})
	}

	item, err := h.uc.Update(c.UserContext(), table, c.Params("id"), &input)
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidInput) {
			return httpres.BadRequest(c, err.Error(), nil)
		}
		h.logger.Error("failed to update stock item", zap.String("table", table), zap.Error(err))
		return httpres.InternalServerError(c, "Failed to update stock item", nil)
	}
	return httpres.Success(c, "Stock item updated", item)
}

type commentRequest struct {
	Comment string `json:"comment"`
}

func (h *InventoryHandler) UpdateComment(c *fiber.Ctx) error {
	table, ok := h.stockTable(c)
	if !ok {
		return httpres.BadRequest(c, "Unknown stock table", nil)
	}

	var req commentRequest
	if err := c.BodyParser(&req); err != nil {
		return httpres.BadRequest(c, "Invalid request body", nil)
	}

	if err := h.uc.UpdateComment(c.UserContext(), table, c.Params("id"), req.Comment); err != nil {
		h.logger.Error("failed to update comment", zap.String("table", table), zap.Error(err))
		return httpres.InternalServerError(c, "Failed to update comment", nil)
	}
	return httpres.Success(c, "Comment updated", nil)
}

func (h *InventoryHandler) Delete(c *fiber.Ctx) error {
	table, ok := h.stockTable(c)
	if !ok {
		return httpres.BadRequest(c, "Unknown stock table", nil)
	}

	if err := h.uc.Delete(c.UserContext(), table, c.Params("id")); err != nil {
		h.logger.Error("failed to delete stock item", zap.String("table", table), zap.Error(err))
		return httpres.InternalServerError(c, "Failed to delete stock item", nil)
	}
	return httpres.Success(c, "Stock item deleted", nil)
}
