package handler

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/wholesaleops/stockledger/internal/order"
	"github.com/wholesaleops/stockledger/internal/order/dto"
	"github.com/wholesaleops/stockledger/pkg/httpres"
)

type OrderHandler struct {
	uc     order.UseCase
	logger *zap.Logger
}

func NewOrderHandler(uc order.UseCase, log *zap.Logger) *OrderHandler {
	return &OrderHandler{uc: uc, logger: log}
}

func (h *OrderHandler) Create(c *fiber.Ctx) error {
	var input dto.CreateOrderInput
	if err := c.BodyParser(&input); err != nil {
		return httpres.BadRequest(c, "Invalid request body", map[string]interface{}{
			"parse_error": err.Error(),
		})
	}

	ord, err := h.uc.CreateOrder(c.UserContext(), &input)
	if err != nil {
		switch {
		case errors.Is(err, order.ErrMissingCustomerInfo),
			errors.Is(err, order.ErrEmptyCart),
			errors.Is(err, order.ErrInvalidQuantity),
			errors.Is(err, order.ErrDuplicateCartItem),
			errors.Is(err, order.ErrUnknownStockTable):
			return httpres.BadRequest(c, err.Error(), nil)
		case errors.Is(err, order.ErrDuplicateBillID):
			return httpres.Conflict(c, err.Error(), map[string]interface{}{
				"bill_id": input.BillID,
			})
		case errors.Is(err, order.ErrLockBusy):
			return httpres.ServiceUnavailable(c, err.Error())
		default:
			h.logger.Error("order creation failed", zap.String("bill_id", input.BillID), zap.Error(err))
			return httpres.InternalServerError(c, "Order creation failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	return httpres.Created(c, "Order created successfully", ord)
}

func (h *OrderHandler) Return(c *fiber.Ctx) error {
	billID := c.Params("billID")

	ord, err := h.uc.ReturnOrder(c.UserContext(), billID)
	if err != nil {
		switch {
		case errors.Is(err, order.ErrOrderNotFound):
			return httpres.NotFound(c, "Order not found")
		case errors.Is(err, order.ErrOrderNotActive):
			return httpres.Conflict(c, err.Error(), nil)
		case errors.Is(err, order.ErrLockBusy):
			return httpres.ServiceUnavailable(c, err.Error())
		default:
			h.logger.Error("order return failed", zap.String("bill_id", billID), zap.Error(err))
			return httpres.InternalServerError(c, "Order return failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	return httpres.Success(c, "Order returned successfully", ord)
}

func (h *OrderHandler) ListRecent(c *fiber.Ctx) error {
	limit, err := strconv.Atoi(c.Query("limit", "10"))
	if err != nil || limit < 0 {
		return httpres.BadRequest(c, "Invalid limit", nil)
	}

	orders, err := h.uc.ListRecent(c.UserContext(), limit)
	if err != nil {
		h.logger.Error("failed to list orders", zap.Error(err))
		return httpres.InternalServerError(c, "Failed to list orders", nil)
	}
	return httpres.Success(c, "Orders retrieved", orders)
}

func (h *OrderHandler) GetBill(c *fiber.Ctx) error {
	billID := c.Params("billID")

	ord, err := h.uc.GetBill(c.UserContext(), billID)
	if err != nil {
		if errors.Is(err, order.ErrOrderNotFound) {
			return httpres.NotFound(c, "Order not found")
		}
		h.logger.Error("failed to fetch order", zap.String("bill_id", billID), zap.Error(err))
		return httpres.InternalServerError(c, "Failed to fetch order", nil)
	}
	return httpres.Success(c, "Order retrieved", ord)
}

func (h *OrderHandler) ListItems(c *fiber.Ctx) error {
	billID := c.Params("billID")

	items, err := h.uc.ListItems(c.UserContext(), billID)
	if err != nil {
		h.logger.Error("failed to fetch order items", zap.String("bill_id", billID), zap.Error(err))
		return httpres.InternalServerError(c, "Failed to fetch order items", nil)
	}
	return httpres.Success(c, "Order items retrieved", items)
}
