package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/wholesaleops/stockledger/internal/txmanager"
	"github.com/wholesaleops/stockledger/pkg/httpres"
)

// TransactionHandler serves the operator monitor view: listing unresolved
// transactions, resolving them with a note, and re-running a failed one.
type TransactionHandler struct {
	manager *txmanager.Manager
	probe   func(ctx context.Context) error
	logger  *zap.Logger
}

// NewTransactionHandler takes a probe used by Retry: logged payloads are
// diagnostic-only and cannot resume the original work, so a manual retry
// re-executes a store connectivity check under the old operation type.
func NewTransactionHandler(manager *txmanager.Manager, probe func(ctx context.Context) error, log *zap.Logger) *TransactionHandler {
	return &TransactionHandler{manager: manager, probe: probe, logger: log}
}

func (h *TransactionHandler) Unresolved(c *fiber.Ctx) error {
	entries := h.manager.Unresolved(c.UserContext())
	return httpres.Success(c, "Unresolved transactions retrieved", entries)
}

type resolveRequest struct {
	Resolution string `json:"resolution"`
}

func (h *TransactionHandler) Resolve(c *fiber.Ctx) error {
	transactionID := c.Params("txID")

	var req resolveRequest
	if err := c.BodyParser(&req); err != nil {
		return httpres.BadRequest(c, "Invalid request body", map[string]interface{}{
			"parse_error": err.Error(),
		})
	}
	if req.Resolution == "" {
		return httpres.BadRequest(c, "Resolution note is required", nil)
	}

	entry, err := h.manager.Get(c.UserContext(), transactionID)
	if err != nil {
		return httpres.InternalServerError(c, "Failed to look up transaction", nil)
	}
	if entry == nil {
		return httpres.NotFound(c, "Transaction not found")
	}

	if err := h.manager.Resolve(c.UserContext(), transactionID, req.Resolution); err != nil {
		h.logger.Error("failed to resolve transaction",
			zap.String("transaction_id", transactionID), zap.Error(err))
		return httpres.InternalServerError(c, "Failed to resolve transaction", nil)
	}

	return httpres.Success(c, "Transaction resolved", nil)
}

func (h *TransactionHandler) Retry(c *fiber.Ctx) error {
	transactionID := c.Params("txID")

	entry, err := h.manager.Get(c.UserContext(), transactionID)
	if err != nil {
		return httpres.InternalServerError(c, "Failed to look up transaction", nil)
	}
	if entry == nil {
		return httpres.NotFound(c, "Transaction not found")
	}

	// A fresh transaction id is logged for the retry; the old entry is left
	// untouched for the operator to resolve.
	_, err = txmanager.ExecuteWithRetry(c.UserContext(), h.manager, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, h.probe(ctx)
	}, entry.OperationType, entry.OperationData)
	if err != nil {
		return httpres.InternalServerError(c, "Retry failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	return httpres.Success(c, "Retry completed", nil)
}
