package handler

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/wholesaleops/stockledger/internal/model"
	"github.com/wholesaleops/stockledger/internal/recovery"
	"github.com/wholesaleops/stockledger/pkg/httpres"
)

type RecoveryHandler struct {
	repo   recovery.Repository
	queue  *recovery.Queue
	logger *zap.Logger
}

func NewRecoveryHandler(repo recovery.Repository, queue *recovery.Queue, log *zap.Logger) *RecoveryHandler {
	return &RecoveryHandler{repo: repo, queue: queue, logger: log}
}

type errorReportInput struct {
	ErrorDetail string `json:"error_detail"`
	SourceTable string `json:"source_table"`
	RecordID    string `json:"record_id"`
}

// ReportError files a manual diagnostic row.
func (h *RecoveryHandler) ReportError(c *fiber.Ctx) error {
	var input errorReportInput
	if err := c.BodyParser(&input); err != nil {
		return httpres.BadRequest(c, "Invalid request body", nil)
	}
	if strings.TrimSpace(input.ErrorDetail) == "" {
		return httpres.BadRequest(c, "error_detail is required", nil)
	}

	rec := &model.ErrorRecord{ErrorDetail: input.ErrorDetail}
	if input.SourceTable != "" {
		rec.SourceTable = &input.SourceTable
	}
	if input.RecordID != "" {
		rec.RecordID = &input.RecordID
	}
	if err := h.repo.InsertErrorRecord(c.UserContext(), rec); err != nil {
		h.logger.Error("failed to store error report", zap.Error(err))
		return httpres.InternalServerError(c, "Failed to store error report", nil)
	}
	return httpres.Created(c, "Error report recorded", rec)
}

func (h *RecoveryHandler) ListErrors(c *fiber.Ctx) error {
	limit, err := strconv.Atoi(c.Query("limit", "50"))
	if err != nil || limit < 0 {
		return httpres.BadRequest(c, "Invalid limit", nil)
	}

	recs, err := h.repo.ListErrorRecords(c.UserContext(), limit)
	if err != nil {
		h.logger.Error("failed to list error records", zap.Error(err))
		return httpres.InternalServerError(c, "Failed to list error records", nil)
	}
	return httpres.Success(c, "Error records retrieved", recs)
}

// ProcessQueue triggers one recovery pass on demand.
func (h *RecoveryHandler) ProcessQueue(c *fiber.Ctx) error {
	completed, err := h.queue.Process(c.UserContext())
	if err != nil {
		h.logger.Error("recovery pass failed", zap.Error(err))
		return httpres.InternalServerError(c, "Recovery pass failed", nil)
	}
	return httpres.Success(c, "Recovery pass finished", map[string]interface{}{
		"completed": completed,
	})
}
