package recovery

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/wholesaleops/stockledger/internal/model"
)

const defaultMaxRetries = 3

// Handler decides whether a queued operation has since succeeded or can be
// completed now. Returning nil marks the entry completed.
type Handler func(ctx context.Context, op *model.FailedOperation) error

// Queue drains failed_operations. Each Process pass hands every pending entry
// to the handler registered for its operation type; entries with no handler
// stay pending.
type Queue struct {
	repo       Repository
	logger     *zap.Logger
	maxRetries int
	handlers   map[string]Handler
}

func NewQueue(repo Repository, log *zap.Logger) *Queue {
	return &Queue{
		repo:       repo,
		logger:     log,
		maxRetries: defaultMaxRetries,
		handlers:   make(map[string]Handler),
	}
}

func (q *Queue) Register(operationType string, h Handler) {
	q.handlers[operationType] = h
}

// Record enqueues a failed operation. Best-effort: a write failure is logged
// and swallowed so the caller's error path is never blocked.
func (q *Queue) Record(ctx context.Context, operationType string, data any, errMessage string) {
	payload, err := json.Marshal(data)
	if err != nil {
		q.logger.Warn("failed to marshal recovery payload",
			zap.String("operation_type", operationType),
			zap.Error(err))
		payload = nil
	}

	op := &model.FailedOperation{
		OperationType: operationType,
		OperationData: payload,
		ErrorMessage:  errMessage,
		Status:        model.FailedOpStatusPending,
	}
	if err := q.repo.InsertFailedOperation(ctx, op); err != nil {
		q.logger.Warn("failed to enqueue recovery entry",
			zap.String("operation_type", operationType),
			zap.Error(err))
	}
}

// Process runs one recovery pass and returns how many entries completed.
func (q *Queue) Process(ctx context.Context) (int, error) {
	pending, err := q.repo.ListPending(ctx, q.maxRetries)
	if err != nil {
		return 0, fmt.Errorf("recovery.Queue.Process.ListPending: %w", err)
	}

	completed := 0
	for i := range pending {
		op := &pending[i]
		handler, ok := q.handlers[op.OperationType]
		if !ok {
			q.logger.Warn("no recovery handler registered",
				zap.String("operation_type", op.OperationType),
				zap.Int64("id", op.ID))
			continue
		}

		if err := handler(ctx, op); err != nil {
			q.logger.Warn("recovery attempt failed",
				zap.Int64("id", op.ID),
				zap.String("operation_type", op.OperationType),
				zap.Int("retry_count", op.RetryCount),
				zap.Error(err))
			if markErr := q.repo.MarkRetried(ctx, op.ID, err.Error(), q.maxRetries); markErr != nil {
				q.logger.Error("failed to update recovery entry", zap.Int64("id", op.ID), zap.Error(markErr))
			}
			continue
		}

		if err := q.repo.MarkCompleted(ctx, op.ID); err != nil {
			q.logger.Error("failed to mark recovery entry completed", zap.Int64("id", op.ID), zap.Error(err))
			continue
		}
		completed++
		q.logger.Info("recovered failed operation",
			zap.Int64("id", op.ID),
			zap.String("operation_type", op.OperationType))
	}
	return completed, nil
}

// ErrorLog writes diagnostic rows to error_records. Writes are best-effort.
type ErrorLog struct {
	repo   Repository
	logger *zap.Logger
}

func NewErrorLog(repo Repository, log *zap.Logger) *ErrorLog {
	return &ErrorLog{repo: repo, logger: log}
}

func (l *ErrorLog) Record(ctx context.Context, err error, sourceTable, recordID string) {
	rec := &model.ErrorRecord{ErrorDetail: err.Error()}
	if sourceTable != "" {
		rec.SourceTable = &sourceTable
	}
	if recordID != "" {
		rec.RecordID = &recordID
	}
	if insErr := l.repo.InsertErrorRecord(ctx, rec); insErr != nil {
		l.logger.Warn("failed to write error record", zap.Error(insErr))
	}
}
