package txmanager

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wholesaleops/stockledger/internal/model"
	"github.com/wholesaleops/stockledger/pkg/messaging"
	"github.com/wholesaleops/stockledger/pkg/metrics"
)

const (
	defaultMaxAttempts = 3
	defaultBaseDelay   = 2 * time.Second
)

// AlertPublisher pushes a notification when a transaction ends up unresolved.
// Publishing is best-effort; failures never affect the operation outcome.
type AlertPublisher interface {
	PublishAlert(alert messaging.Alert) error
}

type Config struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

// Manager executes units of work with bounded retries and keeps a durable,
// inspectable record of every attempt in transaction_logs.
type Manager struct {
	logs        Repository
	alerts      AlertPublisher
	logger      *zap.Logger
	maxAttempts int
	baseDelay   time.Duration
}

func NewManager(cfg Config, logs Repository, alerts AlertPublisher, log *zap.Logger) *Manager {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = defaultBaseDelay
	}
	return &Manager{
		logs:        logs,
		alerts:      alerts,
		logger:      log,
		maxAttempts: cfg.MaxAttempts,
		baseDelay:   cfg.BaseDelay,
	}
}

func (m *Manager) MaxAttempts() int { return m.maxAttempts }

// GenerateTransactionID returns an id of the form tx_<unix ms>_<suffix>.
func (m *Manager) GenerateTransactionID() string {
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:9]
	return fmt.Sprintf("tx_%d_%s", time.Now().UnixMilli(), suffix)
}

// ExecuteWithRetry runs body up to the manager's attempt budget, sequentially,
// with exponential backoff between failed attempts. Every attempt is recorded
// against a fresh transaction id. After the final failed attempt the row is
// marked unresolved and the last error is returned. Earlier writes made by a
// failed attempt are not rolled back here; bodies must tolerate re-running.
func ExecuteWithRetry[T any](ctx context.Context, m *Manager, body func(ctx context.Context) (T, error), operationType string, operationData any) (T, error) {
	var zero T

	transactionID := m.GenerateTransactionID()
	m.logStart(ctx, transactionID, operationType, operationData)

	var lastErr error
	for attempt := 1; attempt <= m.maxAttempts; attempt++ {
		result, err := body(ctx)
		if err == nil {
			m.updateStatus(ctx, transactionID, model.TxStatusCompleted, nil, attempt)
			metrics.TransactionAttempts.WithLabelValues(operationType, "completed").Inc()
			return result, nil
		}

		lastErr = err
		msg := err.Error()
		m.updateStatus(ctx, transactionID, model.TxStatusFailed, &msg, attempt)
		metrics.TransactionAttempts.WithLabelValues(operationType, "failed").Inc()

		if attempt == m.maxAttempts {
			m.updateStatus(ctx, transactionID, model.TxStatusUnresolved, &msg, attempt)
			metrics.TransactionAttempts.WithLabelValues(operationType, "unresolved").Inc()
			m.publishUnresolvedAlert(transactionID, operationType, msg)
			break
		}

		delay := m.baseDelay * (1 << (attempt - 1))
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return zero, ctx.Err()
		}
	}

	return zero, lastErr
}

// Resolve marks a logged transaction as handled by an operator. Idempotent;
// a repeated call overwrites the note only.
func (m *Manager) Resolve(ctx context.Context, transactionID, note string) error {
	return m.logs.MarkResolved(ctx, transactionID, note)
}

// Unresolved lists log entries awaiting attention, newest first. Read errors
// degrade to an empty list so the monitor view always renders.
func (m *Manager) Unresolved(ctx context.Context) []model.TransactionLog {
	rows, err := m.logs.ListUnresolved(ctx)
	if err != nil {
		m.logger.Error("failed to fetch unresolved transactions", zap.Error(err))
		return []model.TransactionLog{}
	}
	metrics.UnresolvedTransactions.Set(float64(len(rows)))
	return rows
}

// Get fetches a single log entry by transaction id. nil, nil when absent.
func (m *Manager) Get(ctx context.Context, transactionID string) (*model.TransactionLog, error) {
	return m.logs.GetByTransactionID(ctx, transactionID)
}

func (m *Manager) logStart(ctx context.Context, transactionID, operationType string, operationData any) {
	var payload json.RawMessage
	if operationData != nil {
		b, err := json.Marshal(operationData)
		if err != nil {
			m.logger.Warn("failed to serialize operation data",
				zap.String("transaction_id", transactionID), zap.Error(err))
		} else {
			payload = b
		}
	}

	entry := &model.TransactionLog{
		TransactionID: transactionID,
		OperationType: operationType,
		Status:        model.TxStatusStarted,
		OperationData: payload,
	}
	if err := m.logs.Insert(ctx, entry); err != nil {
		// Audit failures are diagnostic-only and never block the operation.
		m.logger.Error("failed to log transaction",
			zap.String("transaction_id", transactionID), zap.Error(err))
	}
}

func (m *Manager) updateStatus(ctx context.Context, transactionID, status string, errMessage *string, attempt int) {
	if err := m.logs.UpdateStatus(ctx, transactionID, status, errMessage, attempt); err != nil {
		m.logger.Error("failed to update transaction status",
			zap.String("transaction_id", transactionID),
			zap.String("status", status), zap.Error(err))
	}
}

func (m *Manager) publishUnresolvedAlert(transactionID, operationType, errMessage string) {
	if m.alerts == nil {
		return
	}
	err := m.alerts.PublishAlert(messaging.Alert{
		Source:   "txmanager",
		Severity: messaging.SeverityCritical,
		Message:  fmt.Sprintf("operation %s exhausted its retry budget", operationType),
		Details: map[string]interface{}{
			"transaction_id": transactionID,
			"error":          errMessage,
		},
	})
	if err != nil {
		m.logger.Warn("failed to publish unresolved alert",
			zap.String("transaction_id", transactionID), zap.Error(err))
	}
}
