package model

import (
	"encoding/json"
	"time"
)

const (
	TxStatusStarted    = "started"
	TxStatusFailed     = "failed"
	TxStatusCompleted  = "completed"
	TxStatusUnresolved = "unresolved"
	TxStatusResolved   = "resolved"
)

// TransactionLog is the durable record of one retried operation. Rows are
// appended and updated, never deleted.
type TransactionLog struct {
	ID            int64           `db:"id" json:"id"`
	TransactionID string          `db:"transaction_id" json:"transaction_id"`
	OperationType string          `db:"operation_type" json:"operation_type"`
	Status        string          `db:"status" json:"status"`
	AttemptCount  int             `db:"attempt_count" json:"attempt_count"`
	LastAttempt   *time.Time      `db:"last_attempt" json:"last_attempt,omitempty"`
	ErrorMessage  *string         `db:"error_message" json:"error_message,omitempty"`
	OperationData json.RawMessage `db:"operation_data" json:"operation_data,omitempty"`
	Resolved      bool            `db:"resolved" json:"resolved"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
}

const (
	FailedOpStatusPending   = "pending"
	FailedOpStatusCompleted = "completed"
	FailedOpStatusFailed    = "failed"
)

// FailedOperation is the best-effort recovery queue entry written when a
// sequence exhausts its retry budget.
type FailedOperation struct {
	ID            int64           `db:"id" json:"id"`
	OperationType string          `db:"operation_type" json:"operation_type"`
	OperationData json.RawMessage `db:"operation_data" json:"operation_data,omitempty"`
	ErrorMessage  string          `db:"error_message" json:"error_message"`
	RetryCount    int             `db:"retry_count" json:"retry_count"`
	Status        string          `db:"status" json:"status"`
	LastError     *string         `db:"last_error" json:"last_error,omitempty"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
}

// ErrorRecord is a diagnostic row. Writes are best-effort and never block the
// operation that produced the error. Operators can also file one manually.
type ErrorRecord struct {
	ID          int64     `db:"id" json:"id"`
	ErrorDetail string    `db:"error_detail" json:"error_detail"`
	SourceTable *string   `db:"source_table" json:"source_table,omitempty"`
	RecordID    *string   `db:"record_id" json:"record_id,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// SystemLog records one health monitor cycle.
type SystemLog struct {
	ID            int64     `db:"id" json:"id"`
	OperationType string    `db:"operation_type" json:"operation_type"`
	Details       string    `db:"details" json:"details"`
	Status        string    `db:"status" json:"status"`
	DurationMs    int64     `db:"duration_ms" json:"duration_ms"`
	Timestamp     time.Time `db:"timestamp" json:"timestamp"`
}
