package health

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/wholesaleops/stockledger/internal/model"
	"github.com/wholesaleops/stockledger/internal/recovery"
	"github.com/wholesaleops/stockledger/pkg/messaging"
	"github.com/wholesaleops/stockledger/pkg/metrics"
)

const (
	StatusHealthy  = "healthy"
	StatusDegraded = "degraded"

	defaultInterval          = 30 * time.Second
	defaultLowStockThreshold = 5
)

// AlertPublisher pushes a notification when a cycle detects degradation.
type AlertPublisher interface {
	PublishAlert(alert messaging.Alert) error
}

type Config struct {
	Interval          time.Duration
	LowStockThreshold int
}

// Snapshot is the result of the most recent monitor cycle.
type Snapshot struct {
	Status            string         `json:"status"`
	DatabaseReachable bool           `json:"database_reachable"`
	LowStock          []LowStockItem `json:"low_stock"`
	PendingFailedOps  int            `json:"pending_failed_ops"`
	LastCheck         time.Time      `json:"last_check"`
	DurationMs        int64          `json:"duration_ms"`
}

// Monitor periodically probes the data store, scans for low stock, and drains
// the recovery queue. Results are kept in memory for the health endpoint and
// appended to system_logs.
type Monitor struct {
	repo      Repository
	queue     *recovery.Queue
	alerts    AlertPublisher
	logger    *zap.Logger
	interval  time.Duration
	threshold decimal.Decimal

	mu   sync.RWMutex
	last Snapshot
}

func NewMonitor(cfg Config, repo Repository, queue *recovery.Queue, alerts AlertPublisher, log *zap.Logger) *Monitor {
	if cfg.Interval <= 0 {
		cfg.Interval = defaultInterval
	}
	if cfg.LowStockThreshold <= 0 {
		cfg.LowStockThreshold = defaultLowStockThreshold
	}
	return &Monitor{
		repo:      repo,
		queue:     queue,
		alerts:    alerts,
		logger:    log,
		interval:  cfg.Interval,
		threshold: decimal.NewFromInt(int64(cfg.LowStockThreshold)),
	}
}

// Start runs cycles until ctx is cancelled. The first cycle runs immediately.
func (m *Monitor) Start(ctx context.Context) {
	m.RunCycle(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.RunCycle(ctx)
		}
	}
}

// RunCycle executes one monitor pass and records its snapshot.
func (m *Monitor) RunCycle(ctx context.Context) Snapshot {
	start := time.Now()
	snap := Snapshot{Status: StatusHealthy, DatabaseReachable: true, LastCheck: start}

	if err := m.repo.ProbeOrders(ctx); err != nil {
		snap.Status = StatusDegraded
		snap.DatabaseReachable = false
		metrics.DatabaseUp.Set(0)
		m.logger.Error("health probe failed", zap.Error(err))
		m.publishAlert(messaging.SeverityCritical, "data store unreachable", map[string]interface{}{
			"error": err.Error(),
		})
	} else {
		metrics.DatabaseUp.Set(1)
	}

	if snap.DatabaseReachable {
		low, err := m.repo.ListLowStock(ctx, m.threshold)
		if err != nil {
			m.logger.Error("low stock scan failed", zap.Error(err))
		} else {
			snap.LowStock = low
			if len(low) > 0 {
				m.publishAlert(messaging.SeverityWarning,
					fmt.Sprintf("%d articles below the low stock threshold", len(low)),
					map[string]interface{}{"count": len(low)})
			}
		}

		pending, err := m.repo.CountPendingFailedOps(ctx)
		if err != nil {
			m.logger.Error("failed operations count failed", zap.Error(err))
		} else {
			snap.PendingFailedOps = pending
		}

		if m.queue != nil {
			if completed, err := m.queue.Process(ctx); err != nil {
				m.logger.Error("recovery pass failed", zap.Error(err))
			} else if completed > 0 {
				snap.PendingFailedOps -= completed
				if snap.PendingFailedOps < 0 {
					snap.PendingFailedOps = 0
				}
			}
		}
	}

	snap.DurationMs = time.Since(start).Milliseconds()
	metrics.HealthCheckDuration.Observe(time.Since(start).Seconds())

	m.mu.Lock()
	m.last = snap
	m.mu.Unlock()

	m.writeSystemLog(ctx, snap)
	return snap
}

func (m *Monitor) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.last
}

func (m *Monitor) publishAlert(severity messaging.Severity, message string, details map[string]interface{}) {
	if m.alerts == nil {
		return
	}
	err := m.alerts.PublishAlert(messaging.Alert{
		Source:   "health",
		Severity: severity,
		Message:  message,
		Details:  details,
	})
	if err != nil {
		m.logger.Warn("failed to publish health alert", zap.Error(err))
	}
}

func (m *Monitor) writeSystemLog(ctx context.Context, snap Snapshot) {
	details := fmt.Sprintf("db_reachable=%t low_stock=%d pending_failed_ops=%d",
		snap.DatabaseReachable, len(snap.LowStock), snap.PendingFailedOps)
	log := &model.SystemLog{
		OperationType: "health_check",
		Details:       details,
		Status:        snap.Status,
		DurationMs:    snap.DurationMs,
		Timestamp:     snap.LastCheck,
	}
	if err := m.repo.InsertSystemLog(ctx, log); err != nil {
		m.logger.Warn("failed to write system log", zap.Error(err))
	}
}
