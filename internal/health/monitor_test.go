package health

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wholesaleops/stockledger/internal/model"
	"github.com/wholesaleops/stockledger/pkg/messaging"
)

type fakeHealthRepo struct {
	probeErr   error
	lowStock   []LowStockItem
	pendingOps int
	sysLogs    []model.SystemLog
}

func (f *fakeHealthRepo) ProbeOrders(_ context.Context) error { return f.probeErr }

func (f *fakeHealthRepo) ListLowStock(_ context.Context, _ decimal.Decimal) ([]LowStockItem, error) {
	return f.lowStock, nil
}

func (f *fakeHealthRepo) CountPendingFailedOps(_ context.Context) (int, error) {
	return f.pendingOps, nil
}

func (f *fakeHealthRepo) InsertSystemLog(_ context.Context, log *model.SystemLog) error {
	f.sysLogs = append(f.sysLogs, *log)
	return nil
}

type captureAlerts struct {
	mu     sync.Mutex
	alerts []messaging.Alert
}

func (c *captureAlerts) PublishAlert(alert messaging.Alert) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.alerts = append(c.alerts, alert)
	return nil
}

func TestRunCycle_Healthy(t *testing.T) {
	repo := &fakeHealthRepo{pendingOps: 0}
	alerts := &captureAlerts{}
	m := NewMonitor(Config{}, repo, nil, alerts, zap.NewNop())

	snap := m.RunCycle(context.Background())

	assert.Equal(t, StatusHealthy, snap.Status)
	assert.True(t, snap.DatabaseReachable)
	assert.Empty(t, snap.LowStock)
	assert.Empty(t, alerts.alerts)

	require.Len(t, repo.sysLogs, 1)
	assert.Equal(t, "health_check", repo.sysLogs[0].OperationType)
	assert.Equal(t, StatusHealthy, repo.sysLogs[0].Status)

	assert.Equal(t, snap, m.Snapshot())
}

func TestRunCycle_DatabaseDown(t *testing.T) {
	repo := &fakeHealthRepo{probeErr: errors.New("connection refused")}
	alerts := &captureAlerts{}
	m := NewMonitor(Config{}, repo, nil, alerts, zap.NewNop())

	snap := m.RunCycle(context.Background())

	assert.Equal(t, StatusDegraded, snap.Status)
	assert.False(t, snap.DatabaseReachable)

	require.Len(t, alerts.alerts, 1)
	assert.Equal(t, "health", alerts.alerts[0].Source)
	assert.Equal(t, messaging.SeverityCritical, alerts.alerts[0].Severity)

	// The degraded cycle is still recorded.
	require.Len(t, repo.sysLogs, 1)
	assert.Equal(t, StatusDegraded, repo.sysLogs[0].Status)
}

func TestRunCycle_LowStockWarns(t *testing.T) {
	repo := &fakeHealthRepo{
		lowStock: []LowStockItem{
			{Table: "shirts", ID: "itm1", ItemName: "Polo Shirt", QuantityRemainingDozens: decimal.NewFromInt(2)},
		},
	}
	alerts := &captureAlerts{}
	m := NewMonitor(Config{LowStockThreshold: 5}, repo, nil, alerts, zap.NewNop())

	snap := m.RunCycle(context.Background())

	assert.Equal(t, StatusHealthy, snap.Status, "low stock warns but does not degrade")
	require.Len(t, snap.LowStock, 1)
	assert.Equal(t, "Polo Shirt", snap.LowStock[0].ItemName)

	require.Len(t, alerts.alerts, 1)
	assert.Equal(t, messaging.SeverityWarning, alerts.alerts[0].Severity)
}

func TestRunCycle_ReportsPendingFailedOps(t *testing.T) {
	repo := &fakeHealthRepo{pendingOps: 4}
	m := NewMonitor(Config{}, repo, nil, nil, zap.NewNop())

	snap := m.RunCycle(context.Background())
	assert.Equal(t, 4, snap.PendingFailedOps)
}
