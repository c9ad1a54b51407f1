package txmanager

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wholesaleops/stockledger/internal/model"
	"github.com/wholesaleops/stockledger/pkg/messaging"
)

type statusUpdate struct {
	transactionID string
	status        string
	errMessage    *string
	attemptCount  int
}

type fakeLogRepo struct {
	mu         sync.Mutex
	inserted   []model.TransactionLog
	updates    []statusUpdate
	resolved   map[string]string
	listErr    error
	unresolved []model.TransactionLog
}

func newFakeLogRepo() *fakeLogRepo {
	return &fakeLogRepo{resolved: make(map[string]string)}
}

func (f *fakeLogRepo) Insert(_ context.Context, entry *model.TransactionLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inserted = append(f.inserted, *entry)
	return nil
}

func (f *fakeLogRepo) UpdateStatus(_ context.Context, transactionID, status string, errMessage *string, attemptCount int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, statusUpdate{transactionID, status, errMessage, attemptCount})
	return nil
}

func (f *fakeLogRepo) MarkResolved(_ context.Context, transactionID, note string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resolved[transactionID] = note
	return nil
}

func (f *fakeLogRepo) GetByTransactionID(_ context.Context, transactionID string) (*model.TransactionLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.inserted {
		if f.inserted[i].TransactionID == transactionID {
			entry := f.inserted[i]
			return &entry, nil
		}
	}
	return nil, nil
}

func (f *fakeLogRepo) ListUnresolved(_ context.Context) ([]model.TransactionLog, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.unresolved, nil
}

func (f *fakeLogRepo) statuses() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.updates))
	for _, u := range f.updates {
		out = append(out, u.status)
	}
	return out
}

type fakeAlerts struct {
	mu     sync.Mutex
	alerts []messaging.Alert
}

func (f *fakeAlerts) PublishAlert(alert messaging.Alert) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.alerts = append(f.alerts, alert)
	return nil
}

func testManager(repo Repository, alerts AlertPublisher) *Manager {
	return NewManager(Config{MaxAttempts: 3, BaseDelay: time.Millisecond}, repo, alerts, zap.NewNop())
}

func TestExecuteWithRetry_SuccessFirstAttempt(t *testing.T) {
	repo := newFakeLogRepo()
	m := testManager(repo, nil)

	calls := 0
	result, err := ExecuteWithRetry(context.Background(), m, func(ctx context.Context) (string, error) {
		calls++
		return "ok", nil
	}, "order_creation", map[string]string{"bill_id": "B-1"})

	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 1, calls)

	require.Len(t, repo.inserted, 1)
	assert.Equal(t, model.TxStatusStarted, repo.inserted[0].Status)
	assert.Equal(t, "order_creation", repo.inserted[0].OperationType)

	require.Len(t, repo.updates, 1)
	assert.Equal(t, model.TxStatusCompleted, repo.updates[0].status)
	assert.Equal(t, 1, repo.updates[0].attemptCount)
}

func TestExecuteWithRetry_SucceedsAfterFailures(t *testing.T) {
	repo := newFakeLogRepo()
	m := testManager(repo, nil)

	calls := 0
	result, err := ExecuteWithRetry(context.Background(), m, func(ctx context.Context) (int, error) {
		calls++
		if calls < 3 {
			return 0, errors.New("transient write failure")
		}
		return 42, nil
	}, "order_creation", nil)

	require.NoError(t, err)
	assert.Equal(t, 42, result)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []string{
		model.TxStatusFailed,
		model.TxStatusFailed,
		model.TxStatusCompleted,
	}, repo.statuses())
}

func TestExecuteWithRetry_ExhaustsBudget(t *testing.T) {
	repo := newFakeLogRepo()
	alerts := &fakeAlerts{}
	m := testManager(repo, alerts)

	calls := 0
	wantErr := errors.New("stock table unreachable")
	_, err := ExecuteWithRetry(context.Background(), m, func(ctx context.Context) (struct{}, error) {
		calls++
		return struct{}{}, wantErr
	}, "return_items", map[string]string{"bill_id": "B-9"})

	require.ErrorIs(t, err, wantErr)
	assert.Equal(t, 3, calls, "exactly three attempts, never more")

	// failed after each attempt, then the terminal unresolved mark.
	assert.Equal(t, []string{
		model.TxStatusFailed,
		model.TxStatusFailed,
		model.TxStatusFailed,
		model.TxStatusUnresolved,
	}, repo.statuses())

	last := repo.updates[len(repo.updates)-1]
	assert.Equal(t, 3, last.attemptCount)
	require.NotNil(t, last.errMessage)
	assert.Equal(t, wantErr.Error(), *last.errMessage)

	require.Len(t, alerts.alerts, 1)
	assert.Equal(t, "txmanager", alerts.alerts[0].Source)
	assert.Equal(t, messaging.SeverityCritical, alerts.alerts[0].Severity)
}

func TestExecuteWithRetry_BackoffDoubles(t *testing.T) {
	repo := newFakeLogRepo()
	base := 20 * time.Millisecond
	m := NewManager(Config{MaxAttempts: 3, BaseDelay: base}, repo, nil, zap.NewNop())

	var stamps []time.Time
	_, err := ExecuteWithRetry(context.Background(), m, func(ctx context.Context) (struct{}, error) {
		stamps = append(stamps, time.Now())
		return struct{}{}, errors.New("nope")
	}, "order_creation", nil)
	require.Error(t, err)
	require.Len(t, stamps, 3)

	gap1 := stamps[1].Sub(stamps[0])
	gap2 := stamps[2].Sub(stamps[1])
	assert.GreaterOrEqual(t, gap1, base, "first wait is the base delay")
	assert.GreaterOrEqual(t, gap2, 2*base, "second wait doubles")
}

func TestExecuteWithRetry_NoDelayAfterFinalAttempt(t *testing.T) {
	repo := newFakeLogRepo()
	m := NewManager(Config{MaxAttempts: 3, BaseDelay: 250 * time.Millisecond}, repo, nil, zap.NewNop())

	start := time.Now()
	_, err := ExecuteWithRetry(context.Background(), m, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, errors.New("always fails")
	}, "order_creation", nil)
	require.Error(t, err)

	// base + 2*base between attempts, nothing after the last one.
	assert.Less(t, time.Since(start), 1100*time.Millisecond)
}

func TestExecuteWithRetry_ContextCancelledDuringBackoff(t *testing.T) {
	repo := newFakeLogRepo()
	m := NewManager(Config{MaxAttempts: 3, BaseDelay: time.Minute}, repo, nil, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	done := make(chan error, 1)
	go func() {
		_, err := ExecuteWithRetry(ctx, m, func(ctx context.Context) (struct{}, error) {
			calls++
			return struct{}{}, errors.New("fail")
		}, "order_creation", nil)
		done <- err
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, calls)
	case <-time.After(2 * time.Second):
		t.Fatal("retry loop did not observe cancellation")
	}
}

func TestGenerateTransactionID_Format(t *testing.T) {
	m := testManager(newFakeLogRepo(), nil)

	id := m.GenerateTransactionID()
	parts := strings.Split(id, "_")
	require.Len(t, parts, 3)
	assert.Equal(t, "tx", parts[0])
	assert.Len(t, parts[2], 9)

	assert.NotEqual(t, id, m.GenerateTransactionID())
}

func TestResolve_Idempotent(t *testing.T) {
	repo := newFakeLogRepo()
	m := testManager(repo, nil)

	require.NoError(t, m.Resolve(context.Background(), "tx_1_abc", "restocked by hand"))
	require.NoError(t, m.Resolve(context.Background(), "tx_1_abc", "double checked"))
	assert.Equal(t, "double checked", repo.resolved["tx_1_abc"])
}

func TestUnresolved_ReadErrorDegradesToEmpty(t *testing.T) {
	repo := newFakeLogRepo()
	repo.listErr = errors.New("connection refused")
	m := testManager(repo, nil)

	rows := m.Unresolved(context.Background())
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestUnresolved_ReturnsRows(t *testing.T) {
	repo := newFakeLogRepo()
	repo.unresolved = []model.TransactionLog{
		{TransactionID: "tx_2_b", Status: model.TxStatusUnresolved},
		{TransactionID: "tx_1_a", Status: model.TxStatusUnresolved},
	}
	m := testManager(repo, nil)

	rows := m.Unresolved(context.Background())
	require.Len(t, rows, 2)
	assert.Equal(t, "tx_2_b", rows[0].TransactionID)
}
