package recovery

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wholesaleops/stockledger/internal/model"
)

type fakeRecoveryRepo struct {
	entries []model.FailedOperation
	errors  []model.ErrorRecord
	nextID  int64
}

func (f *fakeRecoveryRepo) InsertFailedOperation(_ context.Context, op *model.FailedOperation) error {
	f.nextID++
	op.ID = f.nextID
	f.entries = append(f.entries, *op)
	return nil
}

func (f *fakeRecoveryRepo) ListPending(_ context.Context, maxRetries int) ([]model.FailedOperation, error) {
	out := []model.FailedOperation{}
	for _, e := range f.entries {
		if e.Status == model.FailedOpStatusPending && e.RetryCount < maxRetries {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeRecoveryRepo) MarkCompleted(_ context.Context, id int64) error {
	for i := range f.entries {
		if f.entries[i].ID == id {
			f.entries[i].Status = model.FailedOpStatusCompleted
		}
	}
	return nil
}

func (f *fakeRecoveryRepo) MarkRetried(_ context.Context, id int64, lastError string, maxRetries int) error {
	for i := range f.entries {
		if f.entries[i].ID == id {
			f.entries[i].RetryCount++
			f.entries[i].LastError = &lastError
			if f.entries[i].RetryCount >= maxRetries {
				f.entries[i].Status = model.FailedOpStatusFailed
			}
		}
	}
	return nil
}

func (f *fakeRecoveryRepo) InsertErrorRecord(_ context.Context, rec *model.ErrorRecord) error {
	f.errors = append(f.errors, *rec)
	return nil
}

func (f *fakeRecoveryRepo) ListErrorRecords(_ context.Context, limit int) ([]model.ErrorRecord, error) {
	return f.errors, nil
}

func TestQueue_ProcessCompletesEntries(t *testing.T) {
	repo := &fakeRecoveryRepo{}
	q := NewQueue(repo, zap.NewNop())

	calls := 0
	q.Register("order_creation", func(_ context.Context, op *model.FailedOperation) error {
		calls++
		return nil
	})

	q.Record(context.Background(), "order_creation", map[string]string{"bill_id": "B1"}, "timeout")
	require.Len(t, repo.entries, 1)
	assert.Equal(t, model.FailedOpStatusPending, repo.entries[0].Status)

	completed, err := q.Process(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, completed)
	assert.Equal(t, 1, calls)
	assert.Equal(t, model.FailedOpStatusCompleted, repo.entries[0].Status)
}

func TestQueue_EntryFailsPermanentlyAfterCap(t *testing.T) {
	repo := &fakeRecoveryRepo{}
	q := NewQueue(repo, zap.NewNop())
	q.Register("return_items", func(_ context.Context, _ *model.FailedOperation) error {
		return errors.New("still broken")
	})

	q.Record(context.Background(), "return_items", map[string]string{"bill_id": "B2"}, "down")

	for i := 0; i < 5; i++ {
		_, err := q.Process(context.Background())
		require.NoError(t, err)
	}

	entry := repo.entries[0]
	assert.Equal(t, model.FailedOpStatusFailed, entry.Status)
	assert.Equal(t, 3, entry.RetryCount, "attempts stop at the cap")
	require.NotNil(t, entry.LastError)
	assert.Equal(t, "still broken", *entry.LastError)
}

func TestQueue_UnregisteredTypeStaysPending(t *testing.T) {
	repo := &fakeRecoveryRepo{}
	q := NewQueue(repo, zap.NewNop())

	q.Record(context.Background(), "mystery_op", nil, "no handler for this")

	completed, err := q.Process(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, completed)
	assert.Equal(t, model.FailedOpStatusPending, repo.entries[0].Status)
	assert.Equal(t, 0, repo.entries[0].RetryCount)
}

func TestErrorLog_RecordStoresOptionalFields(t *testing.T) {
	repo := &fakeRecoveryRepo{}
	l := NewErrorLog(repo, zap.NewNop())

	l.Record(context.Background(), errors.New("write failed"), "shirts", "itm1")
	l.Record(context.Background(), errors.New("bare"), "", "")

	require.Len(t, repo.errors, 2)
	require.NotNil(t, repo.errors[0].SourceTable)
	assert.Equal(t, "shirts", *repo.errors[0].SourceTable)
	assert.Nil(t, repo.errors[1].SourceTable)
	assert.Nil(t, repo.errors[1].RecordID)
}
