package usecase

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wholesaleops/stockledger/internal/inventory/dto"
	"github.com/wholesaleops/stockledger/internal/model"
)

type fakeStockRepo struct {
	rows map[string]*model.StockItem
}

func newFakeStockRepo() *fakeStockRepo {
	return &fakeStockRepo{rows: make(map[string]*model.StockItem)}
}

func (f *fakeStockRepo) List(_ context.Context, _, _ string) ([]model.StockItem, error) {
	out := make([]model.StockItem, 0, len(f.rows))
	for _, item := range f.rows {
		out = append(out, *item)
	}
	return out, nil
}

func (f *fakeStockRepo) GetByID(_ context.Context, _, id string) (*model.StockItem, error) {
	if item, ok := f.rows[id]; ok {
		cp := *item
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeStockRepo) Create(_ context.Context, _ string, item *model.StockItem) error {
	cp := *item
	f.rows[item.ID] = &cp
	return nil
}

func (f *fakeStockRepo) Update(_ context.Context, _ string, item *model.StockItem) error {
	cp := *item
	f.rows[item.ID] = &cp
	return nil
}

func (f *fakeStockRepo) UpdateComment(_ context.Context, _, id, comment string) error {
	if item, ok := f.rows[id]; ok {
		item.ItemComment = &comment
	}
	return nil
}

func (f *fakeStockRepo) Delete(_ context.Context, _, id string) error {
	delete(f.rows, id)
	return nil
}

func (f *fakeStockRepo) UpdateStockCounters(_ context.Context, _, _ string, _, _ decimal.Decimal, _ string) error {
	return nil
}

func validInput() *dto.StockItemInput {
	return &dto.StockItemInput{
		ItemCategory:            "shirts",
		ItemName:                "Polo Shirt",
		ArticleNumber:           "PS-204",
		CartonNumber:            "C-17",
		QuantityRemainingDozens: decimal.NewFromInt(12),
	}
}

func TestCreate_DefaultsSupplier(t *testing.T) {
	repo := newFakeStockRepo()
	uc := NewInventoryUseCase(repo, zap.NewNop())

	item, err := uc.Create(context.Background(), "shirts", validInput())
	require.NoError(t, err)
	assert.NotEmpty(t, item.ID)
	assert.Equal(t, model.DefaultSupplier, item.Supplier)
}

func TestCreate_KeepsGivenSupplier(t *testing.T) {
	repo := newFakeStockRepo()
	uc := NewInventoryUseCase(repo, zap.NewNop())

	input := validInput()
	input.Supplier = "Karachi Textiles"
	item, err := uc.Create(context.Background(), "shirts", input)
	require.NoError(t, err)
	assert.Equal(t, "Karachi Textiles", item.Supplier)
}

func TestCreate_RejectsInvalidInput(t *testing.T) {
	repo := newFakeStockRepo()
	uc := NewInventoryUseCase(repo, zap.NewNop())

	missing := validInput()
	missing.ItemName = ""
	_, err := uc.Create(context.Background(), "shirts", missing)
	require.ErrorIs(t, err, ErrInvalidInput)

	negative := validInput()
	negative.QuantityRemainingDozens = decimal.NewFromInt(-1)
	_, err = uc.Create(context.Background(), "shirts", negative)
	require.ErrorIs(t, err, ErrInvalidInput)

	assert.Empty(t, repo.rows, "nothing written on validation failure")
}

func TestUpdate_NotFound(t *testing.T) {
	repo := newFakeStockRepo()
	uc := NewInventoryUseCase(repo, zap.NewNop())

	_, err := uc.Update(context.Background(), "shirts", "missing", validInput())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestUpdate_OverwritesFields(t *testing.T) {
	repo := newFakeStockRepo()
	uc := NewInventoryUseCase(repo, zap.NewNop())

	created, err := uc.Create(context.Background(), "shirts", validInput())
	require.NoError(t, err)

	input := validInput()
	input.ItemName = "Dress Shirt"
	input.QuantityRemainingDozens = decimal.NewFromInt(8)
	updated, err := uc.Update(context.Background(), "shirts", created.ID, input)
	require.NoError(t, err)
	assert.Equal(t, "Dress Shirt", updated.ItemName)
	assert.True(t, updated.QuantityRemainingDozens.Equal(decimal.NewFromInt(8)))
	assert.Equal(t, model.DefaultSupplier, updated.Supplier, "blank supplier falls back to the default")
}
