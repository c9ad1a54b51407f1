package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wholesaleops/stockledger/internal/inventory"
	"github.com/wholesaleops/stockledger/internal/inventory/dto"
	"github.com/wholesaleops/stockledger/internal/model"
	"github.com/wholesaleops/stockledger/pkg/postgres"
)

var ErrInvalidInput = errors.New("invalid stock item input")

type inventoryUseCase struct {
	repo   inventory.Repository
	logger *zap.Logger
}

func NewInventoryUseCase(repo inventory.Repository, log *zap.Logger) inventory.UseCase {
	return &inventoryUseCase{repo: repo, logger: log}
}

func (uc *inventoryUseCase) List(ctx context.Context, table, search string) ([]model.StockItem, error) {
	return uc.repo.List(ctx, table, search)
}

func validateInput(input *dto.StockItemInput) error {
	if input.ItemCategory == "" || input.ItemName == "" || input.ArticleNumber == "" {
		return fmt.Errorf("%w: category, name and article number are required", ErrInvalidInput)
	}
	if input.QuantityRemainingDozens.IsNegative() {
		return fmt.Errorf("%w: quantity must be zero or greater", ErrInvalidInput)
	}
	return nil
}

func (uc *inventoryUseCase) Create(ctx context.Context, table string, input *dto.StockItemInput) (*model.StockItem, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	supplier := input.Supplier
	if supplier == "" {
		supplier = model.DefaultSupplier
	}

	item := &model.StockItem{
		ID:                      uuid.New().String(),
		ItemCategory:            input.ItemCategory,
		ItemName:                input.ItemName,
		ArticleNumber:           input.ArticleNumber,
		CartonNumber:            input.CartonNumber,
		QuantityRemainingDozens: input.QuantityRemainingDozens,
		Supplier:                supplier,
	}

	if err := uc.repo.Create(ctx, table, item); err != nil {
		if postgres.IsDuplicateKeyErr(err) {
			return nil, fmt.Errorf("%w: item id already exists", ErrInvalidInput)
		}
		return nil, err
	}
	return item, nil
}

func (uc *inventoryUseCase) Update(ctx context.Context, table, id string, input *dto.StockItemInput) (*model.StockItem, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	item, err := uc.repo.GetByID(ctx, table, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("stock item %s not found in %s", id, table)
	}

	item.ItemCategory = input.ItemCategory
	item.ItemName = input.ItemName
	item.ArticleNumber = input.ArticleNumber
	item.CartonNumber = input.CartonNumber
	item.QuantityRemainingDozens = input.QuantityRemainingDozens
	item.Supplier = input.Supplier
	if item.Supplier == "" {
		item.Supplier = model.DefaultSupplier
	}

	if err := uc.repo.Update(ctx, table, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (uc *inventoryUseCase) UpdateComment(ctx context.Context, table, id, comment string) error {
	return uc.repo.UpdateComment(ctx, table, id, comment)
}

func (uc *inventoryUseCase) Delete(ctx context.Context, table, id string) error {
	return uc.repo.Delete(ctx, table, id)
}
