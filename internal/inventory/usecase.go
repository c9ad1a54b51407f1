package inventory

import (
	"context"

	"github.com/wholesaleops/stockledger/internal/inventory/dto"
	"github.com/wholesaleops/stockledger/internal/model"
)

type UseCase interface {
	List(ctx context.Context, table, search string) ([]model.StockItem, error)
	Create(ctx context.Context, table string, input *dto.StockItemInput) (*model.StockItem, error)
	Update(ctx context.Context, table, id string, input *dto.StockItemInput) (*model.StockItem, error)
	UpdateComment(ctx context.Context, table, id, comment string) error
	Delete(ctx context.Context, table, id string) error
}
