package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/wholesaleops/stockledger/internal/inventory"
	"github.com/wholesaleops/stockledger/internal/model"
	"github.com/wholesaleops/stockledger/internal/order"
	"github.com/wholesaleops/stockledger/internal/order/dto"
	"github.com/wholesaleops/stockledger/internal/txmanager"
)

const (
	OpOrderCreation = "order_creation"
	OpReturnItems   = "return_items"

	lockTTL       = 30 * time.Second
	lockAttempts  = 3
	lockRetryWait = 100 * time.Millisecond
)

type orderUseCase struct {
	orders   order.Repository
	stock    inventory.Repository
	tx       *txmanager.Manager
	locker   order.Locker
	failures order.FailureRecorder
	errSink  order.ErrorSink
	logger   *zap.Logger
}

func NewOrderUseCase(
	orders order.Repository,
	stock inventory.Repository,
	tx *txmanager.Manager,
	locker order.Locker,
	failures order.FailureRecorder,
	errSink order.ErrorSink,
	log *zap.Logger,
) order.UseCase {
	return &orderUseCase{
		orders:   orders,
		stock:    stock,
		tx:       tx,
		locker:   locker,
		failures: failures,
		errSink:  errSink,
		logger:   log,
	}
}

// FulfillmentPayload is the diagnostic snapshot stored with the transaction
// log. It is never re-parsed to resume an operation.
type FulfillmentPayload struct {
	BillID string                   `json:"bill_id"`
	Items  []FulfillmentPayloadItem `json:"items"`
}

type FulfillmentPayloadItem struct {
	ID       string          `json:"id"`
	Table    string          `json:"table"`
	Name     string          `json:"name"`
	Quantity decimal.Decimal `json:"quantity"`
}

type ReturnPayload struct {
	BillID string `json:"bill_id"`
}

func validateCreate(input *dto.CreateOrderInput) error {
	if input.BillID == "" || input.FirstName == "" || input.LastName == "" || input.Phone == "" {
		return order.ErrMissingCustomerInfo
	}
	if len(input.Lines) == 0 {
		return order.ErrEmptyCart
	}
	seen := make(map[string]bool, len(input.Lines))
	for _, line := range input.Lines {
		if !model.IsStockTable(line.ItemTable) {
			return fmt.Errorf("%w: %s", order.ErrUnknownStockTable, line.ItemTable)
		}
		if !line.QuantityDozens.IsPositive() {
			return fmt.Errorf("%w for %s", order.ErrInvalidQuantity, line.ItemName)
		}
		if line.QuantityDozens.GreaterThan(line.SnapshotRemainingDozens) {
			return fmt.Errorf("%w: quantity for %s exceeds available stock", order.ErrInvalidQuantity, line.ItemName)
		}
		// One line per article. The sold_in_bills marker records at most one
		// decrement per bill, so a second line for the same row would never
		// be applied to stock.
		key := line.ItemTable + "/" + line.ItemID
		if seen[key] {
			return fmt.Errorf("%w: %s", order.ErrDuplicateCartItem, line.ItemName)
		}
		seen[key] = true
	}
	return nil
}

func (uc *orderUseCase) CreateOrder(ctx context.Context, input *dto.CreateOrderInput) (*model.Order, error) {
	// Validation failures surface before any write or log entry.
	if err := validateCreate(input); err != nil {
		return nil, err
	}

	existing, err := uc.orders.GetByBillID(ctx, input.BillID)
	if err != nil {
		return nil, fmt.Errorf("failed to check bill ID: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: %s", order.ErrDuplicateBillID, input.BillID)
	}

	release, err := uc.acquireLock(ctx, input.BillID)
	if err != nil {
		return nil, err
	}
	defer release()

	payload := FulfillmentPayload{BillID: input.BillID}
	for _, line := range input.Lines {
		payload.Items = append(payload.Items, FulfillmentPayloadItem{
			ID:       line.ItemID,
			Table:    line.ItemTable,
			Name:     line.ItemName,
			Quantity: line.QuantityDozens,
		})
	}

	ord, err := txmanager.ExecuteWithRetry(ctx, uc.tx, uc.fulfillmentBody(input), OpOrderCreation, payload)
	if err != nil {
		uc.recordFailure(ctx, OpOrderCreation, payload, err)
		return nil, err
	}
	return ord, nil
}

// fulfillmentBody builds the retried unit of work for one bill. Each attempt
// re-runs the whole sequence from live reads; the sold_in_bills marker keeps
// the stock decrement idempotent across attempts.
func (uc *orderUseCase) fulfillmentBody(input *dto.CreateOrderInput) func(ctx context.Context) (*model.Order, error) {
	return func(ctx context.Context) (*model.Order, error) {
		// Verify live quantities before any write.
		live := make(map[string]*model.StockItem, len(input.Lines))
		for _, line := range input.Lines {
			item, err := uc.stock.GetByID(ctx, line.ItemTable, line.ItemID)
			if err != nil {
				uc.recordError(ctx, err, line.ItemTable, line.ItemID)
				return nil, fmt.Errorf("failed to fetch current quantity for %s: %w", line.ItemName, err)
			}
			if item == nil {
				err := fmt.Errorf("%w: %s", order.ErrItemNotFound, line.ItemName)
				uc.recordError(ctx, err, line.ItemTable, line.ItemID)
				return nil, err
			}
			if item.QuantityRemainingDozens.LessThan(line.QuantityDozens) {
				err := fmt.Errorf("%w for %s. Available: %s, Requested: %s",
					order.ErrInsufficientQuantity, item.ItemName,
					item.QuantityRemainingDozens, line.QuantityDozens)
				uc.recordError(ctx, err, line.ItemTable, line.ItemID)
				return nil, err
			}
			live[line.ItemID] = item
		}

		// Order header.
		total := decimal.Zero
		for _, line := range input.Lines {
			total = total.Add(line.QuantityDozens)
		}
		ord := &model.Order{
			BillID:              input.BillID,
			CustomerFirstName:   input.FirstName,
			CustomerLastName:    input.LastName,
			CustomerPhone:       input.Phone,
			Comments:            input.Comments,
			TotalItems:          len(input.Lines),
			TotalQuantityDozens: total,
			Status:              model.OrderStatusActive,
			OrderDate:           time.Now(),
		}
		if err := uc.orders.Upsert(ctx, ord); err != nil {
			uc.recordError(ctx, err, "orders", input.BillID)
			return nil, fmt.Errorf("failed to create order: %w", err)
		}

		// Order lines, denormalized from the live rows.
		items := make([]model.OrderItem, 0, len(input.Lines))
		for _, line := range input.Lines {
			src := live[line.ItemID]
			items = append(items, model.OrderItem{
				ID:             uuid.New().String(),
				BillID:         input.BillID,
				ItemID:         line.ItemID,
				ItemTable:      line.ItemTable,
				QuantityDozens: line.QuantityDozens,
				ItemCategory:   src.ItemCategory,
				ItemName:       src.ItemName,
				ArticleNumber:  src.ArticleNumber,
			})
		}
		if err := uc.orders.ReplaceItems(ctx, input.BillID, items); err != nil {
			uc.recordError(ctx, err, "order_items", input.BillID)
			return nil, fmt.Errorf("failed to create order items: %w", err)
		}

		// Decrement stock. A row whose sold_in_bills already carries this
		// bill id was updated by an earlier attempt and is skipped.
		expected := make(map[string]decimal.Decimal, len(input.Lines))
		for _, line := range input.Lines {
			cur, err := uc.stock.GetByID(ctx, line.ItemTable, line.ItemID)
			if err != nil {
				uc.recordError(ctx, err, line.ItemTable, line.ItemID)
				return nil, fmt.Errorf("failed to fetch current amount sold for %s: %w", line.ItemName, err)
			}
			if cur == nil {
				err := fmt.Errorf("%w: %s", order.ErrItemNotFound, line.ItemName)
				uc.recordError(ctx, err, line.ItemTable, line.ItemID)
				return nil, err
			}
			if model.ContainsBill(cur.SoldInBills, input.BillID) {
				expected[line.ItemID] = cur.QuantityRemainingDozens
				continue
			}

			newRemaining := cur.QuantityRemainingDozens.Sub(line.QuantityDozens)
			if newRemaining.IsNegative() {
				err := fmt.Errorf("%w for %s. Available: %s, Requested: %s",
					order.ErrInsufficientQuantity, cur.ItemName,
					cur.QuantityRemainingDozens, line.QuantityDozens)
				uc.recordError(ctx, err, line.ItemTable, line.ItemID)
				return nil, err
			}
			newSold := cur.AmountSoldDozens.Add(line.QuantityDozens)
			newBills := model.AppendBill(cur.SoldInBills, input.BillID)

			if err := uc.stock.UpdateStockCounters(ctx, line.ItemTable, line.ItemID, newRemaining, newSold, newBills); err != nil {
				uc.recordError(ctx, err, line.ItemTable, line.ItemID)
				return nil, fmt.Errorf("failed to update quantity for %s: %w", cur.ItemName, err)
			}
			expected[line.ItemID] = newRemaining
		}

		// Verify the written quantities match exactly.
		for _, line := range input.Lines {
			check, err := uc.stock.GetByID(ctx, line.ItemTable, line.ItemID)
			if err != nil {
				uc.recordError(ctx, err, line.ItemTable, line.ItemID)
				return nil, fmt.Errorf("failed to verify quantity for %s: %w", line.ItemName, err)
			}
			if check == nil {
				err := fmt.Errorf("%w: %s", order.ErrItemNotFound, line.ItemName)
				uc.recordError(ctx, err, line.ItemTable, line.ItemID)
				return nil, err
			}
			if !check.QuantityRemainingDozens.Equal(expected[line.ItemID]) {
				err := fmt.Errorf("quantity verification failed for %s. Expected: %s, Found: %s",
					check.ItemName, expected[line.ItemID], check.QuantityRemainingDozens)
				uc.recordError(ctx, err, line.ItemTable, line.ItemID)
				return nil, err
			}
		}

		return ord, nil
	}
}

func (uc *orderUseCase) ReturnOrder(ctx context.Context, billID string) (*model.Order, error) {
	ord, err := uc.orders.GetByBillID(ctx, billID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch order: %w", err)
	}
	if ord == nil {
		return nil, order.ErrOrderNotFound
	}
	if ord.Status != model.OrderStatusActive {
		return nil, fmt.Errorf("%w: status is %s", order.ErrOrderNotActive, ord.Status)
	}

	release, err := uc.acquireLock(ctx, billID)
	if err != nil {
		return nil, err
	}
	defer release()

	payload := ReturnPayload{BillID: billID}
	updated, err := txmanager.ExecuteWithRetry(ctx, uc.tx, uc.returnBody(billID), OpReturnItems, payload)
	if err != nil {
		uc.recordFailure(ctx, OpReturnItems, payload, err)
		return nil, err
	}
	return updated, nil
}

// returnBody cancels the bill and restores each line to its source table.
// Cancelling writes absolute values, and restored rows drop the bill id from
// sold_in_bills, so re-running an attempt never restores twice.
func (uc *orderUseCase) returnBody(billID string) func(ctx context.Context) (*model.Order, error) {
	return func(ctx context.Context) (*model.Order, error) {
		if err := uc.orders.MarkCancelled(ctx, billID, time.Now()); err != nil {
			uc.recordError(ctx, err, "orders", billID)
			return nil, fmt.Errorf("failed to cancel order: %w", err)
		}

		items, err := uc.orders.ListItems(ctx, billID)
		if err != nil {
			uc.recordError(ctx, err, "order_items", billID)
			return nil, fmt.Errorf("failed to fetch order items: %w", err)
		}

		for _, it := range items {
			cur, err := uc.stock.GetByID(ctx, it.ItemTable, it.ItemID)
			if err != nil {
				uc.recordError(ctx, err, it.ItemTable, it.ItemID)
				return nil, fmt.Errorf("failed to fetch current quantity for %s: %w", it.ItemName, err)
			}
			if cur == nil {
				err := fmt.Errorf("%w: %s", order.ErrItemNotFound, it.ItemName)
				uc.recordError(ctx, err, it.ItemTable, it.ItemID)
				return nil, err
			}
			if !model.ContainsBill(cur.SoldInBills, billID) {
				continue
			}

			newRemaining := cur.QuantityRemainingDozens.Add(it.QuantityDozens)
			newSold := cur.AmountSoldDozens.Sub(it.QuantityDozens)
			newBills := model.RemoveBill(cur.SoldInBills, billID)

			if err := uc.stock.UpdateStockCounters(ctx, it.ItemTable, it.ItemID, newRemaining, newSold, newBills); err != nil {
				uc.recordError(ctx, err, it.ItemTable, it.ItemID)
				return nil, fmt.Errorf("failed to restore quantity for %s: %w", it.ItemName, err)
			}
		}

		updated, err := uc.orders.GetByBillID(ctx, billID)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch cancelled order: %w", err)
		}
		if updated == nil {
			return nil, order.ErrOrderNotFound
		}
		return updated, nil
	}
}

func (uc *orderUseCase) GetBill(ctx context.Context, billID string) (*model.Order, error) {
	ord, err := uc.orders.GetByBillID(ctx, billID)
	if err != nil {
		return nil, err
	}
	if ord == nil {
		return nil, order.ErrOrderNotFound
	}
	return ord, nil
}

func (uc *orderUseCase) ListRecent(ctx context.Context, limit int) ([]model.Order, error) {
	if limit <= 0 {
		limit = 10
	}
	return uc.orders.ListRecent(ctx, limit)
}

func (uc *orderUseCase) ListItems(ctx context.Context, billID string) ([]model.OrderItem, error) {
	return uc.orders.ListItems(ctx, billID)
}

func (uc *orderUseCase) acquireLock(ctx context.Context, billID string) (func(), error) {
	if uc.locker == nil {
		return func() {}, nil
	}

	key := "lock:order:" + billID
	value := uuid.New().String()

	acquired := false
	for i := 0; i < lockAttempts; i++ {
		ok, err := uc.locker.AcquireLock(ctx, key, value, lockTTL)
		if err != nil {
			uc.logger.Error("failed to acquire order lock", zap.String("bill_id", billID), zap.Error(err))
		}
		if ok {
			acquired = true
			break
		}
		time.Sleep(lockRetryWait)
	}
	if !acquired {
		return nil, order.ErrLockBusy
	}

	return func() {
		if err := uc.locker.ReleaseLock(ctx, key, value); err != nil {
			uc.logger.Warn("failed to release order lock", zap.String("bill_id", billID), zap.Error(err))
		}
	}, nil
}

func (uc *orderUseCase) recordFailure(ctx context.Context, operationType string, payload any, err error) {
	if uc.failures == nil {
		return
	}
	uc.failures.Record(ctx, operationType, payload, err.Error())
}

func (uc *orderUseCase) recordError(ctx context.Context, err error, sourceTable, recordID string) {
	if uc.errSink == nil {
		return
	}
	uc.errSink.Record(ctx, err, sourceTable, recordID)
}
