package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/wholesaleops/stockledger/internal/inventory"
	"github.com/wholesaleops/stockledger/internal/model"
	"github.com/wholesaleops/stockledger/internal/order"
	"github.com/wholesaleops/stockledger/internal/recovery"
)

// FulfillmentRecoveryHandler completes an order_creation queue entry only when
// every effect of the sequence is visible in the store: the header exists and
// each line's source row carries the bill id in sold_in_bills. A header whose
// lines were never applied to stock is a half-applied sale and stays with an
// operator.
func FulfillmentRecoveryHandler(orders order.Repository, stock inventory.Repository) recovery.Handler {
	return func(ctx context.Context, op *model.FailedOperation) error {
		billID, err := billIDFromPayload(op.OperationData)
		if err != nil {
			return err
		}

		ord, err := orders.GetByBillID(ctx, billID)
		if err != nil {
			return err
		}
		if ord == nil {
			return fmt.Errorf("order %s was never written; needs manual re-entry", billID)
		}

		items, err := orders.ListItems(ctx, billID)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return fmt.Errorf("order %s has no lines; needs manual re-entry", billID)
		}
		for _, it := range items {
			row, err := stock.GetByID(ctx, it.ItemTable, it.ItemID)
			if err != nil {
				return err
			}
			if row == nil {
				return fmt.Errorf("stock row for %s is gone; order %s needs manual review", it.ItemName, billID)
			}
			if !model.ContainsBill(row.SoldInBills, billID) {
				return fmt.Errorf("stock for %s was never decremented; order %s needs manual completion", it.ItemName, billID)
			}
		}
		return nil
	}
}

// ReturnRecoveryHandler completes a return_items queue entry only when the
// order is cancelled and no line's source row still carries the bill id, so a
// cancellation whose restores never landed is not reported as recovered.
func ReturnRecoveryHandler(orders order.Repository, stock inventory.Repository) recovery.Handler {
	return func(ctx context.Context, op *model.FailedOperation) error {
		billID, err := billIDFromPayload(op.OperationData)
		if err != nil {
			return err
		}

		ord, err := orders.GetByBillID(ctx, billID)
		if err != nil {
			return err
		}
		if ord == nil {
			return fmt.Errorf("order %s not found", billID)
		}
		if ord.Status != model.OrderStatusCancelled {
			return fmt.Errorf("order %s still active; return needs manual re-run", billID)
		}

		items, err := orders.ListItems(ctx, billID)
		if err != nil {
			return err
		}
		for _, it := range items {
			row, err := stock.GetByID(ctx, it.ItemTable, it.ItemID)
			if err != nil {
				return err
			}
			if row == nil {
				return fmt.Errorf("stock row for %s is gone; return of %s needs manual review", it.ItemName, billID)
			}
			if model.ContainsBill(row.SoldInBills, billID) {
				return fmt.Errorf("stock for %s was never restored; return of %s needs manual completion", it.ItemName, billID)
			}
		}
		return nil
	}
}

func billIDFromPayload(data json.RawMessage) (string, error) {
	var payload struct {
		BillID string `json:"bill_id"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return "", fmt.Errorf("unreadable operation payload: %w", err)
	}
	if payload.BillID == "" {
		return "", fmt.Errorf("operation payload has no bill_id")
	}
	return payload.BillID, nil
}
