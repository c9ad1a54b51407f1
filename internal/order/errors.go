package order

import "errors"

var (
	ErrMissingCustomerInfo  = errors.New("missing required customer information")
	ErrEmptyCart            = errors.New("order must contain at least one item")
	ErrInvalidQuantity      = errors.New("invalid quantity")
	ErrDuplicateCartItem    = errors.New("item already in cart")
	ErrDuplicateBillID      = errors.New("bill ID already exists")
	ErrInsufficientQuantity = errors.New("insufficient quantity")
	ErrItemNotFound         = errors.New("item not found in inventory")
	ErrUnknownStockTable    = errors.New("unknown stock table")
	ErrOrderNotFound        = errors.New("order not found")
	ErrOrderNotActive       = errors.New("order is not active")
	ErrLockBusy             = errors.New("system busy, please try again later")
)
