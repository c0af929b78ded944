package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrEditWindowExpired is returned when an order's address edit is
	// attempted more than ten minutes after the order was created.
	ErrEditWindowExpired = errors.New("order can no longer be changed after 10 minutes")

	// ErrConcurrencyConflict surfaces a conflicting concurrent write
	// detected by the underlying store; callers may retry the whole call.
	ErrConcurrencyConflict = errors.New("conflicting concurrent update, retry")

	// ErrStatusTransition is returned for a status change the order
	// state machine does not allow.
	ErrStatusTransition = errors.New("illegal order status transition")
)

// NotFoundError identifies which referenced entity was missing, so the
// caller can render a useful message.
type NotFoundError struct {
	Entity string // "product", "stock", "cart", "cart item", "order", "user"
	Ref    string
}

func (e *NotFoundError) Error() string {
	if e.Ref == "" {
		return e.Entity + " not found"
	}
	return fmt.Sprintf("%s %s not found", e.Entity, e.Ref)
}

// IsNotFound reports whether err is a NotFoundError of any entity.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// InsufficientStockError is returned when a placement asks for more
// units than the stock has on hand.
type InsufficientStockError struct {
	StockID string
	Have    int
	Want    int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock %s (have %d, want %d)", e.StockID, e.Have, e.Want)
}
