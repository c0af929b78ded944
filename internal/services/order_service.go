package services

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"storefront/internal/domain"
	"storefront/internal/repos"
)

// editWindow is how long after creation an order's address may change.
const editWindow = 10 * time.Minute

// RequestedLine is one validated (product, stock, quantity) entry of a
// place-order request.
type RequestedLine struct {
	ProductID string
	StockID   string
	Qty       int
}

type OrderService struct {
	UoW    *repos.UnitOfWork
	Prods  *repos.ProductRepo
	Stocks *repos.StockRepo
	Carts  *repos.CartRepo
	Orders *repos.OrderRepo

	Now func() time.Time // injectable clock, used by the edit-window tests
}

func NewOrderService(uow *repos.UnitOfWork, prods *repos.ProductRepo, stocks *repos.StockRepo,
	carts *repos.CartRepo, orders *repos.OrderRepo) *OrderService {
	return &OrderService{UoW: uow, Prods: prods, Stocks: stocks, Carts: carts, Orders: orders, Now: time.Now}
}

// Place converts the user's requested lines into a committed order:
// prices each line from the catalog, writes the order, decrements stock,
// and reduces matching cart lines, all in one unit of work. Any failure
// rolls the whole thing back; nothing partial is ever visible.
//
// The cart is advisory bookkeeping here: requested quantities are
// trusted as-is, and lines absent from the cart are skipped without
// error. Only stock can reject the order.
func (s *OrderService) Place(userID string, lines []RequestedLine, address string) (domain.Order, []domain.OrderItem, error) {
	if len(lines) == 0 {
		return domain.Order{}, nil, errors.New("no items to order")
	}
	if address == "" {
		return domain.Order{}, nil, errors.New("missing address")
	}
	lines = mergeLines(lines)

	order := domain.Order{
		ID:        uuid.NewString(),
		UserID:    userID,
		Address:   address,
		Status:    domain.StatusProcess,
		CreatedAt: s.Now().UTC().Format(time.RFC3339),
	}
	var items []domain.OrderItem

	err := s.UoW.Do(func(tx sqlx.Ext) error {
		// Price every line against the catalog.
		total := 0.0
		items = items[:0]
		for _, l := range lines {
			p, err := s.Prods.GetTx(tx, l.ProductID)
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return &domain.NotFoundError{Entity: "product", Ref: l.ProductID}
				}
				return err
			}
			linePrice := p.Price * float64(l.Qty)
			total += linePrice
			items = append(items, domain.OrderItem{
				OrderID:   order.ID,
				ProductID: l.ProductID,
				StockID:   l.StockID,
				Qty:       l.Qty,
				Price:     linePrice,
			})
		}
		order.Total = total

		// Persist the pending order.
		if err := s.Orders.CreateTx(tx, order); err != nil {
			return err
		}
		for _, it := range items {
			if err := s.Orders.InsertItemTx(tx, it); err != nil {
				return err
			}
		}

		// Check and decrement stock per line.
		for _, it := range items {
			st, err := s.Stocks.GetTx(tx, it.StockID)
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return &domain.NotFoundError{Entity: "stock", Ref: it.StockID}
				}
				return err
			}
			if st.Qty < it.Qty {
				return &domain.InsufficientStockError{StockID: it.StockID, Have: st.Qty, Want: it.Qty}
			}
			ok, err := s.Stocks.DecrementTx(tx, it.StockID, it.Qty)
			if err != nil {
				return err
			}
			if !ok {
				// Lost a race past the read above; the guard caught it.
				return &domain.InsufficientStockError{StockID: it.StockID, Have: st.Qty, Want: it.Qty}
			}
		}

		// Reconcile the cart: shrink or drop matching lines.
		cart, err := s.Carts.ByUserTx(tx, userID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return &domain.NotFoundError{Entity: "cart", Ref: userID}
			}
			return err
		}
		for _, l := range lines {
			have, err := s.Carts.ItemQtyTx(tx, cart.ID, l.ProductID, l.StockID)
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					continue // not in the cart; leave it alone
				}
				return err
			}
			left := have - l.Qty
			if left <= 0 {
				if err := s.Carts.DeleteItemTx(tx, cart.ID, l.ProductID, l.StockID); err != nil {
					return err
				}
			} else if err := s.Carts.SetItemQtyTx(tx, cart.ID, l.ProductID, l.StockID, left); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return domain.Order{}, nil, err
	}
	return order, items, nil
}

// mergeLines folds repeated (product, stock) pairs into one line,
// summing quantities. The stored order keeps one row per pair.
func mergeLines(lines []RequestedLine) []RequestedLine {
	merged := make([]RequestedLine, 0, len(lines))
	seen := map[[2]string]int{}
	for _, l := range lines {
		k := [2]string{l.ProductID, l.StockID}
		if i, ok := seen[k]; ok {
			merged[i].Qty += l.Qty
			continue
		}
		seen[k] = len(merged)
		merged = append(merged, l)
	}
	return merged
}

// Find returns the order joined against the catalog for display.
func (s *OrderService) Find(id string) (domain.Order, []repos.OrderItemView, error) {
	o, items, err := s.Orders.Get(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Order{}, nil, &domain.NotFoundError{Entity: "order", Ref: id}
		}
		return domain.Order{}, nil, err
	}
	return o, items, nil
}

func (s *OrderService) ListByUser(userID string) ([]domain.Order, error) {
	return s.Orders.ListByUser(userID)
}

func (s *OrderService) ListLatest(limit int) ([]domain.Order, error) {
	return s.Orders.ListLatest(limit)
}

// UpdateAddress changes the shipping address while the order is still
// inside its ten-minute edit window.
func (s *OrderService) UpdateAddress(id, address string) (domain.Order, error) {
	o, err := s.Orders.Header(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Order{}, &domain.NotFoundError{Entity: "order", Ref: id}
		}
		return domain.Order{}, err
	}

	created, err := time.Parse(time.RFC3339, o.CreatedAt)
	if err != nil {
		return domain.Order{}, err
	}
	if s.Now().Sub(created) > editWindow {
		return domain.Order{}, domain.ErrEditWindowExpired
	}

	now := s.Now().UTC().Format(time.RFC3339)
	if err := s.Orders.UpdateAddress(id, address, now); err != nil {
		return domain.Order{}, err
	}
	o.Address = address
	o.UpdatedAt = now
	return o, nil
}

// UpdateStatus moves an order through the state machine: process may
// become success or failed, and both of those are terminal.
func (s *OrderService) UpdateStatus(id, status string) (domain.Order, error) {
	if !domain.ValidStatus(status) {
		return domain.Order{}, domain.ErrStatusTransition
	}

	o, err := s.Orders.Header(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Order{}, &domain.NotFoundError{Entity: "order", Ref: id}
		}
		return domain.Order{}, err
	}
	if !domain.CanTransition(o.Status, status) {
		return domain.Order{}, domain.ErrStatusTransition
	}

	now := s.Now().UTC().Format(time.RFC3339)
	ok, err := s.Orders.UpdateStatusFromProcess(id, status, now)
	if err != nil {
		return domain.Order{}, err
	}
	if !ok {
		// Another caller got there first.
		return domain.Order{}, domain.ErrStatusTransition
	}
	o.Status = status
	o.UpdatedAt = now
	return o, nil
}
