package repos

import (
	"github.com/jmoiron/sqlx"

	"storefront/internal/domain"
)

type OrderRepo struct{ db *sqlx.DB }

func NewOrderRepo(db *sqlx.DB) *OrderRepo { return &OrderRepo{db: db} }

// OrderItemView is a stored order line joined against the catalog for
// display. Price stays the snapshot written at placement.
type OrderItemView struct {
	ProductID   string  `db:"product_id" json:"product"`
	ProductName string  `db:"product_name" json:"productName"`
	StockID     string  `db:"stock_id" json:"stock"`
	Size        string  `db:"size" json:"size,omitempty"`
	Color       string  `db:"color" json:"color,omitempty"`
	Qty         int     `db:"qty" json:"quantity"`
	Price       float64 `db:"price" json:"price"`
}

// CreateTx inserts the order header inside the placement unit of work.
func (r *OrderRepo) CreateTx(q sqlx.Ext, o domain.Order) error {
	_, err := q.Exec(`
	  INSERT INTO orders(id, user_id, address, status, total, created_at)
	  VALUES(?, ?, ?, ?, ?, ?)
	`, o.ID, o.UserID, o.Address, o.Status, o.Total, o.CreatedAt)
	return err
}

// InsertItemTx inserts a single priced line.
func (r *OrderRepo) InsertItemTx(q sqlx.Ext, it domain.OrderItem) error {
	_, err := q.Exec(`
	  INSERT INTO order_items(order_id, product_id, stock_id, qty, price)
	  VALUES(?, ?, ?, ?, ?)
	`, it.OrderID, it.ProductID, it.StockID, it.Qty, it.Price)
	return err
}

func (r *OrderRepo) Header(id string) (domain.Order, error) {
	var o domain.Order
	err := r.db.Get(&o, `
	  SELECT id, user_id, address, status, total, created_at, COALESCE(updated_at,'') AS updated_at
	  FROM orders WHERE id = ?
	`, id)
	return o, err
}

func (r *OrderRepo) Get(id string) (domain.Order, []OrderItemView, error) {
	o, err := r.Header(id)
	if err != nil {
		return domain.Order{}, nil, err
	}

	var items []OrderItemView
	if err := r.db.Select(&items, `
	  SELECT oi.product_id, p.name AS product_name, oi.stock_id,
	         COALESCE(s.size,'') AS size, COALESCE(s.color,'') AS color,
	         oi.qty, oi.price
	  FROM order_items oi
	  JOIN products p ON p.id = oi.product_id
	  JOIN stocks  s ON s.id = oi.stock_id
	  WHERE oi.order_id = ?
	  ORDER BY p.name
	`, id); err != nil {
		return domain.Order{}, nil, err
	}

	return o, items, nil
}

func (r *OrderRepo) ListByUser(userID string) ([]domain.Order, error) {
	var out []domain.Order
	err := r.db.Select(&out, `
	  SELECT id, user_id, address, status, total, created_at, COALESCE(updated_at,'') AS updated_at
	  FROM orders
	  WHERE user_id = ?
	  ORDER BY datetime(created_at) DESC
	`, userID)
	return out, err
}

func (r *OrderRepo) ListLatest(limit int) ([]domain.Order, error) {
	if limit <= 0 {
		limit = 100
	}
	var out []domain.Order
	err := r.db.Select(&out, `
	  SELECT id, user_id, address, status, total, created_at, COALESCE(updated_at,'') AS updated_at
	  FROM orders
	  ORDER BY datetime(created_at) DESC
	  LIMIT ?
	`, limit)
	return out, err
}

func (r *OrderRepo) UpdateAddress(id, address, updatedAt string) error {
	_, err := r.db.Exec(`UPDATE orders SET address = ?, updated_at = ? WHERE id = ?`,
		address, updatedAt, id)
	return err
}

// UpdateStatusFromProcess flips the status only while the order is still
// in 'process'; the guard keeps two admins from racing past the state
// machine. Returns false when no row changed.
func (r *OrderRepo) UpdateStatusFromProcess(id, status, updatedAt string) (bool, error) {
	res, err := r.db.Exec(`
	  UPDATE orders SET status = ?, updated_at = ?
	  WHERE id = ? AND status = 'process'
	`, status, updatedAt, id)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}
