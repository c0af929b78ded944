package repos

import (
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"storefront/internal/domain"
)

type CartRepo struct{ db *sqlx.DB }

func NewCartRepo(db *sqlx.DB) *CartRepo { return &CartRepo{db: db} }

// CartLineView is a cart line joined against the live catalog for
// display. Price is the unit-price snapshot captured when the line was
// added, not the current product price.
type CartLineView struct {
	ProductID   string  `db:"product_id" json:"product"`
	ProductName string  `db:"product_name" json:"productName"`
	StockID     string  `db:"stock_id" json:"stock"`
	Size        string  `db:"size" json:"size,omitempty"`
	Color       string  `db:"color" json:"color,omitempty"`
	Qty         int     `db:"qty" json:"quantity"`
	Price       float64 `db:"price" json:"price"`
	Subtotal    float64 `db:"subtotal" json:"subtotal"`
}

// EnsureCart returns the user's cart id, creating the cart lazily on
// first use. Insert-or-ignore keeps two concurrent first adds from
// racing on the user_id constraint; both land on the same row.
func (r *CartRepo) EnsureCart(userID string) (string, error) {
	_, err := r.db.Exec(`
	  INSERT INTO carts(id,user_id,updated_at) VALUES(?,?,?)
	  ON CONFLICT(user_id) DO NOTHING
	`, uuid.NewString(), userID, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return "", err
	}
	var cartID string
	err = r.db.Get(&cartID, `SELECT id FROM carts WHERE user_id = ?`, userID)
	return cartID, err
}

// ByUserTx finds the user's cart inside the current unit of work.
func (r *CartRepo) ByUserTx(q sqlx.Queryer, userID string) (domain.Cart, error) {
	var c domain.Cart
	err := sqlx.Get(q, &c, `
	  SELECT id, user_id, COALESCE(created_at,'') AS created_at,
	         COALESCE(updated_at,'') AS updated_at
	  FROM carts WHERE user_id = ?
	`, userID)
	return c, err
}

// UpsertItem adds a line or merges quantity into an existing
// (product, stock) line. The price snapshot of the first add wins.
func (r *CartRepo) UpsertItem(cartID, productID, stockID string, qty int, price float64) error {
	_, err := r.db.Exec(`
		INSERT INTO cart_items(cart_id,product_id,stock_id,qty,price,created_at)
		VALUES(?,?,?,?,?,CURRENT_TIMESTAMP)
		ON CONFLICT(cart_id,product_id,stock_id) DO UPDATE
		SET qty = cart_items.qty + excluded.qty, updated_at = CURRENT_TIMESTAMP
	`, cartID, productID, stockID, qty, price)
	return err
}

func (r *CartRepo) Items(cartID string) ([]domain.CartItem, error) {
	return r.ItemsTx(r.db, cartID)
}

func (r *CartRepo) ItemsTx(q sqlx.Queryer, cartID string) ([]domain.CartItem, error) {
	var out []domain.CartItem
	err := sqlx.Select(q, &out, `
	  SELECT cart_id, product_id, stock_id, qty, price
	  FROM cart_items
	  WHERE cart_id = ?
	  ORDER BY created_at
	`, cartID)
	return out, err
}

// ItemQtyTx reads one line's quantity; sql.ErrNoRows if the
// (product, stock) pair is not in the cart.
func (r *CartRepo) ItemQtyTx(q sqlx.Queryer, cartID, productID, stockID string) (int, error) {
	var qty int
	err := sqlx.Get(q, &qty, `
	  SELECT qty FROM cart_items
	  WHERE cart_id = ? AND product_id = ? AND stock_id = ?
	`, cartID, productID, stockID)
	return qty, err
}

func (r *CartRepo) SetItemQtyTx(q sqlx.Ext, cartID, productID, stockID string, qty int) error {
	_, err := q.Exec(`
	  UPDATE cart_items SET qty = ?, updated_at = CURRENT_TIMESTAMP
	  WHERE cart_id = ? AND product_id = ? AND stock_id = ?
	`, qty, cartID, productID, stockID)
	return err
}

func (r *CartRepo) DeleteItemTx(q sqlx.Ext, cartID, productID, stockID string) error {
	_, err := q.Exec(`
	  DELETE FROM cart_items
	  WHERE cart_id = ? AND product_id = ? AND stock_id = ?
	`, cartID, productID, stockID)
	return err
}

// View returns display lines plus the running total.
func (r *CartRepo) View(cartID string) ([]CartLineView, float64, error) {
	rows := []CartLineView{}
	if err := r.db.Select(&rows, `
	  SELECT ci.product_id, p.name AS product_name, ci.stock_id,
	         COALESCE(s.size,'') AS size, COALESCE(s.color,'') AS color,
	         ci.qty, ci.price, (ci.qty*ci.price) AS subtotal
	  FROM cart_items ci
	  JOIN products p ON p.id = ci.product_id
	  JOIN stocks  s ON s.id = ci.stock_id
	  WHERE ci.cart_id = ?
	  ORDER BY ci.created_at
	`, cartID); err != nil {
		return nil, 0, err
	}
	total := 0.0
	for _, it := range rows {
		total += it.Subtotal
	}
	return rows, total, nil
}
