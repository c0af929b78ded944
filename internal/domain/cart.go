package domain

// Cart holds at most one line per (product, stock) pair; adding the same
// pair again merges quantities. The cart row itself persists even when
// all lines are gone.
type Cart struct {
	ID        string `db:"id" json:"id"`
	UserID    string `db:"user_id" json:"userId"`
	CreatedAt string `db:"created_at" json:"createdAt"`
	UpdatedAt string `db:"updated_at" json:"updatedAt,omitempty"`
}

// CartItem keeps the unit price observed when the line was added; the
// live catalog price is not consulted again until checkout.
type CartItem struct {
	CartID    string  `db:"cart_id" json:"-"`
	ProductID string  `db:"product_id" json:"product"`
	StockID   string  `db:"stock_id" json:"stock"`
	Qty       int     `db:"qty" json:"quantity"`
	Price     float64 `db:"price" json:"price"`
}
