package domain

// Order status lifecycle. Every order starts in StatusProcess; an admin
// moves it to StatusSuccess or StatusFailed, both of which are terminal.
const (
	StatusProcess = "process"
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// ValidStatus reports whether s is one of the known order statuses.
func ValidStatus(s string) bool {
	return s == StatusProcess || s == StatusSuccess || s == StatusFailed
}

// CanTransition reports whether an order may move from one status to
// another. Only process -> success and process -> failed are allowed.
func CanTransition(from, to string) bool {
	return from == StatusProcess && (to == StatusSuccess || to == StatusFailed)
}

type Order struct {
	ID        string  `db:"id" json:"id"`
	UserID    string  `db:"user_id" json:"userId"`
	Address   string  `db:"address" json:"address"`
	Status    string  `db:"status" json:"status"`
	Total     float64 `db:"total" json:"totalPrice"`
	CreatedAt string  `db:"created_at" json:"createdAt"`
	UpdatedAt string  `db:"updated_at" json:"updatedAt,omitempty"`
}

// OrderItem.Price is the line price (unit price x quantity) captured at
// placement time; later catalog price changes never touch it.
type OrderItem struct {
	OrderID   string  `db:"order_id" json:"-"`
	ProductID string  `db:"product_id" json:"product"`
	StockID   string  `db:"stock_id" json:"stock"`
	Qty       int     `db:"qty" json:"quantity"`
	Price     float64 `db:"price" json:"price"`
}
