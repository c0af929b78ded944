package services_test

import (
	"errors"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"storefront/internal/domain"
	"storefront/internal/repos"
	"storefront/internal/services"
)

// memdbOrders seeds the spec's baseline: productA at 100/unit, stockA
// with 100 on hand, and a cart for u-1 holding 3 units of that pair.
func memdbOrders(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := sqlx.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	schema := `
	CREATE TABLE products(id TEXT PRIMARY KEY, name TEXT, description TEXT, categories_json TEXT,
	  price NUMERIC, images_json TEXT, material TEXT, created_at TEXT, updated_at TEXT);
	CREATE TABLE stocks(id TEXT PRIMARY KEY, product_id TEXT, size TEXT, color TEXT,
	  qty INTEGER CHECK (qty >= 0), image TEXT, weight NUMERIC, length NUMERIC, width NUMERIC,
	  height NUMERIC, created_at TEXT, updated_at TEXT);
	CREATE TABLE carts(id TEXT PRIMARY KEY, user_id TEXT UNIQUE NOT NULL, created_at TEXT, updated_at TEXT);
	CREATE TABLE cart_items(cart_id TEXT, product_id TEXT, stock_id TEXT, qty INTEGER, price NUMERIC,
	  created_at TEXT, updated_at TEXT, PRIMARY KEY(cart_id, product_id, stock_id));
	CREATE TABLE orders(id TEXT PRIMARY KEY, user_id TEXT, address TEXT, status TEXT,
	  total NUMERIC, created_at TEXT, updated_at TEXT);
	CREATE TABLE order_items(order_id TEXT, product_id TEXT, stock_id TEXT, qty INTEGER, price NUMERIC,
	  PRIMARY KEY(order_id, product_id, stock_id));

	INSERT INTO products(id,name,description,categories_json,price,images_json,created_at)
	  VALUES ('prod-a','Product A','','["apparel"]',100,'[]','now');
	INSERT INTO stocks(id,product_id,size,color,qty,created_at)
	  VALUES ('stock-a','prod-a','M','Red',100,'now');
	INSERT INTO carts(id,user_id) VALUES ('cart-1','u-1');
	INSERT INTO cart_items(cart_id,product_id,stock_id,qty,price,created_at)
	  VALUES ('cart-1','prod-a','stock-a',3,100,'now');
	`
	if _, err := db.Exec(schema); err != nil {
		t.Fatal(err)
	}
	return db
}

func newOrderService(db *sqlx.DB) *services.OrderService {
	return services.NewOrderService(
		repos.NewUnitOfWork(db),
		repos.NewProductRepo(db),
		repos.NewStockRepo(db),
		repos.NewCartRepo(db),
		repos.NewOrderRepo(db),
	)
}

func stockQty(t *testing.T, db *sqlx.DB, id string) int {
	t.Helper()
	var qty int
	if err := db.Get(&qty, `SELECT qty FROM stocks WHERE id=?`, id); err != nil {
		t.Fatal(err)
	}
	return qty
}

func cartLines(t *testing.T, db *sqlx.DB, cartID string) []domain.CartItem {
	t.Helper()
	var out []domain.CartItem
	if err := db.Select(&out, `SELECT cart_id,product_id,stock_id,qty,price FROM cart_items WHERE cart_id=?`, cartID); err != nil {
		t.Fatal(err)
	}
	return out
}

func orderCount(t *testing.T, db *sqlx.DB) int {
	t.Helper()
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM orders`); err != nil {
		t.Fatal(err)
	}
	return n
}

func TestPlace_ReducesStockAndCart(t *testing.T) {
	db := memdbOrders(t)
	svc := newOrderService(db)

	order, items, err := svc.Place("u-1", []services.RequestedLine{
		{ProductID: "prod-a", StockID: "stock-a", Qty: 2},
	}, "X")
	if err != nil {
		t.Fatal(err)
	}
	if order.Total != 200 {
		t.Fatalf("want total=200, got %v", order.Total)
	}
	if len(items) != 1 || items[0].Qty != 2 || items[0].Price != 200 {
		t.Fatalf("bad order items: %+v", items)
	}
	if order.Status != domain.StatusProcess {
		t.Fatalf("want status=process, got %s", order.Status)
	}
	if got := stockQty(t, db, "stock-a"); got != 98 {
		t.Fatalf("want stock=98, got %d", got)
	}
	lines := cartLines(t, db, "cart-1")
	if len(lines) != 1 || lines[0].Qty != 1 {
		t.Fatalf("want one cart line with qty=1, got %+v", lines)
	}
}

func TestPlace_ConsumesWholeCartLine(t *testing.T) {
	db := memdbOrders(t)
	svc := newOrderService(db)

	if _, _, err := svc.Place("u-1", []services.RequestedLine{
		{ProductID: "prod-a", StockID: "stock-a", Qty: 3},
	}, "X"); err != nil {
		t.Fatal(err)
	}
	if got := stockQty(t, db, "stock-a"); got != 97 {
		t.Fatalf("want stock=97, got %d", got)
	}
	if lines := cartLines(t, db, "cart-1"); len(lines) != 0 {
		t.Fatalf("want empty cart, got %+v", lines)
	}
	// The cart row itself survives empty.
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM carts WHERE id='cart-1'`); err != nil || n != 1 {
		t.Fatalf("cart row should persist (n=%d, err=%v)", n, err)
	}
}

func TestPlace_InsufficientStock(t *testing.T) {
	db := memdbOrders(t)
	db.MustExec(`UPDATE stocks SET qty=1 WHERE id='stock-a'`)
	svc := newOrderService(db)

	_, _, err := svc.Place("u-1", []services.RequestedLine{
		{ProductID: "prod-a", StockID: "stock-a", Qty: 2},
	}, "X")
	var is *domain.InsufficientStockError
	if !errors.As(err, &is) {
		t.Fatalf("want InsufficientStockError, got %v", err)
	}
	if is.StockID != "stock-a" {
		t.Fatalf("error should name the stock, got %+v", is)
	}
	if got := stockQty(t, db, "stock-a"); got != 1 {
		t.Fatalf("stock must be untouched, got %d", got)
	}
	if n := orderCount(t, db); n != 0 {
		t.Fatalf("no order may persist, got %d", n)
	}
	if lines := cartLines(t, db, "cart-1"); len(lines) != 1 || lines[0].Qty != 3 {
		t.Fatalf("cart must be untouched, got %+v", lines)
	}
}

func TestPlace_MissingProduct(t *testing.T) {
	db := memdbOrders(t)
	svc := newOrderService(db)

	_, _, err := svc.Place("u-1", []services.RequestedLine{
		{ProductID: "prod-ghost", StockID: "stock-a", Qty: 1},
	}, "X")
	var nf *domain.NotFoundError
	if !errors.As(err, &nf) || nf.Entity != "product" {
		t.Fatalf("want NotFound(product), got %v", err)
	}
	if n := orderCount(t, db); n != 0 {
		t.Fatalf("no order may persist, got %d", n)
	}
}

func TestPlace_MissingStock(t *testing.T) {
	db := memdbOrders(t)
	svc := newOrderService(db)

	// Stock lookup happens after the order insert; the rollback must
	// erase that insert.
	_, _, err := svc.Place("u-1", []services.RequestedLine{
		{ProductID: "prod-a", StockID: "stock-ghost", Qty: 1},
	}, "X")
	var nf *domain.NotFoundError
	if !errors.As(err, &nf) || nf.Entity != "stock" {
		t.Fatalf("want NotFound(stock), got %v", err)
	}
	if n := orderCount(t, db); n != 0 {
		t.Fatalf("order insert must roll back, got %d rows", n)
	}
}

func TestPlace_MissingCart(t *testing.T) {
	db := memdbOrders(t)
	db.MustExec(`DELETE FROM cart_items`)
	db.MustExec(`DELETE FROM carts`)
	svc := newOrderService(db)

	// Cart resolution runs after the stock decrement; a missing cart
	// must undo the decrement too.
	_, _, err := svc.Place("u-1", []services.RequestedLine{
		{ProductID: "prod-a", StockID: "stock-a", Qty: 2},
	}, "X")
	var nf *domain.NotFoundError
	if !errors.As(err, &nf) || nf.Entity != "cart" {
		t.Fatalf("want NotFound(cart), got %v", err)
	}
	if got := stockQty(t, db, "stock-a"); got != 100 {
		t.Fatalf("stock decrement must roll back, got %d", got)
	}
	if n := orderCount(t, db); n != 0 {
		t.Fatalf("no order may persist, got %d", n)
	}
}

func TestPlace_LineAbsentFromCart(t *testing.T) {
	db := memdbOrders(t)
	db.MustExec(`INSERT INTO products(id,name,price,created_at) VALUES ('prod-b','Product B',50,'now')`)
	db.MustExec(`INSERT INTO stocks(id,product_id,qty,created_at) VALUES ('stock-b','prod-b',10,'now')`)
	svc := newOrderService(db)

	// prod-b is not in the cart: the order still goes through and the
	// cart keeps its prod-a line untouched.
	order, _, err := svc.Place("u-1", []services.RequestedLine{
		{ProductID: "prod-b", StockID: "stock-b", Qty: 2},
	}, "X")
	if err != nil {
		t.Fatal(err)
	}
	if order.Total != 100 {
		t.Fatalf("want total=100, got %v", order.Total)
	}
	if got := stockQty(t, db, "stock-b"); got != 8 {
		t.Fatalf("want stock-b=8, got %d", got)
	}
	if lines := cartLines(t, db, "cart-1"); len(lines) != 1 || lines[0].Qty != 3 {
		t.Fatalf("cart must be untouched, got %+v", lines)
	}
}

func TestPlace_DuplicatePairMerged(t *testing.T) {
	db := memdbOrders(t)
	svc := newOrderService(db)

	// The same (product, stock) pair twice in one request folds into a
	// single order line with the summed quantity.
	order, items, err := svc.Place("u-1", []services.RequestedLine{
		{ProductID: "prod-a", StockID: "stock-a", Qty: 1},
		{ProductID: "prod-a", StockID: "stock-a", Qty: 2},
	}, "X")
	if err != nil {
		t.Fatal(err)
	}
	if order.Total != 300 {
		t.Fatalf("want total=300, got %v", order.Total)
	}
	if len(items) != 1 || items[0].Qty != 3 || items[0].Price != 300 {
		t.Fatalf("want one merged line qty=3 price=300, got %+v", items)
	}
	if got := stockQty(t, db, "stock-a"); got != 97 {
		t.Fatalf("want stock=97, got %d", got)
	}
	if lines := cartLines(t, db, "cart-1"); len(lines) != 0 {
		t.Fatalf("cart line of 3 should be consumed, got %+v", lines)
	}
}

func TestPlace_PriceSnapshot(t *testing.T) {
	db := memdbOrders(t)
	svc := newOrderService(db)

	order, _, err := svc.Place("u-1", []services.RequestedLine{
		{ProductID: "prod-a", StockID: "stock-a", Qty: 2},
	}, "X")
	if err != nil {
		t.Fatal(err)
	}

	// Catalog price changes must not rewrite the stored line price.
	db.MustExec(`UPDATE products SET price=999 WHERE id='prod-a'`)

	got, items, err := svc.Find(order.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Total != 200 {
		t.Fatalf("want total=200 after price change, got %v", got.Total)
	}
	if len(items) != 1 || items[0].Price != 200 {
		t.Fatalf("want stored line price 200, got %+v", items)
	}
}

func TestUpdateAddress_EditWindow(t *testing.T) {
	db := memdbOrders(t)
	svc := newOrderService(db)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.Now = func() time.Time { return base }

	order, _, err := svc.Place("u-1", []services.RequestedLine{
		{ProductID: "prod-a", StockID: "stock-a", Qty: 1},
	}, "old address")
	if err != nil {
		t.Fatal(err)
	}

	svc.Now = func() time.Time { return base.Add(9*time.Minute + 59*time.Second) }
	got, err := svc.UpdateAddress(order.ID, "new address")
	if err != nil {
		t.Fatalf("edit at 9m59s should pass: %v", err)
	}
	if got.Address != "new address" {
		t.Fatalf("address not updated: %+v", got)
	}

	svc.Now = func() time.Time { return base.Add(10*time.Minute + 1*time.Second) }
	if _, err := svc.UpdateAddress(order.ID, "too late"); !errors.Is(err, domain.ErrEditWindowExpired) {
		t.Fatalf("want ErrEditWindowExpired at 10m01s, got %v", err)
	}

	// The failed edit must not change anything.
	final, err := svc.Orders.Header(order.ID)
	if err != nil {
		t.Fatal(err)
	}
	if final.Address != "new address" {
		t.Fatalf("late edit leaked through: %+v", final)
	}
}

func TestUpdateStatus_StateMachine(t *testing.T) {
	db := memdbOrders(t)
	svc := newOrderService(db)

	order, _, err := svc.Place("u-1", []services.RequestedLine{
		{ProductID: "prod-a", StockID: "stock-a", Qty: 1},
	}, "X")
	if err != nil {
		t.Fatal(err)
	}

	got, err := svc.UpdateStatus(order.ID, domain.StatusSuccess)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != domain.StatusSuccess {
		t.Fatalf("want success, got %s", got.Status)
	}

	// success is terminal
	if _, err := svc.UpdateStatus(order.ID, domain.StatusFailed); !errors.Is(err, domain.ErrStatusTransition) {
		t.Fatalf("want ErrStatusTransition from success, got %v", err)
	}
	if _, err := svc.UpdateStatus(order.ID, "shipped"); !errors.Is(err, domain.ErrStatusTransition) {
		t.Fatalf("unknown status must be rejected, got %v", err)
	}

	var nf *domain.NotFoundError
	if _, err := svc.UpdateStatus("no-such-order", domain.StatusFailed); !errors.As(err, &nf) {
		t.Fatalf("want NotFound(order), got %v", err)
	}
}

func TestPlace_StockConservationAcrossPlacements(t *testing.T) {
	db := memdbOrders(t)
	svc := newOrderService(db)

	// Three placements against the same stock: 2+1+3 = 6 off 100.
	for _, qty := range []int{2, 1, 3} {
		if _, _, err := svc.Place("u-1", []services.RequestedLine{
			{ProductID: "prod-a", StockID: "stock-a", Qty: qty},
		}, "X"); err != nil {
			t.Fatal(err)
		}
	}
	if got := stockQty(t, db, "stock-a"); got != 94 {
		t.Fatalf("want stock=94 after 6 ordered, got %d", got)
	}
	if n := orderCount(t, db); n != 3 {
		t.Fatalf("want 3 orders, got %d", n)
	}
}
