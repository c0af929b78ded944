package services_test

import (
	"errors"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"storefront/internal/domain"
	"storefront/internal/repos"
	"storefront/internal/services"
)

func memdbCart(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := sqlx.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	schema := `
	CREATE TABLE products(id TEXT PRIMARY KEY, name TEXT, description TEXT, categories_json TEXT,
	  price NUMERIC, images_json TEXT, material TEXT, created_at TEXT, updated_at TEXT);
	CREATE TABLE stocks(id TEXT PRIMARY KEY, product_id TEXT, size TEXT, color TEXT,
	  qty INTEGER, image TEXT, weight NUMERIC, length NUMERIC, width NUMERIC, height NUMERIC,
	  created_at TEXT, updated_at TEXT);
	CREATE TABLE carts(id TEXT PRIMARY KEY, user_id TEXT UNIQUE NOT NULL, created_at TEXT, updated_at TEXT);
	CREATE TABLE cart_items(cart_id TEXT, product_id TEXT, stock_id TEXT, qty INTEGER, price NUMERIC,
	  created_at TEXT, updated_at TEXT, PRIMARY KEY(cart_id, product_id, stock_id));

	INSERT INTO products(id,name,price,created_at) VALUES ('tee','Tee',100,'now');
	INSERT INTO stocks(id,product_id,size,color,qty,created_at) VALUES ('tee-m','tee','M','Red',10,'now');
	`
	if _, err := db.Exec(schema); err != nil {
		t.Fatal(err)
	}
	return db
}

func newCartService(db *sqlx.DB) *services.CartService {
	return services.NewCartService(
		repos.NewUnitOfWork(db),
		repos.NewCartRepo(db),
		repos.NewProductRepo(db),
		repos.NewStockRepo(db),
	)
}

func TestCartAdd_MergesSamePair(t *testing.T) {
	db := memdbCart(t)
	svc := newCartService(db)

	if err := svc.AddLine("u-1", "tee", "tee-m", 2); err != nil {
		t.Fatal(err)
	}
	// Second add for the same (product, stock) merges, no duplicate line.
	if err := svc.AddLine("u-1", "tee", "tee-m", 3); err != nil {
		t.Fatal(err)
	}

	cv, err := svc.View("u-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(cv.Items) != 1 || cv.Items[0].Qty != 5 {
		t.Fatalf("want one merged line qty=5, got %+v", cv.Items)
	}
	if cv.Total != 500 {
		t.Fatalf("want total=500, got %v", cv.Total)
	}
}

func TestCartAdd_SnapshotsUnitPrice(t *testing.T) {
	db := memdbCart(t)
	svc := newCartService(db)

	if err := svc.AddLine("u-1", "tee", "tee-m", 1); err != nil {
		t.Fatal(err)
	}
	db.MustExec(`UPDATE products SET price=250 WHERE id='tee'`)

	cv, err := svc.View("u-1")
	if err != nil {
		t.Fatal(err)
	}
	if cv.Items[0].Price != 100 {
		t.Fatalf("cart keeps the price at add time, got %v", cv.Items[0].Price)
	}
}

func TestCartAdd_UnknownRefs(t *testing.T) {
	db := memdbCart(t)
	svc := newCartService(db)

	var nf *domain.NotFoundError
	if err := svc.AddLine("u-1", "ghost", "tee-m", 1); !errors.As(err, &nf) || nf.Entity != "product" {
		t.Fatalf("want NotFound(product), got %v", err)
	}
	if err := svc.AddLine("u-1", "tee", "ghost", 1); !errors.As(err, &nf) || nf.Entity != "stock" {
		t.Fatalf("want NotFound(stock), got %v", err)
	}
}

func TestCartRemove_DecrementAndDrop(t *testing.T) {
	db := memdbCart(t)
	svc := newCartService(db)

	if err := svc.AddLine("u-1", "tee", "tee-m", 5); err != nil {
		t.Fatal(err)
	}

	if err := svc.RemoveLine("u-1", "tee", "tee-m", 2); err != nil {
		t.Fatal(err)
	}
	cv, _ := svc.View("u-1")
	if len(cv.Items) != 1 || cv.Items[0].Qty != 3 {
		t.Fatalf("want qty=3 after partial remove, got %+v", cv.Items)
	}

	// Removing at least the remaining quantity drops the line.
	if err := svc.RemoveLine("u-1", "tee", "tee-m", 4); err != nil {
		t.Fatal(err)
	}
	cv, _ = svc.View("u-1")
	if len(cv.Items) != 0 {
		t.Fatalf("want empty cart, got %+v", cv.Items)
	}

	// Line is gone now.
	var nf *domain.NotFoundError
	if err := svc.RemoveLine("u-1", "tee", "tee-m", 1); !errors.As(err, &nf) || nf.Entity != "cart item" {
		t.Fatalf("want NotFound(cart item), got %v", err)
	}
}

func TestCartEnsure_OneRowPerUser(t *testing.T) {
	db := memdbCart(t)
	carts := repos.NewCartRepo(db)

	first, err := carts.EnsureCart("u-1")
	if err != nil {
		t.Fatal(err)
	}
	second, err := carts.EnsureCart("u-1")
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Fatalf("want the same cart id, got %q then %q", first, second)
	}
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM carts WHERE user_id='u-1'`); err != nil || n != 1 {
		t.Fatalf("want one cart row (n=%d, err=%v)", n, err)
	}
}

func TestCartRemove_NullCartTimestamp(t *testing.T) {
	db := memdbCart(t)
	// Rows written outside this codebase may leave created_at NULL; the
	// repo must still read them.
	db.MustExec(`INSERT INTO carts(id,user_id) VALUES ('c-bare','u-9')`)
	svc := newCartService(db)

	var nf *domain.NotFoundError
	if err := svc.RemoveLine("u-9", "tee", "tee-m", 1); !errors.As(err, &nf) || nf.Entity != "cart item" {
		t.Fatalf("want NotFound(cart item), got %v", err)
	}
}

func TestCartRemove_NoCart(t *testing.T) {
	db := memdbCart(t)
	svc := newCartService(db)

	var nf *domain.NotFoundError
	if err := svc.RemoveLine("u-nobody", "tee", "tee-m", 1); !errors.As(err, &nf) || nf.Entity != "cart" {
		t.Fatalf("want NotFound(cart), got %v", err)
	}
}
