package repos

import (
	"time"

	"github.com/jmoiron/sqlx"

	"storefront/internal/domain"
)

type StockRepo struct{ db *sqlx.DB }

func NewStockRepo(db *sqlx.DB) *StockRepo { return &StockRepo{db: db} }

const stockColumns = `
  id, product_id, COALESCE(size,'') AS size, COALESCE(color,'') AS color, qty,
  COALESCE(image,'') AS image, COALESCE(weight,0) AS weight, COALESCE(length,0) AS length,
  COALESCE(width,0) AS width, COALESCE(height,0) AS height,
  created_at, COALESCE(updated_at,'') AS updated_at`

func (r *StockRepo) Get(id string) (domain.Stock, error) {
	return r.GetTx(r.db, id)
}

func (r *StockRepo) GetTx(q sqlx.Queryer, id string) (domain.Stock, error) {
	var s domain.Stock
	err := sqlx.Get(q, &s, `SELECT `+stockColumns+` FROM stocks WHERE id = ?`, id)
	return s, err
}

// List returns stock rows, optionally filtered by product name.
func (r *StockRepo) List(productName string, limit, offset int) ([]domain.Stock, error) {
	where := `1=1`
	args := []any{}
	if productName != "" {
		where += ` AND s.product_id IN (SELECT id FROM products WHERE LOWER(name) LIKE ?)`
		args = append(args, "%"+productName+"%")
	}
	query := `
	  SELECT s.id, s.product_id, COALESCE(s.size,'') AS size, COALESCE(s.color,'') AS color, s.qty,
	         COALESCE(s.image,'') AS image, COALESCE(s.weight,0) AS weight, COALESCE(s.length,0) AS length,
	         COALESCE(s.width,0) AS width, COALESCE(s.height,0) AS height,
	         s.created_at, COALESCE(s.updated_at,'') AS updated_at
	  FROM stocks s
	  WHERE ` + where + `
	  ORDER BY s.created_at DESC
	  LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	var out []domain.Stock
	err := r.db.Select(&out, query, args...)
	return out, err
}

// DecrementTx atomically subtracts "by" units inside the current unit of
// work. The qty >= ? guard makes the read-modify-write safe against a
// concurrent placement racing on the same row: the loser sees zero rows
// affected instead of a stale quantity.
func (r *StockRepo) DecrementTx(q sqlx.Ext, id string, by int) (bool, error) {
	res, err := q.Exec(`
		UPDATE stocks
		SET qty = qty - ?, updated_at = ?
		WHERE id = ? AND qty >= ?
	`, by, time.Now().UTC().Format(time.RFC3339), id, by)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *StockRepo) Create(s domain.Stock) error {
	_, err := r.db.Exec(`
	  INSERT INTO stocks(id,product_id,size,color,qty,image,weight,length,width,height,created_at)
	  VALUES(?,?,?,?,?,?,?,?,?,?,?)
	`, s.ID, s.ProductID, s.Size, s.Color, s.Qty, s.Image, s.Weight, s.Length, s.Width, s.Height,
		time.Now().UTC().Format(time.RFC3339))
	return err
}

func (r *StockRepo) Update(s domain.Stock) (bool, error) {
	res, err := r.db.Exec(`
	  UPDATE stocks
	  SET size=?, color=?, qty=?, image=?, weight=?, length=?, width=?, height=?, updated_at=?
	  WHERE id=?
	`, s.Size, s.Color, s.Qty, s.Image, s.Weight, s.Length, s.Width, s.Height,
		time.Now().UTC().Format(time.RFC3339), s.ID)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *StockRepo) Delete(id string) (bool, error) {
	res, err := r.db.Exec(`DELETE FROM stocks WHERE id=?`, id)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}
