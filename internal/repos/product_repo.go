package repos

import (
	"time"

	"github.com/jmoiron/sqlx"

	"storefront/internal/domain"
)

type ProductRepo struct{ db *sqlx.DB }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

func (r *ProductRepo) Get(id string) (domain.Product, error) {
	return r.GetTx(r.db, id)
}

// GetTx reads a product through q, which may be the bare DB or an open
// unit of work.
func (r *ProductRepo) GetTx(q sqlx.Queryer, id string) (domain.Product, error) {
	var p domain.Product
	err := sqlx.Get(q, &p, `
	  SELECT id, name, COALESCE(description,'') AS description,
	         COALESCE(categories_json,'[]') AS categories_json,
	         price, COALESCE(images_json,'[]') AS images_json, COALESCE(material,'') AS material,
	         created_at, COALESCE(updated_at,'') AS updated_at
	  FROM products
	  WHERE id = ?
	`, id)
	return p, err
}

func (r *ProductRepo) List(name string, limit, offset int) ([]domain.Product, error) {
	where := `1=1`
	args := []any{}
	if name != "" {
		where += ` AND LOWER(name) LIKE ?`
		args = append(args, "%"+name+"%")
	}
	query := `
	  SELECT id, name, COALESCE(description,'') AS description,
	         COALESCE(categories_json,'[]') AS categories_json,
	         price, COALESCE(images_json,'[]') AS images_json, COALESCE(material,'') AS material,
	         created_at, COALESCE(updated_at,'') AS updated_at
	  FROM products
	  WHERE ` + where + `
	  ORDER BY created_at DESC
	  LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	var out []domain.Product
	err := r.db.Select(&out, query, args...)
	return out, err
}

func (r *ProductRepo) Create(p domain.Product) error {
	_, err := r.db.Exec(`
	  INSERT INTO products(id,name,description,categories_json,price,images_json,material,created_at)
	  VALUES(?,?,?,?,?,?,?,?)
	`, p.ID, p.Name, p.Description, p.CategoriesJSON, p.Price, p.ImagesJSON, p.Material,
		time.Now().UTC().Format(time.RFC3339))
	return err
}

func (r *ProductRepo) Update(p domain.Product) (bool, error) {
	res, err := r.db.Exec(`
	  UPDATE products
	  SET name=?, description=?, categories_json=?, price=?, images_json=?, material=?, updated_at=?
	  WHERE id=?
	`, p.Name, p.Description, p.CategoriesJSON, p.Price, p.ImagesJSON, p.Material,
		time.Now().UTC().Format(time.RFC3339), p.ID)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *ProductRepo) Delete(id string) (bool, error) {
	res, err := r.db.Exec(`DELETE FROM products WHERE id=?`, id)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}
