package domain

type Product struct {
	ID             string  `db:"id" json:"id"`
	Name           string  `db:"name" json:"name"`
	Description    string  `db:"description" json:"description"`
	CategoriesJSON string  `db:"categories_json" json:"categories"`
	Price          float64 `db:"price" json:"price"`
	ImagesJSON     string  `db:"images_json" json:"images"`
	Material       string  `db:"material" json:"material,omitempty"`
	CreatedAt      string  `db:"created_at" json:"createdAt"`
	UpdatedAt      string  `db:"updated_at" json:"updatedAt,omitempty"`
}

// Stock is one purchasable variant of a product (size/color/etc.).
// Qty never drops below zero: placement fails first and the schema
// CHECK backs it up.
type Stock struct {
	ID        string  `db:"id" json:"id"`
	ProductID string  `db:"product_id" json:"product"`
	Size      string  `db:"size" json:"size,omitempty"`
	Color     string  `db:"color" json:"color,omitempty"`
	Qty       int     `db:"qty" json:"qty"`
	Image     string  `db:"image" json:"image,omitempty"`
	Weight    float64 `db:"weight" json:"weight,omitempty"`
	Length    float64 `db:"length" json:"length,omitempty"`
	Width     float64 `db:"width" json:"width,omitempty"`
	Height    float64 `db:"height" json:"height,omitempty"`
	CreatedAt string  `db:"created_at" json:"createdAt"`
	UpdatedAt string  `db:"updated_at" json:"updatedAt,omitempty"`
}
