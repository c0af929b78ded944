package services

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"storefront/internal/domain"
	"storefront/internal/repos"
)

type CartService struct {
	UoW    *repos.UnitOfWork
	Carts  *repos.CartRepo
	Prods  *repos.ProductRepo
	Stocks *repos.StockRepo
}

func NewCartService(uow *repos.UnitOfWork, carts *repos.CartRepo, prods *repos.ProductRepo, stocks *repos.StockRepo) *CartService {
	return &CartService{UoW: uow, Carts: carts, Prods: prods, Stocks: stocks}
}

// AddLine puts qty units of (product, stock) into the user's cart,
// creating the cart on first use and merging into an existing line for
// the same pair. The product's current unit price is snapshotted onto
// the line.
func (s *CartService) AddLine(userID, productID, stockID string, qty int) error {
	if qty < 1 {
		qty = 1
	}
	p, err := s.Prods.Get(productID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &domain.NotFoundError{Entity: "product", Ref: productID}
		}
		return err
	}
	if _, err := s.Stocks.Get(stockID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &domain.NotFoundError{Entity: "stock", Ref: stockID}
		}
		return err
	}
	cartID, err := s.Carts.EnsureCart(userID)
	if err != nil {
		return err
	}
	return s.Carts.UpsertItem(cartID, productID, stockID, qty, p.Price)
}

// RemoveLine subtracts qty from the matching line and drops the line
// once it reaches zero. The cart row itself stays, even empty.
func (s *CartService) RemoveLine(userID, productID, stockID string, qty int) error {
	if qty < 1 {
		qty = 1
	}
	return s.UoW.Do(func(tx sqlx.Ext) error {
		cart, err := s.Carts.ByUserTx(tx, userID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return &domain.NotFoundError{Entity: "cart", Ref: userID}
			}
			return err
		}
		have, err := s.Carts.ItemQtyTx(tx, cart.ID, productID, stockID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return &domain.NotFoundError{Entity: "cart item", Ref: productID}
			}
			return err
		}
		left := have - qty
		if left <= 0 {
			return s.Carts.DeleteItemTx(tx, cart.ID, productID, stockID)
		}
		return s.Carts.SetItemQtyTx(tx, cart.ID, productID, stockID, left)
	})
}

type CartView struct {
	Items []repos.CartLineView `json:"items"`
	Total float64              `json:"total"`
}

func (s *CartService) View(userID string) (CartView, error) {
	cartID, err := s.Carts.EnsureCart(userID)
	if err != nil {
		return CartView{}, err
	}
	items, total, err := s.Carts.View(cartID)
	if err != nil {
		return CartView{}, err
	}
	return CartView{Items: items, Total: total}, nil
}
