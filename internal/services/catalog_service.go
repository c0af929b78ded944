package services

import (
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"storefront/internal/domain"
	"storefront/internal/repos"
)

type CatalogService struct {
	Prods  *repos.ProductRepo
	Stocks *repos.StockRepo
}

func NewCatalogService(prods *repos.ProductRepo, stocks *repos.StockRepo) *CatalogService {
	return &CatalogService{Prods: prods, Stocks: stocks}
}

func clampPage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 12
	}
	return pageSize, (page - 1) * pageSize
}

func (s *CatalogService) ListProducts(name string, page, pageSize int) ([]domain.Product, error) {
	limit, offset := clampPage(page, pageSize)
	return s.Prods.List(name, limit, offset)
}

func (s *CatalogService) GetProduct(id string) (domain.Product, error) {
	p, err := s.Prods.Get(id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, &domain.NotFoundError{Entity: "product", Ref: id}
	}
	return p, err
}

func (s *CatalogService) CreateProduct(p domain.Product) (domain.Product, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if err := s.Prods.Create(p); err != nil {
		return domain.Product{}, err
	}
	return s.Prods.Get(p.ID)
}

func (s *CatalogService) UpdateProduct(p domain.Product) (domain.Product, error) {
	ok, err := s.Prods.Update(p)
	if err != nil {
		return domain.Product{}, err
	}
	if !ok {
		return domain.Product{}, &domain.NotFoundError{Entity: "product", Ref: p.ID}
	}
	return s.Prods.Get(p.ID)
}

func (s *CatalogService) DeleteProduct(id string) error {
	ok, err := s.Prods.Delete(id)
	if err != nil {
		return err
	}
	if !ok {
		return &domain.NotFoundError{Entity: "product", Ref: id}
	}
	return nil
}

func (s *CatalogService) ListStocks(productName string, page, pageSize int) ([]domain.Stock, error) {
	limit, offset := clampPage(page, pageSize)
	return s.Stocks.List(productName, limit, offset)
}

func (s *CatalogService) GetStock(id string) (domain.Stock, error) {
	st, err := s.Stocks.Get(id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Stock{}, &domain.NotFoundError{Entity: "stock", Ref: id}
	}
	return st, err
}

func (s *CatalogService) CreateStock(st domain.Stock) (domain.Stock, error) {
	if _, err := s.GetProduct(st.ProductID); err != nil {
		return domain.Stock{}, err
	}
	if st.ID == "" {
		st.ID = uuid.NewString()
	}
	if err := s.Stocks.Create(st); err != nil {
		return domain.Stock{}, err
	}
	return s.Stocks.Get(st.ID)
}

func (s *CatalogService) UpdateStock(st domain.Stock) (domain.Stock, error) {
	ok, err := s.Stocks.Update(st)
	if err != nil {
		return domain.Stock{}, err
	}
	if !ok {
		return domain.Stock{}, &domain.NotFoundError{Entity: "stock", Ref: st.ID}
	}
	return s.Stocks.Get(st.ID)
}

func (s *CatalogService) DeleteStock(id string) error {
	ok, err := s.Stocks.Delete(id)
	if err != nil {
		return err
	}
	if !ok {
		return &domain.NotFoundError{Entity: "stock", Ref: id}
	}
	return nil
}
