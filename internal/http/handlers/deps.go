package handlers

import (
	"github.com/jmoiron/sqlx"

	"storefront/internal/repos"
	"storefront/internal/services"
)

type Deps struct {
	ProductHandler     *ProductHandler
	StockHandler       *StockHandler
	CartHandler        *CartHandler
	TransactionHandler *TransactionHandler
}

func NewDeps(db *sqlx.DB) *Deps {
	uow := repos.NewUnitOfWork(db)
	prodRepo := repos.NewProductRepo(db)
	stockRepo := repos.NewStockRepo(db)
	cartRepo := repos.NewCartRepo(db)
	orderRepo := repos.NewOrderRepo(db)

	catalogSvc := services.NewCatalogService(prodRepo, stockRepo)
	cartSvc := services.NewCartService(uow, cartRepo, prodRepo, stockRepo)
	orderSvc := services.NewOrderService(uow, prodRepo, stockRepo, cartRepo, orderRepo)

	return &Deps{
		ProductHandler:     &ProductHandler{Catalog: catalogSvc},
		StockHandler:       &StockHandler{Catalog: catalogSvc},
		CartHandler:        &CartHandler{Cart: cartSvc},
		TransactionHandler: &TransactionHandler{Orders: orderSvc},
	}
}
