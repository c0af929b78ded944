package services_test

import (
	"testing"

	"storefront/internal/repos"
	"storefront/internal/services"
)

func TestGetProduct_NullableColumns(t *testing.T) {
	db := memdbCart(t)
	// The fixture's product row leaves description/material NULL, as the
	// schema allows.
	svc := services.NewCatalogService(repos.NewProductRepo(db), repos.NewStockRepo(db))

	p, err := svc.GetProduct("tee")
	if err != nil {
		t.Fatal(err)
	}
	if p.Description != "" || p.Material != "" {
		t.Fatalf("want empty strings for NULL columns, got %+v", p)
	}

	out, err := svc.ListProducts("", 1, 12)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 1 {
		t.Fatalf("want one product, got %+v", out)
	}
}
