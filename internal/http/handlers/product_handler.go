package handlers

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"

	"storefront/internal/domain"
	applog "storefront/internal/log"
	"storefront/internal/services"
	"storefront/internal/validate"
)

func marshalList(ss []string) string {
	if ss == nil {
		ss = []string{}
	}
	b, _ := json.Marshal(ss)
	return string(b)
}

type ProductHandler struct {
	Catalog *services.CatalogService
}

func (h *ProductHandler) List(c *fiber.Ctx) error {
	name := c.Query("productName")
	page := c.QueryInt("page", 1)
	pageSize := c.QueryInt("pageSize", 12)
	out, err := h.Catalog.ListProducts(name, page, pageSize)
	if err != nil {
		return fail(c, "products.list.fail", err)
	}
	return data(c, fiber.StatusOK, out)
}

func (h *ProductHandler) Detail(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "product"})
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "product not found"})
	}
	p, err := h.Catalog.GetProduct(id)
	if err != nil {
		return fail(c, "products.get.fail", err)
	}
	return data(c, fiber.StatusOK, p)
}

type productReq struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Categories  []string `json:"categories"`
	Price       float64  `json:"price"`
	Images      []string `json:"images"`
	Material    string   `json:"material"`
}

func (req *productReq) toDomain(id string) (domain.Product, bool) {
	name, ok := validate.Name(req.Name)
	if !ok || req.Price < 0 {
		return domain.Product{}, false
	}
	return domain.Product{
		ID:             id,
		Name:           name,
		Description:    req.Description,
		CategoriesJSON: marshalList(req.Categories),
		Price:          req.Price,
		ImagesJSON:     marshalList(req.Images),
		Material:       req.Material,
	}, true
}

func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var req productReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	p, ok := req.toDomain("")
	if !ok {
		return badRequest(c, "invalid product")
	}
	out, err := h.Catalog.CreateProduct(p)
	if err != nil {
		return fail(c, "products.create.fail", err)
	}
	applog.Audit(c, "products.create", map[string]any{"product": out.ID})
	return data(c, fiber.StatusCreated, out)
}

func (h *ProductHandler) Update(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "invalid id")
	}
	var req productReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	p, ok := req.toDomain(id)
	if !ok {
		return badRequest(c, "invalid product")
	}
	out, err := h.Catalog.UpdateProduct(p)
	if err != nil {
		return fail(c, "products.update.fail", err)
	}
	applog.Audit(c, "products.update", map[string]any{"product": id})
	return data(c, fiber.StatusOK, out)
}

func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "invalid id")
	}
	if err := h.Catalog.DeleteProduct(id); err != nil {
		return fail(c, "products.delete.fail", err)
	}
	applog.Audit(c, "products.delete", map[string]any{"product": id})
	return data(c, fiber.StatusOK, fiber.Map{"message": "Product has been deleted"})
}
