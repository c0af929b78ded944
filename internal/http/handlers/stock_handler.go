package handlers

import (
	"github.com/gofiber/fiber/v2"

	"storefront/internal/domain"
	applog "storefront/internal/log"
	"storefront/internal/services"
	"storefront/internal/validate"
)

type StockHandler struct {
	Catalog *services.CatalogService
}

func (h *StockHandler) List(c *fiber.Ctx) error {
	name := c.Query("productName")
	page := c.QueryInt("page", 1)
	pageSize := c.QueryInt("pageSize", 12)
	out, err := h.Catalog.ListStocks(name, page, pageSize)
	if err != nil {
		return fail(c, "stocks.list.fail", err)
	}
	return data(c, fiber.StatusOK, out)
}

func (h *StockHandler) Detail(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "stock not found"})
	}
	st, err := h.Catalog.GetStock(id)
	if err != nil {
		return fail(c, "stocks.get.fail", err)
	}
	return data(c, fiber.StatusOK, st)
}

type stockReq struct {
	Product string  `json:"product"`
	Size    string  `json:"size"`
	Color   string  `json:"color"`
	Qty     int     `json:"stock"`
	Image   string  `json:"image"`
	Weight  float64 `json:"weight"`
	Length  float64 `json:"length"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
}

func (req *stockReq) toDomain(id string) (domain.Stock, bool) {
	pid, ok := validate.ID(req.Product)
	if !ok || req.Qty < 0 {
		return domain.Stock{}, false
	}
	return domain.Stock{
		ID:        id,
		ProductID: pid,
		Size:      req.Size,
		Color:     req.Color,
		Qty:       req.Qty,
		Image:     req.Image,
		Weight:    req.Weight,
		Length:    req.Length,
		Width:     req.Width,
		Height:    req.Height,
	}, true
}

func (h *StockHandler) Create(c *fiber.Ctx) error {
	var req stockReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	st, ok := req.toDomain("")
	if !ok {
		return badRequest(c, "invalid stock")
	}
	out, err := h.Catalog.CreateStock(st)
	if err != nil {
		return fail(c, "stocks.create.fail", err)
	}
	applog.Audit(c, "stocks.create", map[string]any{"stock": out.ID})
	return data(c, fiber.StatusCreated, out)
}

func (h *StockHandler) Update(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "invalid id")
	}
	var req stockReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	st, ok := req.toDomain(id)
	if !ok {
		return badRequest(c, "invalid stock")
	}
	out, err := h.Catalog.UpdateStock(st)
	if err != nil {
		return fail(c, "stocks.update.fail", err)
	}
	applog.Audit(c, "stocks.update", map[string]any{"stock": id, "qty": st.Qty})
	return data(c, fiber.StatusOK, out)
}

func (h *StockHandler) Delete(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "invalid id")
	}
	if err := h.Catalog.DeleteStock(id); err != nil {
		return fail(c, "stocks.delete.fail", err)
	}
	applog.Audit(c, "stocks.delete", map[string]any{"stock": id})
	return data(c, fiber.StatusOK, fiber.Map{"message": "Stock has been deleted"})
}
