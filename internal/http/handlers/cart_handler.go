package handlers

import (
	"github.com/gofiber/fiber/v2"

	"storefront/internal/domain"
	applog "storefront/internal/log"
	"storefront/internal/services"
	"storefront/internal/validate"
)

type CartHandler struct {
	Cart *services.CartService
}

type cartLineReq struct {
	Product  string `json:"product"`
	Stock    string `json:"stock"`
	Quantity int    `json:"quantity"`
}

func (h *CartHandler) parseLine(c *fiber.Ctx) (cartLineReq, bool) {
	var req cartLineReq
	if err := c.BodyParser(&req); err != nil {
		return req, false
	}
	var ok bool
	if req.Product, ok = validate.ID(req.Product); !ok {
		return req, false
	}
	if req.Stock, ok = validate.ID(req.Stock); !ok {
		return req, false
	}
	req.Quantity = validate.Qty(req.Quantity)
	return req, true
}

// Add puts a (product, stock, quantity) line into the caller's cart.
func (h *CartHandler) Add(c *fiber.Ctx) error {
	u := c.Locals("user").(*domain.User)
	req, ok := h.parseLine(c)
	if !ok {
		return badRequest(c, "invalid cart line")
	}
	if err := h.Cart.AddLine(u.ID, req.Product, req.Stock, req.Quantity); err != nil {
		return fail(c, "cart.add.fail", err)
	}
	applog.Audit(c, "cart.add", map[string]any{"product": req.Product, "stock": req.Stock, "qty": req.Quantity})
	cv, err := h.Cart.View(u.ID)
	if err != nil {
		return fail(c, "cart.view.fail", err)
	}
	return data(c, fiber.StatusCreated, cv)
}

// Remove subtracts quantity from a line, dropping it at zero.
func (h *CartHandler) Remove(c *fiber.Ctx) error {
	u := c.Locals("user").(*domain.User)
	req, ok := h.parseLine(c)
	if !ok {
		return badRequest(c, "invalid cart line")
	}
	if err := h.Cart.RemoveLine(u.ID, req.Product, req.Stock, req.Quantity); err != nil {
		return fail(c, "cart.remove.fail", err)
	}
	applog.Audit(c, "cart.remove", map[string]any{"product": req.Product, "stock": req.Stock, "qty": req.Quantity})
	cv, err := h.Cart.View(u.ID)
	if err != nil {
		return fail(c, "cart.view.fail", err)
	}
	return data(c, fiber.StatusOK, cv)
}

func (h *CartHandler) View(c *fiber.Ctx) error {
	u := c.Locals("user").(*domain.User)
	cv, err := h.Cart.View(u.ID)
	if err != nil {
		return fail(c, "cart.view.fail", err)
	}
	return data(c, fiber.StatusOK, cv)
}
