package handlers

import (
	"github.com/gofiber/fiber/v2"

	"storefront/internal/domain"
	applog "storefront/internal/log"
	"storefront/internal/services"
	"storefront/internal/validate"
)

type TransactionHandler struct {
	Orders *services.OrderService
}

type placeOrderReq struct {
	Items []struct {
		Product  string `json:"product"`
		Stock    string `json:"stock"`
		Quantity int    `json:"quantity"`
	} `json:"items"`
	Address string `json:"address"`
}

type orderResponse struct {
	domain.Order
	Items any `json:"items"`
}

// Place handles POST /transactions: the atomic cart-to-order step.
func (h *TransactionHandler) Place(c *fiber.Ctx) error {
	u := c.Locals("user").(*domain.User)

	var req placeOrderReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	address, ok := validate.Address(req.Address)
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "address"})
		return badRequest(c, "invalid address")
	}
	if len(req.Items) == 0 {
		return badRequest(c, "no items")
	}
	lines := make([]services.RequestedLine, 0, len(req.Items))
	for _, it := range req.Items {
		pid, ok := validate.ID(it.Product)
		if !ok {
			return badRequest(c, "invalid product id")
		}
		sid, ok := validate.ID(it.Stock)
		if !ok {
			return badRequest(c, "invalid stock id")
		}
		lines = append(lines, services.RequestedLine{
			ProductID: pid,
			StockID:   sid,
			Qty:       validate.Qty(it.Quantity),
		})
	}

	order, items, err := h.Orders.Place(u.ID, lines, address)
	if err != nil {
		applog.Security(c, "order.place.fail", map[string]any{"user": u.ID, "error": err.Error()})
		return fail(c, "order.place.fail", err)
	}
	applog.Audit(c, "order.place", map[string]any{"order_id": order.ID, "total": order.Total})
	return data(c, fiber.StatusCreated, orderResponse{Order: order, Items: items})
}

// View returns one order joined against the catalog. Only the owner or
// an admin may see it; anyone else gets the same 404 a missing order
// would.
func (h *TransactionHandler) View(c *fiber.Ctx) error {
	u := c.Locals("user").(*domain.User)
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "order not found"})
	}

	o, items, err := h.Orders.Find(id)
	if err != nil {
		return fail(c, "order.get.fail", err)
	}
	if o.UserID != u.ID && u.Role != "ADMIN" {
		applog.Security(c, "access.denied.order", map[string]any{"order_id": id})
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "order not found"})
	}
	return data(c, fiber.StatusOK, orderResponse{Order: o, Items: items})
}

// List returns the caller's orders; admins see the latest across all
// users.
func (h *TransactionHandler) List(c *fiber.Ctx) error {
	u := c.Locals("user").(*domain.User)

	var (
		orders []domain.Order
		err    error
	)
	if u.Role == "ADMIN" {
		orders, err = h.Orders.ListLatest(c.QueryInt("limit", 100))
	} else {
		orders, err = h.Orders.ListByUser(u.ID)
	}
	if err != nil {
		return fail(c, "order.list.fail", err)
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	return data(c, fiber.StatusOK, orders)
}

type updateAddressReq struct {
	Address string `json:"address"`
}

// UpdateAddress handles PATCH /transactions/:id within the edit window.
func (h *TransactionHandler) UpdateAddress(c *fiber.Ctx) error {
	u := c.Locals("user").(*domain.User)
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "order not found"})
	}
	var req updateAddressReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	address, ok := validate.Address(req.Address)
	if !ok {
		return badRequest(c, "invalid address")
	}

	// Ownership first, so strangers cannot probe the edit window.
	o, _, err := h.Orders.Find(id)
	if err != nil {
		return fail(c, "order.update.fail", err)
	}
	if o.UserID != u.ID && u.Role != "ADMIN" {
		applog.Security(c, "access.denied.order", map[string]any{"order_id": id})
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "order not found"})
	}

	updated, err := h.Orders.UpdateAddress(id, address)
	if err != nil {
		return fail(c, "order.update.fail", err)
	}
	applog.Audit(c, "order.update.address", map[string]any{"order_id": id})
	return data(c, fiber.StatusOK, updated)
}

type updateStatusReq struct {
	Status string `json:"status"`
}

// UpdateStatus handles PATCH /transactions/:id/status (admin only,
// enforced by the route).
func (h *TransactionHandler) UpdateStatus(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "order not found"})
	}
	var req updateStatusReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	status, ok := validate.Status(req.Status)
	if !ok {
		return badRequest(c, "invalid status")
	}

	updated, err := h.Orders.UpdateStatus(id, status)
	if err != nil {
		return fail(c, "order.update.status.fail", err)
	}
	applog.Audit(c, "order.update.status", map[string]any{"order_id": id, "status": status})
	return data(c, fiber.StatusOK, updated)
}
