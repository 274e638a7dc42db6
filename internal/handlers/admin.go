package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/kaveesha/techstore/internal/catalog"
	"github.com/kaveesha/techstore/internal/logging"
	"github.com/kaveesha/techstore/internal/models"
	"github.com/kaveesha/techstore/internal/mykafka"
	"github.com/kaveesha/techstore/internal/order"
	"github.com/kaveesha/techstore/internal/service/token"
	"github.com/kaveesha/techstore/internal/user"
	"github.com/kaveesha/techstore/internal/util"
)

// AdminHandler serves the back-office. Every route here sits behind the admin
// auto-refresh middleware; the state transitions additionally hand the acting
// identity to the service layer, which re-checks the role itself.
type AdminHandler struct {
	Catalog  *catalog.Service
	Orders   *order.Service
	Users    *user.Service
	Producer *mykafka.Producer
}

func pathID(c echo.Context) (uint, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		return 0, false
	}
	return uint(id), true
}

// --- products ---

func (h *AdminHandler) ListProducts(c echo.Context) error {
	ctx := c.Request().Context()

	q := catalog.Query{Page: util.ParseIntDefault(c.QueryParam("page"), 1)}
	total, items, err := h.Catalog.ListProducts(ctx, q)
	if err != nil {
		return errorResponse(c, http.StatusInternalServerError, "cannot list products")
	}

	return c.JSON(http.StatusOK, map[string]any{"data": items, "total": total})
}

func (h *AdminHandler) CreateProduct(c echo.Context) error {
	ident := token.IdentityFrom(c)

	var p models.Product
	if err := c.Bind(&p); err != nil {
		return errorResponse(c, http.StatusBadRequest, "invalid request body")
	}
	p.ID = 0

	if err := h.Catalog.CreateProduct(c.Request().Context(), ident, &p); err != nil {
		if errors.Is(err, catalog.ErrValidation) {
			return errorResponse(c, http.StatusBadRequest, err.Error())
		}
		if errors.Is(err, catalog.ErrForbidden) {
			return errorResponse(c, http.StatusForbidden, "admin role required")
		}
		return errorResponse(c, http.StatusInternalServerError, "cannot create product")
	}

	publishEvent(c, h.Producer, "product_events", strconv.Itoa(int(p.ID)), map[string]any{
		"type":      "product_created",
		"productID": p.ID,
		"name":      p.Name,
	})

	return c.JSON(http.StatusCreated, p)
}

func (h *AdminHandler) PatchProduct(c echo.Context) error {
	ident := token.IdentityFrom(c)

	id, ok := pathID(c)
	if !ok {
		return errorResponse(c, http.StatusBadRequest, "invalid product id")
	}

	var req catalog.PatchProduct
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, "invalid request body")
	}

	p, err := h.Catalog.UpdateProduct(c.Request().Context(), ident, id, req)
	if err != nil {
		switch {
		case errors.Is(err, catalog.ErrNotFound):
			return errorResponse(c, http.StatusNotFound, "product not found")
		case errors.Is(err, catalog.ErrValidation):
			return errorResponse(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, catalog.ErrForbidden):
			return errorResponse(c, http.StatusForbidden, "admin role required")
		}
		return errorResponse(c, http.StatusInternalServerError, "cannot update product")
	}

	publishEvent(c, h.Producer, "product_events", strconv.Itoa(int(p.ID)), map[string]any{
		"type":      "product_updated",
		"productID": p.ID,
		"name":      p.Name,
	})

	return c.JSON(http.StatusOK, p)
}

func (h *AdminHandler) DeleteProduct(c echo.Context) error {
	ident := token.IdentityFrom(c)
	l := logging.FromContext(c.Request().Context()).With("handler", "admin.delete_product")

	id, ok := pathID(c)
	if !ok {
		return redirectWithFlash(c, "/admin/products", "error", "Invalid product id")
	}

	if err := h.Catalog.DeleteProduct(c.Request().Context(), ident, id); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return redirectWithFlash(c, "/admin/products", "error", "Product not found")
		}
		if errors.Is(err, catalog.ErrForbidden) {
			return echo.NewHTTPError(http.StatusForbidden, "admin role required")
		}
		l.Error("delete_product_failed", "id", id, "error", err)
		return redirectWithFlash(c, "/admin/products", "error", "Could not delete product")
	}

	publishEvent(c, h.Producer, "product_events", strconv.Itoa(int(id)), map[string]any{
		"type":      "product_deleted",
		"productID": id,
	})

	return redirectWithFlash(c, "/admin/products", "success", "Product deleted")
}

// --- orders ---

func (h *AdminHandler) ListOrders(c echo.Context) error {
	ident := token.IdentityFrom(c)

	rows, err := h.Orders.ListOrders(c.Request().Context(), ident)
	if err != nil {
		if errors.Is(err, order.ErrForbidden) {
			return echo.NewHTTPError(http.StatusForbidden, "admin role required")
		}
		return errorResponse(c, http.StatusInternalServerError, "cannot list orders")
	}

	return c.JSON(http.StatusOK, map[string]any{"data": rows})
}

func (h *AdminHandler) AcceptOrder(c echo.Context) error {
	ident := token.IdentityFrom(c)
	l := logging.FromContext(c.Request().Context()).With("handler", "admin.accept_order")

	id, ok := pathID(c)
	if !ok {
		return redirectWithFlash(c, "/admin/orders", "error", "Invalid order id")
	}

	if err := h.Orders.Accept(c.Request().Context(), ident, id); err != nil {
		if errors.Is(err, order.ErrNotFound) {
			return redirectWithFlash(c, "/admin/orders", "error", "Order not found")
		}
		if errors.Is(err, order.ErrForbidden) {
			return echo.NewHTTPError(http.StatusForbidden, "admin role required")
		}
		l.Error("accept_order_failed", "id", id, "error", err)
		return redirectWithFlash(c, "/admin/orders", "error", "Could not accept order")
	}

	publishEvent(c, h.Producer, "order_events", strconv.Itoa(int(id)), map[string]any{
		"type":    "order_accepted",
		"orderID": id,
	})

	return redirectWithFlash(c, "/admin/orders", "success", "Order accepted")
}

func (h *AdminHandler) DeleteOrder(c echo.Context) error {
	ident := token.IdentityFrom(c)
	l := logging.FromContext(c.Request().Context()).With("handler", "admin.delete_order")

	id, ok := pathID(c)
	if !ok {
		return redirectWithFlash(c, "/admin/orders", "error", "Invalid order id")
	}

	if err := h.Orders.Delete(c.Request().Context(), ident, id); err != nil {
		if errors.Is(err, order.ErrNotFound) {
			return redirectWithFlash(c, "/admin/orders", "error", "Order not found")
		}
		if errors.Is(err, order.ErrForbidden) {
			return echo.NewHTTPError(http.StatusForbidden, "admin role required")
		}
		l.Error("delete_order_failed", "id", id, "error", err)
		return redirectWithFlash(c, "/admin/orders", "error", "Could not delete order")
	}

	publishEvent(c, h.Producer, "order_events", strconv.Itoa(int(id)), map[string]any{
		"type":    "order_deleted",
		"orderID": id,
	})

	return redirectWithFlash(c, "/admin/orders", "success", "Order deleted")
}

// --- users ---

func (h *AdminHandler) ListCustomers(c echo.Context) error {
	ident := token.IdentityFrom(c)

	customers, err := h.Users.ListCustomers(c.Request().Context(), ident)
	if err != nil {
		if errors.Is(err, user.ErrForbidden) {
			return echo.NewHTTPError(http.StatusForbidden, "admin role required")
		}
		return errorResponse(c, http.StatusInternalServerError, "cannot list customers")
	}

	return c.JSON(http.StatusOK, map[string]any{"data": customers})
}

func (h *AdminHandler) ListUsers(c echo.Context) error {
	ident := token.IdentityFrom(c)

	users, err := h.Users.ListUsers(c.Request().Context(), ident)
	if err != nil {
		if errors.Is(err, user.ErrForbidden) {
			return echo.NewHTTPError(http.StatusForbidden, "admin role required")
		}
		return errorResponse(c, http.StatusInternalServerError, "cannot list users")
	}

	return c.JSON(http.StatusOK, map[string]any{"data": users})
}

func (h *AdminHandler) ToggleUserType(c echo.Context) error {
	ident := token.IdentityFrom(c)
	l := logging.FromContext(c.Request().Context()).With("handler", "admin.toggle_user_type")

	id, ok := pathID(c)
	if !ok {
		return redirectWithFlash(c, "/admin/users", "error", "Invalid user id")
	}

	newType, err := h.Users.ToggleType(c.Request().Context(), ident, id)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return redirectWithFlash(c, "/admin/users", "error", "User not found")
		}
		if errors.Is(err, user.ErrForbidden) {
			return echo.NewHTTPError(http.StatusForbidden, "admin role required")
		}
		l.Error("toggle_user_type_failed", "id", id, "error", err)
		return redirectWithFlash(c, "/admin/users", "error", "Could not change user type")
	}

	publishEvent(c, h.Producer, "user_events", strconv.Itoa(int(id)), map[string]any{
		"type":    "user_type_toggled",
		"userID":  id,
		"newType": newType,
	})

	return redirectWithFlash(c, "/admin/users", "success", "User is now "+newType)
}
