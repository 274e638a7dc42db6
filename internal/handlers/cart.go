package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/kaveesha/techstore/internal/models"
	"github.com/kaveesha/techstore/internal/mykafka"
	"github.com/kaveesha/techstore/internal/order"
	"github.com/kaveesha/techstore/internal/service/token"
	"github.com/kaveesha/techstore/internal/user"
)

type CartHandler struct {
	DB       *gorm.DB
	Users    *user.Service
	Orders   *order.Service
	Producer *mykafka.Producer
}

func (h *CartHandler) GetCart(c echo.Context) error {
	ident := token.IdentityFrom(c)

	var items []models.CartItem
	if err := h.DB.WithContext(c.Request().Context()).
		Where("user_id = ?", ident.UserID).
		Find(&items).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, "cannot load cart")
	}

	return c.JSON(http.StatusOK, items)
}

func (h *CartHandler) AddToCart(c echo.Context) error {
	ident := token.IdentityFrom(c)

	var req struct {
		ProductID uint `json:"product_id"`
		Quantity  uint `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, "invalid request body")
	}
	if req.Quantity < 1 {
		req.Quantity = 1
	}

	ctx := c.Request().Context()
	if err := h.DB.WithContext(ctx).First(&models.Product{}, req.ProductID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorResponse(c, http.StatusNotFound, "product not found")
		}
		return errorResponse(c, http.StatusInternalServerError, "db error")
	}

	var item models.CartItem
	err := h.DB.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", ident.UserID, req.ProductID).
		First(&item).Error
	switch {
	case err == nil:
		item.Quantity += req.Quantity
		if err := h.DB.WithContext(ctx).Save(&item).Error; err != nil {
			return errorResponse(c, http.StatusInternalServerError, "db error")
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		item = models.CartItem{
			UserID:    ident.UserID,
			ProductID: req.ProductID,
			Quantity:  req.Quantity,
		}
		if err := h.DB.WithContext(ctx).Create(&item).Error; err != nil {
			return errorResponse(c, http.StatusInternalServerError, "db error")
		}
	default:
		return errorResponse(c, http.StatusInternalServerError, "db error")
	}

	return c.JSON(http.StatusOK, item)
}

func (h *CartHandler) RemoveFromCart(c echo.Context) error {
	ident := token.IdentityFrom(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, "invalid cart item id")
	}

	if err := h.DB.WithContext(c.Request().Context()).
		Where("id = ? AND user_id = ?", id, ident.UserID).
		Delete(&models.CartItem{}).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, "db error")
	}

	return c.NoContent(http.StatusNoContent)
}

// MakeOrder is the checkout endpoint: it freezes the cart into an order
// snapshot and empties the cart.
func (h *CartHandler) MakeOrder(c echo.Context) error {
	ident := token.IdentityFrom(c)
	ctx := c.Request().Context()

	buyer, err := h.Users.GetUser(ctx, ident.UserID)
	if err != nil {
		return errorResponse(c, http.StatusUnauthorized, "unknown user")
	}

	var req order.CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, "invalid request body")
	}

	o, err := h.Orders.Checkout(ctx, buyer, req)
	if err != nil {
		if errors.Is(err, order.ErrValidation) {
			return errorResponse(c, http.StatusBadRequest, err.Error())
		}
		return errorResponse(c, http.StatusInternalServerError, "checkout failed")
	}

	publishEvent(c, h.Producer, "order_events", o.Reference, map[string]any{
		"type":    "order_created",
		"orderID": o.ID,
		"total":   o.TotalAmount,
	})

	return c.JSON(http.StatusCreated, o)
}
