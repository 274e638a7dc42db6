package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/kaveesha/techstore/internal/catalog"
	"github.com/kaveesha/techstore/internal/logging"
	"github.com/kaveesha/techstore/internal/util"
)

type ProductHandler struct {
	Catalog *catalog.Service
}

// GetProducts is the storefront listing: category/subcategory/search filters,
// fixed-size pages, and the category sidebar in one payload.
func (h *ProductHandler) GetProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_products")

	q := catalog.Query{
		Category:    c.QueryParam("category"),
		Subcategory: c.QueryParam("subcategory"),
		Search:      c.QueryParam("search"),
		Page:        util.ParseIntDefault(c.QueryParam("page"), 1),
	}

	total, items, err := h.Catalog.ListProducts(ctx, q)
	if err != nil {
		l.Error("list_products_failed", "error", err)
		return errorResponse(c, http.StatusInternalServerError, "cannot list products")
	}

	categories, err := h.Catalog.CategoryIndex(ctx)
	if err != nil {
		l.Error("category_index_failed", "error", err)
		return errorResponse(c, http.StatusInternalServerError, "cannot build category index")
	}

	offset, limit := util.Calculate(q.Page, util.DefaultPageSize)
	page := q.Page
	if page < 1 {
		page = 1
	}

	return c.JSON(http.StatusOK, map[string]any{
		"data":       items,
		"categories": categories,
		"meta": map[string]any{
			"page":        page,
			"size":        limit,
			"total":       total,
			"total_pages": (total + int64(limit) - 1) / int64(limit),
			"has_prev":    page > 1,
			"has_next":    int64(offset+limit) < total,
		},
	})
}

func (h *ProductHandler) GetProduct(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, "invalid product id")
	}

	product, err := h.Catalog.GetProduct(c.Request().Context(), uint(id))
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return errorResponse(c, http.StatusNotFound, "product not found")
		}
		return errorResponse(c, http.StatusInternalServerError, "cannot get product")
	}

	return c.JSON(http.StatusOK, product)
}
