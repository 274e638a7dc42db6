package handlers

import (
	"net/http"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"

	"github.com/kaveesha/techstore/internal/service/search"
	"github.com/kaveesha/techstore/internal/util"
)

type SearchHandler struct {
	ES    *elasticsearch.Client
	Index string
}

func (h *SearchHandler) Search(c echo.Context) error {
	q := c.QueryParam("q")
	if q == "" {
		return errorResponse(c, http.StatusBadRequest, "query required")
	}

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	from, size := util.Calculate(page, util.DefaultPageSize)

	total, products, err := search.Search(c.Request().Context(), h.ES, h.Index, q, from, size)
	if err != nil {
		return errorResponse(c, http.StatusInternalServerError, "search failed")
	}

	return c.JSON(http.StatusOK, map[string]any{"total": total, "products": products})
}
