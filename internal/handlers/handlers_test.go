package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/kaveesha/techstore/internal/catalog"
	"github.com/kaveesha/techstore/internal/models"
	"github.com/kaveesha/techstore/internal/order"
	"github.com/kaveesha/techstore/internal/user"
)

type testEnv struct {
	DB    *gorm.DB
	Admin *AdminHandler
	Prod  *ProductHandler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Product{}, &models.User{}, &models.Order{},
		&models.CartItem{}, &models.RefreshToken{},
	))

	catalogSvc := &catalog.Service{Repo: &catalog.GormRepo{DB: db}}
	orderSvc := &order.Service{Repo: &order.GormRepo{DB: db}}
	userSvc := &user.Service{Repo: &user.GormRepo{DB: db}}

	return &testEnv{
		DB:    db,
		Admin: &AdminHandler{Catalog: catalogSvc, Orders: orderSvc, Users: userSvc},
		Prod:  &ProductHandler{Catalog: catalogSvc},
	}
}

func (env *testEnv) newContext(t *testing.T, method, target string, body any) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	e := echo.New()
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return rec, c
}

func asAdmin(c echo.Context) {
	c.Set("userID", uint(1))
	c.Set("role", models.TypeAdmin)
}

func flashOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == "flash" {
			v, err := url.QueryUnescape(ck.Value)
			require.NoError(t, err)
			return v
		}
	}
	return ""
}

func strPtr(s string) *string { return &s }

func TestGetProducts_FiltersAndMeta(t *testing.T) {
	env := newTestEnv(t)
	env.DB.Create(&models.Product{Name: "Legion 5", Category: "Laptops", Subcategory: strPtr("Gaming"), Price: 420000})
	env.DB.Create(&models.Product{Name: "ThinkPad X1", Category: "Laptops", Subcategory: strPtr("Business"), Price: 350000})
	env.DB.Create(&models.Product{Name: "Galaxy S24", Category: "Phones", Price: 280000})

	rec, c := env.newContext(t, http.MethodGet, "/api/v1/products?category=Laptops&subcategory=Gaming", nil)
	require.NoError(t, env.Prod.GetProducts(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data       []models.Product        `json:"data"`
		Categories []catalog.CategoryGroup `json:"categories"`
		Meta       struct {
			Total int64 `json:"total"`
			Page  int   `json:"page"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "Legion 5", resp.Data[0].Name)
	assert.EqualValues(t, 1, resp.Meta.Total)

	// sidebar ships with the listing
	require.Len(t, resp.Categories, 2)
	assert.Equal(t, "Laptops", resp.Categories[0].Name)
	assert.ElementsMatch(t, []string{"Gaming", "Business"}, resp.Categories[0].Subcategories)
}

func TestGetProduct_NotFound(t *testing.T) {
	env := newTestEnv(t)

	rec, c := env.newContext(t, http.MethodGet, "/api/v1/products/7", nil)
	c.SetParamNames("id")
	c.SetParamValues("7")
	require.NoError(t, env.Prod.GetProduct(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAcceptOrder_RedirectsWithFlash(t *testing.T) {
	env := newTestEnv(t)
	o := models.Order{Reference: "r1", DeliveryAddress: "12 Galle Rd", Status: models.OrderPending}
	env.DB.Create(&o)

	rec, c := env.newContext(t, http.MethodPost, "/admin/orders/1/accept", nil)
	asAdmin(c)
	c.SetParamNames("id")
	c.SetParamValues(strconv.Itoa(int(o.ID)))

	require.NoError(t, env.Admin.AcceptOrder(c))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin/orders", rec.Header().Get(echo.HeaderLocation))
	assert.True(t, strings.HasPrefix(flashOf(t, rec), "success:"))

	var got models.Order
	require.NoError(t, env.DB.First(&got, o.ID).Error)
	assert.Equal(t, models.OrderAccepted, got.Status)
}

func TestAcceptOrder_MissingOrderFlashesError(t *testing.T) {
	env := newTestEnv(t)

	rec, c := env.newContext(t, http.MethodPost, "/admin/orders/42/accept", nil)
	asAdmin(c)
	c.SetParamNames("id")
	c.SetParamValues("42")

	require.NoError(t, env.Admin.AcceptOrder(c))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "error:Order not found", flashOf(t, rec))
}

func TestDeleteProduct_RedirectsWithFlash(t *testing.T) {
	env := newTestEnv(t)
	p := models.Product{Name: "Legion 5", Category: "Laptops"}
	env.DB.Create(&p)

	rec, c := env.newContext(t, http.MethodDelete, "/admin/products/1", nil)
	asAdmin(c)
	c.SetParamNames("id")
	c.SetParamValues(strconv.Itoa(int(p.ID)))

	require.NoError(t, env.Admin.DeleteProduct(c))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.True(t, strings.HasPrefix(flashOf(t, rec), "success:"))

	rec2, c2 := env.newContext(t, http.MethodDelete, "/admin/products/1", nil)
	asAdmin(c2)
	c2.SetParamNames("id")
	c2.SetParamValues(strconv.Itoa(int(p.ID)))

	require.NoError(t, env.Admin.DeleteProduct(c2))
	assert.Equal(t, "error:Product not found", flashOf(t, rec2))
}

func TestToggleUserType_RedirectsWithFlash(t *testing.T) {
	env := newTestEnv(t)
	u := models.User{Name: "Nimal", Email: "nimal@example.com", PasswordHash: "x", Type: models.TypeUser}
	env.DB.Create(&u)

	rec, c := env.newContext(t, http.MethodPost, "/admin/users/1/toggle-type", nil)
	asAdmin(c)
	c.SetParamNames("id")
	c.SetParamValues(strconv.Itoa(int(u.ID)))

	require.NoError(t, env.Admin.ToggleUserType(c))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "success:User is now admin", flashOf(t, rec))

	var got models.User
	require.NoError(t, env.DB.First(&got, u.ID).Error)
	assert.Equal(t, models.TypeAdmin, got.Type)
}

func TestAdminMutation_NonAdminGets403(t *testing.T) {
	env := newTestEnv(t)
	u := models.User{Name: "Nimal", Email: "nimal@example.com", PasswordHash: "x"}
	env.DB.Create(&u)

	_, c := env.newContext(t, http.MethodPost, "/admin/users/1/toggle-type", nil)
	c.Set("userID", uint(2))
	c.Set("role", models.TypeUser)
	c.SetParamNames("id")
	c.SetParamValues("1")

	err := env.Admin.ToggleUserType(c)
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusForbidden, httpErr.Code)
}

func TestListCustomers(t *testing.T) {
	env := newTestEnv(t)
	env.DB.Create(&models.User{Name: "Nimal", Email: "nimal@example.com", PasswordHash: "x", Type: models.TypeUser})
	env.DB.Create(&models.User{Name: "Boss", Email: "boss@example.com", PasswordHash: "x", Type: models.TypeAdmin})

	rec, c := env.newContext(t, http.MethodGet, "/admin/customers", nil)
	asAdmin(c)
	require.NoError(t, env.Admin.ListCustomers(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data []models.User `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "nimal@example.com", resp.Data[0].Email)
}
