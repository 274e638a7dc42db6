package token

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/kaveesha/techstore/internal/models"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.RefreshToken{}))

	return &Service{
		DB:            db,
		JWTSecret:     []byte("test-jwt-secret"),
		RefreshSecret: []byte("test-refresh-secret"),
	}
}

func requestWithAccess(t *testing.T, svc *Service, userID uint, role string) echo.Context {
	t.Helper()

	access, err := SignAccessToken(userID, role, svc.JWTSecret)
	require.NoError(t, err)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "accessToken", Value: access})
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec)
}

func TestAdminMiddleware_AllowsAdmin(t *testing.T) {
	svc := newTestService(t)
	c := requestWithAccess(t, svc, 7, models.TypeAdmin)

	called := false
	err := svc.AutoRefreshMiddlewareAdmin(func(c echo.Context) error {
		called = true
		return nil
	})(c)
	require.NoError(t, err)
	assert.True(t, called)

	ident := IdentityFrom(c)
	assert.EqualValues(t, 7, ident.UserID)
	assert.True(t, ident.IsAdmin())
}

func TestAdminMiddleware_RejectsShopper(t *testing.T) {
	svc := newTestService(t)
	c := requestWithAccess(t, svc, 7, models.TypeUser)

	err := svc.AutoRefreshMiddlewareAdmin(func(c echo.Context) error { return nil })(c)
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusForbidden, httpErr.Code)
}

func TestMiddleware_RejectsAnonymous(t *testing.T) {
	svc := newTestService(t)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	err := svc.AutoRefreshMiddleware(func(c echo.Context) error { return nil })(c)
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
}

func TestRefreshRotation(t *testing.T) {
	svc := newTestService(t)

	refresh, err := SignRefreshToken(3, models.TypeUser, svc.RefreshSecret)
	require.NoError(t, err)
	require.NoError(t, SaveRefreshToken(svc.DB, refresh, 3, models.TypeUser))

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "refreshToken", Value: refresh})
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	newAccess, newRefresh, role, err := svc.CheckCookie(c)
	require.NoError(t, err)
	assert.NotEmpty(t, newAccess)
	assert.NotEmpty(t, newRefresh)
	assert.Equal(t, models.TypeUser, role)
	assert.NotEqual(t, refresh, newRefresh)
}

func TestRevokedRefreshRejected(t *testing.T) {
	svc := newTestService(t)

	refresh, err := SignRefreshToken(3, models.TypeUser, svc.RefreshSecret)
	require.NoError(t, err)
	require.NoError(t, SaveRefreshToken(svc.DB, refresh, 3, models.TypeUser))
	require.NoError(t, svc.RevokeRefresh(refresh))

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "refreshToken", Value: refresh})
	c := e.NewContext(req, httptest.NewRecorder())

	_, _, _, err = svc.CheckCookie(c)
	require.Error(t, err)
}

func TestExpiredStoredRefreshRejected(t *testing.T) {
	svc := newTestService(t)

	refresh, err := SignRefreshToken(3, models.TypeUser, svc.RefreshSecret)
	require.NoError(t, err)
	row := models.RefreshToken{
		Token:     refresh,
		UserID:    3,
		Role:      models.TypeUser,
		ExpiresAt: time.Now().Add(-time.Hour).Unix(),
	}
	require.NoError(t, svc.DB.Create(&row).Error)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "refreshToken", Value: refresh})
	c := e.NewContext(req, httptest.NewRecorder())

	_, _, _, err = svc.CheckCookie(c)
	require.Error(t, err)
}
