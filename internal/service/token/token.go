package token

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/kaveesha/techstore/internal/models"
)

const (
	AccessTTL  = 15 * time.Minute
	RefreshTTL = 7 * 24 * time.Hour
)

type Service struct {
	DB            *gorm.DB
	JWTSecret     []byte
	RefreshSecret []byte
}

func CreateCookie(name, value, path string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		Expires:  expires,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	}
}

func SignAccessToken(userID uint, role string, secret []byte) (string, error) {
	claims := jwt.MapClaims{
		"sub":  userID,
		"role": role,
		"exp":  time.Now().Add(AccessTTL).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(secret)
}

func SignRefreshToken(userID uint, role string, secret []byte) (string, error) {
	claims := jwt.MapClaims{
		"sub":  userID,
		"role": role,
		"exp":  time.Now().Add(RefreshTTL).Unix(),
		"typ":  "refresh",
		"jti":  uuid.NewString(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(secret)
}

func SaveRefreshToken(db *gorm.DB, token string, userID uint, role string) error {
	row := models.RefreshToken{
		Token:     token,
		UserID:    userID,
		Role:      role,
		ExpiresAt: time.Now().Add(RefreshTTL).Unix(),
	}
	if err := db.Create(&row).Error; err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (s *Service) RevokeRefresh(raw string) error {
	if err := s.DB.Model(&models.RefreshToken{}).
		Where("token = ?", raw).
		Update("revoked", true).Error; err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (s *Service) validateRefresh(raw string) (jwt.MapClaims, error) {
	t, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signature method: %v", t.Header["alg"])
		}
		return s.RefreshSecret, nil
	})
	if err != nil || !t.Valid {
		return nil, fmt.Errorf("invalid refresh token: %w", err)
	}

	claims, ok := t.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("cannot parse claims")
	}
	if typ, ok := claims["typ"]; !ok || typ != "refresh" {
		return nil, errors.New("not a refresh token")
	}

	var stored models.RefreshToken
	if err := s.DB.Where("token = ?", raw).First(&stored).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("refresh token not found")
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if stored.Revoked {
		return nil, errors.New("refresh token revoked")
	}
	if time.Now().Unix() > stored.ExpiresAt {
		return nil, errors.New("refresh token expired")
	}

	return claims, nil
}

func (s *Service) rotate(raw string) (string, string, jwt.MapClaims, error) {
	claims, err := s.validateRefresh(raw)
	if err != nil {
		return "", "", nil, err
	}

	userID := uint(claims["sub"].(float64))
	role, _ := claims["role"].(string)

	newAccess, err := SignAccessToken(userID, role, s.JWTSecret)
	if err != nil {
		return "", "", nil, err
	}
	newRefresh, err := SignRefreshToken(userID, role, s.RefreshSecret)
	if err != nil {
		return "", "", nil, err
	}
	if err := SaveRefreshToken(s.DB, newRefresh, userID, role); err != nil {
		return "", "", nil, err
	}

	return newAccess, newRefresh, claims, nil
}

// CheckCookie validates the access cookie, falling back to refresh rotation
// when it is expired or missing. It returns the (possibly new) token pair and
// the caller's role; newRefresh is empty when no rotation happened.
func (s *Service) CheckCookie(c echo.Context) (string, string, string, error) {
	asCookie, err := c.Cookie("accessToken")
	if err == nil {
		token, perr := jwt.Parse(asCookie.Value, func(t *jwt.Token) (interface{}, error) {
			return s.JWTSecret, nil
		})
		if perr == nil && token.Valid {
			claims := token.Claims.(jwt.MapClaims)
			role, ok := claims["role"].(string)
			if !ok {
				return "", "", "", echo.NewHTTPError(http.StatusForbidden, "not enough rights")
			}
			setIdentity(c, claims)
			return asCookie.Value, "", role, nil
		}
		if !errors.Is(perr, jwt.ErrTokenExpired) {
			return "", "", "", echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
		}
	}

	rfCookie, err := c.Cookie("refreshToken")
	if err != nil {
		return "", "", "", echo.NewHTTPError(http.StatusUnauthorized, "login required")
	}
	newAccess, newRefresh, claims, err := s.rotate(rfCookie.Value)
	if err != nil {
		return "", "", "", echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}

	role, ok := claims["role"].(string)
	if !ok {
		return "", "", "", echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}
	setIdentity(c, claims)

	return newAccess, newRefresh, role, nil
}

// AutoRefreshMiddleware requires a signed-in caller and rotates the token
// pair when the access cookie has expired.
func (s *Service) AutoRefreshMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		newAccess, newRefresh, _, err := s.CheckCookie(c)
		if err != nil {
			return err
		}
		if newRefresh != "" {
			setTokenCookies(c, newAccess, newRefresh)
		}
		return next(c)
	}
}

// AutoRefreshMiddlewareAdmin additionally requires the admin role.
func (s *Service) AutoRefreshMiddlewareAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		newAccess, newRefresh, role, err := s.CheckCookie(c)
		if err != nil {
			return err
		}
		if role != models.TypeAdmin {
			return echo.NewHTTPError(http.StatusForbidden, "admin role required")
		}
		if newRefresh != "" {
			setTokenCookies(c, newAccess, newRefresh)
		}
		return next(c)
	}
}

func setTokenCookies(c echo.Context, access, refresh string) {
	c.SetCookie(CreateCookie("accessToken", access, "/", time.Now().Add(AccessTTL)))
	c.SetCookie(CreateCookie("refreshToken", refresh, "/", time.Now().Add(RefreshTTL)))
}

func setIdentity(c echo.Context, claims jwt.MapClaims) {
	sub, _ := claims["sub"].(float64)
	role, _ := claims["role"].(string)
	c.Set("userID", uint(sub))
	c.Set("role", role)
}

// IdentityFrom rebuilds the authenticated caller from the request context so
// handlers can hand it to services explicitly.
func IdentityFrom(c echo.Context) models.Identity {
	ident := models.Identity{}
	if v, ok := c.Get("userID").(uint); ok {
		ident.UserID = v
	}
	if v, ok := c.Get("role").(string); ok {
		ident.Role = v
	}
	return ident
}
