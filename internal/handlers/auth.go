package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/kaveesha/techstore/internal/hash"
	"github.com/kaveesha/techstore/internal/models"
	"github.com/kaveesha/techstore/internal/mykafka"
	"github.com/kaveesha/techstore/internal/service/token"
	"github.com/kaveesha/techstore/internal/user"
)

type AuthHandler struct {
	DB       *gorm.DB
	Users    *user.Service
	Tokens   *token.Service
	Producer *mykafka.Producer
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, "invalid request body")
	}
	if req.Email == "" || req.Password == "" {
		return errorResponse(c, http.StatusBadRequest, "email and password required")
	}

	if _, err := h.Users.Repo.FindByEmail(c.Request().Context(), req.Email); err == nil {
		return errorResponse(c, http.StatusConflict, "user already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return errorResponse(c, http.StatusInternalServerError, "db error")
	}

	passwordHash, err := hash.HashPassword(req.Password)
	if err != nil {
		return errorResponse(c, http.StatusInternalServerError, "could not hash password")
	}

	u := models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: passwordHash,
		Type:         models.TypeUser,
	}
	if err := h.Users.Repo.CreateUser(c.Request().Context(), &u); err != nil {
		return errorResponse(c, http.StatusInternalServerError, "could not create user")
	}

	publishEvent(c, h.Producer, "user_events", strconv.Itoa(int(u.ID)), map[string]any{
		"type":   "user_registered",
		"userID": u.ID,
		"email":  u.Email,
	})

	return c.JSON(http.StatusCreated, u)
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, "invalid request body")
	}

	u, err := h.Users.Repo.FindByEmail(c.Request().Context(), req.Email)
	if err != nil || !hash.CheckPassword(u.PasswordHash, req.Password) {
		return errorResponse(c, http.StatusUnauthorized, "invalid credentials")
	}

	accessToken, err := token.SignAccessToken(u.ID, u.Type, h.Tokens.JWTSecret)
	if err != nil {
		return errorResponse(c, http.StatusInternalServerError, "could not create access token")
	}
	refreshToken, err := token.SignRefreshToken(u.ID, u.Type, h.Tokens.RefreshSecret)
	if err != nil {
		return errorResponse(c, http.StatusInternalServerError, "could not create refresh token")
	}
	if err := token.SaveRefreshToken(h.DB, refreshToken, u.ID, u.Type); err != nil {
		return errorResponse(c, http.StatusInternalServerError, "could not save refresh token")
	}

	c.SetCookie(token.CreateCookie("accessToken", accessToken, "/", time.Now().Add(token.AccessTTL)))
	c.SetCookie(token.CreateCookie("refreshToken", refreshToken, "/", time.Now().Add(token.RefreshTTL)))

	return c.JSON(http.StatusOK, u)
}

func (h *AuthHandler) Logout(c echo.Context) error {
	if ck, err := c.Cookie("refreshToken"); err == nil {
		if err := h.Tokens.RevokeRefresh(ck.Value); err != nil {
			return errorResponse(c, http.StatusInternalServerError, "could not revoke token")
		}
	}

	c.SetCookie(token.CreateCookie("accessToken", "", "/", time.Unix(0, 0)))
	c.SetCookie(token.CreateCookie("refreshToken", "", "/", time.Unix(0, 0)))

	return c.JSON(http.StatusOK, Response{Status: "ok", Message: "logged out"})
}
