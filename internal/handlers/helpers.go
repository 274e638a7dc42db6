package handlers

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/kaveesha/techstore/internal/logging"
	"github.com/kaveesha/techstore/internal/mykafka"
)

type Response struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func errorResponse(c echo.Context, code int, msg string) error {
	return c.JSON(code, Response{Status: "error", Message: msg})
}

// publishEvent fires a domain event without letting broker trouble fail the
// request. A nil producer (tests, local runs without Kafka) is a no-op.
func publishEvent(c echo.Context, producer *mykafka.Producer, topic, key string, event map[string]any) {
	if producer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := producer.PublishEvent(ctx, topic, key, event); err != nil {
		logging.FromContext(c.Request().Context()).Error("kafka publish failed", "topic", topic, "error", err)
	}
}

const flashCookie = "flash"

// redirectWithFlash sends the admin back to the listing they acted from, with
// the outcome message in a short-lived cookie for the next page render.
func redirectWithFlash(c echo.Context, target, status, message string) error {
	c.SetCookie(&http.Cookie{
		Name:     flashCookie,
		Value:    url.QueryEscape(status + ":" + message),
		Path:     "/",
		MaxAge:   60,
		HttpOnly: false,
		SameSite: http.SameSiteLaxMode,
	})
	return c.Redirect(http.StatusSeeOther, target)
}
