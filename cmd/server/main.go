package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/kaveesha/techstore/internal/catalog"
	"github.com/kaveesha/techstore/internal/config"
	"github.com/kaveesha/techstore/internal/es"
	"github.com/kaveesha/techstore/internal/handlers"
	"github.com/kaveesha/techstore/internal/logging"
	"github.com/kaveesha/techstore/internal/middleware/loggingmw"
	"github.com/kaveesha/techstore/internal/mykafka"
	"github.com/kaveesha/techstore/internal/order"
	"github.com/kaveesha/techstore/internal/service/token"
	httpserver "github.com/kaveesha/techstore/internal/transport/http"
	"github.com/kaveesha/techstore/internal/user"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(cfg.LOG_LEVEL)

	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("db init failed: %v", err)
	}

	var producer *mykafka.Producer
	if cfg.KAFKA_ADDRESS != "" {
		producer = mykafka.NewProducer([]string{cfg.KAFKA_ADDRESS})
	}

	var searchHandler *handlers.SearchHandler
	if cfg.ES_URL != "" {
		esClient, err := es.NewClient(cfg)
		if err != nil {
			log.Fatalf("elasticsearch init failed: %v", err)
		}
		searchHandler = &handlers.SearchHandler{ES: esClient, Index: cfg.ES_INDEX}
	}

	catalogSvc := &catalog.Service{Repo: &catalog.GormRepo{DB: db}}
	orderSvc := &order.Service{Repo: &order.GormRepo{DB: db}}
	userSvc := &user.Service{Repo: &user.GormRepo{DB: db}}
	tokenSvc := &token.Service{
		DB:            db,
		JWTSecret:     []byte(cfg.JWT_SECRET),
		RefreshSecret: []byte(cfg.REFRESH_SECRET),
	}

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID(), loggingmw.RequestLogger(logger))

	deps := httpserver.Deps{
		AuthHandler:    &handlers.AuthHandler{DB: db, Users: userSvc, Tokens: tokenSvc, Producer: producer},
		ProductHandler: &handlers.ProductHandler{Catalog: catalogSvc},
		CartHandler:    &handlers.CartHandler{DB: db, Users: userSvc, Orders: orderSvc, Producer: producer},
		AdminHandler:   &handlers.AdminHandler{Catalog: catalogSvc, Orders: orderSvc, Users: userSvc, Producer: producer},
		SearchHandler:  searchHandler,
		TokenService:   tokenSvc,
	}
	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         cfg.HTTP_ADDR,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	}

	if producer != nil {
		if err := producer.Close(); err != nil {
			log.Printf("kafka close error: %v", err)
		}
	}

	log.Println("shutdown complete")
}
