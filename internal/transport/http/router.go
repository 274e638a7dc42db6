package httpserver

import (
	"github.com/labstack/echo/v4"

	"github.com/kaveesha/techstore/internal/handlers"
	"github.com/kaveesha/techstore/internal/middleware/csrf"
	"github.com/kaveesha/techstore/internal/service/token"
)

type Deps struct {
	AuthHandler    *handlers.AuthHandler
	ProductHandler *handlers.ProductHandler
	CartHandler    *handlers.CartHandler
	AdminHandler   *handlers.AdminHandler
	SearchHandler  *handlers.SearchHandler
	TokenService   *token.Service
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	v1 := e.Group("/api/v1")

	v1.POST("/register", d.AuthHandler.Register)
	v1.POST("/login", d.AuthHandler.Login)
	v1.POST("/logout", d.AuthHandler.Logout)

	products := v1.Group("/products")
	products.GET("", d.ProductHandler.GetProducts)
	products.GET("/:id", d.ProductHandler.GetProduct)

	if d.SearchHandler != nil {
		v1.GET("/search", d.SearchHandler.Search)
	}

	cart := v1.Group("/cart", d.TokenService.AutoRefreshMiddleware)
	cart.GET("", d.CartHandler.GetCart)
	cart.POST("", d.CartHandler.AddToCart)
	cart.DELETE("/:id", d.CartHandler.RemoveFromCart)
	cart.POST("/order", d.CartHandler.MakeOrder)

	admin := e.Group("/admin",
		d.TokenService.AutoRefreshMiddlewareAdmin,
		csrf.Middleware(csrf.DefaultConfig()),
	)

	admin.GET("/products", d.AdminHandler.ListProducts)
	admin.POST("/products", d.AdminHandler.CreateProduct)
	admin.PATCH("/products/:id", d.AdminHandler.PatchProduct)
	admin.DELETE("/products/:id", d.AdminHandler.DeleteProduct)

	admin.GET("/orders", d.AdminHandler.ListOrders)
	admin.POST("/orders/:id/accept", d.AdminHandler.AcceptOrder)
	admin.DELETE("/orders/:id", d.AdminHandler.DeleteOrder)

	admin.GET("/customers", d.AdminHandler.ListCustomers)
	admin.GET("/users", d.AdminHandler.ListUsers)
	admin.POST("/users/:id/toggle-type", d.AdminHandler.ToggleUserType)
}
