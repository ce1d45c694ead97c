// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"luxe/config"
	"luxe/internal/delivery/http/middleware"
	"luxe/internal/delivery/http/router/handler"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	AuthMiddleware *middleware.AuthMiddleware

	SessionHandler      *handler.SessionHandler
	ProfileHandler      *handler.ProfileHandler
	ProductHandler      *handler.ProductHandler
	CartHandler         *handler.CartHandler
	OrderHandler        *handler.OrderHandler
	CatalogAdminHandler *handler.CatalogAdminHandler
	EventsHandler       *handler.EventsHandler
	Config              *config.Config
}

// router holds all the handlers that need to be registered.
type router struct {
	authMiddleware      *middleware.AuthMiddleware
	sessionHandler      *handler.SessionHandler
	profileHandler      *handler.ProfileHandler
	productHandler      *handler.ProductHandler
	cartHandler         *handler.CartHandler
	orderHandler        *handler.OrderHandler
	catalogAdminHandler *handler.CatalogAdminHandler
	eventsHandler       *handler.EventsHandler
	config              *config.Config
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		authMiddleware:      params.AuthMiddleware,
		sessionHandler:      params.SessionHandler,
		profileHandler:      params.ProfileHandler,
		productHandler:      params.ProductHandler,
		cartHandler:         params.CartHandler,
		orderHandler:        params.OrderHandler,
		catalogAdminHandler: params.CatalogAdminHandler,
		eventsHandler:       params.EventsHandler,
		config:              params.Config,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	e.GET("/session", r.sessionHandler.GetSession)
	e.GET("/profile", r.profileHandler.GetProfile, r.authMiddleware.Authenticate)
	e.GET("/events", r.eventsHandler.Stream)
	e.Server.RegisterOnShutdown(r.eventsHandler.Close)

	authGroup := e.Group("/auth")
	{
		authGroup.POST("/register", r.sessionHandler.Register)
		authGroup.POST("/login", r.sessionHandler.Login)
		authGroup.POST("/logout", r.sessionHandler.Logout)
	}

	productGroup := e.Group("/products")
	{
		productGroup.GET("", r.productHandler.ListProducts)
		productGroup.GET("/categories", r.productHandler.ListCategories)
		productGroup.GET("/:id", r.productHandler.GetProduct)
		productGroup.POST("", r.productHandler.CreateProduct)
	}

	cartGroup := e.Group("/cart", r.authMiddleware.Authenticate)
	{
		cartGroup.GET("", r.cartHandler.GetCart)
		cartGroup.POST("/items", r.cartHandler.AddItem)
		cartGroup.PATCH("/items/:id", r.cartHandler.ChangeQuantity)
		cartGroup.DELETE("/items/:id", r.cartHandler.RemoveItem)
	}

	e.POST("/checkout", r.orderHandler.Checkout, r.authMiddleware.Authenticate)
	orderGroup := e.Group("/orders", r.authMiddleware.Authenticate)
	{
		orderGroup.GET("", r.orderHandler.ListOrders)
		orderGroup.GET("/:id/receipt", r.orderHandler.GetReceipt)
		orderGroup.POST("/receipts/verify", r.orderHandler.VerifyReceipt)
	}

	// Bulk catalog workflows, for local and demo environments
	if r.config.HTTP.AdminRoutes {
		adminGroup := e.Group("/admin/catalog")
		{
			adminGroup.POST("/seed", r.catalogAdminHandler.Seed)
			adminGroup.POST("/reset", r.catalogAdminHandler.Reset)
		}
	}
}
