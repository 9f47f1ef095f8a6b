package httpserver

import (
	"errors"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront/internal/i18n"
)

type handlers struct {
	Deps
	logger *zap.Logger
}

// buildRouter wires routes for the API.
func buildRouter(logger *zap.Logger, deps Deps) (*gin.Engine, error) {
	if deps.Sessions == nil || deps.Catalog == nil || deps.Cart == nil || deps.Wishlist == nil ||
		deps.Checkout == nil || deps.Customers == nil || deps.Orders == nil || deps.Coupons == nil ||
		deps.Settings == nil {
		return nil, errors.New("httpserver: missing service dependency")
	}
	if deps.Messages == nil {
		bundle, err := i18n.Load()
		if err != nil {
			return nil, err
		}
		deps.Messages = bundle
	}

	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(requestLogger(logger), recovery(logger))
	if len(deps.CORSOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     deps.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept-Language", sessionHeader},
			ExposeHeaders:    []string{sessionHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	h := &handlers{Deps: deps, logger: logger}

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(deps.Ready, logger))

	api := router.Group("/", h.resolveSession())
	api.POST("/sessions", h.issueSession)
	api.GET("/products", h.listProducts)
	api.GET("/products/:id", h.getProduct)
	api.GET("/categories", h.listCategories)
	api.GET("/store", h.getStore)

	sess := api.Group("/", h.requireSession())
	sess.GET("/session", h.getSession)
	sess.PUT("/session/language", h.setLanguage)

	sess.GET("/cart", h.getCart)
	sess.POST("/cart", h.addToCart)
	sess.DELETE("/cart", h.clearCart)
	sess.DELETE("/cart/items/:productId", h.removeFromCart)

	sess.GET("/wishlist", h.getWishlist)
	sess.POST("/wishlist/:productId", h.toggleWishlist)

	sess.POST("/checkout/coupon", h.applyCoupon)
	sess.POST("/checkout", h.checkout)

	sess.POST("/auth/register", h.register)
	sess.POST("/auth/login", h.login)
	sess.POST("/auth/logout", h.logout)
	sess.GET("/auth/me", h.requireUser(), h.me)
	sess.GET("/me/orders", h.requireUser(), h.myOrders)

	if deps.Assistant != nil {
		sess.POST("/assistant", h.openChat)
		sess.GET("/assistant/messages", h.chatHistory)
		sess.POST("/assistant/messages", h.sendChat)
		sess.DELETE("/assistant", h.closeChat)
	}

	admin := sess.Group("/admin", h.requireUser(), h.requireAdmin())
	admin.GET("/products", h.adminListProducts)
	admin.POST("/products", h.createProduct)
	admin.PUT("/products/:id", h.updateProduct)
	admin.PUT("/products/:id/stock", h.setStock)
	admin.DELETE("/products/:id", h.requireConfirm(), h.deleteProduct)

	admin.POST("/categories", h.createCategory)
	admin.PUT("/categories/:id", h.updateCategory)
	admin.DELETE("/categories/:id", h.requireConfirm(), h.deleteCategory)

	admin.GET("/coupons", h.listCoupons)
	admin.POST("/coupons", h.createCoupon)
	admin.PUT("/coupons/:id", h.updateCoupon)
	admin.DELETE("/coupons/:id", h.requireConfirm(), h.deleteCoupon)

	admin.GET("/orders", h.listOrders)
	admin.GET("/orders/:id", h.getOrder)
	admin.PUT("/orders/:id/status", h.updateOrderStatus)
	admin.DELETE("/orders/:id", h.requireConfirm(), h.deleteOrder)

	admin.GET("/customers", h.listCustomers)
	admin.DELETE("/customers/:id", h.requireConfirm(), h.deleteCustomer)

	admin.GET("/metrics", h.metrics)

	admin.GET("/settings", h.getStore)
	admin.PUT("/settings", h.updateSettings)
	admin.POST("/settings/icon", h.uploadIcon)

	return router, nil
}
