// Package httpapi exposes the services over a gin router.
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"storefront-backend/internal/auth"
	"storefront-backend/internal/cart"
	"storefront-backend/internal/catalog"
	"storefront-backend/internal/metrics"
	"storefront-backend/internal/payment"
	"storefront-backend/internal/store"
)

type Deps struct {
	Auth    *auth.Service
	Catalog *catalog.Service
	Cart    *cart.Service
	Payment *payment.Service
	Store   store.Store

	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	Logger   *zap.Logger

	FrontendURL    string
	RequestTimeout time.Duration
}

type Server struct {
	auth    *auth.Service
	catalog *catalog.Service
	cart    *cart.Service
	payment *payment.Service
	store   store.Store
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func NewRouter(d Deps) *gin.Engine {
	s := &Server{
		auth:    d.Auth,
		catalog: d.Catalog,
		cart:    d.Cart,
		payment: d.Payment,
		store:   d.Store,
		metrics: d.Metrics,
		logger:  d.Logger,
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.metrics == nil {
		s.metrics = metrics.Discard()
	}
	gatherer := d.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	r := gin.New()
	r.Use(
		gin.Recovery(),
		s.requestContext(),
		s.accessLog(),
		s.instrument(),
		corsMiddleware(d.FrontendURL),
		withTimeout(d.RequestTimeout),
	)

	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, "Welcome to the E-commerce API") })
	r.GET("/healthz", s.healthz)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	r.GET("/verify-token", s.authenticate, s.verifyToken)

	users := r.Group("/api/users")
	{
		users.POST("/register", s.register)
		users.POST("/login", s.login)
		users.POST("/logout", s.logout)

		authed := users.Group("", s.authenticate)
		authed.POST("/user", s.getUser)
		authed.GET("/me", s.getUser)
		authed.GET("/verify", s.verifyUser)
		authed.PUT("/update-password", s.updatePassword)

		authed.GET("/cart/:userId", s.getCart)
		authed.POST("/cart/add", s.addToCart)
		authed.POST("/cart/increase", s.increaseQuantity)
		authed.POST("/cart/decrease", s.decreaseQuantity)
		authed.POST("/cart/remove/:userId", s.decreaseFromCart)
		authed.DELETE("/cart/remove/:productId", s.removeFromCart)
		authed.POST("/cart/buy", s.buy)
	}

	products := r.Group("/api/products")
	{
		products.GET("", s.listProducts)
		products.GET("/:id", s.getProduct)
		admin := products.Group("", s.authenticate, s.requireAdmin)
		admin.POST("", s.createProduct)
		admin.PUT("/:id", s.updateProduct)
		admin.DELETE("/:id", s.deleteProduct)
	}

	categories := r.Group("/api/category")
	{
		categories.GET("", s.listCategories)
		categories.GET("/:id", s.getCategory)
		admin := categories.Group("", s.authenticate, s.requireAdmin)
		admin.POST("", s.createCategory)
		admin.PUT("/:id", s.updateCategory)
		admin.DELETE("/:id", s.deleteCategory)
	}

	vendors := r.Group("/api/vendor")
	{
		vendors.GET("", s.listVendors)
		vendors.GET("/:id", s.getVendor)
		admin := vendors.Group("", s.authenticate, s.requireAdmin)
		admin.POST("", s.createVendor)
		admin.PUT("/:id", s.updateVendor)
		admin.DELETE("/:id", s.deleteVendor)
	}

	r.POST("/create-checkout-session", s.createCheckoutSession)
	r.POST("/verify-session", s.verifySession)

	return r
}

func (s *Server) healthz(c *gin.Context) {
	if err := s.store.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
