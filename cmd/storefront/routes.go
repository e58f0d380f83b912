package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/MikeMC777/storefront/internal/docstore"
	"github.com/MikeMC777/storefront/internal/httpx"
	"github.com/MikeMC777/storefront/internal/order"
	"github.com/MikeMC777/storefront/internal/product"
	"github.com/MikeMC777/storefront/internal/storage"
	"github.com/MikeMC777/storefront/internal/user"
)

type deps struct {
	log      *zap.Logger
	store    docstore.Store
	users    *user.Service
	products *product.Service
	orders   *order.Service
	metrics  *httpx.Metrics
	limiter  *httpx.RateLimiter
	origins  []string
	// uploadDir is served under /uploads when set.
	uploadDir string
}

func newRouter(d deps) *gin.Engine {
	r := gin.New()
	r.Use(httpx.RequestID(), httpx.Logger(d.log))
	if d.metrics != nil {
		r.Use(d.metrics.Middleware())
	}
	r.Use(httpx.Recovery(d.log), corsMiddleware(d.origins), d.limiter.Middleware())

	r.GET("/healthz", healthzHandler(d.store))
	if d.metrics != nil {
		r.GET("/metrics", gin.WrapH(d.metrics.Handler()))
	}
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	if d.uploadDir != "" {
		r.Static(storage.PublicPrefix, d.uploadDir)
	}

	api := r.Group("/api")

	users := api.Group("/users")
	users.POST("/create-basic", createBasicUserHandler(d.users))
	users.POST("/register", registerUserHandler(d.users))
	users.GET("", listUsersHandler(d.users))
	users.GET("/:email", getUserHandler(d.users))
	users.PATCH("/:email", patchUserHandler(d.users))

	products := api.Group("/products")
	products.POST("", createProductHandler(d.products))
	products.GET("", listProductsHandler(d.products))
	products.DELETE("/:id", deleteProductHandler(d.products))

	orders := api.Group("/orders")
	orders.POST("", createOrderHandler(d.orders))
	orders.GET("", listOrdersHandler(d.orders))
	orders.GET("/:id", getOrderHandler(d.orders))
	orders.PATCH("/:id", updateOrderStatusHandler(d.orders))

	r.NoRoute(httpx.RouteNotFound(r))
	return r
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
		ExposeHeaders: []string{"X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}

// healthzHandler godoc
// @Summary  Liveness and store reachability
// @Tags     ops
// @Produce  json
// @Success  200  {object}  map[string]string
// @Failure  503  {object}  map[string]string
// @Router   /healthz [get]
func healthzHandler(store docstore.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := store.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
