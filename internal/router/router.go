package router

import (
	"net/http"
	"slices"

	"github.com/Beliver-cell/Fantasy-luxe-store/internal/handlers"
	"github.com/Beliver-cell/Fantasy-luxe-store/internal/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Deps struct {
	Orders      *handlers.OrderHandler
	Verifier    middleware.TokenVerifier
	Limiter     *middleware.RateLimiter
	CORSOrigins []string
	Log         *zap.Logger
}

func Router(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(d.Log))
	r.Use(cors.New(corsConfig(d.CORSOrigins)))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})

	auth := middleware.AuthRequired(d.Verifier, d.Log)
	admin := middleware.AdminRequired()

	api := r.Group("/api")
	api.Use(auth)
	if d.Limiter != nil {
		api.Use(d.Limiter.Middleware())
	}

	order := api.Group("/order")
	{
		order.POST("/flutterwave", d.Orders.PlaceOrder)
		order.POST("/continue-payment", d.Orders.ContinuePayment)
		order.POST("/verifyFlutterwave", d.Orders.VerifyPayment)
		order.POST("/cancel-pending", d.Orders.CancelPending)
		order.POST("/userorders", d.Orders.UserOrders)

		order.POST("/list", admin, d.Orders.AllOrders)
		order.POST("/status", admin, d.Orders.UpdateStatus)
	}
	api.GET("/orders/:id", d.Orders.GetOrder)

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Authorization", "Content-Type", middleware.LegacyTokenHeader},
		ExposeHeaders: []string{"Content-Length"},
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if c.Writer.Status() >= http.StatusInternalServerError {
			log.Error("request failed",
				zap.String("method", c.Request.Method),
				zap.String("path", c.FullPath()),
				zap.Int("status", c.Writer.Status()))
		}
	}
}
