package http

import (
	"github.com/LakLN/Book-Garden-Server-v2/internal/adapter/http/middleware"
	"github.com/LakLN/Book-Garden-Server-v2/internal/logging"
	"github.com/LakLN/Book-Garden-Server-v2/internal/security"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(oh *OrderHandler, ph *PaymentHandler, th *TokenHandler,
	authz *middleware.Authz, gv *middleware.GatewayVerify) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.MetricsMiddleware())

	l := logging.New("http")
	r.Use(middleware.Logging(l))

	r.GET("/healthz", func(c *gin.Context) {
		logging.From(c).Info("health check")
		c.JSON(200, gin.H{"ok": true})
	})
	// Prometheus endpoint (scraped by Prometheus)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.POST("/v1/token", th.IssueToken)

	// Gateway callbacks authenticate with an HMAC over the payload, not a JWT.
	r.POST("/v1/payment/callback", gv.Verify(), ph.HandleCallback)

	v1 := r.Group("/v1")
	{
		v1.POST("/orders", authz.Require(security.WriteOrders), oh.CreateOrder)
		v1.GET("/orders", authz.Require(security.ReadOrders), oh.ListOrders)
		v1.GET("/orders/top-customers", authz.Require(security.ManageOrders), oh.TopCustomers)
		v1.GET("/orders/:id", authz.Require(security.ReadOrders), oh.GetOrderByID)
		v1.POST("/orders/:id/cancel", authz.Require(security.WriteOrders), oh.CancelOrder)
		v1.POST("/orders/:id/received", authz.Require(security.WriteOrders), oh.ConfirmReceived)
		v1.PUT("/orders/:id/status", authz.Require(security.ManageOrders), oh.UpdateStatus)
	}

	return r
}
