// Package api wires the HTTP surface of spec §6 on top of gin,
// generalizing the teacher's router/middleware/handler split (grounded
// in its internal/api package) to the exchange's own routes, auth
// scheme and error taxonomy.
package api

import (
	"context"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginswagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/abdoElHodaky/exchange-core/docs"
	"github.com/abdoElHodaky/exchange-core/internal/catalog"
	"github.com/abdoElHodaky/exchange-core/internal/db"
	"github.com/abdoElHodaky/exchange-core/internal/engine"
	"github.com/abdoElHodaky/exchange-core/internal/ledger"
	"github.com/abdoElHodaky/exchange-core/internal/orderstore"
	"github.com/abdoElHodaky/exchange-core/internal/resilience"
	"github.com/abdoElHodaky/exchange-core/internal/tradelog"
	"github.com/abdoElHodaky/exchange-core/internal/users"
)

// Server holds every collaborator a handler may need. It has no
// behavior of its own beyond routing: validation and business rules
// live in the packages it wires together.
type Server struct {
	Users   *users.Registry
	Catalog *catalog.Catalog
	Engine  *engine.Engine
	Ledger  *ledger.Ledger
	Orders  *orderstore.Store
	Trades  *tradelog.Log
	Reads   *db.ReadProjections
	Limiter *resilience.EngineLimiter
	Logger  *zap.Logger
}

// NewRouter builds the gin engine with every route of spec §6 wired,
// plus CORS, an HTTP ingress rate limiter, and swagger docs — the
// ambient stack the teacher carries on top of its own domain routes.
func (s *Server) NewRouter(httpRateLimit string) (*gin.Engine, error) {
	registerValidators()

	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())
	r.Use(cors.Default())

	if httpRateLimit != "" {
		limiterMW, err := resilience.HTTPLimiter(httpRateLimit)
		if err != nil {
			return nil, err
		}
		r.Use(limiterMW)
	}

	r.GET("/swagger/*any", ginswagger.WrapHandler(swaggerfiles.Handler))

	v1 := r.Group("/api/v1")
	{
		public := v1.Group("/public")
		public.POST("/register", s.handleRegister)
		public.GET("/instrument", s.handleListInstruments)
		public.GET("/orderbook/:ticker", s.handleOrderbook)
		public.GET("/transactions/:ticker", s.handleTransactions)

		authed := v1.Group("")
		authed.Use(s.authenticate())
		authed.GET("/balance", s.handleBalance)
		authed.POST("/order", s.handleCreateOrder)
		authed.GET("/order", s.handleListOrders)
		authed.GET("/order/:id", s.handleGetOrder)
		authed.DELETE("/order/:id", s.handleCancelOrder)

		admin := v1.Group("/admin")
		admin.Use(s.authenticate(), s.requireAdmin())
		admin.POST("/instrument", s.handleCreateInstrument)
		admin.DELETE("/instrument/:ticker", s.handleDeleteInstrument)
		admin.POST("/balance/deposit", s.handleDeposit)
		admin.POST("/balance/withdraw", s.handleWithdraw)
		admin.DELETE("/user/:id", s.handleDeleteUser)
	}

	return r, nil
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.Logger.Info("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

// requestContext bounds how long a handler waits on the matching
// engine's mailbox (SPEC_FULL §2 component 12).
func requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), resilience.HTTPTimeout())
}
