package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/abdoElHodaky/exchange-core/internal/api"
	"github.com/abdoElHodaky/exchange-core/internal/catalog"
	"github.com/abdoElHodaky/exchange-core/internal/config"
	"github.com/abdoElHodaky/exchange-core/internal/db"
	"github.com/abdoElHodaky/exchange-core/internal/engine"
	"github.com/abdoElHodaky/exchange-core/internal/events"
	"github.com/abdoElHodaky/exchange-core/internal/ledger"
	"github.com/abdoElHodaky/exchange-core/internal/metrics"
	"github.com/abdoElHodaky/exchange-core/internal/orderstore"
	"github.com/abdoElHodaky/exchange-core/internal/resilience"
	"github.com/abdoElHodaky/exchange-core/internal/snapshot"
	"github.com/abdoElHodaky/exchange-core/internal/tradelog"
	"github.com/abdoElHodaky/exchange-core/internal/users"
)

const appName = "exchange-core"

func main() {
	var (
		configPath = flag.String("config", "", "Path to configuration directory")
		version    = flag.Bool("version", false, "Show version information")
		adminNames = flag.String("admin", "admin", "Comma-separated names to bootstrap as ADMIN on registration")
	)
	flag.Parse()

	if *version {
		fmt.Println(appName)
		os.Exit(0)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	gdb, err := db.Connect(cfg.DSN(), logger)
	if err != nil {
		logger.Fatal("failed to connect to postgres", zap.Error(err))
	}
	sqlxDB, err := db.NewSqlx(gdb)
	if err != nil {
		logger.Fatal("failed to build sqlx handle", zap.Error(err))
	}

	balanceSink := db.NewBalanceSink(gdb, logger)
	orderRepo := db.NewOrderRepository(gdb, logger)
	tradeRepo := db.NewTradeRepository(gdb, logger)
	catalogRepo := db.NewCatalogRepository(gdb, logger)
	userRepo := db.NewUserRepository(gdb, logger)
	reads := db.NewReadProjections(sqlxDB)

	led := ledger.New(balanceSink)
	if err := warmLedger(led, balanceSink); err != nil {
		logger.Warn("failed to warm-load balances", zap.Error(err))
	}

	orders := orderstore.New(orderRepo)
	bus := events.New(logger)
	defer bus.Close()
	trades := tradelog.New(tradeRepo, bus)
	cat := catalog.New(catalogRepo)
	userRegistry := users.New(userRepo, users.WithAdminNames(splitNames(*adminNames)...))

	runCtx, runCancel := context.WithCancel(context.Background())
	defer runCancel()

	if err := bus.Subscribe(runCtx, auditTradeHandler(logger)); err != nil {
		logger.Warn("failed to subscribe audit handler to trade bus", zap.Error(err))
	}

	reg := prometheus.NewRegistry()
	metrics.MustRegister(reg)

	eng, err := engine.New(led, orders, trades, cat, logger, cfg.Engine.WorkerPoolSize, cfg.Engine.MailboxSize, time.Now)
	if err != nil {
		logger.Fatal("failed to build matching engine", zap.Error(err))
	}
	defer eng.Close()

	snapWriter := snapshot.NewWriter(cfg.Engine.SnapshotDir)
	go runSnapshotLoop(runCtx, eng, snapWriter, cfg.Engine.SnapshotInterval, logger)

	engineLimiter := resilience.NewEngineLimiter(cfg.RateLimit.OrdersPerSecondPerUser, int(cfg.RateLimit.OrdersPerSecondPerUser)+1)

	srv := &api.Server{
		Users:   userRegistry,
		Catalog: cat,
		Engine:  eng,
		Ledger:  led,
		Orders:  orders,
		Trades:  trades,
		Reads:   reads,
		Limiter: engineLimiter,
		Logger:  logger,
	}
	router, err := srv.NewRouter(fmt.Sprintf("%d-M", cfg.RateLimit.HTTPRequestsPerMinute))
	if err != nil {
		logger.Fatal("failed to build router", zap.Error(err))
	}

	httpServer := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	metricsServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Monitoring.PrometheusPort),
		Handler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	}

	go func() {
		logger.Info("starting http server", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	go func() {
		logger.Info("starting metrics server", zap.String("addr", metricsServer.Addr))
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	runCancel()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http server forced to shutdown", zap.Error(err))
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("metrics server forced to shutdown", zap.Error(err))
	}

	logger.Info("shutdown complete")
}

// warmLedger replays persisted balance rows into the in-memory ledger
// on startup, since the ledger itself holds no durable state.
func warmLedger(led *ledger.Ledger, sink *db.BalanceSink) error {
	rows, err := sink.LoadAll()
	if err != nil {
		return err
	}
	for _, row := range rows {
		if row.Available > 0 {
			_ = led.Deposit(row.UserID, row.Ticker, row.Available)
		}
		if row.Reserved > 0 {
			_ = led.Deposit(row.UserID, row.Ticker, row.Reserved)
			_ = led.Reserve(row.UserID, row.Ticker, row.Reserved)
		}
	}
	return nil
}

// auditTradeHandler returns a trade bus subscriber that logs every
// executed trade independently of the synchronous settlement path, the
// way the teacher's event bus consumers observe domain events without
// coupling the producer to them.
func auditTradeHandler(logger *zap.Logger) func(tradelog.Trade) {
	return func(t tradelog.Trade) {
		logger.Info("trade executed",
			zap.String("trade_id", t.ID),
			zap.String("ticker", t.Ticker),
			zap.String("buyer_id", t.BuyerID),
			zap.String("seller_id", t.SellerID),
			zap.Int64("amount", t.Amount),
			zap.Int64("price", t.Price),
		)
	}
}

// runSnapshotLoop periodically serializes every instrument that has
// seen activity, as a crash-recovery hint only: nothing reads the
// snapshots back, and the book is not rebuilt from them on restart.
func runSnapshotLoop(ctx context.Context, eng *engine.Engine, w *snapshot.Writer, interval time.Duration, logger *zap.Logger) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, t := range eng.Tickers() {
				if err := eng.WriteSnapshot(w, t); err != nil {
					logger.Warn("failed to write book snapshot", zap.String("ticker", t), zap.Error(err))
				}
			}
		}
	}
}

func splitNames(raw string) []string {
	var names []string
	for _, n := range strings.Split(raw, ",") {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}
	return names
}
