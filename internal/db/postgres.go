package db

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Connect opens a gorm/postgres connection and runs AutoMigrate for
// every model in AllModels.
func Connect(dsn string, zapLogger *zap.Logger) (*gorm.DB, error) {
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("unwrap sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := gdb.AutoMigrate(AllModels()...); err != nil {
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}

	zapLogger.Info("connected to postgres")
	return gdb, nil
}

// NewSqlx wraps gdb's underlying *sql.DB in an *sqlx.DB, giving the
// read-projection path (internal/db/reads.go) a distinct raw-SQL
// query builder over the same connection pool.
func NewSqlx(gdb *gorm.DB) (*sqlx.DB, error) {
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("unwrap sql.DB: %w", err)
	}
	return sqlx.NewDb(sqlDB, "postgres"), nil
}

// Breaker wraps DB-touching closures with a circuit breaker so a
// struggling database fails writes fast instead of stalling the
// per-instrument worker; the repositories log those failures and do
// not return them to their callers.
type Breaker struct {
	cb *gobreaker.CircuitBreaker
}

// NewBreaker builds a breaker named for the subsystem it guards (e.g.
// "balance-sink-db", "order-store-db").
func NewBreaker(name string) *Breaker {
	return &Breaker{cb: gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Interval:    30 * time.Second,
		Timeout:     15 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.Requests >= 10 && float64(counts.TotalFailures)/float64(counts.Requests) >= 0.5
		},
	})}
}

// Run executes fn through the breaker.
func (b *Breaker) Run(fn func() error) error {
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, fn()
	})
	return err
}
