package db

import (
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BalanceSink persists ledger mutations to the balances table. Saves
// are fire-and-forget from the caller's perspective (spec's
// persistence backend is "not prescribed"); failures are logged, not
// propagated, since the in-memory ledger remains authoritative for
// the running process.
type BalanceSink struct {
	db      *gorm.DB
	logger  *zap.Logger
	breaker *Breaker
}

func NewBalanceSink(gdb *gorm.DB, logger *zap.Logger) *BalanceSink {
	return &BalanceSink{db: gdb, logger: logger, breaker: NewBreaker("balance-sink-db")}
}

func (s *BalanceSink) Save(userID, ticker string, available, reserved int64) {
	row := Balance{UserID: userID, Ticker: ticker, Available: available, Reserved: reserved, UpdatedAt: time.Now()}
	err := s.breaker.Run(func() error {
		return s.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "ticker"}},
			DoUpdates: clause.AssignmentColumns([]string{"available", "reserved", "updated_at"}),
		}).Create(&row).Error
	})
	if err != nil {
		s.logger.Warn("failed to persist balance", zap.String("user_id", userID), zap.String("ticker", ticker), zap.Error(err))
	}
}

// LoadAll reads every balance row, used to warm the in-memory ledger
// on startup.
func (s *BalanceSink) LoadAll() ([]Balance, error) {
	var rows []Balance
	if err := s.db.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
