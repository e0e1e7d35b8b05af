package db

import (
	"github.com/abdoElHodaky/exchange-core/internal/tradelog"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TradeRepository persists tradelog.Trade rows.
type TradeRepository struct {
	db      *gorm.DB
	logger  *zap.Logger
	breaker *Breaker
}

func NewTradeRepository(gdb *gorm.DB, logger *zap.Logger) *TradeRepository {
	return &TradeRepository{db: gdb, logger: logger, breaker: NewBreaker("trade-log-db")}
}

func (r *TradeRepository) SaveTrade(t tradelog.Trade) {
	row := Trade{
		ID:        t.ID,
		Ticker:    t.Ticker,
		BuyerID:   t.BuyerID,
		SellerID:  t.SellerID,
		Amount:    t.Amount,
		Price:     t.Price,
		Timestamp: t.Timestamp,
	}
	err := r.breaker.Run(func() error {
		return r.db.Create(&row).Error
	})
	if err != nil {
		r.logger.Warn("failed to persist trade", zap.String("trade_id", t.ID), zap.Error(err))
	}
}
