package db

import (
	"github.com/abdoElHodaky/exchange-core/internal/orderstore"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OrderRepository persists orderstore.Order rows. Grounded on the
// teacher's gorm order repository: a thin Save/Create wrapper that
// logs failures rather than propagating them to the matching path,
// since the in-memory store remains authoritative while the process
// is up.
type OrderRepository struct {
	db      *gorm.DB
	logger  *zap.Logger
	breaker *Breaker
}

func NewOrderRepository(gdb *gorm.DB, logger *zap.Logger) *OrderRepository {
	return &OrderRepository{db: gdb, logger: logger, breaker: NewBreaker("order-store-db")}
}

func (r *OrderRepository) SaveOrder(o orderstore.Order) {
	row := Order{
		ID:        o.ID,
		UserID:    o.UserID,
		Ticker:    o.Ticker,
		Kind:      OrderKind(o.Kind),
		Direction: Direction(o.Direction),
		Qty:       o.Qty,
		Price:     o.Price,
		Filled:    o.Filled,
		Status:    OrderStatus(o.Status),
		Timestamp: o.Timestamp,
	}
	err := r.breaker.Run(func() error {
		return r.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"status", "filled"}),
		}).Create(&row).Error
	})
	if err != nil {
		r.logger.Warn("failed to persist order", zap.String("order_id", o.ID), zap.Error(err))
	}
}
