package db

import (
	"github.com/abdoElHodaky/exchange-core/internal/catalog"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CatalogRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewCatalogRepository(gdb *gorm.DB, logger *zap.Logger) *CatalogRepository {
	return &CatalogRepository{db: gdb, logger: logger}
}

func (r *CatalogRepository) SaveInstrument(i catalog.Instrument) {
	row := Instrument{Ticker: i.Ticker, Name: i.Name}
	if err := r.db.Save(&row).Error; err != nil {
		r.logger.Warn("failed to persist instrument", zap.String("ticker", i.Ticker), zap.Error(err))
	}
}

func (r *CatalogRepository) DeleteInstrument(ticker string) {
	if err := r.db.Delete(&Instrument{}, "ticker = ?", ticker).Error; err != nil {
		r.logger.Warn("failed to delete instrument", zap.String("ticker", ticker), zap.Error(err))
	}
}
