package db

import (
	"github.com/abdoElHodaky/exchange-core/internal/users"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type UserRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewUserRepository(gdb *gorm.DB, logger *zap.Logger) *UserRepository {
	return &UserRepository{db: gdb, logger: logger}
}

func (r *UserRepository) SaveUser(u users.User) {
	row := User{ID: u.ID, Name: u.Name, Role: Role(u.Role), APIKey: u.APIKey}
	if err := r.db.Create(&row).Error; err != nil {
		r.logger.Warn("failed to persist user", zap.String("user_id", u.ID), zap.Error(err))
	}
}
