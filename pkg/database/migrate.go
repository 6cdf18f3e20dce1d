package database

import (
	"fmt"
	"myFoodHub/domain"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&domain.User{},
		&domain.Customer{},
		&domain.Admin{},
		&domain.Restaurant{},
		&domain.MenuItem{},
		&domain.Order{},
		&domain.OrderItem{},
		&domain.OrderStatusHistory{},
		&domain.Rating{},
		&domain.BalanceEntry{},
		&domain.BalanceAudit{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}

	return nil
}
