package domain

import (
	"time"

	"gorm.io/datatypes"
)

type BalanceReason string

const (
	ReasonAdminCredit BalanceReason = "ADMIN_CREDIT"
	ReasonOrderDebit  BalanceReason = "ORDER_DEBIT"
	ReasonOrderCredit BalanceReason = "ORDER_CREDIT"
	ReasonAdjustment  BalanceReason = "ADJUSTMENT"
)

// AdjustPolicy is the caller context of a balance change. Credits only move
// money in; settlements may move it out but never below zero.
type AdjustPolicy int

const (
	PolicyCredit AdjustPolicy = iota + 1
	PolicySettlement
)

// BalanceEntry journals one applied balance change.
type BalanceEntry struct {
	ID           uint          `gorm:"primaryKey" json:"id"`
	UserID       uint          `gorm:"column:user_id;not null;index" json:"user_id"`
	Delta        float64       `gorm:"column:delta;type:numeric;not null" json:"delta"`
	BalanceAfter float64       `gorm:"column:balance_after;type:numeric;not null" json:"balance_after"`
	Reason       BalanceReason `gorm:"column:reason;not null" json:"reason"`
	OrderID      *uint         `gorm:"column:order_id;index" json:"order_id,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
}

func (BalanceEntry) TableName() string {
	return "balance_entries"
}

// BalanceAudit records one correction made by the reconcile sweep.
type BalanceAudit struct {
	ID           uint              `gorm:"primaryKey" json:"id"`
	SweepID      string            `gorm:"column:sweep_id;not null;index" json:"sweep_id"`
	RestaurantID uint              `gorm:"column:restaurant_id;not null;index" json:"restaurant_id"`
	UserID       uint              `gorm:"column:user_id;not null" json:"user_id"`
	Before       float64           `gorm:"column:before_balance;type:numeric;not null" json:"before"`
	After        float64           `gorm:"column:after_balance;type:numeric;not null" json:"after"`
	Snapshot     datatypes.JSONMap `gorm:"column:snapshot" json:"snapshot"`
	CreatedAt    time.Time         `json:"created_at"`
}

func (BalanceAudit) TableName() string {
	return "balance_audits"
}

// BalanceDrift is a restaurant whose balance no longer matches its owner's.
type BalanceDrift struct {
	RestaurantID      uint    `gorm:"column:restaurant_id"`
	UserID            uint    `gorm:"column:user_id"`
	RestaurantBalance float64 `gorm:"column:restaurant_balance"`
	UserBalance       float64 `gorm:"column:user_balance"`
}
