package domain

import "time"

const (
	MinRatingScore = 1
	MaxRatingScore = 5
)

type Rating struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	OrderID   uint      `gorm:"column:order_id;not null;uniqueIndex:idx_ratings_order_user,priority:1" json:"order_id"`
	UserID    uint      `gorm:"column:user_id;not null;uniqueIndex:idx_ratings_order_user,priority:2;index" json:"user_id"`
	Score     int       `gorm:"column:score;not null" json:"score"`
	Comment   string    `gorm:"column:comment" json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (Rating) TableName() string {
	return "ratings"
}
