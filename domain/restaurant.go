package domain

import "time"

// Restaurant is the RESTAURANT role payload. Balance is a projection of the
// owning user's balance and is rewritten whenever that balance changes.
type Restaurant struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"column:user_id;uniqueIndex;not null" json:"user_id"`
	Name        string    `gorm:"column:name;not null" json:"name"`
	Street      string    `gorm:"column:street" json:"street"`
	BlockNumber string    `gorm:"column:block_number" json:"block_number"`
	City        string    `gorm:"column:city" json:"city"`
	PostalCode  string    `gorm:"column:postal_code" json:"postal_code"`
	IsOpen      bool      `gorm:"column:is_open;not null" json:"is_open"`
	Balance     float64   `gorm:"column:balance;type:numeric;not null;default:0" json:"balance"`
	Rank        int       `gorm:"column:rank;not null;default:0;index" json:"rank"`
	Rating      float64   `gorm:"column:rating;type:numeric;not null;default:0" json:"rating"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	MenuItems []MenuItem `gorm:"foreignKey:RestaurantID;constraint:OnDelete:RESTRICT" json:"menu_items,omitempty"`
	Orders    []Order    `gorm:"foreignKey:RestaurantID;constraint:OnDelete:RESTRICT" json:"-"`
}

func (Restaurant) TableName() string {
	return "restaurants"
}

type MenuItem struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	RestaurantID uint      `gorm:"column:restaurant_id;not null;index" json:"restaurant_id"`
	Name         string    `gorm:"column:name;not null" json:"name"`
	Category     string    `gorm:"column:category" json:"category"`
	Price        float64   `gorm:"column:price;type:numeric;not null" json:"price"`
	IsAvailable  bool      `gorm:"column:is_available;not null" json:"is_available"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (MenuItem) TableName() string {
	return "menu_items"
}
