package domain

import "time"

type OrderStatus string

const (
	StatusPending        OrderStatus = "PENDING"
	StatusAccepted       OrderStatus = "ACCEPTED"
	StatusPreparing      OrderStatus = "PREPARING"
	StatusOutForDelivery OrderStatus = "OUT_FOR_DELIVERY"
	StatusDelivered      OrderStatus = "DELIVERED"
	StatusCancelled      OrderStatus = "CANCELLED"
)

func (s OrderStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

type Order struct {
	ID              uint        `gorm:"primaryKey" json:"id"`
	CustomerID      uint        `gorm:"column:customer_id;not null;index" json:"customer_id"`
	RestaurantID    uint        `gorm:"column:restaurant_id;not null;index" json:"restaurant_id"`
	Status          OrderStatus `gorm:"column:status;not null" json:"status"`
	TotalPrice      float64     `gorm:"column:total_price;type:numeric;not null" json:"total_price"`
	Settled         bool        `gorm:"column:settled;not null" json:"settled"`
	DeliveryAddress string      `gorm:"column:delivery_address" json:"delivery_address"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`

	Items         []OrderItem          `gorm:"foreignKey:OrderID;constraint:OnDelete:RESTRICT" json:"items,omitempty"`
	StatusHistory []OrderStatusHistory `gorm:"foreignKey:OrderID;constraint:OnDelete:RESTRICT" json:"status_history,omitempty"`
	Ratings       []Rating             `gorm:"foreignKey:OrderID;constraint:OnDelete:RESTRICT" json:"-"`
}

func (Order) TableName() string {
	return "orders"
}

// OrderItem keeps the unit price and name as they were when the order was
// placed, so later menu edits never reach historical orders.
type OrderItem struct {
	ID         uint    `gorm:"primaryKey" json:"id"`
	OrderID    uint    `gorm:"column:order_id;not null;index" json:"order_id"`
	MenuItemID uint    `gorm:"column:menu_item_id;not null" json:"menu_item_id"`
	Name       string  `gorm:"column:name" json:"name"`
	Quantity   int     `gorm:"column:quantity;not null" json:"quantity"`
	Price      float64 `gorm:"column:price;type:numeric;not null" json:"price"`
}

func (OrderItem) TableName() string {
	return "order_items"
}

func (i OrderItem) Subtotal() float64 {
	return float64(i.Quantity) * i.Price
}

type OrderStatusHistory struct {
	ID         uint        `gorm:"primaryKey" json:"id"`
	OrderID    uint        `gorm:"column:order_id;not null;index" json:"order_id"`
	FromStatus OrderStatus `gorm:"column:from_status" json:"from_status"`
	ToStatus   OrderStatus `gorm:"column:to_status;not null" json:"to_status"`
	ChangedBy  uint        `gorm:"column:changed_by" json:"changed_by"`
	CreatedAt  time.Time   `json:"created_at"`
}

func (OrderStatusHistory) TableName() string {
	return "order_status_history"
}

// LineItem is one requested (menu item, quantity) pair of a checkout.
type LineItem struct {
	MenuItemID uint `json:"menu_item_id" validate:"required"`
	Quantity   int  `json:"quantity" validate:"required,gt=0"`
}
