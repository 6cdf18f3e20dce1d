package domain

import (
	"fmt"
	"time"
)

type Role string

const (
	RoleCustomer   Role = "CUSTOMER"
	RoleRestaurant Role = "RESTAURANT"
	RoleAdmin      Role = "ADMIN"
)

func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleRestaurant, RoleAdmin:
		return true
	}
	return false
}

type Location struct {
	Street      string   `gorm:"column:street;not null" json:"street"`
	BlockNumber string   `gorm:"column:block_number" json:"block_number"`
	City        string   `gorm:"column:city;not null" json:"city"`
	PostalCode  string   `gorm:"column:postal_code;not null" json:"postal_code"`
	Latitude    *float64 `gorm:"column:latitude" json:"latitude,omitempty"`
	Longitude   *float64 `gorm:"column:longitude" json:"longitude,omitempty"`
}

// User is the base account row. Role is the discriminant and exactly one of
// Customer, Restaurant or Admin is the payload matching it. The payload rows
// live in their own tables but are only ever written together with the user.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	FullName  string    `gorm:"column:full_name;not null" json:"full_name"`
	Email     string    `gorm:"column:email;uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"column:password;not null" json:"-"`
	Phone     string    `gorm:"column:phone" json:"phone"`
	Role      Role      `gorm:"column:role;not null" json:"role"`
	Balance   float64   `gorm:"column:balance;type:numeric;not null;default:0" json:"balance"`
	Location  Location  `gorm:"embedded" json:"location"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Customer   *Customer   `gorm:"foreignKey:UserID;constraint:OnDelete:RESTRICT" json:"customer,omitempty"`
	Restaurant *Restaurant `gorm:"foreignKey:UserID;constraint:OnDelete:RESTRICT" json:"restaurant,omitempty"`
	Admin      *Admin      `gorm:"foreignKey:UserID;constraint:OnDelete:RESTRICT" json:"admin,omitempty"`
}

func (User) TableName() string {
	return "users"
}

type Customer struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UserID          uint      `gorm:"column:user_id;uniqueIndex;not null" json:"user_id"`
	DeliveryAddress string    `gorm:"column:delivery_address;not null" json:"delivery_address"`
	CreatedAt       time.Time `json:"created_at"`
}

func (Customer) TableName() string {
	return "customers"
}

type Admin struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"column:user_id;uniqueIndex;not null" json:"user_id"`
	Department string    `gorm:"column:department" json:"department"`
	CreatedAt  time.Time `json:"created_at"`
}

func (Admin) TableName() string {
	return "admins"
}

// Profile is the role specific payload of an account.
type Profile interface {
	role() Role
}

func (*Customer) role() Role   { return RoleCustomer }
func (*Restaurant) role() Role { return RoleRestaurant }
func (*Admin) role() Role      { return RoleAdmin }

// NewAccount attaches the profile to the user and fixes the user's role to
// the profile's variant. It rejects a profile that does not match role.
func NewAccount(user User, role Role, profile Profile) (User, error) {
	if !role.Valid() {
		return User{}, fmt.Errorf("%w: unknown role %q", ErrValidation, role)
	}
	if profile == nil || profile.role() != role {
		return User{}, fmt.Errorf("%w: %s account requires a %s profile", ErrValidation, role, role)
	}

	user.Role = role
	user.Customer, user.Restaurant, user.Admin = nil, nil, nil

	switch p := profile.(type) {
	case *Customer:
		if p == nil {
			return User{}, fmt.Errorf("%w: missing customer profile", ErrValidation)
		}
		user.Customer = p
	case *Restaurant:
		if p == nil {
			return User{}, fmt.Errorf("%w: missing restaurant profile", ErrValidation)
		}
		user.Restaurant = p
	case *Admin:
		if p == nil {
			return User{}, fmt.Errorf("%w: missing admin profile", ErrValidation)
		}
		user.Admin = p
	}

	return user, nil
}

// Profile returns the payload matching the user's role, or nil when the
// extension was not loaded.
func (u User) Profile() Profile {
	switch u.Role {
	case RoleCustomer:
		if u.Customer != nil {
			return u.Customer
		}
	case RoleRestaurant:
		if u.Restaurant != nil {
			return u.Restaurant
		}
	case RoleAdmin:
		if u.Admin != nil {
			return u.Admin
		}
	}
	return nil
}

// Actor is the authenticated caller as handed over by the auth layer.
type Actor struct {
	UserID uint
	Role   Role
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}
