package models

import (
	"time"
)

const (
	TypeUser  = "user"
	TypeAdmin = "admin"
)

const (
	OrderPending  = "pending"
	OrderAccepted = "accepted"
)

const DefaultCurrency = "LKR"

type Product struct {
	ID          uint    `gorm:"primaryKey;autoIncrement"  json:"id"`
	Name        string  `gorm:"not null"                  json:"name"`
	Category    string  `gorm:"not null;index"            json:"category"`
	Subcategory *string `gorm:"index"                     json:"subcategory,omitempty"`
	Price       float64 `gorm:"not null"                  json:"price"`
	Currency    string  `gorm:"not null;default:LKR"      json:"currency"`
	Description string  `json:"description"`
	Image       string  `json:"image"`
	RAM         string  `gorm:"column:ram"                json:"ram,omitempty"`
	Storage     string  `json:"storage,omitempty"`
}

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string    `gorm:"not null"                 json:"name"`
	Email        string    `gorm:"unique;not null"          json:"email"`
	PasswordHash string    `gorm:"not null"                 json:"-"`
	Type         string    `gorm:"not null;default:user"    json:"type"`
	CreatedAt    time.Time `json:"created_at"`
}

// Order keeps a frozen copy of the purchased products in Products. Later
// product edits or deletions never touch the snapshot once the row is written.
type Order struct {
	ID              uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Reference       string    `gorm:"unique;not null"          json:"reference"`
	UserName        string    `json:"user_name,omitempty"`
	UserEmail       string    `gorm:"index"                    json:"user_email,omitempty"`
	CustomerName    string    `json:"customer_name,omitempty"`
	CustomerEmail   string    `json:"customer_email,omitempty"`
	CustomerPhone   string    `json:"customer_phone,omitempty"`
	DeliveryAddress string    `gorm:"not null"                 json:"delivery_address"`
	TotalAmount     float64   `gorm:"not null"                 json:"total_amount"`
	Currency        string    `gorm:"not null;default:LKR"     json:"currency"`
	Products        Snapshot  `gorm:"type:text"                json:"products"`
	Status          string    `gorm:"not null;default:pending" json:"status"`
	CreatedAt       time.Time `json:"created_at"`
}

type CartItem struct {
	ID        uint `gorm:"primaryKey"                  json:"id"`
	UserID    uint `gorm:"index;not null"              json:"user_id"`
	ProductID uint `gorm:"not null"                    json:"product_id"`
	Quantity  uint `gorm:"default:1;check:quantity>0"  json:"quantity"`
}

type RefreshToken struct {
	ID        uint   `gorm:"primaryKey"          json:"id"`
	Token     string `gorm:"unique;not null"     json:"token"`
	UserID    uint   `gorm:"index;not null"      json:"user_id"`
	Role      string `gorm:"not null"            json:"role"`
	ExpiresAt int64  `gorm:"not null"            json:"expires_at"`
	Revoked   bool   `gorm:"default:false"       json:"revoked"`
}

// Identity is the authenticated caller, passed explicitly into every guarded
// operation instead of being read back out of ambient request state.
type Identity struct {
	UserID uint
	Role   string
}

func (i Identity) IsAdmin() bool {
	return i.Role == TypeAdmin
}
