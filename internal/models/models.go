package models

import (
	"math"
	"time"
)

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"         json:"id"`
	Name         string    `gorm:"not null;default:''"              json:"name"`
	Surname      string    `gorm:"not null;default:''"              json:"surname"`
	Email        string    `gorm:"uniqueIndex;size:255;not null"    json:"email"`
	Address      string    `gorm:"not null;default:''"              json:"address"`
	PasswordHash string    `gorm:"not null"                         json:"-"`
	IsAdmin      bool      `gorm:"not null;default:false"           json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
}

type Product struct {
	ID          uint      `gorm:"primaryKey;autoIncrement"  json:"id"`
	Name        string    `gorm:"not null"                  json:"name"`
	Category    string    `gorm:"index;not null;default:''" json:"category"`
	Price       float64   `gorm:"not null;check:price>0"    json:"price"`
	Description string    `gorm:"not null;default:''"       json:"description"`
	Image       string    `gorm:"not null;default:''"       json:"image"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type CartItem struct {
	ID        uint `gorm:"primaryKey"                                   json:"id"`
	UserID    uint `gorm:"uniqueIndex:idx_cart_user_product;not null"   json:"user_id"`
	ProductID uint `gorm:"uniqueIndex:idx_cart_user_product;not null"   json:"product_id"`
	Quantity  uint `gorm:"not null;default:1;check:quantity>0"          json:"quantity"`
}

func (CartItem) TableName() string {
	return "cart"
}

// CartLine is a cart row joined with its product.
type CartLine struct {
	ID        uint    `json:"id"`
	ProductID uint    `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Image     string  `json:"image"`
	Quantity  uint    `json:"quantity"`
	LineTotal float64 `gorm:"-" json:"line_total"`
}

type Cart struct {
	Lines []CartLine `json:"lines"`
	Total float64    `json:"total"`
}

// Order is an immutable snapshot of one cart line at checkout time.
type Order struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      uint      `gorm:"index;not null"           json:"user_id"`
	Name        string    `gorm:"not null;default:''"      json:"name"`
	Surname     string    `gorm:"not null;default:''"      json:"surname"`
	Email       string    `gorm:"not null"                 json:"email"`
	Address     string    `gorm:"not null;default:''"      json:"address"`
	Phone       string    `gorm:"not null"                 json:"phone"`
	ProductName string    `gorm:"not null"                 json:"product_name"`
	UnitPrice   float64   `gorm:"not null"                 json:"unit_price"`
	Quantity    uint      `gorm:"not null"                 json:"quantity"`
	Total       float64   `gorm:"not null"                 json:"total"`
	CreatedAt   time.Time `json:"created_at"`
}

type AboutEntry struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Image     string    `gorm:"not null;default:''"      json:"image"`
	Body      string    `gorm:"type:text;not null"       json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

func (AboutEntry) TableName() string {
	return "about"
}

// RoundCents rounds a money amount to two decimals.
func RoundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

func LineTotal(price float64, quantity uint) float64 {
	return RoundCents(price * float64(quantity))
}

func NewCart(lines []CartLine) Cart {
	cart := Cart{Lines: make([]CartLine, 0, len(lines))}
	var total float64
	for _, l := range lines {
		l.LineTotal = LineTotal(l.Price, l.Quantity)
		total += l.LineTotal
		cart.Lines = append(cart.Lines, l)
	}
	cart.Total = RoundCents(total)
	return cart
}
