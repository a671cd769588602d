package domain

import (
	"strconv"
	"time"
)

// Product is a catalog entry. A nil Stock means stock is not tracked.
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       int64     `json:"price"`
	Stock       *int      `json:"stock"`
	Image       string    `json:"image,omitempty"`
	HasToppings bool      `json:"hasToppings"`
	Toppings    []string  `json:"toppings"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (p Product) Unlimited() bool { return p.Stock == nil }

// SoldOut reports whether a tracked product has nothing left.
func (p Product) SoldOut() bool { return p.Stock != nil && *p.Stock <= 0 }

func (p Product) StockLabel() string {
	if p.Stock == nil {
		return "unlimited"
	}
	return strconv.Itoa(*p.Stock)
}

// HasTopping reports whether name is one of the product's toppings.
func (p Product) HasTopping(name string) bool {
	for _, t := range p.Toppings {
		if t == name {
			return true
		}
	}
	return false
}

// IntPtr is a small helper for building products with tracked stock.
func IntPtr(n int) *int { return &n }

// CartItem is one line of a session cart. Product is a snapshot taken when the line was added.
type CartItem struct {
	CartItemID string
	Product    Product
	Quantity   int
	Toppings   []string
}

func (c CartItem) Subtotal() int64 { return c.Product.Price * int64(c.Quantity) }

type StoreSettings struct {
	StoreName string `json:"storeName"`
	LogoURL   string `json:"logoUrl,omitempty"`
}

const DefaultStoreName = "ArTyra 354"

func DefaultSettings() StoreSettings { return StoreSettings{StoreName: DefaultStoreName} }

type DashboardStats struct {
	RevenueToday int64 `json:"revenueToday"`
	OrdersToday  int   `json:"ordersToday"`
	Pending      int   `json:"pending"`
}
