package domain

import (
	"strconv"
	"time"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusShipped   Status = "shipped"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Statuses lists every status in lifecycle order.
var Statuses = []Status{StatusPending, StatusPaid, StatusShipped, StatusCompleted, StatusCancelled}

func (s Status) Valid() bool {
	for _, v := range Statuses {
		if v == s {
			return true
		}
	}
	return false
}

// Label is the Indonesian name shown to shoppers and admins.
func (s Status) Label() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusPaid:
		return "Dibayar"
	case StatusShipped:
		return "Dikirim"
	case StatusCompleted:
		return "Selesai"
	case StatusCancelled:
		return "Dibatalkan"
	}
	return string(s)
}

// Terminal reports whether no further transitions leave s.
func (s Status) Terminal() bool { return s == StatusCompleted || s == StatusCancelled }

var transitions = map[Status][]Status{
	StatusPending: {StatusPaid, StatusShipped, StatusCompleted, StatusCancelled},
	StatusPaid:    {StatusShipped, StatusCompleted, StatusCancelled},
	StatusShipped: {StatusCompleted, StatusCancelled},
}

// CanTransition reports whether an order in from may be moved to to.
// Re-saving the same status is always allowed.
func CanTransition(from, to Status) bool {
	if !from.Valid() || !to.Valid() {
		return false
	}
	if from == to {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type PaymentMethod string

const (
	PaymentInstantTransfer PaymentMethod = "instant-transfer"
	PaymentCashOnDelivery  PaymentMethod = "cash-on-delivery"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentInstantTransfer || m == PaymentCashOnDelivery
}

func (m PaymentMethod) Label() string {
	switch m {
	case PaymentInstantTransfer:
		return "Transfer"
	case PaymentCashOnDelivery:
		return "COD"
	}
	return string(m)
}

type Customer struct {
	Name     string `json:"name"`
	Class    string `json:"class,omitempty"`
	WhatsApp string `json:"whatsappNumber"`
}

// LineItem is a frozen copy of a cart line taken at checkout.
type LineItem struct {
	ProductID string   `json:"product_id,omitempty"`
	Name      string   `json:"name"`
	Price     int64    `json:"price"`
	Qty       int      `json:"qty"`
	Toppings  []string `json:"toppings"`
}

func (l LineItem) Subtotal() int64 { return l.Price * int64(l.Qty) }

type DeliveryInfo struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

const OrderIDPrefix = "TYO-"

// FormatOrderID builds the customer-facing order id.
func FormatOrderID(numericID int64) string {
	return OrderIDPrefix + strconv.FormatInt(numericID, 10)
}

type Order struct {
	NumericID     int64         `json:"numericId"`
	ID            string        `json:"id"`
	Customer      Customer      `json:"customer"`
	Items         []LineItem    `json:"items"`
	Total         int64         `json:"total"`
	Status        Status        `json:"status"`
	Notes         string        `json:"notes,omitempty"`
	OrderDate     time.Time     `json:"orderDate"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
	DeliveryInfo  *DeliveryInfo `json:"deliveryInfo,omitempty"`
}
