package repos

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"artyra/internal/domain"
)

// Timestamps are stored as fixed-width UTC text so they sort the same on every driver.
const tsLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTS(t time.Time) string { return t.UTC().Format(tsLayout) }

func parseTS(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad timestamp %q: %w", s, err)
	}
	return t.UTC(), nil
}

type productRow struct {
	ID          string        `db:"id"`
	Name        string        `db:"name"`
	Description string        `db:"description"`
	Price       int64         `db:"price"`
	Stock       sql.NullInt64 `db:"stock"`
	Image       string        `db:"image"`
	HasToppings bool          `db:"has_toppings"`
	Toppings    string        `db:"toppings"`
	CreatedAt   string        `db:"created_at"`
}

const productCols = `id, name, description, price, stock, image, has_toppings, toppings, created_at`

func productToRow(p domain.Product) (productRow, error) {
	toppings := p.Toppings
	if toppings == nil {
		toppings = []string{}
	}
	tj, err := json.Marshal(toppings)
	if err != nil {
		return productRow{}, err
	}
	r := productRow{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Image:       p.Image,
		HasToppings: p.HasToppings,
		Toppings:    string(tj),
		CreatedAt:   formatTS(p.CreatedAt),
	}
	if p.Stock != nil {
		r.Stock = sql.NullInt64{Int64: int64(*p.Stock), Valid: true}
	}
	return r, nil
}

func rowToProduct(r productRow) (domain.Product, error) {
	p := domain.Product{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Image:       r.Image,
		HasToppings: r.HasToppings,
		Toppings:    []string{},
	}
	if r.Stock.Valid {
		p.Stock = domain.IntPtr(int(r.Stock.Int64))
	}
	if r.Toppings != "" {
		if err := json.Unmarshal([]byte(r.Toppings), &p.Toppings); err != nil {
			return domain.Product{}, fmt.Errorf("product %s toppings: %w", r.ID, err)
		}
		if p.Toppings == nil {
			p.Toppings = []string{}
		}
	}
	ts, err := parseTS(r.CreatedAt)
	if err != nil {
		return domain.Product{}, err
	}
	p.CreatedAt = ts
	return p, nil
}

type orderRow struct {
	ID            string         `db:"id"`
	NumericID     int64          `db:"numeric_id"`
	CustomerName  string         `db:"customer_name"`
	CustomerClass string         `db:"customer_class"`
	CustomerWA    string         `db:"customer_wa"`
	Items         string         `db:"items"`
	Total         int64          `db:"total"`
	Status        string         `db:"status"`
	Notes         string         `db:"notes"`
	PaymentMethod string         `db:"payment_method"`
	DeliveryInfo  sql.NullString `db:"delivery_info"`
	CreatedAt     string         `db:"created_at"`
}

const orderCols = `id, numeric_id, customer_name, customer_class, customer_wa, items, total, status, notes, payment_method, delivery_info, created_at`

func orderToRow(o domain.Order) (orderRow, error) {
	items := o.Items
	if items == nil {
		items = []domain.LineItem{}
	}
	ij, err := json.Marshal(items)
	if err != nil {
		return orderRow{}, err
	}
	r := orderRow{
		ID:            o.ID,
		NumericID:     o.NumericID,
		CustomerName:  o.Customer.Name,
		CustomerClass: o.Customer.Class,
		CustomerWA:    o.Customer.WhatsApp,
		Items:         string(ij),
		Total:         o.Total,
		Status:        string(o.Status),
		Notes:         o.Notes,
		PaymentMethod: string(o.PaymentMethod),
		CreatedAt:     formatTS(o.OrderDate),
	}
	if o.DeliveryInfo != nil {
		dj, err := json.Marshal(o.DeliveryInfo)
		if err != nil {
			return orderRow{}, err
		}
		r.DeliveryInfo = sql.NullString{String: string(dj), Valid: true}
	}
	return r, nil
}

func rowToOrder(r orderRow) (domain.Order, error) {
	o := domain.Order{
		NumericID: r.NumericID,
		ID:        r.ID,
		Customer: domain.Customer{
			Name:     r.CustomerName,
			Class:    r.CustomerClass,
			WhatsApp: r.CustomerWA,
		},
		Total:         r.Total,
		Status:        domain.Status(r.Status),
		Notes:         r.Notes,
		PaymentMethod: domain.PaymentMethod(r.PaymentMethod),
	}
	if err := json.Unmarshal([]byte(r.Items), &o.Items); err != nil {
		return domain.Order{}, fmt.Errorf("order %s items: %w", r.ID, err)
	}
	if r.DeliveryInfo.Valid && r.DeliveryInfo.String != "" && r.DeliveryInfo.String != "null" {
		var d domain.DeliveryInfo
		if err := json.Unmarshal([]byte(r.DeliveryInfo.String), &d); err != nil {
			return domain.Order{}, fmt.Errorf("order %s delivery_info: %w", r.ID, err)
		}
		o.DeliveryInfo = &d
	}
	ts, err := parseTS(r.CreatedAt)
	if err != nil {
		return domain.Order{}, err
	}
	o.OrderDate = ts
	return o, nil
}
