// Package seed holds the catalog bundled into the binary.
package seed

import (
	_ "embed"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"artyra/internal/domain"
)

//go:embed fallback.yaml
var fallbackYAML []byte

type product struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Price       int64    `yaml:"price"`
	Stock       *int     `yaml:"stock"`
	Image       string   `yaml:"image"`
	HasToppings bool     `yaml:"has_toppings"`
	Toppings    []string `yaml:"toppings"`
}

type lineItem struct {
	Name     string   `yaml:"name"`
	Price    int64    `yaml:"price"`
	Qty      int      `yaml:"qty"`
	Toppings []string `yaml:"toppings"`
}

type order struct {
	NumericID     int64      `yaml:"numeric_id"`
	CustomerName  string     `yaml:"customer_name"`
	CustomerClass string     `yaml:"customer_class"`
	CustomerWA    string     `yaml:"customer_wa"`
	Items         []lineItem `yaml:"items"`
	Status        string     `yaml:"status"`
	Notes         string     `yaml:"notes"`
	PaymentMethod string     `yaml:"payment_method"`
	DeliveryDate  string     `yaml:"delivery_date"`
	DeliveryTime  string     `yaml:"delivery_time"`
}

type file struct {
	Products []product `yaml:"products"`
	Orders   []order   `yaml:"orders"`
}

// Dataset is the decoded bundled data.
type Dataset struct {
	Products []domain.Product
	Orders   []domain.Order
}

// Fallback decodes the embedded dataset.
func Fallback() (Dataset, error) {
	return Parse(fallbackYAML)
}

// Parse decodes a dataset in the bundled YAML layout. Order totals are derived from the items.
func Parse(b []byte) (Dataset, error) {
	var f file
	if err := yaml.Unmarshal(b, &f); err != nil {
		return Dataset{}, fmt.Errorf("seed: %w", err)
	}
	var ds Dataset
	now := time.Now().UTC()
	for i, p := range f.Products {
		if p.Name == "" || p.Price < 0 || (p.Stock != nil && *p.Stock < 0) {
			return Dataset{}, fmt.Errorf("seed: invalid product #%d %q", i, p.Name)
		}
		toppings := p.Toppings
		if toppings == nil || !p.HasToppings {
			toppings = []string{}
		}
		ds.Products = append(ds.Products, domain.Product{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			Price:       p.Price,
			Stock:       p.Stock,
			Image:       p.Image,
			HasToppings: p.HasToppings,
			Toppings:    toppings,
			CreatedAt:   now.Add(-time.Duration(i) * time.Second),
		})
	}
	for i, o := range f.Orders {
		status := domain.Status(o.Status)
		if status == "" {
			status = domain.StatusPending
		}
		method := domain.PaymentMethod(o.PaymentMethod)
		if o.NumericID <= 0 || !status.Valid() || !method.Valid() {
			return Dataset{}, fmt.Errorf("seed: invalid order #%d", i)
		}
		ord := domain.Order{
			NumericID:     o.NumericID,
			ID:            domain.FormatOrderID(o.NumericID),
			Customer:      domain.Customer{Name: o.CustomerName, Class: o.CustomerClass, WhatsApp: o.CustomerWA},
			Status:        status,
			Notes:         o.Notes,
			OrderDate:     time.UnixMilli(o.NumericID).UTC(),
			PaymentMethod: method,
		}
		for _, it := range o.Items {
			toppings := it.Toppings
			if toppings == nil {
				toppings = []string{}
			}
			ord.Items = append(ord.Items, domain.LineItem{Name: it.Name, Price: it.Price, Qty: it.Qty, Toppings: toppings})
			ord.Total += it.Price * int64(it.Qty)
		}
		if method == domain.PaymentCashOnDelivery {
			ord.DeliveryInfo = &domain.DeliveryInfo{Date: o.DeliveryDate, Time: o.DeliveryTime}
		}
		ds.Orders = append(ds.Orders, ord)
	}
	return ds, nil
}
