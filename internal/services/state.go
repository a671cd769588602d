package services

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"artyra/internal/domain"
	"artyra/internal/log"
	"artyra/internal/seed"
)

// Store contracts satisfied by the repos package.
type ProductStore interface {
	List(ctx context.Context) ([]domain.Product, error)
	Insert(ctx context.Context, p domain.Product) (domain.Product, error)
	Update(ctx context.Context, p domain.Product) (domain.Product, error)
	Delete(ctx context.Context, id string) error
	DecrementStock(ctx context.Context, id string, qty int) (int, error)
}

type OrderStore interface {
	List(ctx context.Context) ([]domain.Order, error)
	Insert(ctx context.Context, o domain.Order) (domain.Order, error)
	UpdateStatus(ctx context.Context, id string, status domain.Status) (domain.Order, error)
}

type SettingsStore interface {
	Get(ctx context.Context) (domain.StoreSettings, error)
	Upsert(ctx context.Context, s domain.StoreSettings) (domain.StoreSettings, error)
}

type CartStore interface {
	Add(ctx context.Context, sessionID string, p domain.Product, qty int, toppings []string) (string, error)
	Items(ctx context.Context, sessionID string) ([]domain.CartItem, error)
	Remove(ctx context.Context, sessionID, cartItemID string) error
	Clear(ctx context.Context, sessionID string) error
}

// State is the in-memory view of the catalog, the orders (newest first) and the store settings.
// Reads return copies; writes go through the services in this package.
type State struct {
	mu       sync.RWMutex
	products []domain.Product
	orders   []domain.Order
	settings domain.StoreSettings
	fallback bool
}

func NewState() *State {
	return &State{settings: domain.DefaultSettings()}
}

// Load fills the state from persistence. When any list fails the bundled dataset is used
// instead and the failure is logged; an error is returned only if that dataset is broken too.
func (s *State) Load(ctx context.Context, products ProductStore, orders OrderStore, settings SettingsStore) error {
	ps, err := products.List(ctx)
	var ords []domain.Order
	if err == nil {
		ords, err = orders.List(ctx)
	}
	var st domain.StoreSettings
	if err == nil {
		st, err = settings.Get(ctx)
	}
	if err != nil {
		log.Error(nil, "state.load", err, map[string]any{"fallback": true})
		ds, ferr := seed.Fallback()
		if ferr != nil {
			return ferr
		}
		s.Replace(ds.Products, ds.Orders, domain.DefaultSettings())
		s.mu.Lock()
		s.fallback = true
		s.mu.Unlock()
		return nil
	}
	s.Replace(ps, ords, st)
	log.Info(nil, "state.load", map[string]any{"products": len(ps), "orders": len(ords)})
	return nil
}

// Replace swaps the whole state. Orders must already be newest first.
func (s *State) Replace(products []domain.Product, orders []domain.Order, settings domain.StoreSettings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = append([]domain.Product(nil), products...)
	s.orders = append([]domain.Order(nil), orders...)
	s.settings = settings
	s.fallback = false
}

// Fallback reports whether the state came from the bundled dataset.
func (s *State) Fallback() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fallback
}

func (s *State) Products() []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Product(nil), s.products...)
}

func (s *State) Product(id string) (domain.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.products {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Product{}, false
}

// resolveProduct matches a line item to a catalog product, by id first and then by name.
func (s *State) resolveProduct(id, name string) (domain.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if id != "" {
		for _, p := range s.products {
			if p.ID == id {
				return p, true
			}
		}
	}
	for _, p := range s.products {
		if p.Name == name {
			return p, true
		}
	}
	return domain.Product{}, false
}

func (s *State) Orders() []domain.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Order(nil), s.orders...)
}

func (s *State) Settings() domain.StoreSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

func (s *State) orderByID(id string) (domain.Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, o := range s.orders {
		if o.ID == id {
			return o, true
		}
	}
	return domain.Order{}, false
}

// FindByNumericID looks an order up by the number used in receipt links.
func (s *State) FindByNumericID(n int64) (domain.Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, o := range s.orders {
		if o.NumericID == n {
			return o, true
		}
	}
	return domain.Order{}, false
}

// FindByHumanID accepts "TYO-123", "tyo-123" or just "123".
func (s *State) FindByHumanID(q string) (domain.Order, bool) {
	q = strings.TrimSpace(strings.Replace(strings.ToUpper(q), domain.OrderIDPrefix, "", 1))
	if q == "" {
		return domain.Order{}, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, o := range s.orders {
		if strconv.FormatInt(o.NumericID, 10) == q {
			return o, true
		}
	}
	return domain.Order{}, false
}

func (s *State) prependOrder(o domain.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders = append([]domain.Order{o}, s.orders...)
}

func (s *State) setOrderStatus(id string, status domain.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.orders {
		if s.orders[i].ID == id {
			s.orders[i].Status = status
			return
		}
	}
}

func (s *State) prependProduct(p domain.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = append([]domain.Product{p}, s.products...)
}

func (s *State) replaceProduct(p domain.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.products {
		if s.products[i].ID == p.ID {
			s.products[i] = p
			return
		}
	}
}

func (s *State) removeProduct(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.products {
		if s.products[i].ID == id {
			s.products = append(s.products[:i:i], s.products[i+1:]...)
			return
		}
	}
}

// setStock stores a fresh pointer so copies handed out earlier keep their value.
func (s *State) setStock(id string, stock int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.products {
		if s.products[i].ID == id {
			s.products[i].Stock = domain.IntPtr(stock)
			return
		}
	}
}

func (s *State) setSettings(st domain.StoreSettings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = st
}
