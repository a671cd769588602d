package services

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"artyra/internal/domain"
)

const maxStockWriters = 4

type StockUpdate struct {
	ProductID string
	Name      string
	Stock     int
}

// StatusChange summarizes one ApplyStatusChange call.
type StatusChange struct {
	Order      domain.Order
	Previous   domain.Status
	Reconciled bool
	Stock      []StockUpdate
}

type OrderService struct {
	State    *State
	Orders   OrderStore
	Products ProductStore

	// serializes status changes so an order is reconciled at most once
	mu sync.Mutex
}

func NewOrderService(st *State, orders OrderStore, products ProductStore) *OrderService {
	return &OrderService{State: st, Orders: orders, Products: products}
}

// ApplyStatusChange moves an order to next. previous is the status the caller last saw;
// moving into completed decrements tracked stock unless either previous or the stored
// status already was completed.
//
// A *ReconcileError comes back together with a valid StatusChange: the status write
// succeeded but some stock decrements did not.
func (s *OrderService) ApplyStatusChange(ctx context.Context, orderID string, next, previous domain.Status) (StatusChange, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.State.orderByID(orderID)
	if !ok {
		return StatusChange{}, ErrOrderNotFound
	}
	if !next.Valid() {
		return StatusChange{}, ErrUnknownStatus
	}
	if !domain.CanTransition(cur.Status, next) {
		return StatusChange{}, ErrInvalidTransition
	}

	saved, err := s.Orders.UpdateStatus(ctx, orderID, next)
	if err != nil {
		return StatusChange{}, &PersistenceError{Op: "order.update_status", Err: err}
	}

	ch := StatusChange{Order: saved, Previous: cur.Status}
	var rerr error
	if next == domain.StatusCompleted && previous != domain.StatusCompleted && cur.Status != domain.StatusCompleted {
		ch.Reconciled = true
		ch.Stock, rerr = s.reconcile(ctx, cur.Items)
	}
	s.State.setOrderStatus(orderID, next)
	return ch, rerr
}

type stockJob struct {
	product domain.Product
	qty     int
	stock   int
	err     error
}

func (s *OrderService) reconcile(ctx context.Context, items []domain.LineItem) ([]StockUpdate, error) {
	var jobs []*stockJob
	byID := map[string]*stockJob{}
	for _, it := range items {
		p, ok := s.State.resolveProduct(it.ProductID, it.Name)
		if !ok || p.Unlimited() {
			continue
		}
		if j, seen := byID[p.ID]; seen {
			j.qty += it.Qty
			continue
		}
		j := &stockJob{product: p, qty: it.Qty}
		byID[p.ID] = j
		jobs = append(jobs, j)
	}

	var g errgroup.Group
	g.SetLimit(maxStockWriters)
	for _, j := range jobs {
		j := j
		g.Go(func() error {
			j.stock, j.err = s.Products.DecrementStock(ctx, j.product.ID, j.qty)
			if errors.Is(j.err, sql.ErrNoRows) {
				j.err = ErrProductNotFound
			}
			return nil
		})
	}
	_ = g.Wait()

	var updates []StockUpdate
	var rerr *ReconcileError
	for _, j := range jobs {
		if j.err != nil {
			if rerr == nil {
				rerr = &ReconcileError{}
			}
			rerr.Failures = append(rerr.Failures, StockFailure{ProductID: j.product.ID, Name: j.product.Name, Err: j.err})
			continue
		}
		s.State.setStock(j.product.ID, j.stock)
		updates = append(updates, StockUpdate{ProductID: j.product.ID, Name: j.product.Name, Stock: j.stock})
	}
	if rerr != nil {
		return updates, rerr
	}
	return updates, nil
}

func (s *OrderService) List() []domain.Order { return s.State.Orders() }

func (s *OrderService) FindByNumericID(n int64) (domain.Order, bool) {
	return s.State.FindByNumericID(n)
}

func (s *OrderService) FindByHumanID(q string) (domain.Order, bool) {
	return s.State.FindByHumanID(q)
}

// Stats computes the dashboard counters for the calendar day of now.
// Revenue counts orders that were paid for; pending and cancelled orders are left out.
func (s *OrderService) Stats(now time.Time) domain.DashboardStats {
	var st domain.DashboardStats
	y, m, d := now.Date()
	for _, o := range s.State.Orders() {
		oy, om, od := o.OrderDate.In(now.Location()).Date()
		today := oy == y && om == m && od == d
		if today {
			st.OrdersToday++
			switch o.Status {
			case domain.StatusPaid, domain.StatusShipped, domain.StatusCompleted:
				st.RevenueToday += o.Total
			}
		}
		if o.Status == domain.StatusPending {
			st.Pending++
		}
	}
	return st
}
