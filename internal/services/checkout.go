package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"artyra/internal/domain"
	"artyra/internal/log"
	"artyra/internal/notify"
	"artyra/internal/validate"
)

const (
	maxNameLen  = 80
	maxClassLen = 40
	maxNotesLen = 500
)

type CheckoutInput struct {
	Name          string
	Class         string
	WhatsApp      string
	PaymentMethod domain.PaymentMethod
	Notes         string
	DeliveryDate  string
	DeliveryTime  string
}

// AssembleOrder validates the checkout form against cart and builds the order.
// Checks run in a fixed order and the first failure is returned.
func AssembleOrder(cart []domain.CartItem, in CheckoutInput, numericID int64, now time.Time) (domain.Order, error) {
	if len(cart) == 0 {
		return domain.Order{}, ErrEmptyCart
	}
	name, ok := validate.Name(in.Name, maxNameLen)
	if !ok {
		return domain.Order{}, ErrMissingBuyerName
	}
	digits, ok := validate.Phone(in.WhatsApp)
	if !ok {
		if len(digits) > validate.MaxPhoneDigits {
			return domain.Order{}, ErrPhoneNumberTooLong
		}
		return domain.Order{}, ErrInvalidPhoneNumber
	}
	if !in.PaymentMethod.Valid() {
		return domain.Order{}, ErrMissingPaymentMethod
	}

	var delivery *domain.DeliveryInfo
	if in.PaymentMethod == domain.PaymentCashOnDelivery {
		date, tm := strings.TrimSpace(in.DeliveryDate), strings.TrimSpace(in.DeliveryTime)
		if date == "" || tm == "" {
			return domain.Order{}, ErrMissingDeliverySchedule
		}
		if !offered(AvailableDates(now), date) || !offered(DeliveryTimes, tm) {
			return domain.Order{}, ErrInvalidDeliverySchedule
		}
		delivery = &domain.DeliveryInfo{Date: date, Time: tm}
	}

	items := make([]domain.LineItem, 0, len(cart))
	var total int64
	for _, c := range cart {
		toppings := append([]string{}, c.Toppings...)
		items = append(items, domain.LineItem{
			ProductID: c.Product.ID,
			Name:      c.Product.Name,
			Price:     c.Product.Price,
			Qty:       c.Quantity,
			Toppings:  toppings,
		})
		total += c.Subtotal()
	}

	return domain.Order{
		NumericID: numericID,
		ID:        domain.FormatOrderID(numericID),
		Customer: domain.Customer{
			Name:     name,
			Class:    validate.Text(in.Class, maxClassLen),
			WhatsApp: "+62" + digits,
		},
		Items:         items,
		Total:         total,
		Status:        domain.StatusPending,
		Notes:         validate.Text(in.Notes, maxNotesLen),
		OrderDate:     now,
		PaymentMethod: in.PaymentMethod,
		DeliveryInfo:  delivery,
	}, nil
}

// Notifier announces new orders. *notify.WhatsApp satisfies it.
type Notifier interface {
	NewOrder(ctx context.Context, o domain.Order) error
}

// idSource hands out strictly increasing millisecond timestamps.
type idSource struct {
	mu   sync.Mutex
	last int64
}

func (g *idSource) next(now time.Time) int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := now.UnixMilli()
	if n <= g.last {
		n = g.last + 1
	}
	g.last = n
	return n
}

type CheckoutService struct {
	State  *State
	Carts  CartStore
	Orders OrderStore
	Notify Notifier
	Now    func() time.Time

	ids     idSource
	pending sync.WaitGroup
}

func NewCheckoutService(st *State, carts CartStore, orders OrderStore, n Notifier) *CheckoutService {
	return &CheckoutService{State: st, Carts: carts, Orders: orders, Notify: n, Now: time.Now}
}

// Place turns the session cart into a stored order. The admin notification is sent in the
// background and its outcome is only logged.
func (s *CheckoutService) Place(ctx context.Context, sessionID string, in CheckoutInput) (domain.Order, error) {
	cart, err := s.Carts.Items(ctx, sessionID)
	if err != nil {
		return domain.Order{}, &PersistenceError{Op: "cart.items", Err: err}
	}
	now := s.Now()
	o, err := AssembleOrder(cart, in, s.ids.next(now), now)
	if err != nil {
		return domain.Order{}, err
	}

	saved, err := s.Orders.Insert(ctx, o)
	if err != nil {
		return domain.Order{}, &PersistenceError{Op: "order.insert", Err: err}
	}
	s.State.prependOrder(saved)
	s.announce(saved)

	if err := s.Carts.Clear(ctx, sessionID); err != nil {
		log.Warn(nil, "cart.clear", err, map[string]any{"order_id": saved.ID})
	}
	return saved, nil
}

func (s *CheckoutService) announce(o domain.Order) {
	if s.Notify == nil {
		return
	}
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		err := s.Notify.NewOrder(context.Background(), o)
		switch {
		case errors.Is(err, notify.ErrDisabled):
		case err != nil:
			log.Warn(nil, "notify.order", err, map[string]any{"order_id": o.ID})
		default:
			log.Info(nil, "notify.order", map[string]any{"order_id": o.ID})
		}
	}()
}

// Drain waits for background notifications to finish.
func (s *CheckoutService) Drain() { s.pending.Wait() }
