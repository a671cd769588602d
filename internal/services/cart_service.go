package services

import (
	"context"
	"database/sql"
	"errors"

	"artyra/internal/domain"
	"artyra/internal/validate"
)

type CartService struct {
	State *State
	Carts CartStore
}

func NewCartService(st *State, carts CartStore) *CartService {
	return &CartService{State: st, Carts: carts}
}

// Add puts one unit of a product in the session cart as a new line.
// Topping products need 1..5 of their own toppings; other products take none.
func (s *CartService) Add(ctx context.Context, sessionID, productID string, toppings []string) (string, error) {
	p, ok := s.State.Product(productID)
	if !ok {
		return "", ErrProductNotFound
	}
	if p.SoldOut() {
		return "", ErrSoldOut
	}
	if !p.HasToppings && len(toppings) > 0 {
		return "", ErrToppingsNotAllowed
	}
	if p.HasToppings {
		if len(toppings) == 0 || len(toppings) > validate.MaxToppings {
			return "", ErrToppingsRequired
		}
		for _, t := range toppings {
			if !p.HasTopping(t) {
				return "", ErrUnknownTopping
			}
		}
	}
	id, err := s.Carts.Add(ctx, sessionID, p, 1, toppings)
	if err != nil {
		return "", &PersistenceError{Op: "cart.add", Err: err}
	}
	return id, nil
}

func (s *CartService) Remove(ctx context.Context, sessionID, cartItemID string) error {
	err := s.Carts.Remove(ctx, sessionID, cartItemID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrCartItemNotFound
	}
	if err != nil {
		return &PersistenceError{Op: "cart.remove", Err: err}
	}
	return nil
}

type CartView struct {
	Items []domain.CartItem
	Total int64
	Count int
}

func (s *CartService) View(ctx context.Context, sessionID string) (CartView, error) {
	items, err := s.Carts.Items(ctx, sessionID)
	if err != nil {
		return CartView{}, &PersistenceError{Op: "cart.items", Err: err}
	}
	v := CartView{Items: items}
	for _, it := range items {
		v.Total += it.Subtotal()
		v.Count += it.Quantity
	}
	return v, nil
}
