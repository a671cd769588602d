package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"artyra/internal/domain"
	"artyra/internal/validate"
)

const (
	maxProductNameLen = 100
	maxDescriptionLen = 1000
)

type ProductInput struct {
	Name        string
	Description string
	Price       int64
	Stock       *int
	Image       string
	HasToppings bool
	Toppings    []string
}

type CatalogService struct {
	State    *State
	Products ProductStore
}

func NewCatalogService(st *State, products ProductStore) *CatalogService {
	return &CatalogService{State: st, Products: products}
}

func (s *CatalogService) List() []domain.Product { return s.State.Products() }

func (s *CatalogService) Get(id string) (domain.Product, bool) { return s.State.Product(id) }

func (s *CatalogService) Create(ctx context.Context, in ProductInput) (domain.Product, error) {
	p, err := in.product()
	if err != nil {
		return domain.Product{}, err
	}
	saved, err := s.Products.Insert(ctx, p)
	if err != nil {
		return domain.Product{}, &PersistenceError{Op: "product.insert", Err: err}
	}
	s.State.prependProduct(saved)
	return saved, nil
}

func (s *CatalogService) Update(ctx context.Context, id string, in ProductInput) (domain.Product, error) {
	cur, ok := s.State.Product(id)
	if !ok {
		return domain.Product{}, ErrProductNotFound
	}
	p, err := in.product()
	if err != nil {
		return domain.Product{}, err
	}
	p.ID, p.CreatedAt = cur.ID, cur.CreatedAt
	saved, err := s.Products.Update(ctx, p)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, ErrProductNotFound
	}
	if err != nil {
		return domain.Product{}, &PersistenceError{Op: "product.update", Err: err}
	}
	s.State.replaceProduct(saved)
	return saved, nil
}

func (s *CatalogService) Delete(ctx context.Context, id string) error {
	if _, ok := s.State.Product(id); !ok {
		return ErrProductNotFound
	}
	if err := s.Products.Delete(ctx, id); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return &PersistenceError{Op: "product.delete", Err: err}
	}
	s.State.removeProduct(id)
	return nil
}

func (in ProductInput) product() (domain.Product, error) {
	name, ok := validate.Name(in.Name, maxProductNameLen)
	if !ok || in.Price < 0 || (in.Stock != nil && *in.Stock < 0) {
		return domain.Product{}, ErrInvalidProduct
	}
	image, ok := validate.URL(in.Image)
	if !ok {
		return domain.Product{}, ErrInvalidProduct
	}
	toppings := []string{}
	if in.HasToppings {
		for _, t := range in.Toppings {
			if t = strings.TrimSpace(t); t != "" {
				toppings = append(toppings, t)
			}
		}
		if len(toppings) == 0 {
			return domain.Product{}, ErrInvalidProduct
		}
	}
	var stock *int
	if in.Stock != nil {
		stock = domain.IntPtr(*in.Stock)
	}
	return domain.Product{
		Name:        name,
		Description: validate.Text(in.Description, maxDescriptionLen),
		Price:       in.Price,
		Stock:       stock,
		Image:       image,
		HasToppings: in.HasToppings,
		Toppings:    toppings,
	}, nil
}
