package handlers

import (
	"context"

	"github.com/jmoiron/sqlx"

	"artyra/internal/config"
	"artyra/internal/repos"
	"artyra/internal/services"
)

type Deps struct {
	State      *services.State
	Checkout   *services.CheckoutService
	Settings   *services.SettingsService
	Storefront *StorefrontHandler
	CartH      *CartHandler
	OrderH     *OrderHandler
	TrackH     *TrackHandler
	APIH       *APIHandler
	AdminH     *AdminHandler
}

// NewDeps wires repos, services and handlers and loads the in-memory state.
func NewDeps(ctx context.Context, db *sqlx.DB, cfg config.Config, notifier services.Notifier) (*Deps, error) {
	prodRepo := repos.NewProductRepo(db)
	orderRepo := repos.NewOrderRepo(db)
	settingsRepo := repos.NewSettingsRepo(db)
	cartRepo := repos.NewCartRepo(db)

	state := services.NewState()
	if err := state.Load(ctx, prodRepo, orderRepo, settingsRepo); err != nil {
		return nil, err
	}

	catalogSvc := services.NewCatalogService(state, prodRepo)
	cartSvc := services.NewCartService(state, cartRepo)
	orderSvc := services.NewOrderService(state, orderRepo, prodRepo)
	settingsSvc := services.NewSettingsService(state, settingsRepo)
	checkoutSvc := services.NewCheckoutService(state, cartRepo, orderRepo, notifier)

	store := &StorefrontHandler{Catalog: catalogSvc, Cart: cartSvc, State: state}
	return &Deps{
		State:      state,
		Checkout:   checkoutSvc,
		Settings:   settingsSvc,
		Storefront: store,
		CartH:      &CartHandler{Cart: cartSvc, Storefront: store, Secure: cfg.CookieSecure},
		OrderH:     &OrderHandler{Cart: cartSvc, Checkout: checkoutSvc, Orders: orderSvc, Secure: cfg.CookieSecure},
		TrackH:     &TrackHandler{Orders: orderSvc},
		APIH:       &APIHandler{Catalog: catalogSvc, Orders: orderSvc, Settings: settingsSvc},
		AdminH:     &AdminHandler{Orders: orderSvc, Catalog: catalogSvc, Settings: settingsSvc, Path: cfg.AdminPath},
	}, nil
}
