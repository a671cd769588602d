package services_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"artyra/internal/domain"
	"artyra/internal/repos"
	"artyra/internal/services"
)

var errBoom = errors.New("boom")

type env struct {
	db       *sqlx.DB
	state    *services.State
	products *repos.ProductRepo
	orders   *repos.OrderRepo
	carts    *repos.CartRepo
	settings *repos.SettingsRepo
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db, err := repos.OpenDB(repos.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return &env{
		db:       db,
		state:    services.NewState(),
		products: repos.NewProductRepo(db),
		orders:   repos.NewOrderRepo(db),
		carts:    repos.NewCartRepo(db),
		settings: repos.NewSettingsRepo(db),
	}
}

func (e *env) reload(t *testing.T) {
	t.Helper()
	require.NoError(t, e.state.Load(context.Background(), e.products, e.orders, e.settings))
	require.False(t, e.state.Fallback())
}

func (e *env) product(t *testing.T, p domain.Product) domain.Product {
	t.Helper()
	saved, err := e.products.Insert(context.Background(), p)
	require.NoError(t, err)
	return saved
}

func (e *env) order(t *testing.T, n int64, status domain.Status, items ...domain.LineItem) domain.Order {
	t.Helper()
	o := domain.Order{
		NumericID:     n,
		ID:            domain.FormatOrderID(n),
		Customer:      domain.Customer{Name: "Sari", WhatsApp: "+62812345678"},
		Items:         items,
		Status:        status,
		OrderDate:     time.Now(),
		PaymentMethod: domain.PaymentInstantTransfer,
	}
	for _, it := range items {
		o.Total += it.Subtotal()
	}
	saved, err := e.orders.Insert(context.Background(), o)
	require.NoError(t, err)
	return saved
}

func stockOf(t *testing.T, st *services.State, id string) *int {
	t.Helper()
	p, ok := st.Product(id)
	require.True(t, ok)
	return p.Stock
}

type failingOrders struct {
	services.OrderStore
}

func (failingOrders) Insert(context.Context, domain.Order) (domain.Order, error) {
	return domain.Order{}, errBoom
}

func (failingOrders) UpdateStatus(context.Context, string, domain.Status) (domain.Order, error) {
	return domain.Order{}, errBoom
}

type flakyProducts struct {
	services.ProductStore
	failID string
}

func (f flakyProducts) DecrementStock(ctx context.Context, id string, qty int) (int, error) {
	if id == f.failID {
		return 0, errBoom
	}
	return f.ProductStore.DecrementStock(ctx, id, qty)
}

type failingList struct {
	services.ProductStore
}

func (failingList) List(context.Context) ([]domain.Product, error) { return nil, errBoom }

type recordingNotifier struct {
	mu   sync.Mutex
	sent []domain.Order
	err  error
}

func (r *recordingNotifier) NewOrder(_ context.Context, o domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, o)
	return r.err
}

// ---- checkout ----

func cartOf(items ...domain.CartItem) []domain.CartItem { return items }

func TestAssembleOrder_TotalsAndSnapshot(t *testing.T) {
	now := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
	cart := cartOf(
		domain.CartItem{CartItemID: "c1", Product: domain.Product{ID: "p1", Name: "Roti Bakar", Price: 12000}, Quantity: 2, Toppings: []string{"Keju"}},
		domain.CartItem{CartItemID: "c2", Product: domain.Product{ID: "p2", Name: "Es Teh", Price: 5000}, Quantity: 1, Toppings: []string{}},
	)
	o, err := services.AssembleOrder(cart, services.CheckoutInput{
		Name:          "  Sari  ",
		Class:         "XI IPA 2",
		WhatsApp:      "812-3456-7890",
		PaymentMethod: domain.PaymentCashOnDelivery,
		Notes:         "tanpa gula",
		DeliveryDate:  "2026-10-17",
		DeliveryTime:  "16:30",
	}, 1760600000000, now)
	require.NoError(t, err)

	assert.Equal(t, "TYO-1760600000000", o.ID)
	assert.EqualValues(t, 29000, o.Total)
	assert.Equal(t, domain.StatusPending, o.Status)
	assert.Equal(t, "Sari", o.Customer.Name)
	assert.Equal(t, "+6281234567890", o.Customer.WhatsApp)
	require.Len(t, o.Items, 2)
	assert.Equal(t, domain.LineItem{ProductID: "p1", Name: "Roti Bakar", Price: 12000, Qty: 2, Toppings: []string{"Keju"}}, o.Items[0])
	require.NotNil(t, o.DeliveryInfo)
	assert.Equal(t, domain.DeliveryInfo{Date: "2026-10-17", Time: "16:30"}, *o.DeliveryInfo)

	// the snapshot does not share memory with the cart
	cart[0].Toppings[0] = "Coklat"
	assert.Equal(t, "Keju", o.Items[0].Toppings[0])
}

func TestAssembleOrder_ValidationOrder(t *testing.T) {
	now := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
	cart := cartOf(domain.CartItem{Product: domain.Product{ID: "p1", Name: "Es Teh", Price: 5000}, Quantity: 1})
	good := services.CheckoutInput{Name: "Sari", WhatsApp: "081234567", PaymentMethod: domain.PaymentInstantTransfer}

	tests := []struct {
		name string
		cart []domain.CartItem
		edit func(in *services.CheckoutInput)
		want error
	}{
		{"empty cart wins over everything", nil, func(in *services.CheckoutInput) { *in = services.CheckoutInput{} }, services.ErrEmptyCart},
		{"blank name before bad phone", cart, func(in *services.CheckoutInput) { in.Name = "   "; in.WhatsApp = "12" }, services.ErrMissingBuyerName},
		{"long name passes through to the phone check", cart, func(in *services.CheckoutInput) { in.Name = strings.Repeat("A", 81); in.WhatsApp = "12" }, services.ErrInvalidPhoneNumber},
		{"short phone before missing method", cart, func(in *services.CheckoutInput) { in.WhatsApp = "0812-345"; in.PaymentMethod = "" }, services.ErrInvalidPhoneNumber},
		{"too many digits before missing method", cart, func(in *services.CheckoutInput) { in.WhatsApp = "0812 3456 7890 1234"; in.PaymentMethod = "" }, services.ErrPhoneNumberTooLong},
		{"unknown method", cart, func(in *services.CheckoutInput) { in.PaymentMethod = "gopay" }, services.ErrMissingPaymentMethod},
		{"cod without time", cart, func(in *services.CheckoutInput) {
			in.PaymentMethod = domain.PaymentCashOnDelivery
			in.DeliveryDate = "2026-10-16"
		}, services.ErrMissingDeliverySchedule},
		{"cod date not offered", cart, func(in *services.CheckoutInput) {
			in.PaymentMethod = domain.PaymentCashOnDelivery
			in.DeliveryDate, in.DeliveryTime = "2026-10-30", "07:00"
		}, services.ErrInvalidDeliverySchedule},
		{"cod slot not offered", cart, func(in *services.CheckoutInput) {
			in.PaymentMethod = domain.PaymentCashOnDelivery
			in.DeliveryDate, in.DeliveryTime = "2026-10-16", "12:00"
		}, services.ErrInvalidDeliverySchedule},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := good
			tt.edit(&in)
			_, err := services.AssembleOrder(tt.cart, in, 1, now)
			assert.ErrorIs(t, err, tt.want)
			assert.True(t, services.IsValidation(err))
		})
	}
}

func TestAssembleOrder_LongInputIsClippedNotRejected(t *testing.T) {
	cart := cartOf(domain.CartItem{Product: domain.Product{ID: "p1", Name: "Es Teh", Price: 5000}, Quantity: 1})
	o, err := services.AssembleOrder(cart, services.CheckoutInput{
		Name:          strings.Repeat("A", 81),
		Class:         strings.Repeat("b", 39) + "é",
		WhatsApp:      "812345678",
		PaymentMethod: domain.PaymentInstantTransfer,
		Notes:         strings.Repeat("a", 499) + "é",
	}, 1, time.Now())
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("A", 80), o.Customer.Name)
	assert.Equal(t, strings.Repeat("b", 39), o.Customer.Class)
	assert.Equal(t, strings.Repeat("a", 499), o.Notes)
	assert.True(t, utf8.ValidString(o.Notes))
}

func TestAssembleOrder_TransferHasNoDeliveryInfo(t *testing.T) {
	cart := cartOf(domain.CartItem{Product: domain.Product{Name: "Es Teh", Price: 5000}, Quantity: 1})
	o, err := services.AssembleOrder(cart, services.CheckoutInput{
		Name: "Sari", WhatsApp: "081234567", PaymentMethod: domain.PaymentInstantTransfer,
		DeliveryDate: "2026-10-16", DeliveryTime: "07:00",
	}, 7, time.Now())
	require.NoError(t, err)
	assert.Nil(t, o.DeliveryInfo)
}

func TestCheckoutPlace(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	p := e.product(t, domain.Product{Name: "Roti Bakar", Price: 12000, Stock: domain.IntPtr(5), HasToppings: true, Toppings: []string{"Keju", "Coklat"}})
	e.reload(t)

	cart := services.NewCartService(e.state, e.carts)
	_, err := cart.Add(ctx, "sid", p.ID, []string{"Keju"})
	require.NoError(t, err)
	_, err = cart.Add(ctx, "sid", p.ID, []string{"Coklat"})
	require.NoError(t, err)

	n := &recordingNotifier{}
	svc := services.NewCheckoutService(e.state, e.carts, e.orders, n)
	o, err := svc.Place(ctx, "sid", services.CheckoutInput{Name: "Sari", WhatsApp: "0812345678", PaymentMethod: domain.PaymentInstantTransfer})
	require.NoError(t, err)
	svc.Drain()

	assert.EqualValues(t, 24000, o.Total)
	got, ok := e.state.FindByNumericID(o.NumericID)
	require.True(t, ok)
	assert.Equal(t, o.ID, got.ID)
	assert.Equal(t, o.ID, e.state.Orders()[0].ID, "newest order first")

	view, err := cart.View(ctx, "sid")
	require.NoError(t, err)
	assert.Empty(t, view.Items, "cart cleared after checkout")

	require.Len(t, n.sent, 1)
	assert.Equal(t, o.ID, n.sent[0].ID)

	// stock is only touched on completion
	assert.Equal(t, 5, *stockOf(t, e.state, p.ID))
}

func TestCheckoutPlace_NotificationFailureIsSwallowed(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	p := e.product(t, domain.Product{Name: "Es Teh", Price: 5000})
	e.reload(t)
	_, err := services.NewCartService(e.state, e.carts).Add(ctx, "sid", p.ID, nil)
	require.NoError(t, err)

	svc := services.NewCheckoutService(e.state, e.carts, e.orders, &recordingNotifier{err: errBoom})
	_, err = svc.Place(ctx, "sid", services.CheckoutInput{Name: "Sari", WhatsApp: "0812345678", PaymentMethod: domain.PaymentInstantTransfer})
	svc.Drain()
	assert.NoError(t, err)
}

func TestCheckoutPlace_PersistenceFailureLeavesStateAlone(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	p := e.product(t, domain.Product{Name: "Es Teh", Price: 5000})
	e.reload(t)
	_, err := services.NewCartService(e.state, e.carts).Add(ctx, "sid", p.ID, nil)
	require.NoError(t, err)

	n := &recordingNotifier{}
	svc := services.NewCheckoutService(e.state, e.carts, failingOrders{e.orders}, n)
	_, err = svc.Place(ctx, "sid", services.CheckoutInput{Name: "Sari", WhatsApp: "0812345678", PaymentMethod: domain.PaymentInstantTransfer})
	svc.Drain()

	require.Error(t, err)
	assert.True(t, services.IsPersistence(err))
	assert.ErrorIs(t, err, errBoom)
	assert.Empty(t, e.state.Orders())
	assert.Empty(t, n.sent)
	items, err := e.carts.Items(ctx, "sid")
	require.NoError(t, err)
	assert.Len(t, items, 1, "cart kept for a retry")
}

func TestCheckoutPlace_IDsStrictlyIncrease(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	p := e.product(t, domain.Product{Name: "Es Teh", Price: 5000})
	e.reload(t)
	cart := services.NewCartService(e.state, e.carts)
	svc := services.NewCheckoutService(e.state, e.carts, e.orders, nil)
	frozen := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
	svc.Now = func() time.Time { return frozen }

	var last int64
	for i := 0; i < 3; i++ {
		_, err := cart.Add(ctx, "sid", p.ID, nil)
		require.NoError(t, err)
		o, err := svc.Place(ctx, "sid", services.CheckoutInput{Name: "Sari", WhatsApp: "0812345678", PaymentMethod: domain.PaymentInstantTransfer})
		require.NoError(t, err)
		assert.Greater(t, o.NumericID, last)
		last = o.NumericID
	}
}

func TestPlacedOrderKeepsItsTotalAfterPriceChange(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	p := e.product(t, domain.Product{Name: "Roti Bakar", Price: 12000, Stock: domain.IntPtr(5)})
	e.reload(t)

	_, err := services.NewCartService(e.state, e.carts).Add(ctx, "sid", p.ID, nil)
	require.NoError(t, err)
	svc := services.NewCheckoutService(e.state, e.carts, e.orders, nil)
	o, err := svc.Place(ctx, "sid", services.CheckoutInput{Name: "Sari", WhatsApp: "0812345678", PaymentMethod: domain.PaymentInstantTransfer})
	require.NoError(t, err)

	catalog := services.NewCatalogService(e.state, e.products)
	updated, err := catalog.Update(ctx, p.ID, services.ProductInput{Name: p.Name, Price: 20000, Stock: domain.IntPtr(5)})
	require.NoError(t, err)
	require.EqualValues(t, 20000, updated.Price)

	check := func(st *services.State) {
		got, ok := st.FindByNumericID(o.NumericID)
		require.True(t, ok)
		assert.EqualValues(t, 12000, got.Total)
		require.Len(t, got.Items, 1)
		assert.EqualValues(t, 12000, got.Items[0].Price)
	}
	check(e.state)

	// and after a fresh load from storage
	fresh := services.NewState()
	require.NoError(t, fresh.Load(ctx, e.products, e.orders, e.settings))
	require.False(t, fresh.Fallback())
	check(fresh)
	p2, ok := fresh.Product(p.ID)
	require.True(t, ok)
	assert.EqualValues(t, 20000, p2.Price)
}

// ---- status transitions and stock ----

func TestApplyStatusChange_CompletionDecrementsOnce(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	roti := e.product(t, domain.Product{Name: "Roti Bakar", Price: 12000, Stock: domain.IntPtr(5)})
	teh := e.product(t, domain.Product{Name: "Es Teh", Price: 5000})
	o := e.order(t, 42, domain.StatusPaid,
		domain.LineItem{ProductID: roti.ID, Name: roti.Name, Price: 12000, Qty: 3, Toppings: []string{}},
		domain.LineItem{ProductID: teh.ID, Name: teh.Name, Price: 5000, Qty: 9, Toppings: []string{}},
	)
	e.reload(t)
	svc := services.NewOrderService(e.state, e.orders, e.products)

	ch, err := svc.ApplyStatusChange(ctx, o.ID, domain.StatusCompleted, domain.StatusPaid)
	require.NoError(t, err)
	assert.True(t, ch.Reconciled)
	assert.Equal(t, domain.StatusPaid, ch.Previous)
	assert.Equal(t, domain.StatusCompleted, ch.Order.Status)
	assert.Equal(t, 2, *stockOf(t, e.state, roti.ID))
	assert.Nil(t, stockOf(t, e.state, teh.ID), "unlimited products are untouched")

	// re-saving completed is a no-op for stock
	ch, err = svc.ApplyStatusChange(ctx, o.ID, domain.StatusCompleted, domain.StatusCompleted)
	require.NoError(t, err)
	assert.False(t, ch.Reconciled)
	assert.Equal(t, 2, *stockOf(t, e.state, roti.ID))

	stored, err := e.products.List(ctx)
	require.NoError(t, err)
	for _, p := range stored {
		if p.ID == roti.ID {
			assert.Equal(t, 2, *p.Stock)
		}
	}
}

func TestApplyStatusChange_StockClampsAtZero(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	p := e.product(t, domain.Product{Name: "Dimsum", Price: 10000, Stock: domain.IntPtr(2)})
	o := e.order(t, 7, domain.StatusPending, domain.LineItem{ProductID: p.ID, Name: p.Name, Price: 10000, Qty: 5, Toppings: []string{}})
	e.reload(t)

	_, err := services.NewOrderService(e.state, e.orders, e.products).ApplyStatusChange(ctx, o.ID, domain.StatusCompleted, domain.StatusPending)
	require.NoError(t, err)
	assert.Equal(t, 0, *stockOf(t, e.state, p.ID))
}

func TestApplyStatusChange_MatchesLegacyItemsByName(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	p := e.product(t, domain.Product{Name: "Dimsum", Price: 10000, Stock: domain.IntPtr(4)})
	o := e.order(t, 8, domain.StatusShipped,
		domain.LineItem{Name: "Dimsum", Price: 10000, Qty: 1, Toppings: []string{}},
		domain.LineItem{Name: "Dimsum", Price: 10000, Qty: 2, Toppings: []string{}},
		domain.LineItem{Name: "Produk Lama", Price: 1000, Qty: 1, Toppings: []string{}},
	)
	e.reload(t)

	ch, err := services.NewOrderService(e.state, e.orders, e.products).ApplyStatusChange(ctx, o.ID, domain.StatusCompleted, domain.StatusShipped)
	require.NoError(t, err)
	require.Len(t, ch.Stock, 1)
	assert.Equal(t, 1, ch.Stock[0].Stock)
	assert.Equal(t, 1, *stockOf(t, e.state, p.ID))
}

func TestApplyStatusChange_PreviousCompletedSkipsStock(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	p := e.product(t, domain.Product{Name: "Dimsum", Price: 10000, Stock: domain.IntPtr(4)})
	o := e.order(t, 9, domain.StatusPaid, domain.LineItem{ProductID: p.ID, Name: p.Name, Price: 10000, Qty: 1, Toppings: []string{}})
	e.reload(t)

	ch, err := services.NewOrderService(e.state, e.orders, e.products).ApplyStatusChange(ctx, o.ID, domain.StatusCompleted, domain.StatusCompleted)
	require.NoError(t, err)
	assert.False(t, ch.Reconciled)
	assert.Equal(t, 4, *stockOf(t, e.state, p.ID))
}

func TestApplyStatusChange_Guard(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	done := e.order(t, 10, domain.StatusCompleted)
	cancelled := e.order(t, 11, domain.StatusCancelled)
	open := e.order(t, 12, domain.StatusShipped)
	e.reload(t)
	svc := services.NewOrderService(e.state, e.orders, e.products)

	_, err := svc.ApplyStatusChange(ctx, "TYO-404", domain.StatusPaid, "")
	assert.ErrorIs(t, err, services.ErrOrderNotFound)

	_, err = svc.ApplyStatusChange(ctx, open.ID, "selesai", domain.StatusShipped)
	assert.ErrorIs(t, err, services.ErrUnknownStatus)

	_, err = svc.ApplyStatusChange(ctx, done.ID, domain.StatusPending, domain.StatusCompleted)
	assert.ErrorIs(t, err, services.ErrInvalidTransition)

	_, err = svc.ApplyStatusChange(ctx, cancelled.ID, domain.StatusPaid, domain.StatusCancelled)
	assert.ErrorIs(t, err, services.ErrInvalidTransition)

	_, err = svc.ApplyStatusChange(ctx, open.ID, domain.StatusPaid, domain.StatusShipped)
	assert.ErrorIs(t, err, services.ErrInvalidTransition)

	ch, err := svc.ApplyStatusChange(ctx, open.ID, domain.StatusCancelled, domain.StatusShipped)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, ch.Order.Status)
	got, _ := svc.FindByHumanID(open.ID)
	assert.Equal(t, domain.StatusCancelled, got.Status)
}

func TestApplyStatusChange_PersistenceFailureLeavesStateAlone(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	p := e.product(t, domain.Product{Name: "Dimsum", Price: 10000, Stock: domain.IntPtr(4)})
	o := e.order(t, 13, domain.StatusPaid, domain.LineItem{ProductID: p.ID, Name: p.Name, Price: 10000, Qty: 1, Toppings: []string{}})
	e.reload(t)

	_, err := services.NewOrderService(e.state, failingOrders{e.orders}, e.products).ApplyStatusChange(ctx, o.ID, domain.StatusCompleted, domain.StatusPaid)
	require.Error(t, err)
	assert.True(t, services.IsPersistence(err))

	got, _ := e.state.FindByNumericID(13)
	assert.Equal(t, domain.StatusPaid, got.Status)
	assert.Equal(t, 4, *stockOf(t, e.state, p.ID))
}

func TestApplyStatusChange_PartialStockFailure(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	a := e.product(t, domain.Product{Name: "Dimsum", Price: 10000, Stock: domain.IntPtr(4)})
	b := e.product(t, domain.Product{Name: "Roti Bakar", Price: 12000, Stock: domain.IntPtr(4)})
	o := e.order(t, 14, domain.StatusPaid,
		domain.LineItem{ProductID: a.ID, Name: a.Name, Price: 10000, Qty: 1, Toppings: []string{}},
		domain.LineItem{ProductID: b.ID, Name: b.Name, Price: 12000, Qty: 1, Toppings: []string{}},
	)
	e.reload(t)

	svc := services.NewOrderService(e.state, e.orders, flakyProducts{ProductStore: e.products, failID: b.ID})
	ch, err := svc.ApplyStatusChange(ctx, o.ID, domain.StatusCompleted, domain.StatusPaid)

	var rerr *services.ReconcileError
	require.ErrorAs(t, err, &rerr)
	require.Len(t, rerr.Failures, 1)
	assert.Equal(t, b.ID, rerr.Failures[0].ProductID)

	assert.Equal(t, domain.StatusCompleted, ch.Order.Status)
	got, _ := e.state.FindByNumericID(14)
	assert.Equal(t, domain.StatusCompleted, got.Status, "status write already succeeded")
	assert.Equal(t, 3, *stockOf(t, e.state, a.ID))
	assert.Equal(t, 4, *stockOf(t, e.state, b.ID))
}

// ---- locator, slots, stats ----

func TestLocator(t *testing.T) {
	e := newEnv(t)
	e.order(t, 42, domain.StatusPending)
	e.reload(t)
	svc := services.NewOrderService(e.state, e.orders, e.products)

	for _, q := range []string{"TYO-42", "tyo-42", "42", "  TYO-42 "} {
		o, ok := svc.FindByHumanID(q)
		assert.True(t, ok, q)
		assert.Equal(t, "TYO-42", o.ID)
	}
	for _, q := range []string{"", "TYO-", "TYO-43", "4"} {
		_, ok := svc.FindByHumanID(q)
		assert.False(t, ok, q)
	}
	_, ok := svc.FindByNumericID(42)
	assert.True(t, ok)
	_, ok = svc.FindByNumericID(43)
	assert.False(t, ok)
}

func TestAvailableDates(t *testing.T) {
	now := time.Date(2026, 10, 16, 23, 30, 0, 0, time.UTC)
	dates := services.AvailableDates(now)
	require.Len(t, dates, 6)
	assert.Equal(t, services.SlotOption{Value: "2026-10-16", Label: "Hari ini"}, dates[0])
	assert.Equal(t, services.SlotOption{Value: "2026-10-17", Label: "Besok"}, dates[1])
	assert.Equal(t, services.SlotOption{Value: "2026-10-18", Label: "Minggu, 18 Oktober"}, dates[2])
	assert.Equal(t, "2026-10-21", dates[5].Value)

	endOfMonth := services.AvailableDates(time.Date(2026, 12, 30, 8, 0, 0, 0, time.UTC))
	assert.Equal(t, "2027-01-04", endOfMonth[5].Value)
}

func TestStats(t *testing.T) {
	e := newEnv(t)
	e.order(t, 1, domain.StatusPaid, domain.LineItem{Name: "A", Price: 10000, Qty: 1, Toppings: []string{}})
	e.order(t, 2, domain.StatusPending, domain.LineItem{Name: "A", Price: 5000, Qty: 1, Toppings: []string{}})
	e.order(t, 3, domain.StatusCancelled, domain.LineItem{Name: "A", Price: 7000, Qty: 1, Toppings: []string{}})
	e.reload(t)

	st := services.NewOrderService(e.state, e.orders, e.products).Stats(time.Now())
	assert.Equal(t, 3, st.OrdersToday)
	assert.Equal(t, 1, st.Pending)
	assert.EqualValues(t, 10000, st.RevenueToday)
}

// ---- state, cart, catalog, settings ----

func TestStateLoadFallsBackToBundledData(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, e.state.Load(context.Background(), failingList{e.products}, e.orders, e.settings))
	assert.True(t, e.state.Fallback())
	assert.NotEmpty(t, e.state.Products())
	assert.Equal(t, domain.DefaultSettings(), e.state.Settings())
}

func TestCartAddRules(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	roti := e.product(t, domain.Product{Name: "Roti Bakar", Price: 12000, HasToppings: true, Toppings: []string{"Keju", "Coklat", "Susu", "Meses", "Kacang", "Oreo"}})
	teh := e.product(t, domain.Product{Name: "Es Teh", Price: 5000})
	habis := e.product(t, domain.Product{Name: "Dimsum", Price: 10000, Stock: domain.IntPtr(0)})
	e.reload(t)
	cart := services.NewCartService(e.state, e.carts)

	_, err := cart.Add(ctx, "sid", "nope", nil)
	assert.ErrorIs(t, err, services.ErrProductNotFound)
	_, err = cart.Add(ctx, "sid", habis.ID, nil)
	assert.ErrorIs(t, err, services.ErrSoldOut)
	_, err = cart.Add(ctx, "sid", roti.ID, nil)
	assert.ErrorIs(t, err, services.ErrToppingsRequired)
	_, err = cart.Add(ctx, "sid", roti.ID, []string{"Keju", "Coklat", "Susu", "Meses", "Kacang", "Oreo"})
	assert.ErrorIs(t, err, services.ErrToppingsRequired)
	_, err = cart.Add(ctx, "sid", roti.ID, []string{"Nanas"})
	assert.ErrorIs(t, err, services.ErrUnknownTopping)
	_, err = cart.Add(ctx, "sid", teh.ID, []string{"Keju"})
	assert.ErrorIs(t, err, services.ErrToppingsNotAllowed)

	id, err := cart.Add(ctx, "sid", roti.ID, []string{"Keju", "Oreo"})
	require.NoError(t, err)
	_, err = cart.Add(ctx, "sid", teh.ID, nil)
	require.NoError(t, err)

	v, err := cart.View(ctx, "sid")
	require.NoError(t, err)
	assert.Equal(t, 2, v.Count)
	assert.EqualValues(t, 17000, v.Total)

	require.NoError(t, cart.Remove(ctx, "sid", id))
	assert.ErrorIs(t, cart.Remove(ctx, "sid", id), services.ErrCartItemNotFound)
}

func TestCatalogLifecycle(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.reload(t)
	cat := services.NewCatalogService(e.state, e.products)

	_, err := cat.Create(ctx, services.ProductInput{Name: " ", Price: 1000})
	assert.ErrorIs(t, err, services.ErrInvalidProduct)
	_, err = cat.Create(ctx, services.ProductInput{Name: "Roti", Price: 1000, HasToppings: true})
	assert.ErrorIs(t, err, services.ErrInvalidProduct, "topping products need a topping list")

	p, err := cat.Create(ctx, services.ProductInput{Name: "Roti Bakar", Price: 12000, Stock: domain.IntPtr(3), HasToppings: true, Toppings: []string{" Keju ", ""}})
	require.NoError(t, err)
	assert.Equal(t, []string{"Keju"}, p.Toppings)
	assert.Equal(t, p.ID, cat.List()[0].ID)

	p, err = cat.Update(ctx, p.ID, services.ProductInput{Name: "Roti Bakar", Price: 13000})
	require.NoError(t, err)
	assert.True(t, p.Unlimited())
	assert.Empty(t, p.Toppings)
	got, ok := cat.Get(p.ID)
	require.True(t, ok)
	assert.EqualValues(t, 13000, got.Price)

	require.NoError(t, cat.Delete(ctx, p.ID))
	assert.ErrorIs(t, cat.Delete(ctx, p.ID), services.ErrProductNotFound)
	assert.Empty(t, cat.List())
}

func TestSettingsSave(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.reload(t)
	svc := services.NewSettingsService(e.state, e.settings)

	saved, err := svc.Save(ctx, domain.StoreSettings{StoreName: "  ", LogoURL: "https://cdn.example.com/l.png"})
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultStoreName, saved.StoreName)
	assert.Equal(t, saved, svc.Get())

	_, err = svc.Save(ctx, domain.StoreSettings{StoreName: "Kantin", LogoURL: "javascript:alert(1)"})
	assert.ErrorIs(t, err, services.ErrInvalidSettings)
}

func TestAuthLogin(t *testing.T) {
	e := newEnv(t)
	users := repos.NewUserRepo(e.db)
	require.NoError(t, users.EnsureAdmin("owner", "s3cret-pass"))
	auth := services.NewAuthService(users)

	_, err := auth.Login("sid-1", "owner", "wrong-pass")
	assert.ErrorIs(t, err, services.ErrBadCreds)
	_, err = auth.Login("sid-1", "ghost", "s3cret-pass")
	assert.ErrorIs(t, err, services.ErrBadCreds)

	u, err := auth.Login("sid-1", "owner", "s3cret-pass")
	require.NoError(t, err)
	cur, err := auth.CurrentUser("sid-1")
	require.NoError(t, err)
	assert.Equal(t, u.ID, cur.ID)

	require.NoError(t, auth.Logout("sid-1"))
	_, err = auth.CurrentUser("sid-1")
	assert.ErrorIs(t, err, services.ErrNoSession)
	_, err = auth.CurrentUser("")
	assert.ErrorIs(t, err, services.ErrNoSession)
	assert.NoError(t, auth.Logout(""))
}
