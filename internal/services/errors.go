package services

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError is a user-facing rejection. Compare with errors.Is against the values below.
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

var (
	ErrEmptyCart               = &ValidationError{"empty_cart", "Keranjang masih kosong."}
	ErrMissingBuyerName        = &ValidationError{"missing_buyer_name", "Nama pemesan wajib diisi."}
	ErrInvalidPhoneNumber      = &ValidationError{"invalid_phone_number", "Nomor WhatsApp tidak valid."}
	ErrPhoneNumberTooLong      = &ValidationError{"phone_number_too_long", "Nomor WhatsApp terlalu panjang."}
	ErrMissingPaymentMethod    = &ValidationError{"missing_payment_method", "Pilih metode pembayaran."}
	ErrMissingDeliverySchedule = &ValidationError{"missing_delivery_schedule", "Pilih tanggal dan jam pengiriman."}
	ErrInvalidDeliverySchedule = &ValidationError{"invalid_delivery_schedule", "Jadwal pengiriman tidak tersedia."}

	ErrOrderNotFound     = &ValidationError{"order_not_found", "Pesanan tidak ditemukan."}
	ErrUnknownStatus     = &ValidationError{"unknown_status", "Status pesanan tidak dikenal."}
	ErrInvalidTransition = &ValidationError{"invalid_transition", "Perubahan status ini tidak diizinkan."}

	ErrProductNotFound    = &ValidationError{"product_not_found", "Produk tidak ditemukan."}
	ErrSoldOut            = &ValidationError{"sold_out", "Stok produk habis."}
	ErrToppingsRequired   = &ValidationError{"toppings_required", "Pilih 1 sampai 5 topping."}
	ErrToppingsNotAllowed = &ValidationError{"toppings_not_allowed", "Produk ini tidak memakai topping."}
	ErrUnknownTopping     = &ValidationError{"unknown_topping", "Topping tidak tersedia untuk produk ini."}
	ErrCartItemNotFound   = &ValidationError{"cart_item_not_found", "Item keranjang tidak ditemukan."}
	ErrInvalidProduct     = &ValidationError{"invalid_product", "Data produk tidak valid."}
	ErrInvalidSettings    = &ValidationError{"invalid_settings", "Pengaturan toko tidak valid."}
)

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// PersistenceError wraps a failed call to the backing store.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string { return "persistence: " + e.Op + ": " + e.Err.Error() }
func (e *PersistenceError) Unwrap() error { return e.Err }

func IsPersistence(err error) bool {
	var p *PersistenceError
	return errors.As(err, &p)
}

type StockFailure struct {
	ProductID string
	Name      string
	Err       error
}

// ReconcileError reports stock decrements that failed after the status write went through.
// Decrements that succeeded are not rolled back.
type ReconcileError struct {
	Failures []StockFailure
}

func (e *ReconcileError) Error() string {
	names := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		names = append(names, fmt.Sprintf("%s (%v)", f.Name, f.Err))
	}
	return "stock reconciliation failed for " + strings.Join(names, ", ")
}
