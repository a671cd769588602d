package repos

import (
	"context"
	"fmt"
	"log"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver for hosted Postgres
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"artyra/internal/domain"
)

// Drivers understood by OpenDB.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "pgx"
)

// OpenDB connects to sqlite or Postgres and makes sure the schema exists.
// Queries are written with ? placeholders and rebound per driver.
func OpenDB(driver, dsn string) (*sqlx.DB, error) {
	if driver != DriverSQLite && driver != DriverPostgres {
		return nil, fmt.Errorf("unsupported db driver %q", driver)
	}
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	if driver == DriverSQLite {
		// One connection keeps ":memory:" databases shared and serializes sqlite writers.
		db.SetMaxOpenConns(1)
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}
	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	return db, nil
}

// The DDL sticks to types both sqlite and Postgres accept.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS products(
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  price BIGINT NOT NULL CHECK (price >= 0),
  stock INTEGER CHECK (stock IS NULL OR stock >= 0),
  image TEXT NOT NULL DEFAULT '',
  has_toppings BOOLEAN NOT NULL DEFAULT FALSE,
  toppings TEXT NOT NULL DEFAULT '[]',
  created_at TEXT NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_products_created_at ON products(created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_products_name ON products(name)`,

	`CREATE TABLE IF NOT EXISTS orders(
  id TEXT PRIMARY KEY,
  numeric_id BIGINT NOT NULL UNIQUE,
  customer_name TEXT NOT NULL,
  customer_class TEXT NOT NULL DEFAULT '',
  customer_wa TEXT NOT NULL,
  items TEXT NOT NULL,
  total BIGINT NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending'
    CHECK (status IN ('pending','paid','shipped','completed','cancelled')),
  notes TEXT NOT NULL DEFAULT '',
  payment_method TEXT NOT NULL CHECK (payment_method IN ('instant-transfer','cash-on-delivery')),
  delivery_info TEXT,
  created_at TEXT NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders(created_at)`,

	`CREATE TABLE IF NOT EXISTS settings(
  id INTEGER PRIMARY KEY,
  store_name TEXT NOT NULL,
  logo_url TEXT NOT NULL DEFAULT ''
)`,

	`CREATE TABLE IF NOT EXISTS cart_items(
  cart_item_id TEXT PRIMARY KEY,
  session_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  name TEXT NOT NULL,
  price BIGINT NOT NULL,
  qty INTEGER NOT NULL CHECK (qty >= 1),
  toppings TEXT NOT NULL DEFAULT '[]',
  created_at TEXT NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_cart_items_session ON cart_items(session_id)`,

	`CREATE TABLE IF NOT EXISTS users(
  id TEXT PRIMARY KEY,
  username TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL CHECK (role IN ('ADMIN'))
)`,

	`CREATE TABLE IF NOT EXISTS sessions(
  id TEXT PRIMARY KEY,
  user_id TEXT NULL REFERENCES users(id) ON DELETE SET NULL,
  last_seen TEXT
)`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id)`,
}

func ensureSchema(db *sqlx.DB) error {
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("schema: %w", err)
		}
	}
	return nil
}

// SeedProductsIfEmpty inserts the given demo products when the catalog table is empty.
func SeedProductsIfEmpty(ctx context.Context, db *sqlx.DB, products []domain.Product) error {
	var n int
	if err := db.GetContext(ctx, &n, `SELECT COUNT(*) FROM products`); err != nil {
		return err
	}
	if n > 0 || len(products) == 0 {
		return nil
	}

	log.Printf("[seed] inserting %d demo products", len(products))

	repo := NewProductRepo(db)
	base := time.Now().UTC()
	for i, p := range products {
		// Keep the dataset order when listing newest first.
		p.CreatedAt = base.Add(-time.Duration(i) * time.Second)
		if _, err := repo.Insert(ctx, p); err != nil {
			return err
		}
	}
	return nil
}
