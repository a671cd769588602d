package repos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"artyra/internal/domain"
)

type ProductRepo struct{ db *sqlx.DB }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

// List returns the catalog newest first.
func (r *ProductRepo) List(ctx context.Context) ([]domain.Product, error) {
	var rows []productRow
	if err := r.db.SelectContext(ctx, &rows, `
  SELECT `+productCols+`
  FROM products
  ORDER BY created_at DESC
`); err != nil {
		return nil, err
	}
	out := make([]domain.Product, 0, len(rows))
	for _, row := range rows {
		p, err := rowToProduct(row)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// Insert assigns the id (and creation time when unset) and returns the stored product.
func (r *ProductRepo) Insert(ctx context.Context, p domain.Product) (domain.Product, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	in, err := productToRow(p)
	if err != nil {
		return domain.Product{}, err
	}
	var out productRow
	err = r.db.GetContext(ctx, &out, r.db.Rebind(`
  INSERT INTO products(id, name, description, price, stock, image, has_toppings, toppings, created_at)
  VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)
  RETURNING `+productCols),
		in.ID, in.Name, in.Description, in.Price, in.Stock, in.Image, in.HasToppings, in.Toppings, in.CreatedAt)
	if err != nil {
		return domain.Product{}, err
	}
	return rowToProduct(out)
}

// Update replaces the editable fields of p.ID. Missing ids yield sql.ErrNoRows.
func (r *ProductRepo) Update(ctx context.Context, p domain.Product) (domain.Product, error) {
	in, err := productToRow(p)
	if err != nil {
		return domain.Product{}, err
	}
	var out productRow
	err = r.db.GetContext(ctx, &out, r.db.Rebind(`
  UPDATE products
  SET name = ?, description = ?, price = ?, stock = ?, image = ?, has_toppings = ?, toppings = ?
  WHERE id = ?
  RETURNING `+productCols),
		in.Name, in.Description, in.Price, in.Stock, in.Image, in.HasToppings, in.Toppings, in.ID)
	if err != nil {
		return domain.Product{}, err
	}
	return rowToProduct(out)
}

func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM products WHERE id = ?`), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DecrementStock subtracts qty from a tracked product in one statement, clamping at zero,
// and returns the new counter. Unlimited or missing products yield sql.ErrNoRows.
func (r *ProductRepo) DecrementStock(ctx context.Context, id string, qty int) (int, error) {
	var stock int
	err := r.db.GetContext(ctx, &stock, r.db.Rebind(`
  UPDATE products
  SET stock = CASE WHEN stock > ? THEN stock - ? ELSE 0 END
  WHERE id = ? AND stock IS NOT NULL
  RETURNING stock`), qty, qty, id)
	if err != nil {
		return 0, err
	}
	return stock, nil
}
