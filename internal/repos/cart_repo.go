package repos

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"artyra/internal/domain"
)

// CartRepo keeps session carts. Each row is a snapshot of the product taken when it was added.
type CartRepo struct{ db *sqlx.DB }

func NewCartRepo(db *sqlx.DB) *CartRepo { return &CartRepo{db: db} }

type cartItemRow struct {
	CartItemID string `db:"cart_item_id"`
	ProductID  string `db:"product_id"`
	Name       string `db:"name"`
	Price      int64  `db:"price"`
	Qty        int    `db:"qty"`
	Toppings   string `db:"toppings"`
	CreatedAt  string `db:"created_at"`
}

// Add appends a new line and returns its cart item id.
func (r *CartRepo) Add(ctx context.Context, sessionID string, p domain.Product, qty int, toppings []string) (string, error) {
	if toppings == nil {
		toppings = []string{}
	}
	tj, err := json.Marshal(toppings)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()
	_, err = r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO cart_items(cart_item_id, session_id, product_id, name, price, qty, toppings, created_at)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?)
	`), id, sessionID, p.ID, p.Name, p.Price, qty, string(tj), formatTS(time.Now()))
	if err != nil {
		return "", err
	}
	return id, nil
}

// Items returns the session's lines in the order they were added.
func (r *CartRepo) Items(ctx context.Context, sessionID string) ([]domain.CartItem, error) {
	rows := []cartItemRow{}
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(`
	  SELECT cart_item_id, product_id, name, price, qty, toppings, created_at
	  FROM cart_items
	  WHERE session_id = ?
	  ORDER BY created_at, cart_item_id
	`), sessionID); err != nil {
		return nil, err
	}
	out := make([]domain.CartItem, 0, len(rows))
	for _, row := range rows {
		it := domain.CartItem{
			CartItemID: row.CartItemID,
			Product:    domain.Product{ID: row.ProductID, Name: row.Name, Price: row.Price},
			Quantity:   row.Qty,
			Toppings:   []string{},
		}
		if err := json.Unmarshal([]byte(row.Toppings), &it.Toppings); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, nil
}

// Remove deletes one line of the session's cart. Unknown lines yield sql.ErrNoRows.
func (r *CartRepo) Remove(ctx context.Context, sessionID, cartItemID string) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM cart_items WHERE session_id = ? AND cart_item_id = ?`), sessionID, cartItemID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *CartRepo) Clear(ctx context.Context, sessionID string) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM cart_items WHERE session_id = ?`), sessionID)
	return err
}
