package repos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"artyra/internal/domain"
)

type OrderRepo struct{ db *sqlx.DB }

func NewOrderRepo(db *sqlx.DB) *OrderRepo { return &OrderRepo{db: db} }

// List returns every order, newest first.
func (r *OrderRepo) List(ctx context.Context) ([]domain.Order, error) {
	var rows []orderRow
	if err := r.db.SelectContext(ctx, &rows, `
		SELECT `+orderCols+`
		FROM orders
		ORDER BY created_at DESC, numeric_id DESC
	`); err != nil {
		return nil, err
	}
	out := make([]domain.Order, 0, len(rows))
	for _, row := range rows {
		o, err := rowToOrder(row)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

// Insert stores a new order and returns it as read back from the table.
func (r *OrderRepo) Insert(ctx context.Context, o domain.Order) (domain.Order, error) {
	in, err := orderToRow(o)
	if err != nil {
		return domain.Order{}, err
	}
	var out orderRow
	err = r.db.GetContext(ctx, &out, r.db.Rebind(`
	  INSERT INTO orders
	    (id, numeric_id, customer_name, customer_class, customer_wa, items, total, status, notes, payment_method, delivery_info, created_at)
	  VALUES
	    (?,  ?,          ?,             ?,              ?,           ?,     ?,     ?,      ?,     ?,              ?,             ?)
	  RETURNING `+orderCols),
		in.ID, in.NumericID, in.CustomerName, in.CustomerClass, in.CustomerWA, in.Items, in.Total,
		in.Status, in.Notes, in.PaymentMethod, in.DeliveryInfo, in.CreatedAt)
	if err != nil {
		return domain.Order{}, err
	}
	return rowToOrder(out)
}

// UpdateStatus sets the status of order id. Missing ids yield sql.ErrNoRows.
func (r *OrderRepo) UpdateStatus(ctx context.Context, id string, status domain.Status) (domain.Order, error) {
	var out orderRow
	err := r.db.GetContext(ctx, &out, r.db.Rebind(`
		UPDATE orders SET status = ? WHERE id = ?
		RETURNING `+orderCols), string(status), id)
	if err != nil {
		return domain.Order{}, err
	}
	return rowToOrder(out)
}
