package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/maisonluxe/storefront/internal/entity"
)

// OrderRepo implements repository.OrderRepository on Postgres.
type OrderRepo struct {
	db *sql.DB
}

// NewOrderRepo creates the repository.
func NewOrderRepo(db *sql.DB) *OrderRepo {
	return &OrderRepo{db: db}
}

// Create persists the order and its line items in one transaction.
func (r *OrderRepo) Create(ctx context.Context, order *entity.Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return &entity.PersistenceError{Op: "begin order tx", Err: err}
	}
	defer tx.Rollback()

	var customerID sql.NullString
	if order.Customer != nil {
		customerID = sql.NullString{String: order.Customer.ID, Valid: true}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO orders (id, customer_id, total_price, is_paid, is_delivered, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		order.ID, customerID, order.TotalPrice, order.IsPaid, order.IsDelivered, order.CreatedAt,
	)
	if err != nil {
		return &entity.PersistenceError{Op: "insert order", Err: err}
	}

	for _, item := range order.Items {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO order_items (order_id, product_id, name, price, quantity, image_url)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			order.ID, item.ProductID, item.Name, item.Price, item.Quantity, item.ImageURL,
		)
		if err != nil {
			return &entity.PersistenceError{Op: "insert order item", Err: err}
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE products SET stock = stock - $1 WHERE id = $2 AND stock >= $1`,
			item.Quantity, item.ProductID,
		)
		if err != nil {
			return &entity.PersistenceError{Op: "decrement stock", Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return &entity.PersistenceError{Op: "commit order tx", Err: err}
	}
	return nil
}

// FindAll returns every order with its items and customer, newest first.
func (r *OrderRepo) FindAll(ctx context.Context) ([]entity.Order, error) {
	return r.query(ctx, 0)
}

// FindRecent returns the latest orders.
func (r *OrderRepo) FindRecent(ctx context.Context, limit int) ([]entity.Order, error) {
	if limit <= 0 {
		limit = 50
	}
	return r.query(ctx, limit)
}

func (r *OrderRepo) query(ctx context.Context, limit int) ([]entity.Order, error) {
	q := `SELECT o.id, o.customer_id, c.name, c.email, o.total_price, o.is_paid, o.is_delivered, o.created_at
	      FROM orders o LEFT JOIN customers c ON c.id = o.customer_id
	      ORDER BY o.created_at DESC`
	args := []any{}
	if limit > 0 {
		q += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var orders []entity.Order
	index := map[string]int{}
	for rows.Next() {
		var o entity.Order
		var custID, custName, custEmail sql.NullString
		if err := rows.Scan(&o.ID, &custID, &custName, &custEmail,
			&o.TotalPrice, &o.IsPaid, &o.IsDelivered, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		if custID.Valid {
			o.Customer = &entity.OrderCustomer{
				ID:    custID.String,
				Name:  custName.String,
				Email: custEmail.String,
			}
		}
		index[o.ID] = len(orders)
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}
	if len(orders) == 0 {
		return orders, nil
	}

	if err := r.loadItems(ctx, orders, index); err != nil {
		return nil, err
	}
	return orders, nil
}

// loadItems attaches line items to the already-fetched orders in one query.
func (r *OrderRepo) loadItems(ctx context.Context, orders []entity.Order, index map[string]int) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT order_id, product_id, name, price, quantity, image_url
		 FROM order_items ORDER BY id`)
	if err != nil {
		return fmt.Errorf("query order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var orderID string
		var item entity.OrderItem
		if err := rows.Scan(&orderID, &item.ProductID, &item.Name,
			&item.Price, &item.Quantity, &item.ImageURL); err != nil {
			return fmt.Errorf("scan order item: %w", err)
		}
		if i, ok := index[orderID]; ok {
			orders[i].Items = append(orders[i].Items, item)
		}
	}
	return rows.Err()
}

// MarkPaid flips the payment-settled flag. The flag never reverts.
func (r *OrderRepo) MarkPaid(ctx context.Context, orderID string) error {
	return r.settle(ctx, orderID, "is_paid")
}

// MarkDelivered flips the fulfillment-settled flag. The flag never reverts.
func (r *OrderRepo) MarkDelivered(ctx context.Context, orderID string) error {
	return r.settle(ctx, orderID, "is_delivered")
}

func (r *OrderRepo) settle(ctx context.Context, orderID, column string) error {
	res, err := r.db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE orders SET %s = TRUE WHERE id = $1`, column), orderID)
	if err != nil {
		return &entity.PersistenceError{Op: "settle " + column, Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return &entity.PersistenceError{Op: "settle " + column, Err: err}
	}
	if n == 0 {
		return entity.ErrNotFound
	}
	return nil
}
