package data

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/SquizAI/JMEFIT-V3/internal/data/pgxutil"
	"github.com/SquizAI/JMEFIT-V3/internal/domain/model"
	apperrors "github.com/SquizAI/JMEFIT-V3/internal/errors"
)

// OrderRepo provides database operations for orders. It implements
// ports.OrderRepo.
type OrderRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewOrderRepo creates a new OrderRepo with real time provider.
func NewOrderRepo(db *sql.DB) *OrderRepo {
	return &OrderRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// NewOrderRepoWithTimeProvider creates an OrderRepo with a custom time provider (useful for tests).
func NewOrderRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *OrderRepo {
	return &OrderRepo{DB: db, timeProvider: tp}
}

// Create inserts the order and its items in one transaction. A zero ID
// is assigned; CreatedAt is stamped by the repo.
func (r *OrderRepo) Create(ctx context.Context, order *model.Order) error {
	if order == nil {
		return apperrors.Validation("order is required")
	}
	if err := order.Validate(); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeValidation, "Order could not be recorded.")
	}
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	order.CreatedAt = r.timeProvider.Now().UTC()

	err := pgxutil.WithPgxTx(ctx, r.DB, pgxutil.TxConfig{Fn: func(tx pgx.Tx) error {
		if _, execErr := tx.Exec(ctx, `
			INSERT INTO orders (id, uid, total_cents, created_at)
			VALUES ($1, $2, $3, $4)
		`, order.ID, order.UID, order.TotalCents, order.CreatedAt); execErr != nil {
			return execErr
		}
		for _, it := range order.Items {
			if _, execErr := tx.Exec(ctx, `
				INSERT INTO order_items (order_id, offering_id, title, price_cents, duration, location, type)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
			`, order.ID, it.OfferingID, it.Title, it.PriceCents, it.Duration, it.Location, it.Type); execErr != nil {
				return execErr
			}
		}
		return nil
	}})
	if err != nil {
		return apperrors.MapDBError(fmt.Errorf("create order: %w", err))
	}
	return nil
}

// ListByUser returns the user's orders, newest first, items in insertion order.
func (r *OrderRepo) ListByUser(ctx context.Context, uid string) ([]model.Order, error) {
	var orders []model.Order
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, queryErr := conn.Query(ctx, `
			SELECT id, uid, total_cents, created_at
			FROM orders
			WHERE uid = $1
			ORDER BY created_at DESC
		`, uid)
		if queryErr != nil {
			return queryErr
		}
		defer rows.Close()

		for rows.Next() {
			var o model.Order
			if scanErr := rows.Scan(&o.ID, &o.UID, &o.TotalCents, &o.CreatedAt); scanErr != nil {
				return scanErr
			}
			orders = append(orders, o)
		}
		if rowsErr := rows.Err(); rowsErr != nil {
			return rowsErr
		}

		for i := range orders {
			items, itemsErr := r.itemsFor(ctx, conn, orders[i].ID)
			if itemsErr != nil {
				return itemsErr
			}
			orders[i].Items = items
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.MapDBError(fmt.Errorf("list orders: %w", err))
	}
	return orders, nil
}

func (r *OrderRepo) itemsFor(ctx context.Context, conn *pgx.Conn, orderID string) ([]model.OrderItem, error) {
	rows, err := conn.Query(ctx, `
		SELECT offering_id, title, price_cents, duration, location, type
		FROM order_items
		WHERE order_id = $1
		ORDER BY id
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []model.OrderItem
	for rows.Next() {
		var it model.OrderItem
		if scanErr := rows.Scan(&it.OfferingID, &it.Title, &it.PriceCents, &it.Duration, &it.Location, &it.Type); scanErr != nil {
			return nil, scanErr
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
