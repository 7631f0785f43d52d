package order

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"storefront-orders/internal/domain"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	uid, ok := parseID(userID)
	if !ok {
		return []domain.Order{}, nil
	}
	const q = `
SELECT id::text, user_id::text, order_date, total_amount::text, status,
       COALESCE(shipment_status, ''), COALESCE(shipment_id, '')
FROM orders
WHERE user_id = $1
ORDER BY order_date DESC, id DESC
`
	rows, err := r.pool.Query(ctx, q, uid)
	if err != nil {
		r.logger.Printf("order repo: list user_id=%s error=%v", userID, err)
		return nil, err
	}
	defer rows.Close()

	result := []domain.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *o)
	}
	if err := rows.Err(); err != nil {
		r.logger.Printf("order repo: list rows user_id=%s error=%v", userID, err)
		return nil, err
	}
	if err := r.attachItems(ctx, result); err != nil {
		return nil, err
	}
	r.logger.Printf("order repo: list user_id=%s count=%d", userID, len(result))
	return result, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	oid, ok := parseID(id)
	if !ok {
		return nil, domain.ErrNotFound
	}
	const q = `
SELECT id::text, user_id::text, order_date, total_amount::text, status,
       COALESCE(shipment_status, ''), COALESCE(shipment_id, '')
FROM orders
WHERE id = $1
`
	o, err := scanOrder(r.pool.QueryRow(ctx, q, oid))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Printf("order repo: get id=%s not found", id)
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("order repo: get id=%s error=%v", id, err)
		return nil, err
	}
	orders := []domain.Order{*o}
	if err := r.attachItems(ctx, orders); err != nil {
		return nil, err
	}
	return &orders[0], nil
}

func (r *postgresRepo) Create(ctx context.Context, in CreateOrderInput) (*domain.Order, error) {
	uid, ok := parseID(in.UserID)
	if !ok {
		return nil, fmt.Errorf("order repo: invalid user id %q", in.UserID)
	}
	if in.OrderDate.IsZero() {
		in.OrderDate = time.Now()
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	const insertOrder = `
INSERT INTO orders (user_id, order_date, total_amount, status, shipment_status, shipment_id)
VALUES ($1, $2, $3::text::numeric, $4, NULLIF($5, ''), NULLIF($6, ''))
RETURNING id
`
	var orderID int64
	if err := tx.QueryRow(ctx, insertOrder,
		uid, in.OrderDate, in.Total().String(), string(in.Status), in.ShipmentStatus, in.ShipmentID,
	).Scan(&orderID); err != nil {
		r.logger.Printf("order repo: create user_id=%s error=%v", in.UserID, err)
		return nil, err
	}

	const insertItem = `
INSERT INTO order_items (order_id, product_id, quantity, price)
VALUES ($1, $2, $3, $4::text::numeric)
`
	for _, it := range in.Items {
		pid, ok := parseID(it.ProductID)
		if !ok {
			return nil, fmt.Errorf("order repo: invalid product id %q", it.ProductID)
		}
		if _, err := tx.Exec(ctx, insertItem, orderID, pid, it.Quantity, it.UnitPrice.String()); err != nil {
			r.logger.Printf("order repo: create item order_id=%d product_id=%s error=%v", orderID, it.ProductID, err)
			return nil, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	r.logger.Printf("order repo: created id=%d user_id=%s items=%d", orderID, in.UserID, len(in.Items))
	return r.GetByID(ctx, strconv.FormatInt(orderID, 10))
}

func (r *postgresRepo) attachItems(ctx context.Context, orders []domain.Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(orders))
	index := make(map[string]int, len(orders))
	for i, o := range orders {
		id, _ := parseID(o.ID)
		ids = append(ids, id)
		index[o.ID] = i
		orders[i].Items = []domain.OrderItem{}
	}

	const q = `
SELECT id::text, order_id::text, product_id::text, quantity, price::text
FROM order_items
WHERE order_id = ANY($1)
ORDER BY order_id, id
`
	rows, err := r.pool.Query(ctx, q, ids)
	if err != nil {
		r.logger.Printf("order repo: items orders=%d error=%v", len(ids), err)
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			it      domain.OrderItem
			orderID string
			price   string
		)
		if err := rows.Scan(&it.ID, &orderID, &it.ProductID, &it.Quantity, &price); err != nil {
			return err
		}
		if it.UnitPrice, err = decimal.NewFromString(price); err != nil {
			return fmt.Errorf("order repo: item %s price %q: %w", it.ID, price, err)
		}
		if i, ok := index[orderID]; ok {
			orders[i].Items = append(orders[i].Items, it)
		}
	}
	return rows.Err()
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var (
		o      domain.Order
		date   time.Time
		total  string
		status string
	)
	if err := row.Scan(&o.ID, &o.OwnerUserID, &date, &total, &status, &o.ShipmentStatus, &o.ShipmentID); err != nil {
		return nil, err
	}
	amount, err := decimal.NewFromString(total)
	if err != nil {
		return nil, fmt.Errorf("order repo: order %s total %q: %w", o.ID, total, err)
	}
	o.TotalAmount = amount
	o.OrderDate = date.UTC().Format(time.RFC3339)
	o.Status = domain.OrderStatus(status)
	return &o, nil
}

// parseID reports whether id is a valid row key. Anything else cannot match.
func parseID(id string) (int64, bool) {
	v, err := strconv.ParseInt(domain.NormalizeID(id), 10, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}
