package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	pkgerrors "github.com/pkg/errors"

	"github.com/purushotam56/hatiri-storefront-service/internal/model"
	"github.com/purushotam56/hatiri-storefront-service/internal/order/dto"
	"github.com/purushotam56/hatiri-storefront-service/pkg/database/postgres"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) ext(ctx context.Context) sqlx.ExtContext {
	return postgres.ExecutorFrom(ctx, r.DB)
}

func (r *PGRepository) Create(ctx context.Context, o *model.Order) error {
	ext := r.ext(ctx)

	orderQuery := `
        INSERT INTO orders (
            id, customer_name, customer_phone, delivery_address,
            status, total_amount, stock_committed_at, created_at, updated_at
        )
        VALUES (
            :id, :customer_name, :customer_phone, :delivery_address,
            :status, :total_amount, :stock_committed_at, :created_at, :updated_at
        )
    `
	if _, err := sqlx.NamedExecContext(ctx, ext, orderQuery, o); err != nil {
		return pkgerrors.Wrap(err, "insert order")
	}

	itemQuery := `
        INSERT INTO order_items (id, order_id, product_id, quantity, unit_price)
        VALUES (:id, :order_id, :product_id, :quantity, :unit_price)
    `
	for i := range o.Items {
		if _, err := sqlx.NamedExecContext(ctx, ext, itemQuery, &o.Items[i]); err != nil {
			return pkgerrors.Wrap(err, "insert order item")
		}
	}
	return nil
}

func (r *PGRepository) GetByID(ctx context.Context, id string) (*model.Order, error) {
	return r.getByID(ctx, id, false)
}

func (r *PGRepository) GetByIDForUpdate(ctx context.Context, id string) (*model.Order, error) {
	return r.getByID(ctx, id, true)
}

func (r *PGRepository) getByID(ctx context.Context, id string, forUpdate bool) (*model.Order, error) {
	ext := r.ext(ctx)

	query := `SELECT * FROM orders WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	var o model.Order
	err := sqlx.GetContext(ctx, ext, &o, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	itemsQuery := `SELECT * FROM order_items WHERE order_id = $1 ORDER BY id`
	if err := sqlx.SelectContext(ctx, ext, &o.Items, itemsQuery, id); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *PGRepository) UpdateStatus(ctx context.Context, o *model.Order) error {
	query := `
        UPDATE orders
        SET status = :status,
            stock_committed_at = :stock_committed_at,
            updated_at = :updated_at
        WHERE id = :id
    `
	res, err := sqlx.NamedExecContext(ctx, r.ext(ctx), query, o)
	if err != nil {
		return pkgerrors.Wrap(err, "update order status")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.OrderFilters) ([]model.Order, int, error) {
	var orders []model.Order
	var count int

	conditions := []string{}
	args := map[string]interface{}{}

	if f.Status != "" {
		conditions = append(conditions, "status = :status")
		args["status"] = f.Status
	}
	if f.CustomerPhone != "" {
		conditions = append(conditions, "customer_phone = :customer_phone")
		args["customer_phone"] = f.CustomerPhone
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	ext := r.ext(ctx)

	countQuery := "SELECT count(*) FROM orders" + whereClause
	rows, err := sqlx.NamedQueryContext(ctx, ext, countQuery, args)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	if rows.Next() {
		rows.Scan(&count)
	}

	query := "SELECT * FROM orders" + whereClause + " ORDER BY created_at DESC"
	if f.PageSize > 0 {
		offset := (f.Page - 1) * f.PageSize
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, offset)
	}

	namedQuery, namedArgs, err := sqlx.Named(query, args)
	if err != nil {
		return nil, 0, err
	}
	namedQuery = ext.Rebind(namedQuery)
	if err := sqlx.SelectContext(ctx, ext, &orders, namedQuery, namedArgs...); err != nil {
		return nil, 0, err
	}
	return orders, count, nil
}

func (r *PGRepository) OwnedByOrg(ctx context.Context, orderID, orgID string) (bool, error) {
	query := `
        SELECT EXISTS (
            SELECT 1
            FROM order_items oi
            JOIN products p ON p.id = oi.product_id
            WHERE oi.order_id = $1 AND p.org_id = $2
        )
    `
	var owned bool
	err := sqlx.GetContext(ctx, r.ext(ctx), &owned, query, orderID, orgID)
	return owned, err
}
