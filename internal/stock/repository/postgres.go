package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/purushotam56/hatiri-storefront-service/internal/apperrors"
	"github.com/purushotam56/hatiri-storefront-service/internal/model"
	"github.com/purushotam56/hatiri-storefront-service/internal/stock/dto"
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

func (r *PGRepository) GetProductsForUpdate(ctx context.Context, ids []string) ([]model.Product, error) {
	if len(ids) == 0 {
		return []model.Product{}, nil
	}

	query, args, err := sqlx.In(`SELECT * FROM products WHERE id IN (?) FOR UPDATE`, ids)
	if err != nil {
		return nil, err
	}
	ext := r.ext(ctx)
	query = ext.Rebind(query)

	var products []model.Product
	err = sqlx.SelectContext(ctx, ext, &products, query, args...)
	return products, err
}

func (r *PGRepository) GetGroupsForUpdate(ctx context.Context, ids []string) ([]model.ProductGroup, error) {
	if len(ids) == 0 {
		return []model.ProductGroup{}, nil
	}

	query, args, err := sqlx.In(`SELECT * FROM product_groups WHERE id IN (?) FOR UPDATE`, ids)
	if err != nil {
		return nil, err
	}
	ext := r.ext(ctx)
	query = ext.Rebind(query)

	var groups []model.ProductGroup
	err = sqlx.SelectContext(ctx, ext, &groups, query, args...)
	return groups, err
}

func (r *PGRepository) ApplyProductDelta(ctx context.Context, productID string, delta int64) (int64, int64, error) {
	// The guard keeps the counter non-negative even if two writers raced to
	// this point; zero rows affected means the debit cannot be satisfied.
	query := `
        UPDATE products
        SET stock = stock + $1, updated_at = now()
        WHERE id = $2 AND stock + $1 >= 0
        RETURNING stock
    `
	var after int64
	err := sqlx.GetContext(ctx, r.ext(ctx), &after, query, delta, productID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, 0, apperrors.InsufficientStock("insufficient stock for product %s", productID)
		}
		return 0, 0, err
	}
	return after - delta, after, nil
}

func (r *PGRepository) ApplyGroupDelta(ctx context.Context, groupID string, delta int64) (int64, int64, error) {
	query := `
        UPDATE product_groups
        SET base_stock = base_stock + $1, updated_at = now()
        WHERE id = $2 AND base_stock + $1 >= 0
        RETURNING base_stock
    `
	var after int64
	err := sqlx.GetContext(ctx, r.ext(ctx), &after, query, delta, groupID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, 0, apperrors.InsufficientStock("insufficient shared stock for product group %s", groupID)
		}
		return 0, 0, err
	}
	return after - delta, after, nil
}

func (r *PGRepository) LogMovement(ctx context.Context, m *model.StockMovement) error {
	query := `
        INSERT INTO stock_movements (
            id, org_id, product_id, group_id,
            movement_type, quantity_change, quantity_before, quantity_after,
            reference_type, reference_id, notes, created_at
        )
        VALUES (
            :id, :org_id, :product_id, :group_id,
            :movement_type, :quantity_change, :quantity_before, :quantity_after,
            :reference_type, :reference_id, :notes, :created_at
        )
    `
	_, err := sqlx.NamedExecContext(ctx, r.ext(ctx), query, m)
	return err
}

func (r *PGRepository) ListMovements(ctx context.Context, f *dto.MovementFilters) ([]model.StockMovement, int, error) {
	var items []model.StockMovement
	var count int

	conditions := []string{}
	args := map[string]interface{}{}

	if f.OrgID != "" {
		conditions = append(conditions, "org_id = :org_id")
		args["org_id"] = f.OrgID
	}
	if f.ProductID != "" {
		conditions = append(conditions, "product_id = :product_id")
		args["product_id"] = f.ProductID
	}
	if f.GroupID != "" {
		conditions = append(conditions, "group_id = :group_id")
		args["group_id"] = f.GroupID
	}
	if f.MovementType != "" {
		conditions = append(conditions, "movement_type = :movement_type")
		args["movement_type"] = f.MovementType
	}
	if f.StartDate != nil {
		conditions = append(conditions, "created_at >= :start_date")
		args["start_date"] = *f.StartDate
	}
	if f.EndDate != nil {
		conditions = append(conditions, "created_at <= :end_date")
		args["end_date"] = *f.EndDate
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := "SELECT count(*) FROM stock_movements" + whereClause
	rows, err := sqlx.NamedQueryContext(ctx, r.ext(ctx), countQuery, args)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	if rows.Next() {
		rows.Scan(&count)
	}

	query := "SELECT * FROM stock_movements" + whereClause + " ORDER BY created_at DESC"
	if f.PageSize > 0 {
		offset := (f.Page - 1) * f.PageSize
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, offset)
	}

	namedQuery, namedArgs, err := sqlx.Named(query, args)
	if err != nil {
		return nil, 0, err
	}
	ext := r.ext(ctx)
	namedQuery = ext.Rebind(namedQuery)

	err = sqlx.SelectContext(ctx, ext, &items, namedQuery, namedArgs...)
	return items, count, err
}
