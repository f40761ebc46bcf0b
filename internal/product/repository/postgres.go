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
	"github.com/purushotam56/hatiri-storefront-service/internal/product/dto"
	"github.com/purushotam56/hatiri-storefront-service/pkg/database/postgres"
)

var sortableColumns = map[string]string{
	"name":       "name",
	"price":      "price",
	"created_at": "created_at",
	"updated_at": "updated_at",
}

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) ext(ctx context.Context) sqlx.ExtContext {
	return postgres.ExecutorFrom(ctx, r.DB)
}

func (r *PGRepository) CreateGroup(ctx context.Context, group *model.ProductGroup) error {
	query := `
        INSERT INTO product_groups (
            id, org_id, name, description, base_sku, base_stock,
            unit, stock_merge_type, banner_url, gallery_urls,
            created_at, updated_at
        )
        VALUES (
            :id, :org_id, :name, :description, :base_sku, :base_stock,
            :unit, :stock_merge_type, :banner_url, :gallery_urls,
            :created_at, :updated_at
        )
    `
	_, err := sqlx.NamedExecContext(ctx, r.ext(ctx), query, group)
	if err != nil {
		return pkgerrors.Wrap(err, "failed to create product group")
	}
	return nil
}

func (r *PGRepository) UpdateGroup(ctx context.Context, group *model.ProductGroup) error {
	query := `
        UPDATE product_groups
        SET name = :name,
            description = :description,
            base_sku = :base_sku,
            base_stock = :base_stock,
            unit = :unit,
            stock_merge_type = :stock_merge_type,
            banner_url = :banner_url,
            gallery_urls = :gallery_urls,
            updated_at = :updated_at
        WHERE id = :id
    `
	result, err := sqlx.NamedExecContext(ctx, r.ext(ctx), query, group)
	if err != nil {
		return pkgerrors.Wrap(err, "failed to update product group")
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *PGRepository) GetGroupByID(ctx context.Context, id string) (*model.ProductGroup, error) {
	var group model.ProductGroup
	err := sqlx.GetContext(ctx, r.ext(ctx), &group, `SELECT * FROM product_groups WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &group, nil
}

func (r *PGRepository) FindGroupsByIDs(ctx context.Context, ids []string) ([]model.ProductGroup, error) {
	if len(ids) == 0 {
		return []model.ProductGroup{}, nil
	}

	query, args, err := sqlx.In(`SELECT * FROM product_groups WHERE id IN (?)`, ids)
	if err != nil {
		return nil, err
	}
	ext := r.ext(ctx)
	query = ext.Rebind(query)

	var groups []model.ProductGroup
	err = sqlx.SelectContext(ctx, ext, &groups, query, args...)
	return groups, err
}

func (r *PGRepository) FindByGroup(ctx context.Context, groupID string) ([]model.Product, error) {
	var products []model.Product
	err := sqlx.SelectContext(ctx, r.ext(ctx), &products,
		`SELECT * FROM products WHERE group_id = $1 ORDER BY created_at ASC`, groupID)
	return products, err
}

func (r *PGRepository) Create(ctx context.Context, product *model.Product) error {
	query := `
        INSERT INTO products (
            id, org_id, group_id, name, sku, price, discount_price,
            stock, unit, quantity, banner_url, gallery_urls, is_active,
            created_at, updated_at
        )
        VALUES (
            :id, :org_id, :group_id, :name, :sku, :price, :discount_price,
            :stock, :unit, :quantity, :banner_url, :gallery_urls, :is_active,
            :created_at, :updated_at
        )
    `
	_, err := sqlx.NamedExecContext(ctx, r.ext(ctx), query, product)
	if err != nil {
		return pkgerrors.Wrap(err, "failed to create product")
	}
	return nil
}

func (r *PGRepository) Update(ctx context.Context, product *model.Product) error {
	query := `
        UPDATE products
        SET name = :name,
            sku = :sku,
            price = :price,
            discount_price = :discount_price,
            stock = :stock,
            unit = :unit,
            quantity = :quantity,
            banner_url = :banner_url,
            gallery_urls = :gallery_urls,
            is_active = :is_active,
            updated_at = :updated_at
        WHERE id = :id
    `
	result, err := sqlx.NamedExecContext(ctx, r.ext(ctx), query, product)
	if err != nil {
		return pkgerrors.Wrap(err, "failed to update product")
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.Product, error) {
	var product model.Product
	err := sqlx.GetContext(ctx, r.ext(ctx), &product, `SELECT * FROM products WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

func (r *PGRepository) FindByIDs(ctx context.Context, ids []string) ([]model.Product, error) {
	if len(ids) == 0 {
		return []model.Product{}, nil
	}

	query, args, err := sqlx.In(`SELECT * FROM products WHERE id IN (?)`, ids)
	if err != nil {
		return nil, err
	}
	ext := r.ext(ctx)
	query = ext.Rebind(query)

	var products []model.Product
	err = sqlx.SelectContext(ctx, ext, &products, query, args...)
	return products, err
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.ProductFilters) ([]model.Product, int, error) {
	var products []model.Product
	var count int

	conditions := []string{}
	args := map[string]interface{}{}

	if f.OrgID != "" {
		conditions = append(conditions, "org_id = :org_id")
		args["org_id"] = f.OrgID
	}
	if f.GroupID != "" {
		conditions = append(conditions, "group_id = :group_id")
		args["group_id"] = f.GroupID
	}
	if f.IsActive != nil {
		conditions = append(conditions, "is_active = :is_active")
		args["is_active"] = *f.IsActive
	}
	if f.SearchQuery != "" {
		conditions = append(conditions, "(name ILIKE :search OR sku ILIKE :search)")
		args["search"] = "%" + f.SearchQuery + "%"
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := "SELECT count(*) FROM products" + whereClause
	rows, err := sqlx.NamedQueryContext(ctx, r.ext(ctx), countQuery, args)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	if rows.Next() {
		rows.Scan(&count)
	}

	orderBy := "created_at"
	if col, ok := sortableColumns[f.SortBy]; ok {
		orderBy = col
	}
	direction := "DESC"
	if strings.EqualFold(f.SortOrder, "asc") {
		direction = "ASC"
	}

	query := "SELECT * FROM products" + whereClause + fmt.Sprintf(" ORDER BY %s %s", orderBy, direction)
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

	err = sqlx.SelectContext(ctx, ext, &products, namedQuery, namedArgs...)
	return products, count, err
}

func (r *PGRepository) Delete(ctx context.Context, id string) error {
	_, err := r.ext(ctx).ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	return pkgerrors.Wrap(err, "failed to delete product")
}

func (r *PGRepository) IsSKUUnique(ctx context.Context, orgID, sku, excludeID string) (bool, error) {
	var count int
	query := `SELECT count(*) FROM products WHERE org_id = $1 AND sku = $2 AND id != $3`
	err := sqlx.GetContext(ctx, r.ext(ctx), &count, query, orgID, sku, excludeID)
	if err != nil {
		return false, err
	}
	return count == 0, nil
}
