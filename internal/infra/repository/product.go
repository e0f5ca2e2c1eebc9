package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"merch-api/internal/domain/product"
	"merch-api/internal/infra"
	"merch-api/internal/infra/db"
	"merch-api/internal/usecase/commands"
	"merch-api/internal/usecase/queries"
)

// ProductRepository is the primary product source. It sits first in the
// resolver chain, ahead of the embedded demo catalog.
type ProductRepository struct {
	pool *pgxpool.Pool
}

func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

var _ product.Source = (*ProductRepository)(nil)
var _ commands.ProductRepository = (*ProductRepository)(nil)
var _ queries.ProductReadStore = (*ProductRepository)(nil)

const productColumns = `id, name, description, price, category, image, in_stock, inventory, created_at, updated_at`

func scanProduct(row pgx.Row) (*product.Product, error) {
	var p product.Product
	var category string
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.Price, &category, &p.Image,
		&p.InStock, &p.Inventory, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Category = product.Category(category)
	return &p, nil
}

func (r *ProductRepository) Resolve(ctx context.Context, id string) (*product.Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrNotFound
		}
		return nil, infra.WrapRepoErr("failed to resolve product", err)
	}
	return p, nil
}

func (r *ProductRepository) List(ctx context.Context) ([]product.Product, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+productColumns+` FROM products ORDER BY created_at DESC`)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list products", err)
	}
	defer rows.Close()

	var products []product.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan product", err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate products", err)
	}
	return products, nil
}

func (r *ProductRepository) FindAll(ctx context.Context) ([]*queries.ProductView, error) {
	products, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]*queries.ProductView, 0, len(products))
	for i := range products {
		views = append(views, queries.FromProduct(&products[i]))
	}
	return views, nil
}

func (r *ProductRepository) FindRecent(ctx context.Context, limit int32) ([]*queries.ProductView, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+productColumns+` FROM products ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list recent products", err)
	}
	defer rows.Close()

	var views []*queries.ProductView
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan product", err)
		}
		views = append(views, queries.FromProduct(p))
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate products", err)
	}
	return views, nil
}

func (r *ProductRepository) CountAll(ctx context.Context) (int64, error) {
	var count int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM products`).Scan(&count); err != nil {
		return 0, infra.WrapRepoErr("failed to count products", err)
	}
	return count, nil
}

func (r *ProductRepository) Create(ctx context.Context, dbtx db.DBTX, p *product.Product) (string, error) {
	const query = `
		INSERT INTO products (id, name, description, price, category, image, in_stock, inventory, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())
		RETURNING id`

	id := p.ID
	if id == "" {
		id = uuid.NewString()
	}

	var created string
	err := dbtx.QueryRow(ctx, query,
		id, p.Name, p.Description, p.Price, p.Category.String(), p.Image, p.InStock, p.Inventory,
	).Scan(&created)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return "", infra.WrapRepoErr("product already exists", err, infra.KindDuplicateKey)
		}
		return "", infra.WrapRepoErr("failed to create product", err)
	}
	return created, nil
}

func (r *ProductRepository) Update(ctx context.Context, dbtx db.DBTX, p *product.Product) error {
	const query = `
		UPDATE products
		SET name = $2, description = $3, price = $4, category = $5,
		    image = $6, in_stock = $7, inventory = $8, updated_at = now()
		WHERE id = $1`

	tag, err := dbtx.Exec(ctx, query,
		p.ID, p.Name, p.Description, p.Price, p.Category.String(), p.Image, p.InStock, p.Inventory,
	)
	if err != nil {
		return infra.WrapRepoErr("failed to update product", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("product not found", nil, infra.KindNotFound)
	}
	return nil
}

func (r *ProductRepository) Delete(ctx context.Context, dbtx db.DBTX, id string) error {
	tag, err := dbtx.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return infra.WrapRepoErr("failed to delete product", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("product not found", nil, infra.KindNotFound)
	}
	return nil
}
