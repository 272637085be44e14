package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"

	"taic-market/internal/domain"
)

const productColumns = `
	id, merchant_id, name, description, price, category, image_url,
	stock, active, created_at, updated_at
`

// ProductRepository define el contrato de persistencia para el catálogo.
type ProductRepository interface {
	Create(ctx context.Context, product domain.Product) error
	Update(ctx context.Context, product domain.Product) error
	Deactivate(ctx context.Context, id, merchantID string) error
	GetByID(ctx context.Context, id string) (domain.Product, error)
	List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
	ListByMerchant(ctx context.Context, merchantID string) ([]domain.Product, error)
	SearchByEmbedding(ctx context.Context, embedding pgvector.Vector, k int) ([]domain.Product, error)
}

// PgProductRepository implementa ProductRepository usando pgxpool.
type PgProductRepository struct {
	pool *pgxpool.Pool
}

func NewPgProductRepository(pool *pgxpool.Pool) *PgProductRepository {
	return &PgProductRepository{pool: pool}
}

func (r *PgProductRepository) Create(ctx context.Context, product domain.Product) error {
	const query = `
		INSERT INTO products (
			id, merchant_id, name, description, price, category, image_url,
			stock, active, embedding, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := r.pool.Exec(ctx, query,
		product.ID,
		product.MerchantID,
		product.Name,
		product.Description,
		product.Price,
		product.Category,
		product.ImageURL,
		product.Stock,
		product.Active,
		product.Embedding,
		product.CreatedAt,
		product.UpdatedAt,
	)
	return err
}

func (r *PgProductRepository) Update(ctx context.Context, product domain.Product) error {
	const query = `
		UPDATE products
		SET name = $3, description = $4, price = $5, category = $6,
		    image_url = $7, stock = $8, active = $9, updated_at = $10
		WHERE id = $1 AND merchant_id = $2
	`
	tag, err := r.pool.Exec(ctx, query,
		product.ID,
		product.MerchantID,
		product.Name,
		product.Description,
		product.Price,
		product.Category,
		product.ImageURL,
		product.Stock,
		product.Active,
		time.Now().UTC(),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PgProductRepository) Deactivate(ctx context.Context, id, merchantID string) error {
	const query = `
		UPDATE products SET active = FALSE, updated_at = now()
		WHERE id = $1 AND merchant_id = $2
	`
	tag, err := r.pool.Exec(ctx, query, id, merchantID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PgProductRepository) GetByID(ctx context.Context, id string) (domain.Product, error) {
	const query = `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	return r.scanProduct(r.pool.QueryRow(ctx, query, id))
}

func (r *PgProductRepository) List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var (
		conditions = []string{"active = TRUE"}
		args       []any
	)
	if q := strings.TrimSpace(filter.Query); q != "" {
		args = append(args, "%"+q+"%")
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR description ILIKE $%d)", len(args), len(args)))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		conditions = append(conditions, fmt.Sprintf("category = $%d", len(args)))
	}
	if filter.MerchantID != "" {
		args = append(args, filter.MerchantID)
		conditions = append(conditions, fmt.Sprintf("merchant_id = $%d", len(args)))
	}

	args = append(args, limit, filter.Offset)
	query := `SELECT ` + productColumns + ` FROM products WHERE ` +
		strings.Join(conditions, " AND ") +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.collectProducts(rows)
}

// ListByMerchant devuelve todos los productos del merchant, activos o no.
func (r *PgProductRepository) ListByMerchant(ctx context.Context, merchantID string) ([]domain.Product, error) {
	const query = `
		SELECT ` + productColumns + `
		FROM products
		WHERE merchant_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, merchantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.collectProducts(rows)
}

func (r *PgProductRepository) SearchByEmbedding(ctx context.Context, embedding pgvector.Vector, k int) ([]domain.Product, error) {
	if k <= 0 {
		k = 5
	}
	const query = `
		SELECT ` + productColumns + `
		FROM products
		WHERE active = TRUE AND embedding IS NOT NULL
		ORDER BY embedding <=> $1
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, embedding, k)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.collectProducts(rows)
}

func (r *PgProductRepository) collectProducts(rows pgx.Rows) ([]domain.Product, error) {
	var products []domain.Product
	for rows.Next() {
		p, err := r.scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *PgProductRepository) scanProduct(row rowScanner) (domain.Product, error) {
	var p domain.Product
	err := row.Scan(
		&p.ID,
		&p.MerchantID,
		&p.Name,
		&p.Description,
		&p.Price,
		&p.Category,
		&p.ImageURL,
		&p.Stock,
		&p.Active,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Product{}, err
	}
	return p, err
}
