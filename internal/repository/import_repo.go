package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"taic-market/internal/domain"
)

// ImportRepository registra los imports masivos de productos.
type ImportRepository interface {
	Create(ctx context.Context, imp domain.BulkImport) error
	List(ctx context.Context, limit, offset int) ([]domain.BulkImport, error)
}

// PgImportRepository implementa ImportRepository usando pgxpool.
type PgImportRepository struct {
	pool *pgxpool.Pool
}

func NewPgImportRepository(pool *pgxpool.Pool) *PgImportRepository {
	return &PgImportRepository{pool: pool}
}

func (r *PgImportRepository) Create(ctx context.Context, imp domain.BulkImport) error {
	const query = `
		INSERT INTO bulk_imports (
			id, merchant_id, object_key, row_count, created_count,
			error_count, status, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.pool.Exec(ctx, query,
		imp.ID,
		imp.MerchantID,
		imp.ObjectKey,
		imp.RowCount,
		imp.CreatedCount,
		imp.ErrorCount,
		imp.Status,
		imp.CreatedAt,
	)
	return err
}

func (r *PgImportRepository) List(ctx context.Context, limit, offset int) ([]domain.BulkImport, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	const query = `
		SELECT id, merchant_id, object_key, row_count, created_count,
		       error_count, status, created_at
		FROM bulk_imports
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var imports []domain.BulkImport
	for rows.Next() {
		var imp domain.BulkImport
		if err := rows.Scan(
			&imp.ID,
			&imp.MerchantID,
			&imp.ObjectKey,
			&imp.RowCount,
			&imp.CreatedCount,
			&imp.ErrorCount,
			&imp.Status,
			&imp.CreatedAt,
		); err != nil {
			return nil, err
		}
		imports = append(imports, imp)
	}
	return imports, rows.Err()
}
