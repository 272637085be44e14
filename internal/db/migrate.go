package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"taic-market/internal/db/migrations"
)

// RunMigrations aplica las migraciones embebidas usando goose.
func RunMigrations(ctx context.Context, dsn string) error {
	conn, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("db open error: %w", err)
	}
	defer conn.Close()

	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	if err := goose.UpContext(ctx, conn, "."); err != nil {
		return fmt.Errorf("migrations error: %w", err)
	}

	return nil
}
