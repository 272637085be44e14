package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"taic-market/internal/domain"
)

// UserRepository define el contrato de persistencia para usuarios.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) error
	GetByID(ctx context.Context, id string) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	GetByWallet(ctx context.Context, address string) (domain.User, error)
	SetNonce(ctx context.Context, id, nonce string) error
	ClearNonce(ctx context.Context, id string) error
	CreditCashback(ctx context.Context, id string, amount decimal.Decimal) (domain.User, error)
	List(ctx context.Context, limit, offset int) ([]domain.User, error)
}

const userColumns = `
	id, email, display_name, password_hash, wallet_address, auth_nonce,
	role, balance, staked_balance, cashback_balance, created_at
`

// PgUserRepository implementa UserRepository usando pgxpool.
type PgUserRepository struct {
	pool *pgxpool.Pool
}

func NewPgUserRepository(pool *pgxpool.Pool) *PgUserRepository {
	return &PgUserRepository{pool: pool}
}

func (r *PgUserRepository) Create(ctx context.Context, user domain.User) error {
	const query = `
		INSERT INTO users (
			id, email, display_name, password_hash, wallet_address, auth_nonce,
			role, balance, staked_balance, cashback_balance, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	var email any
	if user.Email != "" {
		email = user.Email
	}
	var wallet any
	if user.WalletAddress != "" {
		wallet = user.WalletAddress
	}

	_, err := r.pool.Exec(ctx, query,
		user.ID,
		email,
		user.DisplayName,
		user.PasswordHash,
		wallet,
		user.AuthNonce,
		user.Role,
		user.Balance,
		user.StakedBalance,
		user.CashbackBalance,
		user.CreatedAt,
	)
	return err
}

func (r *PgUserRepository) GetByID(ctx context.Context, id string) (domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanUser(r.pool.QueryRow(ctx, query, id))
}

func (r *PgUserRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.scanUser(r.pool.QueryRow(ctx, query, email))
}

func (r *PgUserRepository) GetByWallet(ctx context.Context, address string) (domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE wallet_address = $1`
	return r.scanUser(r.pool.QueryRow(ctx, query, address))
}

func (r *PgUserRepository) SetNonce(ctx context.Context, id, nonce string) error {
	const query = `UPDATE users SET auth_nonce = $2 WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id, nonce)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PgUserRepository) ClearNonce(ctx context.Context, id string) error {
	const query = `UPDATE users SET auth_nonce = NULL WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}

func (r *PgUserRepository) CreditCashback(ctx context.Context, id string, amount decimal.Decimal) (domain.User, error) {
	const query = `
		UPDATE users SET cashback_balance = cashback_balance + $2
		WHERE id = $1
		RETURNING ` + userColumns
	return r.scanUser(r.pool.QueryRow(ctx, query, id, amount))
}

func (r *PgUserRepository) List(ctx context.Context, limit, offset int) ([]domain.User, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	const query = `
		SELECT ` + userColumns + `
		FROM users
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := r.scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *PgUserRepository) scanUser(row rowScanner) (domain.User, error) {
	var (
		u      domain.User
		email  *string
		wallet *string
	)
	err := row.Scan(
		&u.ID,
		&email,
		&u.DisplayName,
		&u.PasswordHash,
		&wallet,
		&u.AuthNonce,
		&u.Role,
		&u.Balance,
		&u.StakedBalance,
		&u.CashbackBalance,
		&u.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, err
	}
	if email != nil {
		u.Email = *email
	}
	if wallet != nil {
		u.WalletAddress = *wallet
	}
	return u, err
}
