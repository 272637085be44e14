package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"taic-market/internal/domain"
)

var (
	// ErrInsufficientBalance indica que el balance disponible no cubre el monto.
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrStakeNotActive indica que el stake no existe o ya fue retirado.
	ErrStakeNotActive = errors.New("stake not found or already unstaked")
	// ErrStakeForbidden indica que el stake pertenece a otro usuario.
	ErrStakeForbidden = errors.New("stake owned by another user")
)

// UnstakeResult resume el estado posterior a un unstake exitoso.
type UnstakeResult struct {
	Stake       domain.Stake
	NewBalance  decimal.Decimal
	TotalStaked decimal.Decimal
}

// StakeRepository define operaciones sobre el ledger de staking. Las
// mutaciones son transaccionales: todo o nada.
type StakeRepository interface {
	CreateStake(ctx context.Context, userID string, amount decimal.Decimal) (domain.Stake, error)
	Unstake(ctx context.Context, stakeID, userID string) (UnstakeResult, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Stake, error)
}

// PgStakeRepository implementa StakeRepository usando pgxpool.
type PgStakeRepository struct {
	pool *pgxpool.Pool
}

func NewPgStakeRepository(pool *pgxpool.Pool) *PgStakeRepository {
	return &PgStakeRepository{pool: pool}
}

// CreateStake mueve amount del balance disponible al staked dentro de una
// transacción. El row lock sobre users serializa depósitos concurrentes.
func (r *PgStakeRepository) CreateStake(ctx context.Context, userID string, amount decimal.Decimal) (domain.Stake, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return domain.Stake{}, err
	}
	defer tx.Rollback(ctx)

	var balance decimal.Decimal
	err = tx.QueryRow(ctx,
		`SELECT balance FROM users WHERE id = $1 FOR UPDATE`,
		userID,
	).Scan(&balance)
	if err != nil {
		return domain.Stake{}, err
	}

	if balance.LessThan(amount) {
		return domain.Stake{}, ErrInsufficientBalance
	}

	stake := domain.Stake{
		ID:        uuid.NewString(),
		UserID:    userID,
		Amount:    amount,
		Status:    domain.StakeStatusActive,
		CreatedAt: time.Now().UTC(),
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO stakes (id, user_id, amount, status, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		stake.ID, stake.UserID, stake.Amount, stake.Status, stake.CreatedAt,
	)
	if err != nil {
		return domain.Stake{}, err
	}

	_, err = tx.Exec(ctx,
		`UPDATE users
		 SET balance = balance - $2, staked_balance = staked_balance + $2
		 WHERE id = $1`,
		userID, amount,
	)
	if err != nil {
		return domain.Stake{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Stake{}, err
	}

	return stake, nil
}

// Unstake marca el stake como retirado y acredita el monto al balance, todo
// dentro de una transacción. El SELECT ... FOR UPDATE serializa intentos
// concurrentes sobre la misma fila: el segundo observa status != active.
func (r *PgStakeRepository) Unstake(ctx context.Context, stakeID, userID string) (UnstakeResult, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return UnstakeResult{}, err
	}
	defer tx.Rollback(ctx)

	var stake domain.Stake
	err = tx.QueryRow(ctx,
		`SELECT id, user_id, amount, status, created_at, unstaked_at
		 FROM stakes WHERE id = $1 FOR UPDATE`,
		stakeID,
	).Scan(&stake.ID, &stake.UserID, &stake.Amount, &stake.Status, &stake.CreatedAt, &stake.UnstakedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return UnstakeResult{}, ErrStakeNotActive
	}
	if err != nil {
		return UnstakeResult{}, err
	}

	if stake.UserID != userID {
		return UnstakeResult{}, ErrStakeForbidden
	}
	if stake.Status != domain.StakeStatusActive {
		return UnstakeResult{}, ErrStakeNotActive
	}

	now := time.Now().UTC()
	_, err = tx.Exec(ctx,
		`UPDATE stakes SET status = $2, unstaked_at = $3 WHERE id = $1`,
		stake.ID, domain.StakeStatusUnstaked, now,
	)
	if err != nil {
		return UnstakeResult{}, err
	}

	var newBalance, totalStaked decimal.Decimal
	err = tx.QueryRow(ctx,
		`UPDATE users
		 SET balance = balance + $2, staked_balance = staked_balance - $2
		 WHERE id = $1
		 RETURNING balance, staked_balance`,
		userID, stake.Amount,
	).Scan(&newBalance, &totalStaked)
	if err != nil {
		return UnstakeResult{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return UnstakeResult{}, err
	}

	stake.Status = domain.StakeStatusUnstaked
	stake.UnstakedAt = &now

	return UnstakeResult{
		Stake:       stake,
		NewBalance:  newBalance,
		TotalStaked: totalStaked,
	}, nil
}

func (r *PgStakeRepository) ListByUser(ctx context.Context, userID string) ([]domain.Stake, error) {
	const query = `
		SELECT id, user_id, amount, status, created_at, unstaked_at
		FROM stakes
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stakes []domain.Stake
	for rows.Next() {
		var s domain.Stake
		if err := rows.Scan(&s.ID, &s.UserID, &s.Amount, &s.Status, &s.CreatedAt, &s.UnstakedAt); err != nil {
			return nil, err
		}
		stakes = append(stakes, s)
	}
	return stakes, rows.Err()
}
