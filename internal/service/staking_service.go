package service

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"taic-market/internal/domain"
	"taic-market/internal/events"
	"taic-market/internal/repository"
)

var (
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrStakeNotFound       = errors.New("stake not found or already unstaked")
	ErrStakeForbidden      = errors.New("stake owned by another user")
	ErrInvalidAmount       = errors.New("amount must be positive")
)

// StakingService coordina el ledger de staking. La atomicidad vive en el
// repositorio; acá se validan montos y se emiten eventos.
type StakingService struct {
	logger *zap.Logger
	stakes repository.StakeRepository
	events events.Publisher
}

func NewStakingService(logger *zap.Logger, stakes repository.StakeRepository, publisher events.Publisher) *StakingService {
	if publisher == nil {
		publisher = events.NewDisabledPublisher()
	}
	return &StakingService{
		logger: logger,
		stakes: stakes,
		events: publisher,
	}
}

// Stake mueve amount del balance disponible al staked.
func (s *StakingService) Stake(ctx context.Context, userID string, amount decimal.Decimal) (domain.Stake, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return domain.Stake{}, ErrInvalidAmount
	}

	stake, err := s.stakes.CreateStake(ctx, userID, amount)
	if err != nil {
		if errors.Is(err, repository.ErrInsufficientBalance) {
			return domain.Stake{}, ErrInsufficientBalance
		}
		return domain.Stake{}, err
	}

	return stake, nil
}

// UnstakeResult resume el resultado de un unstake para el handler.
type UnstakeResult struct {
	UnstakedAmount decimal.Decimal
	NewBalance     decimal.Decimal
	TotalStaked    decimal.Decimal
}

// Unstake retira el stake indicado y acredita su monto al balance. El
// resultado es todo-o-nada: cualquier falla deja stake y balances intactos.
func (s *StakingService) Unstake(ctx context.Context, stakeID, userID string) (UnstakeResult, error) {
	result, err := s.stakes.Unstake(ctx, stakeID, userID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrStakeNotActive):
			return UnstakeResult{}, ErrStakeNotFound
		case errors.Is(err, repository.ErrStakeForbidden):
			return UnstakeResult{}, ErrStakeForbidden
		default:
			return UnstakeResult{}, err
		}
	}

	if err := s.events.PublishUnstaked(ctx, userID, stakeID, result.Stake.Amount.String()); err != nil {
		s.logger.Warn("publish unstaked event failed", zap.Error(err))
	}

	return UnstakeResult{
		UnstakedAmount: result.Stake.Amount,
		NewBalance:     result.NewBalance,
		TotalStaked:    result.TotalStaked,
	}, nil
}

// ListStakes devuelve los stakes del usuario junto al total activo.
func (s *StakingService) ListStakes(ctx context.Context, userID string) ([]domain.Stake, decimal.Decimal, error) {
	stakes, err := s.stakes.ListByUser(ctx, userID)
	if err != nil {
		return nil, decimal.Zero, err
	}

	total := decimal.Zero
	for _, stake := range stakes {
		if stake.Status == domain.StakeStatusActive {
			total = total.Add(stake.Amount)
		}
	}
	return stakes, total, nil
}
