package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"taic-market/internal/domain"
)

func newTestStakingService(stakes *mockStakeRepo, publisher *mockPublisher) *StakingService {
	if publisher == nil {
		return NewStakingService(zap.NewNop(), stakes, nil)
	}
	return NewStakingService(zap.NewNop(), stakes, publisher)
}

func TestStakeMovesBalance(t *testing.T) {
	stakes := newMockStakeRepo()
	stakes.balances["u1"] = decimal.RequireFromString("100")
	svc := newTestStakingService(stakes, nil)

	stake, err := svc.Stake(context.Background(), "u1", decimal.RequireFromString("40"))
	if err != nil {
		t.Fatalf("stake: %v", err)
	}
	if stake.Status != domain.StakeStatusActive {
		t.Fatalf("expected active stake, got %q", stake.Status)
	}
	if !stakes.balances["u1"].Equal(decimal.RequireFromString("60")) {
		t.Fatalf("expected balance 60, got %s", stakes.balances["u1"])
	}
	if !stakes.staked["u1"].Equal(decimal.RequireFromString("40")) {
		t.Fatalf("expected staked 40, got %s", stakes.staked["u1"])
	}
}

func TestStakeInsufficientBalance(t *testing.T) {
	stakes := newMockStakeRepo()
	stakes.balances["u1"] = decimal.RequireFromString("10")
	svc := newTestStakingService(stakes, nil)

	_, err := svc.Stake(context.Background(), "u1", decimal.RequireFromString("10.00000001"))
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
	if !stakes.balances["u1"].Equal(decimal.RequireFromString("10")) {
		t.Fatalf("balance must not change on failure, got %s", stakes.balances["u1"])
	}
}

func TestStakeRejectsNonPositiveAmount(t *testing.T) {
	stakes := newMockStakeRepo()
	stakes.balances["u1"] = decimal.RequireFromString("100")
	svc := newTestStakingService(stakes, nil)

	for _, raw := range []string{"0", "-5"} {
		if _, err := svc.Stake(context.Background(), "u1", decimal.RequireFromString(raw)); !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("amount %s: expected ErrInvalidAmount, got %v", raw, err)
		}
	}
	if len(stakes.stakesByID) != 0 {
		t.Fatalf("no stake should be created")
	}
}

func TestUnstakeCreditsBalanceOnce(t *testing.T) {
	stakes := newMockStakeRepo()
	stakes.balances["u1"] = decimal.RequireFromString("100")
	publisher := &mockPublisher{}
	svc := newTestStakingService(stakes, publisher)

	stake, err := svc.Stake(context.Background(), "u1", decimal.RequireFromString("30"))
	if err != nil {
		t.Fatalf("stake: %v", err)
	}

	result, err := svc.Unstake(context.Background(), stake.ID, "u1")
	if err != nil {
		t.Fatalf("unstake: %v", err)
	}
	if !result.UnstakedAmount.Equal(decimal.RequireFromString("30")) {
		t.Fatalf("expected unstaked amount 30, got %s", result.UnstakedAmount)
	}
	if !result.NewBalance.Equal(decimal.RequireFromString("100")) {
		t.Fatalf("expected balance restored to 100, got %s", result.NewBalance)
	}
	if !result.TotalStaked.Equal(decimal.Zero) {
		t.Fatalf("expected total staked 0, got %s", result.TotalStaked)
	}
	if len(publisher.unstaked) != 1 || publisher.unstaked[0] != stake.ID {
		t.Fatalf("expected one unstaked event for %s, got %v", stake.ID, publisher.unstaked)
	}

	// Un segundo intento sobre el mismo stake no debe acreditar de nuevo.
	if _, err := svc.Unstake(context.Background(), stake.ID, "u1"); !errors.Is(err, ErrStakeNotFound) {
		t.Fatalf("expected ErrStakeNotFound on second unstake, got %v", err)
	}
	if len(stakes.creditLog) != 1 {
		t.Fatalf("expected exactly one credit, got %d", len(stakes.creditLog))
	}
}

func TestUnstakeForeignStake(t *testing.T) {
	stakes := newMockStakeRepo()
	stakes.balances["u1"] = decimal.RequireFromString("50")
	svc := newTestStakingService(stakes, nil)

	stake, err := svc.Stake(context.Background(), "u1", decimal.RequireFromString("50"))
	if err != nil {
		t.Fatalf("stake: %v", err)
	}

	if _, err := svc.Unstake(context.Background(), stake.ID, "u2"); !errors.Is(err, ErrStakeForbidden) {
		t.Fatalf("expected ErrStakeForbidden, got %v", err)
	}
	if len(stakes.creditLog) != 0 {
		t.Fatalf("no credit expected for foreign unstake")
	}
}

func TestUnstakeUnknownStake(t *testing.T) {
	svc := newTestStakingService(newMockStakeRepo(), nil)

	if _, err := svc.Unstake(context.Background(), "missing", "u1"); !errors.Is(err, ErrStakeNotFound) {
		t.Fatalf("expected ErrStakeNotFound, got %v", err)
	}
}

func TestListStakesTotalsActiveOnly(t *testing.T) {
	stakes := newMockStakeRepo()
	stakes.balances["u1"] = decimal.RequireFromString("100")
	svc := newTestStakingService(stakes, nil)

	first, err := svc.Stake(context.Background(), "u1", decimal.RequireFromString("25"))
	if err != nil {
		t.Fatalf("stake: %v", err)
	}
	if _, err := svc.Unstake(context.Background(), first.ID, "u1"); err != nil {
		t.Fatalf("unstake: %v", err)
	}

	listed, total, err := svc.ListStakes(context.Background(), "u1")
	if err != nil {
		t.Fatalf("list stakes: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("expected 1 stake in history, got %d", len(listed))
	}
	if !total.Equal(decimal.Zero) {
		t.Fatalf("unstaked entries must not count, got total %s", total)
	}
}
