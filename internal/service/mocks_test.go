package service

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	pgvector "github.com/pgvector/pgvector-go"
	"github.com/shopspring/decimal"

	"taic-market/internal/domain"
	"taic-market/internal/repository"
)

type mockUserRepo struct {
	usersByID     map[string]domain.User
	usersByEmail  map[string]string
	usersByWallet map[string]string
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{
		usersByID:     make(map[string]domain.User),
		usersByEmail:  make(map[string]string),
		usersByWallet: make(map[string]string),
	}
}

func (m *mockUserRepo) Create(_ context.Context, user domain.User) error {
	m.usersByID[user.ID] = user
	if user.Email != "" {
		m.usersByEmail[user.Email] = user.ID
	}
	if user.WalletAddress != "" {
		m.usersByWallet[user.WalletAddress] = user.ID
	}
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (domain.User, error) {
	user, ok := m.usersByID[id]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return user, nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (domain.User, error) {
	id, ok := m.usersByEmail[email]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return m.GetByID(context.Background(), id)
}

func (m *mockUserRepo) GetByWallet(_ context.Context, address string) (domain.User, error) {
	id, ok := m.usersByWallet[address]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return m.GetByID(context.Background(), id)
}

func (m *mockUserRepo) SetNonce(_ context.Context, id, nonce string) error {
	user, ok := m.usersByID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.AuthNonce = &nonce
	m.usersByID[id] = user
	return nil
}

func (m *mockUserRepo) ClearNonce(_ context.Context, id string) error {
	user, ok := m.usersByID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.AuthNonce = nil
	m.usersByID[id] = user
	return nil
}

func (m *mockUserRepo) CreditCashback(_ context.Context, id string, amount decimal.Decimal) (domain.User, error) {
	user, ok := m.usersByID[id]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	user.CashbackBalance = user.CashbackBalance.Add(amount)
	m.usersByID[id] = user
	return user, nil
}

func (m *mockUserRepo) List(_ context.Context, _, _ int) ([]domain.User, error) {
	var users []domain.User
	for _, u := range m.usersByID {
		users = append(users, u)
	}
	return users, nil
}

type mockStakeRepo struct {
	stakesByID map[string]domain.Stake
	balances   map[string]decimal.Decimal
	staked     map[string]decimal.Decimal
	creditLog  []decimal.Decimal
}

func newMockStakeRepo() *mockStakeRepo {
	return &mockStakeRepo{
		stakesByID: make(map[string]domain.Stake),
		balances:   make(map[string]decimal.Decimal),
		staked:     make(map[string]decimal.Decimal),
	}
}

func (m *mockStakeRepo) CreateStake(_ context.Context, userID string, amount decimal.Decimal) (domain.Stake, error) {
	balance := m.balances[userID]
	if balance.LessThan(amount) {
		return domain.Stake{}, repository.ErrInsufficientBalance
	}
	stake := domain.Stake{
		ID:        "stake-" + userID,
		UserID:    userID,
		Amount:    amount,
		Status:    domain.StakeStatusActive,
		CreatedAt: time.Now().UTC(),
	}
	m.stakesByID[stake.ID] = stake
	m.balances[userID] = balance.Sub(amount)
	m.staked[userID] = m.staked[userID].Add(amount)
	return stake, nil
}

func (m *mockStakeRepo) Unstake(_ context.Context, stakeID, userID string) (repository.UnstakeResult, error) {
	stake, ok := m.stakesByID[stakeID]
	if !ok {
		return repository.UnstakeResult{}, repository.ErrStakeNotActive
	}
	if stake.UserID != userID {
		return repository.UnstakeResult{}, repository.ErrStakeForbidden
	}
	if stake.Status != domain.StakeStatusActive {
		return repository.UnstakeResult{}, repository.ErrStakeNotActive
	}

	now := time.Now().UTC()
	stake.Status = domain.StakeStatusUnstaked
	stake.UnstakedAt = &now
	m.stakesByID[stakeID] = stake

	m.balances[userID] = m.balances[userID].Add(stake.Amount)
	m.staked[userID] = m.staked[userID].Sub(stake.Amount)
	m.creditLog = append(m.creditLog, stake.Amount)

	return repository.UnstakeResult{
		Stake:       stake,
		NewBalance:  m.balances[userID],
		TotalStaked: m.staked[userID],
	}, nil
}

func (m *mockStakeRepo) ListByUser(_ context.Context, userID string) ([]domain.Stake, error) {
	var stakes []domain.Stake
	for _, s := range m.stakesByID {
		if s.UserID == userID {
			stakes = append(stakes, s)
		}
	}
	return stakes, nil
}

type mockProductRepo struct {
	productsByID map[string]domain.Product
	byEmbedding  []domain.Product
	listCalls    []domain.ProductFilter
	embedCalls   int
}

func newMockProductRepo() *mockProductRepo {
	return &mockProductRepo{
		productsByID: make(map[string]domain.Product),
	}
}

func (m *mockProductRepo) Create(_ context.Context, product domain.Product) error {
	m.productsByID[product.ID] = product
	return nil
}

func (m *mockProductRepo) Update(_ context.Context, product domain.Product) error {
	existing, ok := m.productsByID[product.ID]
	if !ok || existing.MerchantID != product.MerchantID {
		return pgx.ErrNoRows
	}
	product.CreatedAt = existing.CreatedAt
	m.productsByID[product.ID] = product
	return nil
}

func (m *mockProductRepo) Deactivate(_ context.Context, id, merchantID string) error {
	product, ok := m.productsByID[id]
	if !ok || product.MerchantID != merchantID {
		return pgx.ErrNoRows
	}
	product.Active = false
	m.productsByID[id] = product
	return nil
}

func (m *mockProductRepo) GetByID(_ context.Context, id string) (domain.Product, error) {
	product, ok := m.productsByID[id]
	if !ok {
		return domain.Product{}, pgx.ErrNoRows
	}
	return product, nil
}

func (m *mockProductRepo) List(_ context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	m.listCalls = append(m.listCalls, filter)
	var products []domain.Product
	for _, p := range m.productsByID {
		if p.Active {
			products = append(products, p)
		}
	}
	return products, nil
}

func (m *mockProductRepo) ListByMerchant(_ context.Context, merchantID string) ([]domain.Product, error) {
	var products []domain.Product
	for _, p := range m.productsByID {
		if p.MerchantID == merchantID {
			products = append(products, p)
		}
	}
	return products, nil
}

func (m *mockProductRepo) SearchByEmbedding(_ context.Context, _ pgvector.Vector, _ int) ([]domain.Product, error) {
	m.embedCalls++
	return m.byEmbedding, nil
}

type mockImportRepo struct {
	imports []domain.BulkImport
}

func (m *mockImportRepo) Create(_ context.Context, imp domain.BulkImport) error {
	m.imports = append(m.imports, imp)
	return nil
}

func (m *mockImportRepo) List(_ context.Context, _, _ int) ([]domain.BulkImport, error) {
	return m.imports, nil
}

type mockPublisher struct {
	logins      int
	unstaked    []string
	bulkImports []string
	err         error
}

func (m *mockPublisher) PublishLogin(_ context.Context, _, _, _ string) error {
	m.logins++
	return m.err
}

func (m *mockPublisher) PublishUnstaked(_ context.Context, _, stakeID, _ string) error {
	m.unstaked = append(m.unstaked, stakeID)
	return m.err
}

func (m *mockPublisher) PublishBulkImport(_ context.Context, _, importID string, _, _ int) error {
	m.bulkImports = append(m.bulkImports, importID)
	return m.err
}
