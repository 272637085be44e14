package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	pgvector "github.com/pgvector/pgvector-go"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"taic-market/internal/domain"
	"taic-market/internal/llm"
	"taic-market/internal/repository"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidProduct  = errors.New("invalid product")
)

// ProductService coordina el catálogo y la gestión de merchants. El
// embedding del producto se calcula al crear si hay proveedor disponible;
// su ausencia no bloquea el alta.
type ProductService struct {
	logger   *zap.Logger
	products repository.ProductRepository
	provider llm.Provider
}

func NewProductService(logger *zap.Logger, products repository.ProductRepository, provider llm.Provider) *ProductService {
	return &ProductService{
		logger:   logger,
		products: products,
		provider: provider,
	}
}

type ProductInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Category    string
	ImageURL    string
	Stock       int
}

func (in ProductInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return ErrInvalidProduct
	}
	if in.Price.IsNegative() {
		return ErrInvalidProduct
	}
	if in.Stock < 0 {
		return ErrInvalidProduct
	}
	return nil
}

func (s *ProductService) Create(ctx context.Context, merchantID string, input ProductInput) (domain.Product, error) {
	if err := input.validate(); err != nil {
		return domain.Product{}, err
	}

	now := time.Now().UTC()
	product := domain.Product{
		ID:          uuid.NewString(),
		MerchantID:  merchantID,
		Name:        strings.TrimSpace(input.Name),
		Description: strings.TrimSpace(input.Description),
		Price:       input.Price,
		Category:    strings.TrimSpace(input.Category),
		ImageURL:    strings.TrimSpace(input.ImageURL),
		Stock:       input.Stock,
		Active:      true,
		Embedding:   s.embedProduct(ctx, input.Name, input.Description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.products.Create(ctx, product); err != nil {
		return domain.Product{}, err
	}
	return product, nil
}

func (s *ProductService) Update(ctx context.Context, merchantID, productID string, input ProductInput) (domain.Product, error) {
	if err := input.validate(); err != nil {
		return domain.Product{}, err
	}

	product := domain.Product{
		ID:          productID,
		MerchantID:  merchantID,
		Name:        strings.TrimSpace(input.Name),
		Description: strings.TrimSpace(input.Description),
		Price:       input.Price,
		Category:    strings.TrimSpace(input.Category),
		ImageURL:    strings.TrimSpace(input.ImageURL),
		Stock:       input.Stock,
		Active:      true,
	}

	if err := s.products.Update(ctx, product); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Product{}, ErrProductNotFound
		}
		return domain.Product{}, err
	}

	return s.GetByID(ctx, productID)
}

// Deactivate oculta el producto del catálogo sin borrar la fila.
func (s *ProductService) Deactivate(ctx context.Context, merchantID, productID string) error {
	err := s.products.Deactivate(ctx, productID, merchantID)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrProductNotFound
	}
	return err
}

func (s *ProductService) GetByID(ctx context.Context, id string) (domain.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Product{}, ErrProductNotFound
	}
	return product, err
}

func (s *ProductService) List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	return s.products.List(ctx, filter)
}

func (s *ProductService) ListByMerchant(ctx context.Context, merchantID string) ([]domain.Product, error) {
	return s.products.ListByMerchant(ctx, merchantID)
}

func (s *ProductService) embedProduct(ctx context.Context, name, description string) *pgvector.Vector {
	if s.provider == nil {
		return nil
	}
	embedding, err := s.provider.Embed(ctx, strings.TrimSpace(name+". "+description))
	if err != nil {
		s.logger.Warn("product embedding failed", zap.Error(err))
		return nil
	}
	vec := pgvector.NewVector(embedding)
	return &vec
}
