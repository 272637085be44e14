package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"taic-market/internal/domain"
	"taic-market/internal/llm"
)

func TestProductCreateComputesEmbedding(t *testing.T) {
	products := newMockProductRepo()
	provider := &llm.MockProvider{Embedding: []float32{0.1, 0.2}}
	svc := NewProductService(zap.NewNop(), products, provider)

	product, err := svc.Create(context.Background(), "m1", ProductInput{
		Name:        "  Trail shoes  ",
		Description: "Light running shoes",
		Price:       decimal.RequireFromString("59.90"),
		Category:    "sports",
		Stock:       10,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if product.Name != "Trail shoes" {
		t.Fatalf("expected trimmed name, got %q", product.Name)
	}
	if !product.Active {
		t.Fatalf("new products must be active")
	}
	if product.Embedding == nil {
		t.Fatalf("expected embedding when provider is configured")
	}
	if _, ok := products.productsByID[product.ID]; !ok {
		t.Fatalf("product not persisted")
	}
}

func TestProductCreateWithoutProvider(t *testing.T) {
	products := newMockProductRepo()
	svc := NewProductService(zap.NewNop(), products, nil)

	product, err := svc.Create(context.Background(), "m1", ProductInput{
		Name:  "Water bottle",
		Price: decimal.RequireFromString("9.50"),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if product.Embedding != nil {
		t.Fatalf("expected no embedding without provider")
	}
}

func TestProductCreateEmbeddingFailureDoesNotBlock(t *testing.T) {
	products := newMockProductRepo()
	provider := &llm.MockProvider{EmbedErr: errors.New("provider down")}
	svc := NewProductService(zap.NewNop(), products, provider)

	product, err := svc.Create(context.Background(), "m1", ProductInput{
		Name:  "Water bottle",
		Price: decimal.RequireFromString("9.50"),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if product.Embedding != nil {
		t.Fatalf("expected nil embedding on provider failure")
	}
}

func TestProductCreateValidation(t *testing.T) {
	svc := NewProductService(zap.NewNop(), newMockProductRepo(), nil)

	cases := []ProductInput{
		{Name: "", Price: decimal.RequireFromString("1")},
		{Name: "Shoes", Price: decimal.RequireFromString("-1")},
		{Name: "Shoes", Price: decimal.RequireFromString("1"), Stock: -1},
	}
	for i, input := range cases {
		if _, err := svc.Create(context.Background(), "m1", input); !errors.Is(err, ErrInvalidProduct) {
			t.Fatalf("case %d: expected ErrInvalidProduct, got %v", i, err)
		}
	}
}

func TestProductUpdateEnforcesOwnership(t *testing.T) {
	products := newMockProductRepo()
	svc := NewProductService(zap.NewNop(), products, nil)

	created, err := svc.Create(context.Background(), "m1", ProductInput{
		Name:  "Trail shoes",
		Price: decimal.RequireFromString("59.90"),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	input := ProductInput{Name: "Trail shoes v2", Price: decimal.RequireFromString("64.90")}
	if _, err := svc.Update(context.Background(), "m2", created.ID, input); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound for foreign merchant, got %v", err)
	}

	updated, err := svc.Update(context.Background(), "m1", created.ID, input)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Trail shoes v2" {
		t.Fatalf("expected updated name, got %q", updated.Name)
	}
}

func TestProductDeactivateHidesFromListing(t *testing.T) {
	products := newMockProductRepo()
	svc := NewProductService(zap.NewNop(), products, nil)

	created, err := svc.Create(context.Background(), "m1", ProductInput{
		Name:  "Trail shoes",
		Price: decimal.RequireFromString("59.90"),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.Deactivate(context.Background(), "m1", created.ID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	listed, err := svc.List(context.Background(), domain.ProductFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed) != 0 {
		t.Fatalf("deactivated products must not be listed, got %d", len(listed))
	}

	if err := svc.Deactivate(context.Background(), "m1", "missing"); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}
