package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	pgvector "github.com/pgvector/pgvector-go"
	"go.uber.org/zap"

	"taic-market/internal/domain"
	"taic-market/internal/llm"
	"taic-market/internal/repository"
)

const structurePromptTemplate = `You are a shopping assistant for the TAIC marketplace.
Convert the user query into a JSON object with this exact shape:
{"intent": "search|recommend|other", "keywords": ["..."], "category": "", "max_price": 0}
Use an empty string or 0 when a field does not apply. Respond with JSON only.

User query: %s`

const answerPromptTemplate = `You are a shopping assistant for the TAIC marketplace.
Answer the user in one short paragraph, grounded only on these products:
%s

User query: %s`

const fallbackAnswer = "Here are some products matching your search."

// AssistantQuery es la consulta estructurada que devuelve el LLM.
type AssistantQuery struct {
	Intent   string   `json:"intent"`
	Keywords []string `json:"keywords"`
	Category string   `json:"category"`
	MaxPrice float64  `json:"max_price"`
}

// AssistantResult combina la respuesta textual con los productos hallados.
type AssistantResult struct {
	Answer   string           `json:"answer"`
	Products []domain.Product `json:"products"`
}

// AssistantService responde consultas de compra en lenguaje natural:
// estructura la consulta con el LLM, recupera productos por embedding y
// redacta una respuesta. Cualquier falla del proveedor degrada a búsqueda
// por keywords con respuesta fija; nunca un 500 por caída del LLM.
type AssistantService struct {
	logger   *zap.Logger
	provider llm.Provider
	products repository.ProductRepository
}

func NewAssistantService(logger *zap.Logger, provider llm.Provider, products repository.ProductRepository) *AssistantService {
	return &AssistantService{
		logger:   logger,
		provider: provider,
		products: products,
	}
}

func (s *AssistantService) Query(ctx context.Context, query string) (AssistantResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return AssistantResult{}, ErrInvalidProduct
	}

	structured := s.structureQuery(ctx, query)
	products, err := s.retrieve(ctx, query, structured)
	if err != nil {
		return AssistantResult{}, err
	}

	return AssistantResult{
		Answer:   s.composeAnswer(ctx, query, products),
		Products: products,
	}, nil
}

// structureQuery pide al LLM la forma estructurada de la consulta. Si la
// salida no trae un objeto JSON usable, se sigue con la consulta cruda.
func (s *AssistantService) structureQuery(ctx context.Context, query string) AssistantQuery {
	fallback := AssistantQuery{Intent: "search", Keywords: strings.Fields(query)}
	if s.provider == nil {
		return fallback
	}

	raw, err := s.provider.Generate(ctx, fmt.Sprintf(structurePromptTemplate, query))
	if err != nil {
		s.logger.Warn("assistant structure query failed", zap.Error(err))
		return fallback
	}

	jsonPart := extractFirstJSONObject(raw)
	if jsonPart == "" {
		s.logger.Warn("assistant structure output had no json")
		return fallback
	}

	var structured AssistantQuery
	if err := json.Unmarshal([]byte(jsonPart), &structured); err != nil {
		s.logger.Warn("assistant structure output unmarshal failed", zap.Error(err))
		return fallback
	}
	if len(structured.Keywords) == 0 {
		structured.Keywords = strings.Fields(query)
	}
	return structured
}

// retrieve busca primero por similitud de embeddings y cae a keywords si
// no hay proveedor o el embedding falla.
func (s *AssistantService) retrieve(ctx context.Context, query string, structured AssistantQuery) ([]domain.Product, error) {
	if s.provider != nil {
		embedding, err := s.provider.Embed(ctx, query)
		if err == nil {
			products, err := s.products.SearchByEmbedding(ctx, pgvector.NewVector(embedding), 10)
			if err != nil {
				return nil, err
			}
			if len(products) > 0 {
				return products, nil
			}
		} else {
			s.logger.Warn("assistant embedding failed", zap.Error(err))
		}
	}

	return s.products.List(ctx, domain.ProductFilter{
		Query:    strings.Join(structured.Keywords, " "),
		Category: structured.Category,
		Limit:    10,
	})
}

func (s *AssistantService) composeAnswer(ctx context.Context, query string, products []domain.Product) string {
	if s.provider == nil || len(products) == 0 {
		return fallbackAnswer
	}

	var sb strings.Builder
	for _, p := range products {
		fmt.Fprintf(&sb, "- %s (%s): %s\n", p.Name, p.Price.String(), p.Description)
	}

	answer, err := s.provider.Generate(ctx, fmt.Sprintf(answerPromptTemplate, sb.String(), query))
	if err != nil {
		s.logger.Warn("assistant answer failed", zap.Error(err))
		return fallbackAnswer
	}
	return strings.TrimSpace(answer)
}
