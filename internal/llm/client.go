package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Provider define la interfaz para generar texto y embeddings con un LLM.
type Provider interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Embed(ctx context.Context, input string) ([]float32, error)
}

// HTTPClient implementa Provider usando una API OpenAI-compatible.
type HTTPClient struct {
	baseURL    string
	apiKey     string
	model      string
	embedModel string
	client     *http.Client
	logger     *zap.Logger
}

// NewHTTPClient construye un cliente HTTP apuntando a la API de chat completions.
func NewHTTPClient(baseURL, apiKey, model, embedModel string, logger *zap.Logger) *HTTPClient {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		embedModel: embedModel,
		client:     &http.Client{Timeout: 60 * time.Second},
		logger:     logger,
	}
}

func (c *HTTPClient) Generate(ctx context.Context, prompt string) (string, error) {
	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
	}

	respBody, err := c.post(ctx, "/chat/completions", reqBody)
	if err != nil {
		return "", err
	}

	var cr chatResponse
	if err := json.Unmarshal(respBody, &cr); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}

	if cr.Error != nil {
		return "", fmt.Errorf("llm api error: %s", cr.Error.Message)
	}

	if len(cr.Choices) == 0 || cr.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("llm empty response")
	}

	return cr.Choices[0].Message.Content, nil
}

func (c *HTTPClient) Embed(ctx context.Context, input string) ([]float32, error) {
	reqBody := embedRequest{
		Model: c.embedModel,
		Input: input,
	}

	respBody, err := c.post(ctx, "/embeddings", reqBody)
	if err != nil {
		return nil, err
	}

	var er embedResponse
	if err := json.Unmarshal(respBody, &er); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	if er.Error != nil {
		return nil, fmt.Errorf("llm api error: %s", er.Error.Message)
	}

	if len(er.Data) == 0 || len(er.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("llm empty embedding")
	}

	return er.Data[0].Embedding, nil
}

func (c *HTTPClient) post(ctx context.Context, path string, body any) ([]byte, error) {
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		c.logger.Warn("llm error response",
			zap.Int("status", resp.StatusCode),
			zap.String("path", path),
		)
		return nil, fmt.Errorf("llm http error: status=%d", resp.StatusCode)
	}

	return respBody, nil
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

type embedRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type embedResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}
