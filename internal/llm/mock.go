package llm

import "context"

// MockProvider permite tests sin llamar a un LLM real.
type MockProvider struct {
	Response  string
	Embedding []float32
	Err       error
	EmbedErr  error
	Prompts   []string
}

func (m *MockProvider) Generate(ctx context.Context, prompt string) (string, error) {
	m.Prompts = append(m.Prompts, prompt)
	return m.Response, m.Err
}

func (m *MockProvider) Embed(ctx context.Context, input string) ([]float32, error) {
	if m.EmbedErr != nil {
		return nil, m.EmbedErr
	}
	return m.Embedding, nil
}
