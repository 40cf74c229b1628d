package mock

import "github.com/poiesic/shelf/ai"

// MockProvider is a test double for ai.Provider.
type MockProvider struct {
	embedder *MockEmbedder
	backend  string
}

// NewMockProvider creates a provider wrapping a MockEmbedder.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		embedder: NewMockEmbedder(),
		backend:  "mock",
	}
}

// Embedder returns the mock embedding service.
func (p *MockProvider) Embedder() ai.Embedder {
	return p.embedder
}

// GetMockEmbedder returns the concrete mock for test assertions.
func (p *MockProvider) GetMockEmbedder() *MockEmbedder {
	return p.embedder
}

// SetBackend overrides the backend identifier, useful for testing
// backend-change invalidation.
func (p *MockProvider) SetBackend(backend string) {
	p.backend = backend
}

// Backend returns the backend identifier.
func (p *MockProvider) Backend() string {
	return p.backend
}

// Close is a no-op.
func (p *MockProvider) Close() error {
	return nil
}
