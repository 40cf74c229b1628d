package local

import (
	"context"
	"hash/fnv"
	"math"
	"strings"

	"github.com/poiesic/shelf/ai"
)

// Embedder implements ai.Embedder with a deterministic hashed bag-of-words
// projection. It needs no network service: each token hashes into a bucket
// of the output vector, so texts sharing vocabulary produce nearby vectors.
// The quality is far below a learned model; this is the degraded mode that
// keeps semantic search functional when no embedding service is reachable.
type Embedder struct {
	dim int
}

// NewEmbedder creates a local embedder with the given vector dimension.
func NewEmbedder(dim int) *Embedder {
	if dim <= 0 {
		dim = 256
	}
	return &Embedder{dim: dim}
}

// Dim returns the fixed output width of the embedder.
func (e *Embedder) Dim() int {
	return e.dim
}

// EmbedText generates a deterministic embedding for a single text.
func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	return e.embed(text), nil
}

// EmbedTexts generates deterministic embeddings for multiple texts.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = e.embed(text)
	}
	return vectors, nil
}

func (e *Embedder) embed(text string) []float32 {
	vector := make([]float32, e.dim)

	for _, token := range strings.Fields(strings.ToLower(text)) {
		token = strings.Trim(token, ".,;:!?\"'()[]{}<>")
		if token == "" {
			continue
		}
		h := fnv.New32a()
		h.Write([]byte(token))
		sum := h.Sum32()
		bucket := int(sum % uint32(e.dim))
		// The high bit picks the sign so common buckets don't all
		// accumulate positively.
		if sum&0x80000000 != 0 {
			vector[bucket] -= 1
		} else {
			vector[bucket] += 1
		}
	}

	var sumSquares float64
	for _, v := range vector {
		sumSquares += float64(v) * float64(v)
	}
	if sumSquares > 0 {
		norm := float32(math.Sqrt(sumSquares))
		for i := range vector {
			vector[i] /= norm
		}
	}
	return vector
}

// Provider implements ai.Provider for the local embedder.
type Provider struct {
	embedder *Embedder
}

// NewProvider creates a provider wrapping the local embedder.
// Unlike the openai provider it cannot fail: the local embedder always works.
func NewProvider(config *ai.Config) ai.Provider {
	dim := 256
	if config != nil && config.LocalDim > 0 {
		dim = config.LocalDim
	}
	return &Provider{embedder: NewEmbedder(dim)}
}

// Embedder returns the text embedding service.
func (p *Provider) Embedder() ai.Embedder {
	return p.embedder
}

// Backend returns the backend identifier recorded with stored vectors.
func (p *Provider) Backend() string {
	return "local"
}

// Close is a no-op.
func (p *Provider) Close() error {
	return nil
}
