package embedding

import "context"

// Provider generates dense vector representations of text. Implementations
// must return vectors of a fixed dimension so stored vectors stay comparable.
type Provider interface {
	Embed(ctx context.Context, text string) ([]float64, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float64, error)
	Dimension() int
	ModelName() string
}
