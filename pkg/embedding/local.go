package embedding

import (
	"context"
	"math"
	"regexp"
	"strings"
)

const localDimension = 256

var tokenPattern = regexp.MustCompile(`\w+`)

// LocalProvider produces hashed term-frequency vectors without any external
// model. Identical text always yields the identical vector, which makes it
// suitable for tests and offline ingestion.
type LocalProvider struct {
	dimension int
}

var _ Provider = &LocalProvider{}

func NewLocalProvider() *LocalProvider {
	return &LocalProvider{dimension: localDimension}
}

func (p *LocalProvider) Embed(_ context.Context, text string) ([]float64, error) {
	vec := make([]float64, p.dimension)

	tokens := tokenPattern.FindAllString(strings.ToLower(text), -1)
	if len(tokens) == 0 {
		return vec, nil
	}

	for _, token := range tokens {
		vec[p.bucket(token)] += 1.0
	}

	var magnitude float64
	for _, v := range vec {
		magnitude += v * v
	}
	magnitude = math.Sqrt(magnitude)
	if magnitude == 0 {
		return vec, nil
	}
	for i := range vec {
		vec[i] /= magnitude
	}
	return vec, nil
}

func (p *LocalProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	out := make([][]float64, len(texts))
	for i, text := range texts {
		vec, err := p.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

func (p *LocalProvider) Dimension() int { return p.dimension }

func (p *LocalProvider) ModelName() string { return "local-hash-tf" }

// bucket maps a token to a vector index via a polynomial rolling hash.
func (p *LocalProvider) bucket(token string) int {
	h := 0
	for _, c := range token {
		h = (h*31 + int(c)) % p.dimension
	}
	return h
}
