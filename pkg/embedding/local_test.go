package embedding

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalEmbedDeterministic(t *testing.T) {
	p := NewLocalProvider()
	ctx := context.Background()

	v1, err := p.Embed(ctx, "webhook delivery keeps timing out")
	require.NoError(t, err)
	v2, err := p.Embed(ctx, "webhook delivery keeps timing out")
	require.NoError(t, err)

	assert.Equal(t, v1, v2)
	assert.Len(t, v1, p.Dimension())
}

func TestLocalEmbedNormalized(t *testing.T) {
	p := NewLocalProvider()

	vec, err := p.Embed(context.Background(), "the quick brown fox jumps over the lazy dog")
	require.NoError(t, err)

	var magnitude float64
	for _, v := range vec {
		magnitude += v * v
	}
	assert.InDelta(t, 1.0, math.Sqrt(magnitude), 1e-9)
}

func TestLocalEmbedEmptyText(t *testing.T) {
	p := NewLocalProvider()

	for _, text := range []string{"", "   ", "!!! ... ???"} {
		vec, err := p.Embed(context.Background(), text)
		require.NoError(t, err)
		require.Len(t, vec, p.Dimension())
		for _, v := range vec {
			assert.Zero(t, v)
		}
	}
}

func TestLocalEmbedCaseInsensitive(t *testing.T) {
	p := NewLocalProvider()
	ctx := context.Background()

	lower, err := p.Embed(ctx, "database connection pool")
	require.NoError(t, err)
	upper, err := p.Embed(ctx, "DATABASE Connection POOL")
	require.NoError(t, err)

	assert.Equal(t, lower, upper)
}

func TestLocalEmbedBatch(t *testing.T) {
	p := NewLocalProvider()
	ctx := context.Background()

	texts := []string{"first text", "second text", ""}
	vectors, err := p.EmbedBatch(ctx, texts)
	require.NoError(t, err)
	require.Len(t, vectors, 3)

	for i, text := range texts {
		single, err := p.Embed(ctx, text)
		require.NoError(t, err)
		assert.Equal(t, single, vectors[i])
	}
}

func TestLocalProviderIdentity(t *testing.T) {
	p := NewLocalProvider()
	assert.Equal(t, 256, p.Dimension())
	assert.Equal(t, "local-hash-tf", p.ModelName())
}
