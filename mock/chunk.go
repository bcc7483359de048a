package mock

import (
	"context"

	"github.com/ohmanagement/sitebot"
)

var (
	_ sitebot.IndexStore   = (*IndexStore)(nil)
	_ sitebot.Embedder     = (*Embedder)(nil)
	_ sitebot.IndexBuilder = (*IndexBuilder)(nil)
)

// IndexStore is a mock implementation of sitebot.IndexStore.
type IndexStore struct {
	ReplaceIndexFn func(ctx context.Context, chunks []*sitebot.Chunk) error
	LoadIndexFn    func(ctx context.Context) ([]*sitebot.Chunk, error)
}

func (s *IndexStore) ReplaceIndex(ctx context.Context, chunks []*sitebot.Chunk) error {
	return s.ReplaceIndexFn(ctx, chunks)
}

func (s *IndexStore) LoadIndex(ctx context.Context) ([]*sitebot.Chunk, error) {
	return s.LoadIndexFn(ctx)
}

// Embedder is a mock implementation of sitebot.Embedder.
type Embedder struct {
	EmbedFn      func(ctx context.Context, text string) ([]float32, error)
	DimensionsFn func() int
}

func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return e.EmbedFn(ctx, text)
}

func (e *Embedder) Dimensions() int {
	return e.DimensionsFn()
}

// IndexBuilder is a mock implementation of sitebot.IndexBuilder.
type IndexBuilder struct {
	BuildFn func(ctx context.Context) (*sitebot.BuildResult, error)
}

func (b *IndexBuilder) Build(ctx context.Context) (*sitebot.BuildResult, error) {
	return b.BuildFn(ctx)
}
