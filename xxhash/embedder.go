// Package xxhash implements a deterministic placeholder sitebot.Embedder.
//
// Vectors are derived from a hash of the text and carry no semantic
// meaning. Similarity between them says nothing about similarity between
// the texts; retrieval built on these vectors needs a real embedding model.
package xxhash

import (
	"context"
	"math"

	"github.com/cespare/xxhash/v2"
	"github.com/ohmanagement/sitebot"
)

// DefaultDimensions is the vector length used when none is configured.
const DefaultDimensions = 1536

// Ensure Embedder implements sitebot.Embedder at compile time.
var _ sitebot.Embedder = (*Embedder)(nil)

// Embedder maps text to a fixed-dimension vector seeded by its hash.
type Embedder struct {
	dims int
}

// NewEmbedder returns an Embedder producing vectors of length dims.
// A non-positive dims selects DefaultDimensions.
func NewEmbedder(dims int) *Embedder {
	if dims <= 0 {
		dims = DefaultDimensions
	}
	return &Embedder{dims: dims}
}

// Embed returns v where v[i] = 0.1*sin(seed+i) and seed is the 64-bit hash
// of text folded to a signed 32-bit integer.
func (e *Embedder) Embed(_ context.Context, text string) ([]float32, error) {
	seed := float64(Seed(text))
	v := make([]float32, e.dims)
	for i := range v {
		v[i] = float32(0.1 * math.Sin(seed+float64(i)))
	}
	return v, nil
}

// Dimensions returns the vector length.
func (e *Embedder) Dimensions() int {
	return e.dims
}

// Seed folds the xxhash64 of text to a signed 32-bit integer. The fold
// keeps seed+i exact in float64 arithmetic.
func Seed(text string) int32 {
	h := xxhash.Sum64String(text)
	return int32(uint32(h ^ h>>32))
}
