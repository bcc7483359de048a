package sitebot

import (
	"context"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// DefaultMaxChunkLength is the chunk bound used when none is configured.
	DefaultMaxChunkLength = 1000

	// MinSentenceLength is the minimum rune count of a sentence unit.
	// Shorter units are discarded before chunking.
	MinSentenceLength = 10

	// ExcerptLength is the number of content runes kept in an excerpt.
	ExcerptLength = 200

	// sentenceSep joins sentence units inside a chunk.
	sentenceSep = ". "
)

// Chunk is one bounded-length unit of page text paired with its vector.
type Chunk struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	Excerpt   string    `json:"excerpt"`
	Content   string    `json:"content"`
	Embedding []float32 `json:"embedding"`
	CreatedAt time.Time `json:"timestamp"`
}

// Validate returns an error if the chunk contains invalid fields.
func (c *Chunk) Validate() error {
	if c.ID == "" {
		return Errorf(EINVALID, "chunk ID required")
	}
	if c.URL == "" {
		return Errorf(EINVALID, "chunk URL required")
	}
	if c.Content == "" {
		return Errorf(EINVALID, "chunk content required")
	}
	return nil
}

// Excerpt returns the first ExcerptLength runes of content followed by "...".
// The marker is appended even when the content is shorter.
func Excerpt(content string) string {
	if utf8.RuneCountInString(content) <= ExcerptLength {
		return content + "..."
	}
	return string([]rune(content)[:ExcerptLength]) + "..."
}

var sentenceSplitRe = regexp.MustCompile(`[.!?]+`)

// ChunkText splits text into sentence-aligned chunks of at most maxLength
// runes. A non-positive maxLength selects DefaultMaxChunkLength.
//
// Sentences are split on runs of '.', '!' and '?', trimmed, and dropped when
// shorter than MinSentenceLength. Sentences are joined with ". " until the
// next one, separator included, would exceed maxLength. A single sentence
// longer than maxLength is emitted whole as its own chunk.
func ChunkText(text string, maxLength int) []string {
	if maxLength <= 0 {
		maxLength = DefaultMaxChunkLength
	}

	var (
		chunks  []string
		current []string
		size    int
	)
	flush := func() {
		if len(current) > 0 {
			chunks = append(chunks, strings.Join(current, sentenceSep))
		}
		current, size = nil, 0
	}

	for _, unit := range sentenceSplitRe.Split(text, -1) {
		sentence := strings.TrimSpace(unit)
		n := utf8.RuneCountInString(sentence)
		if n < MinSentenceLength {
			continue
		}
		if len(current) > 0 && size+len(sentenceSep)+n > maxLength {
			flush()
		}
		if len(current) > 0 {
			size += len(sentenceSep)
		}
		current = append(current, sentence)
		size += n
	}
	flush()

	return chunks
}

// IndexStore persists the chunk index. Every write fully replaces the
// previous snapshot.
type IndexStore interface {
	// ReplaceIndex atomically replaces the stored index with chunks.
	// Readers observe either the old or the new snapshot, never a mix.
	ReplaceIndex(ctx context.Context, chunks []*Chunk) error

	// LoadIndex returns the stored snapshot in write order.
	// Returns ENOTFOUND if no index has been written.
	LoadIndex(ctx context.Context) ([]*Chunk, error)
}

// Embedder maps text to a fixed-dimension vector.
type Embedder interface {
	// Embed returns the vector for text. Identical text yields an
	// identical vector.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the length of every vector Embed produces.
	Dimensions() int
}

// BuildResult summarizes one index build.
type BuildResult struct {
	Pages   int // pages turned into chunks
	Skipped int // pages skipped after a fetch, extract or title failure
	Chunks  int // chunk records written
	Bytes   int // content bytes across chunks
	Tokens  int // token total across chunks, zero when not counted

	// Checksum identifies the written snapshot's content.
	Checksum string

	// Output holds the combined output of an external build command.
	Output string
}

// IndexBuilder rebuilds the chunk index from the site's pages.
type IndexBuilder interface {
	// Build crawls, extracts, chunks and embeds every configured page and
	// replaces the stored index. Per-page failures are skipped; a failed
	// final write is returned as an error.
	Build(ctx context.Context) (*BuildResult, error)
}
