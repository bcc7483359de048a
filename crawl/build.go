package crawl

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ohmanagement/sitebot"
)

// DefaultMinTextLength is the rune count below which a page is skipped.
const DefaultMinTextLength = 50

// Ensure Builder implements sitebot.IndexBuilder at compile time.
var _ sitebot.IndexBuilder = (*Builder)(nil)

// Builder runs the in-process index build: crawl, extract, chunk, embed and
// one full replace of the stored index.
type Builder struct {
	Crawler   *Crawler
	Site      sitebot.SiteConfig
	Extractor sitebot.Extractor
	Titles    sitebot.TitleExtractor
	Embedder  sitebot.Embedder
	Store     sitebot.IndexStore

	// TokenCounter is optional. When set, chunk tokens are totaled in the
	// build result.
	TokenCounter sitebot.TokenCounter

	MaxChunkLength int
	MinTextLength  int

	Logger *slog.Logger
	Now    func() time.Time
}

// Build processes every configured page in order. Pages that fail to fetch,
// extract, embed or yield too little text are logged and skipped. The
// accumulated chunks then replace the stored index, even when empty.
func (b *Builder) Build(ctx context.Context) (*sitebot.BuildResult, error) {
	result := &sitebot.BuildResult{}
	chunks := []*sitebot.Chunk{}

	for path, page := range b.Crawler.Crawl(ctx, b.Site.BaseURL, b.Site.Pages) {
		if page == nil {
			result.Skipped++
			continue
		}

		records, err := b.buildPage(ctx, page)
		if err != nil {
			b.logger().Warn("skip page", "path", path, "err", err)
			result.Skipped++
			continue
		}

		b.logger().Info("page indexed", "path", path, "chunks", len(records))
		chunks = append(chunks, records...)
		result.Pages++
	}

	// An interrupted build must not replace the index with a partial snapshot.
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("build index: %w", err)
	}

	var sum strings.Builder
	for _, c := range chunks {
		result.Bytes += len(c.Content)
		sum.WriteString(c.ID)
		sum.WriteString(c.Content)
		if b.TokenCounter != nil {
			if tokens, err := b.TokenCounter.CountTokens(ctx, c.Content); err == nil {
				result.Tokens += tokens
			}
		}
	}
	result.Chunks = len(chunks)
	result.Checksum = ComputeHash(sum.String())

	if err := b.Store.ReplaceIndex(ctx, chunks); err != nil {
		return nil, fmt.Errorf("write index: %w", err)
	}

	b.logger().Info("index written",
		"pages", result.Pages,
		"skipped", result.Skipped,
		"chunks", result.Chunks,
		"checksum", result.Checksum,
	)
	return result, nil
}

// buildPage turns one fetched page into chunk records.
func (b *Builder) buildPage(ctx context.Context, page *sitebot.RawPage) ([]*sitebot.Chunk, error) {
	text, err := b.Extractor.Extract(page.HTML)
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}

	minLength := b.MinTextLength
	if minLength <= 0 {
		minLength = DefaultMinTextLength
	}
	if n := utf8.RuneCountInString(text); n < minLength {
		return nil, sitebot.Errorf(sitebot.EINVALID, "page text too short: %d runes", n)
	}

	title, err := b.Titles.ExtractTitle(page.HTML)
	if err != nil {
		return nil, fmt.Errorf("title: %w", err)
	}
	if title == "" {
		title = b.Site.Name
	}

	doc := sitebot.PageDocument{Path: page.Path, URL: page.URL, Title: title, Text: text}
	now := b.now()

	pieces := sitebot.ChunkText(doc.Text, b.MaxChunkLength)
	records := make([]*sitebot.Chunk, 0, len(pieces))
	for i, content := range pieces {
		vec, err := b.Embedder.Embed(ctx, content)
		if err != nil {
			return nil, fmt.Errorf("embed chunk %d: %w", i, err)
		}
		records = append(records, &sitebot.Chunk{
			ID:        fmt.Sprintf("%s-%d", doc.Path, i),
			Title:     doc.Title,
			URL:       doc.URL,
			Excerpt:   sitebot.Excerpt(content),
			Content:   content,
			Embedding: vec,
			CreatedAt: now,
		})
	}
	return records, nil
}

func (b *Builder) now() time.Time {
	if b.Now == nil {
		return time.Now().UTC()
	}
	return b.Now()
}

func (b *Builder) logger() *slog.Logger {
	if b.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return b.Logger
}
