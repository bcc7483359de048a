// Package crawl provides the build-time indexing pipeline. It fetches the
// site's configured pages, turns them into chunk records and replaces the
// stored index, either on demand or inside a scheduled window.
package crawl

import (
	"context"
	"iter"
	"log/slog"
	"net/url"

	"github.com/ohmanagement/sitebot"
	"github.com/ohmanagement/sitebot/bloom"
)

// Crawler fetches a fixed list of page paths below a base URL.
type Crawler struct {
	Fetcher     sitebot.Fetcher
	RateLimiter *DomainLimiter
	Logger      *slog.Logger
}

// Crawl returns a lazy sequence over paths. Each page is fetched only when
// the consumer pulls it. A page that fails to fetch is logged and yielded
// as a nil page; remaining pages are still crawled. Duplicate paths are
// fetched once.
func (c *Crawler) Crawl(ctx context.Context, baseURL string, paths []string) iter.Seq2[string, *sitebot.RawPage] {
	return func(yield func(string, *sitebot.RawPage) bool) {
		seen := newPathSet(len(paths))
		for _, path := range paths {
			if seen.visit(path) {
				continue
			}
			if ctx.Err() != nil {
				return
			}
			if !yield(path, c.fetch(ctx, baseURL, path)) {
				return
			}
		}
	}
}

func (c *Crawler) fetch(ctx context.Context, baseURL, path string) *sitebot.RawPage {
	pageURL, err := resolve(baseURL, path)
	if err != nil {
		c.logger().Warn("skip page", "path", path, "err", err)
		return nil
	}

	if c.RateLimiter != nil {
		u, _ := url.Parse(pageURL)
		if err := c.RateLimiter.Wait(ctx, u.Host); err != nil {
			c.logger().Warn("skip page", "url", pageURL, "err", err)
			return nil
		}
	}

	html, err := c.Fetcher.Fetch(ctx, pageURL)
	if err != nil {
		c.logger().Warn("skip page", "url", pageURL, "err", err)
		return nil
	}

	return &sitebot.RawPage{Path: path, URL: pageURL, HTML: html}
}

func (c *Crawler) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.Logger
}

// resolve appends path to baseURL.
func resolve(baseURL, path string) (string, error) {
	base, err := url.Parse(baseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return "", sitebot.Errorf(sitebot.EINVALID, "invalid base URL %q", baseURL)
	}
	pageURL := sitebot.SiteConfig{BaseURL: baseURL}.PageURL(path)
	if _, err := url.Parse(pageURL); err != nil {
		return "", sitebot.Errorf(sitebot.EINVALID, "invalid page path %q", path)
	}
	return pageURL, nil
}

// pathSet tracks visited paths. The bloom filter answers most lookups; a
// positive answer is confirmed against the exact set so a false positive
// never drops a page.
type pathSet struct {
	filter *bloom.Filter
	exact  map[string]struct{}
}

func newPathSet(n int) *pathSet {
	return &pathSet{
		filter: bloom.NewFilter(uint(n), bloom.DefaultFalsePositiveRate),
		exact:  make(map[string]struct{}, n),
	}
}

// visit marks path as visited and reports whether it was visited before.
func (s *pathSet) visit(path string) bool {
	if s.filter.TestAndAdd(path) {
		if _, ok := s.exact[path]; ok {
			return true
		}
	}
	s.exact[path] = struct{}{}
	return false
}
