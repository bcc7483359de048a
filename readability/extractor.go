// Package readability implements sitebot.Extractor with go-readability's
// main-content detection.
package readability

import (
	"strings"

	"github.com/go-shiori/go-readability"
	"github.com/ohmanagement/sitebot"
)

// Ensure Extractor implements sitebot.Extractor at compile time.
var _ sitebot.Extractor = (*Extractor)(nil)

// Extractor wraps go-readability to extract main content from HTML.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract returns the normalized text of the page's main content.
func (e *Extractor) Extract(rawHTML string) (string, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return "", sitebot.Errorf(sitebot.EINVALID, "empty HTML input")
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), nil)
	if err != nil {
		return "", sitebot.Errorf(sitebot.EPARSE, "readability: %v", err)
	}

	return sitebot.NormalizeText(article.TextContent), nil
}
