// Package trafilatura implements sitebot.Extractor with go-trafilatura's
// boilerplate removal.
package trafilatura

import (
	"strings"

	"github.com/markusmobius/go-trafilatura"
	"github.com/ohmanagement/sitebot"
)

// Ensure Extractor implements sitebot.Extractor at compile time.
var _ sitebot.Extractor = (*Extractor)(nil)

// Extractor wraps go-trafilatura to extract main content from HTML.
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

	opts := trafilatura.Options{
		EnableFallback: true,
	}

	result, err := trafilatura.Extract(strings.NewReader(rawHTML), opts)
	if err != nil {
		return "", sitebot.Errorf(sitebot.EPARSE, "trafilatura: %v", err)
	}

	return sitebot.NormalizeText(result.ContentText), nil
}
