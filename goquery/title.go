// Package goquery implements sitebot.TitleExtractor over a parsed DOM.
package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ohmanagement/sitebot"
)

// Ensure TitleExtractor implements sitebot.TitleExtractor at compile time.
var _ sitebot.TitleExtractor = (*TitleExtractor)(nil)

// TitleExtractor derives page titles from the document head or first heading.
type TitleExtractor struct{}

// NewTitleExtractor creates a new TitleExtractor.
func NewTitleExtractor() *TitleExtractor {
	return &TitleExtractor{}
}

// ExtractTitle returns the text of <title>, else of the first <h1>, else "".
// Titles pass through sitebot.NormalizeText like page content.
func (e *TitleExtractor) ExtractTitle(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", sitebot.Errorf(sitebot.EPARSE, "failed to parse HTML: %v", err)
	}

	if title := sitebot.NormalizeText(doc.Find("title").First().Text()); title != "" {
		return title, nil
	}
	return sitebot.NormalizeText(doc.Find("h1").First().Text()), nil
}
