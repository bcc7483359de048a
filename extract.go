package sitebot

import (
	"html"
	"regexp"
	"strings"
	"unicode"
)

// noiseBlocks match whole elements whose content never belongs in the index.
//
// The patterns are non-greedy, so a block nested inside another block with
// the same tag name ends at the first closing tag and the remainder of the
// outer block leaks into the text. This is a known limitation of pattern
// based extraction and is left as is.
var noiseBlocks = []*regexp.Regexp{
	regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`),
	regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`),
	regexp.MustCompile(`(?is)<nav[^>]*>.*?</nav>`),
	regexp.MustCompile(`(?is)<footer[^>]*>.*?</footer>`),
	regexp.MustCompile(`(?is)<header[^>]*>.*?</header>`),
}

var tagRe = regexp.MustCompile(`<[^>]+>`)

// Ensure TextExtractor implements Extractor at compile time.
var _ Extractor = TextExtractor{}

// TextExtractor implements Extractor with ExtractText.
type TextExtractor struct{}

// Extract returns ExtractText(html). Empty input is rejected.
func (TextExtractor) Extract(html string) (string, error) {
	if strings.TrimSpace(html) == "" {
		return "", Errorf(EINVALID, "empty HTML input")
	}
	return ExtractText(html), nil
}

// ExtractText strips markup and noise from raw HTML and returns normalized
// text. Script, style, nav, footer and header blocks are removed, remaining
// tags are replaced by spaces and entities are decoded before the result is
// passed through NormalizeText.
//
// ExtractText is pure and idempotent: applying it to its own output returns
// the output unchanged.
func ExtractText(raw string) string {
	s := raw
	for _, re := range noiseBlocks {
		s = re.ReplaceAllString(s, "")
	}
	s = tagRe.ReplaceAllString(s, " ")
	s = html.UnescapeString(s)
	return NormalizeText(s)
}

// NormalizeText drops every character outside the allowed set, collapses
// whitespace runs to a single space and trims the result.
//
// The allowed set is ASCII letters, digits and underscore, the German
// umlauts and ß, and the punctuation . , ! ? ( ) -.
func NormalizeText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
			b.WriteByte(' ')
		case isAllowedRune(r):
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func isAllowedRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
		return true
	}
	return strings.ContainsRune("äöüßÄÖÜ.,!?()-", r)
}
