package sitebot

// Extractor reduces raw HTML to normalized page text.
type Extractor interface {
	// Extract processes raw HTML and returns whitespace-collapsed text
	// restricted to the allowed character set (see NormalizeText).
	Extract(html string) (string, error)
}

// TitleExtractor derives a page title from raw HTML.
type TitleExtractor interface {
	// ExtractTitle returns the <title> text, else the first <h1> text,
	// else the empty string.
	ExtractTitle(html string) (string, error)
}
