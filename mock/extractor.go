package mock

import "github.com/ohmanagement/sitebot"

var (
	_ sitebot.Extractor      = (*Extractor)(nil)
	_ sitebot.TitleExtractor = (*TitleExtractor)(nil)
)

// Extractor is a mock implementation of sitebot.Extractor.
type Extractor struct {
	ExtractFn func(html string) (string, error)
}

func (e *Extractor) Extract(html string) (string, error) {
	return e.ExtractFn(html)
}

// TitleExtractor is a mock implementation of sitebot.TitleExtractor.
type TitleExtractor struct {
	ExtractTitleFn func(html string) (string, error)
}

func (e *TitleExtractor) ExtractTitle(html string) (string, error) {
	return e.ExtractTitleFn(html)
}
