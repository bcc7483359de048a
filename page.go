package sitebot

// PageDocument is a crawled page reduced to normalized text.
// It only exists during a build pass.
type PageDocument struct {
	Path  string
	URL   string
	Title string
	Text  string
}

// RawPage is the result of crawling one configured page path.
type RawPage struct {
	Path string
	URL  string
	HTML string
}
