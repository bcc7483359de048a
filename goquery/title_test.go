package goquery_test

import (
	"testing"

	"github.com/ohmanagement/sitebot/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTitleExtractor_ExtractTitle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "uses title element",
			html: `<html><head><title>Home</title></head><body><h1>Welcome</h1></body></html>`,
			want: "Home",
		},
		{
			name: "falls back to first h1",
			html: `<html><body><h1>Unser Angebot</h1><h1>Zweite</h1></body></html>`,
			want: "Unser Angebot",
		},
		{
			name: "falls back to h1 when title is blank",
			html: `<html><head><title>   </title></head><body><h1>Kontakt</h1></body></html>`,
			want: "Kontakt",
		},
		{
			name: "collapses whitespace and decodes entities",
			html: "<title>\n  Über   uns &ndash; Team\n</title>",
			want: "Über uns Team",
		},
		{
			name: "drops characters outside the content alphabet",
			html: `<title>O&amp;H Management | Webdesign</title>`,
			want: "OH Management Webdesign",
		},
		{
			name: "returns empty when nothing matches",
			html: `<p>Nur Text</p>`,
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := goquery.NewTitleExtractor().ExtractTitle(tt.html)

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
