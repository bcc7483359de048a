package readability_test

import (
	"testing"

	"github.com/ohmanagement/sitebot"
	"github.com/ohmanagement/sitebot/readability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractor_RejectsEmptyInput(t *testing.T) {
	t.Parallel()

	ext := readability.NewExtractor()
	_, err := ext.Extract("")

	require.Error(t, err)
	assert.Equal(t, sitebot.EINVALID, sitebot.ErrorCode(err))
}

func TestExtractor_ExtractsArticleText(t *testing.T) {
	t.Parallel()

	html := `<!DOCTYPE html>
<html>
<head><title>Angebot</title></head>
<body>
<nav><a href="/">Startseite Navigation</a><a href="/kontakt.html">Kontakt Navigation</a></nav>
<article>
<h1>Unser Angebot</h1>
<p>Wir entwickeln moderne Websites für kleine und mittlere Unternehmen in Niederösterreich.</p>
<p>Dazu gehören Suchmaschinenoptimierung, laufende Wartung, Hosting mit SSL und persönlicher E-Mail-Support.</p>
</article>
<footer>Impressum Footer Link</footer>
</body>
</html>`

	ext := readability.NewExtractor()
	text, err := ext.Extract(html)

	require.NoError(t, err)
	assert.Contains(t, text, "Wir entwickeln moderne Websites")
	assert.Contains(t, text, "Suchmaschinenoptimierung")
	assert.NotContains(t, text, "Startseite Navigation")
	assert.NotContains(t, text, "Impressum Footer Link")
}

func TestExtractor_NormalizesText(t *testing.T) {
	t.Parallel()

	html := `<html><body><article><p>Preis:   100 €  &amp;  mehr —  jetzt anfragen!</p>
<p>Ein zweiter Absatz sorgt dafür, dass genügend Inhalt für die Erkennung vorhanden ist.</p></article></body></html>`

	ext := readability.NewExtractor()
	text, err := ext.Extract(html)

	require.NoError(t, err)
	assert.Equal(t, text, sitebot.NormalizeText(text))
	assert.NotContains(t, text, "€")
	assert.NotContains(t, text, "  ")
}
