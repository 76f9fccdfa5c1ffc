package trafilatura_test

import (
	"strings"
	"testing"

	"github.com/SirWilliamIII/wanderer/trafilatura"
	"github.com/stretchr/testify/assert"
)

func TestTextExtractor_Text(t *testing.T) {
	t.Parallel()

	html := `<html><head><title>Post</title></head><body>
		<nav><a href="/">Home</a><a href="/about">About</a></nav>
		<article>
			<h1>A proper article</h1>
			<p>This is the main body of the article with enough prose to be
			recognized as content rather than boilerplate. It keeps going for
			a couple of sentences so the extractor has something to work with.</p>
		</article>
		<footer>Copyright 2026</footer>
	</body></html>`

	e := trafilatura.NewTextExtractor()
	text := e.Text(html)

	assert.Contains(t, text, "main body of the article")
	assert.False(t, strings.Contains(text, "Copyright"), "footer boilerplate should be stripped")
}

func TestTextExtractor_Text_empty_input(t *testing.T) {
	t.Parallel()

	e := trafilatura.NewTextExtractor()
	assert.Empty(t, e.Text(""))
}

func TestTextExtractor_Text_garbage_is_not_an_error(t *testing.T) {
	t.Parallel()

	e := trafilatura.NewTextExtractor()
	assert.NotPanics(t, func() { e.Text("<<<not html>>>") })
}
