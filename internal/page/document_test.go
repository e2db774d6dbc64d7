package page_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rohmanhakim/last-updated/internal/metadata"
	"github.com/rohmanhakim/last-updated/internal/page"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePage = `<!DOCTYPE html>
<html>
<head><title>Sentiment Analysis</title></head>
<body>
<main><h1>Sentiment Analysis</h1></main>
<footer><p id="last-updated">Last updated: loading&hellip;</p><span id="a.b">x</span></footer>
</body>
</html>`

func loadSample(t *testing.T) *page.Document {
	t.Helper()
	doc, err := page.Load(strings.NewReader(samplePage))
	require.NoError(t, err)
	return doc
}

func TestSetTextByID(t *testing.T) {
	doc := loadSample(t)

	ok := doc.SetTextByID("last-updated", "Last updated: May 14, 2023")
	require.True(t, ok)

	text, found := doc.TextByID("last-updated")
	require.True(t, found)
	assert.Equal(t, "Last updated: May 14, 2023", text)

	out, err := doc.HTML()
	require.NoError(t, err)
	assert.Contains(t, string(out), `<p id="last-updated">Last updated: May 14, 2023</p>`)
}

func TestSetTextByID_MissingElementIsNoop(t *testing.T) {
	doc := loadSample(t)
	before, err := doc.HTML()
	require.NoError(t, err)

	ok := doc.SetTextByID("missing", "Last updated: unknown")
	assert.False(t, ok)

	after, err := doc.HTML()
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
}

func TestSetTextByID_EscapesMarkup(t *testing.T) {
	doc := loadSample(t)

	require.True(t, doc.SetTextByID("last-updated", "<b>bold</b> & more"))

	out, err := doc.HTML()
	require.NoError(t, err)
	assert.Contains(t, string(out), "&lt;b&gt;bold&lt;/b&gt; &amp; more")
}

func TestSetTextByID_IDWithCSSMetacharacters(t *testing.T) {
	doc := loadSample(t)

	assert.True(t, doc.HasElement("a.b"))
	assert.True(t, doc.SetTextByID("a.b", "y"))
	text, _ := doc.TextByID("a.b")
	assert.Equal(t, "y", text)
}

func TestRender_StableAfterFirstPass(t *testing.T) {
	doc := loadSample(t)
	first, err := doc.HTML()
	require.NoError(t, err)

	again, err := page.Load(strings.NewReader(string(first)))
	require.NoError(t, err)
	second, err := again.HTML()
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "index.html")
	require.NoError(t, os.WriteFile(path, []byte(samplePage), 0644))

	doc, err := page.LoadFile(path)
	require.NoError(t, err)
	assert.True(t, doc.HasElement("last-updated"))
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := page.LoadFile(filepath.Join(t.TempDir(), "nope.html"))
	require.Error(t, err)

	var pageErr *page.PageError
	require.True(t, errors.As(err, &pageErr))
	assert.Equal(t, page.ErrCauseReadFailure, pageErr.Cause)
	assert.Equal(t, metadata.CauseStorageFailure, page.MapPageErrorToMetadataCause(pageErr))
}
