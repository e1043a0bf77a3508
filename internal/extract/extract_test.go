package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docextract-backend/internal/extract/extracttest"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"report.pdf", FormatPDF},
		{"/tmp/REPORT.PDF", FormatPDF},
		{"letter.docx", FormatDOCX},
		{"old.Doc", FormatDOC},
		{"archive.tar.pdf", FormatPDF},
		{"index.html", FormatFallback},
		{"README", FormatFallback},
		{"dir.pdf/notes", FormatFallback},
		{"trailing.", FormatFallback},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DetectFormat(tt.path), tt.path)
	}
}

func TestDecodePDFJoinsPages(t *testing.T) {
	dir := t.TempDir()
	path := extracttest.WriteFile(t, dir, "two.pdf", extracttest.PDF("Hello", "World"))

	text, err := NewRegistry().Decode(context.Background(), FormatPDF, path)
	require.NoError(t, err)
	assert.Equal(t, "Hello\nWorld", text)
}

func TestDecodePDFEmptyTextIsNotAnError(t *testing.T) {
	dir := t.TempDir()
	path := extracttest.WriteFile(t, dir, "blank.pdf", extracttest.PDF(""))

	text, err := NewRegistry().Decode(context.Background(), FormatPDF, path)
	require.NoError(t, err)
	assert.Equal(t, "", text)
}

func TestDecodePDFCorrupt(t *testing.T) {
	dir := t.TempDir()
	path := extracttest.WriteFile(t, dir, "bad.pdf", []byte("not a pdf at all"))

	_, err := NewRegistry().Decode(context.Background(), FormatPDF, path)
	var decErr *DecodeError
	require.ErrorAs(t, err, &decErr)
	assert.Equal(t, FormatPDF, decErr.Format)
}

func TestDecodeDOCXTrailingNewline(t *testing.T) {
	dir := t.TempDir()
	path := extracttest.WriteFile(t, dir, "two.docx", extracttest.DOCX("A", "B"))

	text, err := NewRegistry().Decode(context.Background(), FormatDOCX, path)
	require.NoError(t, err)
	assert.Equal(t, "A\nB\n", text)
}

func TestDecodeDOCXTabsAndEmptyParagraphs(t *testing.T) {
	dir := t.TempDir()
	path := extracttest.WriteFile(t, dir, "tabs.docx", extracttest.DOCX("name\tvalue", "", "a < b"))

	text, err := NewRegistry().Decode(context.Background(), FormatDOCX, path)
	require.NoError(t, err)
	assert.Equal(t, "name\tvalue\n\na < b\n", text)
}

func TestDecodeDOCXMissingDocument(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("notes.txt")
	require.NoError(t, err)
	_, err = w.Write([]byte("hello"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	path := extracttest.WriteFile(t, t.TempDir(), "notes.docx", buf.Bytes())
	_, err = NewRegistry().Decode(context.Background(), FormatDOCX, path)
	var decErr *DecodeError
	require.ErrorAs(t, err, &decErr)
	assert.Equal(t, FormatDOCX, decErr.Format)
}

func TestDecodeHTMLFallbackDropsScripts(t *testing.T) {
	page := `<html><head><title>T</title><style>p{}</style></head>` +
		`<body><p>Hello</p><script>var x = 1;</script><div>World</div></body></html>`
	path := extracttest.WriteFile(t, t.TempDir(), "page.html", []byte(page))

	text, err := NewRegistry().Decode(context.Background(), FormatFallback, path)
	require.NoError(t, err)
	assert.Equal(t, "THelloWorld", text)
}

func TestDecodeHTMLFallbackLatin1(t *testing.T) {
	page := []byte("<html><head><meta charset=\"iso-8859-1\"></head><body>caf\xe9</body></html>")
	path := extracttest.WriteFile(t, t.TempDir(), "page.htm", page)

	text, err := NewRegistry().Decode(context.Background(), FormatFallback, path)
	require.NoError(t, err)
	assert.Equal(t, "café", text)
}

func TestDecodeDOCUnavailable(t *testing.T) {
	prev := lookPath
	lookPath = func(string) (string, error) { return "", errors.New("not found") }
	t.Cleanup(func() { lookPath = prev })

	reg := NewRegistry()
	assert.False(t, reg.Available(FormatDOC))

	path := extracttest.WriteFile(t, t.TempDir(), "old.doc", []byte("binary"))
	_, err := reg.Decode(context.Background(), FormatDOC, path)
	assert.ErrorIs(t, err, ErrUnsupportedPlatform)
	var decErr *DecodeError
	require.ErrorAs(t, err, &decErr)
	assert.Equal(t, FormatDOC, decErr.Format)
}

func TestDecodeDOCWithCommand(t *testing.T) {
	cat, err := lookPath("cat")
	if err != nil {
		t.Skip("cat not available")
	}
	reg := NewRegistry(WithDecoder(FormatDOC, CommandDecoder{Path: cat}))
	assert.True(t, reg.Available(FormatDOC))

	path := extracttest.WriteFile(t, t.TempDir(), "old.doc", []byte("legacy text"))
	text, err := reg.Decode(context.Background(), FormatDOC, path)
	require.NoError(t, err)
	assert.Equal(t, "legacy text", text)
}

func TestRegistryWithoutFallback(t *testing.T) {
	reg := NewRegistry(WithDecoder(FormatFallback, nil))
	_, err := reg.Decode(context.Background(), FormatFallback, "x.txt")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestRegistryCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	path := filepath.Join(t.TempDir(), "x.pdf")
	require.NoError(t, os.WriteFile(path, extracttest.PDF("x"), 0o644))

	_, err := NewRegistry().Decode(ctx, FormatPDF, path)
	assert.ErrorIs(t, err, context.Canceled)
}
