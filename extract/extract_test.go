package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsSupported(t *testing.T) {
	e := NewTextExtractor()

	tests := []struct {
		name        string
		contentType string
		fileName    string
		want        bool
	}{
		{"pdf by mime", "application/pdf", "manual.pdf", true},
		{"docx by mime", "application/vnd.openxmlformats-officedocument.wordprocessingml.document", "manual.docx", true},
		{"plain text", "text/plain", "notes.txt", true},
		{"markdown", "text/markdown", "readme.md", true},
		{"pdf by extension only", "application/octet-stream", "manual.pdf", true},
		{"md by extension only", "", "SAFETY.markdown", true},
		{"mime with charset suffix", "text/plain; charset=utf-8", "notes.txt", true},
		{"png image", "image/png", "photo.png", false},
		{"bare binary", "application/octet-stream", "firmware.bin", false},
		{"zip without docx name", "application/zip", "archive.zip", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.IsSupported(tt.contentType, tt.fileName))
		})
	}
}

func TestExtractPlainText(t *testing.T) {
	e := NewTextExtractor()

	text, err := e.Extract(context.Background(), []byte("bleed the hydraulic line first"), "text/plain", "steps.txt")
	require.NoError(t, err)
	assert.Equal(t, "bleed the hydraulic line first", text)
}

func TestExtractMarkdown(t *testing.T) {
	e := NewTextExtractor()

	md := "# Startup\n\n1. open valve\n2. start motor\n"
	text, err := e.Extract(context.Background(), []byte(md), "", "startup.md")
	require.NoError(t, err)
	assert.Equal(t, md, text)
}

func TestExtractUnsupported(t *testing.T) {
	e := NewTextExtractor()

	_, err := e.Extract(context.Background(), []byte{0x89, 0x50}, "image/png", "photo.png")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestExtractMalformedPDF(t *testing.T) {
	e := NewTextExtractor()

	_, err := e.Extract(context.Background(), []byte("not a pdf at all"), "application/pdf", "broken.pdf")
	assert.ErrorIs(t, err, ErrExtraction)
}

func TestExtractMalformedDOCX(t *testing.T) {
	e := NewTextExtractor()

	_, err := e.Extract(context.Background(), []byte("not a zip"), "", "broken.docx")
	assert.ErrorIs(t, err, ErrExtraction)
}

func TestExtractDOCX(t *testing.T) {
	e := NewTextExtractor()

	data := buildDocx(t, `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>Drain the tank before servicing.</w:t></w:r></w:p>
    <w:p><w:r><w:t>Wear eye protection.</w:t></w:r></w:p>
  </w:body>
</w:document>`)

	text, err := e.Extract(context.Background(), data, "", "procedure.docx")
	require.NoError(t, err)
	assert.Contains(t, text, "Drain the tank before servicing.")
	assert.Contains(t, text, "Wear eye protection.")
}

func TestExtractDOCXMissingDocumentXML(t *testing.T) {
	e := NewTextExtractor()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/styles.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte("<styles/>"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	_, err = e.Extract(context.Background(), buf.Bytes(), "", "nodoc.docx")
	assert.ErrorIs(t, err, ErrExtraction)
}

func TestExtractCancelledContext(t *testing.T) {
	e := NewTextExtractor()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Extract(ctx, []byte("text"), "text/plain", "notes.txt")
	assert.ErrorIs(t, err, context.Canceled)
}

func buildDocx(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(documentXML))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}
