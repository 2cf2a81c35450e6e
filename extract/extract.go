package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

const (
	mimePDF      = "application/pdf"
	mimeDOCX     = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	mimeText     = "text/plain"
	mimeMarkdown = "text/markdown"
)

var (
	// ErrUnsupportedFormat indicates the content type/file name pair is not
	// in the supported set. Callers skip the file and continue.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrExtraction indicates the extractor could not produce text from a
	// supported file (malformed payload, broken internal structure).
	ErrExtraction = errors.New("text extraction failed")
)

// Extractor produces plain text from raw file bytes, keyed by content type
// and file name. Implementations must be safe for concurrent use.
type Extractor interface {
	// IsSupported reports whether the content type/file name pair can be
	// extracted at all.
	IsSupported(contentType, fileName string) bool

	// Extract returns the plain text of the payload. Returns an error
	// wrapping ErrUnsupportedFormat or ErrExtraction.
	Extract(ctx context.Context, data []byte, contentType, fileName string) (string, error)
}

// TextExtractor extracts text from PDF, DOCX, plain-text, and Markdown files.
type TextExtractor struct {
	logger *slog.Logger
}

var _ Extractor = (*TextExtractor)(nil)

// NewTextExtractor creates a TextExtractor.
func NewTextExtractor() *TextExtractor {
	return &TextExtractor{
		logger: slog.Default().With("component", "text-extractor"),
	}
}

// IsSupported reports whether the content type/file name pair is extractable.
func (e *TextExtractor) IsSupported(contentType, fileName string) bool {
	switch normalizeMimeType(contentType, fileName) {
	case mimePDF, mimeDOCX, mimeText, mimeMarkdown:
		return true
	default:
		return false
	}
}

// Extract returns the plain text of the payload.
func (e *TextExtractor) Extract(ctx context.Context, data []byte, contentType, fileName string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	normalized := normalizeMimeType(contentType, fileName)
	e.logger.Debug("extracting text", "fileName", fileName, "contentType", normalized, "bytes", len(data))

	var (
		text string
		err  error
	)
	switch normalized {
	case mimePDF:
		text, err = extractPDF(data)
	case mimeDOCX:
		text, err = extractDOCX(data)
	case mimeText, mimeMarkdown:
		text = string(data)
	default:
		return "", fmt.Errorf("%w: %s (%s)", ErrUnsupportedFormat, normalized, fileName)
	}
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrExtraction, fileName, err)
	}
	return text, nil
}

func extractPDF(data []byte) (string, error) {
	reader := bytes.NewReader(data)
	pdfReader, err := pdf.NewReader(reader, int64(len(data)))
	if err != nil {
		return "", err
	}
	plain, err := pdfReader.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func extractDOCX(data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.New("empty docx data")
	}
	readerAt := bytes.NewReader(data)
	zr, err := zip.NewReader(readerAt, int64(len(data)))
	if err != nil {
		return "", err
	}

	var docFile *zip.File
	for _, f := range zr.File {
		name := strings.ReplaceAll(f.Name, "\\", "/")
		if name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return "", errors.New("document.xml file not found")
	}

	rc, err := docFile.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return "", err
	}

	return stripDocxXML(string(raw)), nil
}

// stripDocxXML flattens word/document.xml into plain text, inserting newlines
// at paragraph and line-break boundaries.
func stripDocxXML(raw string) string {
	decoder := xml.NewDecoder(strings.NewReader(raw))
	var buf strings.Builder
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return raw
		}
		switch t := tok.(type) {
		case xml.CharData:
			buf.WriteString(string(t))
		case xml.EndElement:
			if t.Name.Local == "p" || t.Name.Local == "br" {
				if buf.Len() > 0 {
					buf.WriteString("\n")
				}
			}
		}
	}
	return strings.TrimSpace(buf.String())
}

// normalizeMimeType cleans the declared content type and falls back to the
// file extension when the declaration is generic or missing.
func normalizeMimeType(contentType, fileName string) string {
	clean := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))

	switch clean {
	case mimePDF, mimeDOCX, mimeText, mimeMarkdown:
		return clean
	}

	ext := strings.ToLower(filepath.Ext(fileName))
	switch ext {
	case ".pdf":
		return mimePDF
	case ".docx":
		return mimeDOCX
	case ".txt":
		return mimeText
	case ".md", ".markdown":
		return mimeMarkdown
	}

	return clean
}
