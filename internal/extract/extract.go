package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

const (
	mimePDF  = "application/pdf"
	mimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

	// truncationMarker is appended when extracted text exceeds the cap.
	truncationMarker = "…"
)

var (
	// ErrUnsupportedFormat is returned for anything that is not PDF or DOCX.
	ErrUnsupportedFormat = errors.New("unsupported document format")
	// ErrExtractionFailed is returned when a document cannot be read.
	ErrExtractionFailed = errors.New("document extraction failed")
)

// Document is the result of a successful extraction.
type Document struct {
	RawText      string
	SourceFormat string
	Length       int
	Truncated    bool
}

// FromBytes extracts plain text from an in-memory PDF or DOCX payload,
// clamped to maxChars runes. Overflow is truncated and flagged, never fatal.
func FromBytes(ctx context.Context, data []byte, mimeType, fileName string, maxChars int) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}

	format := normalizeFormat(mimeType, fileName)
	var (
		text string
		err  error
	)
	switch format {
	case mimePDF:
		text, err = extractPDF(data)
	case mimeDOCX:
		text, err = extractDOCX(data)
	default:
		return Document{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return Document{}, fmt.Errorf("%w: %s: %v", ErrExtractionFailed, fileName, err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return Document{}, fmt.Errorf("%w: %s: no text content", ErrExtractionFailed, fileName)
	}

	clamped, truncated := clamp(text, maxChars)
	return Document{
		RawText:      clamped,
		SourceFormat: format,
		Length:       len([]rune(clamped)),
		Truncated:    truncated,
	}, nil
}

func clamp(text string, maxChars int) (string, bool) {
	if maxChars <= 0 {
		return text, false
	}
	runes := []rune(text)
	if len(runes) <= maxChars {
		return text, false
	}
	return string(runes[:maxChars]) + truncationMarker, true
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
	reader, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	defer reader.Close()
	return stripDocxXML(reader.Editable().GetContent()), nil
}

// stripDocxXML removes WordprocessingML tags, keeping paragraph breaks.
func stripDocxXML(raw string) string {
	raw = strings.ReplaceAll(raw, "</w:p>", "\n")
	raw = strings.ReplaceAll(raw, "<w:br/>", "\n")
	var buf strings.Builder
	inTag := false
	for _, r := range raw {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			buf.WriteRune(r)
		}
	}
	return strings.TrimSpace(buf.String())
}

func normalizeFormat(mimeType, fileName string) string {
	clean := strings.ToLower(strings.TrimSpace(strings.Split(mimeType, ";")[0]))
	switch clean {
	case mimePDF, mimeDOCX:
		return clean
	}
	// Browsers sometimes send DOCX as application/zip or octet-stream;
	// fall back to the file extension.
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".pdf":
		return mimePDF
	case ".docx":
		return mimeDOCX
	default:
		return clean
	}
}
