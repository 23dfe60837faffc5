package ingest

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dslipak/pdf"
	"github.com/lu4p/cat"
)

// ErrUnsupportedType gets its own sentinel so the pipeline can swap in a
// user-facing message naming the extension.
var ErrUnsupportedType = errors.New("unsupported file type")

// ExtractText converts a stored file into plain text, keyed by the filename
// extension (without the dot, lowercased).
func ExtractText(path string, extension string) (string, error) {
	switch extension {
	case "pdf":
		return extractPDF(path)
	case "docx", "rtf", "odt":
		return extractWithCat(path)
	case "txt", "md":
		return extractPlain(path)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, extension)
	}
}

func extractPDF(path string) (string, error) {
	f, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}

	var builder strings.Builder
	numPages := f.NumPage()
	for i := 1; i <= numPages; i++ {
		page := f.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := protectExtract(page)
		if err != nil {
			// a broken page should not sink the whole document
			logger.Error("Error parsing page content", "page", i, "error", err)
			continue
		}
		builder.WriteString(content)
	}
	return builder.String(), nil
}

func extractWithCat(path string) (string, error) {
	text, err := cat.File(path)
	if err != nil {
		return "", fmt.Errorf("failed to extract document text: %w", err)
	}
	return text, nil
}

func extractPlain(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	return string(raw), nil
}

// protectExtract guards against the pdf library hanging on malformed pages.
func protectExtract(page pdf.Page) (string, error) {
	type result struct {
		content string
		err     error
	}
	resChan := make(chan result, 1)

	go func() {
		content, err := page.GetPlainText(nil)
		resChan <- result{content, err}
	}()
	select {
	case r := <-resChan:
		return r.content, r.err
	case <-time.After(10 * time.Second):
		return "", errors.New("page extraction timeout")
	}
}
