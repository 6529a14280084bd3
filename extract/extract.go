package extract

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/tmc/langchaingo/documentloaders"
)

var ErrUnsupportedFileType = errors.New("extract: only PDF and DOCX files are supported")

// Text extracts the plain text of an uploaded document, dispatching on the
// file extension.
func Text(ctx context.Context, filename string, r io.ReaderAt, size int64) (text string, err error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return pdfText(ctx, r, size)
	case ".docx":
		return docxText(r, size)
	}
	return "", ErrUnsupportedFileType
}

func pdfText(ctx context.Context, r io.ReaderAt, size int64) (text string, err error) {
	docs, err := documentloaders.NewPDF(r, size).Load(ctx)
	if err != nil {
		return "", fmt.Errorf("extract: failed to load PDF: %w", err)
	}
	var sb strings.Builder
	for _, doc := range docs {
		sb.WriteString(doc.PageContent)
		sb.WriteString("\n")
	}
	return strings.TrimSpace(sb.String()), nil
}
