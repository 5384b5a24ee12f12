package service

import (
	"errors"
	"fmt"
	"mime"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"
	"go.uber.org/zap"
)

type receiptFormat int

const (
	receiptImage receiptFormat = iota
	receiptPDF
)

var errNoPDFText = errors.New("no text found in PDF")

// ReceiptReader pulls the text layer out of PDF receipts with go-fitz.
type ReceiptReader struct {
	logger *zap.Logger
}

func NewReceiptReader(logger *zap.Logger) *ReceiptReader {
	return &ReceiptReader{logger: logger}
}

// PDFText returns the text of every page joined by newlines. Scanned PDFs
// without a text layer yield errNoPDFText.
func (r *ReceiptReader) PDFText(data []byte) (string, error) {
	if len(data) == 0 {
		return "", errNoPDFText
	}

	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	var textBuilder strings.Builder
	for i := 0; i < doc.NumPage(); i++ {
		pageText, err := doc.Text(i)
		if err != nil {
			r.logger.Warn("Failed to extract text from page", zap.Int("page", i+1), zap.Error(err))
			continue
		}
		if pageText != "" {
			textBuilder.WriteString(pageText)
			textBuilder.WriteString("\n")
		}
	}

	text := strings.TrimSpace(sanitizeUTF8(textBuilder.String()))
	if text == "" {
		return "", errNoPDFText
	}

	r.logger.Debug("PDF text extracted",
		zap.Int("pages", doc.NumPage()),
		zap.Int("text_length", len(text)),
	)
	return text, nil
}

// receiptKind decides from the content type, or the extension when the
// client sent a generic one, whether a receipt is a PDF or an image.
func receiptKind(fileName, mimeType string) (receiptFormat, error) {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}

	switch {
	case mimeType == "application/pdf":
		return receiptPDF, nil
	case strings.HasPrefix(mimeType, "image/"):
		return receiptImage, nil
	}

	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".pdf":
		return receiptPDF, nil
	case ".jpg", ".jpeg", ".png", ".webp", ".heic", ".tif", ".tiff", ".bmp":
		return receiptImage, nil
	}
	return 0, invalid("unsupported file type %q (supported: images and PDF)", mimeType)
}

// uploadContentType returns a concrete content type for the provider when
// the client sent a generic one.
func uploadContentType(fileName, mimeType string, kind receiptFormat) string {
	mimeType = strings.TrimSpace(mimeType)
	if kind == receiptPDF {
		return "application/pdf"
	}
	if strings.HasPrefix(strings.ToLower(mimeType), "image/") {
		return mimeType
	}
	if t := mime.TypeByExtension(strings.ToLower(filepath.Ext(fileName))); strings.HasPrefix(t, "image/") {
		return t
	}
	return "image/jpeg"
}
