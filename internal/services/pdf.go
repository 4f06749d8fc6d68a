package services

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

var (
	// ErrUnreadablePDF is returned when the file cannot be parsed as a PDF
	// at all.
	ErrUnreadablePDF = errors.New("could not read pdf")
	// ErrNoDocumentText is returned when a PDF parsed but yielded no usable
	// text, e.g. a fully scanned document.
	ErrNoDocumentText = errors.New("no text could be extracted from the document")
)

type PDFService struct{}

func NewPDFService() *PDFService {
	return &PDFService{}
}

// ExtractText pulls plain text out of raw PDF bytes, best effort: pages that
// cannot be read contribute nothing instead of failing the whole document.
// Returns the full text and the page count.
func (s *PDFService) ExtractText(data []byte) (string, int, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", 0, fmt.Errorf("%w: %v", ErrUnreadablePDF, err)
	}

	var buf strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		buf.WriteString(text)
	}

	if strings.TrimSpace(buf.String()) == "" {
		return "", numPages, ErrNoDocumentText
	}
	return buf.String(), numPages, nil
}
