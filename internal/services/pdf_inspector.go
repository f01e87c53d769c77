package services

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

var pdfMagic = []byte("%PDF-")

type PDFInspector interface {
	Inspect(data []byte) (*PDFInfo, error)
}

// PDFInfo describes an uploaded document before it is rendered.
type PDFInfo struct {
	Size       int
	PageCount  int
	TextLength int
	Encrypted  bool
	Warning    string
}

// HasText reports whether any page carried extractable text. Scanned résumés
// without a text layer still rasterize fine.
func (i *PDFInfo) HasText() bool {
	return i.TextLength > 0
}

type pdfInspector struct {
	maxBytes int64
}

func NewPDFInspector(maxBytes int64) PDFInspector {
	return &pdfInspector{
		maxBytes: maxBytes,
	}
}

// Inspect rejects non-PDF and oversized uploads. Parser failures are reported
// in Warning rather than as errors since the renderer is more tolerant.
func (p *pdfInspector) Inspect(data []byte) (*PDFInfo, error) {
	if !IsPDF(data) {
		return nil, ErrNotPDF
	}
	if p.maxBytes > 0 && int64(len(data)) > p.maxBytes {
		return nil, ErrFileTooLarge
	}

	info := &PDFInfo{Size: len(data)}
	if err := readPDFText(data, info); err != nil {
		info.Warning = err.Error()
	}
	return info, nil
}

func readPDFText(data []byte, info *PDFInfo) (err error) {
	// The parser panics on some malformed cross-reference tables.
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("failed to parse PDF: %v", rec)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if errors.Is(err, pdf.ErrInvalidPassword) {
		info.Encrypted = true
	}
	if err != nil {
		return fmt.Errorf("failed to open PDF: %w", err)
	}

	info.PageCount = r.NumPage()
	for pageIndex := 1; pageIndex <= info.PageCount; pageIndex++ {
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// skip unreadable pages
			continue
		}
		info.TextLength += len(strings.TrimSpace(text))
	}
	return nil
}

func IsPDF(data []byte) bool {
	return bytes.HasPrefix(data, pdfMagic)
}
