// Package extract turns uploaded document bytes into text. It tries the
// cheapest method first: plain-text decode for text files, then the PDF
// text layer, then a generic UTF-8 decode, and finally an injected OCR
// runner for scanned documents. The first non-empty result wins.
package extract

import (
	"bytes"
	"context"
	"strings"

	"github.com/ledongthuc/pdf"
)

// OCRRunner is the boundary to an external OCR engine. Implementations OCR
// the given bytes (an image or a scanned PDF) and return the recognized
// text. Lang follows tesseract conventions, e.g. "eng" or "hin+eng".
type OCRRunner interface {
	Run(ctx context.Context, data []byte, lang string) (string, error)
}

// Result carries extracted text and how it was obtained.
type Result struct {
	RawText string
	OCRUsed bool
	Source  string // "pdf_text", "ocr" or "plain_text"
}

// Service extracts text from document bytes.
type Service struct {
	ocr  OCRRunner
	lang string
}

// Option configures a Service.
type Option func(*Service)

// WithOCR wires an external OCR runner as the last-resort extractor.
func WithOCR(r OCRRunner) Option {
	return func(s *Service) { s.ocr = r }
}

// WithHindi requests Hindi+English OCR instead of English-only.
func WithHindi() Option {
	return func(s *Service) { s.lang = "hin+eng" }
}

// NewService builds an extraction service. Without WithOCR, scanned
// documents yield empty text rather than an error.
func NewService(opts ...Option) *Service {
	s := &Service{lang: "eng"}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var textExtensions = []string{".txt", ".md", ".csv", ".log", ".json"}

func hasTextExtension(filename string) bool {
	low := strings.ToLower(filename)
	for _, ext := range textExtensions {
		if strings.HasSuffix(low, ext) {
			return true
		}
	}
	return false
}

// IsPDF reports whether the bytes start with the PDF magic header.
func IsPDF(data []byte) bool {
	return bytes.HasPrefix(data, []byte("%PDF"))
}

// Extract returns the document text. Extraction failures degrade to empty
// text; the caller treats empty text as an unknown document, never as a
// hard error.
func (s *Service) Extract(ctx context.Context, data []byte, filename string) (Result, error) {
	if hasTextExtension(filename) {
		return Result{RawText: decodeUTF8(data), Source: "plain_text"}, nil
	}

	if IsPDF(data) {
		if txt := pdfTextLayer(data); strings.TrimSpace(txt) != "" {
			return Result{RawText: txt, Source: "pdf_text"}, nil
		}
		if s.ocr != nil {
			txt, err := s.ocr.Run(ctx, data, s.lang)
			if err == nil && strings.TrimSpace(txt) != "" {
				return Result{RawText: txt, OCRUsed: true, Source: "ocr"}, nil
			}
		}
		return Result{Source: "pdf_text"}, nil
	}

	if txt := decodeUTF8(data); strings.TrimSpace(txt) != "" {
		return Result{RawText: txt, Source: "plain_text"}, nil
	}

	if s.ocr != nil {
		txt, err := s.ocr.Run(ctx, data, s.lang)
		if err == nil && strings.TrimSpace(txt) != "" {
			return Result{RawText: txt, OCRUsed: true, Source: "ocr"}, nil
		}
	}
	return Result{Source: "plain_text"}, nil
}

// pdfTextLayer pulls the embedded text layer out of a PDF. Encrypted or
// malformed files simply return no text.
func pdfTextLayer(data []byte) string {
	defer func() {
		// The pdf library panics on some malformed cross-reference tables.
		_ = recover()
	}()
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return ""
	}
	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		txt, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		sb.WriteString(txt)
		sb.WriteString("\n")
	}
	return sb.String()
}

func decodeUTF8(data []byte) string {
	return string(bytes.ToValidUTF8(data, []byte("")))
}
