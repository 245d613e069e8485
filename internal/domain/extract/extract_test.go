package extract

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOCR struct {
	text string
	err  error
	lang string
}

func (f *fakeOCR) Run(_ context.Context, _ []byte, lang string) (string, error) {
	f.lang = lang
	return f.text, f.err
}

func TestExtract(t *testing.T) {
	ctx := context.Background()

	t.Run("txt files decode directly", func(t *testing.T) {
		res, err := NewService().Extract(ctx, []byte("INVOICE\nTotal: 100"), "invoice.txt")
		require.NoError(t, err)
		assert.Equal(t, "INVOICE\nTotal: 100", res.RawText)
		assert.False(t, res.OCRUsed)
		assert.Equal(t, "plain_text", res.Source)
	})

	t.Run("unknown extension falls back to utf-8 decode", func(t *testing.T) {
		res, err := NewService().Extract(ctx, []byte("FORM GSTR-3B"), "upload.bin")
		require.NoError(t, err)
		assert.Equal(t, "FORM GSTR-3B", res.RawText)
		assert.Equal(t, "plain_text", res.Source)
	})

	t.Run("scanned image routes to OCR", func(t *testing.T) {
		ocr := &fakeOCR{text: "Tax Invoice 123"}
		res, err := NewService(WithOCR(ocr), WithHindi()).Extract(ctx, []byte{0xff, 0xd8, 0xff}, "scan.jpg")
		require.NoError(t, err)
		assert.True(t, res.OCRUsed)
		assert.Equal(t, "ocr", res.Source)
		assert.Equal(t, "Tax Invoice 123", res.RawText)
		assert.Equal(t, "hin+eng", ocr.lang)
	})

	t.Run("OCR failure degrades to empty text", func(t *testing.T) {
		ocr := &fakeOCR{err: errors.New("engine down")}
		res, err := NewService(WithOCR(ocr)).Extract(ctx, []byte{0xff, 0xd8, 0xff}, "scan.jpg")
		require.NoError(t, err)
		assert.Empty(t, res.RawText)
		assert.False(t, res.OCRUsed)
	})

	t.Run("empty PDF text layer without OCR yields empty result", func(t *testing.T) {
		res, err := NewService().Extract(ctx, []byte("%PDF-1.4 garbage"), "doc.pdf")
		require.NoError(t, err)
		assert.Empty(t, res.RawText)
		assert.Equal(t, "pdf_text", res.Source)
	})
}

func TestNormalize(t *testing.T) {
	t.Run("repairs OCR digits inside numeric tokens", func(t *testing.T) {
		assert.Equal(t, "Total 10000", Normalize("Total   1OO00"))
		assert.Equal(t, "A/c 110022", Normalize("A/c 11OO22"))
	})

	t.Run("leaves words alone", func(t *testing.T) {
		assert.Equal(t, "Opening Balance", Normalize("Opening Balance"))
	})

	t.Run("collapses whitespace around newlines", func(t *testing.T) {
		assert.Equal(t, "a\nb", Normalize("a  \n   b"))
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Equal(t, "", Normalize(""))
	})
}

func TestPageOne(t *testing.T) {
	assert.Equal(t, "page one", PageOne("page one\fpage two"))
	assert.Equal(t, "no breaks", PageOne("no breaks"))
}
