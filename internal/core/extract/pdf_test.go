package extract

import (
	"context"
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okekechris/docuchat/internal/core"
)

type stubCaptioner struct {
	caption string
	err     error
	calls   int
}

func (c *stubCaptioner) Caption(context.Context, []byte) (string, error) {
	c.calls++
	return c.caption, c.err
}

type stubOCR struct {
	text  string
	err   error
	calls int
}

func (o *stubOCR) ImageText(context.Context, []byte) (string, error) {
	o.calls++
	return o.text, o.err
}

type stubDocument struct {
	html        string
	htmlErr     error
	raster      []byte
	rasterCalls int
}

func (d *stubDocument) HTML(int, bool) (string, error) { return d.html, d.htmlErr }

func (d *stubDocument) ImagePNG(int, float64) ([]byte, error) {
	d.rasterCalls++
	return d.raster, nil
}

func imageDataURI(t *testing.T) string {
	t.Helper()
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes(t, 40, 40))
}

func TestRenderImageHappyPath(t *testing.T) {
	dir := t.TempDir()
	e := NewPDFExtractor(
		&stubOCR{text: "  EXIT 42  "},
		&stubCaptioner{caption: "A road sign on a highway."},
		dir, 100)

	out := e.renderImage(context.Background(), pageElement{Kind: imageElement, Src: imageDataURI(t)})

	assert.Contains(t, out, core.CaptionStart+"A road sign on a highway."+core.CaptionEnd)
	assert.Contains(t, out, "EXIT 42")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, strings.HasSuffix(entries[0].Name(), ".jpeg"))
}

func TestRenderImageBadDataURI(t *testing.T) {
	e := NewPDFExtractor(&stubOCR{}, &stubCaptioner{}, t.TempDir(), 100)

	out := e.renderImage(context.Background(), pageElement{Kind: imageElement, Src: "https://cdn.example.com/x.png"})
	assert.Equal(t, placeholderCaption("extraction"), out)
}

func TestRenderImageUndecodableImage(t *testing.T) {
	e := NewPDFExtractor(&stubOCR{}, &stubCaptioner{}, t.TempDir(), 100)

	src := "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("junk"))
	out := e.renderImage(context.Background(), pageElement{Kind: imageElement, Src: src})
	assert.Equal(t, placeholderCaption("scaling"), out)
}

func TestRenderImageCaptionFailure(t *testing.T) {
	e := NewPDFExtractor(
		&stubOCR{text: "ignored"},
		&stubCaptioner{err: errors.New("model unavailable")},
		t.TempDir(), 100)

	out := e.renderImage(context.Background(), pageElement{Kind: imageElement, Src: imageDataURI(t)})
	assert.Equal(t, placeholderCaption("captioning"), out)
}

func TestRenderImageOCRFailureKeepsCaption(t *testing.T) {
	e := NewPDFExtractor(
		&stubOCR{err: errors.New("tesseract missing")},
		&stubCaptioner{caption: "A chart."},
		t.TempDir(), 100)

	out := e.renderImage(context.Background(), pageElement{Kind: imageElement, Src: imageDataURI(t)})
	assert.Equal(t, core.CaptionStart+"A chart."+core.CaptionEnd+"\n", out)
}

func TestExtractPageWithoutTextOCRsWholePageOnce(t *testing.T) {
	ocr := &stubOCR{text: "scanned page text"}
	captioner := &stubCaptioner{caption: "never used"}
	e := NewPDFExtractor(ocr, captioner, t.TempDir(), 100)

	// Image-only page: per-block handling must be skipped entirely in
	// favor of a single whole-page OCR pass.
	doc := &stubDocument{
		html:   `<img style="top:10.0pt" src="` + imageDataURI(t) + `">`,
		raster: []byte("raster"),
	}
	out := e.extractPage(context.Background(), doc, 0)

	assert.Equal(t, "scanned page text", out)
	assert.Equal(t, 1, doc.rasterCalls)
	assert.Equal(t, 1, ocr.calls)
	assert.Zero(t, captioner.calls)
}

func TestExtractPageWithTextSkipsWholePageOCR(t *testing.T) {
	ocr := &stubOCR{text: "should not appear"}
	e := NewPDFExtractor(ocr, &stubCaptioner{}, t.TempDir(), 100)

	doc := &stubDocument{html: `<p style="top:10.0pt">Plain paragraph.</p>`}
	out := e.extractPage(context.Background(), doc, 0)

	assert.Equal(t, "Plain paragraph.", out)
	assert.Zero(t, doc.rasterCalls)
	assert.Zero(t, ocr.calls)
}

func TestExtractPageLayoutFailureFallsBackToOCR(t *testing.T) {
	ocr := &stubOCR{text: "recovered text"}
	e := NewPDFExtractor(ocr, &stubCaptioner{}, t.TempDir(), 100)

	doc := &stubDocument{htmlErr: errors.New("broken page stream"), raster: []byte("raster")}
	out := e.extractPage(context.Background(), doc, 0)

	assert.Equal(t, "recovered text", out)
	assert.Equal(t, 1, ocr.calls)
}

func TestExtractMissingFile(t *testing.T) {
	e := NewPDFExtractor(&stubOCR{}, &stubCaptioner{}, t.TempDir(), 100)

	_, err := e.Extract(context.Background(), filepath.Join(t.TempDir(), "missing.pdf"))
	assert.Error(t, err)
}
