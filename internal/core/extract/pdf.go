package extract

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/google/uuid"

	"github.com/okekechris/docuchat/internal/core"
)

// rasterDPI is the render resolution for whole-page OCR of scanned pages.
const rasterDPI = 150

// pageSource is the slice of an opened document the per-page walk needs:
// the rendered HTML layout and a raster for the OCR fallback.
type pageSource interface {
	HTML(page int, header bool) (string, error)
	ImagePNG(page int, dpi float64) ([]byte, error)
}

var _ pageSource = (*fitz.Document)(nil)

// PDFExtractor recovers the ordered text and image blocks of each page,
// captions embedded images inline and falls back to whole-page OCR for
// pages without any text layer.
type PDFExtractor struct {
	ocr         core.OCREngine
	captioner   core.Captioner
	imageDir    string
	maxImageDim int
}

var _ core.Extractor = (*PDFExtractor)(nil)

func NewPDFExtractor(ocr core.OCREngine, captioner core.Captioner, imageDir string, maxImageDim int) *PDFExtractor {
	return &PDFExtractor{ocr: ocr, captioner: captioner, imageDir: imageDir, maxImageDim: maxImageDim}
}

// Extract walks every page and concatenates the per-page streams in page
// order, separated by newlines. A PDF that cannot be opened aborts the whole
// document; anything failing inside a single image degrades to a placeholder
// caption instead.
func (e *PDFExtractor) Extract(ctx context.Context, path string) (string, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return "", fmt.Errorf("open pdf %s: %w", filepath.Base(path), err)
	}
	defer doc.Close()

	pages := make([]string, 0, doc.NumPage())
	for n := 0; n < doc.NumPage(); n++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		pages = append(pages, e.extractPage(ctx, doc, n))
	}
	return strings.Join(pages, "\n"), nil
}

// extractPage produces the text stream of one page. Pages with no text
// blocks are treated as scanned images: the page raster goes through OCR
// exactly once and the per-block path is skipped entirely.
func (e *PDFExtractor) extractPage(ctx context.Context, src pageSource, n int) string {
	var elems []pageElement
	pageHTML, err := src.HTML(n, false)
	if err == nil {
		elems, err = parsePageElements(pageHTML)
	}
	if err != nil {
		log.Printf("PDFExtractor: page %d layout unavailable, falling back to OCR: %v", n, err)
	}

	if !hasTextElement(elems) {
		return e.ocrWholePage(ctx, src, n)
	}

	var sb strings.Builder
	for _, el := range elems {
		switch el.Kind {
		case textElement:
			sb.WriteString(el.Text)
			sb.WriteString("\n")
		case imageElement:
			sb.WriteString(e.renderImage(ctx, el))
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

// renderImage scales, persists and captions a single embedded image, then
// appends any OCR text found inside it. Each stage failure is replaced with
// a placeholder caption so one bad image never aborts the document.
func (e *PDFExtractor) renderImage(ctx context.Context, el pageElement) string {
	raw, err := decodeDataURI(el.Src)
	if err != nil {
		log.Printf("PDFExtractor: image extraction failed: %v", err)
		return placeholderCaption("extraction")
	}

	scaled, err := ScaleImage(raw, e.maxImageDim)
	if err != nil {
		log.Printf("PDFExtractor: image scaling failed: %v", err)
		return placeholderCaption("scaling")
	}

	name := uuid.NewString() + ".jpeg"
	if err := os.WriteFile(filepath.Join(e.imageDir, name), scaled, 0o644); err != nil {
		log.Printf("PDFExtractor: image save failed: %v", err)
		return placeholderCaption("save")
	}

	caption, err := e.captioner.Caption(ctx, scaled)
	if err != nil || strings.TrimSpace(caption) == "" {
		log.Printf("PDFExtractor: image captioning failed: %v", err)
		return placeholderCaption("captioning")
	}

	var sb strings.Builder
	sb.WriteString(core.CaptionStart)
	sb.WriteString(strings.TrimSpace(caption))
	sb.WriteString(core.CaptionEnd)
	sb.WriteString("\n")

	// Text inside the image rides along as plain prose after the caption.
	if txt, err := e.ocr.ImageText(ctx, scaled); err == nil && strings.TrimSpace(txt) != "" {
		sb.WriteString(strings.TrimSpace(txt))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (e *PDFExtractor) ocrWholePage(ctx context.Context, src pageSource, n int) string {
	raster, err := src.ImagePNG(n, rasterDPI)
	if err != nil {
		log.Printf("PDFExtractor: page %d rasterization failed: %v", n, err)
		return ""
	}
	text, err := e.ocr.ImageText(ctx, raster)
	if err != nil {
		log.Printf("PDFExtractor: page %d OCR failed: %v", n, err)
		return ""
	}
	return strings.TrimSpace(text)
}

func placeholderCaption(stage string) string {
	return core.CaptionStart + "Image " + stage + " failed" + core.CaptionEnd + "\n"
}
