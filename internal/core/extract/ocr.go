package extract

import (
	"context"
	"fmt"

	"github.com/otiai10/gosseract/v2"

	"github.com/okekechris/docuchat/internal/core"
)

// Tesseract implements core.OCREngine on top of the tesseract bindings.
// A client is created per call: gosseract clients are not safe for
// concurrent use and ingestion jobs run in parallel.
type Tesseract struct {
	language string
}

var _ core.OCREngine = (*Tesseract)(nil)

func NewTesseract(language string) *Tesseract {
	if language == "" {
		language = "eng"
	}
	return &Tesseract{language: language}
}

func (t *Tesseract) ImageText(ctx context.Context, image []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(t.language); err != nil {
		return "", fmt.Errorf("set ocr language: %w", err)
	}
	if err := client.SetImageFromBytes(image); err != nil {
		return "", fmt.Errorf("set ocr image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("ocr: %w", err)
	}
	return text, nil
}
