package extract

import (
	"bytes"
	"fmt"

	"github.com/disintegration/imaging"

	"github.com/okekechris/docuchat/internal/core"
)

const jpegQuality = 85

// ScaleImage re-encodes raw image bytes as JPEG, capping width and height at
// maxDim while preserving aspect ratio. Images already inside the bound are
// re-encoded without upscaling. Returns core.ErrImageDecode when the input
// is not a decodable image.
func ScaleImage(raw []byte, maxDim int) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrImageDecode, err)
	}

	bounds := img.Bounds()
	if bounds.Dx() > maxDim || bounds.Dy() > maxDim {
		img = imaging.Fit(img, maxDim, maxDim, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
