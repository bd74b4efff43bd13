package extract

import (
	"context"
	"fmt"
	"path/filepath"

	"code.sajari.com/docconv"

	"github.com/okekechris/docuchat/internal/core"
)

// DocconvConverter is the best-effort fallback for file types outside the
// native allow-list. Conversion failure only skips the one file, so errors
// are wrapped rather than fatal.
type DocconvConverter struct{}

var _ core.Converter = (*DocconvConverter)(nil)

func NewDocconvConverter() *DocconvConverter {
	return &DocconvConverter{}
}

func (c *DocconvConverter) Convert(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	res, err := docconv.ConvertPath(path)
	if err != nil {
		return "", fmt.Errorf("%w: convert %s: %v", core.ErrUnsupportedType, filepath.Base(path), err)
	}
	return res.Body, nil
}
