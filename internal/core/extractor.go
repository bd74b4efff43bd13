package core

import "context"

// Extractor turns a document on disk into one linear text stream.
// An empty stream means "no content extracted" and the caller skips the file.
type Extractor interface {
	Extract(ctx context.Context, path string) (string, error)
}

// Converter is the best-effort fallback for file types the extractors
// don't handle natively (docx, html, rtf, ...).
type Converter interface {
	Convert(ctx context.Context, path string) (string, error)
}

// Caption sentinel markers. Image descriptions are inlined into the text
// stream between these two markers; the pair always travels together and is
// never split across chunk boundaries.
const (
	CaptionStart = "[CAPTION]"
	CaptionEnd   = "[/CAPTION]"
)
