package core

import "context"

type EmbeddingProvider interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

type LLMProvider interface {
	Generate(ctx context.Context, systemPrompt string, userPrompt string) (string, error)
}

// Captioner produces a natural-language description of an image.
// Implementations talk to a remote vision model and may fail per image.
type Captioner interface {
	Caption(ctx context.Context, image []byte) (string, error)
}

// OCREngine extracts machine-readable text from a raster image.
type OCREngine interface {
	ImageText(ctx context.Context, image []byte) (string, error)
}
