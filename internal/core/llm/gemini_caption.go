package llm

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"

	"github.com/okekechris/docuchat/internal/core"
)

const captionPrompt = "Describe this image in detail. What do you see?"

// GeminiCaptioner describes images with a multimodal model. Requests are
// rate limited: one PDF can carry dozens of images and each caption is a
// network round-trip.
type GeminiCaptioner struct {
	client    *genai.Client
	modelName string
	limiter   *rate.Limiter
}

var _ core.Captioner = (*GeminiCaptioner)(nil)

func NewGeminiCaptioner(ctx context.Context, apiKey, modelName string, perSecond float64) (*GeminiCaptioner, error) {
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}
	if perSecond <= 0 {
		perSecond = 2
	}
	return &GeminiCaptioner{
		client:    cl,
		modelName: modelName,
		limiter:   rate.NewLimiter(rate.Limit(perSecond), 1),
	}, nil
}

func (g *GeminiCaptioner) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

func (g *GeminiCaptioner) Caption(ctx context.Context, image []byte) (string, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return "", err
	}

	m := g.client.GenerativeModel(g.modelName)
	resp, err := m.GenerateContent(ctx, genai.ImageData("jpeg", image), genai.Text(captionPrompt))
	if err != nil {
		return "", fmt.Errorf("gemini caption: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("gemini caption: empty response")
	}

	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if t, ok := p.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return strings.TrimSpace(b.String()), nil
}
