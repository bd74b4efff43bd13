package llm

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/okekechris/docuchat/internal/core"
)

// GeminiLLM answers chat prompts with a bounded per-request timeout so a
// slow upstream surfaces core.ErrChatTimeout instead of hanging the caller.
type GeminiLLM struct {
	client    *genai.Client
	modelName string
	timeout   time.Duration
}

var _ core.LLMProvider = (*GeminiLLM)(nil)

func NewGeminiLLM(ctx context.Context, apiKey, modelName string, timeout time.Duration) (*GeminiLLM, error) {
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
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &GeminiLLM{client: cl, modelName: modelName, timeout: timeout}, nil
}

func (g *GeminiLLM) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

func (g *GeminiLLM) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	reqCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	m := g.client.GenerativeModel(g.modelName)
	if systemPrompt != "" {
		m.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(systemPrompt)},
		}
	}

	resp, err := m.GenerateContent(reqCtx, genai.Text(userPrompt))
	if err != nil {
		if isDeadline(reqCtx, err) {
			return "", fmt.Errorf("%w: %v", core.ErrChatTimeout, err)
		}
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", nil
	}

	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if t, ok := p.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return b.String(), nil
}

// isDeadline recognizes a blown request deadline in both shapes it arrives
// in: an error chain unwrapping to context.DeadlineExceeded, and the gRPC
// status error the client returns for a client-side deadline, which does not
// unwrap. In the latter case the expired request context is the signal.
func isDeadline(reqCtx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	return reqCtx.Err() == context.DeadlineExceeded
}
