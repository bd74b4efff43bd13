package ingest

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okekechris/docuchat/internal/core"
)

func TestChunkEmptyInput(t *testing.T) {
	c := NewChunker(1000, 200)

	assert.Empty(t, c.Chunk(""))
	assert.Empty(t, c.Chunk("   \n\t  "))
}

func TestChunkShortInput(t *testing.T) {
	c := NewChunker(1000, 200)

	chunks := c.Chunk("Just one short sentence.")
	require.Len(t, chunks, 1)
	assert.Equal(t, "Just one short sentence.", chunks[0])
}

func TestChunkOverlapSeedsNextChunk(t *testing.T) {
	c := NewChunker(1000, 200)

	var b strings.Builder
	for i := 0; i < 120; i++ {
		fmt.Fprintf(&b, "Sentence number %d talks about the system under test. ", i)
	}
	chunks := c.Chunk(b.String())
	require.Greater(t, len(chunks), 1)

	for i := 1; i < len(chunks); i++ {
		tail := strings.TrimSpace(overlapTail(chunks[i-1], 200))
		assert.True(t, strings.HasPrefix(chunks[i], tail),
			"chunk %d should start with the tail of chunk %d", i, i-1)
	}

	// No sentence is dropped on a chunk boundary.
	joined := strings.Join(chunks, " ")
	for i := 0; i < 120; i++ {
		assert.Contains(t, joined, fmt.Sprintf("Sentence number %d talks", i))
	}
}

func TestChunkRespectsSize(t *testing.T) {
	c := NewChunker(300, 50)

	var b strings.Builder
	for i := 0; i < 60; i++ {
		fmt.Fprintf(&b, "This is filler sentence %d. ", i)
	}
	for i, chunk := range c.Chunk(b.String()) {
		assert.LessOrEqual(t, len(chunk), 300+50, "chunk %d overflows", i)
	}
}

func TestChunkCaptionIsAtomic(t *testing.T) {
	c := NewChunker(200, 40)

	caption := core.CaptionStart + " A bar chart comparing quarterly revenue across regions. " + core.CaptionEnd
	var b strings.Builder
	for i := 0; i < 20; i++ {
		fmt.Fprintf(&b, "Leading prose sentence number %d. ", i)
	}
	b.WriteString(caption)
	b.WriteString(" Trailing prose after the image.")

	chunks := c.Chunk(b.String())

	var captionChunks []string
	for _, chunk := range chunks {
		if strings.Contains(chunk, core.CaptionStart) {
			captionChunks = append(captionChunks, chunk)
		}
	}
	require.Len(t, captionChunks, 1)
	assert.Equal(t, caption, captionChunks[0])

	for _, chunk := range chunks {
		if chunk == caption {
			continue
		}
		assert.NotContains(t, chunk, core.CaptionStart)
		assert.NotContains(t, chunk, core.CaptionEnd)
	}
}

func TestChunkBackToBackCaptions(t *testing.T) {
	c := NewChunker(1000, 200)

	first := core.CaptionStart + " First figure. " + core.CaptionEnd
	second := core.CaptionStart + " Second figure. " + core.CaptionEnd

	chunks := c.Chunk(first + "\n" + second)
	require.Len(t, chunks, 2)
	assert.Equal(t, first, chunks[0])
	assert.Equal(t, second, chunks[1])
}

func TestChunkOversizedSentencePlacedWhole(t *testing.T) {
	c := NewChunker(100, 20)

	long := strings.Repeat("word ", 60) + "end."
	chunks := c.Chunk(long)
	require.Len(t, chunks, 1)
	assert.Equal(t, strings.TrimSpace(long), chunks[0])
}

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{
			name: "basic terminators",
			in:   "Hello world. Is it working? It is!",
			want: []string{"Hello world.", "Is it working?", "It is!"},
		},
		{
			name: "dot inside token",
			in:   "Release v1.2 shipped today.",
			want: []string{"Release v1.2 shipped today."},
		},
		{
			name: "closing quote stays attached",
			in:   `He said "stop." Then he left.`,
			want: []string{`He said "stop."`, "Then he left."},
		},
		{
			name: "unterminated tail kept",
			in:   "First sentence. trailing fragment without a period",
			want: []string{"First sentence.", "trailing fragment without a period"},
		},
		{
			name: "empty input",
			in:   "   ",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, splitSentences(tt.in))
		})
	}
}

func TestOverlapTail(t *testing.T) {
	assert.Equal(t, "", overlapTail("anything", 0))
	assert.Equal(t, "short", overlapTail("short", 200))
	assert.Equal(t, "cde", overlapTail("abcde", 3))
	// Rune-safe on multibyte input.
	assert.Equal(t, "héllo", overlapTail("a héllo", 5))
}
