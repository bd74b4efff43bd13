package ingest

import (
	"regexp"
	"strings"

	"github.com/okekechris/docuchat/internal/core"
)

const (
	// DefaultChunkSize is the soft upper bound on chunk length, in
	// characters. Oversized atomic units (captions, single long
	// sentences) may exceed it.
	DefaultChunkSize = 1000
	// DefaultOverlap is how many trailing characters of a flushed chunk
	// seed the next one.
	DefaultOverlap = 200
)

// captionRe isolates a caption span, markers inclusive. The non-greedy body
// keeps back-to-back captions apart.
var captionRe = regexp.MustCompile(
	regexp.QuoteMeta(core.CaptionStart) + `(?s:.*?)` + regexp.QuoteMeta(core.CaptionEnd))

// Chunker splits a text stream into bounded overlapping chunks. Caption
// spans are atomic: each one becomes its own standalone chunk and is never
// split across a boundary or merged with neighboring prose.
type Chunker struct {
	chunkSize int
	overlap   int
}

func NewChunker(chunkSize, overlap int) *Chunker {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = DefaultOverlap
	}
	return &Chunker{chunkSize: chunkSize, overlap: overlap}
}

type segment struct {
	text    string
	caption bool
}

// Chunk produces the ordered, non-empty chunks of stream. Prose is
// sentence-tokenized and packed up to the chunk size; when a sentence would
// overflow the buffer, the buffer is flushed and the next one is seeded with
// the trailing overlap of the flushed chunk. A single sentence longer than
// the chunk size is still placed whole.
func (c *Chunker) Chunk(stream string) []string {
	var chunks []string
	var current strings.Builder

	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			chunks = append(chunks, s)
		}
		current.Reset()
	}

	for _, seg := range splitSegments(stream) {
		if seg.caption {
			flush()
			chunks = append(chunks, strings.TrimSpace(seg.text))
			continue
		}
		for _, sentence := range splitSentences(seg.text) {
			if current.Len()+len(sentence) <= c.chunkSize {
				current.WriteString(sentence)
				current.WriteString(" ")
				continue
			}
			flushed := strings.TrimSpace(current.String())
			current.Reset()
			if flushed != "" {
				chunks = append(chunks, flushed)
				if tail := overlapTail(flushed, c.overlap); tail != "" {
					current.WriteString(tail)
					current.WriteString(" ")
				}
			}
			current.WriteString(sentence)
			current.WriteString(" ")
		}
	}

	flush()
	return chunks
}

// splitSegments cuts the stream at caption boundaries, keeping each caption
// span (markers inclusive) as its own segment.
func splitSegments(stream string) []segment {
	var segs []segment
	rest := stream
	for {
		loc := captionRe.FindStringIndex(rest)
		if loc == nil {
			break
		}
		if before := rest[:loc[0]]; strings.TrimSpace(before) != "" {
			segs = append(segs, segment{text: before})
		}
		segs = append(segs, segment{text: rest[loc[0]:loc[1]], caption: true})
		rest = rest[loc[1]:]
	}
	if strings.TrimSpace(rest) != "" {
		segs = append(segs, segment{text: rest})
	}
	return segs
}

// overlapTail returns the last n runes of s, or all of s when shorter.
func overlapTail(s string, n int) string {
	if n <= 0 || s == "" {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[len(r)-n:])
}
