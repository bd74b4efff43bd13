package extract

import (
	"encoding/base64"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

type elementKind int

const (
	textElement elementKind = iota
	imageElement
)

// pageElement is a transient unit recovered from a page layout: either a
// text block or an embedded image reference, positioned by its vertical
// offset from the top of the page (in points).
type pageElement struct {
	Pos  float64
	Kind elementKind
	Text string // text blocks
	Src  string // image data URI, decoded lazily so failures stay per-image
}

var topRe = regexp.MustCompile(`top:\s*([0-9.]+)`)

// parsePageElements walks the rendered HTML layout of a single page and
// returns its text blocks and image references. Element order follows the
// vertical offsets in the block styles.
func parsePageElements(pageHTML string) ([]pageElement, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(pageHTML))
	if err != nil {
		return nil, fmt.Errorf("parse page layout: %w", err)
	}

	var elems []pageElement
	doc.Find("p, img").Each(func(_ int, s *goquery.Selection) {
		pos := stylePos(s)
		if goquery.NodeName(s) == "img" {
			src, ok := s.Attr("src")
			if !ok {
				return
			}
			elems = append(elems, pageElement{Pos: pos, Kind: imageElement, Src: src})
			return
		}
		text := strings.TrimSpace(s.Text())
		if text == "" {
			return
		}
		elems = append(elems, pageElement{Pos: pos, Kind: textElement, Text: text})
	})

	// Stable keeps document order for blocks sharing a vertical offset.
	sort.SliceStable(elems, func(i, j int) bool { return elems[i].Pos < elems[j].Pos })
	return elems, nil
}

func stylePos(s *goquery.Selection) float64 {
	style, ok := s.Attr("style")
	if !ok {
		return 0
	}
	m := topRe.FindStringSubmatch(style)
	if m == nil {
		return 0
	}
	pos, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0
	}
	return pos
}

func hasTextElement(elems []pageElement) bool {
	for _, el := range elems {
		if el.Kind == textElement {
			return true
		}
	}
	return false
}

// decodeDataURI extracts the raw bytes of a base64 data URI
// ("data:image/png;base64,....").
func decodeDataURI(src string) ([]byte, error) {
	header, payload, ok := strings.Cut(src, ",")
	if !ok || !strings.HasPrefix(header, "data:") || !strings.HasSuffix(header, ";base64") {
		return nil, fmt.Errorf("not a base64 data uri")
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("decode image data: %w", err)
	}
	return raw, nil
}
