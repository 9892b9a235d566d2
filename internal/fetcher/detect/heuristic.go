// Package detect decides when to promote fetches to the headless renderer.
package detect

import (
	"bytes"

	"github.com/PuerkitoBio/goquery"

	"github.com/JakeFAU/ticketwatch/internal/parser"
)

// Heuristic implements a handful of rule-based promotions.
type Heuristic struct {
	BodyLengthThreshold int
}

// NewHeuristic creates a new detector.
func NewHeuristic(threshold int) *Heuristic {
	if threshold == 0 {
		threshold = 2048
	}
	return &Heuristic{BodyLengthThreshold: threshold}
}

var spaMarkers = [][]byte{
	[]byte("__next"),
	[]byte("id=\"root\""),
	[]byte("id=\"app\""),
	[]byte("data-reactroot"),
}

// NeedsRender reports whether the statically fetched markup still needs
// a JavaScript render before listing cards can be parsed.
func (h *Heuristic) NeedsRender(body []byte) bool {
	if len(body) == 0 || len(body) < h.BodyLengthThreshold {
		return true
	}
	for _, marker := range spaMarkers {
		if bytes.Contains(body, marker) {
			return true
		}
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return true
	}
	return parser.FindCards(doc) == nil
}
