// Package parser extracts listing records from rendered event-page markup.
package parser

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/JakeFAU/ticketwatch/internal/watch"
)

// CardSelectors are the candidate selectors for listing cards, tried in
// order. The page's markup drifts over time; when cards stop matching,
// inspect a saved snapshot and extend this list.
var CardSelectors = []string{
	"[data-testid*='listing']",
	"[class*='Listing']",
	"[class*='listing']",
}

var (
	sectionRe = regexp.MustCompile(`(?i)Section\s+([A-Za-z0-9\-]+)`)
	rowRe     = regexp.MustCompile(`(?i)Row\s+([A-Za-z0-9\-]+)`)
	qtyRe     = regexp.MustCompile(`(?i)(\d+)\s+tickets?`)
	priceRe   = regexp.MustCompile(`\$\s?\d[\d,]*(?:\.\d+)?`)
	allInRe   = regexp.MustCompile(`(?i)(All[-\s]?in[^$]*\$\s?\d[\d,]*(?:\.\d+)?)`)
	// Scores require a fractional part so integers like section numbers
	// or quantities never read as a score. Accepts a "/10" suffix.
	scoreRe  = regexp.MustCompile(`(\d+\.\d+)(?:\s*/\s*10)?`)
	numberRe = regexp.MustCompile(`\d[\d,]*(?:\.\d+)?`)
)

// Parser turns rendered markup into watch.Listing records.
type Parser struct {
	eventURL string
	logger   *zap.Logger
}

// New constructs a Parser for the given event URL.
func New(eventURL string, logger *zap.Logger) *Parser {
	return &Parser{
		eventURL: eventURL,
		logger:   logger,
	}
}

// Parse extracts listings from the page body. It never fails on a
// malformed card: cards that yield no usable fields are skipped and
// logged. An empty or card-less page returns an empty slice.
func (p *Parser) Parse(_ context.Context, body []byte) ([]watch.Listing, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	cards := FindCards(doc)
	if cards == nil {
		return nil, nil
	}

	var listings []watch.Listing
	cards.Each(func(i int, s *goquery.Selection) {
		listing, ok := p.parseCard(s)
		if !ok {
			watch.ListingsSkippedTotal.Inc()
			p.logger.Warn("skipping unparsable listing card", zap.Int("index", i))
			return
		}
		listings = append(listings, listing)
	})
	return listings, nil
}

// FindCards returns the first candidate selection that matches any
// listing cards, or nil when none do.
func FindCards(doc *goquery.Document) *goquery.Selection {
	for _, selector := range CardSelectors {
		if sel := doc.Find(selector); sel.Length() > 0 {
			return sel
		}
	}
	return nil
}

func (p *Parser) parseCard(s *goquery.Selection) (watch.Listing, bool) {
	text := strings.TrimSpace(s.Text())
	if text == "" {
		return watch.Listing{}, false
	}

	listing := watch.Listing{
		Section:    firstGroup(sectionRe, text),
		Row:        firstGroup(rowRe, text),
		Quantity:   firstGroup(qtyRe, text),
		Price:      normalizePrice(priceRe.FindString(text)),
		AllIn:      firstGroup(allInRe, text),
		ValueScore: ParseScore(text),
		URL:        p.eventURL,
	}

	// A card with no recognizable fields at all is noise, not a listing.
	if listing.Section == "" && listing.Row == "" && listing.Price == "" && listing.ValueScore == nil {
		return watch.Listing{}, false
	}
	return listing, true
}

func firstGroup(re *regexp.Regexp, text string) string {
	m := re.FindStringSubmatch(text)
	if len(m) < 2 {
		return ""
	}
	return strings.TrimSpace(m[1])
}

func normalizePrice(price string) string {
	return strings.ReplaceAll(price, " ", "")
}

// ParseScore extracts the value score from card text: a decimal with a
// fractional part, optionally suffixed "/10". Returns nil when the card
// shows no score.
func ParseScore(text string) *float64 {
	m := scoreRe.FindStringSubmatch(text)
	if len(m) < 2 {
		return nil
	}
	value, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return nil
	}
	return &value
}

// ParseNumber extracts the leading decimal number from a string,
// tolerating currency symbols and thousands separators.
func ParseNumber(s string) (float64, bool) {
	m := numberRe.FindString(s)
	if m == "" {
		return 0, false
	}
	value, err := strconv.ParseFloat(strings.ReplaceAll(m, ",", ""), 64)
	if err != nil {
		return 0, false
	}
	return value, true
}
