// Package extract condenses raw restaurant markup into menu-relevant text
// using heuristic class/id selection with a price-pattern fallback.
package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/willzeng274/HaystackDiet/internal/metrics"
)

// Elements stripped before any text extraction; they only contribute
// boilerplate.
const strippedElements = "script, style, footer, header, nav"

// minFragmentLen is the noise filter: fragments of 10 characters or fewer
// are discarded.
const minFragmentLen = 10

var priceRe = regexp.MustCompile(`\$\d+(?:\.\d{2})?`)

// Extractor scans markup for menu-related class/id keywords and collects the
// visible text of each match. When no keyword matches, it falls back to
// paragraph/div fragments containing a currency amount.
type Extractor struct {
	classKeywords []string
	idKeywords    []string
}

// New builds an Extractor with the curated keyword sets.
func New() *Extractor {
	return &Extractor{
		classKeywords: []string{
			"menu", "food-menu", "dinner-menu", "lunch-menu",
			"item-name", "menu-item", "dish", "food-item",
			"price", "menu-price", "item-price", "menu-items",
			"food-list", "menu-list", "menu-section",
		},
		idKeywords: []string{
			"menu", "food-menu", "dinner-menu", "lunch-menu",
			"main-menu", "restaurant-menu", "menu-items",
			"food-menu-list",
		},
	}
}

// Extract returns the newline-joined menu-relevant fragments of the markup,
// keyword passes first (document order within each pass), the price-pattern
// fallback only when the keyword passes yield nothing. Unparseable or empty
// markup yields the empty string.
func (e *Extractor) Extract(markup string) string {
	text, pass := e.extract(markup)
	metrics.ObserveExtraction(pass)
	return text
}

// extract runs the passes and reports which one produced output.
func (e *Extractor) extract(markup string) (string, string) {
	if strings.TrimSpace(markup) == "" {
		return "", "none"
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return "", "none"
	}

	doc.Find(strippedElements).Remove()

	var fragments []string
	fragments = append(fragments, e.attrPass(doc, "class", e.classKeywords)...)
	fragments = append(fragments, e.attrPass(doc, "id", e.idKeywords)...)

	pass := "keyword"
	if len(fragments) == 0 {
		fragments = pricePass(doc)
		pass = "price"
	}
	if len(fragments) == 0 {
		pass = "none"
	}

	return strings.Join(fragments, "\n"), pass
}

// attrPass collects the collapsed text of every element whose attribute
// value contains one of the keywords, one document-order sweep per keyword.
func (e *Extractor) attrPass(doc *goquery.Document, attr string, keywords []string) []string {
	var out []string
	for _, keyword := range keywords {
		doc.Find("[" + attr + "]").Each(func(_ int, sel *goquery.Selection) {
			value, _ := sel.Attr(attr)
			if !strings.Contains(strings.ToLower(value), keyword) {
				return
			}
			if text := collapseText(sel); len(text) > minFragmentLen {
				out = append(out, text)
			}
		})
	}
	return out
}

func pricePass(doc *goquery.Document) []string {
	var out []string
	doc.Find("p, div").Each(func(_ int, sel *goquery.Selection) {
		text := collapseText(sel)
		if len(text) > minFragmentLen && priceRe.MatchString(text) {
			out = append(out, text)
		}
	})
	return out
}

// collapseText flattens a selection's visible text to single-space-separated
// words.
func collapseText(sel *goquery.Selection) string {
	return strings.Join(strings.Fields(sel.Text()), " ")
}
