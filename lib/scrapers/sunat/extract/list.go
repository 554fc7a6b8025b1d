package extract

import (
	"regexp"
	"strings"

	"sunatscraper/lib/htmlutil"
	"sunatscraper/lib/textutil"

	"github.com/PuerkitoBio/goquery"
)

// ParseList reads a result list page, rows keep their page order. Rows
// without a recoverable RUC are dropped.
func ParseList(page string, byDocument bool) []SearchResult {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return nil
	}

	var results []SearchResult
	doc.Find("a[class*=aRucs]").Each(func(_ int, anchor *goquery.Selection) {
		row, ok := parseRow(anchor)
		if ok {
			results = append(results, row)
		}
	})
	return results
}

func parseRow(anchor *goquery.Selection) (SearchResult, bool) {
	headings := anchor.Find("h4")

	ruc := ""
	headings.EachWithBreak(func(_ int, h *goquery.Selection) bool {
		text := htmlutil.SelectionText(h)
		if !strings.Contains(text, "RUC") {
			return true
		}
		ruc = rucDigitsRegex.FindString(text)
		return false
	})
	if ruc == "" {
		return SearchResult{}, false
	}

	var name *string
	if headings.Length() > 1 {
		name = textutil.Nullable(textutil.CollapseWhitespace(htmlutil.SelectionText(headings.Eq(1))))
	}

	text := htmlutil.SelectionText(anchor)
	return SearchResult{
		RUC:      ruc,
		Name:     name,
		Location: textutil.Nullable(paragraphOrRegex(anchor, text, locationRegex, "Ubicación")),
		Status:   textutil.Nullable(paragraphOrRegex(anchor, text, statusRegex, "Estado")),
	}, true
}

// paragraphOrRegex reads the "<p>Label: value</p>" element of a row, falling
// back to the regex over the whole row.
func paragraphOrRegex(anchor *goquery.Selection, text string, pattern *regexp.Regexp, label string) string {
	value := ""
	matched := false
	anchor.Find("p").EachWithBreak(func(_ int, p *goquery.Selection) bool {
		ptext := htmlutil.SelectionText(p)
		if !textutil.MatchLabel(ptext, label) {
			return true
		}
		matched = true
		if colon := strings.Index(ptext, ":"); colon >= 0 {
			ptext = ptext[colon+1:]
		}
		value = textutil.CollapseWhitespace(ptext)
		return false
	})
	if matched {
		return value
	}
	return firstSubmatch(pattern, text)
}
