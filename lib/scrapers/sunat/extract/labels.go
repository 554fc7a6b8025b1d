package extract

import (
	"strings"

	"sunatscraper/lib/htmlutil"
	"sunatscraper/lib/textutil"

	"github.com/PuerkitoBio/goquery"
)

type labelValue struct {
	label string
	value string
}

// labels keeps document order so that the first matching label wins.
type labels []labelValue

// lookup returns the value of the first label containing any of want, tried
// in the order given.
func (l labels) lookup(want ...string) string {
	for _, w := range want {
		for _, lv := range l {
			if textutil.MatchLabel(lv.label, w) {
				return lv.value
			}
		}
	}
	return ""
}

type labelSource func(doc *goquery.Document) labels

var labelSources = []labelSource{
	tableLabels,
	listGroupLabels,
}

func collectLabels(doc *goquery.Document) labels {
	for _, source := range labelSources {
		found := source(doc)
		if len(found) > 0 {
			return found
		}
	}
	return nil
}

// tableLabels pairs every "td.bgn" label cell with the next cell in its row.
func tableLabels(doc *goquery.Document) labels {
	var out labels
	doc.Find("td.bgn").Each(func(_ int, cell *goquery.Selection) {
		value := htmlutil.NextElement(cell, "td")
		out = append(out, labelValue{
			label: textutil.CollapseWhitespace(htmlutil.SelectionText(cell)),
			value: textutil.CollapseWhitespace(htmlutil.SelectionText(value)),
		})
	})
	return out
}

// listGroupLabels reads the responsive layout, where each item is a single
// "Label: value" block.
func listGroupLabels(doc *goquery.Document) labels {
	var out labels
	doc.Find("div[class*=list-group-item]").Each(func(_ int, item *goquery.Selection) {
		text := textutil.CollapseWhitespace(htmlutil.SelectionText(item))
		colon := strings.Index(text, ":")
		if colon <= 0 {
			return
		}
		out = append(out, labelValue{
			label: strings.TrimSpace(text[:colon]),
			value: strings.TrimSpace(text[colon+1:]),
		})
	})
	return out
}
