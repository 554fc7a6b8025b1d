package extract

import (
	"regexp"
	"strings"

	"sunatscraper/lib/htmlutil"
	"sunatscraper/lib/textutil"

	"github.com/PuerkitoBio/goquery"
)

var (
	rucDigitsRegex = regexp.MustCompile(`\d{11}`)
	rucWordRegex   = regexp.MustCompile(`\b(\d{11})\b`)
	nameRegex      = regexp.MustCompile(`\b\d{11}\s*-\s*([^\n]+)`)
	statusRegex    = regexp.MustCompile(`(?i)Estado\s*:\s*([^\n]+)`)
	conditionRegex = regexp.MustCompile(`(?i)Condici(?:ó|o)n\s*:\s*([^\n]+)`)
	addressRegex   = regexp.MustCompile(`(?i)Direcci(?:ó|o)n\s*:\s*([^\n]+)`)
	locationRegex  = regexp.MustCompile(`(?i)Ubicaci(?:ó|o)n\s*:\s*([^\n]+)`)
	documentRegex  = regexp.MustCompile(`(?i)Tipo de Documento\s*:\s*([^\n]+)`)
	taxpayerRegex  = regexp.MustCompile(`(?i)Tipo Contribuyente\s*:\s*([^\n]+)`)
)

// Parse reads a detail page. byDocument marks pages reached through a
// document search, the portal renders those with the same layouts today.
func Parse(page string, byDocument bool) Record {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return Record{}
	}

	found := collectLabels(doc)
	text := ""
	if len(doc.Nodes) > 0 {
		text = htmlutil.GetText(doc.Nodes[0])
	}

	ruc, name := splitRucLine(found.lookup("RUC"))
	if name == "" {
		name = found.lookup("Razón", "Nombre")
	}
	if strings.TrimSpace(ruc) == "" {
		ruc = firstSubmatch(rucWordRegex, text)
	}
	if strings.TrimSpace(name) == "" || strings.TrimSpace(name) == "-" {
		name = firstSubmatch(nameRegex, text)
	}
	if strings.TrimSpace(name) == "-" {
		name = ""
	}

	return Record{
		RUC:          textutil.Nullable(ruc),
		Name:         textutil.Nullable(name),
		Status:       textutil.Nullable(labelOrRegex(found, text, statusRegex, "Estado")),
		Condition:    textutil.Nullable(labelOrRegex(found, text, conditionRegex, "Condición")),
		Address:      textutil.Nullable(labelOrRegex(found, text, addressRegex, "Dirección", "Domicilio")),
		Location:     textutil.Nullable(labelOrRegex(found, text, locationRegex, "Ubicación")),
		DocumentType: textutil.Nullable(codeOnly(labelOrRegex(found, text, documentRegex, "Tipo de Documento"))),
		TaxpayerType: textutil.Nullable(codeOnly(labelOrRegex(found, text, taxpayerRegex, "Tipo Contribuyente"))),
	}
}

// splitRucLine reads "20100070970 - ACME SAC" style values.
func splitRucLine(line string) (ruc, name string) {
	loc := rucDigitsRegex.FindStringIndex(line)
	if loc == nil {
		return strings.TrimSpace(line), ""
	}
	rest := strings.TrimLeft(line[loc[1]:], "- ")
	return line[loc[0]:loc[1]], strings.TrimSpace(rest)
}

func labelOrRegex(found labels, text string, pattern *regexp.Regexp, want ...string) string {
	value := found.lookup(want...)
	if strings.TrimSpace(value) != "" {
		return value
	}
	return firstSubmatch(pattern, text)
}

func firstSubmatch(pattern *regexp.Regexp, text string) string {
	groups := pattern.FindStringSubmatch(text)
	if len(groups) < 2 {
		return ""
	}
	return strings.TrimSpace(groups[1])
}

// codeOnly keeps the code of "code - description" values.
func codeOnly(value string) string {
	dash := strings.Index(value, "-")
	if dash > 0 {
		value = value[:dash]
	}
	return strings.TrimSpace(value)
}
