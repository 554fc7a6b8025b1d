package htmlutil

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// GetText concatenates every text node under node, script bodies included.
// The portal renders most of its labels as loose text, so line breaks are
// kept as-is for the line-oriented fallbacks.
func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

// SelectionText is GetText over every node in sel.
func SelectionText(sel *goquery.Selection) string {
	var out strings.Builder
	for _, n := range sel.Nodes {
		out.WriteString(GetText(n))
	}
	return out.String()
}

// NextElement returns the first following sibling of sel whose tag is tag.
func NextElement(sel *goquery.Selection, tag string) *goquery.Selection {
	next := sel.Next()
	for next.Length() > 0 && !next.Is(tag) {
		next = next.Next()
	}
	return next
}
