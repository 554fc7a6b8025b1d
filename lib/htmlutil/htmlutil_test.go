package htmlutil

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func TestNextElement(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(
		`<table><tr><td class="bgn">Estado:</td><th>x</th><td>ACTIVO</td></tr></table>`,
	))
	if err != nil {
		t.Fatal(err)
	}

	value := NextElement(doc.Find("td.bgn"), "td")
	require.Equal(t, 1, value.Length())
	require.Equal(t, "ACTIVO", value.Text())

	missing := NextElement(value, "td")
	require.Equal(t, 0, missing.Length())
}

func TestSelectionText(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(
		"<div><p>Estado: ACTIVO</p>\n<p>Condición: HABIDO</p></div>",
	))
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, "Estado: ACTIVO\nCondición: HABIDO", SelectionText(doc.Find("div")))
}
