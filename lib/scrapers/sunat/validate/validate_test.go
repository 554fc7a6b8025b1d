package validate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRuc(t *testing.T) {
	valid := []string{
		"20100070970",
		"20131312955",
		"20000000001",
		"10000000006",
		"20100047218",
	}
	for _, ruc := range valid {
		require.NoError(t, Ruc(ruc), ruc)
	}

	invalid := []string{
		"",
		"2010007097",
		"201000709700",
		"12345678901",
		"20100070971",
		"2010007097a",
		"２０１０００７０９７０",
	}
	for _, ruc := range invalid {
		require.ErrorIs(t, Ruc(ruc), ErrInvalidRuc, ruc)
	}
}

func TestDocument(t *testing.T) {
	cases := []struct {
		docType string
		number  string
		valid   bool
	}{
		{DocumentDNI, "12345678", true},
		{DocumentDNI, "1234567", false},
		{DocumentDNI, "123456789", false},
		{DocumentDNI, "1234567A", false},
		{DocumentForeigner, "AB1234", true},
		{DocumentForeigner, "AB123", false},
		{DocumentPassport, "123456789012", true},
		{DocumentPassport, "1234567890123", false},
		{DocumentDiplomat, "X00001", true},
		{DocumentDiplomat, "X0000-1", false},
		{"6", "12345678", false},
		{"", "12345678", false},
	}
	for _, c := range cases {
		err := Document(c.docType, c.number)
		if c.valid {
			require.NoError(t, err, "%s/%s", c.docType, c.number)
			continue
		}
		require.ErrorIs(t, err, ErrInvalidDocument, "%s/%s", c.docType, c.number)
	}
}

func TestText(t *testing.T) {
	valid := []string{
		"ACME",
		"ACME S.A.C.",
		"Compañía Minera, Perú-Norte",
		strings.Repeat("a", 100),
	}
	for _, text := range valid {
		require.NoError(t, Text(text), text)
	}

	invalid := []string{
		"abc",
		strings.Repeat("a", 101),
		"ACME; DROP",
		"ACME <b>",
		"   ",
	}
	for _, text := range invalid {
		require.ErrorIs(t, Text(text), ErrInvalidText, text)
	}
}
