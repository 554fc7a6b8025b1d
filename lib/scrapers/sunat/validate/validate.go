// Package validate checks lookup inputs before anything is sent to the
// portal.
package validate

import (
	"errors"
	"fmt"
	"regexp"
	"unicode/utf8"
)

// The messages are returned to API callers as-is.
var (
	ErrInvalidRuc      = errors.New("RUC inválido")
	ErrInvalidDocument = errors.New("Doc inválido")
	ErrInvalidText     = errors.New("Texto inválido")
)

// Document types accepted by the portal's "Tipo de Documento" search.
const (
	DocumentDNI       = "1"
	DocumentForeigner = "4"
	DocumentPassport  = "7"
	DocumentDiplomat  = "A"
)

var rucWeights = [10]int{5, 4, 3, 2, 7, 6, 5, 4, 3, 2}

var (
	dniPattern     = regexp.MustCompile(`^\d{8}$`)
	foreignPattern = regexp.MustCompile(`^[A-Za-z0-9]{6,12}$`)
	textPattern    = regexp.MustCompile(`^[\p{L}\p{N} .,\-]+$`)
)

// Ruc reports whether ruc is 11 digits with a valid mod-11 check digit.
func Ruc(ruc string) error {
	if len(ruc) != 11 {
		return fmt.Errorf("%w: %q", ErrInvalidRuc, ruc)
	}
	digits := [11]int{}
	for i := 0; i < len(ruc); i++ {
		c := ruc[i]
		if c < '0' || c > '9' {
			return fmt.Errorf("%w: %q", ErrInvalidRuc, ruc)
		}
		digits[i] = int(c - '0')
	}

	sum := 0
	for i, w := range rucWeights {
		sum += digits[i] * w
	}
	check := 11 - sum%11
	switch check {
	case 10:
		check = 0
	case 11:
		check = 1
	}
	if check != digits[10] {
		return fmt.Errorf("%w: %q", ErrInvalidRuc, ruc)
	}
	return nil
}

// Document validates a document number against the format its type expects.
func Document(docType, number string) error {
	var ok bool
	switch docType {
	case DocumentDNI:
		ok = dniPattern.MatchString(number)
	case DocumentForeigner, DocumentPassport, DocumentDiplomat:
		ok = foreignPattern.MatchString(number)
	}
	if !ok {
		return fmt.Errorf("%w: tipo %q, numero %q", ErrInvalidDocument, docType, number)
	}
	return nil
}

// Text validates a free text name search.
func Text(text string) error {
	n := utf8.RuneCountInString(text)
	if n < 4 || n > 100 || !textPattern.MatchString(text) {
		return fmt.Errorf("%w: %q", ErrInvalidText, text)
	}
	return nil
}
