//go:build !tesseract

package captcha

import "context"

// TesseractRecognizer is unavailable in builds without the tesseract tag.
type TesseractRecognizer struct{}

func NewTesseractRecognizer() (*TesseractRecognizer, error) {
	return nil, ErrOCRUnavailable
}

func (*TesseractRecognizer) Recognize(context.Context, []byte) (string, error) {
	return "", ErrOCRUnavailable
}

func (*TesseractRecognizer) Close() error {
	return nil
}
