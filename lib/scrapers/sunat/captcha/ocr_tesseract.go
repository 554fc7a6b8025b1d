//go:build tesseract

package captcha

import (
	"context"

	"github.com/otiai10/gosseract/v2"
)

// TesseractRecognizer reads CAPTCHAs with a long lived tesseract engine.
type TesseractRecognizer struct {
	client *gosseract.Client
}

func NewTesseractRecognizer() (*TesseractRecognizer, error) {
	client := gosseract.NewClient()
	err := client.SetLanguage("eng")
	if err != nil {
		client.Close()
		return nil, err
	}
	err = client.SetWhitelist("0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ")
	if err != nil {
		client.Close()
		return nil, err
	}
	err = client.SetPageSegMode(gosseract.PSM_SINGLE_WORD)
	if err != nil {
		client.Close()
		return nil, err
	}
	return &TesseractRecognizer{client: client}, nil
}

func (t *TesseractRecognizer) Recognize(ctx context.Context, png []byte) (string, error) {
	err := t.client.SetImageFromBytes(png)
	if err != nil {
		return "", err
	}
	return t.client.Text()
}

func (t *TesseractRecognizer) Close() error {
	return t.client.Close()
}
