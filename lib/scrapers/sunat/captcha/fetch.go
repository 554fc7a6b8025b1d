package captcha

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-resty/resty/v2"
	"github.com/mazen160/go-random"
)

const ImagePath = "/cl-ti-itmrconsruc/captcha"

// Fetcher downloads CAPTCHA images with the portal's HTTP client, so the
// image is bound to the same session cookies as the submission.
type Fetcher struct {
	http    *resty.Client
	referer string
}

func NewFetcher(client *resty.Client, referer string) *Fetcher {
	return &Fetcher{http: client, referer: referer}
}

func (f *Fetcher) Fetch(ctx context.Context) (Image, error) {
	ctx, span := tracer.Start(ctx, "Fetch")
	defer span.End()

	nonce, err := random.IntRange(1, 9999)
	if err != nil {
		return Image{}, err
	}

	res, err := f.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"accion": "image",
			"nmagic": strconv.Itoa(nonce),
		}).
		SetHeader("Referer", f.referer).
		SetHeader("Accept", "image/avif,image/webp,image/apng,image/*,*/*;q=0.8").
		Get(ImagePath)
	if err != nil {
		return Image{}, fmt.Errorf("fetch captcha image: %w", err)
	}

	switch res.StatusCode() {
	case http.StatusUnauthorized, http.StatusNotFound:
		return Image{Nonce: nonce, Skipped: true}, nil
	}
	if !res.IsSuccess() {
		return Image{}, fmt.Errorf("fetch captcha image: unexpected status %d", res.StatusCode())
	}
	return Image{PNG: res.Body(), Nonce: nonce}, nil
}
