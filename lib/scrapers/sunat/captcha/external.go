package captcha

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

const notReady = "CAPCHA_NOT_READY"

// ExternalOptions configures a 2captcha compatible solving service.
type ExternalOptions struct {
	APIKey       string
	BaseURL      string
	PollInterval time.Duration
	MaxPolls     int
}

// ExternalSolver hands images to a human-backed solving service, it never
// blocks on local input.
type ExternalSolver struct {
	http *resty.Client
	opts ExternalOptions
}

type externalResponse struct {
	Status  int    `json:"status"`
	Request string `json:"request"`
}

func NewExternalSolver(opts ExternalOptions) *ExternalSolver {
	if opts.BaseURL == "" {
		opts.BaseURL = "https://2captcha.com"
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 5 * time.Second
	}
	if opts.MaxPolls <= 0 {
		opts.MaxPolls = 30
	}

	client := resty.New()
	client.SetBaseURL(opts.BaseURL)
	client.SetTimeout(30 * time.Second)

	return &ExternalSolver{http: client, opts: opts}
}

func (s *ExternalSolver) Solve(ctx context.Context, img Image) (string, error) {
	ctx, span := tracer.Start(ctx, "ExternalSolver.Solve")
	defer span.End()

	submitted, err := s.call(ctx, s.http.R().
		SetFormData(map[string]string{
			"key":     s.opts.APIKey,
			"method":  "base64",
			"body":    base64.StdEncoding.EncodeToString(img.PNG),
			"min_len": "4",
			"max_len": "4",
			"json":    "1",
		}), resty.MethodPost, "/in.php")
	if err != nil {
		return "", err
	}
	if submitted.Status != 1 {
		return "", fmt.Errorf("external solver: submit rejected: %s", submitted.Request)
	}

	for i := 0; i < s.opts.MaxPolls; i++ {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(s.opts.PollInterval):
		}

		result, err := s.call(ctx, s.http.R().
			SetQueryParams(map[string]string{
				"key":    s.opts.APIKey,
				"action": "get",
				"id":     submitted.Request,
				"json":   "1",
			}), resty.MethodGet, "/res.php")
		if err != nil {
			return "", err
		}
		if result.Status == 1 {
			return AcceptAnswer(result.Request)
		}
		if result.Request != notReady {
			return "", fmt.Errorf("external solver: %s", result.Request)
		}
	}
	return "", fmt.Errorf("external solver: no answer after %d polls", s.opts.MaxPolls)
}

func (s *ExternalSolver) call(ctx context.Context, req *resty.Request, method, path string) (externalResponse, error) {
	res, err := req.SetContext(ctx).Execute(method, path)
	if err != nil {
		return externalResponse{}, fmt.Errorf("external solver: %w", err)
	}
	if !res.IsSuccess() {
		return externalResponse{}, fmt.Errorf("external solver: unexpected status %d", res.StatusCode())
	}
	var out externalResponse
	err = json.Unmarshal(res.Body(), &out)
	if err != nil {
		return externalResponse{}, fmt.Errorf("external solver: decode response: %w", err)
	}
	return out, nil
}
