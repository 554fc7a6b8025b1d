// Package captcha acquires and answers the portal's image CAPTCHA.
package captcha

import (
	"context"
	"errors"
	"strings"
	"sunatscraper/lib/telemetry"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("sunatscraper/lib/scrapers/sunat/captcha")

var (
	ErrUnreliableRead = errors.New("captcha: unreliable read")
	ErrOCRUnavailable = errors.New("captcha: ocr engine unavailable")
	ErrNoSolver       = errors.New("captcha: no solver configured")
)

// AnswerLength is the number of characters the portal's CAPTCHA shows.
const AnswerLength = 4

// Image is a fetched CAPTCHA. Nonce is the cache-busting value the image was
// requested with, the portal expects it back as "numRnd".
type Image struct {
	PNG     []byte
	Nonce   int
	Skipped bool
}

// Solver turns an image into an answer.
type Solver interface {
	Solve(ctx context.Context, img Image) (string, error)
}

// ImageSource fetches a fresh CAPTCHA.
type ImageSource interface {
	Fetch(ctx context.Context) (Image, error)
}

// AcceptAnswer normalizes raw and returns it only if it looks like a
// complete CAPTCHA answer.
func AcceptAnswer(raw string) (string, error) {
	answer := strings.ToUpper(strings.Join(strings.Fields(raw), ""))
	if len(answer) != AnswerLength {
		return "", ErrUnreliableRead
	}
	for i := 0; i < len(answer); i++ {
		c := answer[i]
		if (c < '0' || c > '9') && (c < 'A' || c > 'Z') {
			return "", ErrUnreliableRead
		}
	}
	return answer, nil
}

// Service ties a CAPTCHA fetch to a solver.
type Service struct {
	source ImageSource
	solver Solver
	tel    telemetry.API
}

func NewService(source ImageSource, solver Solver, tel telemetry.API) *Service {
	return &Service{
		source: source,
		solver: solver,
		tel:    telemetry.NewScopedAPI("captcha", tel),
	}
}

// SolveCaptcha fetches an image and answers it. A skipped image yields an
// empty answer and no error, the portal then rejects the submission and the
// caller's session retry takes over.
func (s *Service) SolveCaptcha(ctx context.Context) (answer string, nonce int, err error) {
	ctx, span := tracer.Start(ctx, "SolveCaptcha")
	defer span.End()

	img, err := s.source.Fetch(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch captcha image")
		return "", 0, err
	}
	span.SetAttributes(attribute.Int("captcha.nonce", img.Nonce))
	if img.Skipped {
		s.tel.ReportWarning("solve-skipped", img.Nonce)
		span.SetAttributes(attribute.Bool("captcha.skipped", true))
		return "", img.Nonce, nil
	}

	answer, err = s.solver.Solve(ctx, img)
	if err != nil {
		s.tel.ReportWarning("solve", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to solve captcha")
		return "", img.Nonce, err
	}
	s.tel.ReportDebug("solved", img.Nonce)
	return answer, img.Nonce, nil
}
