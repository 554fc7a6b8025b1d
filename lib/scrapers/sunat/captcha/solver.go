package captcha

import (
	"context"
	"errors"
	"sync"
)

// Recognizer reads the text off an image. Implementations need not be safe
// for concurrent use.
type Recognizer interface {
	Recognize(ctx context.Context, png []byte) (string, error)
}

// OCRSolver answers with a single OCR attempt, only well-formed reads are
// accepted.
type OCRSolver struct {
	mu         sync.Mutex
	recognizer Recognizer
}

func NewOCRSolver(recognizer Recognizer) *OCRSolver {
	return &OCRSolver{recognizer: recognizer}
}

func (s *OCRSolver) Solve(ctx context.Context, img Image) (string, error) {
	ctx, span := tracer.Start(ctx, "OCRSolver.Solve")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	text, err := s.recognizer.Recognize(ctx, img.PNG)
	if err != nil {
		return "", err
	}
	return AcceptAnswer(text)
}

// Chain tries each solver in order until one succeeds.
type Chain []Solver

func (c Chain) Solve(ctx context.Context, img Image) (string, error) {
	if len(c) == 0 {
		return "", ErrNoSolver
	}

	var errs []error
	for _, solver := range c {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		answer, err := solver.Solve(ctx, img)
		if err == nil {
			return answer, nil
		}
		errs = append(errs, err)
	}
	return "", errors.Join(errs...)
}
