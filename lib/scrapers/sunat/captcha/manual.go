package captcha

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sync"
)

// ManualSolver writes the image to a temporary file and blocks until an
// operator types the answer. It is meant for interactive tools only.
type ManualSolver struct {
	mu     sync.Mutex
	input  *bufio.Reader
	prompt io.Writer
}

func NewManualSolver(input io.Reader, prompt io.Writer) *ManualSolver {
	return &ManualSolver{
		input:  bufio.NewReader(input),
		prompt: prompt,
	}
}

func (s *ManualSolver) Solve(ctx context.Context, img Image) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}

	file, err := os.CreateTemp("", "sunat-captcha-*.png")
	if err != nil {
		return "", err
	}
	defer os.Remove(file.Name())
	_, err = file.Write(img.PNG)
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return "", err
	}

	fmt.Fprintf(s.prompt, "Captcha manual (%s): ", file.Name())
	line, err := s.input.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read captcha answer: %w", err)
	}
	return AcceptAnswer(line)
}
