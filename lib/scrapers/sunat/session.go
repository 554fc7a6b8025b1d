package sunat

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"sunatscraper/lib/telemetry"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type sessionState int

const (
	stateUninitialized sessionState = iota
	stateInitializing
	stateReady
)

func (s sessionState) String() string {
	switch s {
	case stateUninitialized:
		return "uninitialized"
	case stateInitializing:
		return "initializing"
	case stateReady:
		return "ready"
	}
	return fmt.Sprintf("sessionState(%d)", int(s))
}

var cookieAssignmentRegex = regexp.MustCompile(`document\.cookie\s*=\s*"([^"]+)"`)

// session holds the portal cookies. Exactly one caller bootstraps it at a
// time, the others wait on done.
type session struct {
	http *resty.Client
	jar  *resettableJar
	root *url.URL
	tel  telemetry.API

	mu    sync.Mutex
	state sessionState
	// generation increments on every successful bootstrap, reset only
	// applies to the generation the caller saw rejected.
	generation uint64
	done       chan struct{}
}

func newSession(client *resty.Client, jar *resettableJar, root *url.URL, tel telemetry.API) *session {
	return &session{
		http: client,
		jar:  jar,
		root: root,
		tel:  telemetry.NewScopedAPI("session", tel),
	}
}

// ensure blocks until the session is ready and returns its generation. If
// the bootstrap a caller was waiting on fails, that caller tries again.
func (s *session) ensure(ctx context.Context) (uint64, error) {
	for {
		s.mu.Lock()
		switch s.state {
		case stateReady:
			generation := s.generation
			s.mu.Unlock()
			return generation, nil
		case stateInitializing:
			done := s.done
			s.mu.Unlock()
			select {
			case <-done:
				continue
			case <-ctx.Done():
				return 0, ctx.Err()
			}
		}

		s.state = stateInitializing
		done := make(chan struct{})
		s.done = done
		s.mu.Unlock()

		err := s.bootstrap(ctx)

		s.mu.Lock()
		if err != nil {
			s.state = stateUninitialized
		} else {
			s.state = stateReady
			s.generation++
		}
		generation := s.generation
		close(done)
		s.mu.Unlock()

		if err != nil {
			return 0, err
		}
		return generation, nil
	}
}

// reset drops the cookies of the given generation. It is a no-op if the
// session was already rebuilt since.
func (s *session) reset(generation uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != stateReady || s.generation != generation {
		return false
	}
	err := s.jar.reset()
	if err != nil {
		s.tel.ReportBroken("reset", err)
		return false
	}
	s.state = stateUninitialized
	s.tel.ReportDebug("reset", generation)
	return true
}

func (s *session) bootstrap(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "session:bootstrap")
	defer span.End()

	res, err := s.http.R().
		SetContext(ctx).
		Get(LandingPath)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch landing page")
		s.tel.ReportWarning("bootstrap", err)
		return fmt.Errorf("%w: bootstrap session: %w", ErrTransport, err)
	}
	if !res.IsSuccess() {
		span.SetStatus(codes.Error, "unexpected landing page status")
		s.tel.ReportWarning("bootstrap", res.StatusCode())
		return fmt.Errorf("%w: bootstrap session: unexpected status %d", ErrTransport, res.StatusCode())
	}

	cookies := parseCookieAssignments(string(res.Body()))
	if len(cookies) > 0 {
		s.jar.SetCookies(s.root, cookies)
	}
	span.SetAttributes(attribute.Int("session.script_cookies", len(cookies)))
	s.tel.ReportDebug("bootstrapped", len(cookies))
	return nil
}

// parseCookieAssignments reads `document.cookie = "name=value; path=/"`
// statements out of inline scripts, attributes are ignored.
func parseCookieAssignments(page string) []*http.Cookie {
	var cookies []*http.Cookie
	for _, groups := range cookieAssignmentRegex.FindAllStringSubmatch(page, -1) {
		pair, _, _ := strings.Cut(groups[1], ";")
		name, value, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			continue
		}
		cookies = append(cookies, &http.Cookie{
			Name:  name,
			Value: strings.TrimSpace(value),
			Path:  "/",
		})
	}
	return cookies
}
