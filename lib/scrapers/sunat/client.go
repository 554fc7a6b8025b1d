// Package sunat is a client for the "Consulta RUC" portal. It keeps a portal
// session alive, answers the CAPTCHA, caches raw result pages and parses
// them into records.
package sunat

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"sunatscraper/lib/restyutil"
	"sunatscraper/lib/scrapers/sunat/captcha"
	"sunatscraper/lib/scrapers/sunat/extract"
	"sunatscraper/lib/scrapers/sunat/pagecache"
	"sunatscraper/lib/scrapers/sunat/validate"
	"sunatscraper/lib/telemetry"
	"sunatscraper/lib/textutil"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

var tracer = otel.Tracer("sunatscraper/lib/scrapers/sunat")

const (
	DefaultBaseURL   = "https://e-consultaruc.sunat.gob.pe"
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36"

	DefaultRequestsPerSecond = 2
	DefaultBurst             = 2

	LandingPath = "/cl-ti-itmrconsruc/FrameCriterioBusquedaWeb.jsp"
	SubmitPath  = "/cl-ti-itmrconsruc/jcrS00Alias"
)

// a submission is retried once after a session reset
const maxAttempts = 2

type Options struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration

	// RequestsPerSecond limits every request made to the portal. Zero uses
	// DefaultRequestsPerSecond, a negative value disables the limit.
	RequestsPerSecond float64
	Burst             int

	// BypassCloudflare wraps the transport with cloudflare-bp-go.
	BypassCloudflare bool

	// BatchConcurrency bounds GetByRucs, zero means one goroutine per id.
	BatchConcurrency int

	// Cache defaults to a local-only cache.
	Cache *pagecache.Cache
	// Solver is required.
	Solver captcha.Solver

	Telemetry telemetry.API
	// Dump receives every portal request/response pair when set.
	Dump restyutil.InstrumentOutput
}

type Client struct {
	http       *resty.Client
	session    *session
	captcha    *captcha.Service
	cache      *pagecache.Cache
	landingURL string
	batch      int
	tel        telemetry.API
}

func NewClient(opts Options) (*Client, error) {
	if opts.Solver == nil {
		return nil, fmt.Errorf("sunat: a captcha solver is required")
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.RequestsPerSecond == 0 {
		opts.RequestsPerSecond = DefaultRequestsPerSecond
	}
	if opts.Burst <= 0 {
		opts.Burst = DefaultBurst
	}
	if opts.Telemetry == nil {
		opts.Telemetry = telemetry.SlogAPI{}
	}
	tel := telemetry.NewScopedAPI("sunat", opts.Telemetry)

	baseURL, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, err
	}
	root := baseURL.ResolveReference(&url.URL{Path: "/"})

	cache := opts.Cache
	if cache == nil {
		cache, err = pagecache.New(pagecache.Options{}, opts.Telemetry)
		if err != nil {
			return nil, err
		}
	}

	jar, err := newResettableJar()
	if err != nil {
		return nil, err
	}

	client := resty.New()
	client.SetBaseURL(baseURL.String())
	client.SetCookieJar(jar)
	if opts.BypassCloudflare {
		client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	}
	client.SetHeaders(map[string]string{
		"User-Agent":                opts.UserAgent,
		"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
		"Accept-Language":           "es-PE,es;q=0.9",
		"Upgrade-Insecure-Requests": "1",
	})
	client.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(baseURL.Hostname()))
	client.SetTimeout(opts.Timeout)

	if opts.RequestsPerSecond > 0 {
		limiter := rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), opts.Burst)
		client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			return limiter.Wait(req.Context())
		})
	}
	telemetry.InstrumentResty(client, "sunatscraper/lib/scrapers/sunat/http", opts.Telemetry)
	restyutil.InstrumentClient(client, opts.Dump)

	landingURL := baseURL.String() + LandingPath
	fetcher := captcha.NewFetcher(client, landingURL)

	return &Client{
		http:       client,
		session:    newSession(client, jar, root, opts.Telemetry),
		captcha:    captcha.NewService(fetcher, opts.Solver, opts.Telemetry),
		cache:      cache,
		landingURL: landingURL,
		batch:      opts.BatchConcurrency,
		tel:        tel,
	}, nil
}

func invalid(err error) error {
	return fmt.Errorf("%w: %w", ErrValidation, err)
}

// GetByRuc looks a taxpayer up by RUC. A record that is not Found is not an
// error.
func (c *Client) GetByRuc(ctx context.Context, ruc string) (extract.Record, error) {
	ctx, span := tracer.Start(ctx, "GetByRuc")
	defer span.End()
	span.SetAttributes(attribute.String("sunat.ruc", ruc))

	err := validate.Ruc(ruc)
	if err != nil {
		return extract.Record{}, invalid(err)
	}
	record, err := c.getByRuc(ctx, ruc)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to get by ruc")
	}
	return record, err
}

func (c *Client) getByRuc(ctx context.Context, ruc string) (extract.Record, error) {
	page, err := c.fetch(ctx, NewFingerprint(ActionByRuc, map[string]string{
		"nroRuc": ruc,
	}))
	if err != nil {
		return extract.Record{}, err
	}
	return extract.Parse(page, false), nil
}

// GetByRucs looks up every id concurrently, the result is in input order.
// One invalid id fails the whole batch before anything is sent.
func (c *Client) GetByRucs(ctx context.Context, rucs []string) ([]extract.Record, error) {
	ctx, span := tracer.Start(ctx, "GetByRucs")
	defer span.End()
	span.SetAttributes(attribute.Int("sunat.batch_size", len(rucs)))

	for _, ruc := range rucs {
		err := validate.Ruc(ruc)
		if err != nil {
			return nil, invalid(err)
		}
	}

	records := make([]extract.Record, len(rucs))
	group, groupCtx := errgroup.WithContext(ctx)
	if c.batch > 0 {
		group.SetLimit(c.batch)
	}
	for i, ruc := range rucs {
		group.Go(func() error {
			record, err := c.getByRuc(groupCtx, ruc)
			if err != nil {
				return err
			}
			records[i] = record
			return nil
		})
	}
	err := group.Wait()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to get batch")
		return nil, err
	}
	return records, nil
}

func documentFingerprint(docType, number string) Fingerprint {
	return NewFingerprint(ActionByDocument, map[string]string{
		"tipdoc": docType,
		"nrodoc": number,
	})
}

func nameFingerprint(text string) Fingerprint {
	return NewFingerprint(ActionByName, map[string]string{
		"razSoc": text,
	})
}

// GetByDocument resolves the first taxpayer registered under a document.
func (c *Client) GetByDocument(ctx context.Context, docType, number string) (extract.Record, error) {
	ctx, span := tracer.Start(ctx, "GetByDocument")
	defer span.End()

	err := validate.Document(docType, number)
	if err != nil {
		return extract.Record{}, invalid(err)
	}
	page, err := c.fetch(ctx, documentFingerprint(docType, number))
	if err != nil {
		return extract.Record{}, err
	}
	return c.resolveFirst(ctx, page, true)
}

// SearchByDocument lists every taxpayer registered under a document.
func (c *Client) SearchByDocument(ctx context.Context, docType, number string) ([]extract.SearchResult, error) {
	ctx, span := tracer.Start(ctx, "SearchByDocument")
	defer span.End()

	err := validate.Document(docType, number)
	if err != nil {
		return nil, invalid(err)
	}
	page, err := c.fetch(ctx, documentFingerprint(docType, number))
	if err != nil {
		return nil, err
	}
	return extract.ParseList(page, true), nil
}

// GetByName resolves the best match for a name search.
func (c *Client) GetByName(ctx context.Context, text string) (extract.Record, error) {
	ctx, span := tracer.Start(ctx, "GetByName")
	defer span.End()

	err := validate.Text(text)
	if err != nil {
		return extract.Record{}, invalid(err)
	}
	page, err := c.fetch(ctx, nameFingerprint(text))
	if err != nil {
		return extract.Record{}, err
	}
	return c.resolveFirst(ctx, page, false)
}

// SearchByName lists the matches of a name search, best match first.
func (c *Client) SearchByName(ctx context.Context, text string) ([]extract.SearchResult, error) {
	ctx, span := tracer.Start(ctx, "SearchByName")
	defer span.End()

	err := validate.Text(text)
	if err != nil {
		return nil, invalid(err)
	}
	page, err := c.fetch(ctx, nameFingerprint(text))
	if err != nil {
		return nil, err
	}
	return extract.ParseList(page, false), nil
}

// resolveFirst follows the first row of a result list to its detail page.
// Detail pages do not show the location, so the row's is kept. When the
// portal answered with a detail page directly it is parsed as is.
func (c *Client) resolveFirst(ctx context.Context, page string, byDocument bool) (extract.Record, error) {
	rows := extract.ParseList(page, byDocument)
	if len(rows) == 0 {
		return extract.Parse(page, byDocument), nil
	}
	first := rows[0]
	record, err := c.getByRuc(ctx, first.RUC)
	if err != nil {
		return extract.Record{}, err
	}
	return record.WithLocation(first.Location), nil
}

// fetch returns the raw page for a query, from the cache when possible.
func (c *Client) fetch(ctx context.Context, fp Fingerprint) (string, error) {
	ctx, span := tracer.Start(ctx, "fetch")
	defer span.End()

	key := fp.Key()
	span.SetAttributes(attribute.String("sunat.fingerprint", key))
	page, ok := c.cache.Get(ctx, key)
	if ok {
		span.SetAttributes(attribute.Bool("sunat.cached", true))
		return page, nil
	}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		generation, err := c.session.ensure(ctx)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to ensure session")
			return "", err
		}

		res, err := c.submit(ctx, fp)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to submit")
			return "", err
		}

		switch res.StatusCode() {
		case http.StatusUnauthorized, http.StatusForbidden:
			c.tel.ReportWarning("fetch-session-rejected", res.StatusCode(), attempt)
			c.session.reset(generation)
			continue
		}
		if !res.IsSuccess() {
			span.SetStatus(codes.Error, "unexpected status")
			return "", fmt.Errorf("%w: submit: unexpected status %d", ErrTransport, res.StatusCode())
		}

		decoded, err := textutil.DecodeLatin1(res.Body())
		if err != nil {
			return "", fmt.Errorf("%w: decode page: %w", ErrTransport, err)
		}
		c.cache.Put(ctx, key, decoded)
		return decoded, nil
	}

	span.SetStatus(codes.Error, "session rejected")
	return "", fmt.Errorf("%w: %w after %d attempts", ErrTransport, ErrSession, maxAttempts)
}

func (c *Client) submit(ctx context.Context, fp Fingerprint) (*resty.Response, error) {
	token, err := captcha.GenerateToken(captcha.DefaultTokenLength)
	if err != nil {
		return nil, err
	}
	answer, nonce, err := c.captcha.SolveCaptcha(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: captcha: %w", ErrTransport, err)
	}

	form := fp.Form()
	form["token"] = token
	form["codigo"] = answer
	form["numRnd"] = fmt.Sprint(nonce)
	form["contexto"] = "ti-it"
	form["modo"] = "1"

	res, err := c.http.R().
		SetContext(ctx).
		SetHeader("Referer", c.landingURL).
		SetFormData(form).
		Post(SubmitPath)
	if err != nil {
		return nil, fmt.Errorf("%w: submit: %w", ErrTransport, err)
	}
	return res, nil
}
