// Package sunatapi exposes the portal client over a small JSON API.
package sunatapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"sunatscraper/lib/scrapers/sunat"
	"sunatscraper/lib/scrapers/sunat/extract"
	"sunatscraper/lib/scrapers/sunat/validate"
	"sunatscraper/lib/serviceutil"
	"sunatscraper/lib/telemetry"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const (
	messageNotFound    = "Registro no encontrado"
	messageUnavailable = "No se obtuvo respuesta del portal de SUNAT"
)

// Lookup is the part of the portal client the API needs.
type Lookup interface {
	GetByRuc(ctx context.Context, ruc string) (extract.Record, error)
	GetByRucs(ctx context.Context, rucs []string) ([]extract.Record, error)
	GetByDocument(ctx context.Context, docType, number string) (extract.Record, error)
	SearchByDocument(ctx context.Context, docType, number string) ([]extract.SearchResult, error)
	GetByName(ctx context.Context, text string) (extract.Record, error)
	SearchByName(ctx context.Context, text string) ([]extract.SearchResult, error)
}

type Options struct {
	// AccessToken enables bearer authentication on the lookup routes.
	AccessToken string
	// RequestTimeout bounds each lookup, portal round trips included.
	RequestTimeout time.Duration
}

type Handler struct {
	lookup  Lookup
	metrics *Metrics
	opts    Options
	tel     telemetry.API
}

func New(lookup Lookup, metrics *Metrics, opts Options, tel telemetry.API) *Handler {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 2 * time.Minute
	}
	return &Handler{
		lookup:  lookup,
		metrics: metrics,
		opts:    opts,
		tel:     telemetry.NewScopedAPI("sunatapi", tel),
	}
}

// Routes builds the API router.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.metrics.middleware)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	r.Method(http.MethodGet, "/metrics", h.metrics.Handler())

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("SUNAT RUC API ok"))
	})

	r.Group(func(r chi.Router) {
		r.Use(serviceutil.VerifyAccessToken(h.opts.AccessToken))
		r.Use(withTimeout(h.opts.RequestTimeout))

		r.Get("/ruc/{ruc}", h.handleGetByRuc)
		r.Get("/rucs", h.handleGetByRucs)
		r.Get("/doc/{tipo}/{numero}", h.handleGetByDocument)
		r.Get("/doc/{tipo}/{numero}/lista", h.handleSearchByDocument)
		r.Get("/rs", h.handleGetByName)
		r.Get("/rs/lista", h.handleSearchByName)
	})
	return r
}

func (h *Handler) handleGetByRuc(w http.ResponseWriter, r *http.Request) {
	record, err := h.lookup.GetByRuc(r.Context(), chi.URLParam(r, "ruc"))
	h.writeRecord(w, r, record, err)
}

func (h *Handler) handleGetByRucs(w http.ResponseWriter, r *http.Request) {
	records, err := h.lookup.GetByRucs(r.Context(), r.URL.Query()["r"])
	writeList(h, w, r, records, err)
}

func (h *Handler) handleGetByDocument(w http.ResponseWriter, r *http.Request) {
	record, err := h.lookup.GetByDocument(r.Context(), chi.URLParam(r, "tipo"), chi.URLParam(r, "numero"))
	h.writeRecord(w, r, record, err)
}

func (h *Handler) handleSearchByDocument(w http.ResponseWriter, r *http.Request) {
	results, err := h.lookup.SearchByDocument(r.Context(), chi.URLParam(r, "tipo"), chi.URLParam(r, "numero"))
	writeList(h, w, r, results, err)
}

func (h *Handler) handleGetByName(w http.ResponseWriter, r *http.Request) {
	record, err := h.lookup.GetByName(r.Context(), r.URL.Query().Get("q"))
	h.writeRecord(w, r, record, err)
}

func (h *Handler) handleSearchByName(w http.ResponseWriter, r *http.Request) {
	results, err := h.lookup.SearchByName(r.Context(), r.URL.Query().Get("q"))
	writeList(h, w, r, results, err)
}

// withTimeout bounds the request context, the handlers report an expired
// deadline themselves.
func withTimeout(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

type apiError struct {
	Message string `json:"mensaje"`
}

func (h *Handler) writeRecord(w http.ResponseWriter, r *http.Request, record extract.Record, err error) {
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if !record.Found() {
		writeJSON(w, http.StatusNotFound, apiError{Message: messageNotFound})
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func writeList[T any](h *Handler, w http.ResponseWriter, r *http.Request, list []T, err error) {
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if len(list) == 0 {
		writeJSON(w, http.StatusNotFound, apiError{Message: messageNotFound})
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, sunat.ErrValidation):
		writeJSON(w, http.StatusBadRequest, apiError{Message: validationMessage(err)})
	case errors.Is(err, sunat.ErrTransport),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		h.tel.ReportWarning("lookup", middleware.GetReqID(r.Context()), err)
		writeJSON(w, http.StatusServiceUnavailable, apiError{Message: messageUnavailable})
	default:
		h.tel.ReportBroken("lookup", middleware.GetReqID(r.Context()), err)
		writeJSON(w, http.StatusInternalServerError, apiError{Message: http.StatusText(http.StatusInternalServerError)})
	}
}

// validationMessage picks the short message of the validate error out of
// the wrapped chain.
func validationMessage(err error) string {
	for _, known := range []error{validate.ErrInvalidRuc, validate.ErrInvalidDocument, validate.ErrInvalidText} {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	return err.Error()
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
