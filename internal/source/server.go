package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/rshade/recordview/internal/logging"
	"github.com/rshade/recordview/internal/query"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 5 * time.Second
	// MaxLimit caps the page size a client may request.
	MaxLimit = 500
)

// ErrBadRequest marks a malformed query parameter.
var ErrBadRequest = errors.New("bad request")

// Config configures a Server.
type Config struct {
	Addr   string
	Store  *Store
	Logger zerolog.Logger
}

// Server is the demo records API.
type Server struct {
	addr   string
	store  *Store
	logger zerolog.Logger
}

// NewServer creates a Server for cfg.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Store == nil {
		return nil, ErrNilStore
	}
	return &Server{
		addr:   cfg.Addr,
		store:  cfg.Store,
		logger: logging.ComponentLogger(cfg.Logger, "source"),
	}, nil
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewMux()
	r.Use(
		middleware.RequestID,
		s.requestLogger,
		middleware.Recoverer,
	)

	r.Get("/records", s.handleRecords)
	r.Get("/sellers", s.handleSellers)
	r.Get("/customers", s.handleCustomers)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	return r
}

// Serve listens on the configured address and blocks until ctx is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.addr, err)
	}
	return s.ServeListener(ctx, ln)
}

// ServeListener serves on ln until ctx is cancelled, then shuts down gracefully.
func (s *Server) ServeListener(ctx context.Context, ln net.Listener) error {
	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Handler: s.Handler(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: readHeaderTimeout,
	}

	s.logger.Info().Str("addr", ln.Addr().String()).Msg("serving records API")

	eg.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(egctx), shutdownTimeout)
		defer cancel()

		s.logger.Debug().Msg("shutting down records API")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// requestLogger attaches a request-scoped logger carrying the request id and
// logs each completed request at debug.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := middleware.GetReqID(r.Context())
		ctx := logging.ContextWithTraceID(r.Context(), reqID)
		ctx = s.logger.WithContext(ctx)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r.WithContext(ctx))

		s.logger.Debug().
			Ctx(ctx).
			Str("operation", "request").
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("query", r.URL.RawQuery).
			Int("status", ww.Status()).
			Dur("duration_ms", time.Since(start)).
			Msg("request completed")
	})
}

func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	q, err := ParseRecordQuery(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	page, err := s.store.Records(r.Context(), q)
	if err != nil {
		s.fail(w, r, "records", err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (s *Server) handleSellers(w http.ResponseWriter, r *http.Request) {
	ix, err := s.store.Sellers(r.Context())
	if err != nil {
		s.fail(w, r, "sellers", err)
		return
	}
	writeJSON(w, http.StatusOK, ix)
}

func (s *Server) handleCustomers(w http.ResponseWriter, r *http.Request) {
	ix, err := s.store.Customers(r.Context())
	if err != nil {
		s.fail(w, r, "customers", err)
		return
	}
	writeJSON(w, http.StatusOK, ix)
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	ctx := r.Context()
	logging.FromContext(ctx).Error().
		Ctx(ctx).
		Str("component", "source").
		Str("operation", op).
		Err(err).
		Msg("store query failed")
	writeError(w, http.StatusInternalServerError, errors.New("internal error"))
}

// ParseRecordQuery reads limit, page, filter[...], search and sort parameters.
func ParseRecordQuery(values map[string][]string) (RecordQuery, error) {
	get := func(key string) string {
		if v := values[key]; len(v) > 0 {
			return strings.TrimSpace(v[0])
		}
		return ""
	}

	q := RecordQuery{
		Date:     get(query.FilterKey("date")),
		Seller:   get(query.FilterKey("seller")),
		Customer: get(query.FilterKey("customer")),
		Search:   get(query.KeySearch),
	}

	var err error
	if q.Limit, err = positiveInt(get(query.KeyLimit), query.KeyLimit); err != nil {
		return RecordQuery{}, err
	}
	q.Limit = min(q.Limit, MaxLimit)
	if q.Page, err = positiveInt(get(query.KeyPage), query.KeyPage); err != nil {
		return RecordQuery{}, err
	}
	if q.TotalFrom, err = optionalFloat(get(query.FilterKey("totalFrom")), "totalFrom"); err != nil {
		return RecordQuery{}, err
	}
	if q.TotalTo, err = optionalFloat(get(query.FilterKey("totalTo")), "totalTo"); err != nil {
		return RecordQuery{}, err
	}

	if raw := get(query.KeySort); raw != "" {
		field, dir, sortErr := query.ParseSort(raw)
		if sortErr != nil {
			return RecordQuery{}, fmt.Errorf("%w: %w", ErrBadRequest, sortErr)
		}
		if _, ok := sortColumns[field]; !ok {
			return RecordQuery{}, fmt.Errorf("%w: %w: %q", ErrBadRequest, query.ErrUnknownSortColumn, field)
		}
		q.SortField, q.SortDir = field, dir
	}
	return q, nil
}

func positiveInt(raw, name string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: %s must be a positive integer, got %q", ErrBadRequest, name, raw)
	}
	return n, nil
}

func optionalFloat(raw, name string) (*float64, error) {
	if raw == "" {
		return nil, nil //nolint:nilnil // Absent bound.
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be a number, got %q", ErrBadRequest, name, raw)
	}
	return &f, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
