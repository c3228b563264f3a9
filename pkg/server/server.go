// Package server exposes pattern conversion over HTTP.
//
// Routes:
//
//	POST /v1/convert?format=dtx|wpo&name=<file>[&encoding=base64]
//	GET  /v1/formats
//	GET  /v1/stats
//	GET  /healthz
//
// A conversion request carries the raw source file as its body (base64 when
// encoding=base64) and returns the WIF text. Errors are JSON objects with a
// machine-readable code and a message. Every response carries an
// X-Request-ID header.
package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"github.com/loomtools/dtxwif/pkg/convert"
	errs "github.com/loomtools/dtxwif/pkg/errors"
	"github.com/loomtools/dtxwif/pkg/observability"
	"github.com/loomtools/dtxwif/pkg/wif"
)

// DefaultMaxBodyBytes limits request bodies when Options.MaxBodyBytes is zero.
const DefaultMaxBodyBytes = 8 << 20

// Options configures a Server.
type Options struct {
	MaxBodyBytes int64
	ReadTimeout  time.Duration
}

// Server serves conversions through a shared convert.Runner.
type Server struct {
	runner   *convert.Runner
	logger   *log.Logger
	counters *observability.Counters
	opts     Options
	router   chi.Router
}

// New creates a server. It installs a counting implementation of the
// observability hooks so that /v1/stats reports live numbers.
func New(runner *convert.Runner, logger *log.Logger, opts Options) *Server {
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if logger == nil {
		logger = runner.Logger
	}
	counters := observability.NewCounters()
	observability.SetConvertHooks(counters)
	observability.SetCacheHooks(counters)

	s := &Server{
		runner:   runner,
		logger:   logger,
		counters: counters,
		opts:     opts,
	}
	s.router = s.routes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadTimeout:       s.opts.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.logRequests)
	r.Use(recoverer(s.logger))

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/convert", s.handleConvert)
		r.Get("/formats", s.handleFormats)
		r.Get("/stats", s.handleStats)
	})
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "ok\n")
}

// formatInfo describes a supported input format.
type formatInfo struct {
	Name    string `json:"name"`
	Suffix  string `json:"suffix"`
	Program string `json:"program"`
	Binary  bool   `json:"binary"`
}

func (s *Server) handleFormats(w http.ResponseWriter, r *http.Request) {
	infos := make([]formatInfo, 0, len(convert.Formats()))
	for _, f := range convert.Formats() {
		infos = append(infos, formatInfo{Name: f.Name, Suffix: f.Suffix, Program: f.Program, Binary: f.Binary})
	}
	writeJSON(w, http.StatusOK, infos)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.counters.Snapshot())
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	name := q.Get("name")
	var f *convert.Format
	var err error
	switch {
	case q.Get("format") != "":
		f, err = convert.ByName(q.Get("format"))
	case name != "":
		f, err = convert.ForPath(name)
	default:
		err = errs.New(errs.ErrCodeInvalidInput, "format or name query parameter required")
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if name == "" {
		name = "pattern" + f.Suffix
	}
	if err := errs.ValidateFilename(filepath.Base(name)); err != nil {
		s.writeError(w, r, err)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	switch enc := strings.ToLower(q.Get("encoding")); enc {
	case "", "raw":
	case "base64":
		decoded, derr := base64.StdEncoding.DecodeString(strings.TrimSpace(string(body)))
		if derr != nil {
			s.writeError(w, r, errs.Wrap(errs.ErrCodeInvalidInput, derr, "body is not valid base64"))
			return
		}
		body = decoded
	default:
		s.writeError(w, r, errs.New(errs.ErrCodeInvalidInput, "unknown encoding %q", enc))
		return
	}

	out, err := s.runner.ConvertBytes(r.Context(), f, filepath.Base(name), wif.Title(name), body)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", attachment(wif.Title(name)+convert.OutputSuffix))
	if out.CacheHit {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out.Data)
}

// attachment builds a Content-Disposition value with filename quoted, or
// encoded per RFC 2231 when it is not plain ASCII.
func attachment(filename string) string {
	if v := mime.FormatMediaType("attachment", map[string]string{"filename": filename}); v != "" {
		return v
	}
	return "attachment"
}

// errorBody is the JSON error payload.
type errorBody struct {
	Code      errs.Code `json:"code"`
	Message   string    `json:"message"`
	RequestID string    `json:"request_id,omitempty"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := classify(err)
	body.RequestID = w.Header().Get(RequestIDHeader)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "id", body.RequestID, "err", err)
	} else {
		s.logger.Debug("request rejected", "id", body.RequestID, "status", status, "err", err)
	}
	writeJSON(w, status, body)
}

func classify(err error) (int, errorBody) {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return http.StatusRequestEntityTooLarge, errorBody{
			Code:    errs.ErrCodeInvalidInput,
			Message: "request body exceeds limit",
		}
	}

	code := errs.GetCode(err)
	body := errorBody{Code: code, Message: errs.UserMessage(err)}
	switch {
	case errs.IsInputError(err):
		return http.StatusUnprocessableEntity, body
	case code == errs.ErrCodeInvalidInput, code == errs.ErrCodeInvalidPath, code == errs.ErrCodeUnsupportedFormat:
		return http.StatusBadRequest, body
	case errors.Is(err, context.Canceled):
		return 499, errorBody{Code: errs.ErrCodeIO, Message: "request canceled"}
	}
	if code == "" {
		body.Code = errs.ErrCodeInternal
	}
	return http.StatusInternalServerError, body
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
