/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: server.go
Description: HTTP service exposing capture analysis and Pronto conversion as JSON
endpoints, plus health and Prometheus metrics. Every request runs its own independent
analysis; the server holds no per-capture state.
*/

package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/kleascm/irprobe/pkg/codegen"
	"github.com/kleascm/irprobe/pkg/inference"
	"github.com/kleascm/irprobe/pkg/logging"
	"github.com/kleascm/irprobe/pkg/pronto"
	"github.com/kleascm/irprobe/pkg/rawdata"
	"github.com/kleascm/irprobe/pkg/reporting"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Options configures the service
type Options struct {
	Addr            string
	ReadTimeout     time.Duration
	ShutdownTimeout time.Duration
	MaxBodyBytes    int64
	Version         string

	// Request defaults
	Margin   int
	Name     string
	Hertz    int
	EndSpace int
}

// Server is the irprobe HTTP service
type Server struct {
	opts     Options
	logger   *logrus.Logger
	registry *prometheus.Registry
	metrics  *Metrics
	mux      *http.ServeMux
}

// New creates a server with its own metrics registry
func New(opts Options, logger *logrus.Logger) *Server {
	if logger == nil {
		logger = logrus.New()
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 1 << 20
	}
	if opts.Hertz <= 0 {
		opts.Hertz = pronto.DefaultHertz
	}
	if opts.Margin <= 0 {
		opts.Margin = inference.DefaultMargin
	}

	registry := prometheus.NewRegistry()
	s := &Server{
		opts:     opts,
		logger:   logger,
		registry: registry,
		metrics:  NewMetrics(registry),
		mux:      http.NewServeMux(),
	}

	s.mux.HandleFunc("POST /api/v1/analyse", s.handleAnalyse)
	s.mux.HandleFunc("POST /api/v1/pronto", s.handlePronto)
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.Handle("GET /metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{EnableOpenMetrics: true}))
	return s
}

// Handler returns the request router
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Run serves on opts.Addr until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.opts.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.mux,
		ReadTimeout:       s.opts.ReadTimeout,
		ReadHeaderTimeout: s.opts.ReadTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	s.logger.WithField("addr", ln.Addr().String()).Info("irprobe service listening")

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	timeout := s.opts.ShutdownTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.logger.Info("irprobe service shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return nil
}

// AnalyseRequest is the body of POST /api/v1/analyse. Either Raw or Timings is required.
type AnalyseRequest struct {
	Raw     string `json:"raw"`
	Timings []int  `json:"timings"`
	Margin  *int   `json:"margin"`
	Name    string `json:"name"`
	Code    bool   `json:"code"`
}

// ProntoRequest is the body of POST /api/v1/pronto
type ProntoRequest struct {
	Raw         string `json:"raw"`
	Timings     []int  `json:"timings"`
	Hertz       int    `json:"hertz"`
	EndSpace    int    `json:"end_space"`
	Repeat      bool   `json:"repeat"`
	Unmodulated bool   `json:"unmodulated"`
}

// ProntoResponse is the body returned by POST /api/v1/pronto
type ProntoResponse struct {
	Code   string       `json:"code"`
	Pairs  int          `json:"pairs"`
	Padded bool         `json:"padded"`
	Detail *pronto.Code `json:"detail"`
}

// ErrorResponse is returned for every failed request
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func (s *Server) handleAnalyse(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.New().String()
	log := s.logger.WithField("request_id", requestID)

	var req AnalyseRequest
	if err := s.decode(w, r, &req); err != nil {
		s.metrics.AnalysesTotal.WithLabelValues("bad_request").Inc()
		writeError(w, err)
		return
	}

	timings, err := requestTimings(req.Raw, req.Timings)
	if err != nil {
		s.metrics.AnalysesTotal.WithLabelValues("bad_request").Inc()
		writeError(w, err)
		return
	}

	margin := s.opts.Margin
	if req.Margin != nil {
		margin = *req.Margin
	}

	sink := logging.NewEventSink(s.logger, logrus.Fields{"request_id": requestID})
	analysis, err := inference.Analyze(timings, margin, sink)
	if err != nil {
		s.metrics.AnalysesTotal.WithLabelValues(outcome(err)).Inc()
		log.WithError(err).Warn("Analysis rejected")
		writeError(w, err)
		return
	}

	s.metrics.AnalysesTotal.WithLabelValues("success").Inc()
	s.metrics.AnalysisDuration.Observe(analysis.Duration.Seconds())
	s.metrics.DecodedBits.Observe(float64(analysis.Trace.TotalBits()))
	for _, step := range analysis.Trace.Anomalies() {
		s.metrics.AnomaliesTotal.WithLabelValues(string(step.Anomaly)).Inc()
	}

	name := req.Name
	if name == "" {
		name = s.opts.Name
	}
	var skeleton *codegen.Skeleton
	if req.Code || req.Name != "" {
		skeleton = codegen.Generate(analysis.Model, analysis.Trace, name)
	}

	report := reporting.New(analysis, skeleton, reporting.Options{Source: "api", Version: s.opts.Version})
	report.ID = requestID
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handlePronto(w http.ResponseWriter, r *http.Request) {
	var req ProntoRequest
	if err := s.decode(w, r, &req); err != nil {
		s.metrics.ProntoTotal.WithLabelValues("bad_request").Inc()
		writeError(w, err)
		return
	}

	timings, err := requestTimings(req.Raw, req.Timings)
	if err != nil {
		s.metrics.ProntoTotal.WithLabelValues("bad_request").Inc()
		writeError(w, err)
		return
	}

	opts := pronto.Options{
		Hertz:       req.Hertz,
		EndSpace:    req.EndSpace,
		Repeat:      req.Repeat,
		Unmodulated: req.Unmodulated,
	}
	if opts.Hertz == 0 {
		opts.Hertz = s.opts.Hertz
	}
	if opts.EndSpace == 0 {
		opts.EndSpace = s.opts.EndSpace
	}

	code, err := pronto.Convert(timings, opts)
	if err != nil {
		if errors.Is(err, inference.ErrMalformedInput) {
			s.metrics.ProntoTotal.WithLabelValues("bad_request").Inc()
			writeError(w, err)
			return
		}
		s.metrics.ProntoTotal.WithLabelValues("rejected").Inc()
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error(), Kind: "pronto"})
		return
	}

	s.metrics.ProntoTotal.WithLabelValues("success").Inc()
	writeJSON(w, http.StatusOK, ProntoResponse{
		Code:   code.String(),
		Pairs:  len(code.Durations) / 2,
		Padded: code.Padded,
		Detail: code,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": s.opts.Version})
}

// decode reads a JSON body; any failure wraps ErrMalformedInput
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v interface{}) error {
	body := http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: invalid request body: %v", inference.ErrMalformedInput, err)
	}
	return nil
}

// requestTimings prefers an explicit timing list over raw text
func requestTimings(raw string, timings []int) ([]int, error) {
	if len(timings) > 0 {
		return timings, nil
	}
	capture, err := rawdata.Parse(raw)
	if err != nil {
		return nil, err
	}
	return capture.Timings, nil
}

// outcome is the metrics label for an analysis error
func outcome(err error) string {
	switch {
	case errors.Is(err, inference.ErrInsufficientData):
		return "insufficient_data"
	case errors.Is(err, inference.ErrUnsupportedEncoding):
		return "unsupported_encoding"
	case errors.Is(err, inference.ErrInvalidMargin):
		return "invalid_margin"
	case errors.Is(err, inference.ErrMalformedInput):
		return "malformed_input"
	}
	return "error"
}

// statusFor maps domain errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, inference.ErrMalformedInput):
		return http.StatusBadRequest
	case errors.Is(err, inference.ErrInsufficientData),
		errors.Is(err, inference.ErrUnsupportedEncoding),
		errors.Is(err, inference.ErrInvalidMargin):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), ErrorResponse{Error: err.Error(), Kind: outcome(err)})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
