package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/couchcryptid/cell-telemetry-etl/internal/cellinfo"
	"github.com/couchcryptid/cell-telemetry-etl/internal/domain"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PermissionHeader carries the caller's location-access grant.
const PermissionHeader = "X-Location-Permission"

const maxBodyBytes = 1 << 20

// Server exposes the method bridge plus health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	bridge     *cellinfo.Bridge
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics and
// POST /v1/cellinfo/{method} routes.
func NewServer(addr string, ready sharedobs.ReadinessChecker, bridge *cellinfo.Bridge, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		bridge: bridge,
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("POST /v1/cellinfo/{method}", s.handleInvoke)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleInvoke(w http.ResponseWriter, r *http.Request) {
	method := r.PathValue("method")
	grant := cellinfo.Grant(strings.EqualFold(r.Header.Get(PermissionHeader), "granted"))
	provider := &requestProvider{w: w, r: r}

	out, err := s.bridge.Invoke(r.Context(), method, grant, provider)
	if err != nil {
		e := cellinfo.ErrorFor(err)
		status := statusFor(e.Code)
		if status == http.StatusInternalServerError {
			s.logger.Error("cellinfo call failed", "method", method, "error", err)
		}
		writeJSON(w, status, e)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// requestProvider reads the device's visible cells from the request body.
// The body is decoded only when the bridge asks for it, after the grant check.
type requestProvider struct {
	w http.ResponseWriter
	r *http.Request
}

func (p *requestProvider) AllCellInfo(_ context.Context) (domain.ObservationSet, error) {
	var body struct {
		Cells []domain.WireCell `json:"cells"`
	}
	dec := json.NewDecoder(http.MaxBytesReader(p.w, p.r.Body, maxBodyBytes))
	if err := dec.Decode(&body); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, &domain.InvalidSnapshotError{Reason: "decode request body", Err: err}
	}
	return domain.DecodeObservations(body.Cells), nil
}

func statusFor(code string) int {
	switch code {
	case domain.CodePermissionDenied:
		return http.StatusForbidden
	case domain.CodeNoDataAvailable:
		return http.StatusNotFound
	case domain.CodeUnsupportedTechnology:
		return http.StatusUnprocessableEntity
	case domain.CodeInvalidArgument:
		return http.StatusBadRequest
	case cellinfo.CodeNotImplemented:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
