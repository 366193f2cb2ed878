package api

import (
	"context"
	"encoding/json"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/kilianp07/wasteflow/config"
	coremetrics "github.com/kilianp07/wasteflow/core/metrics"
	"github.com/kilianp07/wasteflow/core/monitoring"
	"github.com/kilianp07/wasteflow/core/runstore"
	"github.com/kilianp07/wasteflow/infra/logger"
	"github.com/kilianp07/wasteflow/scenario"
)

// Runner executes allocation scenarios.
type Runner interface {
	Run(ctx context.Context, sc *scenario.Scenario) (coremetrics.RunEvent, error)
}

// Options configure NewHandler. Store may be nil, in which case the run
// history routes answer 404.
type Options struct {
	Runner Runner
	Store  runstore.Store
	Config config.ServerConfig
	Log    logger.Logger
	// Monitor receives recovered handler panics. Nil disables reporting.
	Monitor monitoring.Monitor
}

type server struct {
	runner Runner
	store  runstore.Store
	cfg    config.ServerConfig
	log    logger.Logger
}

// NewHandler returns the API root handler.
func NewHandler(opts Options) http.Handler {
	opts.Config.SetDefaults()
	s := &server{runner: opts.Runner, store: opts.Store, cfg: opts.Config, log: opts.Log}
	if s.log == nil {
		s.log = logger.NopLogger{}
	}

	var limiter *rate.Limiter
	if s.cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(s.cfg.RateLimit), s.cfg.RateBurst)
	}
	protect := func(h http.HandlerFunc) http.Handler {
		return requireToken(s.cfg.Token, rateLimit(limiter, h))
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", handleRoot)
	mux.HandleFunc("GET /health", handleHealth)
	mux.Handle("POST /api/allocations", protect(s.handleAllocate))
	mux.Handle("GET /api/allocations", protect(s.handleList))
	mux.Handle("GET /api/allocations/{id}", protect(s.handleGet))
	mon := opts.Monitor
	if mon == nil {
		mon = monitoring.Nop{}
	}
	return cors(s.cfg.CORSOrigins, recoverPanics(mon, s.log, mux))
}

func handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Tourism Waste Stream Optimizer API"})
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy", "service": "waste-optimizer-api"})
}

type errorBody struct {
	Error string `json:"error"`
}

// writeJSON encodes v before writing the header. Encoding failures are
// reported as 500.
func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		body, _ = json.Marshal(errorBody{Error: "encode response: " + err.Error()})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}
