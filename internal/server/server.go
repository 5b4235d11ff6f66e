package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/copyleftdev/IBMOLS/internal/config"
	apperrors "github.com/copyleftdev/IBMOLS/internal/errors"
	"github.com/copyleftdev/IBMOLS/internal/logging"
	"github.com/copyleftdev/IBMOLS/internal/metrics"
	"github.com/copyleftdev/IBMOLS/internal/optimization/ibmols"
	"github.com/copyleftdev/IBMOLS/internal/optimization/solver"
)

// Logger defines the logging interface used by the server
// This allows us to be flexible with our logging implementation
type Logger interface {
	Debug(msg string, fields ...map[string]interface{})
	Info(msg string, fields ...map[string]interface{})
	Warn(msg string, fields ...map[string]interface{})
	Error(msg string, fields ...map[string]interface{})
	Fatal(msg string, fields ...map[string]interface{})
	WithFields(fields map[string]interface{}) *logging.Logger
}

// Status is the lifecycle state of a search.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether the search has stopped for good.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// StartRequest holds the parameters of a new search. Zero values fall back
// to the configured defaults.
type StartRequest struct {
	Problem        string  `json:"problem,omitempty"`
	Size           int     `json:"size,omitempty"`
	Machines       int     `json:"machines,omitempty"`
	PopulationSize int     `json:"population_size,omitempty"`
	MaxSteps       *int    `json:"max_steps,omitempty"`
	Kappa          float64 `json:"kappa,omitempty"`
	Indicator      string  `json:"indicator,omitempty"`
	Seed           *int64  `json:"seed,omitempty"`
	// Timeout is a Go duration string such as "30s"
	Timeout string `json:"timeout,omitempty"`
}

// SearchStatus is the externally visible state of a search.
type SearchStatus struct {
	ID        string         `json:"search_id"`
	Status    Status         `json:"status"`
	StartTime time.Time      `json:"start_time"`
	EndTime   *time.Time     `json:"end_time,omitempty"`
	Report    *solver.Report `json:"report,omitempty"`
	Error     string         `json:"error,omitempty"`
}

// searchState tracks one search. Fields are guarded by Server.mu.
type searchState struct {
	id        string
	params    solver.Params
	status    Status
	startTime time.Time
	endTime   *time.Time
	report    *solver.Report
	err       error
	cancel    context.CancelFunc
}

func (st *searchState) snapshot() *SearchStatus {
	out := &SearchStatus{
		ID:        st.id,
		Status:    st.status,
		StartTime: st.startTime,
		EndTime:   st.endTime,
		Report:    st.report,
	}
	if st.err != nil {
		out.Error = st.err.Error()
	}
	return out
}

// Server implements the HTTP and JSON-RPC server for the search service.
// It manages search jobs and provides endpoints to start, monitor, and cancel them.
type Server struct {
	cfg    *config.Config
	logger Logger

	metrics  *metrics.Collector
	observer ibmols.Observer

	searches map[string]*searchState
	mu       sync.RWMutex // protects searches and their states
	seq      atomic.Uint64
	slots    chan struct{}
	wg       sync.WaitGroup
}

// Option configures a Server.
type Option func(*Server)

// WithMetrics reports search progress to c. A nil collector is ignored.
func WithMetrics(c *metrics.Collector) Option {
	return func(s *Server) {
		if c == nil {
			return
		}
		s.metrics = c
		s.observer = c
	}
}

// NewServer creates a new server instance with the given config and logger
// The logger parameter accepts any type that implements the Logger interface
func NewServer(cfg *config.Config, logger Logger, opts ...Option) *Server {
	concurrent := cfg.Search.MaxConcurrent
	if concurrent < 1 {
		concurrent = 1
	}
	s := &Server{
		cfg:      cfg,
		logger:   logger,
		searches: make(map[string]*searchState),
		slots:    make(chan struct{}, concurrent),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Server) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/search", s.handleStart)
		r.Get("/search/{id}", s.handleStatus)
		r.Delete("/search/{id}", s.handleCancel)
		r.Get("/search/{id}/plot", s.handlePlot)
	})

	// JSON-RPC 2.0 endpoint
	r.Post("/rpc", s.handleJSONRPC)
}

// params overlays req on the configured defaults.
func (s *Server) params(req StartRequest) (solver.Params, *apperrors.Error) {
	p := s.cfg.SearchParams()
	if req.Problem != "" {
		p.Problem = req.Problem
	}
	if req.Size != 0 {
		p.Size = req.Size
	}
	if req.Machines != 0 {
		p.Machines = req.Machines
	}
	if req.PopulationSize != 0 {
		p.PopulationSize = req.PopulationSize
	}
	if req.MaxSteps != nil {
		p.MaxSteps = *req.MaxSteps
	}
	if req.Kappa != 0 {
		p.Kappa = req.Kappa
	}
	if req.Indicator != "" {
		p.Indicator = req.Indicator
	}
	if req.Seed != nil {
		p.Seed = *req.Seed
	}
	if req.Timeout != "" {
		d, err := time.ParseDuration(req.Timeout)
		if err != nil {
			return p, apperrors.BadRequest(err, "invalid timeout")
		}
		p.Timeout = d
	}
	if err := p.Validate(); err != nil {
		return p, apperrors.BadRequest(err, "invalid search parameters")
	}
	return p, nil
}

// Start validates req and launches a search in the background.
func (s *Server) Start(req StartRequest) (*SearchStatus, error) {
	p, perr := s.params(req)
	if perr != nil {
		return nil, perr.WithOperation("start")
	}

	ctx, cancel := context.WithCancel(context.Background())
	st := &searchState{
		id:        fmt.Sprintf("search_%d", s.seq.Add(1)),
		params:    p,
		status:    StatusPending,
		startTime: time.Now(),
		cancel:    cancel,
	}

	s.mu.Lock()
	s.searches[st.id] = st
	snap := st.snapshot()
	s.mu.Unlock()

	s.logger.Info("search accepted", map[string]interface{}{
		"search_id": st.id,
		"problem":   p.Problem,
		"size":      p.Size,
	})

	s.wg.Add(1)
	go s.run(ctx, st)
	return snap, nil
}

// Status returns the state of search id.
func (s *Server) Status(id string) (*SearchStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.searches[id]
	if !ok {
		return nil, apperrors.NotFound("search %q not found", id).WithOperation("status")
	}
	return st.snapshot(), nil
}

// Cancel requests search id to stop. The search reports StatusCancelled
// once its goroutine has merged the archive.
func (s *Server) Cancel(id string) (*SearchStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.searches[id]
	if !ok {
		return nil, apperrors.NotFound("search %q not found", id).WithOperation("cancel")
	}
	if st.status.Terminal() {
		return nil, apperrors.Errorf("cannot cancel search with status %s", st.status).
			WithOperation("cancel").
			WithStatus(http.StatusConflict)
	}

	st.cancel()
	s.logger.Info("search cancellation requested", map[string]interface{}{
		"search_id": id,
	})
	return st.snapshot(), nil
}

// run executes a search in its own goroutine once a slot is free.
func (s *Server) run(ctx context.Context, st *searchState) {
	defer s.wg.Done()
	defer st.cancel()

	select {
	case s.slots <- struct{}{}:
	case <-ctx.Done():
		s.finish(st, nil, ctx.Err())
		return
	}
	defer func() { <-s.slots }()

	s.mu.Lock()
	st.status = StatusRunning
	s.mu.Unlock()
	if s.metrics != nil {
		s.metrics.SearchStarted()
	}

	searchLogger := s.logger.WithFields(map[string]interface{}{"search_id": st.id})
	report, err := solver.Solve(ctx, st.params, logging.NewZapLogger(searchLogger, "ibmols"), s.observer)

	if s.metrics != nil {
		s.metrics.SearchFinished(string(finalStatus(err)))
	}
	s.finish(st, report, err)
}

func finalStatus(err error) Status {
	switch {
	case err == nil:
		return StatusCompleted
	case errors.Is(err, context.Canceled):
		return StatusCancelled
	default:
		return StatusFailed
	}
}

func (s *Server) finish(st *searchState, report *solver.Report, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	st.status = finalStatus(err)
	st.endTime = &now
	st.report = report
	if st.status == StatusFailed {
		st.err = err
	}

	fields := map[string]interface{}{
		"search_id": st.id,
		"status":    st.status,
		"duration":  now.Sub(st.startTime).String(),
	}
	if report != nil {
		fields["archive_size"] = len(report.Front)
		fields["steps"] = report.Steps
	}
	if st.status == StatusFailed {
		fields["error"] = err.Error()
		s.logger.Error("search failed", fields)
		return
	}
	s.logger.Info("search finished", fields)
}

// Close cancels all searches and waits for them to stop.
func (s *Server) Close() error {
	s.mu.RLock()
	for _, st := range s.searches {
		st.cancel()
	}
	s.mu.RUnlock()

	s.wg.Wait()
	return nil
}
