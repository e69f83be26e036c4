package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/formflow"
	"github.com/aretw0/formflow/internal/presentation/graph"
	"github.com/aretw0/formflow/pkg/adapters/memory"
	"github.com/aretw0/formflow/pkg/document"
	"github.com/aretw0/formflow/pkg/domain"
	"github.com/aretw0/formflow/pkg/flow"
	"github.com/aretw0/formflow/pkg/ports"
	"github.com/aretw0/formflow/pkg/schema"
)

// DefaultLockTTL bounds how long a write may hold the per-service lock.
const DefaultLockTTL = 10 * time.Second

// Engine defines the operations the HTTP adapter needs from the formflow core.
// *formflow.Engine satisfies it.
type Engine interface {
	Validator() *schema.Validator
	Generate(ctx context.Context, serviceName, owner string) (*document.Document, error)
	Validate(ctx context.Context, raw map[string]any) domain.Result
	ValidateSchema(ctx context.Context, fragment any, name string) domain.Result
	Load(ctx context.Context, raw map[string]any) (*flow.Graph, error)
	Resolve(ctx context.Context, g *flow.Graph, pageID string, answers domain.AnswerSet) (string, error)
}

var _ Engine = (*formflow.Engine)(nil)

// Server serves service documents over HTTP.
type Server struct {
	Engine  Engine
	Store   ports.DocumentStore
	Locker  ports.DistributedLocker
	Streams *StreamManager

	gatherer prometheus.Gatherer
	logger   *slog.Logger
	lockTTL  time.Duration
}

// Option configures a Server.
type Option func(*Server)

// WithLocker serializes writes to a service through locker.
// Without it an in-process locker is used.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(s *Server) {
		s.Locker = locker
	}
}

// WithGatherer exposes the collectors of g on GET /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithLockTTL overrides DefaultLockTTL.
func WithLockTTL(ttl time.Duration) Option {
	return func(s *Server) {
		s.lockTTL = ttl
	}
}

// NewServer wires engine and store into a Server.
func NewServer(engine Engine, store ports.DocumentStore, opts ...Option) *Server {
	s := &Server{
		Engine:  engine,
		Store:   store,
		Streams: NewStreamManager(),
		logger:  slog.Default(),
		lockTTL: DefaultLockTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.Locker == nil {
		s.Locker = memory.NewLocker()
	}
	s.Streams.logger = s.logger
	return s
}

// NewHandler creates a new HTTP handler for the engine.
func NewHandler(engine Engine, store ports.DocumentStore, opts ...Option) http.Handler {
	return NewServer(engine, store, opts...).Routes()
}

// Routes builds the chi router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	r.Post("/validate", s.ValidateFragment)

	r.Route("/services", func(r chi.Router) {
		r.Post("/", s.CreateService)
		r.Get("/", s.ListServices)
		r.Route("/{serviceID}", func(r chi.Router) {
			r.Get("/", s.GetService)
			r.Put("/", s.PutService)
			r.Delete("/", s.DeleteService)
			r.Post("/validate", s.ValidateService)
			r.Get("/graph", s.GetGraph)
			r.Get("/events", s.SubscribeEvents)
			r.Post("/pages/{pageID}/next", s.ResolveNext)
		})
	})

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// CreateServiceRequest is the body of POST /services.
type CreateServiceRequest struct {
	ServiceName string `json:"service_name"`
	Owner       string `json:"owner"`
}

// ResolveRequest is the body of POST /services/{serviceID}/pages/{pageID}/next.
type ResolveRequest struct {
	Answers domain.AnswerSet `json:"answers"`
}

// ResolveResponse names the page that follows the submitted one.
// End is true, and NextPageID empty, when the flow has finished.
type ResolveResponse struct {
	PageID     string `json:"page_id"`
	NextPageID string `json:"next_page_id"`
	NextURL    string `json:"next_url,omitempty"`
	End        bool   `json:"end"`
}

// ValidationResponse reports the outcome of a validation pass.
type ValidationResponse struct {
	Valid      bool               `json:"valid"`
	Violations []domain.Violation `json:"violations"`
}

// ErrorResponse is returned for every non 2xx answer.
type ErrorResponse struct {
	Error      string             `json:"error"`
	Violations []domain.Violation `json:"violations,omitempty"`
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"app":     "formflow-http",
		"version": formflow.Version,
		"schemas": s.Engine.Validator().Names(),
	})
}

// CreateService handles POST /services: generates a new service and stores it.
func (s *Server) CreateService(w http.ResponseWriter, r *http.Request) {
	var body CreateServiceRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.fail(w, r, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	doc, err := s.Engine.Generate(r.Context(), body.ServiceName, body.Owner)
	if err != nil {
		s.fail(w, r, http.StatusBadRequest, err)
		return
	}
	doc, err = s.save(r.Context(), doc)
	if err != nil {
		s.fail(w, r, statusOf(err), err)
		return
	}

	s.Streams.Publish(doc.ServiceID, ChangeCreated, doc.VersionID)
	writeJSON(w, http.StatusCreated, doc)
}

// ListServices handles GET /services.
func (s *Server) ListServices(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Store.List(r.Context())
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"services": ids})
}

// GetService handles GET /services/{serviceID}.
func (s *Server) GetService(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.load(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// PutService handles PUT /services/{serviceID}. Only valid documents are stored.
func (s *Server) PutService(w http.ResponseWriter, r *http.Request) {
	serviceID, err := pathParam(r, "serviceID")
	if err != nil {
		s.fail(w, r, http.StatusBadRequest, err)
		return
	}

	var raw map[string]any
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil || raw == nil {
		s.fail(w, r, http.StatusBadRequest, fmt.Errorf("body must be a service document"))
		return
	}
	if id, _ := raw["service_id"].(string); id != serviceID {
		s.fail(w, r, http.StatusBadRequest, fmt.Errorf("service_id %q does not match path %q", id, serviceID))
		return
	}

	result := s.Engine.Validate(r.Context(), raw)
	if !result.Valid() {
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error:      "service document is invalid",
			Violations: result.Violations,
		})
		return
	}

	doc, err := document.Decode(raw)
	if err != nil {
		s.fail(w, r, http.StatusBadRequest, err)
		return
	}
	doc, err = s.save(r.Context(), doc)
	if err != nil {
		s.fail(w, r, statusOf(err), err)
		return
	}

	s.Streams.Publish(serviceID, ChangeUpdated, doc.VersionID)
	writeJSON(w, http.StatusOK, doc)
}

// DeleteService handles DELETE /services/{serviceID}.
func (s *Server) DeleteService(w http.ResponseWriter, r *http.Request) {
	serviceID, err := pathParam(r, "serviceID")
	if err != nil {
		s.fail(w, r, http.StatusBadRequest, err)
		return
	}

	err = s.withLock(r.Context(), serviceID, func(ctx context.Context) error {
		if _, err := s.Store.Load(ctx, serviceID); err != nil {
			return err
		}
		return s.Store.Delete(ctx, serviceID)
	})
	if err != nil {
		s.fail(w, r, statusOf(err), err)
		return
	}

	s.Streams.Publish(serviceID, ChangeDeleted, "")
	w.WriteHeader(http.StatusNoContent)
}

// ValidateService handles POST /services/{serviceID}/validate for a stored service.
func (s *Server) ValidateService(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.load(w, r)
	if !ok {
		return
	}
	raw, err := doc.Map()
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, validationResponse(s.Engine.Validate(r.Context(), raw)))
}

// ValidateFragment handles POST /validate. With ?schema=NAME the body is checked
// against that single schema, otherwise it is validated as a whole service.
func (s *Server) ValidateFragment(w http.ResponseWriter, r *http.Request) {
	var body any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.fail(w, r, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	if name := r.URL.Query().Get("schema"); name != "" {
		writeJSON(w, http.StatusOK, validationResponse(s.Engine.ValidateSchema(r.Context(), body, name)))
		return
	}

	raw, ok := body.(map[string]any)
	if !ok {
		s.fail(w, r, http.StatusBadRequest, fmt.Errorf("body must be a service document"))
		return
	}
	writeJSON(w, http.StatusOK, validationResponse(s.Engine.Validate(r.Context(), raw)))
}

// ResolveNext handles POST /services/{serviceID}/pages/{pageID}/next.
func (s *Server) ResolveNext(w http.ResponseWriter, r *http.Request) {
	pageID, err := pathParam(r, "pageID")
	if err != nil {
		s.fail(w, r, http.StatusBadRequest, err)
		return
	}

	var body ResolveRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			s.fail(w, r, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
			return
		}
	}

	g, ok := s.graph(w, r)
	if !ok {
		return
	}

	next, err := s.Engine.Resolve(r.Context(), g, pageID, body.Answers)
	if err != nil {
		s.fail(w, r, statusOf(err), err)
		return
	}

	resp := ResolveResponse{PageID: pageID, NextPageID: next, End: next == domain.EndOfFlow}
	if page, ok := g.Page(next); ok {
		resp.NextURL = page.URL
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetGraph handles GET /services/{serviceID}/graph and returns a Mermaid flowchart.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	g, ok := s.graph(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(graph.GenerateMermaid(g, nil))); err != nil {
		s.logger.Error("GetGraph response write failed", "error", err)
	}
}

// -- Helpers --

func (s *Server) load(w http.ResponseWriter, r *http.Request) (*document.Document, bool) {
	serviceID, err := pathParam(r, "serviceID")
	if err != nil {
		s.fail(w, r, http.StatusBadRequest, err)
		return nil, false
	}
	doc, err := s.Store.Load(r.Context(), serviceID)
	if err != nil {
		s.fail(w, r, statusOf(err), err)
		return nil, false
	}
	return doc, true
}

// graph loads the stored service and builds its flow graph. Invalid services are
// answered with 422 and their violations.
func (s *Server) graph(w http.ResponseWriter, r *http.Request) (*flow.Graph, bool) {
	doc, ok := s.load(w, r)
	if !ok {
		return nil, false
	}
	raw, err := doc.Map()
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, err)
		return nil, false
	}
	g, err := s.Engine.Load(r.Context(), raw)
	if err != nil {
		s.fail(w, r, statusOf(err), err)
		return nil, false
	}
	return g, true
}

// save stores doc under the service lock and returns what the store kept, which
// may differ when the store is wrapped by middleware.
func (s *Server) save(ctx context.Context, doc *document.Document) (*document.Document, error) {
	var stored *document.Document
	err := s.withLock(ctx, doc.ServiceID, func(ctx context.Context) error {
		if err := s.Store.Save(ctx, doc); err != nil {
			return err
		}
		var err error
		stored, err = s.Store.Load(ctx, doc.ServiceID)
		return err
	})
	return stored, err
}

func (s *Server) withLock(ctx context.Context, serviceID string, fn func(context.Context) error) error {
	unlock, err := s.Locker.Lock(ctx, serviceID, s.lockTTL)
	if err != nil {
		return fmt.Errorf("lock service %s: %w", serviceID, err)
	}
	defer func() {
		if err := unlock(context.WithoutCancel(ctx)); err != nil {
			s.logger.Warn("unlock failed", "service", serviceID, "error", err)
		}
	}()
	return fn(ctx)
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	} else {
		s.logger.Warn("request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	}
	writeJSON(w, status, ErrorResponse{Error: err.Error(), Violations: domain.Violations(err)})
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, domain.ErrServiceNotFound), errors.Is(err, domain.ErrPageNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUnresolvedTransition):
		return http.StatusConflict
	case domain.Violations(err) != nil:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func pathParam(r *http.Request, name string) (string, error) {
	var value string
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), &value, runtime.BindStyledParameterOptions{
		ParamLocation: runtime.ParamLocationPath,
		Explode:       false,
		Required:      true,
	})
	if err != nil {
		return "", fmt.Errorf("invalid format for parameter %s: %w", name, err)
	}
	return value, nil
}

func validationResponse(result domain.Result) ValidationResponse {
	violations := result.Violations
	if violations == nil {
		violations = []domain.Violation{}
	}
	return ValidationResponse{Valid: result.Valid(), Violations: violations}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "error", err)
	}
}
