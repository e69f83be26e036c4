package formflow

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/formflow/pkg/document"
	"github.com/aretw0/formflow/pkg/domain"
	"github.com/aretw0/formflow/pkg/flow"
	"github.com/aretw0/formflow/pkg/generator"
	"github.com/aretw0/formflow/pkg/schema"
)

// Engine is the high-level entry point for the formflow library.
// It ties schema validation, graph integrity checks and next page resolution together.
// Engine holds no per-service state: every call builds a fresh graph.
type Engine struct {
	generator *generator.Generator
	validator *schema.Validator
	hooks     domain.LifecycleHooks
	logger    *slog.Logger
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithGenerator replaces the generator used for new services.
func WithGenerator(g *generator.Generator) Option {
	return func(e *Engine) {
		e.generator = g
	}
}

// WithValidator replaces the embedded schema set.
func WithValidator(v *schema.Validator) Option {
	return func(e *Engine) {
		e.validator = v
	}
}

// New initializes a new Engine.
func New(opts ...Option) (*Engine, error) {
	eng := &Engine{}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.validator == nil {
		v, err := schema.Default()
		if err != nil {
			return nil, fmt.Errorf("failed to load schemas: %w", err)
		}
		eng.validator = v
	}
	if eng.generator == nil {
		eng.generator = generator.New()
	}
	if eng.logger == nil {
		eng.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return eng, nil
}

// Validator returns the schema validator used by the engine.
func (e *Engine) Validator() *schema.Validator {
	return e.validator
}

// Generate creates the metadata of a new service. The result is always valid.
func (e *Engine) Generate(ctx context.Context, serviceName, owner string) (*document.Document, error) {
	if serviceName == "" {
		return nil, fmt.Errorf("service name is required")
	}
	if owner == "" {
		return nil, fmt.Errorf("owner is required")
	}
	doc := e.generator.Generate(serviceName, owner)
	e.logger.InfoContext(ctx, "service generated", "service", doc.ServiceID, "name", serviceName)
	return doc, nil
}

// Validate checks a service document and returns every violation found.
// Graph integrity is only checked once the document is schema valid.
func (e *Engine) Validate(ctx context.Context, raw map[string]any) domain.Result {
	result, _ := e.validate(ctx, raw)
	return result
}

// ValidateDocument is Validate for an already decoded document.
func (e *Engine) ValidateDocument(ctx context.Context, doc *document.Document) (domain.Result, error) {
	raw, err := doc.Map()
	if err != nil {
		return domain.Result{}, err
	}
	return e.Validate(ctx, raw), nil
}

// ValidateSchema checks a document fragment against a single named schema.
func (e *Engine) ValidateSchema(ctx context.Context, fragment any, name string) domain.Result {
	result := e.validator.Validate(fragment, name)
	e.logger.DebugContext(ctx, "schema checked", "schema", name, "violations", len(result.Violations))
	return result
}

// Load validates a service document and builds its flow graph.
// Invalid documents are refused with a *domain.ValidationError.
func (e *Engine) Load(ctx context.Context, raw map[string]any) (*flow.Graph, error) {
	result, g := e.validate(ctx, raw)
	if err := result.Err(); err != nil {
		return nil, err
	}
	return g, nil
}

// LoadDocument is Load for an already decoded document.
func (e *Engine) LoadDocument(ctx context.Context, doc *document.Document) (*flow.Graph, error) {
	raw, err := doc.Map()
	if err != nil {
		return nil, err
	}
	return e.Load(ctx, raw)
}

// ResolveNext loads the service and returns the page that follows pageID.
// An empty id with a nil error means the flow has ended.
func (e *Engine) ResolveNext(ctx context.Context, raw map[string]any, pageID string, answers domain.AnswerSet) (string, error) {
	g, err := e.Load(ctx, raw)
	if err != nil {
		return "", err
	}
	return e.Resolve(ctx, g, pageID, answers)
}

// Resolve runs next page resolution on an already loaded graph and emits hooks.
func (e *Engine) Resolve(ctx context.Context, g *flow.Graph, pageID string, answers domain.AnswerSet) (string, error) {
	next, branch, err := g.Resolve(pageID, answers)

	logger := e.logger.With("service", g.ServiceID(), "page", pageID)
	switch {
	case err != nil:
		logger.WarnContext(ctx, "transition unresolved", "err", err)
	case next == domain.EndOfFlow:
		logger.DebugContext(ctx, "flow ended")
	default:
		logger.DebugContext(ctx, "transition resolved", "next", next, "branch", branch)
	}

	if e.hooks.OnResolve != nil {
		e.hooks.OnResolve(ctx, &domain.ResolveEvent{
			EventBase: domain.EventBase{
				Timestamp: time.Now(),
				Type:      domain.EventResolve,
				ServiceID: g.ServiceID(),
			},
			PageID: pageID,
			NextID: next,
			Branch: branch,
			Err:    err,
		})
	}
	return next, err
}

func (e *Engine) validate(ctx context.Context, raw map[string]any) (domain.Result, *flow.Graph) {
	began := time.Now()
	serviceID, _ := raw["service_id"].(string)

	result := e.validator.ValidateService(raw)

	var g *flow.Graph
	if result.Valid() {
		var err error
		g, err = e.buildGraph(raw)
		if err != nil {
			result.Addf(domain.CodeSchemaInvalid, "/", "", "%v", err)
		} else {
			result.Merge(g.Validate())
		}
	}

	event := &domain.ValidateEvent{
		EventBase: domain.EventBase{
			Timestamp: time.Now(),
			Type:      domain.EventValidate,
			ServiceID: serviceID,
		},
		Duration: time.Since(began),
		Schema:   result.Count(domain.CategorySchema),
		Graph:    result.Count(domain.CategoryGraph),
	}
	if result.Valid() {
		e.logger.DebugContext(ctx, "service valid", "service", serviceID, "duration", event.Duration)
	} else {
		e.logger.InfoContext(ctx, "service invalid",
			"service", serviceID,
			"schema_violations", event.Schema,
			"graph_violations", event.Graph,
		)
	}
	if e.hooks.OnValidate != nil {
		e.hooks.OnValidate(ctx, event)
	}

	if !result.Valid() {
		return result, nil
	}
	return result, g
}

func (e *Engine) buildGraph(raw map[string]any) (*flow.Graph, error) {
	doc, err := document.Decode(raw)
	if err != nil {
		return nil, err
	}
	return flow.Build(doc)
}

// IsUnresolved reports whether err is a fail-closed resolution failure.
func IsUnresolved(err error) bool {
	return errors.Is(err, domain.ErrUnresolvedTransition)
}
