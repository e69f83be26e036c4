package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aretw0/formflow"
	"github.com/aretw0/formflow/pkg/document"
	"github.com/aretw0/formflow/pkg/domain"
	"github.com/aretw0/formflow/pkg/flow"
	"github.com/aretw0/formflow/pkg/ports"
	"github.com/aretw0/formflow/pkg/schema"
)

// ValidateResponse aligns with the HTTP adapter and reports every violation found.
type ValidateResponse struct {
	Valid      bool               `json:"valid" jsonschema_description:"True when the service has no violations"`
	Violations []domain.Violation `json:"violations" jsonschema_description:"Every schema and graph violation found"`
}

// ResolveResponse names the page that follows the submitted one.
type ResolveResponse struct {
	PageID     string `json:"page_id" jsonschema_description:"The submitted page"`
	NextPageID string `json:"next_page_id" jsonschema_description:"The next page uuid, empty when the flow has ended"`
	NextURL    string `json:"next_url,omitempty" jsonschema_description:"The url of the next page"`
	End        bool   `json:"end" jsonschema_description:"Indicates that the flow has ended"`
}

// GenerateResponse carries a freshly generated service.
type GenerateResponse struct {
	ServiceID string            `json:"service_id" jsonschema_description:"The new service id"`
	Stored    bool              `json:"stored" jsonschema_description:"Whether the service was saved in the store"`
	Document  document.Document `json:"document" jsonschema_description:"The generated service document"`
}

// Engine defines the interface required by the MCP server to interact with formflow.
type Engine interface {
	Validator() *schema.Validator
	Generate(ctx context.Context, serviceName, owner string) (*document.Document, error)
	Validate(ctx context.Context, raw map[string]any) domain.Result
	Load(ctx context.Context, raw map[string]any) (*flow.Graph, error)
	Resolve(ctx context.Context, g *flow.Graph, pageID string, answers domain.AnswerSet) (string, error)
}

// Server wraps the formflow Engine and exposes it as an MCP Server.
type Server struct {
	engine    Engine
	store     ports.DocumentStore
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance.
// store may be nil, in which case tools only accept inline documents.
func NewServer(engine Engine, store ports.DocumentStore) *Server {
	s := &Server{
		engine:    engine,
		store:     store,
		mcpServer: server.NewMCPServer("formflow-mcp", formflow.Version),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		slog.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		slog.Info("Shutdown signal received, shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: generate_service
	generateTool := mcp.NewTool("generate_service",
		mcp.WithDescription("Create a new, valid service with start, check answers and confirmation pages."),
		mcp.WithString("service_name", mcp.Required(), mcp.Description("Human readable service name")),
		mcp.WithString("owner", mcp.Required(), mcp.Description("Id of the user creating the service")),
		mcp.WithOutputSchema[GenerateResponse](),
	)
	s.mcpServer.AddTool(generateTool, mcp.NewStructuredToolHandler(s.handleGenerate))

	// TOOL: validate_service
	validateTool := mcp.NewTool("validate_service",
		mcp.WithDescription("Validate a service document against the schemas and the flow graph rules."),
		mcp.WithString("service_id", mcp.Description("Id of a stored service (optional if document is provided)")),
		mcp.WithString("document", mcp.Description("Service document as JSON or YAML (optional if service_id is provided)")),
		mcp.WithString("format", mcp.Description("Format of document: json (default) or yaml")),
		mcp.WithOutputSchema[ValidateResponse](),
	)
	s.mcpServer.AddTool(validateTool, mcp.NewStructuredToolHandler(s.handleValidate))

	// TOOL: resolve_next
	resolveTool := mcp.NewTool("resolve_next",
		mcp.WithDescription("Resolve the page that follows page_id given the answers so far."),
		mcp.WithString("page_id", mcp.Required(), mcp.Description("Uuid of the submitted page")),
		mcp.WithString("answers", mcp.Description("JSON object of answers keyed by component uuid")),
		mcp.WithString("service_id", mcp.Description("Id of a stored service (optional if document is provided)")),
		mcp.WithString("document", mcp.Description("Service document as JSON or YAML (optional if service_id is provided)")),
		mcp.WithString("format", mcp.Description("Format of document: json (default) or yaml")),
		mcp.WithOutputSchema[ResolveResponse](),
	)
	s.mcpServer.AddTool(resolveTool, mcp.NewStructuredToolHandler(s.handleResolveNext))

	// TOOL: list_services
	s.mcpServer.AddTool(mcp.NewTool("list_services",
		mcp.WithDescription("List the ids of the stored services."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if s.store == nil {
			return mcp.NewToolResultError("no store configured"), nil
		}
		ids, err := s.store.List(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("list failed: %v", err)), nil
		}
		jsonBytes, _ := json.Marshal(ids)
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})
}

// Handler methods for structured tools

func (s *Server) handleGenerate(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (GenerateResponse, error) {
	name, _ := args["service_name"].(string)
	owner, _ := args["owner"].(string)

	doc, err := s.engine.Generate(ctx, name, owner)
	if err != nil {
		return GenerateResponse{}, fmt.Errorf("generate failed: %w", err)
	}

	resp := GenerateResponse{ServiceID: doc.ServiceID, Document: *doc}
	if s.store != nil {
		if err := s.store.Save(ctx, doc); err != nil {
			return GenerateResponse{}, fmt.Errorf("save failed: %w", err)
		}
		resp.Stored = true
	}
	return resp, nil
}

func (s *Server) handleValidate(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (ValidateResponse, error) {
	raw, err := s.document(ctx, args)
	if err != nil {
		return ValidateResponse{}, err
	}

	result := s.engine.Validate(ctx, raw)
	violations := result.Violations
	if violations == nil {
		violations = []domain.Violation{}
	}
	return ValidateResponse{Valid: result.Valid(), Violations: violations}, nil
}

func (s *Server) handleResolveNext(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (ResolveResponse, error) {
	pageID, _ := args["page_id"].(string)
	if pageID == "" {
		return ResolveResponse{}, errors.New("page_id is required")
	}

	answers := domain.AnswerSet{}
	if answersStr, ok := args["answers"].(string); ok && answersStr != "" {
		if err := json.Unmarshal([]byte(answersStr), &answers); err != nil {
			return ResolveResponse{}, fmt.Errorf("answers must be a JSON object: %w", err)
		}
	}

	raw, err := s.document(ctx, args)
	if err != nil {
		return ResolveResponse{}, err
	}
	g, err := s.engine.Load(ctx, raw)
	if err != nil {
		return ResolveResponse{}, fmt.Errorf("service cannot be loaded: %w", err)
	}

	next, err := s.engine.Resolve(ctx, g, pageID, answers)
	if err != nil {
		slog.Warn("MCP ResolveNext: Transition rejected", "page", pageID, "error", err)
		return ResolveResponse{}, fmt.Errorf("resolve failed: %w", err)
	}

	resp := ResolveResponse{PageID: pageID, NextPageID: next, End: next == domain.EndOfFlow}
	if page, ok := g.Page(next); ok {
		resp.NextURL = page.URL
	}
	return resp, nil
}

// document reads the service from the "document" argument, or from the store
// when only "service_id" is given.
func (s *Server) document(ctx context.Context, args map[string]interface{}) (map[string]any, error) {
	if docStr, ok := args["document"].(string); ok && docStr != "" {
		format := document.FormatJSON
		if name, ok := args["format"].(string); ok && name != "" {
			f, err := document.ParseFormat(name)
			if err != nil {
				return nil, err
			}
			format = f
		}
		return document.ParseRaw([]byte(docStr), format)
	}

	serviceID, _ := args["service_id"].(string)
	if serviceID == "" {
		return nil, errors.New("either document or service_id is required")
	}
	if s.store == nil {
		return nil, errors.New("no store configured: pass the document inline")
	}
	doc, err := s.store.Load(ctx, serviceID)
	if err != nil {
		return nil, err
	}
	return doc.Map()
}

func (s *Server) registerResources() {
	// EXPOSE: formflow://schemas
	s.mcpServer.AddResource(mcp.NewResource("formflow://schemas", "Schema Names",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, _ := json.Marshal(s.engine.Validator().Names())

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "formflow://schemas",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
