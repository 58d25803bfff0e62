package application

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"microcms-mcp-server/internal/domain"
)

// ServerName and ServerVersion identify this server in the MCP handshake.
const (
	ServerName    = "microcms-mcp-server"
	ServerVersion = "1.0.0"
)

const servicesResourceURI = "microcms://services"

// Server implements the MCP protocol methods over a transport. Protocol
// failures (bad JSON-RPC, unknown methods) surface as JSON-RPC errors; tool
// failures never do, they come back inside the tool-result envelope.
type Server struct {
	transport  domain.Transport
	dispatcher *Dispatcher
	registry   *ServiceRegistry
	logger     *StructuredLogger
}

// NewServer creates an MCP server over the given transport and dispatcher.
func NewServer(transport domain.Transport, dispatcher *Dispatcher, registry *ServiceRegistry) *Server {
	return &Server{
		transport:  transport,
		dispatcher: dispatcher,
		registry:   registry,
		logger:     NewStructuredLogger(),
	}
}

// Start begins the transport and the request loop.
func (s *Server) Start(ctx context.Context) error {
	if err := s.transport.Start(ctx); err != nil {
		s.logger.LogError("failed to start transport", err, nil)
		return fmt.Errorf("failed to start transport: %w", err)
	}

	s.logger.LogInfo("server started", map[string]interface{}{
		"server":  ServerName,
		"version": ServerVersion,
	})

	go s.processRequests(ctx)
	return nil
}

func (s *Server) processRequests(ctx context.Context) {
	reqChan := s.transport.Receive()

	for {
		select {
		case <-ctx.Done():
			s.logger.LogInfo("server shutting down", nil)
			return
		case req, ok := <-reqChan:
			if !ok {
				return
			}
			s.handleRequest(ctx, req)
		}
	}
}

func (s *Server) handleRequest(ctx context.Context, req *domain.Request) {
	// Notifications carry no id and expect no response.
	if req.ID == nil && strings.HasPrefix(req.Method, "notifications/") {
		return
	}

	s.logger.LogInfo("received request", map[string]interface{}{
		"method":     req.Method,
		"request_id": req.ID,
	})

	var response *domain.Response

	switch req.Method {
	case "initialize":
		response = s.handleInitialize(req)
	case "tools/list":
		response = s.handleToolsList(req)
	case "tools/call":
		response = s.handleToolsCall(ctx, req)
	case "resources/list":
		response = s.handleResourcesList(req)
	case "resources/read":
		response = s.handleResourcesRead(ctx, req)
	default:
		s.sendErrorResponse(req.ID, domain.MethodNotFound, "Method not found", fmt.Sprintf("unknown method: %s", req.Method))
		return
	}

	if response == nil {
		// Error response already sent by the handler.
		return
	}

	if err := s.transport.Send(response); err != nil {
		s.logger.LogError("failed to send response", err, map[string]interface{}{
			"request_id": req.ID,
		})
	}
}

func (s *Server) handleInitialize(req *domain.Request) *domain.Response {
	result := map[string]interface{}{
		"protocolVersion": "2024-11-05",
		"capabilities": map[string]interface{}{
			"tools":     map[string]interface{}{},
			"resources": map[string]interface{}{},
		},
		"serverInfo": map[string]interface{}{
			"name":    ServerName,
			"version": ServerVersion,
		},
	}

	return &domain.Response{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result:  result,
	}
}

func (s *Server) handleToolsList(req *domain.Request) *domain.Response {
	return &domain.Response{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": s.dispatcher.ListTools(),
		},
	}
}

func (s *Server) handleToolsCall(ctx context.Context, req *domain.Request) *domain.Response {
	toolReq, err := s.parseToolRequest(req.Params)
	if err != nil {
		s.sendErrorResponse(req.ID, domain.InvalidParams, "Invalid params", err.Error())
		return nil
	}

	resp := s.dispatcher.Dispatch(ctx, *toolReq)
	if resp.IsError {
		s.logger.LogInfo("tool call failed", map[string]interface{}{
			"tool":       toolReq.Name,
			"request_id": req.ID,
		})
	}

	return &domain.Response{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result:  resp,
	}
}

func (s *Server) handleResourcesList(req *domain.Request) *domain.Response {
	resources := []domain.Resource{
		{
			URI:      servicesResourceURI,
			Name:     "Configured microCMS services",
			MimeType: "application/json",
		},
	}

	return &domain.Response{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"resources": resources,
		},
	}
}

func (s *Server) handleResourcesRead(ctx context.Context, req *domain.Request) *domain.Response {
	var params struct {
		URI string `json:"uri"`
	}
	if err := reparseParams(req.Params, &params); err != nil {
		s.sendErrorResponse(req.ID, domain.InvalidParams, "Invalid params", err.Error())
		return nil
	}

	if params.URI != servicesResourceURI {
		s.sendErrorResponse(req.ID, domain.InvalidParams, "Invalid params", fmt.Sprintf("unknown resource: %s", params.URI))
		return nil
	}

	handler := NewServicesHandler(s.registry)
	payload, err := handler.GetServices(ctx, nil, "")
	if err != nil {
		s.sendErrorResponse(req.ID, domain.InternalError, "Internal error", err.Error())
		return nil
	}

	text, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		s.sendErrorResponse(req.ID, domain.InternalError, "Internal error", err.Error())
		return nil
	}

	return &domain.Response{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"contents": []domain.Resource{
				{
					URI:      servicesResourceURI,
					MimeType: "application/json",
					Text:     string(text),
				},
			},
		},
	}
}

// parseToolRequest converts the params field into a ToolRequest through a
// JSON round trip, which handles both raw maps and pre-parsed structs.
func (s *Server) parseToolRequest(params interface{}) (*domain.ToolRequest, error) {
	if params == nil {
		return nil, fmt.Errorf("params is required for tools/call")
	}

	var toolReq domain.ToolRequest
	if err := reparseParams(params, &toolReq); err != nil {
		return nil, err
	}

	if toolReq.Name == "" {
		return nil, fmt.Errorf("tool name is required")
	}
	if toolReq.Arguments == nil {
		toolReq.Arguments = make(map[string]interface{})
	}

	return &toolReq, nil
}

func reparseParams(params interface{}, out interface{}) error {
	data, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("failed to marshal params: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to unmarshal params: %w", err)
	}
	return nil
}

func (s *Server) sendErrorResponse(id interface{}, code int, message string, data interface{}) {
	response := &domain.Response{
		JSONRPC: "2.0",
		ID:      id,
		Error: &domain.Error{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}

	if err := s.transport.Send(response); err != nil {
		s.logger.LogError("failed to send error response", err, map[string]interface{}{
			"request_id": id,
			"error_code": code,
		})
	}
}

// Close gracefully shuts down the server.
func (s *Server) Close() error {
	s.logger.LogInfo("closing server", nil)
	return s.transport.Close()
}

// StructuredLogger writes JSON log lines to stderr through the standard
// logger, keeping stdout clean for the stdio transport.
type StructuredLogger struct {
	logger *log.Logger
}

// NewStructuredLogger creates a logger over log.Default.
func NewStructuredLogger() *StructuredLogger {
	return &StructuredLogger{logger: log.Default()}
}

// LogInfo logs an informational message with context.
func (l *StructuredLogger) LogInfo(message string, context map[string]interface{}) {
	l.logger.Println(l.buildLogEntry("INFO", message, nil, context))
}

// LogError logs an error message with context.
func (l *StructuredLogger) LogError(message string, err error, context map[string]interface{}) {
	l.logger.Println(l.buildLogEntry("ERROR", message, err, context))
}

func (l *StructuredLogger) buildLogEntry(level, message string, err error, context map[string]interface{}) string {
	entry := map[string]interface{}{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"level":     level,
		"message":   message,
	}

	if err != nil {
		entry["error"] = err.Error()
	}
	for k, v := range context {
		entry[k] = v
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Sprintf(`{"level":"ERROR","message":"failed to marshal log entry","error":"%s"}`, err.Error())
	}
	return string(data)
}
