package application

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"microcms-mcp-server/internal/domain"
)

// mockTransport is an in-memory Transport for exercising the server loop.
type mockTransport struct {
	mu        sync.Mutex
	reqChan   chan *domain.Request
	responses []*domain.Response
	closed    bool
}

func newMockTransport() *mockTransport {
	return &mockTransport{
		reqChan: make(chan *domain.Request, 10),
	}
}

func (m *mockTransport) Start(ctx context.Context) error {
	return nil
}

func (m *mockTransport) Send(response *domain.Response) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, response)
	return nil
}

func (m *mockTransport) Receive() <-chan *domain.Request {
	return m.reqChan
}

func (m *mockTransport) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.closed {
		m.closed = true
		close(m.reqChan)
	}
	return nil
}

func (m *mockTransport) sendRequest(req *domain.Request) {
	m.reqChan <- req
}

func (m *mockTransport) responseCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.responses)
}

func (m *mockTransport) lastResponse() *domain.Response {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.responses) == 0 {
		return nil
	}
	return m.responses[len(m.responses)-1]
}

// waitForResponse polls until the transport has recorded at least n
// responses or the deadline passes.
func waitForResponse(t *testing.T, transport *mockTransport, n int) *domain.Response {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if transport.responseCount() >= n {
			return transport.lastResponse()
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d responses", n)
	return nil
}

func startTestServer(t *testing.T) (*Server, *mockTransport) {
	t.Helper()

	transport := newMockTransport()
	registry := NewServiceRegistry(singleServiceLoader())
	server := NewServer(transport, NewDispatcher(registry), registry)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	if err := server.Start(ctx); err != nil {
		t.Fatalf("failed to start server: %v", err)
	}
	return server, transport
}

func TestServerInitialize(t *testing.T) {
	_, transport := startTestServer(t)

	transport.sendRequest(&domain.Request{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "initialize",
	})

	resp := waitForResponse(t, transport, 1)
	if resp.Error != nil {
		t.Fatalf("unexpected error: %+v", resp.Error)
	}

	result := resp.Result.(map[string]interface{})
	if result["protocolVersion"] != "2024-11-05" {
		t.Errorf("unexpected protocol version: %v", result["protocolVersion"])
	}

	serverInfo := result["serverInfo"].(map[string]interface{})
	if serverInfo["name"] != ServerName {
		t.Errorf("unexpected server name: %v", serverInfo["name"])
	}

	capabilities := result["capabilities"].(map[string]interface{})
	if _, ok := capabilities["tools"]; !ok {
		t.Error("expected tools capability")
	}
	if _, ok := capabilities["resources"]; !ok {
		t.Error("expected resources capability")
	}
}

func TestServerToolsList(t *testing.T) {
	_, transport := startTestServer(t)

	transport.sendRequest(&domain.Request{
		JSONRPC: "2.0",
		ID:      2,
		Method:  "tools/list",
	})

	resp := waitForResponse(t, transport, 1)
	if resp.Error != nil {
		t.Fatalf("unexpected error: %+v", resp.Error)
	}

	result := resp.Result.(map[string]interface{})
	tools := result["tools"].([]domain.ToolDefinition)
	if len(tools) != 21 {
		t.Errorf("expected 21 tools, got %d", len(tools))
	}
}

func TestServerToolsCallFailureStaysInEnvelope(t *testing.T) {
	_, transport := startTestServer(t)

	transport.sendRequest(&domain.Request{
		JSONRPC: "2.0",
		ID:      3,
		Method:  "tools/call",
		Params: map[string]interface{}{
			"name":      "microcms_get_list",
			"arguments": map[string]interface{}{},
		},
	})

	resp := waitForResponse(t, transport, 1)
	// A tool failure is a successful JSON-RPC response carrying an error
	// envelope, never a JSON-RPC error.
	if resp.Error != nil {
		t.Fatalf("tool failure must not become a protocol error: %+v", resp.Error)
	}

	toolResp := resp.Result.(*domain.ToolResponse)
	if !toolResp.IsError {
		t.Fatal("expected error envelope")
	}
	if !strings.Contains(toolResp.Content[0].Text, "endpoint is required") {
		t.Errorf("unexpected error text: %q", toolResp.Content[0].Text)
	}
}

func TestServerToolsCallUnknownTool(t *testing.T) {
	_, transport := startTestServer(t)

	transport.sendRequest(&domain.Request{
		JSONRPC: "2.0",
		ID:      4,
		Method:  "tools/call",
		Params: map[string]interface{}{
			"name":      "microcms_nonexistent",
			"arguments": map[string]interface{}{},
		},
	})

	resp := waitForResponse(t, transport, 1)
	if resp.Error != nil {
		t.Fatalf("unknown tool must not become a protocol error: %+v", resp.Error)
	}

	toolResp := resp.Result.(*domain.ToolResponse)
	if !toolResp.IsError {
		t.Fatal("expected error envelope")
	}
	if !strings.Contains(toolResp.Content[0].Text, "Unknown tool") {
		t.Errorf("unexpected error text: %q", toolResp.Content[0].Text)
	}
}

func TestServerToolsCallMissingParams(t *testing.T) {
	_, transport := startTestServer(t)

	transport.sendRequest(&domain.Request{
		JSONRPC: "2.0",
		ID:      5,
		Method:  "tools/call",
	})

	resp := waitForResponse(t, transport, 1)
	if resp.Error == nil || resp.Error.Code != domain.InvalidParams {
		t.Errorf("expected invalid params error, got %+v", resp.Error)
	}
}

func TestServerUnknownMethod(t *testing.T) {
	_, transport := startTestServer(t)

	transport.sendRequest(&domain.Request{
		JSONRPC: "2.0",
		ID:      6,
		Method:  "bogus/method",
	})

	resp := waitForResponse(t, transport, 1)
	if resp.Error == nil || resp.Error.Code != domain.MethodNotFound {
		t.Errorf("expected method not found error, got %+v", resp.Error)
	}
}

func TestServerIgnoresNotifications(t *testing.T) {
	_, transport := startTestServer(t)

	transport.sendRequest(&domain.Request{
		JSONRPC: "2.0",
		Method:  "notifications/initialized",
	})
	transport.sendRequest(&domain.Request{
		JSONRPC: "2.0",
		ID:      7,
		Method:  "tools/list",
	})

	waitForResponse(t, transport, 1)
	// Only the tools/list request gets a response.
	if transport.responseCount() != 1 {
		t.Errorf("expected 1 response, got %d", transport.responseCount())
	}
}

func TestServerResourcesList(t *testing.T) {
	_, transport := startTestServer(t)

	transport.sendRequest(&domain.Request{
		JSONRPC: "2.0",
		ID:      8,
		Method:  "resources/list",
	})

	resp := waitForResponse(t, transport, 1)
	if resp.Error != nil {
		t.Fatalf("unexpected error: %+v", resp.Error)
	}

	result := resp.Result.(map[string]interface{})
	resources := result["resources"].([]domain.Resource)
	if len(resources) != 1 || resources[0].URI != servicesResourceURI {
		t.Errorf("unexpected resources: %+v", resources)
	}
}

func TestServerResourcesReadUnknownURI(t *testing.T) {
	_, transport := startTestServer(t)

	transport.sendRequest(&domain.Request{
		JSONRPC: "2.0",
		ID:      9,
		Method:  "resources/read",
		Params:  map[string]interface{}{"uri": "microcms://bogus"},
	})

	resp := waitForResponse(t, transport, 1)
	if resp.Error == nil || resp.Error.Code != domain.InvalidParams {
		t.Errorf("expected invalid params error, got %+v", resp.Error)
	}
}
