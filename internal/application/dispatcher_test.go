package application

import (
	"context"
	"strings"
	"testing"

	"microcms-mcp-server/internal/domain"
)

func TestDispatcherUnknownTool(t *testing.T) {
	dispatcher := NewDispatcher(NewServiceRegistry(singleServiceLoader()))

	resp := dispatcher.Dispatch(context.Background(), domain.ToolRequest{
		Name:      "microcms_does_not_exist",
		Arguments: map[string]interface{}{},
	})

	if !resp.IsError {
		t.Fatal("expected error envelope for unknown tool")
	}
	if resp.Content[0].Text != "Error: Unknown tool: microcms_does_not_exist" {
		t.Errorf("unexpected error text: %q", resp.Content[0].Text)
	}
}

func TestDispatcherValidationFailureBecomesEnvelope(t *testing.T) {
	dispatcher := NewDispatcher(NewServiceRegistry(singleServiceLoader()))

	// endpoint is required for get_list; the failure must come back as an
	// error envelope, never a transport-level error.
	resp := dispatcher.Dispatch(context.Background(), domain.ToolRequest{
		Name:      toolGetList,
		Arguments: map[string]interface{}{},
	})

	if !resp.IsError {
		t.Fatal("expected error envelope")
	}
	if !strings.Contains(resp.Content[0].Text, "endpoint is required") {
		t.Errorf("unexpected error text: %q", resp.Content[0].Text)
	}
}

func TestDispatcherAmbiguousServiceBecomesEnvelope(t *testing.T) {
	dispatcher := NewDispatcher(NewServiceRegistry(multiServiceLoader()))

	resp := dispatcher.Dispatch(context.Background(), domain.ToolRequest{
		Name:      toolGetList,
		Arguments: map[string]interface{}{"endpoint": "articles"},
	})

	if !resp.IsError {
		t.Fatal("expected error envelope")
	}
	if !strings.Contains(resp.Content[0].Text, "serviceId is required") {
		t.Errorf("unexpected error text: %q", resp.Content[0].Text)
	}
}

func TestDispatcherRecoversFromPanic(t *testing.T) {
	dispatcher := NewDispatcher(NewServiceRegistry(singleServiceLoader()))
	dispatcher.tools["panicking_tool"] = func(ctx context.Context, args map[string]interface{}, serviceID string) (interface{}, error) {
		panic("boom")
	}

	resp := dispatcher.Dispatch(context.Background(), domain.ToolRequest{
		Name:      "panicking_tool",
		Arguments: map[string]interface{}{},
	})

	if !resp.IsError {
		t.Fatal("expected error envelope after panic")
	}
	if !strings.Contains(resp.Content[0].Text, "boom") {
		t.Errorf("unexpected error text: %q", resp.Content[0].Text)
	}
}

func TestDispatcherStripsServiceID(t *testing.T) {
	dispatcher := NewDispatcher(NewServiceRegistry(multiServiceLoader()))

	var gotArgs map[string]interface{}
	var gotServiceID string
	dispatcher.tools["probe_tool"] = func(ctx context.Context, args map[string]interface{}, serviceID string) (interface{}, error) {
		gotArgs = args
		gotServiceID = serviceID
		return map[string]interface{}{"ok": true}, nil
	}

	original := map[string]interface{}{
		"serviceId": "shop",
		"endpoint":  "articles",
	}
	resp := dispatcher.Dispatch(context.Background(), domain.ToolRequest{
		Name:      "probe_tool",
		Arguments: original,
	})

	if resp.IsError {
		t.Fatalf("unexpected error: %s", resp.Content[0].Text)
	}
	if gotServiceID != "shop" {
		t.Errorf("expected serviceId 'shop', got %q", gotServiceID)
	}
	if _, present := gotArgs["serviceId"]; present {
		t.Error("serviceId must not reach the handler")
	}
	if gotArgs["endpoint"] != "articles" {
		t.Errorf("expected remaining arguments to pass through, got %v", gotArgs)
	}
	if _, present := original["serviceId"]; !present {
		t.Error("the caller's argument map must not be mutated")
	}
}

func TestDispatcherRejectsNonStringServiceID(t *testing.T) {
	dispatcher := NewDispatcher(NewServiceRegistry(multiServiceLoader()))

	resp := dispatcher.Dispatch(context.Background(), domain.ToolRequest{
		Name: toolGetList,
		Arguments: map[string]interface{}{
			"endpoint":  "articles",
			"serviceId": float64(42),
		},
	})

	if !resp.IsError {
		t.Fatal("expected error envelope")
	}
	if !strings.Contains(resp.Content[0].Text, "serviceId must be a string") {
		t.Errorf("unexpected error text: %q", resp.Content[0].Text)
	}
}

func TestDispatcherListTools(t *testing.T) {
	dispatcher := NewDispatcher(NewServiceRegistry(singleServiceLoader()))

	tools := dispatcher.ListTools()
	if len(tools) != 21 {
		t.Fatalf("expected 21 tools, got %d", len(tools))
	}
	if tools[0].Name != toolGetServices {
		t.Errorf("expected %s first, got %s", toolGetServices, tools[0].Name)
	}

	seen := make(map[string]bool)
	for _, tool := range tools {
		if tool.Name == "" || tool.Description == "" {
			t.Errorf("tool %q is missing a name or description", tool.Name)
		}
		if seen[tool.Name] {
			t.Errorf("duplicate tool name %q", tool.Name)
		}
		seen[tool.Name] = true

		if tool.Name == toolGetServices {
			continue
		}
		if _, ok := tool.InputSchema.Properties["serviceId"]; !ok {
			t.Errorf("tool %q is missing the serviceId property", tool.Name)
		}
	}
}
