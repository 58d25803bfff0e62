package domain

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestNewToolResult(t *testing.T) {
	resp := NewToolResult(map[string]interface{}{"id": "abc123"})

	if resp.IsError {
		t.Error("expected IsError to be false")
	}
	if len(resp.Content) != 1 {
		t.Fatalf("expected 1 content block, got %d", len(resp.Content))
	}
	if resp.Content[0].Type != "text" {
		t.Errorf("expected text content, got %q", resp.Content[0].Type)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal([]byte(resp.Content[0].Text), &decoded); err != nil {
		t.Fatalf("result text is not valid JSON: %v", err)
	}
	if decoded["id"] != "abc123" {
		t.Errorf("expected id 'abc123', got %v", decoded["id"])
	}

	// Pretty-printed output spans multiple lines.
	if !strings.Contains(resp.Content[0].Text, "\n") {
		t.Error("expected indented JSON output")
	}
}

func TestNewToolResultNilPayload(t *testing.T) {
	resp := NewToolResult(nil)

	if resp.IsError {
		t.Error("expected IsError to be false")
	}
	if resp.Content[0].Text != "{}" {
		t.Errorf("expected empty object text, got %q", resp.Content[0].Text)
	}
}

func TestNewToolError(t *testing.T) {
	resp := NewToolError(errors.New("something broke"))

	if !resp.IsError {
		t.Error("expected IsError to be true")
	}
	if len(resp.Content) != 1 {
		t.Fatalf("expected 1 content block, got %d", len(resp.Content))
	}
	if resp.Content[0].Text != "Error: something broke" {
		t.Errorf("unexpected error text: %q", resp.Content[0].Text)
	}
}

func TestNewToolErrorNil(t *testing.T) {
	resp := NewToolError(nil)

	if !resp.IsError {
		t.Error("expected IsError to be true")
	}
	if resp.Content[0].Text != "Error: unknown error" {
		t.Errorf("unexpected error text: %q", resp.Content[0].Text)
	}
}
