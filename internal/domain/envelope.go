package domain

import (
	"encoding/json"
	"fmt"
)

// NewToolResult wraps a successful handler payload in the uniform response
// envelope: a single text content block holding the pretty-printed JSON of
// the payload.
func NewToolResult(payload interface{}) *ToolResponse {
	text := "{}"
	if payload != nil {
		data, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			// Handler payloads are plain data; a marshal failure means a
			// programming error, surfaced as an error envelope.
			return NewToolError(fmt.Errorf("failed to marshal tool result: %w", err))
		}
		text = string(data)
	}

	return &ToolResponse{
		Content: []ContentBlock{{Type: "text", Text: text}},
	}
}

// NewToolError wraps any handler failure in the uniform error envelope.
// Every failure, regardless of kind, renders as "Error: <message>" text
// plus the isError flag; nothing propagates past this seam.
func NewToolError(err error) *ToolResponse {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return &ToolResponse{
		Content: []ContentBlock{{Type: "text", Text: "Error: " + msg}},
		IsError: true,
	}
}
