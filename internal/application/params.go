package application

import (
	"encoding/json"

	"microcms-mcp-server/internal/domain"
)

// decodeParams converts an untyped argument bag into a closed per-tool
// parameter struct. Decoding happens once at the handler boundary; required
// fields are then checked explicitly before any remote call.
func decodeParams[T any](args map[string]interface{}) (T, error) {
	var params T

	data, err := json.Marshal(args)
	if err != nil {
		return params, domain.NewValidationError("invalid arguments: %v", err)
	}
	if err := json.Unmarshal(data, &params); err != nil {
		return params, domain.NewValidationError("invalid arguments: %v", err)
	}
	return params, nil
}
