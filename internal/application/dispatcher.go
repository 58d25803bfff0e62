package application

import (
	"context"
	"fmt"

	"microcms-mcp-server/internal/domain"
)

// toolFunc is the uniform handler signature. The serviceID is the reserved
// routing argument, already stripped from args.
type toolFunc func(ctx context.Context, args map[string]interface{}, serviceID string) (interface{}, error)

// Dispatcher routes tool calls by name and wraps every outcome in the
// uniform response envelope. A tool call never produces a protocol-level
// error: unknown tools, validation failures, routing failures, remote API
// failures, and even handler panics all come back as error envelopes.
type Dispatcher struct {
	catalog []toolEntry
	tools   map[string]toolFunc
}

// NewDispatcher builds the dispatcher and all tool handlers over a shared
// registry.
func NewDispatcher(registry *ServiceRegistry) *Dispatcher {
	catalog := buildCatalog(registry)
	tools := make(map[string]toolFunc, len(catalog))
	for _, entry := range catalog {
		tools[entry.def.Name] = entry.fn
	}
	return &Dispatcher{catalog: catalog, tools: tools}
}

// ListTools returns the published tool definitions in catalog order.
func (d *Dispatcher) ListTools() []domain.ToolDefinition {
	defs := make([]domain.ToolDefinition, len(d.catalog))
	for i, entry := range d.catalog {
		defs[i] = entry.def
	}
	return defs
}

// Dispatch executes one tool call and always returns an envelope.
func (d *Dispatcher) Dispatch(ctx context.Context, req domain.ToolRequest) (resp *domain.ToolResponse) {
	defer func() {
		if r := recover(); r != nil {
			resp = domain.NewToolError(fmt.Errorf("internal error in tool %s: %v", req.Name, r))
		}
	}()

	fn, ok := d.tools[req.Name]
	if !ok {
		return domain.NewToolError(fmt.Errorf("Unknown tool: %s", req.Name))
	}

	serviceID, args, err := splitServiceID(req.Arguments)
	if err != nil {
		return domain.NewToolError(err)
	}

	result, err := fn(ctx, args, serviceID)
	if err != nil {
		return domain.NewToolError(err)
	}
	return domain.NewToolResult(result)
}

// splitServiceID extracts the reserved serviceId argument and returns the
// remaining arguments in a fresh map, so handlers never see the routing key
// and the caller's map is left untouched. A serviceId that is present but
// not a string is rejected rather than silently treated as absent.
func splitServiceID(arguments map[string]interface{}) (string, map[string]interface{}, error) {
	serviceID := ""
	args := make(map[string]interface{}, len(arguments))
	for k, v := range arguments {
		if k == "serviceId" {
			s, ok := v.(string)
			if !ok {
				return "", nil, domain.NewValidationError("serviceId must be a string, got %T", v)
			}
			serviceID = s
			continue
		}
		args[k] = v
	}
	return serviceID, args, nil
}
