package application

import (
	"context"

	"golang.org/x/sync/errgroup"

	"microcms-mcp-server/internal/domain"
	"microcms-mcp-server/internal/infrastructure"
)

// ServicesHandler implements the service discovery tool. It is the only
// handler that spans all configured services instead of resolving one.
type ServicesHandler struct {
	registry *ServiceRegistry
}

// NewServicesHandler creates a ServicesHandler backed by the given registry.
func NewServicesHandler(registry *ServiceRegistry) *ServicesHandler {
	return &ServicesHandler{registry: registry}
}

type serviceAPI struct {
	Name     string `json:"name"`
	Endpoint string `json:"endpoint"`
	Type     string `json:"type"`
}

type serviceOverview struct {
	ID   string       `json:"id"`
	Apis []serviceAPI `json:"apis"`
}

type servicesResult struct {
	Mode        string            `json:"mode"`
	Description string            `json:"description"`
	Services    []serviceOverview `json:"services"`
}

const (
	singleModeDescription = "Single service mode - serviceId parameter is optional"
	multiModeDescription  = "Multi service mode - serviceId parameter is required for all tools. Use the serviceId that contains the endpoint you need."
)

// GetServices handles microcms_get_services. Every configured service is
// queried concurrently for its API list; a service whose query fails still
// appears in the result, with an empty apis array, so one unreachable
// service never hides the others.
func (h *ServicesHandler) GetServices(ctx context.Context, args map[string]interface{}, serviceID string) (interface{}, error) {
	config, err := h.registry.Initialize()
	if err != nil {
		return nil, err
	}

	services := config.Services()
	overviews := make([]serviceOverview, len(services))

	g, gctx := errgroup.WithContext(ctx)
	for i, svc := range services {
		i, svc := i, svc
		g.Go(func() error {
			bundle, err := h.registry.Resolve(svc.ID)
			if err != nil {
				return err
			}

			apis := []serviceAPI{}
			if list, err := bundle.Management.GetAPIList(gctx); err == nil {
				for _, info := range list.Apis {
					apis = append(apis, serviceAPI{
						Name:     apiName(info),
						Endpoint: apiEndpoint(info),
						Type:     apiTypeLabel(info),
					})
				}
			}

			// Each goroutine owns a distinct slot.
			overviews[i] = serviceOverview{ID: svc.ID, Apis: apis}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &servicesResult{
		Mode:        config.Mode().String(),
		Description: multiModeDescription,
		Services:    overviews,
	}
	if config.Mode() == domain.SingleService {
		result.Description = singleModeDescription
	}
	return result, nil
}

// The management API has shipped two naming schemes over time; prefer the
// apiName/apiEndpoint fields and fall back to the short ones.
func apiName(info infrastructure.APIInfo) string {
	if info.APIName != "" {
		return info.APIName
	}
	return info.Name
}

func apiEndpoint(info infrastructure.APIInfo) string {
	if info.APIEndpoint != "" {
		return info.APIEndpoint
	}
	return info.Endpoint
}

// apiTypeLabel collapses the two shapes the management API uses for an API's
// kind into "list" or "object".
func apiTypeLabel(info infrastructure.APIInfo) string {
	if info.Type == "list" {
		return "list"
	}
	for _, t := range info.APIType {
		if t == "LIST" {
			return "list"
		}
	}
	return "object"
}
