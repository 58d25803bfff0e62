package infrastructure

import (
	"fmt"
	"net/http"
	"time"

	"microcms-mcp-server/internal/domain"
)

// API host suffixes for the two microCMS surfaces. The service id is the
// subdomain on both.
const (
	contentAPIHost    = "microcms.io"
	managementAPIHost = "microcms-management.io"
)

// defaultTimeout bounds every remote call. There is no retry; a slow or
// unreachable backend surfaces as a single failed call.
const defaultTimeout = 30 * time.Second

// apiKeyTransport injects the microCMS authentication header into every
// outgoing request.
type apiKeyTransport struct {
	apiKey string
	base   http.RoundTripper
}

// RoundTrip implements http.RoundTripper.
func (t *apiKeyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	clone.Header.Set("X-MICROCMS-API-KEY", t.apiKey)
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(clone)
}

// newAuthenticatedClient builds an http.Client that authenticates every
// request with the given API key.
func newAuthenticatedClient(apiKey string) *http.Client {
	return &http.Client{
		Timeout:   defaultTimeout,
		Transport: &apiKeyTransport{apiKey: apiKey},
	}
}

// ClientBundle is the pair of API clients for one service, plus the
// credentials they were built from. Bundles are created once per service,
// cached by the registry, and never mutated afterwards.
type ClientBundle struct {
	Content       *ContentClient
	Management    *ManagementClient
	ServiceDomain string
	APIKey        string
}

// NewClientBundle constructs the content and management clients for one
// configured service. Construction is pure: no network I/O happens here.
func NewClientBundle(cfg domain.ServiceConfig) *ClientBundle {
	httpClient := newAuthenticatedClient(cfg.APIKey)
	return &ClientBundle{
		Content:       NewContentClient(fmt.Sprintf("https://%s.%s/api/v1", cfg.ID, contentAPIHost), httpClient),
		Management:    NewManagementClient(fmt.Sprintf("https://%s.%s/api", cfg.ID, managementAPIHost), httpClient),
		ServiceDomain: cfg.ID,
		APIKey:        cfg.APIKey,
	}
}
