package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"microcms-mcp-server/internal/domain"
)

// ContentClient talks to the microCMS content API
// (https://<serviceDomain>.microcms.io/api/v1). It covers list/detail reads
// and create/update/patch/delete writes for any content endpoint.
type ContentClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewContentClient creates a content API client. The baseURL should include
// the /api/v1 prefix. The httpClient is expected to carry authentication.
func NewContentClient(baseURL string, httpClient *http.Client) *ContentClient {
	return &ContentClient{
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

// BaseURL returns the configured base URL.
func (c *ContentClient) BaseURL() string {
	return c.baseURL
}

// ListQuery holds the optional query parameters of a list read.
// Nil pointer fields are omitted from the request.
type ListQuery struct {
	DraftKey string
	Limit    *int
	Offset   *int
	Orders   string
	Q        string
	Fields   string
	IDs      string
	Filters  string
	Depth    *int
}

func (q ListQuery) values() url.Values {
	params := url.Values{}
	if q.DraftKey != "" {
		params.Set("draftKey", q.DraftKey)
	}
	if q.Limit != nil {
		params.Set("limit", strconv.Itoa(*q.Limit))
	}
	if q.Offset != nil {
		params.Set("offset", strconv.Itoa(*q.Offset))
	}
	if q.Orders != "" {
		params.Set("orders", q.Orders)
	}
	if q.Q != "" {
		params.Set("q", q.Q)
	}
	if q.Fields != "" {
		params.Set("fields", q.Fields)
	}
	if q.IDs != "" {
		params.Set("ids", q.IDs)
	}
	if q.Filters != "" {
		params.Set("filters", q.Filters)
	}
	if q.Depth != nil {
		params.Set("depth", strconv.Itoa(*q.Depth))
	}
	return params
}

// GetQuery holds the optional query parameters of a single-content read.
type GetQuery struct {
	DraftKey string
	Fields   string
	Depth    *int
}

func (q GetQuery) values() url.Values {
	params := url.Values{}
	if q.DraftKey != "" {
		params.Set("draftKey", q.DraftKey)
	}
	if q.Fields != "" {
		params.Set("fields", q.Fields)
	}
	if q.Depth != nil {
		params.Set("depth", strconv.Itoa(*q.Depth))
	}
	return params
}

// CreateOptions controls a content create.
type CreateOptions struct {
	// ContentID assigns a specific id instead of a generated one.
	ContentID string
	// IsDraft saves the content as a draft instead of publishing.
	IsDraft bool
}

// UpdateOptions controls a content update or patch.
type UpdateOptions struct {
	IsDraft bool
}

// WriteResult is the response of every content write.
type WriteResult struct {
	ID string `json:"id"`
}

// GetList retrieves a page of contents from a list endpoint.
func (c *ContentClient) GetList(ctx context.Context, endpoint string, query ListQuery) (map[string]interface{}, error) {
	u := c.baseURL + "/" + url.PathEscape(endpoint)
	if params := query.values(); len(params) > 0 {
		u += "?" + params.Encode()
	}

	body, err := c.do(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	return decodeObject(body)
}

// GetContent retrieves a single content by id.
func (c *ContentClient) GetContent(ctx context.Context, endpoint, contentID string, query GetQuery) (map[string]interface{}, error) {
	u := c.baseURL + "/" + url.PathEscape(endpoint) + "/" + url.PathEscape(contentID)
	if params := query.values(); len(params) > 0 {
		u += "?" + params.Encode()
	}

	body, err := c.do(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	return decodeObject(body)
}

// Create creates a new content. With a caller-assigned ContentID the content
// is written via PUT to that id; otherwise microCMS generates one.
func (c *ContentClient) Create(ctx context.Context, endpoint string, content map[string]interface{}, opts CreateOptions) (*WriteResult, error) {
	method := http.MethodPost
	u := c.baseURL + "/" + url.PathEscape(endpoint)
	if opts.ContentID != "" {
		method = http.MethodPut
		u += "/" + url.PathEscape(opts.ContentID)
	}
	if opts.IsDraft {
		u += "?status=draft"
	}

	payload, err := json.Marshal(content)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal content: %w", err)
	}

	body, err := c.do(ctx, method, u, payload)
	if err != nil {
		return nil, err
	}
	return decodeWriteResult(body)
}

// Update replaces a content entirely (PUT).
func (c *ContentClient) Update(ctx context.Context, endpoint, contentID string, content map[string]interface{}, opts UpdateOptions) (*WriteResult, error) {
	u := c.baseURL + "/" + url.PathEscape(endpoint) + "/" + url.PathEscape(contentID)
	if opts.IsDraft {
		u += "?status=draft"
	}

	payload, err := json.Marshal(content)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal content: %w", err)
	}

	body, err := c.do(ctx, http.MethodPut, u, payload)
	if err != nil {
		return nil, err
	}
	return decodeWriteResult(body)
}

// Patch updates only the supplied fields of a content (PATCH).
func (c *ContentClient) Patch(ctx context.Context, endpoint, contentID string, content map[string]interface{}, opts UpdateOptions) (*WriteResult, error) {
	u := c.baseURL + "/" + url.PathEscape(endpoint) + "/" + url.PathEscape(contentID)
	if opts.IsDraft {
		u += "?status=draft"
	}

	payload, err := json.Marshal(content)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal content: %w", err)
	}

	body, err := c.do(ctx, http.MethodPatch, u, payload)
	if err != nil {
		return nil, err
	}
	return decodeWriteResult(body)
}

// Delete removes a content by id.
func (c *ContentClient) Delete(ctx context.Context, endpoint, contentID string) error {
	u := c.baseURL + "/" + url.PathEscape(endpoint) + "/" + url.PathEscape(contentID)
	_, err := c.do(ctx, http.MethodDelete, u, nil)
	return err
}

// do executes one bounded HTTP request and returns the response body.
// Non-2xx responses become a RemoteAPIError carrying the body text.
func (c *ContentClient) do(ctx context.Context, method, u string, payload []byte) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &domain.RemoteAPIError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(body),
		}
	}
	return body, nil
}

func decodeObject(body []byte) (map[string]interface{}, error) {
	if len(body) == 0 {
		return map[string]interface{}{}, nil
	}
	var result map[string]interface{}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return result, nil
}

func decodeWriteResult(body []byte) (*WriteResult, error) {
	var result WriteResult
	if len(body) > 0 {
		if err := json.Unmarshal(body, &result); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return &result, nil
}
