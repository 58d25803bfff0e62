package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"microcms-mcp-server/internal/domain"
)

// ManagementClient talks to the microCMS management API
// (https://<serviceDomain>.microcms-management.io/api). It covers schema
// introspection, content metadata, status and owner changes, member lookup,
// and the media library. Content paths live under /v1, media under /v2
// except upload which is a /v1 operation.
type ManagementClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewManagementClient creates a management API client. The baseURL should
// include the /api prefix without a version segment.
func NewManagementClient(baseURL string, httpClient *http.Client) *ManagementClient {
	return &ManagementClient{
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

// BaseURL returns the configured base URL.
func (c *ManagementClient) BaseURL() string {
	return c.baseURL
}

// APIInfo describes one API (endpoint) of a service. microCMS has shipped
// both naming schemes over time, so both are tolerated on decode.
type APIInfo struct {
	APIName     string   `json:"apiName,omitempty"`
	Name        string   `json:"name,omitempty"`
	APIEndpoint string   `json:"apiEndpoint,omitempty"`
	Endpoint    string   `json:"endpoint,omitempty"`
	APIType     []string `json:"apiType,omitempty"`
	Type        string   `json:"type,omitempty"`
}

// APIListResponse is the response of the API list lookup.
type APIListResponse struct {
	Apis []APIInfo `json:"apis"`
}

// MediaQuery holds the optional query parameters of a media list read.
type MediaQuery struct {
	Limit     *int
	ImageOnly bool
	FileName  string
	Token     string
}

// GetAPIInfo retrieves the schema of one API endpoint.
func (c *ManagementClient) GetAPIInfo(ctx context.Context, endpoint string) (map[string]interface{}, error) {
	body, err := c.do(ctx, http.MethodGet, c.baseURL+"/v1/apis/"+url.PathEscape(endpoint), "", nil)
	if err != nil {
		return nil, err
	}
	return decodeObject(body)
}

// GetAPIList retrieves all APIs (endpoints) of the service.
func (c *ManagementClient) GetAPIList(ctx context.Context) (*APIListResponse, error) {
	body, err := c.do(ctx, http.MethodGet, c.baseURL+"/v1/apis", "", nil)
	if err != nil {
		return nil, err
	}

	var result APIListResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &result, nil
}

// GetListMeta retrieves a page of contents with management metadata
// (status, createdBy, reservationTime and the like).
func (c *ManagementClient) GetListMeta(ctx context.Context, endpoint string, limit, offset *int) (map[string]interface{}, error) {
	u := c.baseURL + "/v1/contents/" + url.PathEscape(endpoint)
	params := url.Values{}
	if limit != nil {
		params.Set("limit", strconv.Itoa(*limit))
	}
	if offset != nil {
		params.Set("offset", strconv.Itoa(*offset))
	}
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	body, err := c.do(ctx, http.MethodGet, u, "", nil)
	if err != nil {
		return nil, err
	}
	return decodeObject(body)
}

// GetContentMeta retrieves one content with management metadata.
func (c *ManagementClient) GetContentMeta(ctx context.Context, endpoint, contentID string) (map[string]interface{}, error) {
	u := c.baseURL + "/v1/contents/" + url.PathEscape(endpoint) + "/" + url.PathEscape(contentID)
	body, err := c.do(ctx, http.MethodGet, u, "", nil)
	if err != nil {
		return nil, err
	}
	return decodeObject(body)
}

// PatchStatus changes the publication status of a content.
// The status value is PUBLISH or DRAFT; validation happens at the handler.
func (c *ManagementClient) PatchStatus(ctx context.Context, endpoint, contentID, status string) error {
	u := c.baseURL + "/v1/contents/" + url.PathEscape(endpoint) + "/" + url.PathEscape(contentID) + "/status"
	payload, err := json.Marshal(map[string][]string{"status": {status}})
	if err != nil {
		return fmt.Errorf("failed to marshal status: %w", err)
	}

	_, err = c.do(ctx, http.MethodPatch, u, "application/json", bytes.NewReader(payload))
	return err
}

// PatchCreatedBy reassigns the creator of a content to another member.
func (c *ManagementClient) PatchCreatedBy(ctx context.Context, endpoint, contentID, createdBy string) (*WriteResult, error) {
	u := c.baseURL + "/v1/contents/" + url.PathEscape(endpoint) + "/" + url.PathEscape(contentID) + "/createdBy"
	payload, err := json.Marshal(map[string]string{"createdBy": createdBy})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal createdBy: %w", err)
	}

	body, err := c.do(ctx, http.MethodPatch, u, "application/json", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	return decodeWriteResult(body)
}

// GetMember retrieves one member of the service.
func (c *ManagementClient) GetMember(ctx context.Context, memberID string) (map[string]interface{}, error) {
	body, err := c.do(ctx, http.MethodGet, c.baseURL+"/v1/members/"+url.PathEscape(memberID), "", nil)
	if err != nil {
		return nil, err
	}
	return decodeObject(body)
}

// GetMedia retrieves a page of the media library. Pagination uses a
// short-lived continuation token returned by the previous page.
func (c *ManagementClient) GetMedia(ctx context.Context, query MediaQuery) (map[string]interface{}, error) {
	u := c.baseURL + "/v2/media"
	params := url.Values{}
	if query.Limit != nil {
		params.Set("limit", strconv.Itoa(*query.Limit))
	}
	if query.ImageOnly {
		params.Set("imageOnly", "true")
	}
	if query.FileName != "" {
		params.Set("fileName", query.FileName)
	}
	if query.Token != "" {
		params.Set("token", query.Token)
	}
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	body, err := c.do(ctx, http.MethodGet, u, "", nil)
	if err != nil {
		return nil, err
	}
	return decodeObject(body)
}

// UploadMediaByURL asks microCMS to fetch and store a file from an
// external URL.
func (c *ManagementClient) UploadMediaByURL(ctx context.Context, externalURL string) (map[string]interface{}, error) {
	payload, err := json.Marshal(map[string]string{"url": externalURL})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal upload request: %w", err)
	}

	body, err := c.do(ctx, http.MethodPost, c.baseURL+"/v1/media", "application/json", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	return decodeObject(body)
}

// UploadMedia uploads raw file data as a multipart form. The caller is
// responsible for enforcing the inline size cap before invoking this.
func (c *ManagementClient) UploadMedia(ctx context.Context, fileName, mimeType string, data []byte) (map[string]interface{}, error) {
	var form bytes.Buffer
	writer := multipart.NewWriter(&form)

	header := make(map[string][]string)
	header["Content-Disposition"] = []string{fmt.Sprintf(`form-data; name="file"; filename=%q`, fileName)}
	header["Content-Type"] = []string{mimeType}
	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("failed to build multipart form: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("failed to write file data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize multipart form: %w", err)
	}

	body, err := c.do(ctx, http.MethodPost, c.baseURL+"/v1/media", writer.FormDataContentType(), &form)
	if err != nil {
		return nil, err
	}
	return decodeObject(body)
}

// DeleteMedia removes a media file identified by its asset URL.
func (c *ManagementClient) DeleteMedia(ctx context.Context, mediaURL string) error {
	params := url.Values{}
	params.Set("url", mediaURL)
	_, err := c.do(ctx, http.MethodDelete, c.baseURL+"/v2/media?"+params.Encode(), "", nil)
	return err
}

// do executes one bounded HTTP request and returns the response body.
// Non-2xx responses become a RemoteAPIError carrying the body text.
func (c *ManagementClient) do(ctx context.Context, method, u, contentType string, reqBody io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
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
