package application

import (
	"context"
	"fmt"

	"microcms-mcp-server/internal/domain"
	"microcms-mcp-server/internal/infrastructure"
)

// ContentHandler implements the content API tools: list/detail reads, the
// create/update/patch/delete writes, and the bulk create variants.
type ContentHandler struct {
	registry *ServiceRegistry
}

// NewContentHandler creates a ContentHandler backed by the given registry.
func NewContentHandler(registry *ServiceRegistry) *ContentHandler {
	return &ContentHandler{registry: registry}
}

type getListParams struct {
	Endpoint string `json:"endpoint"`
	DraftKey string `json:"draftKey"`
	Limit    *int   `json:"limit"`
	Offset   *int   `json:"offset"`
	Orders   string `json:"orders"`
	Q        string `json:"q"`
	Fields   string `json:"fields"`
	IDs      string `json:"ids"`
	Filters  string `json:"filters"`
	Depth    *int   `json:"depth"`
}

// GetList handles microcms_get_list.
func (h *ContentHandler) GetList(ctx context.Context, args map[string]interface{}, serviceID string) (interface{}, error) {
	p, err := decodeParams[getListParams](args)
	if err != nil {
		return nil, err
	}
	if p.Endpoint == "" {
		return nil, domain.NewValidationError("endpoint is required")
	}

	bundle, err := h.registry.Resolve(serviceID)
	if err != nil {
		return nil, err
	}

	return bundle.Content.GetList(ctx, p.Endpoint, infrastructure.ListQuery{
		DraftKey: p.DraftKey,
		Limit:    p.Limit,
		Offset:   p.Offset,
		Orders:   p.Orders,
		Q:        p.Q,
		Fields:   p.Fields,
		IDs:      p.IDs,
		Filters:  p.Filters,
		Depth:    p.Depth,
	})
}

type getContentParams struct {
	Endpoint  string `json:"endpoint"`
	ContentID string `json:"contentId"`
	DraftKey  string `json:"draftKey"`
	Fields    string `json:"fields"`
	Depth     *int   `json:"depth"`
}

// GetContent handles microcms_get_content.
func (h *ContentHandler) GetContent(ctx context.Context, args map[string]interface{}, serviceID string) (interface{}, error) {
	p, err := decodeParams[getContentParams](args)
	if err != nil {
		return nil, err
	}
	if p.Endpoint == "" {
		return nil, domain.NewValidationError("endpoint is required")
	}
	if p.ContentID == "" {
		return nil, domain.NewValidationError("contentId is required")
	}

	bundle, err := h.registry.Resolve(serviceID)
	if err != nil {
		return nil, err
	}

	return bundle.Content.GetContent(ctx, p.Endpoint, p.ContentID, infrastructure.GetQuery{
		DraftKey: p.DraftKey,
		Fields:   p.Fields,
		Depth:    p.Depth,
	})
}

type createContentParams struct {
	Endpoint  string                 `json:"endpoint"`
	Content   map[string]interface{} `json:"content"`
	ContentID string                 `json:"contentId"`
}

// CreatePublished handles microcms_create_content_published.
// The content is always published regardless of caller input.
func (h *ContentHandler) CreatePublished(ctx context.Context, args map[string]interface{}, serviceID string) (interface{}, error) {
	return h.create(ctx, args, serviceID, false)
}

// CreateDraft handles microcms_create_content_draft.
// The content is always saved as a draft regardless of caller input.
func (h *ContentHandler) CreateDraft(ctx context.Context, args map[string]interface{}, serviceID string) (interface{}, error) {
	return h.create(ctx, args, serviceID, true)
}

func (h *ContentHandler) create(ctx context.Context, args map[string]interface{}, serviceID string, isDraft bool) (interface{}, error) {
	p, err := decodeParams[createContentParams](args)
	if err != nil {
		return nil, err
	}
	if p.Endpoint == "" {
		return nil, domain.NewValidationError("endpoint is required")
	}
	if p.Content == nil {
		return nil, domain.NewValidationError("content is required")
	}

	bundle, err := h.registry.Resolve(serviceID)
	if err != nil {
		return nil, err
	}

	return bundle.Content.Create(ctx, p.Endpoint, p.Content, infrastructure.CreateOptions{
		ContentID: p.ContentID,
		IsDraft:   isDraft,
	})
}

type updateContentParams struct {
	Endpoint  string                 `json:"endpoint"`
	ContentID string                 `json:"contentId"`
	Content   map[string]interface{} `json:"content"`
}

// UpdatePublished handles microcms_update_content_published (full replace).
func (h *ContentHandler) UpdatePublished(ctx context.Context, args map[string]interface{}, serviceID string) (interface{}, error) {
	return h.update(ctx, args, serviceID, false)
}

// UpdateDraft handles microcms_update_content_draft (full replace).
func (h *ContentHandler) UpdateDraft(ctx context.Context, args map[string]interface{}, serviceID string) (interface{}, error) {
	return h.update(ctx, args, serviceID, true)
}

func (h *ContentHandler) update(ctx context.Context, args map[string]interface{}, serviceID string, isDraft bool) (interface{}, error) {
	p, err := decodeParams[updateContentParams](args)
	if err != nil {
		return nil, err
	}
	if p.Endpoint == "" {
		return nil, domain.NewValidationError("endpoint is required")
	}
	if p.ContentID == "" {
		return nil, domain.NewValidationError("contentId is required")
	}
	if p.Content == nil {
		return nil, domain.NewValidationError("content is required")
	}

	bundle, err := h.registry.Resolve(serviceID)
	if err != nil {
		return nil, err
	}

	return bundle.Content.Update(ctx, p.Endpoint, p.ContentID, p.Content, infrastructure.UpdateOptions{
		IsDraft: isDraft,
	})
}

type patchContentParams struct {
	Endpoint  string                 `json:"endpoint"`
	ContentID string                 `json:"contentId"`
	Content   map[string]interface{} `json:"content"`
	IsDraft   *bool                  `json:"isDraft"`
}

// Patch handles microcms_patch_content (partial update). This is the only
// write where the caller controls isDraft.
func (h *ContentHandler) Patch(ctx context.Context, args map[string]interface{}, serviceID string) (interface{}, error) {
	p, err := decodeParams[patchContentParams](args)
	if err != nil {
		return nil, err
	}
	if p.Endpoint == "" {
		return nil, domain.NewValidationError("endpoint is required")
	}
	if p.ContentID == "" {
		return nil, domain.NewValidationError("contentId is required")
	}
	if p.Content == nil {
		return nil, domain.NewValidationError("content is required")
	}

	bundle, err := h.registry.Resolve(serviceID)
	if err != nil {
		return nil, err
	}

	isDraft := false
	if p.IsDraft != nil {
		isDraft = *p.IsDraft
	}

	return bundle.Content.Patch(ctx, p.Endpoint, p.ContentID, p.Content, infrastructure.UpdateOptions{
		IsDraft: isDraft,
	})
}

type deleteContentParams struct {
	Endpoint  string `json:"endpoint"`
	ContentID string `json:"contentId"`
}

// Delete handles microcms_delete_content.
func (h *ContentHandler) Delete(ctx context.Context, args map[string]interface{}, serviceID string) (interface{}, error) {
	p, err := decodeParams[deleteContentParams](args)
	if err != nil {
		return nil, err
	}
	if p.Endpoint == "" {
		return nil, domain.NewValidationError("endpoint is required")
	}
	if p.ContentID == "" {
		return nil, domain.NewValidationError("contentId is required")
	}

	bundle, err := h.registry.Resolve(serviceID)
	if err != nil {
		return nil, err
	}

	if err := bundle.Content.Delete(ctx, p.Endpoint, p.ContentID); err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"message": fmt.Sprintf("Content %s deleted successfully", p.ContentID),
	}, nil
}

type bulkItem struct {
	Content   map[string]interface{} `json:"content"`
	ContentID string                 `json:"contentId"`
}

type bulkCreateParams struct {
	Endpoint string     `json:"endpoint"`
	Contents []bulkItem `json:"contents"`
}

// BulkItemResult records the outcome of one item of a bulk create.
type BulkItemResult struct {
	Index   int    `json:"index"`
	Success bool   `json:"success"`
	ID      string `json:"id,omitempty"`
	Error   string `json:"error,omitempty"`
}

// BulkCreateResult aggregates a whole bulk create run.
type BulkCreateResult struct {
	TotalCount   int              `json:"totalCount"`
	SuccessCount int              `json:"successCount"`
	FailureCount int              `json:"failureCount"`
	Results      []BulkItemResult `json:"results"`
}

// BulkCreatePublished handles microcms_create_contents_bulk_published.
func (h *ContentHandler) BulkCreatePublished(ctx context.Context, args map[string]interface{}, serviceID string) (interface{}, error) {
	return h.bulkCreate(ctx, args, serviceID, false)
}

// BulkCreateDraft handles microcms_create_contents_bulk_draft.
func (h *ContentHandler) BulkCreateDraft(ctx context.Context, args map[string]interface{}, serviceID string) (interface{}, error) {
	return h.bulkCreate(ctx, args, serviceID, true)
}

// bulkCreate processes every item sequentially and never aborts early: a
// failed item is recorded and processing continues with the next one.
func (h *ContentHandler) bulkCreate(ctx context.Context, args map[string]interface{}, serviceID string, isDraft bool) (interface{}, error) {
	p, err := decodeParams[bulkCreateParams](args)
	if err != nil {
		return nil, err
	}
	if p.Endpoint == "" {
		return nil, domain.NewValidationError("endpoint is required")
	}
	if len(p.Contents) == 0 {
		return nil, domain.NewValidationError("contents array is required and must not be empty")
	}

	bundle, err := h.registry.Resolve(serviceID)
	if err != nil {
		return nil, err
	}

	result := &BulkCreateResult{
		TotalCount: len(p.Contents),
		Results:    make([]BulkItemResult, 0, len(p.Contents)),
	}

	for i, item := range p.Contents {
		if item.Content == nil {
			result.Results = append(result.Results, BulkItemResult{
				Index: i,
				Error: "content is required",
			})
			result.FailureCount++
			continue
		}

		created, err := bundle.Content.Create(ctx, p.Endpoint, item.Content, infrastructure.CreateOptions{
			ContentID: item.ContentID,
			IsDraft:   isDraft,
		})
		if err != nil {
			result.Results = append(result.Results, BulkItemResult{
				Index: i,
				Error: err.Error(),
			})
			result.FailureCount++
			continue
		}

		result.Results = append(result.Results, BulkItemResult{
			Index:   i,
			Success: true,
			ID:      created.ID,
		})
		result.SuccessCount++
	}

	return result, nil
}
