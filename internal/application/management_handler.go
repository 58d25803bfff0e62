package application

import (
	"context"
	"fmt"

	"microcms-mcp-server/internal/domain"
)

// ManagementHandler implements the management API tools: schema
// introspection, content metadata reads, status and owner changes, and
// member lookup.
type ManagementHandler struct {
	registry *ServiceRegistry
}

// NewManagementHandler creates a ManagementHandler backed by the given registry.
func NewManagementHandler(registry *ServiceRegistry) *ManagementHandler {
	return &ManagementHandler{registry: registry}
}

type endpointParams struct {
	Endpoint string `json:"endpoint"`
}

// GetAPIInfo handles microcms_get_api_info.
func (h *ManagementHandler) GetAPIInfo(ctx context.Context, args map[string]interface{}, serviceID string) (interface{}, error) {
	p, err := decodeParams[endpointParams](args)
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
	return bundle.Management.GetAPIInfo(ctx, p.Endpoint)
}

// GetAPIList handles microcms_get_api_list.
func (h *ManagementHandler) GetAPIList(ctx context.Context, args map[string]interface{}, serviceID string) (interface{}, error) {
	bundle, err := h.registry.Resolve(serviceID)
	if err != nil {
		return nil, err
	}
	return bundle.Management.GetAPIList(ctx)
}

type getListMetaParams struct {
	Endpoint string `json:"endpoint"`
	Limit    *int   `json:"limit"`
	Offset   *int   `json:"offset"`
}

// GetListMeta handles microcms_get_list_meta.
func (h *ManagementHandler) GetListMeta(ctx context.Context, args map[string]interface{}, serviceID string) (interface{}, error) {
	p, err := decodeParams[getListMetaParams](args)
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
	return bundle.Management.GetListMeta(ctx, p.Endpoint, p.Limit, p.Offset)
}

type getContentMetaParams struct {
	Endpoint  string `json:"endpoint"`
	ContentID string `json:"contentId"`
}

// GetContentMeta handles microcms_get_content_meta.
func (h *ManagementHandler) GetContentMeta(ctx context.Context, args map[string]interface{}, serviceID string) (interface{}, error) {
	p, err := decodeParams[getContentMetaParams](args)
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
	return bundle.Management.GetContentMeta(ctx, p.Endpoint, p.ContentID)
}

type patchStatusParams struct {
	Endpoint  string `json:"endpoint"`
	ContentID string `json:"contentId"`
	Status    string `json:"status"`
}

// PatchStatus handles microcms_patch_content_status. Only the PUBLISH and
// DRAFT statuses exist; anything else is rejected before the remote call.
func (h *ManagementHandler) PatchStatus(ctx context.Context, args map[string]interface{}, serviceID string) (interface{}, error) {
	p, err := decodeParams[patchStatusParams](args)
	if err != nil {
		return nil, err
	}
	if p.Endpoint == "" {
		return nil, domain.NewValidationError("endpoint is required")
	}
	if p.ContentID == "" {
		return nil, domain.NewValidationError("contentId is required")
	}
	if p.Status != "PUBLISH" && p.Status != "DRAFT" {
		return nil, domain.NewValidationError(`status must be either "PUBLISH" or "DRAFT"`)
	}

	bundle, err := h.registry.Resolve(serviceID)
	if err != nil {
		return nil, err
	}

	if err := bundle.Management.PatchStatus(ctx, p.Endpoint, p.ContentID, p.Status); err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"message": fmt.Sprintf("Content %s status changed to %s", p.ContentID, p.Status),
	}, nil
}

type patchCreatedByParams struct {
	Endpoint  string `json:"endpoint"`
	ContentID string `json:"contentId"`
	CreatedBy string `json:"createdBy"`
}

// PatchCreatedBy handles microcms_patch_content_created_by.
func (h *ManagementHandler) PatchCreatedBy(ctx context.Context, args map[string]interface{}, serviceID string) (interface{}, error) {
	p, err := decodeParams[patchCreatedByParams](args)
	if err != nil {
		return nil, err
	}
	if p.Endpoint == "" {
		return nil, domain.NewValidationError("endpoint is required")
	}
	if p.ContentID == "" {
		return nil, domain.NewValidationError("contentId is required")
	}
	if p.CreatedBy == "" {
		return nil, domain.NewValidationError("createdBy is required")
	}

	bundle, err := h.registry.Resolve(serviceID)
	if err != nil {
		return nil, err
	}

	result, err := bundle.Management.PatchCreatedBy(ctx, p.Endpoint, p.ContentID, p.CreatedBy)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"message": fmt.Sprintf("Content %s creator changed to %s", p.ContentID, p.CreatedBy),
		"id":      result.ID,
	}, nil
}

type getMemberParams struct {
	MemberID string `json:"memberId"`
}

// GetMember handles microcms_get_member.
func (h *ManagementHandler) GetMember(ctx context.Context, args map[string]interface{}, serviceID string) (interface{}, error) {
	p, err := decodeParams[getMemberParams](args)
	if err != nil {
		return nil, err
	}
	if p.MemberID == "" {
		return nil, domain.NewValidationError("memberId is required")
	}

	bundle, err := h.registry.Resolve(serviceID)
	if err != nil {
		return nil, err
	}
	return bundle.Management.GetMember(ctx, p.MemberID)
}
