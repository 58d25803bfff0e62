package application

import (
	"context"
	"encoding/base64"
	"fmt"

	"microcms-mcp-server/internal/domain"
	"microcms-mcp-server/internal/infrastructure"
)

// MediaHandler implements the media library tools.
type MediaHandler struct {
	registry *ServiceRegistry
}

// NewMediaHandler creates a MediaHandler backed by the given registry.
func NewMediaHandler(registry *ServiceRegistry) *MediaHandler {
	return &MediaHandler{registry: registry}
}

type getMediaParams struct {
	Limit     *int   `json:"limit"`
	ImageOnly bool   `json:"imageOnly"`
	FileName  string `json:"fileName"`
	Token     string `json:"token"`
}

// GetMedia handles microcms_get_media.
func (h *MediaHandler) GetMedia(ctx context.Context, args map[string]interface{}, serviceID string) (interface{}, error) {
	p, err := decodeParams[getMediaParams](args)
	if err != nil {
		return nil, err
	}

	bundle, err := h.registry.Resolve(serviceID)
	if err != nil {
		return nil, err
	}

	return bundle.Management.GetMedia(ctx, infrastructure.MediaQuery{
		Limit:     p.Limit,
		ImageOnly: p.ImageOnly,
		FileName:  p.FileName,
		Token:     p.Token,
	})
}

type uploadMediaParams struct {
	FileData    string `json:"fileData"`
	FileName    string `json:"fileName"`
	MimeType    string `json:"mimeType"`
	ExternalURL string `json:"externalUrl"`
}

// UploadMedia handles microcms_upload_media. Two upload paths exist: by
// external URL, or by inline base64 data plus file name and MIME type.
// When both are supplied the external URL takes precedence. The decoded
// inline payload is capped; oversized data fails before any upload.
func (h *MediaHandler) UploadMedia(ctx context.Context, args map[string]interface{}, serviceID string) (interface{}, error) {
	p, err := decodeParams[uploadMediaParams](args)
	if err != nil {
		return nil, err
	}

	if p.ExternalURL == "" && p.FileData == "" {
		return nil, domain.NewValidationError("either externalUrl or (fileData + fileName + mimeType) must be provided")
	}

	bundle, err := h.registry.Resolve(serviceID)
	if err != nil {
		return nil, err
	}

	if p.ExternalURL != "" {
		return bundle.Management.UploadMediaByURL(ctx, p.ExternalURL)
	}

	if p.FileName == "" {
		return nil, domain.NewValidationError("fileName is required when uploading file data")
	}
	if p.MimeType == "" {
		return nil, domain.NewValidationError("mimeType is required when uploading file data")
	}

	data, err := base64.StdEncoding.DecodeString(p.FileData)
	if err != nil {
		return nil, domain.NewValidationError("fileData is not valid base64: %v", err)
	}
	if len(data) > domain.MaxInlineUploadSize {
		return nil, &domain.PayloadTooLargeError{Size: len(data), Limit: domain.MaxInlineUploadSize}
	}

	return bundle.Management.UploadMedia(ctx, p.FileName, p.MimeType, data)
}

type deleteMediaParams struct {
	URL string `json:"url"`
}

// DeleteMedia handles microcms_delete_media.
func (h *MediaHandler) DeleteMedia(ctx context.Context, args map[string]interface{}, serviceID string) (interface{}, error) {
	p, err := decodeParams[deleteMediaParams](args)
	if err != nil {
		return nil, err
	}
	if p.URL == "" {
		return nil, domain.NewValidationError("url is required")
	}

	bundle, err := h.registry.Resolve(serviceID)
	if err != nil {
		return nil, err
	}

	if err := bundle.Management.DeleteMedia(ctx, p.URL); err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"message": fmt.Sprintf("Media %s deleted successfully", p.URL),
	}, nil
}
