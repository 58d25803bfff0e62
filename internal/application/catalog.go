package application

import (
	"microcms-mcp-server/internal/domain"
)

// Tool names. These are the public dispatch keys; renaming one is a
// breaking change for every connected client.
const (
	toolGetServices          = "microcms_get_services"
	toolGetList              = "microcms_get_list"
	toolGetListMeta          = "microcms_get_list_meta"
	toolGetContent           = "microcms_get_content"
	toolGetContentMeta       = "microcms_get_content_meta"
	toolCreatePublished      = "microcms_create_content_published"
	toolCreateDraft          = "microcms_create_content_draft"
	toolUpdatePublished      = "microcms_update_content_published"
	toolUpdateDraft          = "microcms_update_content_draft"
	toolPatchContent         = "microcms_patch_content"
	toolPatchContentStatus   = "microcms_patch_content_status"
	toolPatchCreatedBy       = "microcms_patch_content_created_by"
	toolDeleteContent        = "microcms_delete_content"
	toolGetMedia             = "microcms_get_media"
	toolUploadMedia          = "microcms_upload_media"
	toolDeleteMedia          = "microcms_delete_media"
	toolGetAPIInfo           = "microcms_get_api_info"
	toolGetAPIList           = "microcms_get_api_list"
	toolGetMember            = "microcms_get_member"
	toolBulkCreatePublished  = "microcms_create_contents_bulk_published"
	toolBulkCreateDraft      = "microcms_create_contents_bulk_draft"
)

// toolEntry pairs a tool's published definition with its handler.
type toolEntry struct {
	def domain.ToolDefinition
	fn  toolFunc
}

func stringProp(description string) map[string]interface{} {
	return map[string]interface{}{"type": "string", "description": description}
}

func integerProp(description string, min, max int) map[string]interface{} {
	return map[string]interface{}{
		"type":        "integer",
		"description": description,
		"minimum":     min,
		"maximum":     max,
	}
}

func booleanProp(description string) map[string]interface{} {
	return map[string]interface{}{"type": "boolean", "description": description}
}

func objectProp(description string) map[string]interface{} {
	return map[string]interface{}{"type": "object", "description": description}
}

const serviceIDDescription = "Service ID to operate on. Optional in single service mode; required in multi service mode."

// schema builds an object schema and adds the shared serviceId property.
func schema(required []string, props map[string]interface{}) domain.JSONSchema {
	props["serviceId"] = stringProp(serviceIDDescription)
	return domain.JSONSchema{
		Type:       "object",
		Properties: props,
		Required:   required,
	}
}

// buildCatalog wires every tool to its handler. The order here is the order
// clients see in tools/list.
func buildCatalog(registry *ServiceRegistry) []toolEntry {
	services := NewServicesHandler(registry)
	content := NewContentHandler(registry)
	management := NewManagementHandler(registry)
	media := NewMediaHandler(registry)

	return []toolEntry{
		{
			def: domain.ToolDefinition{
				Name:        toolGetServices,
				Description: "Get all configured microCMS services and their API endpoints. Call this first to discover which service and endpoint to use.",
				InputSchema: domain.JSONSchema{
					Type:       "object",
					Properties: map[string]interface{}{},
				},
			},
			fn: services.GetServices,
		},
		{
			def: domain.ToolDefinition{
				Name:        toolGetList,
				Description: "Get a list of contents from a microCMS list-type API.",
				InputSchema: schema([]string{"endpoint"}, map[string]interface{}{
					"endpoint": stringProp("API endpoint name (e.g. 'blogs')"),
					"draftKey": stringProp("Draft key for retrieving draft content"),
					"limit":    integerProp("Number of contents to retrieve (1-100, default 10)", 1, 100),
					"offset":   map[string]interface{}{"type": "integer", "description": "Offset for pagination", "minimum": 0},
					"orders":   stringProp("Sort order, e.g. 'publishedAt' or '-publishedAt' for descending"),
					"q":        stringProp("Full-text search query"),
					"fields":   stringProp("Comma-separated list of fields to return"),
					"ids":      stringProp("Comma-separated list of content IDs to retrieve"),
					"filters":  stringProp("Filter query, e.g. 'category[equals]news'"),
					"depth":    integerProp("Reference resolution depth (1-3)", 1, 3),
				}),
			},
			fn: content.GetList,
		},
		{
			def: domain.ToolDefinition{
				Name:        toolGetListMeta,
				Description: "Get content metadata (status, timestamps, creator) for a list-type API via the management API.",
				InputSchema: schema([]string{"endpoint"}, map[string]interface{}{
					"endpoint": stringProp("API endpoint name"),
					"limit":    integerProp("Number of contents to retrieve (1-100)", 1, 100),
					"offset":   map[string]interface{}{"type": "integer", "description": "Offset for pagination", "minimum": 0},
				}),
			},
			fn: management.GetListMeta,
		},
		{
			def: domain.ToolDefinition{
				Name:        toolGetContent,
				Description: "Get a single content item from a microCMS API.",
				InputSchema: schema([]string{"endpoint", "contentId"}, map[string]interface{}{
					"endpoint":  stringProp("API endpoint name"),
					"contentId": stringProp("Content ID to retrieve"),
					"draftKey":  stringProp("Draft key for retrieving draft content"),
					"fields":    stringProp("Comma-separated list of fields to return"),
					"depth":     integerProp("Reference resolution depth (1-3)", 1, 3),
				}),
			},
			fn: content.GetContent,
		},
		{
			def: domain.ToolDefinition{
				Name:        toolGetContentMeta,
				Description: "Get metadata (status, timestamps, creator) for a single content item via the management API.",
				InputSchema: schema([]string{"endpoint", "contentId"}, map[string]interface{}{
					"endpoint":  stringProp("API endpoint name"),
					"contentId": stringProp("Content ID to inspect"),
				}),
			},
			fn: management.GetContentMeta,
		},
		{
			def: domain.ToolDefinition{
				Name:        toolCreatePublished,
				Description: "Create new content and publish it immediately.",
				InputSchema: schema([]string{"endpoint", "content"}, map[string]interface{}{
					"endpoint":  stringProp("API endpoint name"),
					"content":   objectProp("Content fields as a JSON object"),
					"contentId": stringProp("Optional explicit content ID; generated when omitted"),
				}),
			},
			fn: content.CreatePublished,
		},
		{
			def: domain.ToolDefinition{
				Name:        toolCreateDraft,
				Description: "Create new content as an unpublished draft.",
				InputSchema: schema([]string{"endpoint", "content"}, map[string]interface{}{
					"endpoint":  stringProp("API endpoint name"),
					"content":   objectProp("Content fields as a JSON object"),
					"contentId": stringProp("Optional explicit content ID; generated when omitted"),
				}),
			},
			fn: content.CreateDraft,
		},
		{
			def: domain.ToolDefinition{
				Name:        toolUpdatePublished,
				Description: "Replace an existing content item entirely and publish it. Omitted fields are cleared; use microcms_patch_content for partial updates.",
				InputSchema: schema([]string{"endpoint", "contentId", "content"}, map[string]interface{}{
					"endpoint":  stringProp("API endpoint name"),
					"contentId": stringProp("Content ID to replace"),
					"content":   objectProp("Full replacement content as a JSON object"),
				}),
			},
			fn: content.UpdatePublished,
		},
		{
			def: domain.ToolDefinition{
				Name:        toolUpdateDraft,
				Description: "Replace an existing content item entirely and save it as a draft. Omitted fields are cleared; use microcms_patch_content for partial updates.",
				InputSchema: schema([]string{"endpoint", "contentId", "content"}, map[string]interface{}{
					"endpoint":  stringProp("API endpoint name"),
					"contentId": stringProp("Content ID to replace"),
					"content":   objectProp("Full replacement content as a JSON object"),
				}),
			},
			fn: content.UpdateDraft,
		},
		{
			def: domain.ToolDefinition{
				Name:        toolPatchContent,
				Description: "Partially update an existing content item. Only the supplied fields change.",
				InputSchema: schema([]string{"endpoint", "contentId", "content"}, map[string]interface{}{
					"endpoint":  stringProp("API endpoint name"),
					"contentId": stringProp("Content ID to update"),
					"content":   objectProp("Fields to change as a JSON object"),
					"isDraft":   booleanProp("Save the result as a draft instead of publishing"),
				}),
			},
			fn: content.Patch,
		},
		{
			def: domain.ToolDefinition{
				Name:        toolPatchContentStatus,
				Description: "Change the publish status of a content item to PUBLISH or DRAFT.",
				InputSchema: schema([]string{"endpoint", "contentId", "status"}, map[string]interface{}{
					"endpoint":  stringProp("API endpoint name"),
					"contentId": stringProp("Content ID to change"),
					"status": map[string]interface{}{
						"type":        "string",
						"description": "New status",
						"enum":        []string{"PUBLISH", "DRAFT"},
					},
				}),
			},
			fn: management.PatchStatus,
		},
		{
			def: domain.ToolDefinition{
				Name:        toolPatchCreatedBy,
				Description: "Change the creator of a content item via the management API.",
				InputSchema: schema([]string{"endpoint", "contentId", "createdBy"}, map[string]interface{}{
					"endpoint":  stringProp("API endpoint name"),
					"contentId": stringProp("Content ID to change"),
					"createdBy": stringProp("Member ID of the new creator"),
				}),
			},
			fn: management.PatchCreatedBy,
		},
		{
			def: domain.ToolDefinition{
				Name:        toolDeleteContent,
				Description: "Delete a content item permanently.",
				InputSchema: schema([]string{"endpoint", "contentId"}, map[string]interface{}{
					"endpoint":  stringProp("API endpoint name"),
					"contentId": stringProp("Content ID to delete"),
				}),
			},
			fn: content.Delete,
		},
		{
			def: domain.ToolDefinition{
				Name:        toolGetMedia,
				Description: "List uploaded media files via the management API.",
				InputSchema: schema(nil, map[string]interface{}{
					"limit":     integerProp("Number of media items to retrieve (1-100)", 1, 100),
					"imageOnly": booleanProp("Return only image files"),
					"fileName":  stringProp("Filter by file name"),
					"token":     stringProp("Pagination token from a previous response"),
				}),
			},
			fn: media.GetMedia,
		},
		{
			def: domain.ToolDefinition{
				Name:        toolUploadMedia,
				Description: "Upload a media file, either from an external URL or as inline base64 data. When both are given the external URL wins. Inline data is limited to 5 MiB.",
				InputSchema: schema(nil, map[string]interface{}{
					"externalUrl": stringProp("Publicly reachable URL of the file to import"),
					"fileData":    stringProp("Base64-encoded file contents"),
					"fileName":    stringProp("File name, required with fileData"),
					"mimeType":    stringProp("MIME type, required with fileData"),
				}),
			},
			fn: media.UploadMedia,
		},
		{
			def: domain.ToolDefinition{
				Name:        toolDeleteMedia,
				Description: "Delete an uploaded media file by its URL.",
				InputSchema: schema([]string{"url"}, map[string]interface{}{
					"url": stringProp("URL of the media file to delete"),
				}),
			},
			fn: media.DeleteMedia,
		},
		{
			def: domain.ToolDefinition{
				Name:        toolGetAPIInfo,
				Description: "Get the schema definition of an API endpoint, including its field types.",
				InputSchema: schema([]string{"endpoint"}, map[string]interface{}{
					"endpoint": stringProp("API endpoint name"),
				}),
			},
			fn: management.GetAPIInfo,
		},
		{
			def: domain.ToolDefinition{
				Name:        toolGetAPIList,
				Description: "List all API endpoints defined in the service.",
				InputSchema: schema(nil, map[string]interface{}{}),
			},
			fn: management.GetAPIList,
		},
		{
			def: domain.ToolDefinition{
				Name:        toolGetMember,
				Description: "Get a service member by ID via the management API.",
				InputSchema: schema([]string{"memberId"}, map[string]interface{}{
					"memberId": stringProp("Member ID to retrieve"),
				}),
			},
			fn: management.GetMember,
		},
		{
			def: domain.ToolDefinition{
				Name:        toolBulkCreatePublished,
				Description: "Create multiple contents and publish them. Items are processed in order; a failed item is recorded and processing continues.",
				InputSchema: schema([]string{"endpoint", "contents"}, map[string]interface{}{
					"endpoint": stringProp("API endpoint name"),
					"contents": map[string]interface{}{
						"type":        "array",
						"description": "Contents to create, each with a content object and optional contentId",
						"items": map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"content":   objectProp("Content fields as a JSON object"),
								"contentId": stringProp("Optional explicit content ID"),
							},
							"required": []string{"content"},
						},
					},
				}),
			},
			fn: content.BulkCreatePublished,
		},
		{
			def: domain.ToolDefinition{
				Name:        toolBulkCreateDraft,
				Description: "Create multiple contents as drafts. Items are processed in order; a failed item is recorded and processing continues.",
				InputSchema: schema([]string{"endpoint", "contents"}, map[string]interface{}{
					"endpoint": stringProp("API endpoint name"),
					"contents": map[string]interface{}{
						"type":        "array",
						"description": "Contents to create, each with a content object and optional contentId",
						"items": map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"content":   objectProp("Content fields as a JSON object"),
								"contentId": stringProp("Optional explicit content ID"),
							},
							"required": []string{"content"},
						},
					},
				}),
			},
			fn: content.BulkCreateDraft,
		},
	}
}
