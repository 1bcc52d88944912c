package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

// Tool names.
const (
	ToolInfo    = "document_info"
	ToolDetect  = "document_detect"
	ToolEdges   = "document_edges"
	ToolRectify = "document_rectify"
	ToolUpload  = "document_upload"
	ToolHistory = "document_history"
)

func pathProperty() map[string]any {
	return map[string]any{
		"type":        "string",
		"description": "Absolute path to the image or PDF file",
	}
}

// optionsProperty describes the per-call pipeline overrides. Omitted
// fields keep the server's configured values.
func optionsProperty() map[string]any {
	number := func(desc string) map[string]any {
		return map[string]any{"type": "number", "description": desc}
	}
	integer := func(desc string) map[string]any {
		return map[string]any{"type": "integer", "description": desc}
	}
	return map[string]any{
		"type":        "object",
		"description": "Optional pipeline overrides for this call",
		"properties": map[string]any{
			"min_area":                      number("Area in square pixels a document outline must exceed. Default 50000"),
			"approx_epsilon_ratio":          number("Polygon simplification tolerance as a fraction of the contour perimeter. Default 0.02"),
			"adaptive_threshold_block_size": integer("Odd neighbourhood size of the adaptive threshold. Default 11"),
			"adaptive_threshold_c":          number("Constant subtracted from the local mean. Default 2"),
			"morph_kernel_size":             integer("Side of the closing element. Default 5"),
			"canny_low":                     number("Low hysteresis threshold. Default 50"),
			"canny_high":                    number("High hysteresis threshold. Default 150"),
		},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name:        ToolInfo,
			Description: "Load an image or PDF and return its dimensions, format, orientation and EXIF capture metadata.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        ToolDetect,
			Description: "Find the document outline in an image. Returns the four corners (top-left, top-right, bottom-right, bottom-left) of the largest quadrilateral, or detected=false when there is none.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"path":    pathProperty(),
					"options": optionsProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        ToolEdges,
			Description: "Return the edge map the document detector works on, as a base64-encoded PNG. Useful to diagnose why a document was not found.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"path":    pathProperty(),
					"options": optionsProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        ToolRectify,
			Description: "Crop and perspective-correct the document in an image and return it as a base64-encoded portrait PNG named <name>.cropped.png. When no document is found the original image is returned unchanged with detected=false.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"path": pathProperty(),
					"debug": map[string]any{
						"type":        "boolean",
						"description": "Also return the contour and selection overlays. Default false",
						"default":     false,
					},
					"output_dir": map[string]any{
						"type":        "string",
						"description": "Optional directory to write the cropped PNG to",
					},
					"options": optionsProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        ToolUpload,
			Description: "Rectify a document and store the original and cropped images, recording the upload in the scan history.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"path": pathProperty(),
					"user_id": map[string]any{
						"type":        "string",
						"description": "User the upload belongs to. Defaults to the configured user",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        ToolHistory,
			Description: "List recorded uploads, newest first, or fetch one by id.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"user_id": map[string]any{
						"type":        "string",
						"description": "Only list this user's uploads",
					},
					"limit": map[string]any{
						"type":        "integer",
						"description": "Maximum number of uploads. Default 50",
						"default":     50,
					},
					"id": map[string]any{
						"type":        "integer",
						"description": "Fetch a single upload by id",
					},
				},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]any{
			"tools": GetToolDefinitions(),
		},
	}
}
