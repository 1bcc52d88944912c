package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ironsheep/doc-scanner-mcp/internal/geometry"
	"github.com/ironsheep/doc-scanner-mcp/internal/imaging"
	"github.com/ironsheep/doc-scanner-mcp/internal/rectify"
	"github.com/ironsheep/doc-scanner-mcp/internal/scanner"
	"github.com/ironsheep/doc-scanner-mcp/internal/store"
)

// Uploader stores and records a document upload.
type Uploader interface {
	Upload(ctx context.Context, userID, filename string, data []byte) (*scanner.Result, error)
}

// History reads recorded uploads.
type History interface {
	List(ctx context.Context, userID string, limit int) ([]*store.Upload, error)
	Get(ctx context.Context, id int64) (*store.Upload, error)
}

// ErrStorageNotConfigured is returned by the upload and history tools when
// the server runs without storage.
var ErrStorageNotConfigured = errors.New("upload storage is not configured")

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "document_rectify").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.logger.Warn("tool failed", "tool", params.Name, "error", err)
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]any{
			"content": []map[string]any{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (any, error) {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}
	switch name {
	case ToolInfo:
		return s.handleInfo(args)
	case ToolDetect:
		return s.handleDetect(args)
	case ToolEdges:
		return s.handleEdges(args)
	case ToolRectify:
		return s.handleRectify(args)
	case ToolUpload:
		return s.handleUpload(ctx, args)
	case ToolHistory:
		return s.handleHistory(ctx, args)
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id any, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v any) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// pipelineFor applies per-call overrides to the server's pipeline options.
func (s *Server) pipelineFor(overrides json.RawMessage, debug bool) (*rectify.Pipeline, error) {
	base := s.pipeline.Options()
	opts := base
	if len(overrides) > 0 && string(overrides) != "null" {
		if err := json.Unmarshal(overrides, &opts); err != nil {
			return nil, fmt.Errorf("invalid options: %w", err)
		}
	}
	opts.Debug = debug
	if opts == base {
		return s.pipeline, nil
	}
	return s.pipeline.WithOptions(opts)
}

func requirePath(path string) error {
	if path == "" {
		return errors.New("path is required")
	}
	return nil
}

// === Document Information ===

type pathArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleInfo(args json.RawMessage) (any, error) {
	var a pathArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if err := requirePath(a.Path); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

// === Detection ===

type detectArgs struct {
	Path    string          `json:"path"`
	Options json.RawMessage `json:"options,omitempty"`
}

// DetectResult reports the document outline found in an image.
type DetectResult struct {
	Width      int            `json:"width"`
	Height     int            `json:"height"`
	Detected   bool           `json:"detected"`
	Corners    *geometry.Quad `json:"corners,omitempty"`
	Area       float64        `json:"area,omitempty"`
	OutputSize *[2]int        `json:"output_size,omitempty"`
	Contours   int            `json:"contours"`
	Candidates int            `json:"candidates"`
}

func (s *Server) handleDetect(args json.RawMessage) (any, error) {
	var a detectArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if err := requirePath(a.Path); err != nil {
		return nil, err
	}
	p, err := s.pipelineFor(a.Options, false)
	if err != nil {
		return nil, err
	}
	src, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	det, err := p.Detect(src.Image)
	if err != nil {
		return nil, err
	}

	bounds := src.Image.Bounds()
	result := &DetectResult{
		Width:      bounds.Dx(),
		Height:     bounds.Dy(),
		Contours:   len(det.Contours),
		Candidates: det.Quadrilaterals(),
	}
	if !det.Found {
		return result, nil
	}
	result.Detected = true
	result.Corners = &det.Quad
	result.Area = det.Selected.Area
	result.OutputSize = &[2]int{det.Width, det.Height}
	return result, nil
}

func (s *Server) handleEdges(args json.RawMessage) (any, error) {
	var a detectArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if err := requirePath(a.Path); err != nil {
		return nil, err
	}
	p, err := s.pipelineFor(a.Options, false)
	if err != nil {
		return nil, err
	}
	src, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	edges, err := p.Edges(src.Image)
	if err != nil {
		return nil, err
	}
	return imaging.NewEdgeDetectResult(edges)
}

// === Rectification ===

type rectifyArgs struct {
	Path      string          `json:"path"`
	Debug     bool            `json:"debug"`
	OutputDir string          `json:"output_dir,omitempty"`
	Options   json.RawMessage `json:"options,omitempty"`
}

// DebugImage is an encoded debug overlay.
type DebugImage struct {
	Name        string `json:"name"`
	ImageBase64 string `json:"image_base64"`
}

// RectifyResult is the cropped document returned to the client.
type RectifyResult struct {
	Name        string         `json:"name"`
	Width       int            `json:"width"`
	Height      int            `json:"height"`
	Detected    bool           `json:"detected"`
	Rotated     bool           `json:"rotated"`
	Corners     *geometry.Quad `json:"corners,omitempty"`
	ImageBase64 string         `json:"image_base64"`
	MimeType    string         `json:"mime_type"`
	SavedTo     string         `json:"saved_to,omitempty"`
	Debug       []DebugImage   `json:"debug,omitempty"`
}

func (s *Server) handleRectify(args json.RawMessage) (any, error) {
	var a rectifyArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if err := requirePath(a.Path); err != nil {
		return nil, err
	}
	p, err := s.pipelineFor(a.Options, a.Debug)
	if err != nil {
		return nil, err
	}
	src, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	res, err := p.Run(src.Image)
	if err != nil {
		return nil, err
	}
	art, err := p.Export(res, a.Path)
	if err != nil {
		return nil, err
	}

	result := &RectifyResult{
		Name:        art.Name,
		Width:       art.Width,
		Height:      art.Height,
		Detected:    art.Detected,
		Rotated:     art.Rotated,
		ImageBase64: base64.StdEncoding.EncodeToString(art.Data),
		MimeType:    "image/png",
	}
	if art.Detected {
		q := art.Quad
		result.Corners = &q
	}
	names := rectify.DebugNames(a.Path)
	for i, data := range art.Debug {
		result.Debug = append(result.Debug, DebugImage{
			Name:        names[i],
			ImageBase64: base64.StdEncoding.EncodeToString(data),
		})
	}

	if a.OutputDir != "" {
		if err := os.MkdirAll(a.OutputDir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
		out := filepath.Join(a.OutputDir, art.Name)
		if err := os.WriteFile(out, art.Data, 0o600); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", out, err)
		}
		result.SavedTo = out
	}
	return result, nil
}

// === Uploads ===

type uploadArgs struct {
	Path   string `json:"path"`
	UserID string `json:"user_id"`
}

func (s *Server) handleUpload(ctx context.Context, args json.RawMessage) (any, error) {
	if s.uploads == nil {
		return nil, ErrStorageNotConfigured
	}
	var a uploadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if err := requirePath(a.Path); err != nil {
		return nil, err
	}
	if a.UserID == "" {
		a.UserID = s.defaultUser
	}

	data, err := os.ReadFile(a.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", a.Path, err)
	}
	res, err := s.uploads.Upload(ctx, a.UserID, filepath.Base(a.Path), data)
	if err != nil {
		return nil, err
	}
	return res.Upload, nil
}

type historyArgs struct {
	UserID string `json:"user_id"`
	Limit  int    `json:"limit"`
	ID     int64  `json:"id"`
}

// HistoryResult lists recorded uploads.
type HistoryResult struct {
	Uploads []*store.Upload `json:"uploads"`
	Count   int             `json:"count"`
}

func (s *Server) handleHistory(ctx context.Context, args json.RawMessage) (any, error) {
	if s.history == nil {
		return nil, ErrStorageNotConfigured
	}
	var a historyArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.ID > 0 {
		return s.history.Get(ctx, a.ID)
	}
	uploads, err := s.history.List(ctx, a.UserID, a.Limit)
	if err != nil {
		return nil, err
	}
	if uploads == nil {
		uploads = []*store.Upload{}
	}
	return &HistoryResult{Uploads: uploads, Count: len(uploads)}, nil
}
