package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/doc-scanner-mcp/internal/scanner"
	"github.com/ironsheep/doc-scanner-mcp/internal/store"
)

// createTestImageFile writes img as a PNG into a temporary directory and
// returns its path.
func createTestImageFile(t *testing.T, name string, img image.Image) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create file: %v", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return path
}

// uniformImage returns a width x height image filled with c.
func uniformImage(width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// pageImage draws a white 300x400 page on a 500x600 black background,
// softened like a photograph so the threshold band closes at the corners.
func pageImage() image.Image {
	img := uniformImage(500, 600, color.Black)
	for y := 100; y < 500; y++ {
		for x := 100; x < 400; x++ {
			img.Set(x, y, color.White)
		}
	}
	return imaging.Blur(img, 3)
}

// callTool sends a tools/call request and returns the response.
func callTool(t *testing.T, s *Server, name string, args any) *MCPResponse {
	t.Helper()

	params := map[string]any{"name": name, "arguments": args}
	paramsJSON, err := json.Marshal(params)
	if err != nil {
		t.Fatalf("failed to marshal params: %v", err)
	}
	resp := s.handleRequest(context.Background(), &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  paramsJSON,
	})
	if resp == nil {
		t.Fatal("handleRequest returned nil")
	}
	return resp
}

// decodeResult unmarshals the text content of a successful tool response.
func decodeResult(t *testing.T, resp *MCPResponse, v any) {
	t.Helper()

	if resp.Error != nil {
		t.Fatalf("unexpected error: %s (%v)", resp.Error.Message, resp.Error.Data)
	}
	result, ok := resp.Result.(map[string]any)
	if !ok {
		t.Fatalf("result is %T", resp.Result)
	}
	content, ok := result["content"].([]map[string]any)
	if !ok || len(content) != 1 {
		t.Fatalf("unexpected content: %v", result["content"])
	}
	text, _ := content[0]["text"].(string)
	if err := json.Unmarshal([]byte(text), v); err != nil {
		t.Fatalf("failed to decode tool result %q: %v", text, err)
	}
}

func expectToolError(t *testing.T, resp *MCPResponse) {
	t.Helper()
	if resp.Error == nil {
		t.Fatalf("expected an error, got %v", resp.Result)
	}
	if resp.Error.Code != -32000 {
		t.Errorf("error code: got %d, want -32000", resp.Error.Code)
	}
}

func TestHandleToolsCall_Info(t *testing.T) {
	s := newTestServer(t)
	path := createTestImageFile(t, "red.png", uniformImage(100, 80, color.RGBA{255, 0, 0, 255}))

	var info struct {
		Width       int    `json:"width"`
		Height      int    `json:"height"`
		Format      string `json:"format"`
		Orientation string `json:"orientation"`
	}
	decodeResult(t, callTool(t, s, ToolInfo, map[string]any{"path": path}), &info)

	if info.Width != 100 || info.Height != 80 {
		t.Errorf("size: got %dx%d, want 100x80", info.Width, info.Height)
	}
	if info.Format != "png" {
		t.Errorf("format: got %q", info.Format)
	}
	if info.Orientation != "landscape" {
		t.Errorf("orientation: got %q", info.Orientation)
	}
}

func TestHandleToolsCall_NonExistentFile(t *testing.T) {
	s := newTestServer(t)
	for _, tool := range []string{ToolInfo, ToolDetect, ToolEdges, ToolRectify} {
		t.Run(tool, func(t *testing.T) {
			expectToolError(t, callTool(t, s, tool, map[string]any{"path": "/nonexistent/scan.png"}))
		})
	}
}

func TestHandleToolsCall_MissingPath(t *testing.T) {
	s := newTestServer(t)
	for _, tool := range []string{ToolInfo, ToolDetect, ToolEdges, ToolRectify} {
		t.Run(tool, func(t *testing.T) {
			expectToolError(t, callTool(t, s, tool, map[string]any{}))
		})
	}
}

func TestHandleToolsCall_InvalidTool(t *testing.T) {
	s := newTestServer(t)
	expectToolError(t, callTool(t, s, "image_crop", map[string]any{}))
}

func TestHandleToolsCall_InvalidParams(t *testing.T) {
	s := newTestServer(t)
	resp := s.handleRequest(context.Background(), &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  json.RawMessage(`"not an object"`),
	})
	if resp.Error == nil || resp.Error.Code != -32602 {
		t.Fatalf("expected -32602, got %+v", resp.Error)
	}
}

func TestHandleToolsCall_Detect(t *testing.T) {
	s := newTestServer(t)
	path := createTestImageFile(t, "page.png", pageImage())

	var result DetectResult
	decodeResult(t, callTool(t, s, ToolDetect, map[string]any{"path": path}), &result)

	if !result.Detected {
		t.Fatal("expected the page to be detected")
	}
	if result.Width != 500 || result.Height != 600 {
		t.Errorf("size: got %dx%d", result.Width, result.Height)
	}
	if result.Corners == nil || result.OutputSize == nil {
		t.Fatal("corners and output size should be set")
	}
	tl, br := result.Corners[0], result.Corners[2]
	if tl.X < 85 || tl.X > 105 || tl.Y < 85 || tl.Y > 105 {
		t.Errorf("top-left corner: got %v", tl)
	}
	if br.X < 395 || br.X > 415 || br.Y < 495 || br.Y > 515 {
		t.Errorf("bottom-right corner: got %v", br)
	}
	if result.Area <= 50000 {
		t.Errorf("area: got %v", result.Area)
	}
	if result.Contours == 0 || result.Candidates == 0 {
		t.Errorf("contours=%d candidates=%d", result.Contours, result.Candidates)
	}
}

func TestHandleToolsCall_Detect_NothingFound(t *testing.T) {
	s := newTestServer(t)
	path := createTestImageFile(t, "blank.png", uniformImage(200, 200, color.White))

	var result DetectResult
	decodeResult(t, callTool(t, s, ToolDetect, map[string]any{"path": path}), &result)

	if result.Detected {
		t.Error("blank image should not contain a document")
	}
	if result.Corners != nil {
		t.Errorf("corners should be omitted, got %v", result.Corners)
	}
}

func TestHandleToolsCall_Detect_OptionsOverride(t *testing.T) {
	s := newTestServer(t)
	path := createTestImageFile(t, "page.png", pageImage())

	var result DetectResult
	args := map[string]any{
		"path":    path,
		"options": map[string]any{"min_area": 1e6},
	}
	decodeResult(t, callTool(t, s, ToolDetect, args), &result)
	if result.Detected {
		t.Error("a minimum area above the page size should reject it")
	}

	args["options"] = map[string]any{"adaptive_threshold_block_size": 4}
	expectToolError(t, callTool(t, s, ToolDetect, args))
}

func TestHandleToolsCall_Edges(t *testing.T) {
	s := newTestServer(t)
	path := createTestImageFile(t, "page.png", pageImage())

	var result struct {
		Width       int    `json:"width"`
		Height      int    `json:"height"`
		EdgePixels  int    `json:"edge_pixels"`
		ImageBase64 string `json:"image_base64"`
		MimeType    string `json:"mime_type"`
	}
	decodeResult(t, callTool(t, s, ToolEdges, map[string]any{"path": path}), &result)

	if result.Width != 500 || result.Height != 600 {
		t.Errorf("size: got %dx%d", result.Width, result.Height)
	}
	if result.EdgePixels == 0 {
		t.Error("expected edge pixels around the page")
	}
	if result.MimeType != "image/png" {
		t.Errorf("mime type: got %q", result.MimeType)
	}
}

func decodePNG(t *testing.T, b64 string) image.Image {
	t.Helper()
	data, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		t.Fatalf("bad base64: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("bad png: %v", err)
	}
	return img
}

func TestHandleToolsCall_Rectify(t *testing.T) {
	s := newTestServer(t)
	path := createTestImageFile(t, "page.png", pageImage())

	var result RectifyResult
	decodeResult(t, callTool(t, s, ToolRectify, map[string]any{"path": path}), &result)

	if !result.Detected {
		t.Fatal("expected the page to be detected")
	}
	if result.Name != "page.cropped.png" {
		t.Errorf("name: got %q", result.Name)
	}
	if result.Width > result.Height {
		t.Errorf("output should be portrait, got %dx%d", result.Width, result.Height)
	}
	if len(result.Debug) != 0 {
		t.Errorf("no debug images expected, got %d", len(result.Debug))
	}

	img := decodePNG(t, result.ImageBase64)
	if img.Bounds().Dx() != result.Width || img.Bounds().Dy() != result.Height {
		t.Errorf("encoded size %v does not match %dx%d", img.Bounds(), result.Width, result.Height)
	}
}

func TestHandleToolsCall_Rectify_DebugAndOutputDir(t *testing.T) {
	s := newTestServer(t)
	path := createTestImageFile(t, "page.png", pageImage())
	outDir := filepath.Join(t.TempDir(), "out")

	var result RectifyResult
	args := map[string]any{"path": path, "debug": true, "output_dir": outDir}
	decodeResult(t, callTool(t, s, ToolRectify, args), &result)

	if len(result.Debug) != 2 {
		t.Fatalf("expected 2 debug images, got %d", len(result.Debug))
	}
	if result.Debug[0].Name != "page.contours.png" || result.Debug[1].Name != "page.selection.png" {
		t.Errorf("debug names: got %q, %q", result.Debug[0].Name, result.Debug[1].Name)
	}
	for _, d := range result.Debug {
		if b := decodePNG(t, d.ImageBase64).Bounds(); b.Dx() != 500 || b.Dy() != 600 {
			t.Errorf("%s: overlay should match the input size, got %v", d.Name, b)
		}
	}

	want := filepath.Join(outDir, "page.cropped.png")
	if result.SavedTo != want {
		t.Errorf("saved to: got %q, want %q", result.SavedTo, want)
	}
	if _, err := os.Stat(want); err != nil {
		t.Errorf("output file missing: %v", err)
	}
}

func TestHandleToolsCall_Rectify_PassThrough(t *testing.T) {
	s := newTestServer(t)
	path := createTestImageFile(t, "blank.png", uniformImage(120, 80, color.White))

	var result RectifyResult
	decodeResult(t, callTool(t, s, ToolRectify, map[string]any{"path": path}), &result)

	if result.Detected || result.Rotated {
		t.Errorf("detected=%v rotated=%v, want both false", result.Detected, result.Rotated)
	}
	if result.Width != 120 || result.Height != 80 {
		t.Errorf("pass-through should keep the input size, got %dx%d", result.Width, result.Height)
	}
	if result.Corners != nil {
		t.Errorf("corners should be omitted, got %v", result.Corners)
	}
}

type fakeUploads struct {
	userID   string
	filename string
	data     []byte
	err      error
}

func (f *fakeUploads) Upload(_ context.Context, userID, filename string, data []byte) (*scanner.Result, error) {
	f.userID, f.filename, f.data = userID, filename, data
	if f.err != nil {
		return nil, f.err
	}
	return &scanner.Result{Upload: &store.Upload{
		ID:       7,
		UserID:   userID,
		Filename: filename,
		Status:   store.StatusDone,
	}}, nil
}

type fakeHistory struct {
	uploads []*store.Upload
	limit   int
}

func (f *fakeHistory) List(_ context.Context, userID string, limit int) ([]*store.Upload, error) {
	f.limit = limit
	var out []*store.Upload
	for _, u := range f.uploads {
		if userID == "" || u.UserID == userID {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeHistory) Get(_ context.Context, id int64) (*store.Upload, error) {
	for _, u := range f.uploads {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, store.ErrNotFound
}

func TestHandleToolsCall_StorageNotConfigured(t *testing.T) {
	s := newTestServer(t)
	path := createTestImageFile(t, "page.png", pageImage())

	expectToolError(t, callTool(t, s, ToolUpload, map[string]any{"path": path}))
	expectToolError(t, callTool(t, s, ToolHistory, map[string]any{}))
}

func TestHandleToolsCall_Upload(t *testing.T) {
	uploads := &fakeUploads{}
	s := New(Deps{Pipeline: newTestPipeline(t), Uploads: uploads, DefaultUser: "local"})
	path := createTestImageFile(t, "page.png", pageImage())

	var u store.Upload
	decodeResult(t, callTool(t, s, ToolUpload, map[string]any{"path": path}), &u)

	if u.ID != 7 || u.Status != store.StatusDone {
		t.Errorf("unexpected upload: %+v", u)
	}
	if uploads.userID != "local" {
		t.Errorf("user should default to the configured user, got %q", uploads.userID)
	}
	if uploads.filename != "page.png" {
		t.Errorf("filename: got %q", uploads.filename)
	}
	data, _ := os.ReadFile(path)
	if !bytes.Equal(uploads.data, data) {
		t.Error("uploaded bytes differ from the file")
	}

	decodeResult(t, callTool(t, s, ToolUpload, map[string]any{"path": path, "user_id": "bob"}), &u)
	if uploads.userID != "bob" {
		t.Errorf("user: got %q, want bob", uploads.userID)
	}

	uploads.err = errors.New("disk full")
	expectToolError(t, callTool(t, s, ToolUpload, map[string]any{"path": path}))
}

func TestHandleToolsCall_History(t *testing.T) {
	history := &fakeHistory{uploads: []*store.Upload{
		{ID: 2, UserID: "alice", Filename: "b.png", Status: store.StatusDone},
		{ID: 1, UserID: "bob", Filename: "a.png", Status: store.StatusFailed, Error: "bad input"},
	}}
	s := New(Deps{Pipeline: newTestPipeline(t), History: history})

	var list HistoryResult
	decodeResult(t, callTool(t, s, ToolHistory, map[string]any{"limit": 10}), &list)
	if list.Count != 2 || len(list.Uploads) != 2 {
		t.Fatalf("got %d uploads", list.Count)
	}
	if history.limit != 10 {
		t.Errorf("limit: got %d", history.limit)
	}

	decodeResult(t, callTool(t, s, ToolHistory, map[string]any{"user_id": "nobody"}), &list)
	if list.Count != 0 || list.Uploads == nil {
		t.Errorf("expected an empty, non-nil list, got %+v", list)
	}

	var one store.Upload
	decodeResult(t, callTool(t, s, ToolHistory, map[string]any{"id": 1}), &one)
	if one.Filename != "a.png" || one.Error != "bad input" {
		t.Errorf("unexpected upload: %+v", one)
	}

	expectToolError(t, callTool(t, s, ToolHistory, map[string]any{"id": 99}))
}
