// Package server implements the MCP (Model Context Protocol) server for
// document scanning tools.
//
// The server speaks JSON-RPC 2.0 over stdio and exposes the rectification
// pipeline so that MCP clients can find, straighten and crop photographed
// documents.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Inspection:
//   - document_info: Dimensions, format and capture metadata
//   - document_detect: Locate the document outline without warping
//   - document_edges: Binarized Canny edge map
//
// Rectification:
//   - document_rectify: Warp the document to an upright portrait PNG,
//     optionally with debug overlays and a copy written to disk
//
// Storage (only when the server was started with a data directory):
//   - document_upload: Store an original and its cropped result
//   - document_history: List or fetch recorded uploads
//
// Every pipeline tool accepts an "options" object whose fields override the
// server's configured pipeline options for that call.
//
// # Image Caching
//
// Decoded inputs are cached by path for the lifetime of the process, so
// detect followed by rectify on the same file decodes it once.
package server
