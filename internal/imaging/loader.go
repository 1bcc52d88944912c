package imaging

import (
	"fmt"
	"image"
	"os"
	"sync"
)

// Source is a decoded input file together with the bytes it came from.
type Source struct {
	// Image is the decoded (and, for JPEG, EXIF-oriented) raster.
	Image image.Image

	// Format is the content-detected format name, see Decode.
	Format string

	// Data holds the original encoded bytes.
	Data []byte
}

// ImageCache provides thread-safe caching of loaded documents to avoid
// redundant disk reads and decoding.
//
// The cache stores decoded Sources keyed by their file path. Once a file is
// loaded, subsequent Load() calls for the same path return the cached copy
// without disk I/O. Cached images are shared between callers and must be
// treated as read-only.
//
// ImageCache is safe for concurrent use by multiple goroutines.
//
// # Memory Management
//
// Cached images remain in memory until explicitly removed via Evict() or
// Clear(). For long-running processes handling many documents, consider
// periodic cleanup to prevent unbounded memory growth.
//
// # Example Usage
//
//	cache := imaging.NewImageCache()
//	src, err := cache.Load("/path/to/scan.jpg")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	// Use src.Image...
//	cache.Evict("/path/to/scan.jpg") // Optional: free memory
type ImageCache struct {
	mu      sync.RWMutex
	sources map[string]*Source
}

// NewImageCache creates and initializes a new empty image cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		sources: make(map[string]*Source),
	}
}

// Load retrieves a document from the cache or reads and decodes it from
// disk if not cached.
//
// Parameters:
//   - path: Absolute or relative file path. Any format accepted by Decode
//     is supported.
//
// Returns:
//   - *Source: The decoded image with its format and original bytes.
//   - error: Non-nil if the file cannot be read or decoded.
//
// The document is cached using the exact path string provided. Different
// paths to the same file (e.g., relative vs absolute) will result in
// separate cache entries.
func (c *ImageCache) Load(path string) (*Source, error) {
	c.mu.RLock()
	if src, ok := c.sources[path]; ok {
		c.mu.RUnlock()
		return src, nil
	}
	c.mu.RUnlock()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	img, format, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	src := &Source{Image: img, Format: format, Data: data}
	c.mu.Lock()
	c.sources[path] = src
	c.mu.Unlock()

	return src, nil
}

// Clear removes all documents from the cache, freeing the associated memory.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.sources = make(map[string]*Source)
	c.mu.Unlock()
}

// Evict removes a specific document from the cache by its path.
//
// If the path is not in the cache, this method does nothing. After
// eviction, the next Load() call for this path will read from disk.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.sources, path)
	c.mu.Unlock()
}

// Len reports the number of cached documents.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.sources)
}

// ImageInfo contains metadata about a loaded document file.
type ImageInfo struct {
	// Width is the decoded image width in pixels. For PDF input this is
	// the rasterized first page.
	Width int `json:"width"`

	// Height is the decoded image height in pixels.
	Height int `json:"height"`

	// Format is the content-detected format, see Decode.
	Format string `json:"format"`

	// Orientation is "portrait", "landscape" or "square".
	Orientation string `json:"orientation"`

	// HasAlpha indicates whether the decoded image has an alpha channel.
	HasAlpha bool `json:"has_alpha"`

	// FileSizeBytes is the size of the file on disk in bytes.
	FileSizeBytes int64 `json:"file_size_bytes"`

	// Capture holds EXIF capture metadata when present.
	Capture *CaptureInfo `json:"capture,omitempty"`
}

// LoadImageInfo loads a document and returns metadata about it.
//
// Parameters:
//   - cache: The image cache to use for loading. Must not be nil.
//   - path: Path to the file.
//
// Returns:
//   - *ImageInfo: Metadata about the document.
//   - error: Non-nil if the file cannot be loaded.
func LoadImageInfo(cache *ImageCache, path string) (*ImageInfo, error) {
	src, err := cache.Load(path)
	if err != nil {
		return nil, err
	}

	bounds := src.Image.Bounds()
	orientation := "square"
	switch {
	case bounds.Dx() > bounds.Dy():
		orientation = "landscape"
	case bounds.Dx() < bounds.Dy():
		orientation = "portrait"
	}

	hasAlpha := false
	switch src.Image.(type) {
	case *image.RGBA, *image.NRGBA, *image.RGBA64, *image.NRGBA64:
		hasAlpha = true
	}

	info := &ImageInfo{
		Width:         bounds.Dx(),
		Height:        bounds.Dy(),
		Format:        src.Format,
		Orientation:   orientation,
		HasAlpha:      hasAlpha,
		FileSizeBytes: int64(len(src.Data)),
	}
	if capture := ReadCaptureInfo(src.Data); capture != (CaptureInfo{}) {
		info.Capture = &capture
	}
	return info, nil
}
