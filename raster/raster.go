// Package raster caches an expensively rendered graphic on disk. The first
// Load renders through the injected Renderer and saves the result; later
// runs decode the saved file instead of re-rendering. Drawing itself is the
// host's business: the package only decides whether a cached image can be
// reused and re-renders when it cannot.
package raster

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
)

// ErrSizeMismatch is returned when a cached image's dimensions do not match
// the configured width and height.
var ErrSizeMismatch = errors.New("cached image size mismatch")

// Renderer draws the graphic into the destination canvas. It is invoked only
// when no usable cached image exists.
type Renderer interface {
	Draw(dst draw.Image)
}

// RendererFunc adapts a plain function to the Renderer interface.
type RendererFunc func(dst draw.Image)

// Draw implements Renderer.
func (f RendererFunc) Draw(dst draw.Image) { f(dst) }

// Cache persists one rendered graphic to disk and reloads it on later runs.
type Cache struct {
	renderer Renderer
	width    int
	height   int
	baseDir  string
	path     string
	logger   *slog.Logger
}

// NewCache creates a cache for a graphic of the given dimensions. Relative
// file names passed to Load and SetFile are resolved against baseDir.
func NewCache(renderer Renderer, width, height int, baseDir string, logger *slog.Logger) (*Cache, error) {
	if renderer == nil {
		return nil, errors.New("renderer must not be nil")
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("dimensions must be positive, got %dx%d", width, height)
	}

	return &Cache{
		renderer: renderer,
		width:    width,
		height:   height,
		baseDir:  baseDir,
		logger:   logger,
	}, nil
}

// SetFile sets the cache file path. Absolute names are used verbatim;
// relative names are resolved against the cache's base directory. The image
// is saved here by Redraw and loaded from here by Load.
func (c *Cache) SetFile(name string) {
	if filepath.IsAbs(name) {
		c.path = name
		return
	}
	c.path = filepath.Join(c.baseDir, name)
}

// Load attempts to load the cached image from name, falling back to Redraw
// when the file is missing, cannot be decoded, or has the wrong dimensions.
func (c *Cache) Load(name string) (image.Image, error) {
	c.SetFile(name)

	img, err := c.readCached()
	if err != nil {
		c.logger.Info("redrawing raster cache",
			"path", c.path,
			"reason", err)
		return c.Redraw()
	}

	c.logger.Debug("raster cache loaded", "path", c.path)
	return img, nil
}

// Redraw renders the graphic through the Renderer and saves it to the
// configured path. With no path configured the render still succeeds; the
// result is simply not persisted, matching the original library's warning
// behavior.
func (c *Cache) Redraw() (image.Image, error) {
	dst := image.NewRGBA(image.Rect(0, 0, c.width, c.height))
	c.renderer.Draw(dst)

	if c.path == "" {
		c.logger.Warn("output file not set, rendered image will not be cached")
		return dst, nil
	}

	if err := c.save(dst); err != nil {
		return dst, fmt.Errorf("failed to save raster cache: %w", err)
	}

	c.logger.Debug("raster cache saved", "path", c.path)
	return dst, nil
}

// readCached decodes the cache file and verifies its dimensions.
func (c *Cache) readCached() (image.Image, error) {
	f, err := os.Open(c.path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode cached image: %w", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() != c.width || bounds.Dy() != c.height {
		return nil, fmt.Errorf("%w: have %dx%d, want %dx%d",
			ErrSizeMismatch, bounds.Dx(), bounds.Dy(), c.width, c.height)
	}

	return img, nil
}

func (c *Cache) save(img image.Image) error {
	if dir := filepath.Dir(c.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	f, err := os.Create(c.path)
	if err != nil {
		return err
	}

	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
