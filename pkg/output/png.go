// Package output persists render results: tone-mapped images, linear radiance
// dumps, and per-step logs of traced rays.
package output

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"
)

// RenderPath returns output/<scene>/render_<timestamp>.png under root
func RenderPath(root, sceneName string, now time.Time) string {
	timestamp := now.Format("20060102_150405")
	return filepath.Join(root, sceneName, fmt.Sprintf("render_%s.png", timestamp))
}

// SavePNG encodes img to path, creating parent directories as needed
func SavePNG(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	if err := png.Encode(file, img); err != nil {
		file.Close()
		return fmt.Errorf("failed to encode PNG: %w", err)
	}
	return file.Close()
}
