// Package catalog keeps a history of finished renders.
package catalog

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/df07/go-schwarzschild-raytracer/pkg/renderer"
)

// Record describes one finished render
type Record struct {
	ID          string          `json:"id"`
	SceneName   string          `json:"sceneName"`
	Scene       json.RawMessage `json:"scene,omitempty"`
	Width       int             `json:"width"`
	Height      int             `json:"height"`
	Samples     int             `json:"samples"`
	Collided    int             `json:"collided"`
	Escaped     int             `json:"escaped"`
	Diverged    int             `json:"diverged"`
	TotalSteps  int64           `json:"totalSteps"`
	MaxRadiance float64         `json:"maxRadiance"`
	Duration    time.Duration   `json:"duration"`
	OutputPath  string          `json:"outputPath,omitempty"`
	Created     time.Time       `json:"created"`
}

// NewRecord builds a record with a fresh ID from a render's statistics.
// sceneJSON is the scene file form of the rendered scene and may be nil.
func NewRecord(sceneName string, sceneJSON []byte, width, height int, stats renderer.RenderStats, outputPath string, created time.Time) Record {
	return Record{
		ID:          uuid.NewString(),
		SceneName:   sceneName,
		Scene:       json.RawMessage(sceneJSON),
		Width:       width,
		Height:      height,
		Samples:     stats.TotalSamples,
		Collided:    stats.Collided,
		Escaped:     stats.Escaped,
		Diverged:    stats.Diverged,
		TotalSteps:  stats.TotalSteps,
		MaxRadiance: stats.MaxRadiance,
		Duration:    stats.Duration,
		OutputPath:  outputPath,
		Created:     created.UTC(),
	}
}

// Store persists render records. Get returns ok=false for an unknown ID.
type Store interface {
	Init(ctx context.Context) error
	SaveRender(ctx context.Context, record Record) error
	GetRender(ctx context.Context, id string) (Record, bool, error)
	// ListRenders returns up to limit records, newest first. limit <= 0 returns all.
	ListRenders(ctx context.Context, limit int) ([]Record, error)
}
