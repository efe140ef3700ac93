package core

// Logger interface for raytracer logging
type Logger interface {
	Printf(format string, args ...interface{})
}

// ProgressSink receives the completed percentage of a render's compute pass.
// Implementations must not block; delivery is best-effort.
type ProgressSink interface {
	Progress(percent float64)
}

// ProgressFunc adapts a plain function to ProgressSink
type ProgressFunc func(percent float64)

// Progress implements ProgressSink
func (f ProgressFunc) Progress(percent float64) { f(percent) }
