package output

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/golang/snappy"

	"github.com/df07/go-schwarzschild-raytracer/pkg/geodesic"
	"github.com/df07/go-schwarzschild-raytracer/pkg/spacetime"
)

// PathStep is one recorded integration step of a ray
type PathStep struct {
	Step     int        `json:"step"`
	StepSize float64    `json:"h"`
	Position [4]float64 `json:"x"`
	Velocity [4]float64 `json:"v"`
	NullNorm float64    `json:"norm"`
}

// PathLog records the steps of traced rays as snappy-framed JSON lines.
// It implements geodesic.Recorder; write failures are kept and reported by Close.
type PathLog struct {
	mu     sync.Mutex
	space  *spacetime.Space
	stream *snappy.Writer
	steps  int
	err    error
}

// NewPathLog creates a log writing to w. space is used for the null-norm column.
func NewPathLog(w io.Writer, space *spacetime.Space) *PathLog {
	return &PathLog{
		space:  space,
		stream: snappy.NewBufferedWriter(w),
	}
}

// RecordStep implements geodesic.Recorder
func (l *PathLog) RecordStep(step int, ray geodesic.Ray, stepSize float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return
	}

	line, err := json.Marshal(PathStep{
		Step:     step,
		StepSize: stepSize,
		Position: ray.Position,
		Velocity: ray.Velocity,
		NullNorm: ray.NullNorm(l.space),
	})
	if err != nil {
		// Non-finite states have no JSON form; the trace stops on them anyway
		l.err = fmt.Errorf("step %d: %w", step, err)
		return
	}
	if _, err := l.stream.Write(append(line, '\n')); err != nil {
		l.err = err
		return
	}
	l.steps++
}

// Steps returns the number of steps written so far
func (l *PathLog) Steps() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.steps
}

// Close flushes buffered steps and returns the first error seen
func (l *PathLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.stream.Close(); err != nil && l.err == nil {
		l.err = err
	}
	return l.err
}

// ReadPathLog decodes every step of a log written by PathLog
func ReadPathLog(r io.Reader) ([]PathStep, error) {
	scanner := bufio.NewScanner(snappy.NewReader(r))
	var steps []PathStep
	for scanner.Scan() {
		var s PathStep
		if err := json.Unmarshal(scanner.Bytes(), &s); err != nil {
			return nil, fmt.Errorf("path log line %d: %w", len(steps)+1, err)
		}
		steps = append(steps, s)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read path log: %w", err)
	}
	return steps, nil
}
