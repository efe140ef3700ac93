package renderer

import (
	"sync"
	"sync/atomic"

	"github.com/df07/go-schwarzschild-raytracer/pkg/core"
)

// progressCounter counts finished pixels for one render and forwards whole-percent
// changes to a sink. Reports are monotone; the sink is never called concurrently.
type progressCounter struct {
	done     atomic.Int64
	reported atomic.Int64
	total    int64
	sink     core.ProgressSink
	mu       sync.Mutex
}

func newProgressCounter(total int, sink core.ProgressSink) *progressCounter {
	p := &progressCounter{total: int64(max(1, total)), sink: sink}
	p.reported.Store(-1)
	return p
}

// add records n finished pixels
func (p *progressCounter) add(n int) {
	done := p.done.Add(int64(n))
	if p.sink == nil {
		return
	}

	percent := done * 100 / p.total
	if percent <= p.reported.Load() {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if percent > p.reported.Load() {
		p.reported.Store(percent)
		p.sink.Progress(float64(percent))
	}
}

// Done returns the number of finished pixels
func (p *progressCounter) Done() int64 {
	return p.done.Load()
}
