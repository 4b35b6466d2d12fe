// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package builtin

import (
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
)

// Sampling intervals for the overlay readouts.
const (
	FPSInterval    = 500 * time.Millisecond
	MemoryInterval = 2 * time.Second
)

// =============================================================================
// OVERLAY
// =============================================================================

// Overlay holds the status bar readouts toggled by the fps and memory
// commands. The console reports each rendered frame through Frame.
type Overlay struct {
	mu sync.Mutex

	showFPS    bool
	showMemory bool

	now     func() time.Time
	readMem func(*runtime.MemStats)

	windowStart time.Time
	frames      int
	fps         float64
	frameTime   time.Duration

	memSampled time.Time
	heap       uint64
}

// NewOverlay creates an overlay with every readout hidden.
func NewOverlay() *Overlay {
	return &Overlay{now: time.Now, readMem: runtime.ReadMemStats}
}

// SetFPS shows or hides the frame rate readout.
func (o *Overlay) SetFPS(show bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.showFPS = show
}

// SetMemory shows or hides the heap readout.
func (o *Overlay) SetMemory(show bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.showMemory = show
	o.memSampled = time.Time{}
}

// FPSVisible reports whether the frame rate readout is shown.
func (o *Overlay) FPSVisible() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.showFPS
}

// MemoryVisible reports whether the heap readout is shown.
func (o *Overlay) MemoryVisible() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.showMemory
}

// Active reports whether any readout is shown.
func (o *Overlay) Active() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.showFPS || o.showMemory
}

// Frame records one rendered frame. The rate is recomputed once per
// FPSInterval.
func (o *Overlay) Frame() {
	o.mu.Lock()
	defer o.mu.Unlock()

	now := o.now()
	if o.windowStart.IsZero() {
		o.windowStart = now
		return
	}
	o.frames++
	elapsed := now.Sub(o.windowStart)
	if elapsed < FPSInterval {
		return
	}
	o.fps = float64(o.frames) / elapsed.Seconds()
	o.frameTime = elapsed / time.Duration(o.frames)
	o.frames = 0
	o.windowStart = now
}

// FPS returns the last measured rate. ok is false before a full interval
// of frames has been seen.
func (o *Overlay) FPS() (fps float64, frameTime time.Duration, ok bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.fps, o.frameTime, o.frameTime > 0
}

// Segment renders the visible readouts for the status bar, or "" when
// none is shown.
func (o *Overlay) Segment() string {
	o.mu.Lock()
	defer o.mu.Unlock()

	var parts []string
	if o.showFPS {
		if o.frameTime > 0 {
			parts = append(parts, fmt.Sprintf("%.1f fps %.1fms", o.fps, ms(o.frameTime)))
		} else {
			parts = append(parts, "-- fps")
		}
	}
	if o.showMemory {
		now := o.now()
		if o.memSampled.IsZero() || now.Sub(o.memSampled) >= MemoryInterval {
			var stats runtime.MemStats
			o.readMem(&stats)
			o.heap = stats.HeapAlloc
			o.memSampled = now
		}
		parts = append(parts, "mem "+humanize.IBytes(o.heap))
	}
	return strings.Join(parts, " | ")
}

func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
