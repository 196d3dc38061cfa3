package debug

import "time"

// FrameTimer accumulates frame times and reports the average rate once per
// window.
type FrameTimer struct {
	window time.Duration

	frames  int
	elapsed time.Duration
	worst   time.Duration

	fps       float64
	frameTime time.Duration
	maxFrame  time.Duration
}

// NewFrameTimer creates a timer that averages over window.
func NewFrameTimer(window time.Duration) *FrameTimer {
	if window <= 0 {
		window = time.Second
	}
	return &FrameTimer{window: window}
}

// Tick records one frame of length dt. It returns true when a window
// closed and FPS, FrameTime and MaxFrame were refreshed.
func (t *FrameTimer) Tick(dt time.Duration) bool {
	t.frames++
	t.elapsed += dt
	if dt > t.worst {
		t.worst = dt
	}
	if t.elapsed < t.window {
		return false
	}

	t.fps = float64(t.frames) / t.elapsed.Seconds()
	t.frameTime = t.elapsed / time.Duration(t.frames)
	t.maxFrame = t.worst

	t.frames = 0
	t.elapsed = 0
	t.worst = 0
	return true
}

// FPS returns the frame rate over the last closed window.
func (t *FrameTimer) FPS() float64 { return t.fps }

// FrameTime returns the mean frame time over the last closed window.
func (t *FrameTimer) FrameTime() time.Duration { return t.frameTime }

// MaxFrame returns the longest frame in the last closed window.
func (t *FrameTimer) MaxFrame() time.Duration { return t.maxFrame }
