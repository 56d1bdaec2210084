package vkframe

import (
	"fmt"
	"time"

	"github.com/loov/hrtime"
)

// FrameCounter reports frames per second and mean frame time once per interval.
type FrameCounter struct {
	now      func() time.Duration
	interval time.Duration
	last     time.Duration
	frames   int
}

func NewFrameCounter() *FrameCounter {
	return newFrameCounter(hrtime.Now, time.Second)
}

func newFrameCounter(now func() time.Duration, interval time.Duration) *FrameCounter {
	return &FrameCounter{now: now, interval: interval, last: now()}
}

// FrameStats is one interval's measurement.
type FrameStats struct {
	FPS       float64
	FrameTime time.Duration
}

func (s FrameStats) String() string {
	return fmt.Sprintf("%.0f fps, %.3f ms", s.FPS, float64(s.FrameTime.Microseconds())/1000)
}

// Tick counts a frame. ok is true once per interval, with the stats for it.
func (c *FrameCounter) Tick() (stats FrameStats, ok bool) {
	c.frames++
	now := c.now()
	elapsed := now - c.last
	if elapsed < c.interval {
		return FrameStats{}, false
	}
	stats = FrameStats{
		FPS:       float64(c.frames) / elapsed.Seconds(),
		FrameTime: elapsed / time.Duration(c.frames),
	}
	c.last = now
	c.frames = 0
	return stats, true
}
