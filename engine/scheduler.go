package engine

import (
	"context"
	"reflect"
	"time"
)

// SchedulerStats is a snapshot of a scheduler's frame count and per-system
// timings.
type SchedulerStats struct {
	SystemCount     int
	TotalExecutions int64
	Frames          int64
	LastFrame       time.Duration
	Systems         []SystemStats
}

// SystemStats holds the wall-clock cost of one registered system. Durations
// are zero until the system has run.
type SystemStats struct {
	Name           string
	ExecutionCount int64
	MinDuration    time.Duration
	MaxDuration    time.Duration
	AvgDuration    time.Duration
	LastDuration   time.Duration
	TotalDuration  time.Duration
}

type timing struct {
	runs      int64
	min, max  time.Duration
	last, sum time.Duration
}

func (t *timing) record(d time.Duration) {
	if t.runs == 0 || d < t.min {
		t.min = d
	}
	t.max = max(t.max, d)
	t.last = d
	t.sum += d
	t.runs++
}

func (t *timing) snapshot(name string) SystemStats {
	st := SystemStats{
		Name:           name,
		ExecutionCount: t.runs,
		MinDuration:    t.min,
		MaxDuration:    t.max,
		LastDuration:   t.last,
		TotalDuration:  t.sum,
	}
	if t.runs > 0 {
		st.AvgDuration = t.sum / time.Duration(t.runs)
	}
	return st
}

type entry struct {
	system System
	name   string
	timing timing
}

// Scheduler turns a Clock into frame timestamps and executes systems in
// registration order. Timestamps are measured from the scheduler's creation,
// so systems see a monotonic elapsed time and never a fixed delta.
type Scheduler struct {
	clock   Clock
	start   time.Time
	last    time.Duration
	frames  int64
	entries []*entry
}

// NewScheduler creates a scheduler reading the given clock. A nil clock means
// SystemClock.
func NewScheduler(clock Clock) *Scheduler {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Scheduler{clock: clock, start: clock.Now()}
}

// Register adds a system to the end of the execution order. Stats name it
// after its type.
func (s *Scheduler) Register(system System) {
	t := reflect.TypeOf(system)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	s.entries = append(s.entries, &entry{system: system, name: t.Name()})
}

// Elapsed returns the clock's time since the scheduler was created.
func (s *Scheduler) Elapsed() time.Duration {
	return s.clock.Now().Sub(s.start)
}

// Once executes every system at the clock's current elapsed time. Pass a nil
// surface to advance state without drawing.
func (s *Scheduler) Once(surface Surface) {
	s.Step(s.Elapsed(), surface)
}

// Step executes every system with an explicit timestamp. Timestamps may repeat
// or stall; systems compare them against their own last step. Deferred
// commands run once all systems have executed.
func (s *Scheduler) Step(now time.Duration, surface Surface) {
	frame := newUpdateFrame(now, now-s.last, surface)
	s.last = now
	s.frames++

	for _, e := range s.entries {
		began := time.Now()
		e.system.Execute(frame)
		e.timing.record(time.Since(began))
	}

	frame.Commands.Flush()
}

// Run calls Once every interval until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context, interval time.Duration, surface Surface) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Once(surface)
		}
	}
}

func (s *Scheduler) GetStats() *SchedulerStats {
	stats := &SchedulerStats{
		SystemCount: len(s.entries),
		Frames:      s.frames,
		LastFrame:   s.last,
		Systems:     make([]SystemStats, 0, len(s.entries)),
	}
	for _, e := range s.entries {
		stats.Systems = append(stats.Systems, e.timing.snapshot(e.name))
		stats.TotalExecutions += e.timing.runs
	}
	return stats
}
