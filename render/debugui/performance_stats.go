package debugui

import (
	"fmt"
	"time"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/blockfall/engine"
)

// NamedScheduler labels a scheduler in the performance window.
type NamedScheduler struct {
	Name      string
	Scheduler *engine.Scheduler
}

type PerformanceStats struct {
	historyFrames int
	frameHistory  []float32
	frameIndex    int
}

func NewPerformanceStats(historyFrames int) *PerformanceStats {
	if historyFrames < 1 {
		historyFrames = 1
	}
	return &PerformanceStats{
		historyFrames: historyFrames,
		frameHistory:  make([]float32, historyFrames),
	}
}

func (ps *PerformanceStats) Render(deltaTime float32, schedulers ...NamedScheduler) {
	if !imgui.BeginV("Performance Stats", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	ps.frameHistory[ps.frameIndex] = deltaTime * 1000.0
	ps.frameIndex = (ps.frameIndex + 1) % ps.historyFrames

	avg := ps.AverageFrameTime()
	if avg > 0 {
		imgui.Text(fmt.Sprintf("Avg Frame Time: %.2f ms (%.0f FPS)", avg, 1000.0/avg))
	} else {
		imgui.Text("Avg Frame Time: -")
	}

	imgui.Separator()
	imgui.Text("Frame Time Graph (ms)")
	imgui.PlotLinesFloatPtr("##frametime", &ps.frameHistory[0], int32(len(ps.frameHistory)))

	for _, named := range schedulers {
		stats := named.Scheduler.GetStats()
		if !imgui.TreeNodeStr(fmt.Sprintf("%s (%d frames)", named.Name, stats.Frames)) {
			continue
		}
		imgui.Text(fmt.Sprintf("Elapsed: %v", stats.LastFrame.Truncate(time.Millisecond)))

		const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg
		if imgui.BeginTableV("SystemStats##"+named.Name, 5, tableFlags, imgui.NewVec2(0, 0), 0) {
			imgui.TableSetupColumn("System")
			imgui.TableSetupColumn("Runs")
			imgui.TableSetupColumn("Avg")
			imgui.TableSetupColumn("Max")
			imgui.TableSetupColumn("Last")
			imgui.TableHeadersRow()

			for _, sys := range stats.Systems {
				imgui.TableNextRow()
				imgui.TableNextColumn()
				imgui.Text(sys.Name)
				imgui.TableNextColumn()
				imgui.Text(fmt.Sprintf("%d", sys.ExecutionCount))
				imgui.TableNextColumn()
				imgui.Text(sys.AvgDuration.String())
				imgui.TableNextColumn()
				imgui.Text(sys.MaxDuration.String())
				imgui.TableNextColumn()
				imgui.Text(sys.LastDuration.String())
			}

			imgui.EndTable()
		}
		imgui.TreePop()
	}

	imgui.End()
}

// AverageFrameTime is the mean of the recorded history in milliseconds.
func (ps *PerformanceStats) AverageFrameTime() float32 {
	var sum float32
	for _, ft := range ps.frameHistory {
		sum += ft
	}
	return sum / float32(ps.historyFrames)
}

// FrameTimer measures the time between rendered frames on a clock.
type FrameTimer struct {
	clock engine.Clock
	last  time.Time
}

// NewFrameTimer reads clock, or the wall clock when nil.
func NewFrameTimer(clock engine.Clock) *FrameTimer {
	if clock == nil {
		clock = engine.SystemClock{}
	}
	return &FrameTimer{clock: clock, last: clock.Now()}
}

// Tick returns the seconds since the previous Tick.
func (ft *FrameTimer) Tick() float32 {
	now := ft.clock.Now()
	delta := now.Sub(ft.last)
	ft.last = now
	return float32(delta.Seconds())
}
