package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/plus3/blockfall/bitmap"
	"github.com/plus3/blockfall/bitmap/qr"
	"github.com/plus3/blockfall/engine"
)

// restartPatterns starts finished pattern builds again so that sequencers
// keep working for the whole run.
type restartPatterns struct {
	seqs []*engine.Sequencer
}

func (r *restartPatterns) Execute(frame *engine.UpdateFrame) {
	for _, s := range r.seqs {
		if s.State() == engine.Done {
			frame.Commands.Defer(s.Start)
		}
	}
}

type worker struct {
	scheduler *engine.Scheduler
	frees     []*engine.FreeFall
	seqs      []*engine.Sequencer
	samples   []time.Duration
	patterns  int64
}

func main() {
	duration := flag.Duration("duration", 10*time.Minute, "Simulated time every simulator runs for.")
	frame := flag.Duration("frame", 16*time.Millisecond, "Simulated time between frames.")
	sims := flag.Int("sims", 64, "Number of free-fall simulators.")
	patterns := flag.Int("patterns", 16, "Number of QR pattern sequencers.")
	workers := flag.Int("workers", runtime.NumCPU(), "Goroutines sharing the simulators.")
	seed := flag.Uint64("seed", 1, "Seed of the first free-fall simulator.")
	progress := flag.Bool("progress", true, "Show a progress bar.")
	flag.Parse()

	if *workers < 1 || *frame <= 0 || *duration < *frame {
		log.Fatal("workers must be > 0 and duration at least one frame")
	}
	frames := int(*duration / *frame)

	log.Println("Starting blockfall stress test...")

	targets, err := patternTargets(*patterns)
	if err != nil {
		log.Fatalf("encoding patterns: %v", err)
	}

	pool := make([]*worker, *workers)
	for i := range pool {
		pool[i] = &worker{scheduler: engine.NewScheduler(engine.NewManualClock(time.Unix(0, 0)))}
	}
	for i := 0; i < *sims; i++ {
		w := pool[i%len(pool)]
		ff := engine.NewFreeFall(engine.FreeFallConfig{Rand: engine.NewRand(*seed + uint64(i))})
		w.frees = append(w.frees, ff)
		w.scheduler.Register(ff)
	}
	for i, target := range targets {
		w := pool[i%len(pool)]
		s := engine.NewSequencer(engine.SequencerConfig{Listener: func(e engine.Event) {
			if e.Kind == engine.EventPatternDone {
				w.patterns++
			}
		}})
		if err := s.Load(target); err != nil {
			log.Fatalf("loading pattern %d: %v", i, err)
		}
		s.Start()
		w.seqs = append(w.seqs, s)
		w.scheduler.Register(s)
	}
	for _, w := range pool {
		w.scheduler.Register(&restartPatterns{seqs: w.seqs})
		w.samples = make([]time.Duration, 0, frames)
	}

	report := &Report{
		Duration: *duration,
		Frame:    *frame,
		Frames:   frames,
		Sims:     *sims,
		Patterns: len(targets),
		Workers:  len(pool),
	}
	runtime.ReadMemStats(&report.MemStatsStart)

	log.Printf("Running %d frames on %d workers...\n", frames, len(pool))
	bar := pb.StartNew(frames * len(pool))
	if !*progress {
		bar.SetWriter(io.Discard)
	}

	var wg sync.WaitGroup
	for _, w := range pool {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for f := 1; f <= frames; f++ {
				start := time.Now()
				w.scheduler.Step(time.Duration(f)*(*frame), nil)
				w.samples = append(w.samples, time.Since(start))
				bar.Increment()
			}
		}()
	}
	wg.Wait()
	report.TotalTime = time.Since(bar.StartTime())
	bar.Finish()
	runtime.ReadMemStats(&report.MemStatsEnd)

	collect(report, pool)

	log.Println("Simulation finished.")
	fmt.Println("\n\n--- Stress Test Report ---")
	if err := report.Generate(os.Stdout); err != nil {
		log.Fatalf("Failed to generate report: %v", err)
	}
	fmt.Println("--- End of Report ---")
}

// patternTargets encodes n distinct links as QR bitmaps.
func patternTargets(n int) ([]*bitmap.Bitmap, error) {
	enc := qr.NewEncoder()
	targets := make([]*bitmap.Bitmap, 0, n)
	for i := 0; i < n; i++ {
		bm, err := enc.Encode(fmt.Sprintf("https://blockfall.example/%06d", i))
		if err != nil {
			return nil, err
		}
		targets = append(targets, bm)
	}
	return targets, nil
}

func collect(r *Report, pool []*worker) {
	var samples []time.Duration
	systems := map[string]*SystemRow{}
	var order []string

	for _, w := range pool {
		samples = append(samples, w.samples...)
		r.PatternsDone += w.patterns

		for _, ff := range w.frees {
			st := ff.Stats()
			r.Landings += st.Landings
			r.Resets += st.Resets
			r.RowsPerSim = append(r.RowsPerSim, float64(st.RowsCleared))
			r.RowsCleared += st.RowsCleared
		}
		for _, s := range w.seqs {
			r.CellsPlaced += s.Stats().CellsPlaced
		}

		for _, sys := range w.scheduler.GetStats().Systems {
			row, ok := systems[sys.Name]
			if !ok {
				row = &SystemRow{Name: sys.Name}
				systems[sys.Name] = row
				order = append(order, sys.Name)
			}
			row.Executions += sys.ExecutionCount
			row.Total += sys.TotalDuration
			row.Max = max(row.Max, sys.MaxDuration)
		}
	}

	r.StepTime = Stats{Samples: samples}
	r.StepTime.Finalize()
	for _, name := range order {
		r.Systems = append(r.Systems, *systems[name])
	}
}
