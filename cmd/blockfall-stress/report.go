package main

import (
	"fmt"
	"io"
	"runtime"
	"sort"
	"strings"
	"text/template"
	"time"

	"github.com/mattn/go-runewidth"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gonum.org/v1/gonum/stat"
)

type Report struct {
	// Configuration
	Duration time.Duration
	Frame    time.Duration
	Frames   int
	Sims     int
	Patterns int
	Workers  int

	// Results
	TotalTime     time.Duration
	StepTime      Stats
	Landings      int64
	RowsCleared   int64
	Resets        int64
	PatternsDone  int64
	CellsPlaced   int64
	RowsPerSim    []float64
	Systems       []SystemRow
	MemStatsStart runtime.MemStats
	MemStatsEnd   runtime.MemStats
}

type SystemRow struct {
	Name       string
	Executions int64
	Total      time.Duration
	Max        time.Duration
}

func (r SystemRow) Avg() time.Duration {
	if r.Executions == 0 {
		return 0
	}
	return r.Total / time.Duration(r.Executions)
}

type Stats struct {
	Min     time.Duration
	Max     time.Duration
	Avg     time.Duration
	StdDev  time.Duration
	P50     time.Duration
	P99     time.Duration
	Samples []time.Duration
}

func (s *Stats) Finalize() {
	if len(s.Samples) == 0 {
		return
	}

	xs := make([]float64, len(s.Samples))
	for i, sample := range s.Samples {
		xs[i] = float64(sample)
	}
	sort.Float64s(xs)

	s.Min = time.Duration(xs[0])
	s.Max = time.Duration(xs[len(xs)-1])
	mean, std := stat.MeanStdDev(xs, nil)
	s.Avg = time.Duration(mean)
	if len(xs) > 1 {
		s.StdDev = time.Duration(std)
	}
	s.P50 = time.Duration(stat.Quantile(0.5, stat.Empirical, xs, nil))
	s.P99 = time.Duration(stat.Quantile(0.99, stat.Empirical, xs, nil))
}

// RowsMeanStdDev summarizes rows cleared per free-fall simulator.
func (r *Report) RowsMeanStdDev() (float64, float64) {
	switch len(r.RowsPerSim) {
	case 0:
		return 0, 0
	case 1:
		return r.RowsPerSim[0], 0
	}
	return stat.MeanStdDev(r.RowsPerSim, nil)
}

// SystemTable renders the per-system rows as an aligned text table.
func (r *Report) SystemTable() string {
	header := []string{"System", "Executions", "Avg", "Max"}
	rows := [][]string{header}
	p := message.NewPrinter(language.English)
	for _, sys := range r.Systems {
		rows = append(rows, []string{sys.Name, p.Sprintf("%d", sys.Executions), sys.Avg().String(), sys.Max.String()})
	}
	return table(rows)
}

func table(rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}
	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}

	var b strings.Builder
	for i, row := range rows {
		b.WriteString("|")
		for j, cell := range row {
			b.WriteString(" " + runewidth.FillRight(cell, widths[j]) + " |")
		}
		b.WriteString("\n")
		if i == 0 {
			b.WriteString("|")
			for _, w := range widths {
				b.WriteString(strings.Repeat("-", w+2) + "|")
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (r *Report) Generate(w io.Writer) error {
	const reportTemplate = `
# Blockfall Stress Test Report

## Test Configuration
- **Simulated Duration:** {{.Duration}} ({{num .Frames}} frames of {{.Frame}})
- **Free-fall Simulators:** {{.Sims}}
- **Pattern Sequencers:** {{.Patterns}}
- **Workers:** {{.Workers}}

## Performance Results
- **Total Test Time:** {{.TotalTime}}
- **Step Time (per worker frame):**
  - **Avg:** {{.StepTime.Avg}} (stddev {{.StepTime.StdDev}})
  - **Min:** {{.StepTime.Min}}
  - **P50:** {{.StepTime.P50}}
  - **P99:** {{.StepTime.P99}}
  - **Max:** {{.StepTime.Max}}

## Simulation Totals
- **Landings:** {{num .Landings}}
- **Rows Cleared:** {{num .RowsCleared}} ({{rows .}} per simulator)
- **Overflow Resets:** {{num .Resets}}
- **Patterns Completed:** {{num .PatternsDone}}
- **Cells Placed:** {{num .CellsPlaced}}

## Systems
{{.SystemTable}}
## Memory Usage
- Heap Alloc:     {{mb .MemStatsStart.HeapAlloc}} MB (start) -> {{mb .MemStatsEnd.HeapAlloc}} MB (end)
- Total Alloc:    {{mb .MemStatsStart.TotalAlloc}} MB (start) -> {{mb .MemStatsEnd.TotalAlloc}} MB (end)
- Num GC:         {{.MemStatsStart.NumGC}} (start) -> {{.MemStatsEnd.NumGC}} (end) -> delta: {{usub .MemStatsEnd.NumGC .MemStatsStart.NumGC}}
`

	p := message.NewPrinter(language.English)
	fm := template.FuncMap{
		"num": func(v any) string {
			return p.Sprintf("%d", v)
		},
		"mb": func(v uint64) string {
			return fmt.Sprintf("%.2f", float64(v)/1024/1024)
		},
		"usub": func(a, b uint32) uint32 {
			return a - b
		},
		"rows": func(r *Report) string {
			mean, std := r.RowsMeanStdDev()
			return p.Sprintf("%.1f ± %.1f", mean, std)
		},
	}

	tmpl, err := template.New("report").Funcs(fm).Parse(reportTemplate)
	if err != nil {
		return err
	}

	return tmpl.Execute(w, r)
}
