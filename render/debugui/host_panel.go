package debugui

import (
	"fmt"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/blockfall/engine"
	"github.com/plus3/blockfall/render"
)

// HostPanel controls a render.Host and inspects both simulators.
type HostPanel struct {
	host *render.Host
	code string
}

func NewHostPanel(host *render.Host, code string) *HostPanel {
	return &HostPanel{host: host, code: code}
}

func (p *HostPanel) Render() {
	imgui.SetNextWindowPosV(imgui.NewVec2(10, 10), imgui.CondOnce, imgui.NewVec2(0, 0))
	imgui.SetNextWindowSizeV(imgui.NewVec2(320, 420), imgui.CondOnce)
	if !imgui.BeginV("Blockfall", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	imgui.Text(p.host.Caption())
	imgui.Separator()

	imgui.SetNextItemWidth(120)
	imgui.InputTextWithHint("##code", "short code", &p.code, imgui.InputTextFlagsNone, nil)
	imgui.SameLine()
	if imgui.Button("Build") && p.code != "" {
		p.host.RequestPattern(p.code)
	}
	imgui.SameLine()
	if imgui.Button("Free-fall") {
		p.host.ShowFreeFall()
	}

	if err := p.host.Err(); err != nil {
		imgui.TextColored(imgui.NewVec4(1.0, 0.3, 0.3, 1.0), err.Error())
	}

	if imgui.TreeNodeStr("Free-fall") {
		p.renderFreeFall(p.host.FreeFall())
		imgui.TreePop()
	}
	if imgui.TreeNodeStr("Pattern") {
		p.renderSequencer(p.host.Sequencer())
		imgui.TreePop()
	}

	imgui.End()
}

func (p *HostPanel) renderFreeFall(ff *engine.FreeFall) {
	paused := !ff.Running()
	if imgui.Checkbox("Paused", &paused) {
		p.host.TogglePause()
	}

	imgui.Text(fmt.Sprintf("State: %s", ff.State()))
	if piece, ok := ff.Active(); ok {
		imgui.Text(fmt.Sprintf("Piece: %s at (%d, %d)", piece.Shape.Name, piece.X, piece.Y))
	}

	st := ff.Stats()
	statsTable("FreeFallStats", [][2]string{
		{"Spawns", fmt.Sprint(st.Spawns)},
		{"Steps", fmt.Sprint(st.Steps)},
		{"Landings", fmt.Sprint(st.Landings)},
		{"Rows cleared", fmt.Sprint(st.RowsCleared)},
		{"Resets", fmt.Sprint(st.Resets)},
	})

	imgui.Text(ff.Grid().String())
}

func (p *HostPanel) renderSequencer(s *engine.Sequencer) {
	imgui.Text(fmt.Sprintf("State: %s", s.State()))

	total := len(s.Queue())
	done := total - s.Remaining()
	var progress float32
	if total > 0 {
		progress = float32(done) / float32(total)
	}
	imgui.ProgressBarV(progress, imgui.NewVec2(-1, 0), fmt.Sprintf("%d/%d columns", done, total))

	if batch, offset, ok := s.Active(); ok {
		imgui.Text(fmt.Sprintf("Column %d: %d cells at offset %d", batch.X, batch.Height(), offset))
	}

	st := s.Stats()
	statsTable("SequencerStats", [][2]string{
		{"Builds", fmt.Sprint(st.Builds)},
		{"Steps", fmt.Sprint(st.Steps)},
		{"Batches landed", fmt.Sprint(st.BatchesLanded)},
		{"Cells placed", fmt.Sprint(st.CellsPlaced)},
	})
}

func statsTable(id string, rows [][2]string) {
	const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg
	if !imgui.BeginTableV(id, 2, tableFlags, imgui.NewVec2(0, 0), 0) {
		return
	}
	imgui.TableSetupColumn("Counter")
	imgui.TableSetupColumn("Value")
	imgui.TableHeadersRow()
	for _, row := range rows {
		imgui.TableNextRow()
		imgui.TableNextColumn()
		imgui.Text(row[0])
		imgui.TableNextColumn()
		imgui.Text(row[1])
	}
	imgui.EndTable()
}
