// Command blockfall-debug is blockfall with Dear ImGui windows for scheduler
// timings and simulator state.
package main

import (
	"errors"
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/plus3/blockfall/bitmap/httpsource"
	"github.com/plus3/blockfall/config"
	"github.com/plus3/blockfall/engine"
	"github.com/plus3/blockfall/logger"
	"github.com/plus3/blockfall/render"
	"github.com/plus3/blockfall/render/debugui"
	debugui_ebiten "github.com/plus3/blockfall/render/debugui/ebiten"
	"github.com/plus3/blockfall/render/ebitenview"
)

// overlay runs the imgui windows on their own scheduler between the
// backend's BeginFrame and EndFrame.
type overlay struct {
	backend   debugui_ebiten.ImguiBackend
	scheduler *engine.Scheduler
	imgui     *debugui.ImguiSystem
}

func (o *overlay) Update() {
	o.backend.BeginFrame()
	o.scheduler.Once(nil)
	o.backend.EndFrame()
}

func (o *overlay) Draw(screen *ebiten.Image) {
	o.backend.Draw(screen)
}

func (o *overlay) Layout(outsideWidth, outsideHeight int) {
	o.backend.Layout(outsideWidth, outsideHeight)
}

func (o *overlay) WantsKeyboard() bool {
	return o.imgui.InputState.WantCaptureKeyboard
}

func main() {
	configPath := flag.String("config", "", "YAML file read over the embedded defaults.")
	code := flag.String("code", "", "Initial short code for the pattern panel.")
	server := flag.String("server", "", "Server URL, overrides client.server_url.")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if *server != "" {
		cfg.Client.ServerURL = *server
	}
	if *code == "" {
		*code = cfg.Client.Code
	}

	host := render.NewHost(render.HostConfig{
		FreeFall: cfg.FreeFall.Engine(nil),
		Pattern:  cfg.Pattern.Engine(nil),
		Source:   httpsource.New(cfg.Client.ServerURL),
		Log:      logger.New(logger.Dev),
	})
	defer host.Close()

	ui := &overlay{
		backend:   debugui_ebiten.New("blockfall debug", 1280, 720),
		scheduler: engine.NewScheduler(nil),
		imgui:     &debugui.ImguiSystem{},
	}
	ui.scheduler.Register(ui.imgui)

	freeSched, patternSched := host.Schedulers()
	perf := debugui.NewPerformanceStats(120)
	timer := debugui.NewFrameTimer(nil)
	ui.imgui.Add(debugui.NewHostPanel(host, *code).Render)
	ui.imgui.Add(func() {
		perf.Render(timer.Tick(),
			debugui.NamedScheduler{Name: "free-fall", Scheduler: freeSched},
			debugui.NamedScheduler{Name: "pattern", Scheduler: patternSched},
			debugui.NamedScheduler{Name: "overlay", Scheduler: ui.scheduler},
		)
	})

	game := ebitenview.NewGame(host, *code)
	game.Overlay = ui

	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		log.Fatal(err)
	}
}
