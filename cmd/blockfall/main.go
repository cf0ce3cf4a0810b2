// Command blockfall shows the free-fall background in a window and builds QR
// patterns fetched from a blockfall-server. It also builds for the browser
// with GOOS=js GOARCH=wasm.
package main

import (
	"errors"
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/plus3/blockfall/bitmap/httpsource"
	"github.com/plus3/blockfall/config"
	"github.com/plus3/blockfall/logger"
	"github.com/plus3/blockfall/render"
	"github.com/plus3/blockfall/render/ebitenview"
)

func main() {
	configPath := flag.String("config", "", "YAML file read over the embedded defaults.")
	code := flag.String("code", "", "Short code whose QR pattern Q builds. Built at start when set.")
	server := flag.String("server", "", "Server URL, overrides client.server_url.")
	logMode := flag.String("log", "dev", "Log mode: dev, prod or silence.")
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
	mode, err := logger.ParseMode(*logMode)
	if err != nil {
		log.Fatal(err)
	}

	host := render.NewHost(render.HostConfig{
		FreeFall: cfg.FreeFall.Engine(nil),
		Pattern:  cfg.Pattern.Engine(nil),
		Source:   httpsource.New(cfg.Client.ServerURL),
		Log:      logger.New(mode),
	})
	defer host.Close()
	if *code != "" {
		host.RequestPattern(*code)
	}

	w, h := host.Size()
	ebiten.SetWindowSize(w, h+ebitenview.CaptionHeight)
	ebiten.SetWindowTitle("blockfall")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(ebitenview.NewGame(host, *code)); err != nil && !errors.Is(err, ebiten.Termination) {
		log.Fatal(err)
	}
}
