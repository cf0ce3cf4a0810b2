// Command blockfall-term runs blockfall in a terminal.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"

	"github.com/gdamore/tcell/v2"
	"github.com/plus3/blockfall/bitmap/httpsource"
	"github.com/plus3/blockfall/config"
	"github.com/plus3/blockfall/engine"
	"github.com/plus3/blockfall/logger"
	"github.com/plus3/blockfall/render"
	"github.com/plus3/blockfall/render/termview"
)

func main() {
	configPath := flag.String("config", "", "YAML file read over the embedded defaults.")
	code := flag.String("code", "", "Short code whose QR pattern q builds. Built at start when set.")
	server := flag.String("server", "", "Server URL, overrides client.server_url.")
	sound := flag.Bool("sound", false, "Play audio cues for landings and cleared rows.")
	logFile := flag.String("log-file", "", "Write logs here; the terminal is owned by the board.")
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

	var logOut io.Writer = io.Discard
	if *logFile != "" {
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			log.Fatalf("log file: %v", err)
		}
		defer f.Close()
		logOut = f
	}
	lg := slog.New(logger.NewHandler(logger.Prod, logOut))

	var listener engine.Listener
	if *sound {
		s, err := termview.NewSound()
		if err != nil {
			lg.Warn("audio unavailable", slog.Any("err", err))
		} else {
			defer s.Close()
			listener = s.Listener()
		}
	}

	host := render.NewHost(render.HostConfig{
		FreeFall: cfg.FreeFall.Engine(nil),
		Pattern:  cfg.Pattern.Engine(nil),
		Source:   httpsource.New(cfg.Client.ServerURL),
		Log:      lg,
		Listener: listener,
	})
	defer host.Close()
	if *code != "" {
		host.RequestPattern(*code)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer screen.Fini()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := termview.NewApp(screen, host, *code).Run(ctx); err != nil {
		lg.Error("terminal loop", slog.Any("err", err))
	}
}
