// Command blockfall-server runs the URL shortener and serves QR bitmaps of its
// short links to blockfall clients.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"

	"github.com/plus3/blockfall/config"
	"github.com/plus3/blockfall/logger"
	"github.com/plus3/blockfall/server/api"
	"github.com/plus3/blockfall/server/app"
	"github.com/plus3/blockfall/server/netsvr"
	"github.com/plus3/blockfall/server/shortener"
)

func main() {
	configPath := flag.String("config", "", "YAML file read over the embedded defaults.")
	addr := flag.String("addr", "", "Listen address, overrides server.addr.")
	baseURL := flag.String("base-url", "", "Public base URL of short links, overrides server.base_url.")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *baseURL != "" {
		cfg.Server.BaseURL = *baseURL
	}

	lg, handler := logger.NewAsync(1024, cfg.Server.Mode())
	defer handler.Close()

	svc := shortener.NewService(shortener.NewMemoryStore(), shortener.Config{
		BaseURL:    cfg.Server.BaseURL,
		CodeLength: cfg.Server.CodeLength,
	})

	srv := netsvr.NewChiServer(cfg.Server.Addr)
	api.RegisterRoutes(srv, api.NewHandler(svc, lg))

	lg.Info("listening",
		slog.String("addr", srv.Address()),
		slog.String("base_url", cfg.Server.BaseURL),
		slog.String("log_mode", cfg.Server.Mode().String()),
	)
	if err := app.New(lg, srv).Run(context.Background()); err != nil {
		lg.Error("server stopped", slog.Any("err", err))
	}
	if n := handler.Dropped(); n > 0 {
		log.Printf("dropped %d log records", n)
	}
}
