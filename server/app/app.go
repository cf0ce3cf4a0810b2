// Copyright 2025 Zintix Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package app runs long-lived components until a signal or a failure, then
// shuts them all down.
package app

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"
)

const ShutdownTimeout = 5 * time.Second

type Component interface {
	Run() error
	Shutdown(ctx context.Context) error
}

type App struct {
	comps []Component
	log   *slog.Logger
}

func New(log *slog.Logger, comps ...Component) *App {
	if log == nil {
		log = slog.Default()
	}
	return &App{comps: comps, log: log}
}

func (a *App) Register(c Component) {
	a.comps = append(a.comps, c)
}

// Run starts every component and blocks until ctx is done, SIGINT/SIGTERM
// arrives or a component returns. The first component error is returned.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, len(a.comps))
	for _, c := range a.comps {
		go func() {
			errCh <- c.Run()
		}()
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	select {
	case <-ctx.Done():
	case err = <-errCh:
	}
	a.shutdown(ShutdownTimeout)
	return err
}

func (a *App) shutdown(timeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	for _, c := range a.comps {
		if err := c.Shutdown(ctx); err != nil {
			a.log.Error("shutdown", slog.Any("err", err))
		}
	}
}
