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

// Package config loads the YAML settings shared by the blockfall commands.
// An embedded default.yaml supplies every value; a file passed to Load
// overrides whatever it names.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"io"
	"os"
	"time"

	"github.com/plus3/blockfall/engine"
	"github.com/plus3/blockfall/errs"
	"github.com/plus3/blockfall/logger"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

type Config struct {
	FreeFall FreeFall `yaml:"freefall"`
	Pattern  Pattern  `yaml:"pattern"`
	Server   Server   `yaml:"server"`
	Client   Client   `yaml:"client"`
}

type FreeFall struct {
	Cols         int           `yaml:"cols"`
	Rows         int           `yaml:"rows"`
	CellSize     int           `yaml:"cell_size"`
	FallInterval time.Duration `yaml:"fall_interval"`
	// Seed fixes the piece sequence. Zero picks a random seed.
	Seed uint64 `yaml:"seed"`
}

type Pattern struct {
	CellSize     int           `yaml:"cell_size"`
	DropInterval time.Duration `yaml:"drop_interval"`
}

type Server struct {
	Addr       string `yaml:"addr"`
	BaseURL    string `yaml:"base_url"`
	CodeLength int    `yaml:"code_length"`
	LogMode    string `yaml:"log_mode"`
}

type Client struct {
	ServerURL string `yaml:"server_url"`
	Code      string `yaml:"code"`
}

// Default returns the embedded configuration.
func Default() *Config {
	cfg, err := decode(&Config{}, defaultYAML)
	if err != nil {
		panic("config: embedded default.yaml: " + err.Error())
	}
	return cfg
}

// Load reads path over the defaults and validates the result. An empty path
// yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Wrap(err, "config: read "+path)
	}
	return Parse(cfg, raw)
}

// Parse decodes raw over base and validates the result.
func Parse(base *Config, raw []byte) (*Config, error) {
	cfg, err := decode(base, raw)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(into *Config, raw []byte) (*Config, error) {
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(into); err != nil && !errors.Is(err, io.EOF) {
		return nil, errs.Warnf("config: decode: %v", err)
	}
	return into, nil
}

func invalid(field string) error {
	return errs.NewWithExtra(errs.Warn, "invalid config", field)
}

// Validate rejects values no simulator or server could run with.
func (c *Config) Validate() error {
	f := c.FreeFall
	switch {
	case f.Cols < 4:
		// The I piece is four cells wide.
		return invalid("freefall.cols")
	case f.Rows < 1:
		return invalid("freefall.rows")
	case f.CellSize < 3:
		return invalid("freefall.cell_size")
	case f.FallInterval <= 0:
		return invalid("freefall.fall_interval")
	case c.Pattern.CellSize < 3:
		return invalid("pattern.cell_size")
	case c.Pattern.DropInterval <= 0:
		return invalid("pattern.drop_interval")
	case c.Server.CodeLength < 4 || c.Server.CodeLength > 16:
		return invalid("server.code_length")
	case c.Server.Addr == "":
		return invalid("server.addr")
	}
	if _, err := logger.ParseMode(c.Server.LogMode); err != nil {
		return invalid("server.log_mode")
	}
	return nil
}

// Engine maps the section onto a simulator configuration.
func (f FreeFall) Engine(listener engine.Listener) engine.FreeFallConfig {
	cfg := engine.FreeFallConfig{
		Cols:         f.Cols,
		Rows:         f.Rows,
		CellSize:     f.CellSize,
		FallInterval: f.FallInterval,
		Listener:     listener,
	}
	if f.Seed != 0 {
		cfg.Rand = engine.NewRand(f.Seed)
	}
	return cfg
}

func (p Pattern) Engine(listener engine.Listener) engine.SequencerConfig {
	return engine.SequencerConfig{
		CellSize:     p.CellSize,
		DropInterval: p.DropInterval,
		Listener:     listener,
	}
}

// Mode returns the parsed server log mode. Validate has already rejected
// unknown names.
func (s Server) Mode() logger.Mode {
	m, _ := logger.ParseMode(s.LogMode)
	return m
}
