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

// Package errs defines the leveled error type shared by the bitmap loaders,
// the configuration layer and the HTTP service.
package errs

import (
	"errors"
	"fmt"
)

// Level tells the caller how serious an error is.
type Level uint8

const (
	None Level = iota
	Fatal
	Warn
	Log
)

var levelNames = map[Level]string{
	None:  "",
	Fatal: "fatal",
	Warn:  "warn",
	Log:   "log",
}

func (l Level) String() string {
	return levelNames[l]
}

// E is the error type used across the module. Warn marks bad input the caller
// can fix; Fatal marks everything else.
type E struct {
	Message string
	Extra   string
	Cause   error
	Level   Level
}

func (e *E) Error() string {
	msg := e.Message
	if e.Extra != "" {
		msg += " | " + e.Extra
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *E) Unwrap() error { return e.Cause }

func New(level Level, msg string) *E {
	return &E{Message: msg, Level: level}
}

func NewFatal(msg string) *E { return New(Fatal, msg) }

func NewWarn(msg string) *E { return New(Warn, msg) }

func Fatalf(format string, a ...any) *E {
	return NewFatal(fmt.Sprintf(format, a...))
}

func Warnf(format string, a ...any) *E {
	return NewWarn(fmt.Sprintf(format, a...))
}

// NewWithExtra is New with additional context that stays out of the main message.
func NewWithExtra(level Level, msg, extra string) *E {
	e := New(level, msg)
	e.Extra = extra
	return e
}

// Wrap annotates cause with msg. The level of an *E cause is kept; any other
// cause is treated as Fatal.
func Wrap(cause error, msg string) *E {
	level := Fatal
	if e, ok := AsErr(cause); ok {
		level = e.Level
	}
	r := New(level, msg)
	r.Cause = cause
	return r
}

// AsErr finds the first *E in err's chain.
func AsErr(err error) (*E, bool) {
	var e *E
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// LevelOf returns the level of the first *E in err's chain, or Fatal for
// foreign errors and None for nil.
func LevelOf(err error) Level {
	if err == nil {
		return None
	}
	if e, ok := AsErr(err); ok {
		return e.Level
	}
	return Fatal
}
