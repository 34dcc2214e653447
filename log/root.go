// Copyright 2023 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

package log

import (
	"context"
	"log/slog"
	"sync/atomic"
)

var root atomic.Value

func init() {
	root.Store(&logger{slog.New(DiscardHandler())})
}

// SetDefault sets the default global logger.
func SetDefault(l Logger) {
	root.Store(l)
	if lg, ok := l.(*logger); ok {
		slog.SetDefault(lg.inner)
	}
}

// Root returns the root logger.
func Root() Logger {
	return root.Load().(Logger)
}

// New returns a new logger with the given context, bound to the root logger
// installed when New is called. Loggers created at package init time should
// use WithContext instead, so that a handler installed later still applies.
func New(ctx ...interface{}) Logger {
	return Root().New(ctx...)
}

// WithContext returns a logger that carries the given context and resolves
// the root logger on every call. It is the right choice for package-level
// logger variables, which are created before the process configures logging.
func WithContext(ctx ...interface{}) Logger {
	return &contextLogger{ctx: ctx}
}

type contextLogger struct {
	ctx []interface{}
}

func (c *contextLogger) resolve() Logger {
	return Root().New(c.ctx...)
}

func (c *contextLogger) With(ctx ...interface{}) Logger {
	return &contextLogger{ctx: append(append([]interface{}{}, c.ctx...), ctx...)}
}

func (c *contextLogger) New(ctx ...interface{}) Logger {
	return c.With(ctx...)
}

func (c *contextLogger) Log(level slog.Level, msg string, ctx ...interface{}) {
	c.resolve().Log(level, msg, ctx...)
}

func (c *contextLogger) Trace(msg string, ctx ...interface{}) {
	c.resolve().Trace(msg, ctx...)
}

func (c *contextLogger) Debug(msg string, ctx ...interface{}) {
	c.resolve().Debug(msg, ctx...)
}

func (c *contextLogger) Info(msg string, ctx ...interface{}) {
	c.resolve().Info(msg, ctx...)
}

func (c *contextLogger) Warn(msg string, ctx ...interface{}) {
	c.resolve().Warn(msg, ctx...)
}

func (c *contextLogger) Error(msg string, ctx ...interface{}) {
	c.resolve().Error(msg, ctx...)
}

func (c *contextLogger) Crit(msg string, ctx ...interface{}) {
	c.resolve().Crit(msg, ctx...)
}

func (c *contextLogger) Write(level slog.Level, msg string, attrs ...interface{}) {
	c.resolve().Write(level, msg, attrs...)
}

func (c *contextLogger) Enabled(ctx context.Context, level slog.Level) bool {
	return c.resolve().Enabled(ctx, level)
}

func (c *contextLogger) Handler() slog.Handler {
	return c.resolve().Handler()
}

// Trace is a convenient alias for Root().Trace.
func Trace(msg string, ctx ...interface{}) {
	Root().Write(LevelTrace, msg, ctx...)
}

// Debug is a convenient alias for Root().Debug.
func Debug(msg string, ctx ...interface{}) {
	Root().Write(slog.LevelDebug, msg, ctx...)
}

// Info is a convenient alias for Root().Info.
func Info(msg string, ctx ...interface{}) {
	Root().Write(slog.LevelInfo, msg, ctx...)
}

// Warn is a convenient alias for Root().Warn.
func Warn(msg string, ctx ...interface{}) {
	Root().Write(slog.LevelWarn, msg, ctx...)
}

// Error is a convenient alias for Root().Error.
func Error(msg string, ctx ...interface{}) {
	Root().Write(slog.LevelError, msg, ctx...)
}

// Crit is a convenient alias for Root().Crit.
func Crit(msg string, ctx ...interface{}) {
	Root().Crit(msg, ctx...)
}
