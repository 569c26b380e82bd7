// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package forkjoin

import (
	"os"

	"github.com/petenewcomb/forkjoin-go/internal/barrier"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// A WaitStrategy determines how workers and the dispatching goroutine wait at
// the start and finish lines of each dispatch cycle. It is chosen once per
// pool, at construction.
type WaitStrategy int

const (
	// Block parks waiters on a condition variable. Idle pools consume no
	// processor time. This is the default.
	Block WaitStrategy = iota

	// Spin busy-polls, yielding the processor only after a short burst of
	// polls. Release latency is lowest but every waiting worker keeps a
	// processor busy, including while the pool is idle between dispatches.
	Spin
)

func (s WaitStrategy) String() string {
	switch s {
	case Block:
		return "block"
	case Spin:
		return "spin"
	default:
		return "invalid"
	}
}

func (s WaitStrategy) barrierStrategy() barrier.Strategy {
	switch s {
	case Block:
		return barrier.Block
	case Spin:
		return barrier.Spin
	default:
		panic("invalid wait strategy")
	}
}

// An Option configures a [Pool] at construction.
type Option func(*config)

type config struct {
	waitStrategy  WaitStrategy
	logger        *zap.Logger
	lockThreads   bool
	onWorkerStart func(worker int)
	onWorkerStop  func(worker int)
}

func defaultConfig() config {
	return config{
		waitStrategy: Block,
		logger:       defaultLogger(),
	}
}

// WithWaitStrategy selects how workers wait between phases.
func WithWaitStrategy(s WaitStrategy) Option {
	return func(c *config) {
		c.waitStrategy = s
	}
}

// WithLogger replaces the logger used for diagnostics. The default writes
// warnings and errors to standard error. A nil logger disables logging.
func WithLogger(logger *zap.Logger) Option {
	return func(c *config) {
		if logger == nil {
			logger = zap.NewNop()
		}
		c.logger = logger
	}
}

// WithLockedThreads wires each worker goroutine to its own operating system
// thread for the lifetime of the pool.
func WithLockedThreads() Option {
	return func(c *config) {
		c.lockThreads = true
	}
}

// WithWorkerHooks registers functions to be called on each worker goroutine as
// it starts and just before it exits. Either may be nil.
func WithWorkerHooks(onStart, onStop func(worker int)) Option {
	return func(c *config) {
		c.onWorkerStart = onStart
		c.onWorkerStop = onStop
	}
}

func defaultLogger() *zap.Logger {
	return newConsoleLogger(zapcore.Lock(os.Stderr))
}

// newConsoleLogger writes warnings and above to w, one human-readable line per
// entry.
func newConsoleLogger(w zapcore.WriteSyncer) *zap.Logger {
	encoderConfig := zap.NewDevelopmentEncoderConfig()
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		w,
		zapcore.WarnLevel,
	)
	return zap.New(core)
}
