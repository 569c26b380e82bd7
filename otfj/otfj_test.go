// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package otfj_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	forkjoin "github.com/petenewcomb/forkjoin-go"
	"github.com/petenewcomb/forkjoin-go/otfj"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newSpanRecorder(t *testing.T) *tracetest.SpanRecorder {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})
	return sr
}

func observeGlobalLogger(t *testing.T) *observer.ObservedLogs {
	core, logs := observer.New(zapcore.DebugLevel)
	t.Cleanup(zap.ReplaceGlobals(zap.New(core)))
	return logs
}

func TestBindPropagatesContext(t *testing.T) {
	chk := require.New(t)
	p := forkjoin.NewPool(3)
	defer p.Close()

	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "value")

	var seen atomic.Uint32
	otfj.Bind(p)(ctx, 20, func(ctx context.Context, _ *sync.Mutex, _ uint32) {
		if ctx.Value(key{}) == "value" {
			seen.Add(1)
		}
	})
	chk.Equal(uint32(20), seen.Load())
}

func TestBindPassesNilTask(t *testing.T) {
	chk := require.New(t)
	core, logs := observer.New(zapcore.ErrorLevel)
	p := forkjoin.NewPool(2, forkjoin.WithLogger(zap.New(core)))
	defer p.Close()

	otfj.Bind(p)(context.Background(), 5, nil)
	chk.Equal(1, logs.FilterMessage("Invalid function given to dispatch call").Len())
	chk.Zero(p.Stats().Dispatches)
}

func TestWrappedNilTaskReachesPoolAsNil(t *testing.T) {
	chk := require.New(t)
	chk.Nil(otfj.TracedTask("x", nil))
	chk.Nil(otfj.PropagateTask(context.Background(), nil))

	core, logs := observer.New(zapcore.ErrorLevel)
	p := forkjoin.NewPool(2, forkjoin.WithLogger(zap.New(core)))
	defer p.Close()

	dispatch := otfj.InstrumentedDispatch("traced-nil", p)
	dispatch(context.Background(), 5, otfj.TracedTask("x", nil))
	chk.Equal(1, logs.FilterMessage("Invalid function given to dispatch call").Len())
	chk.Zero(p.Stats().Dispatches)

	// The pool is still usable afterward
	var total atomic.Uint32
	dispatch(context.Background(), 5, otfj.TracedTask("x", func(context.Context, *sync.Mutex, uint32) {
		total.Add(1)
	}))
	chk.Equal(uint32(5), total.Load())
	chk.Equal(uint64(1), p.Stats().Dispatches)
}

func TestTracedDispatchParentsTaskSpans(t *testing.T) {
	chk := require.New(t)
	sr := newSpanRecorder(t)

	p := forkjoin.NewPool(2)
	defer p.Close()

	dispatch := otfj.TracedDispatch("square", otfj.Bind(p))
	dispatch(context.Background(), 4, otfj.TracedTask("square-index",
		func(context.Context, *sync.Mutex, uint32) {}))

	spans := sr.Ended()
	chk.Len(spans, 5)

	var parent sdktrace.ReadOnlySpan
	for _, s := range spans {
		if s.Name() == "square" {
			parent = s
		}
	}
	chk.NotNil(parent)
	chk.Contains(parent.Attributes(), attribute.Int64("forkjoin.task_count", 4))

	for _, s := range spans {
		if s == parent {
			continue
		}
		chk.Equal("square-index", s.Name())
		chk.Equal(parent.SpanContext().SpanID(), s.Parent().SpanID())
		chk.Equal(parent.SpanContext().TraceID(), s.SpanContext().TraceID())
	}
}

func TestTracedDispatchRecordsPanic(t *testing.T) {
	chk := require.New(t)
	sr := newSpanRecorder(t)

	p := forkjoin.NewPool(1)
	p.Close()

	dispatch := otfj.TracedDispatch("closed", otfj.Bind(p))
	chk.PanicsWithValue("pool is closed", func() {
		dispatch(context.Background(), 1, func(context.Context, *sync.Mutex, uint32) {})
	})

	spans := sr.Ended()
	chk.Len(spans, 1)
	chk.Equal(codes.Error, spans[0].Status().Code)
	chk.Equal("pool is closed", spans[0].Status().Description)
}

func TestLoggedDispatch(t *testing.T) {
	chk := require.New(t)
	logs := observeGlobalLogger(t)

	p := forkjoin.NewPool(2)
	defer p.Close()

	otfj.LoggedDispatch("sum", otfj.Bind(p))(context.Background(), 7,
		func(context.Context, *sync.Mutex, uint32) {})

	chk.Equal(1, logs.FilterMessage("Starting dispatch").Len())
	completed := logs.FilterMessage("Dispatch completed").All()
	chk.Len(completed, 1)
	fields := completed[0].ContextMap()
	chk.Equal("sum", fields["operation"])
	chk.Equal("otfj", fields["component"])
	chk.Equal(uint32(7), fields["taskCount"])
}

func TestLoggedDispatchPanic(t *testing.T) {
	chk := require.New(t)
	logs := observeGlobalLogger(t)

	p := forkjoin.NewPool(1)
	p.Close()

	chk.Panics(func() {
		otfj.LoggedDispatch("closed", otfj.Bind(p))(context.Background(), 1,
			func(context.Context, *sync.Mutex, uint32) {})
	})
	entries := logs.FilterMessage("Dispatch panicked").All()
	chk.Len(entries, 1)
	chk.Equal(zapcore.ErrorLevel, entries[0].Level)
}

func TestInstrumentedDispatch(t *testing.T) {
	chk := require.New(t)
	sr := newSpanRecorder(t)
	logs := observeGlobalLogger(t)

	p := forkjoin.NewPool(4)
	defer p.Close()

	ctx, root := otel.Tracer("test").Start(context.Background(), "root")
	var sum atomic.Uint64
	otfj.InstrumentedDispatch("sum", p)(ctx, 100, func(ctx context.Context, _ *sync.Mutex, i uint32) {
		if trace.SpanContextFromContext(ctx).IsValid() {
			sum.Add(uint64(i))
		}
	})
	root.End()

	chk.Equal(uint64(4950), sum.Load())
	chk.Equal(1, logs.FilterMessage("Dispatch completed").Len())

	spans := sr.Ended()
	chk.Len(spans, 2)
	chk.Equal("sum", spans[0].Name())
	chk.Equal(root.SpanContext().SpanID(), spans[0].Parent().SpanID())
	chk.Equal(uint64(1), p.Stats().Dispatches)
}
