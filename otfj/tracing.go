// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package otfj

import (
	"context"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracedDispatch adds a span with the given operation name around each
// dispatch. The span's context is what tasks receive, so spans they start are
// children of the dispatch span.
func TracedDispatch(operationName string, dispatch DispatchFunc) DispatchFunc {
	return func(ctx context.Context, taskCount uint32, task TaskFunc) {
		tracer := otel.Tracer("otfj")
		ctx, span := tracer.Start(ctx, operationName,
			trace.WithAttributes(
				attribute.Int64("forkjoin.task_count", int64(taskCount)),
				attribute.Bool("forkjoin.nil_task", task == nil),
			))
		defer span.End()

		defer func() {
			if r := recover(); r != nil {
				span.SetStatus(codes.Error, fmt.Sprint(r))
				panic(r)
			}
		}()

		dispatch(ctx, taskCount, task)
	}
}

// TracedTask adds a span with the given operation name around each
// invocation of task. Spans are per index, so reserve this for tasks whose
// indices are expensive relative to the cost of a span. Returns nil if task is
// nil.
func TracedTask(operationName string, task TaskFunc) TaskFunc {
	if task == nil {
		return nil
	}
	return func(ctx context.Context, mu *sync.Mutex, index uint32) {
		tracer := otel.Tracer("otfj")
		ctx, span := tracer.Start(ctx, operationName,
			trace.WithAttributes(attribute.Int64("forkjoin.index", int64(index))))
		defer span.End()

		task(ctx, mu, index)
	}
}
