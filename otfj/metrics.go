// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package otfj

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsDispatch adds metrics collection to dispatches. It records a count of
// dispatches, their duration in seconds, the number of indices each one
// covered, and a count of dispatches that panicked.
func MetricsDispatch(metricName string, dispatch DispatchFunc) DispatchFunc {
	meter := otel.GetMeterProvider().Meter("otfj")

	dispatchCounter, _ := meter.Int64Counter(metricName+".count",
		metric.WithDescription("Number of dispatches"))
	dispatchDuration, _ := meter.Float64Histogram(metricName+".duration",
		metric.WithDescription("Dispatch duration"),
		metric.WithUnit("s"))
	dispatchIndices, _ := meter.Int64Histogram(metricName+".indices",
		metric.WithDescription("Number of indices per dispatch"))
	errorCounter, _ := meter.Int64Counter(metricName+".errors",
		metric.WithDescription("Number of dispatches that panicked"))

	return func(ctx context.Context, taskCount uint32, task TaskFunc) {
		startTime := time.Now()
		attrs := metric.WithAttributes(attribute.Bool("nil_task", task == nil))

		dispatchCounter.Add(ctx, 1, attrs)
		dispatchIndices.Record(ctx, int64(taskCount), attrs)

		didPanic := true
		defer func() {
			dispatchDuration.Record(ctx, time.Since(startTime).Seconds(), attrs)
			if didPanic {
				errorCounter.Add(ctx, 1, attrs)
			}
		}()

		dispatch(ctx, taskCount, task)
		didPanic = false
	}
}
