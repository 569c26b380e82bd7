// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package otfj

import (
	forkjoin "github.com/petenewcomb/forkjoin-go"
)

// InstrumentedDispatch combines tracing, metrics, and logging for dispatches
// on p into a single DispatchFunc.
//
// Example:
//
//	dispatch := otfj.InstrumentedDispatch("resize-images", pool)
//	dispatch(ctx, uint32(len(images)), func(ctx context.Context, _ *sync.Mutex, i uint32) {
//		images[i] = resize(ctx, images[i])
//	})
func InstrumentedDispatch(operationName string, p *forkjoin.Pool) DispatchFunc {
	// Apply wrappers inside-out:
	// 1. First add logging
	loggedDispatch := LoggedDispatch(operationName, Bind(p))

	// 2. Then add metrics
	metricsDispatch := MetricsDispatch(operationName, loggedDispatch)

	// 3. Finally add tracing
	return TracedDispatch(operationName, metricsDispatch)
}
