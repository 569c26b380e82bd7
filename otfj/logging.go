// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package otfj

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// LoggedDispatch adds structured logging to dispatches. The start and
// completion of each dispatch are logged at debug level along with its task
// count and duration, using the global zap logger. A dispatch that panics is
// logged at error level before the panic continues.
func LoggedDispatch(operationName string, dispatch DispatchFunc) DispatchFunc {
	return func(ctx context.Context, taskCount uint32, task TaskFunc) {
		logger := zap.L()

		logger.Debug("Starting dispatch",
			zap.String("operation", operationName),
			zap.String("component", "otfj"),
			zap.Uint32("taskCount", taskCount))

		startTime := time.Now()
		didPanic := true
		defer func() {
			duration := time.Since(startTime)
			if didPanic {
				logger.Error("Dispatch panicked",
					zap.String("operation", operationName),
					zap.String("component", "otfj"),
					zap.Uint32("taskCount", taskCount),
					zap.Duration("duration", duration))
			} else {
				logger.Debug("Dispatch completed",
					zap.String("operation", operationName),
					zap.String("component", "otfj"),
					zap.Uint32("taskCount", taskCount),
					zap.Duration("duration", duration))
			}
		}()

		dispatch(ctx, taskCount, task)
		didPanic = false
	}
}
