// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package forkjoin

type constError string

func (e constError) Error() string {
	return string(e)
}

// ErrNilTask is reported through the pool's logger when [Pool.Dispatch] is
// called with a nil [TaskFunc].
const ErrNilTask = constError("invalid function given to dispatch call")
