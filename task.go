// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package forkjoin

import (
	"sync"
)

// A TaskFunc is invoked once for every index of a dispatch. Any other inputs
// are expected to be provided by specifying the TaskFunc as a [function
// literal] that captures local variables via [lexical closure].
//
// Invocations for different indices run concurrently on different workers and
// in no particular order relative to each other, so a TaskFunc must be
// thread-safe with respect to anything it touches outside of its own index.
// The mutex passed to every invocation belongs to the pool and is shared by
// all workers; the pool never locks it itself, so its use is entirely up to
// the TaskFunc. Indices assigned to the same worker are visited in ascending
// order.
//
// A TaskFunc runs on a worker goroutine. If it panics, the whole program will
// terminate as per [Handling panics] in The Go Programming Language
// Specification. It must not call [Pool.Dispatch] on its own pool.
//
// [function literal]: https://go.dev/ref/spec#Function_literals
// [lexical closure]: https://en.wikipedia.org/wiki/Closure_(computer_programming)
// [Handling panics]: https://go.dev/ref/spec#Handling_panics
type TaskFunc = func(mu *sync.Mutex, index uint32)
