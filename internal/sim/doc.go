// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

// Package sim provides a way to generate, estimate, and execute simulated
// forkjoin workloads. A plan is a pool configuration followed by a sequence of
// dispatch cycles, each with a task count and a cost for every index. The
// estimator replays a plan as a discrete-event simulation of the workers to
// predict which indices each worker visits, in what order, and the earliest
// point at which each dispatch could possibly complete. Run executes the same
// plan on a real pool so the two can be compared.
package sim
