// Package executor provides the sync execution strategies behind the
// driven.SyncExecutor port.
//
// Sequential runs every unit inline and returns a finished batch, which
// suits CLI invocations. Batch fans units out onto a bounded worker pool
// and returns immediately with a batch id to poll, which suits the
// scheduler.
package executor
