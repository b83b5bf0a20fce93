// Package search implements the brute-force preimage search shared by the
// storage and account miners. The engine is generic over the counter →
// candidate derivation, which the caller supplies; the engine only
// partitions the counter space, hashes, and races workers to the first
// valid match.
package search

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/common"

	"github.com/CPerezz/worst-case-miner/internal/nibble"
)

// ErrExhausted is returned when a bounded search consumes its full attempt
// budget without a match. It is an outcome, not a failure; callers decide
// whether to retry with a larger budget or a different base.
var ErrExhausted = errors.New("search: attempt budget exhausted without a match")

// foundCheckInterval is how many attempts a worker runs between reads of
// the shared found flag. Bounds the overrun after a peer wins.
const foundCheckInterval = 64

// Task is the immutable input to one search invocation.
type Task struct {
	// Target is the digest prefix candidates are matched against.
	Target [32]byte
	// RequiredNibbles is how many leading nibbles of Target a candidate's
	// digest must reproduce (0..64).
	RequiredNibbles int
	// BaseCounter is where the counter space starts. Worker i examines
	// BaseCounter+i, BaseCounter+i+W, ... for W workers.
	BaseCounter uint64
	// MaxAttempts bounds the total attempts across all workers.
	// 0 means search until a match is found.
	MaxAttempts uint64
}

// Candidate is one derived preimage and the digest it produced. Which
// fields besides Digest and Counter are populated depends on the deriver:
// storage mining fills Address, CREATE2 mining fills Salt and Address.
type Candidate struct {
	Address common.Address
	Salt    [32]byte
	Digest  common.Hash
	Counter uint64
}

// DeriveFunc maps a counter to a candidate. Instances are single-worker
// owned and may reuse internal buffers between calls.
type DeriveFunc func(counter uint64) Candidate

// DeriverFactory builds one DeriveFunc per worker, so each worker gets
// exclusively owned hashers and buffers.
type DeriverFactory func() DeriveFunc

// Outcome is a successful search result.
type Outcome struct {
	Candidate Candidate
	// Attempts is the total candidates examined across all workers,
	// including the bounded overrun after the winner set the flag.
	Attempts uint64
}

// Engine is a CPU search engine with a fixed worker count. Workers are
// spawned per Search call and joined before it returns; nothing is shared
// across calls.
type Engine struct {
	workers  int
	attempts atomic.Uint64
}

// NewEngine creates an engine with the given worker count, defaulting to
// the host core count when workers <= 0.
func NewEngine(workers int) *Engine {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Engine{workers: workers}
}

// Workers returns the engine's worker count.
func (e *Engine) Workers() int {
	return e.workers
}

// Attempts returns a snapshot of the attempt counter for the in-flight
// (or most recent) Search call. Safe to read concurrently; used for
// progress logging.
func (e *Engine) Attempts() uint64 {
	return e.attempts.Load()
}

// Search partitions the counter space across the worker pool and returns
// the first candidate whose digest matches the task's target prefix.
// Multiple simultaneous matches are resolved by a single compare-and-swap
// on the shared found flag; exactly one wins, the rest are discarded.
func (e *Engine) Search(task Task, newDeriver DeriverFactory) (*Outcome, error) {
	if task.RequiredNibbles < 0 || task.RequiredNibbles > nibble.DigestNibbles {
		return nil, fmt.Errorf("search: required nibbles %d out of range [0, %d]", task.RequiredNibbles, nibble.DigestNibbles)
	}

	var (
		found  atomic.Bool
		winner atomic.Pointer[Candidate]
		wg     sync.WaitGroup
	)
	e.attempts.Store(0)

	// Per-worker slice of the total budget, rounded up so the pool never
	// under-spends the configured budget.
	workers := uint64(e.workers)
	perWorker := uint64(0)
	if task.MaxAttempts > 0 {
		perWorker = (task.MaxAttempts + workers - 1) / workers
	}

	for i := uint64(0); i < workers; i++ {
		wg.Add(1)
		go func(offset uint64) {
			defer wg.Done()
			derive := newDeriver()
			counter := task.BaseCounter + offset

			var n uint64
			for ; perWorker == 0 || n < perWorker; n++ {
				if n%foundCheckInterval == 0 && found.Load() {
					break
				}
				cand := derive(counter)
				if nibble.MatchPrefix(cand.Digest[:], task.Target[:], task.RequiredNibbles) {
					n++
					if found.CompareAndSwap(false, true) {
						c := cand
						winner.Store(&c)
					}
					break
				}
				counter += workers
			}
			e.attempts.Add(n)
		}(i)
	}
	wg.Wait()

	if w := winner.Load(); w != nil {
		return &Outcome{Candidate: *w, Attempts: e.attempts.Load()}, nil
	}
	return nil, ErrExhausted
}
