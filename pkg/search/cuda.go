//go:build cuda

/*
 * CUDA-accelerated storage-slot search.
 *
 * Build requirements:
 *   1. Compile the kernel into kernel/libkeccak_cuda.a (nvcc, sm_75+)
 *   2. Build with: go build -tags cuda
 */

package search

/*
#cgo LDFLAGS: -L${SRCDIR}/kernel -lkeccak_cuda -L/usr/local/cuda/lib64 -lcudart -lstdc++ -lm
#cgo CFLAGS: -I/usr/local/cuda/include

#include <stdbool.h>
#include <stdint.h>

// From kernel/libkeccak_cuda.a. Each device thread explores
// attempts_per_thread consecutive counters in its assigned sub-range,
// applying the same nibble-matching rule as the CPU engine, and races to
// set *found exactly once.
extern void cuda_mine_storage_slot(
    const uint8_t* target_prefix,
    int32_t required_nibbles,
    uint64_t base_slot,
    uint8_t* result_address,
    uint8_t* result_storage_key,
    bool* found,
    int32_t blocks,
    int32_t threads_per_block,
    uint64_t attempts_per_thread);
*/
import "C"

import (
	"unsafe"
)

// CUDAAvailable reports whether this binary was built with CUDA support.
func CUDAAvailable() bool {
	return true
}

// MineStorageSlot launches one kernel over the counter range starting at
// baseCounter and blocks until the device copies results back. The kernel
// derives holder addresses the same way the CPU storage deriver does and
// hashes with the slot-0 mapping layout. A false found flag means the
// launch geometry's budget was exhausted; callers relaunch with an
// advanced base counter.
func (e *CUDAEngine) MineStorageSlot(target [32]byte, requiredNibbles int, baseCounter uint64) (*Outcome, error) {
	var (
		addr  [20]byte
		key   [32]byte
		found C.bool
	)

	C.cuda_mine_storage_slot(
		(*C.uint8_t)(unsafe.Pointer(&target[0])),
		C.int32_t(requiredNibbles),
		C.uint64_t(baseCounter),
		(*C.uint8_t)(unsafe.Pointer(&addr[0])),
		(*C.uint8_t)(unsafe.Pointer(&key[0])),
		&found,
		C.int32_t(e.geom.Blocks),
		C.int32_t(e.geom.ThreadsPerBlock),
		C.uint64_t(e.geom.AttemptsPerThread),
	)

	if !bool(found) {
		return nil, ErrExhausted
	}

	out := &Outcome{Attempts: e.geom.Budget()}
	copy(out.Candidate.Address[:], addr[:])
	copy(out.Candidate.Digest[:], key[:])
	return out, nil
}
