//go:build !cuda

package search

// CUDAAvailable reports whether this binary was built with CUDA support.
func CUDAAvailable() bool {
	return false
}

// MineStorageSlot fails with ErrCUDAUnavailable on non-cuda builds.
func (e *CUDAEngine) MineStorageSlot(target [32]byte, requiredNibbles int, baseCounter uint64) (*Outcome, error) {
	return nil, ErrCUDAUnavailable
}
