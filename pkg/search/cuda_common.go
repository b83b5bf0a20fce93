package search

import "errors"

// ErrCUDAUnavailable is returned by CUDA engine calls when the binary was
// built without the cuda tag. The engine never silently falls back to the
// CPU path; that substitution is the driver's decision.
var ErrCUDAUnavailable = errors.New("search: CUDA support not compiled in, rebuild with -tags cuda")

// Geometry is the kernel launch configuration.
type Geometry struct {
	Blocks            int
	ThreadsPerBlock   int
	AttemptsPerThread uint64
}

// DefaultGeometry matches the kernel's tuned launch configuration.
var DefaultGeometry = Geometry{
	Blocks:            256,
	ThreadsPerBlock:   256,
	AttemptsPerThread: 100000,
}

// Budget returns the total candidates one launch examines.
func (g Geometry) Budget() uint64 {
	return uint64(g.Blocks) * uint64(g.ThreadsPerBlock) * g.AttemptsPerThread
}

// CUDAEngine runs the storage-slot search on the GPU. The host side owns
// the result buffers; the host/device boundary is crossed once per call.
type CUDAEngine struct {
	geom Geometry
}

// NewCUDAEngine creates a CUDA engine with the given launch geometry,
// substituting DefaultGeometry for zero fields.
func NewCUDAEngine(geom Geometry) *CUDAEngine {
	if geom.Blocks <= 0 {
		geom.Blocks = DefaultGeometry.Blocks
	}
	if geom.ThreadsPerBlock <= 0 {
		geom.ThreadsPerBlock = DefaultGeometry.ThreadsPerBlock
	}
	if geom.AttemptsPerThread == 0 {
		geom.AttemptsPerThread = DefaultGeometry.AttemptsPerThread
	}
	return &CUDAEngine{geom: geom}
}

// Geometry returns the engine's launch configuration.
func (e *CUDAEngine) Geometry() Geometry {
	return e.geom
}
