// Package miner drives the search engine level by level to assemble deep
// trie branches: storage branches over ERC20 balance slots, and account
// branches over CREATE2-deployed contracts.
package miner

import (
	"errors"
	"fmt"
	"time"

	"github.com/CPerezz/worst-case-miner/internal/logger"
	"github.com/CPerezz/worst-case-miner/pkg/search"
	"github.com/CPerezz/worst-case-miner/pkg/types"
)

// TargetPolicy selects how the target prefix evolves across levels.
//
// The two policies produce different trie topologies: a seed target forces
// one long shared path, a rolling target a nested sequence of shorter
// shared paths. Seed is the default; confirm it against the intended
// adversarial trie shape before relying on mined output.
type TargetPolicy int

const (
	// PolicySeedTarget fixes the target to level 1's digest for the whole
	// branch.
	PolicySeedTarget TargetPolicy = iota
	// PolicyRollingTarget re-seeds the target to the most recently mined
	// digest at each level.
	PolicyRollingTarget
)

// progressInterval is how often the miner reports search progress in
// verbose mode.
const progressInterval = 5 * time.Second

// BranchConfig configures a storage branch mining run.
type BranchConfig struct {
	// Depth is the number of levels to mine (>= 1).
	Depth int
	// Threads is the CPU worker count; <= 0 means host core count.
	Threads int
	// BaseSlot is the contract storage slot of the balance mapping.
	BaseSlot uint64
	// Policy selects the target-prefix evolution; see TargetPolicy.
	Policy TargetPolicy
	// UseCUDA runs each level's search on the GPU. The caller is
	// responsible for having checked search.CUDAAvailable(); an
	// unavailable GPU surfaces as a hard error here, never a silent
	// CPU substitution.
	UseCUDA bool
	// Geometry is the CUDA launch configuration; zero fields take
	// defaults. Ignored on the CPU path.
	Geometry search.Geometry
	Log      *logger.Logger
}

// MineDeepBranch mines a branch of cfg.Depth storage slots whose keys
// share a strictly growing nibble prefix: level k's key matches the
// branch target on its first k nibbles. Levels are strictly sequential
// because level k+1's task embeds level k's digest.
func MineDeepBranch(cfg BranchConfig) (*types.Branch, error) {
	if cfg.Depth < 1 {
		return nil, fmt.Errorf("miner: depth must be >= 1, got %d", cfg.Depth)
	}
	if cfg.UseCUDA && cfg.BaseSlot != 0 {
		return nil, errors.New("miner: the CUDA kernel hashes with the slot-0 mapping layout, use --base-slot 0")
	}
	log := cfg.Log
	if log == nil {
		log = logger.New(false)
	}

	engine := search.NewEngine(cfg.Threads)
	var cuda *search.CUDAEngine
	if cfg.UseCUDA {
		cuda = search.NewCUDAEngine(cfg.Geometry)
	}

	branch := &types.Branch{BaseSlot: cfg.BaseSlot}
	var (
		target      [32]byte // all-zero for level 1
		nextCounter uint64
	)

	for level := 1; level <= cfg.Depth; level++ {
		start := time.Now()
		log.Debugf("mining level %d/%d: %d nibbles required", level, cfg.Depth, level)

		var (
			out *search.Outcome
			err error
		)
		if cfg.UseCUDA {
			out, nextCounter, err = searchCUDA(cuda, target, level, nextCounter, log)
		} else {
			out, err = searchCPU(engine, search.Task{
				Target:          target,
				RequiredNibbles: level,
				BaseCounter:     nextCounter,
			}, newStorageDeriver(cfg.BaseSlot), log)
			if err == nil {
				// Start the next level past this winner; earlier rejected
				// counters can never win again under either policy's
				// longer requirement, and all previous winners are below.
				nextCounter = out.Candidate.Counter + 1
			}
		}
		if err != nil {
			return nil, fmt.Errorf("miner: level %d: %w", level, err)
		}

		slot := types.MinedSlot{
			Holder:     out.Candidate.Address,
			StorageKey: out.Candidate.Digest,
			Nibbles:    level,
		}
		branch.Slots = append(branch.Slots, slot)
		log.Printf("level %d mined: holder %s key %s (%d attempts, %s)",
			level, slot.Holder.Hex(), slot.StorageKey.Hex(), out.Attempts, time.Since(start).Round(time.Millisecond))

		if level == 1 {
			branch.Target = out.Candidate.Digest
			target = out.Candidate.Digest
		} else if cfg.Policy == PolicyRollingTarget {
			target = out.Candidate.Digest
		}
	}

	return branch, nil
}

// searchCPU runs one unbounded CPU search with periodic progress logging.
func searchCPU(engine *search.Engine, task search.Task, derive search.DeriverFactory, log *logger.Logger) (*search.Outcome, error) {
	done := make(chan struct{})
	if log.Verbose() {
		go func() {
			ticker := time.NewTicker(progressInterval)
			defer ticker.Stop()
			start := time.Now()
			for {
				select {
				case <-ticker.C:
					attempts := engine.Attempts()
					rate := float64(attempts) / time.Since(start).Seconds()
					log.Debugf("progress: %d attempts, %.0f hashes/sec", attempts, rate)
				case <-done:
					return
				}
			}
		}()
	}
	out, err := engine.Search(task, derive)
	close(done)
	return out, err
}

// searchCUDA relaunches the kernel with an advanced base counter until a
// match is found, mirroring the CPU path's unbounded semantics. Returns
// the outcome and the next unconsumed counter.
func searchCUDA(cuda *search.CUDAEngine, target [32]byte, requiredNibbles int, base uint64, log *logger.Logger) (*search.Outcome, uint64, error) {
	budget := cuda.Geometry().Budget()
	for {
		out, err := cuda.MineStorageSlot(target, requiredNibbles, base)
		// The launch consumed its whole counter range either way; the
		// winner's exact counter never leaves the device.
		base += budget
		if errors.Is(err, search.ErrExhausted) {
			log.Debugf("CUDA launch exhausted %d attempts, relaunching at counter %d", budget, base)
			continue
		}
		if err != nil {
			return nil, base, err
		}
		return out, base, nil
	}
}
