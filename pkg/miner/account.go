package miner

import (
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/CPerezz/worst-case-miner/internal/crypto"
	"github.com/CPerezz/worst-case-miner/internal/logger"
	"github.com/CPerezz/worst-case-miner/internal/nibble"
	"github.com/CPerezz/worst-case-miner/pkg/search"
	"github.com/CPerezz/worst-case-miner/pkg/types"
)

// AccountConfig configures a CREATE2 account mining run.
type AccountConfig struct {
	// Deployer is the CREATE2 factory address.
	Deployer common.Address
	// NumContracts is how many accounts to mine (>= 1).
	NumContracts int
	// Depth caps the per-account nibble requirement: account i must match
	// the seed trie key on min(i, Depth) nibbles. 0 disables the prefix
	// requirement entirely (salts are taken in counter order).
	Depth int
	// Threads is the CPU worker count; <= 0 means host core count.
	Threads int
	// InitCode is the contract creation bytecode hashed into the CREATE2
	// derivation.
	InitCode []byte
	// StorageKeys, when set, are a previously mined storage branch's keys.
	// Each deployed contract shares the init code and therefore the same
	// storage layout, so the keys are re-verified once for depth
	// preservation. Advisory only; violations are logged, never re-mined.
	StorageKeys []common.Hash
	Log         *logger.Logger
}

// MineCreate2Accounts mines NumContracts CREATE2 salts whose derived
// contract addresses land on a deep shared branch of the account trie:
// account i's trie key matches the first account's on min(i, Depth)
// nibbles.
func MineCreate2Accounts(cfg AccountConfig) ([]types.MinedAccount, error) {
	if cfg.NumContracts < 1 {
		return nil, fmt.Errorf("miner: num contracts must be >= 1, got %d", cfg.NumContracts)
	}
	log := cfg.Log
	if log == nil {
		log = logger.New(false)
	}

	if cfg.Depth < 1 {
		log.Printf("warning: no depth requirement set, mining %d accounts without any trie-key prefix condition", cfg.NumContracts)
	}

	initCodeHash := crypto.Keccak256(cfg.InitCode)
	log.Debugf("init code: %d bytes, hash %x", len(cfg.InitCode), initCodeHash)

	engine := search.NewEngine(cfg.Threads)
	deriver := newCreate2Deriver(cfg.Deployer, initCodeHash)

	accounts := make([]types.MinedAccount, 0, cfg.NumContracts)
	var (
		target      [32]byte // all-zero until the first account seeds it
		nextCounter uint64
	)

	for i := 1; i <= cfg.NumContracts; i++ {
		required := 0
		if cfg.Depth > 0 {
			required = min(i, cfg.Depth)
		}

		start := time.Now()
		out, err := searchCPU(engine, search.Task{
			Target:          target,
			RequiredNibbles: required,
			BaseCounter:     nextCounter,
		}, deriver, log)
		if err != nil {
			return nil, fmt.Errorf("miner: account %d: %w", i, err)
		}
		nextCounter = out.Candidate.Counter + 1

		acct := types.MinedAccount{
			Salt:    out.Candidate.Salt,
			Address: out.Candidate.Address,
			TrieKey: out.Candidate.Digest,
			Depth:   required,
		}
		accounts = append(accounts, acct)
		log.Printf("account %d mined: %s trie key %s (%d nibbles, %d attempts, %s)",
			i, acct.Address.Hex(), acct.TrieKey.Hex(), required, out.Attempts, time.Since(start).Round(time.Millisecond))

		if i == 1 {
			target = out.Candidate.Digest
		}
	}

	if len(cfg.StorageKeys) > 0 {
		verifyStorageDepth(cfg.StorageKeys, log)
	}

	return accounts, nil
}

// verifyStorageDepth re-checks that a mined storage branch still exhibits
// its claimed depth: key k must share at least k nibbles with key 1.
func verifyStorageDepth(keys []common.Hash, log *logger.Logger) {
	seed := keys[0]
	ok := true
	for i := 1; i < len(keys); i++ {
		want := i + 1
		got := nibble.SharedPrefixLen(seed[:], keys[i][:], nibble.DigestNibbles)
		if got < want {
			ok = false
			log.Printf("warning: storage key %d shares only %d nibbles with the branch seed, want >= %d", i+1, got, want)
		}
	}
	if ok {
		log.Printf("storage branch verified: %d keys preserve the mined depth", len(keys))
	}
}
