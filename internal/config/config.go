package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"

	"github.com/CPerezz/worst-case-miner/internal/crypto"
)

// Errors
var (
	ErrNoDepth      = errors.New("storage mining requires --depth >= 1")
	ErrNoInitSource = errors.New("CREATE2 mining requires either --init-code or --depth to auto-generate a contract")
)

// Config holds the application configuration.
type Config struct {
	Depth         int
	Threads       int
	CUDA          bool
	Deployer      string // hex, optionally 0x-prefixed; empty means the zero address
	NumContracts  int
	InitCodePath  string
	AccountsOut   string
	BaseSlot      uint64
	RollingTarget bool
	SolcPath      string
	Verbose       bool
	LogFile       string
}

// NewConfig creates a configuration with default values, taking optional
// DEPLOYER and SOLC_PATH defaults from the environment (a .env file is
// honored when present).
func NewConfig() *Config {
	_ = godotenv.Load()
	cfg := &Config{
		Threads:     runtime.NumCPU(),
		AccountsOut: "create2_accounts.json",
		SolcPath:    "solc",
	}
	if v := os.Getenv("DEPLOYER"); v != "" {
		cfg.Deployer = v
	}
	if v := os.Getenv("SOLC_PATH"); v != "" {
		cfg.SolcPath = v
	}
	return cfg
}

// AccountMode reports whether the run mines CREATE2 accounts rather than
// a storage branch.
func (c *Config) AccountMode() bool {
	return c.NumContracts > 0
}

// Validate checks the configuration before any search work is scheduled.
func (c *Config) Validate() error {
	if c.Threads < 1 {
		return fmt.Errorf("thread count must be >= 1, got %d", c.Threads)
	}
	if c.AccountMode() {
		if c.Depth < 1 && c.InitCodePath == "" {
			return ErrNoInitSource
		}
	} else if c.Depth < 1 {
		return ErrNoDepth
	}
	// Fail fast on a malformed deployer, before any worker is spawned.
	if c.Deployer != "" {
		if _, err := crypto.ParseAddress(c.Deployer); err != nil {
			return fmt.Errorf("invalid deployer: %w", err)
		}
	}
	return nil
}

// DeployerAddress returns the parsed deployer, defaulting to the zero
// address when unset. Validate must have passed.
func (c *Config) DeployerAddress() (common.Address, error) {
	if c.Deployer == "" {
		return common.Address{}, nil
	}
	return crypto.ParseAddress(c.Deployer)
}

// ReadHexFile reads a .hex/.bin bytecode file: whitespace-trimmed hex with
// an optional 0x prefix.
func ReadHexFile(path string) ([]byte, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read bytecode file: %w", err)
	}
	code := strings.TrimSpace(string(content))
	if len(code) >= 2 && (code[:2] == "0x" || code[:2] == "0X") {
		code = code[2:]
	}
	b, err := hex.DecodeString(code)
	if err != nil {
		return nil, fmt.Errorf("invalid hex in %s: %w", path, err)
	}
	return b, nil
}
