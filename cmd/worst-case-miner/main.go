package main

import (
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/CPerezz/worst-case-miner/internal/config"
	"github.com/CPerezz/worst-case-miner/internal/gen"
	logpkg "github.com/CPerezz/worst-case-miner/internal/logger"
	"github.com/CPerezz/worst-case-miner/internal/output"
	"github.com/CPerezz/worst-case-miner/internal/solc"
	minerpkg "github.com/CPerezz/worst-case-miner/pkg/miner"
	"github.com/CPerezz/worst-case-miner/pkg/search"
)

var (
	cfg    = config.NewConfig()
	logger *logpkg.Logger
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "worst-case-miner",
		Short: "Mine keccak preimages that force deep Merkle-Patricia trie branches",
		Long: `A mining program that brute-forces storage-slot holders and CREATE2 salts
whose keccak256 trie keys share long nibble prefixes, creating worst-case
deep branches in contract storage and account tries for gas-cost fixtures.`,
		Run: runMiner,
	}

	rootCmd.Flags().IntVarP(&cfg.Depth, "depth", "d", 0, "Target depth for the storage/account branch")
	rootCmd.Flags().IntVarP(&cfg.Threads, "threads", "t", runtime.NumCPU(), "Number of CPU mining threads")
	rootCmd.Flags().BoolVar(&cfg.CUDA, "cuda", false, "Use CUDA acceleration if available")
	rootCmd.Flags().StringVar(&cfg.Deployer, "deployer", cfg.Deployer, "Deployer address for CREATE2 (40 hex chars, default: zero address)")
	rootCmd.Flags().IntVar(&cfg.NumContracts, "num-contracts", 0, "Number of contracts to mine via CREATE2")
	rootCmd.Flags().StringVar(&cfg.InitCodePath, "init-code", "", "Path to contract init code (.sol compiles via solc, .hex/.bin decodes, else raw bytes)")
	rootCmd.Flags().StringVar(&cfg.AccountsOut, "accounts-output", cfg.AccountsOut, "Output file for CREATE2 accounts JSON")
	rootCmd.Flags().Uint64Var(&cfg.BaseSlot, "base-slot", 0, "Storage slot of the balance mapping")
	rootCmd.Flags().BoolVar(&cfg.RollingTarget, "rolling-target", false, "Re-seed the target prefix to each level's digest instead of the level-1 seed")
	rootCmd.Flags().BoolVarP(&cfg.Verbose, "verbose", "v", false, "Verbose output")
	rootCmd.Flags().StringVarP(&cfg.LogFile, "log-file", "l", "", "Log file for progress tracking (default: stdout)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runMiner(cmd *cobra.Command, args []string) {
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	setupLogging()

	// Searches are not interruptible mid-hash; SIGINT terminates the run.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Println("interrupt received, aborting")
		os.Exit(130)
	}()

	useCUDA := cfg.CUDA
	if cfg.CUDA && !search.CUDAAvailable() {
		logger.Printf("CUDA requested but not compiled in (rebuild with -tags cuda), falling back to %d CPU threads", cfg.Threads)
		useCUDA = false
	} else if useCUDA {
		logger.Println("Using CUDA acceleration")
	} else {
		logger.Printf("Using %d CPU threads", cfg.Threads)
	}

	if cfg.AccountMode() {
		runAccountMode(useCUDA)
		return
	}
	runStorageMode(useCUDA)
}

func runStorageMode(useCUDA bool) {
	logger.Printf("Starting storage mining for depth %d", cfg.Depth)
	start := time.Now()

	branch, err := minerpkg.MineDeepBranch(minerpkg.BranchConfig{
		Depth:    cfg.Depth,
		Threads:  cfg.Threads,
		BaseSlot: cfg.BaseSlot,
		Policy:   targetPolicy(),
		UseCUDA:  useCUDA,
		Log:      logger,
	})
	if err != nil {
		logger.Fatalf("storage mining failed: %v", err)
	}
	elapsed := time.Since(start)

	logger.Printf("🎉 Mined a %d-level branch in %s (target %s)",
		branch.Depth(), elapsed.Round(time.Millisecond), branch.Target.Hex())
	for _, slot := range branch.Slots {
		logger.Printf("  level %2d: holder %s key %s", slot.Nibbles, slot.Holder.Hex(), slot.StorageKey.Hex())
	}

	if err := gen.WriteFile(gen.DefaultContractPath, branch); err != nil {
		logger.Fatalf("contract generation failed: %v", err)
	}
	logger.Printf("Generated contract: %s", gen.DefaultContractPath)
}

func runAccountMode(useCUDA bool) {
	deployer, err := cfg.DeployerAddress()
	if err != nil {
		logger.Fatalf("invalid deployer: %v", err)
	}
	logger.Printf("Starting CREATE2 mining: %d contracts, depth %d, deployer %s",
		cfg.NumContracts, cfg.Depth, deployer.Hex())

	initCode, runtimeCode, storageKeys := loadInitCode(useCUDA)

	accounts, err := minerpkg.MineCreate2Accounts(minerpkg.AccountConfig{
		Deployer:     deployer,
		NumContracts: cfg.NumContracts,
		Depth:        cfg.Depth,
		Threads:      cfg.Threads,
		InitCode:     initCode,
		StorageKeys:  storageKeys,
		Log:          logger,
	})
	if err != nil {
		logger.Fatalf("CREATE2 mining failed: %v", err)
	}

	if err := output.WriteAccounts(cfg.AccountsOut, accounts, runtimeCode); err != nil {
		logger.Fatalf("writing accounts failed: %v", err)
	}
	logger.Printf("🎉 Mined %d accounts, written to %s", len(accounts), cfg.AccountsOut)
}

// loadInitCode resolves the CREATE2 init code: a .sol file is compiled
// (both creation and runtime sections), a .hex/.bin file is decoded, any
// other path is read raw. With no path the tool mines a storage branch of
// the requested depth first, generates the worst-case contract, and
// compiles that; the branch's keys come back so the account miner can
// re-verify storage depth. The runtime code, when known, flows to the
// output layer so account records carry the deployed code hash.
func loadInitCode(useCUDA bool) ([]byte, []byte, []common.Hash) {
	compiler := solc.New(cfg.SolcPath)

	switch {
	case strings.HasSuffix(cfg.InitCodePath, ".sol"):
		logger.Printf("Compiling Solidity contract: %s", cfg.InitCodePath)
		code, runtime, err := compiler.CompileRuntime(cfg.InitCodePath)
		if err != nil {
			logger.Fatalf("%v", err)
		}
		return code, runtime, nil

	case strings.HasSuffix(cfg.InitCodePath, ".hex"), strings.HasSuffix(cfg.InitCodePath, ".bin"):
		logger.Printf("Loading bytecode from: %s", cfg.InitCodePath)
		code, err := config.ReadHexFile(cfg.InitCodePath)
		if err != nil {
			logger.Fatalf("%v", err)
		}
		return code, nil, nil

	case cfg.InitCodePath != "":
		code, err := os.ReadFile(cfg.InitCodePath)
		if err != nil {
			logger.Fatalf("failed to read init code file: %v", err)
		}
		return code, nil, nil

	default:
		logger.Printf("No init code provided, generating a depth-%d contract...", cfg.Depth)
		branch, err := minerpkg.MineDeepBranch(minerpkg.BranchConfig{
			Depth:    cfg.Depth,
			Threads:  cfg.Threads,
			BaseSlot: cfg.BaseSlot,
			Policy:   targetPolicy(),
			UseCUDA:  useCUDA,
			Log:      logger,
		})
		if err != nil {
			logger.Fatalf("storage mining failed: %v", err)
		}
		if err := gen.WriteFile(gen.DefaultContractPath, branch); err != nil {
			logger.Fatalf("contract generation failed: %v", err)
		}
		logger.Printf("Compiling generated contract: %s", gen.DefaultContractPath)
		code, runtime, err := compiler.CompileRuntime(gen.DefaultContractPath)
		if err != nil {
			logger.Fatalf("%v", err)
		}
		return code, runtime, branch.StorageKeys()
	}
}

func targetPolicy() minerpkg.TargetPolicy {
	if cfg.RollingTarget {
		return minerpkg.PolicyRollingTarget
	}
	return minerpkg.PolicySeedTarget
}

func setupLogging() {
	if cfg.LogFile != "" {
		file, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
			os.Exit(1)
		}
		logger = logpkg.NewWriter(file, cfg.Verbose)
	} else {
		logger = logpkg.New(cfg.Verbose)
	}
}
