// Package solc shells out to the Solidity compiler and extracts the
// labeled binary sections from its textual output. Compilation failures
// are fatal to the run and surfaced with the compiler's own diagnostics.
package solc

import (
	"encoding/hex"
	"fmt"
	"os/exec"
	"strings"
)

const (
	binaryLabel  = "Binary:"
	runtimeLabel = "Binary of the runtime part:"
)

// Compiler invokes a solc binary with the settings the mined contracts
// are compiled under: optimizer on at 200 runs, metadata hash stripped so
// output is reproducible.
type Compiler struct {
	// Path is the solc executable, "solc" by default.
	Path string
}

// New creates a Compiler for the given executable path.
func New(path string) *Compiler {
	if path == "" {
		path = "solc"
	}
	return &Compiler{Path: path}
}

// Compile compiles solPath and returns the creation bytecode (the section
// after the "Binary:" label).
func (c *Compiler) Compile(solPath string) ([]byte, error) {
	out, err := c.run(solPath, "--bin")
	if err != nil {
		return nil, err
	}
	return extractSection(out, binaryLabel, solPath)
}

// CompileRuntime compiles solPath and returns both the creation bytecode
// and the deployed runtime bytecode.
func (c *Compiler) CompileRuntime(solPath string) (initCode, runtime []byte, err error) {
	out, err := c.run(solPath, "--bin", "--bin-runtime")
	if err != nil {
		return nil, nil, err
	}
	if initCode, err = extractSection(out, binaryLabel, solPath); err != nil {
		return nil, nil, err
	}
	if runtime, err = extractSection(out, runtimeLabel, solPath); err != nil {
		return nil, nil, err
	}
	return initCode, runtime, nil
}

func (c *Compiler) run(solPath string, outputArgs ...string) (string, error) {
	args := []string{"--optimize", "--optimize-runs", "200", "--metadata-hash", "none"}
	args = append(args, outputArgs...)
	args = append(args, solPath)

	cmd := exec.Command(c.Path, args...)
	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if stderr.Len() > 0 {
			return "", fmt.Errorf("solc failed on %s: %s", solPath, strings.TrimSpace(stderr.String()))
		}
		return "", fmt.Errorf("failed to run %s: %w (is solc installed?)", c.Path, err)
	}
	return stdout.String(), nil
}

// extractSection returns the hex-decoded bytecode on the first non-empty
// line following the given label.
func extractSection(output, label, solPath string) ([]byte, error) {
	lines := strings.Split(output, "\n")
	for i, line := range lines {
		if !strings.Contains(line, label) {
			continue
		}
		// exact-label check so "Binary:" does not also match the runtime label
		if trimmed := strings.TrimSpace(line); trimmed != label {
			continue
		}
		for _, next := range lines[i+1:] {
			code := strings.TrimSpace(next)
			if code == "" {
				continue
			}
			b, err := hex.DecodeString(code)
			if err != nil {
				return nil, fmt.Errorf("malformed bytecode under %q in solc output for %s: %w", label, solPath, err)
			}
			return b, nil
		}
		break
	}
	return nil, fmt.Errorf("no %q section in solc output for %s", label, solPath)
}
