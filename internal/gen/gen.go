// Package gen emits Solidity source for a mined storage branch: an
// ERC20-shaped contract whose constructor seeds one balance per mined
// level, in level order, so deploying it materializes the deep branch in
// the contract's storage trie.
package gen

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/template"

	"github.com/CPerezz/worst-case-miner/pkg/types"
)

// DefaultContractPath is where the generated contract is written.
const DefaultContractPath = "contracts/WorstCaseERC20.sol"

var contractTmpl = template.Must(template.New("contract").Parse(`// SPDX-License-Identifier: MIT
pragma solidity ^0.8.0;

// Generated by worst-case-miner. The balance mapping lives at slot
// {{.BaseSlot}}; the seeded holders below were mined so their balance keys
// share a {{.Depth}}-nibble prefix, forcing a {{.Depth}}-deep branch in the
// storage trie.
contract WorstCaseERC20 {
{{- range .Fillers}}
    uint256 private __gap{{.}}; // occupies slot {{.}}
{{- end}}
    mapping(address => uint256) public balanceOf;

    constructor() {
{{- range .Slots}}
        // level {{.Nibbles}}: key {{.StorageKey.Hex}}
        balanceOf[{{.Holder.Hex}}] = 1;
{{- end}}
    }

    function transfer(address to, uint256 amount) external returns (bool) {
        balanceOf[msg.sender] -= amount;
        balanceOf[to] += amount;
        return true;
    }
}
`))

type contractData struct {
	BaseSlot uint64
	Depth    int
	Fillers  []uint64
	Slots    []types.MinedSlot
}

// Write renders the contract for the branch to w. Solidity assigns state
// variables to slots in declaration order, so the mapping is preceded by
// one filler declaration per slot below the mined base slot; the deployed
// layout then puts the mapping exactly where the keys were mined.
func Write(w io.Writer, branch *types.Branch) error {
	fillers := make([]uint64, branch.BaseSlot)
	for i := range fillers {
		fillers[i] = uint64(i)
	}
	return contractTmpl.Execute(w, contractData{
		BaseSlot: branch.BaseSlot,
		Depth:    branch.Depth(),
		Fillers:  fillers,
		Slots:    branch.Slots,
	})
}

// WriteFile renders the contract to path, creating parent directories.
func WriteFile(path string, branch *types.Branch) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create contract dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create contract file: %w", err)
	}
	defer f.Close()
	if err := Write(f, branch); err != nil {
		return fmt.Errorf("render contract: %w", err)
	}
	return nil
}
