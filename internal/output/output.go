// Package output serializes mined CREATE2 accounts to JSON.
package output

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/CPerezz/worst-case-miner/internal/crypto"
	"github.com/CPerezz/worst-case-miner/pkg/types"
)

// AccountRecord is the on-disk form of one mined account.
type AccountRecord struct {
	Address string `json:"address"`
	Salt    string `json:"salt"`
	TrieKey string `json:"trie_key"`
	// Depth is how many leading nibbles the trie key shares with the
	// branch seed.
	Depth int `json:"depth"`
	// CodeHash is keccak256 of the deployed runtime code, the value the
	// account carries in the state trie. Omitted when the runtime code is
	// unknown (init code supplied as raw bytes rather than compiled).
	CodeHash string `json:"code_hash,omitempty"`
}

// Records converts mined accounts to their serializable form. runtimeCode
// is the contracts' shared deployed bytecode; nil when not available.
func Records(accounts []types.MinedAccount, runtimeCode []byte) []AccountRecord {
	codeHash := ""
	if len(runtimeCode) > 0 {
		codeHash = hexutil.Encode(crypto.Keccak256(runtimeCode))
	}
	recs := make([]AccountRecord, len(accounts))
	for i, a := range accounts {
		recs[i] = AccountRecord{
			Address:  a.Address.Hex(),
			Salt:     hexutil.Encode(a.Salt[:]),
			TrieKey:  a.TrieKey.Hex(),
			Depth:    a.Depth,
			CodeHash: codeHash,
		}
	}
	return recs
}

// WriteAccounts writes the mined accounts to path as indented JSON.
func WriteAccounts(path string, accounts []types.MinedAccount, runtimeCode []byte) error {
	data, err := json.MarshalIndent(Records(accounts, runtimeCode), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal accounts: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write accounts file: %w", err)
	}
	return nil
}
