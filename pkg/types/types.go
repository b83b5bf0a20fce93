// Package types holds the result records shared between the miners and the
// output/generation layers.
package types

import (
	"github.com/ethereum/go-ethereum/common"
)

// MinedSlot is one level of a storage branch: a holder address whose
// balance-slot key extends the branch's shared prefix by one nibble.
type MinedSlot struct {
	Holder     common.Address
	StorageKey common.Hash
	// Nibbles is the number of leading nibbles the key shares with the
	// branch target (the level number).
	Nibbles int
}

// MinedAccount is one CREATE2-deployed contract whose account trie key
// matches the branch target to Depth nibbles.
type MinedAccount struct {
	Salt    [32]byte
	Address common.Address
	TrieKey common.Hash
	Depth   int
}

// Branch is an ordered storage branch, one slot per depth level.
// Slot k (1-based) shares at least k leading nibbles with Target.
type Branch struct {
	// Target is the digest every level is matched against. Under the
	// default policy this is level 1's storage key.
	Target common.Hash
	// BaseSlot is the mapping's storage slot index in the contract.
	BaseSlot uint64
	Slots    []MinedSlot
}

// Depth returns the number of mined levels.
func (b *Branch) Depth() int {
	return len(b.Slots)
}

// StorageKeys returns the mined keys in level order.
func (b *Branch) StorageKeys() []common.Hash {
	keys := make([]common.Hash, len(b.Slots))
	for i, s := range b.Slots {
		keys[i] = s.StorageKey
	}
	return keys
}
