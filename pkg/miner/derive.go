package miner

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/CPerezz/worst-case-miner/internal/crypto"
	"github.com/CPerezz/worst-case-miner/pkg/search"
)

// newStorageDeriver maps counters to balance-slot candidates: the counter
// sits big-endian in the low 8 bytes of a 20-byte holder address, and the
// tested digest is keccak256(pad32(holder) ‖ pad32(baseSlot)). The
// counter → address mapping is injective, so disjoint counter ranges
// yield distinct holders.
func newStorageDeriver(baseSlot uint64) search.DeriverFactory {
	return func() search.DeriveFunc {
		h := crypto.NewKeccak()
		input := crypto.StorageKeyInput(baseSlot)
		return func(counter uint64) search.Candidate {
			var cand search.Candidate
			cand.Counter = counter
			binary.BigEndian.PutUint64(cand.Address[common.AddressLength-8:], counter)
			copy(input[32-common.AddressLength:32], cand.Address[:])
			crypto.StorageKeyInto(h, input, &cand.Digest)
			return cand
		}
	}
}

// newCreate2Deriver maps counters to CREATE2 candidates: the counter
// widens to a 32-byte salt, the candidate address is the CREATE2
// derivation for (deployer, salt, initCodeHash), and the tested digest is
// keccak256(address), the account's state-trie key.
func newCreate2Deriver(deployer common.Address, initCodeHash []byte) search.DeriverFactory {
	return func() search.DeriveFunc {
		h := crypto.NewKeccak()
		input := crypto.Create2Input(deployer, initCodeHash)
		var (
			saltInt uint256.Int
			hashBuf [32]byte
		)
		return func(counter uint64) search.Candidate {
			var cand search.Candidate
			cand.Counter = counter
			saltInt.SetUint64(counter)
			cand.Salt = saltInt.Bytes32()
			copy(input[crypto.Create2PrefixLen:], cand.Salt[:])
			crypto.Create2AddressInto(h, input, hashBuf[:], &cand.Address)
			crypto.AccountTrieKeyInto(h, cand.Address, &cand.Digest)
			return cand
		}
	}
}
