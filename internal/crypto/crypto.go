// Package crypto holds the keccak derivations the miners brute-force:
// CREATE2 contract addresses, account trie keys, and ERC20 balance-slot
// storage keys.
package crypto

import (
	"encoding/binary"
	"fmt"
	"hash"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/crypto/sha3"
)

const (
	// CREATE2 input layout: 0xff (1) + deployer (20) + salt (32) + initcodeHash (32) = 85
	Create2PrefixLen = 1 + common.AddressLength
	Create2InputLen  = Create2PrefixLen + 32 + 32

	// Storage-key preimage: pad32(holder address) + pad32(slot index) = 64
	StorageKeyInputLen = 64
)

// NewKeccak returns a legacy Keccak-256 hasher. Workers hold one each and
// Reset it between attempts so the hot loop never allocates.
func NewKeccak() hash.Hash {
	return sha3.NewLegacyKeccak256()
}

// Keccak256 hashes data with legacy Keccak-256. Convenience for cold paths;
// the hot loops use SumInto with a held hasher.
func Keccak256(data []byte) []byte {
	h := sha3.NewLegacyKeccak256()
	h.Write(data)
	return h.Sum(nil)
}

// SumInto resets the hasher, hashes input, and appends the digest to
// out[:0]. out must have capacity for 32 bytes.
func SumInto(h hash.Hash, input, out []byte) []byte {
	h.Reset()
	h.Write(input)
	return h.Sum(out[:0])
}

// Create2Input assembles the 85-byte CREATE2 preimage
// 0xff ‖ deployer ‖ salt ‖ keccak256(initCode). The salt portion
// (bytes 21..53) is the only part that changes per attempt; callers keep
// the buffer and overwrite it in place.
func Create2Input(deployer common.Address, initCodeHash []byte) []byte {
	buf := make([]byte, Create2InputLen)
	buf[0] = 0xff
	copy(buf[1:], deployer[:])
	copy(buf[Create2PrefixLen+32:], initCodeHash)
	return buf
}

// Create2AddressInto computes the CREATE2 address for the salt at input[21:53],
// writing the low 20 bytes of the digest into addr. input must be a buffer
// from Create2Input with the salt already set; hashBuf needs 32 bytes capacity.
func Create2AddressInto(h hash.Hash, input, hashBuf []byte, addr *common.Address) {
	sum := SumInto(h, input, hashBuf)
	copy(addr[:], sum[12:32])
}

// Create2Address computes the CREATE2 address for deployer, salt and init
// code hash. Cold-path variant of Create2AddressInto.
func Create2Address(deployer common.Address, salt [32]byte, initCodeHash []byte) common.Address {
	input := Create2Input(deployer, initCodeHash)
	copy(input[Create2PrefixLen:], salt[:])
	var addr common.Address
	h := sha3.NewLegacyKeccak256()
	var hashBuf [32]byte
	Create2AddressInto(h, input, hashBuf[:], &addr)
	return addr
}

// StorageKeyInput assembles the 64-byte preimage for a Solidity
// mapping(address => uint256) entry at baseSlot:
// pad32(holder) ‖ pad32(baseSlot). The holder portion (bytes 12..32) is
// the only part that changes per attempt.
func StorageKeyInput(baseSlot uint64) []byte {
	buf := make([]byte, StorageKeyInputLen)
	binary.BigEndian.PutUint64(buf[StorageKeyInputLen-8:], baseSlot)
	return buf
}

// StorageKeyInto computes the storage trie key for the holder address at
// input[12:32], writing the digest into key. input must come from
// StorageKeyInput with the holder already set.
func StorageKeyInto(h hash.Hash, input []byte, key *common.Hash) {
	SumInto(h, input, key[:])
}

// StorageKey computes keccak256(pad32(holder) ‖ pad32(baseSlot)), the key
// under which holder's balance lives in the contract storage trie.
func StorageKey(holder common.Address, baseSlot uint64) common.Hash {
	input := StorageKeyInput(baseSlot)
	copy(input[32-common.AddressLength:32], holder[:])
	var key common.Hash
	h := sha3.NewLegacyKeccak256()
	StorageKeyInto(h, input, &key)
	return key
}

// AccountTrieKeyInto computes keccak256(addr), the key under which the
// account sits in the state trie.
func AccountTrieKeyInto(h hash.Hash, addr common.Address, key *common.Hash) {
	SumInto(h, addr[:], key[:])
}

// AccountTrieKey is the cold-path variant of AccountTrieKeyInto.
func AccountTrieKey(addr common.Address) common.Hash {
	var key common.Hash
	h := sha3.NewLegacyKeccak256()
	AccountTrieKeyInto(h, addr, &key)
	return key
}

// ParseAddress decodes a 20-byte address from 40 hex characters, with or
// without a 0x prefix. Anything else is rejected with an error naming the
// input, before any mining starts.
func ParseAddress(s string) (common.Address, error) {
	h := strings.TrimSpace(s)
	if len(h) >= 2 && (h[:2] == "0x" || h[:2] == "0X") {
		h = h[2:]
	}
	if len(h) != common.AddressLength*2 {
		return common.Address{}, fmt.Errorf("address must be 40 hex characters, got %d in %q", len(h), s)
	}
	if !common.IsHexAddress(h) {
		return common.Address{}, fmt.Errorf("invalid address hex in %q", s)
	}
	return common.HexToAddress(h), nil
}
