package crypto

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	gethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreate2AddressZeroVector(t *testing.T) {
	// deployer = 20 zero bytes, salt = 32 zero bytes, init code = empty:
	// address is the low 20 bytes of keccak256 of the fixed 53-byte
	// sequence 0xff ‖ 20×0x00 ‖ 32×0x00 ‖ keccak256("").
	preimage := make([]byte, 0, 85)
	preimage = append(preimage, 0xff)
	preimage = append(preimage, make([]byte, 20)...)
	preimage = append(preimage, make([]byte, 32)...)
	preimage = append(preimage, Keccak256(nil)...)

	want := common.BytesToAddress(Keccak256(preimage)[12:])
	got := Create2Address(common.Address{}, [32]byte{}, Keccak256(nil))
	assert.Equal(t, want, got)
}

func TestCreate2AddressMatchesGeth(t *testing.T) {
	deployer := common.HexToAddress("0x00000000000000000000000000000000DeaDBeef")
	initCode := []byte{0x60, 0x80, 0x60, 0x40, 0x52}
	initCodeHash := Keccak256(initCode)

	var salt [32]byte
	salt[31] = 0x2a

	want := gethcrypto.CreateAddress2(deployer, salt, initCodeHash)
	got := Create2Address(deployer, salt, initCodeHash)
	assert.Equal(t, want, got)
}

func TestStorageKeyLayout(t *testing.T) {
	holder := common.HexToAddress("0x1111111111111111111111111111111111111111")
	const baseSlot = 7

	// keccak256(pad32(holder) ‖ pad32(slot)), the Solidity mapping rule
	var preimage [64]byte
	copy(preimage[12:32], holder[:])
	preimage[63] = baseSlot

	want := gethcrypto.Keccak256Hash(preimage[:])
	assert.Equal(t, want, StorageKey(holder, baseSlot))
}

func TestAccountTrieKey(t *testing.T) {
	addr := common.HexToAddress("0x2222222222222222222222222222222222222222")
	want := gethcrypto.Keccak256Hash(addr[:])
	assert.Equal(t, want, AccountTrieKey(addr))
}

func TestHotPathVariantsAgreeWithColdPath(t *testing.T) {
	deployer := common.HexToAddress("0x00000000000000000000000000000000cafebabe")
	initCodeHash := Keccak256([]byte{0x01, 0x02})
	var salt [32]byte
	salt[0] = 0x99

	h := NewKeccak()
	input := Create2Input(deployer, initCodeHash)
	copy(input[Create2PrefixLen:], salt[:])
	var hashBuf [32]byte
	var addr common.Address
	Create2AddressInto(h, input, hashBuf[:], &addr)
	require.Equal(t, Create2Address(deployer, salt, initCodeHash), addr)

	slotInput := StorageKeyInput(3)
	copy(slotInput[12:32], addr[:])
	var key common.Hash
	StorageKeyInto(h, slotInput, &key)
	require.Equal(t, StorageKey(addr, 3), key)
}

func TestParseAddress(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantErr bool
	}{
		{"plain", "1234567890abcdef1234567890abcdef12345678", false},
		{"0x prefixed", "0x1234567890abcdef1234567890abcdef12345678", false},
		{"whitespace trimmed", "  0x1234567890abcdef1234567890abcdef12345678\n", false},
		{"39 hex chars", "0x234567890abcdef1234567890abcdef12345678", true},
		{"41 hex chars", "0x01234567890abcdef1234567890abcdef12345678", true},
		{"non-hex content", "0xzz34567890abcdef1234567890abcdef12345678", true},
		{"empty", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			addr, err := ParseAddress(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, common.HexToAddress("0x1234567890abcdef1234567890abcdef12345678"), addr)
		})
	}
}
