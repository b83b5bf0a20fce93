package nibble

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDigest() []byte {
	d := make([]byte, 32)
	d[0] = 0xab
	d[1] = 0xcd
	d[30] = 0x12
	d[31] = 0x34
	return d
}

func TestGet(t *testing.T) {
	d := testDigest()

	// even index: high 4 bits, odd index: low 4 bits
	assert.Equal(t, byte(0xa), Get(d, 0))
	assert.Equal(t, byte(0xb), Get(d, 1))
	assert.Equal(t, byte(0xc), Get(d, 2))
	assert.Equal(t, byte(0xd), Get(d, 3))
	assert.Equal(t, byte(0x3), Get(d, 62))
	assert.Equal(t, byte(0x4), Get(d, 63))
}

func TestMatchPrefix(t *testing.T) {
	d := testDigest()

	// a copy differing only in the very last nibble
	almost := testDigest()
	almost[31] = 0x35

	// a copy differing in the first nibble
	firstOff := testDigest()
	firstOff[0] = 0xbb

	// a copy differing in an odd-position nibble (low bits of byte 0)
	oddOff := testDigest()
	oddOff[0] = 0xac

	tests := []struct {
		name   string
		target []byte
		n      int
		want   bool
	}{
		{"zero nibbles always match", firstOff, 0, true},
		{"one nibble match", oddOff, 1, true},
		{"one nibble mismatch", firstOff, 1, false},
		{"odd-position mismatch at n=2", oddOff, 2, false},
		{"sixty-three of sixty-four", almost, 63, true},
		{"full digest mismatch on last nibble", almost, 64, false},
		{"full digest match", testDigest(), 64, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchPrefix(d, tt.target, tt.n))
		})
	}
}

func TestSharedPrefixLen(t *testing.T) {
	d := testDigest()

	same := testDigest()
	require.Equal(t, DigestNibbles, SharedPrefixLen(d, same, DigestNibbles))

	almost := testDigest()
	almost[31] = 0x35
	assert.Equal(t, 63, SharedPrefixLen(d, almost, DigestNibbles))

	firstOff := testDigest()
	firstOff[0] = 0x1b
	assert.Equal(t, 0, SharedPrefixLen(d, firstOff, DigestNibbles))

	// cap applies
	assert.Equal(t, 4, SharedPrefixLen(d, same, 4))
}
