// Package nibble implements 4-bit prefix matching over 32-byte digests.
//
// A hex Merkle-Patricia trie branches on nibbles, so "two keys share a
// branch of depth N" means exactly "their digests agree on the first N
// nibbles". Nibble i of a digest is the high 4 bits of byte i/2 when i is
// even and the low 4 bits when i is odd. The CUDA kernel applies the same
// rule; any divergence here breaks CPU/GPU equivalence.
package nibble

// DigestNibbles is the number of nibbles in a 32-byte digest.
const DigestNibbles = 64

// Get returns nibble i of the digest.
func Get(digest []byte, i int) byte {
	b := digest[i/2]
	if i%2 == 0 {
		return b >> 4
	}
	return b & 0x0f
}

// MatchPrefix reports whether the first n nibbles of digest equal the
// first n nibbles of target. n = 0 always matches.
func MatchPrefix(digest, target []byte, n int) bool {
	// whole bytes first
	full := n / 2
	for i := 0; i < full; i++ {
		if digest[i] != target[i] {
			return false
		}
	}
	// odd count: high 4 bits of the next byte
	if n%2 == 1 && digest[full]>>4 != target[full]>>4 {
		return false
	}
	return true
}

// SharedPrefixLen returns the number of leading nibbles two digests have in
// common, capped at max.
func SharedPrefixLen(a, b []byte, max int) int {
	n := 0
	for n < max && Get(a, n) == Get(b, n) {
		n++
	}
	return n
}
