package solc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleOutput = `
======= contracts/WorstCaseERC20.sol:WorstCaseERC20 =======
Binary:
608060405234801561001057600080fd5b50
Binary of the runtime part:
6080604052600436106100365760003560e01c
`

func TestExtractSection(t *testing.T) {
	initCode, err := extractSection(sampleOutput, binaryLabel, "test.sol")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x60, 0x80, 0x60, 0x40, 0x52, 0x34, 0x80, 0x15, 0x61, 0x00, 0x10, 0x57, 0x60, 0x00, 0x80, 0xfd, 0x5b, 0x50}, initCode)

	runtime, err := extractSection(sampleOutput, runtimeLabel, "test.sol")
	require.NoError(t, err)
	assert.Equal(t, byte(0x60), runtime[0])
	assert.Len(t, runtime, 19)
}

func TestExtractSectionMissingLabel(t *testing.T) {
	_, err := extractSection("no binary here\n", binaryLabel, "test.sol")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "Binary:")
}

func TestExtractSectionMalformedHex(t *testing.T) {
	out := "Binary:\nzznothex\n"
	_, err := extractSection(out, binaryLabel, "test.sol")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "malformed")
}

func TestCompileMissingBinaryFailsVerbatim(t *testing.T) {
	// a compiler path that cannot exist surfaces the execution error
	c := New("/nonexistent/solc-binary")
	_, err := c.Compile("whatever.sol")
	assert.Error(t, err)
}

func TestNewDefaultsPath(t *testing.T) {
	assert.Equal(t, "solc", New("").Path)
	assert.Equal(t, "/usr/bin/solc", New("/usr/bin/solc").Path)
}
