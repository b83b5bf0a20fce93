package gen

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CPerezz/worst-case-miner/pkg/types"
)

func testBranch() *types.Branch {
	return &types.Branch{
		Target: common.HexToHash("0x0a00000000000000000000000000000000000000000000000000000000000000"),
		Slots: []types.MinedSlot{
			{Holder: common.HexToAddress("0x0000000000000000000000000000000000000001"), StorageKey: common.HexToHash("0x0a01"), Nibbles: 1},
			{Holder: common.HexToAddress("0x0000000000000000000000000000000000000002"), StorageKey: common.HexToHash("0x0a02"), Nibbles: 2},
		},
	}
}

func TestWriteEmitsSlotsInLevelOrder(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, testBranch()))
	src := buf.String()

	assert.Contains(t, src, "contract WorstCaseERC20")
	assert.Contains(t, src, "mapping(address => uint256)")

	first := strings.Index(src, "0x0000000000000000000000000000000000000001")
	second := strings.Index(src, "0x0000000000000000000000000000000000000002")
	require.NotEqual(t, -1, first)
	require.NotEqual(t, -1, second)
	assert.Less(t, first, second, "one balance write per level, in level order")
}

func TestWriteMappingOccupiesMinedSlot(t *testing.T) {
	// the balance keys are mined against BaseSlot, so the mapping must be
	// preceded by exactly BaseSlot filler declarations to land there
	branch := testBranch()
	branch.BaseSlot = 2

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, branch))
	src := buf.String()

	gap0 := strings.Index(src, "uint256 private __gap0;")
	gap1 := strings.Index(src, "uint256 private __gap1;")
	mapping := strings.Index(src, "mapping(address => uint256)")
	require.NotEqual(t, -1, gap0)
	require.NotEqual(t, -1, gap1)
	require.NotEqual(t, -1, mapping)
	assert.Less(t, gap0, gap1)
	assert.Less(t, gap1, mapping)
	assert.NotContains(t, src, "__gap2")
}

func TestWriteNoFillersAtSlotZero(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, testBranch()))
	assert.NotContains(t, buf.String(), "__gap")
}

func TestWriteFileCreatesDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contracts", "WorstCaseERC20.sol")
	require.NoError(t, WriteFile(path, testBranch()))

	src, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(src), "pragma solidity")
}
