package lpsof

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProcessFilterORLogicAcrossCriteria(t *testing.T) {
	f := ProcessFilter{PIDs: []int{99}, CommandPfx: "sshd"}
	assert.True(t, f.matches(99, 0, 1, "unrelated"), "PID match alone should admit under OR logic")
	assert.True(t, f.matches(5, 0, 1, "sshd-session"), "command prefix match alone should admit under OR logic")
	assert.False(t, f.matches(5, 0, 1, "unrelated"))
}

func TestProcessFilterANDLogicRequiresAllCriteria(t *testing.T) {
	f := ProcessFilter{PIDs: []int{99}, CommandPfx: "sshd", AndLogic: true}
	assert.False(t, f.matches(99, 0, 1, "unrelated"))
	assert.True(t, f.matches(99, 0, 1, "sshd-session"))
}

func TestProcessFilterUIDAndPGID(t *testing.T) {
	f := ProcessFilter{UIDs: []int{1000}, PGIDs: []int{42}, AndLogic: true}
	assert.True(t, f.matches(1, 1000, 42, "x"))
	assert.False(t, f.matches(1, 1000, 43, "x"))
}

func TestContainsInt(t *testing.T) {
	assert.True(t, containsInt([]int{1, 2, 3}, 2))
	assert.False(t, containsInt([]int{1, 2, 3}, 9))
	assert.False(t, containsInt(nil, 1))
}

func TestGrowAppendDoublesCapacityFromZero(t *testing.T) {
	var fds []FDRecord
	fds = growAppend(fds, FDRecord{Number: 1})
	assert.Equal(t, 1, len(fds))
	assert.Equal(t, InitialFDCapacity, cap(fds))
}

func TestGrowAppendCapsNewCapacityAtMaxFDsPerProcess(t *testing.T) {
	fds := make([]FDRecord, MaxFDsPerProcess/2, MaxFDsPerProcess/2)
	fds = growAppend(fds, FDRecord{Number: 1})
	assert.Equal(t, MaxFDsPerProcess, cap(fds))
}
