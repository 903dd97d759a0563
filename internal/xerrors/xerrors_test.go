package xerrors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapPreservesKindAndCause(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap(cause, ProbeFailure, "probes.System")

	assert.True(t, IsKind(err, ProbeFailure))
	assert.False(t, IsKind(err, ParseFailure))
	assert.ErrorIs(t, err, cause)
}

func TestWrapNilReturnsNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, ProbeFailure, "op"))
}

func TestNewHasNoCause(t *testing.T) {
	err := New(BaselineAbsent, "baseline.Load", "no file")
	assert.Nil(t, err.Unwrap())
	assert.True(t, IsKind(err, BaselineAbsent))
}

func TestAgentErrorIsMatchesOnKindOnly(t *testing.T) {
	a := New(TransportFailure, "op1", "detail1")
	b := New(TransportFailure, "op2", "detail2")
	c := New(InputRejected, "op1", "detail1")

	assert.True(t, errors.Is(a, b))
	assert.False(t, errors.Is(a, c))
}

func TestErrorMessageIncludesOpAndDetail(t *testing.T) {
	err := New(InputRejected, "lpsof.Load", "file too large")
	assert.Contains(t, err.Error(), "lpsof.Load")
	assert.Contains(t, err.Error(), "file too large")
}
