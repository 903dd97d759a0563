//go:build aix

package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAIXLineExtractsFixedFields(t *testing.T) {
	line := "USER_Authenticate root FAILED Mon Jan 02 15:04:05 2026 /usr/bin/login wpar0"
	rec, ok := parseAIXLine(line)
	assert.True(t, ok)
	assert.Equal(t, "USER_Authenticate", rec.event)
	assert.Equal(t, "root", rec.login)
	assert.Equal(t, "FAILED", rec.status)
	assert.Equal(t, "/usr/bin/login", rec.command)
}

func TestParseAIXLineSkipsHeaderAndShortLines(t *testing.T) {
	_, ok := parseAIXLine("event login status")
	assert.False(t, ok)

	_, ok = parseAIXLine("")
	assert.False(t, ok)

	_, ok = parseAIXLine("only two")
	assert.False(t, ok, "fewer than three whitespace-separated fields is not a valid record")

	_, ok = parseAIXLine("USER_SU root OK")
	assert.True(t, ok, "three whitespace-separated fields is the minimum valid record")
}
