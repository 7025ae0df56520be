package log

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("debug"))
	assert.Equal(t, LevelWarn, ParseLevel(" WARN "))
	assert.Equal(t, LevelError, ParseLevel("error"))
	assert.Equal(t, LevelInfo, ParseLevel("info"))
	assert.Equal(t, LevelInfo, ParseLevel("bogus"))
	assert.Equal(t, LevelInfo, ParseLevel(""))
}

func TestLevelRanking(t *testing.T) {
	SetLevel(LevelWarn)
	defer SetLevel(LevelInfo)

	assert.False(t, enabled(LevelDebug))
	assert.False(t, enabled(LevelInfo))
	assert.True(t, enabled(LevelWarn))
	assert.True(t, enabled(LevelError))
}

func TestFormatKVs(t *testing.T) {
	assert.Equal(t, " a=1 b=two", formatKVs("a", 1, "b", "two"))
	// Non-string keys and odd trailing values are dropped.
	assert.Equal(t, " a=1", formatKVs("a", 1, 2, "x"))
	assert.Equal(t, " a=1", formatKVs("a", 1, "dangling"))
}
