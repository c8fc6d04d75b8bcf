package tokenizer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimate(t *testing.T) {
	assert.Equal(t, 0, Estimate(""))
	assert.Equal(t, 1, Estimate("a"))
	assert.Equal(t, 1, Estimate("abcd"))
	assert.Equal(t, 2, Estimate("abcde"))
	assert.Equal(t, 250, Estimate(strings.Repeat("x", 1000)))
}

func TestEstimateGrowsWithLength(t *testing.T) {
	short := Estimate("hello world")
	long := Estimate(strings.Repeat("hello world ", 100))
	assert.Greater(t, long, short)
}
