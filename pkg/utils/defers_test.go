package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefersCallOrder(t *testing.T) {
	calls := []string{}
	ds := NewDefers()
	ds.Add(func() { calls = append(calls, "first") })
	ds.Add(func() { calls = append(calls, "second") })
	ds.Add(func() { calls = append(calls, "third") })
	ds.CallAll()
	assert.Equal(t, []string{"third", "second", "first"}, calls)
}

func TestRandStringLength(t *testing.T) {
	assert.Len(t, RandStringBytes(32), 32)
	assert.NotEqual(t, RandStringBytes(32), RandStringBytes(32))
}
