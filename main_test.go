package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnvBool(t *testing.T) {
	tests := []struct {
		val  string
		def  bool
		want bool
	}{
		{"true", false, true},
		{"TRUE", false, true},
		{"1", false, true},
		{" 1 ", false, true},
		{"0", true, false},
		{"False", true, false},
		{"", true, true},
		{"", false, false},
		{"maybe", true, true},
	}
	for _, tt := range tests {
		t.Run(tt.val, func(t *testing.T) {
			t.Setenv("CACHE_L1", tt.val)
			assert.Equal(t, tt.want, envBool("CACHE_L1", tt.def))
		})
	}
}

func TestLoadConfigCacheL1(t *testing.T) {
	t.Setenv("CACHE_L1", "0")
	assert.False(t, loadConfig().Cache.L1)

	t.Setenv("CACHE_L1", "1")
	assert.True(t, loadConfig().Cache.L1)
}
