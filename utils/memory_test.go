package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemorySizeString(t *testing.T) {
	tests := []struct {
		size MemorySize
		want string
	}{
		{0, "0B"},
		{-5, "0B"},
		{512, "512B"},
		{KB, "1K"},
		{1536, "1.50K"},
		{MB, "1M"},
		{3 * GB, "3G"},
		{2 * TB, "2T"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.size.String())
	}
}
