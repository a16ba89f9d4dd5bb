package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mabhi256/objexplorer/internal/memory"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"pid", func(c *Config) { c.PID = 42 }, false},
		{"negative pid", func(c *Config) { c.PID = -1 }, true},
		{"pid and image", func(c *Config) { c.PID = 1; c.Images = []string{"a@0x1000"} }, true},
		{"refresh too fast", func(c *Config) { c.Refresh = 200 * time.Millisecond }, true},
		{"bad root", func(c *Config) { c.Roots = []string{"zz"} }, true},
		{"good roots", func(c *Config) { c.Roots = []string{"0x1000", "2000"} }, false},
		{"table without count", func(c *Config) { c.RegistryTable = "0x1000" }, true},
		{"table with count", func(c *Config) { c.RegistryTable = "0x1000"; c.RegistryCount = 4 }, false},
		{"bad table", func(c *Config) { c.RegistryTable = "nope"; c.RegistryCount = 4 }, true},
		{"bad level", func(c *Config) { c.LogLevel = "trace" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(c)
			if tt.wantErr {
				assert.Error(t, c.Validate())
			} else {
				assert.NoError(t, c.Validate())
			}
		})
	}
}

func TestRootAddresses(t *testing.T) {
	c := Default()
	c.Roots = []string{"0x1000", "ABC"}

	addrs, err := c.RootAddresses()
	require.NoError(t, err)
	assert.Equal(t, []memory.Address{0x1000, 0xabc}, addrs)
}

func TestString(t *testing.T) {
	c := Default()
	assert.Equal(t, ErrNoTarget.Error(), c.String())
	assert.False(t, c.HasTarget())

	c.Images = []string{"heap.bin@0x1000", "stack.bin@0x9000"}
	assert.Equal(t, "heap.bin@0x1000 (+1)", c.String())
	assert.True(t, c.HasTarget())

	c.Images = nil
	c.PID = 7
	assert.Equal(t, "PID 7", c.String())
}
