package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/mabhi256/objexplorer/internal/memory"
)

// ErrNoTarget is returned when neither a process nor an image is selected.
var ErrNoTarget = errors.New("no target specified")

type Config struct {
	// Target configuration
	PID         int      // Live process
	ProcessName string   // Resolved to a PID at startup
	Images      []string // Raw dumps as path@0xBASE

	// Runtime description
	LayoutFile string

	// Roots
	Roots         []string // Extra root addresses (hex)
	RegistryTable string   // Address of the singleton pointer table (hex)
	RegistryCount int      // Number of slots in the table

	Refresh time.Duration // Singleton refresh interval

	// Logging configuration
	LogFile  string
	LogLevel string
	Debug    bool
}

func Default() *Config {
	return &Config{
		Refresh:  time.Second,
		LogFile:  "objexplorer.log",
		LogLevel: "info",
	}
}

func (c *Config) HasTarget() bool {
	return c.PID != 0 || c.ProcessName != "" || len(c.Images) > 0
}

func (c *Config) Validate() error {
	if c.PID < 0 {
		return fmt.Errorf("invalid pid %d", c.PID)
	}

	live := c.PID != 0 || c.ProcessName != ""
	if live && len(c.Images) > 0 {
		return fmt.Errorf("--pid/--name and --image are mutually exclusive")
	}

	if c.Refresh < time.Second {
		return fmt.Errorf("refresh interval must be at least 1s (got %s)", c.Refresh)
	}

	if _, err := c.RootAddresses(); err != nil {
		return err
	}

	if c.RegistryTable != "" {
		if _, err := memory.ParseAddress(c.RegistryTable); err != nil {
			return fmt.Errorf("invalid registry table: %w", err)
		}
		if c.RegistryCount <= 0 {
			return fmt.Errorf("--registry-count must be positive when --registry-table is set")
		}
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level '%s'", c.LogLevel)
	}

	return nil
}

func (c *Config) RootAddresses() ([]memory.Address, error) {
	addrs := make([]memory.Address, 0, len(c.Roots))
	for _, s := range c.Roots {
		addr, err := memory.ParseAddress(s)
		if err != nil {
			return nil, fmt.Errorf("invalid root: %w", err)
		}
		addrs = append(addrs, addr)
	}
	return addrs, nil
}

// TableAddress returns the registry table address, or zero when none is set.
func (c *Config) TableAddress() memory.Address {
	addr, _ := memory.ParseAddress(c.RegistryTable)
	return addr
}

func (c *Config) String() string {
	if c.PID != 0 {
		return fmt.Sprintf("PID %d", c.PID)
	}

	if c.ProcessName != "" {
		return c.ProcessName
	}

	switch len(c.Images) {
	case 0:
		return ErrNoTarget.Error()
	case 1:
		return c.Images[0]
	default:
		return fmt.Sprintf("%s (+%d)", c.Images[0], len(c.Images)-1)
	}
}
