package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mabhi256/objexplorer/internal/layout"
)

func runLayout(t *testing.T, args ...string) (string, error) {
	t.Helper()

	t.Cleanup(func() { layoutFile = "" })

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(append([]string{"layout"}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestLayoutPrintsDefaults(t *testing.T) {
	out, err := runLayout(t)
	require.NoError(t, err)

	want, err := layout.Default().Marshal()
	require.NoError(t, err)
	assert.Equal(t, string(want), out)
}

func TestLayoutValidatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("nonsense: 1\n"), 0o644))

	_, err := runLayout(t, "--file", path)
	assert.Error(t, err)
}
