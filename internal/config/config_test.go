package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeStubFiles(t *testing.T, dir string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, TraceFileName), []byte{}, 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, MemoryFileName), []byte{}, 0o600))
}

func TestResolveCLIFlagWins(t *testing.T) {
	dir := t.TempDir()
	writeStubFiles(t, dir)

	cfg, err := Resolve("", dir, "out", 123, 0)
	require.NoError(t, err)
	require.Equal(t, dir, cfg.BasePath)
	require.Equal(t, "out", cfg.OutputDir)
	require.Equal(t, 123, cfg.ChunkRecords)
	require.Equal(t, filepath.Join(dir, TraceFileName), cfg.TracePath)
	require.Equal(t, filepath.Join(dir, MemoryFileName), cfg.MemoryPath)
}

func TestResolveTOMLFile(t *testing.T) {
	dir := t.TempDir()
	writeStubFiles(t, dir)

	tomlPath := filepath.Join(dir, "config.toml")
	content := "base_path = \"" + dir + "\"\noutput_dir = \"from-toml\"\nchunk_records = 50\n"
	require.NoError(t, os.WriteFile(tomlPath, []byte(content), 0o600))

	cfg, err := Resolve(tomlPath, "", "", 0, 0)
	require.NoError(t, err)
	require.Equal(t, dir, cfg.BasePath)
	require.Equal(t, "from-toml", cfg.OutputDir)
	require.Equal(t, 50, cfg.ChunkRecords)
}

func TestResolveEnvFallback(t *testing.T) {
	dir := t.TempDir()
	writeStubFiles(t, dir)

	t.Setenv("BASE_PATH", dir)
	cfg, err := Resolve("", "", "", 0, 0)
	require.NoError(t, err)
	require.Equal(t, dir, cfg.BasePath)
}

func TestResolveMissingBasePath(t *testing.T) {
	t.Setenv("BASE_PATH", "")
	_, err := Resolve("", "", "", 0, 0)
	require.Error(t, err)
}

func TestResolveMissingTraceFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, MemoryFileName), []byte{}, 0o600))

	_, err := Resolve("", dir, "", 0, 0)
	require.Error(t, err)
}
