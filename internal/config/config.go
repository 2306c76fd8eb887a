// Package config resolves where a run's trace.bin and memory.bin live and
// the reader/pipeline tunables, per SPEC_FULL.md §3.1. Precedence: CLI flag
// > TOML file > BASE_PATH environment variable > built-in default.
package config

import (
	"os"
	"path/filepath"

	"github.com/naoina/toml"

	"github.com/probeum/cairo-adapter/internal/cerr"
)

// TraceFileName and MemoryFileName are the fixed names the adapter expects
// inside BASE_PATH (spec §6).
const (
	TraceFileName  = "trace.bin"
	MemoryFileName = "memory.bin"
)

// File mirrors the optional TOML config file's schema.
type File struct {
	BasePath          string `toml:"base_path"`
	OutputDir         string `toml:"output_dir"`
	ChunkRecords      int    `toml:"chunk_records"`
	CancelAfterChunks int    `toml:"cancel_after_chunks"`
}

// Config is the fully resolved set of tunables for one run.
type Config struct {
	BasePath          string
	TracePath         string
	MemoryPath        string
	OutputDir         string
	ChunkRecords      int
	CancelAfterChunks int
}

// Resolve merges a TOML file (optional, may be empty path) with CLI
// overrides and the BASE_PATH environment variable, then preflights that
// trace.bin and memory.bin exist — failing fast per
// SPEC_FULL.md §5 vm_import staging, rather than letting the first reader
// stage surface a less specific error.
func Resolve(tomlPath, basePathFlag, outputDirFlag string, chunkRecordsFlag, cancelAfterChunksFlag int) (*Config, error) {
	var f File
	if tomlPath != "" {
		data, err := os.ReadFile(tomlPath)
		if err != nil {
			return nil, &cerr.IOError{Path: tomlPath, Cause: err}
		}
		if err := toml.Unmarshal(data, &f); err != nil {
			return nil, &cerr.IOError{Path: tomlPath, Cause: err}
		}
	}

	cfg := &Config{
		BasePath:          firstNonEmpty(basePathFlag, f.BasePath, os.Getenv("BASE_PATH")),
		OutputDir:         firstNonEmpty(outputDirFlag, f.OutputDir),
		ChunkRecords:      firstPositive(chunkRecordsFlag, f.ChunkRecords),
		CancelAfterChunks: firstPositive(cancelAfterChunksFlag, f.CancelAfterChunks),
	}
	if cfg.BasePath == "" {
		return nil, &cerr.IOError{Path: "BASE_PATH", Cause: errEmptyBasePath}
	}

	cfg.TracePath = filepath.Join(cfg.BasePath, TraceFileName)
	cfg.MemoryPath = filepath.Join(cfg.BasePath, MemoryFileName)

	if _, err := os.Stat(cfg.TracePath); err != nil {
		return nil, &cerr.IOError{Path: cfg.TracePath, Cause: err}
	}
	if _, err := os.Stat(cfg.MemoryPath); err != nil {
		return nil, &cerr.IOError{Path: cfg.MemoryPath, Cause: err}
	}
	return cfg, nil
}

var errEmptyBasePath = emptyBasePathError{}

type emptyBasePathError struct{}

func (emptyBasePathError) Error() string {
	return "BASE_PATH is not set (and no --base-path flag or config base_path was given)"
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstPositive(vals ...int) int {
	for _, v := range vals {
		if v > 0 {
			return v
		}
	}
	return 0
}
