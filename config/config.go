// Package config defines Vandal's layered configuration: built-in defaults,
// overridden by an optional TOML file, overridden by CLI flags — the same
// precedence geth's cmd/geth/config.go applies (spec.md §6; SPEC_FULL §A
// "Configuration").
package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Config is the flat, fully-resolved configuration the driver, rpcclient,
// and output package consume.
type Config struct {
	IPCPath      string `toml:"ipc"`
	Heuristics   string `toml:"heuristics"`
	HeuristicDir string `toml:"heuristic_dir"`
	Block        string `toml:"block"`
	Tx           string `toml:"tx"`
	OutputDir    string `toml:"output"`
	CPUProfile   string `toml:"cpuprofile"`
}

// DefaultIPCPath is the built-in --ipc default (spec.md §6).
const DefaultIPCPath = "/tmp/geth.ipc"

// DefaultBlock is the built-in --block default for streaming mode.
const DefaultBlock = "latest"

// Defaults returns the built-in configuration, before any TOML file or CLI
// flag is layered on top.
func Defaults() Config {
	return Config{
		IPCPath: DefaultIPCPath,
		Block:   DefaultBlock,
	}
}

// LoadFile decodes the TOML file at path into base, returning the merged
// result. A blank path is a no-op: there is no mandatory config file.
func LoadFile(path string, base Config) (Config, error) {
	if path == "" {
		return base, nil
	}
	if _, err := toml.DecodeFile(path, &base); err != nil {
		return Config{}, fmt.Errorf("config: decoding %s: %w", path, err)
	}
	return base, nil
}
