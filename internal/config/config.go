// Package config loads and saves this machine's persistent settings
// using a TOML file in the user's config directory.
package config

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/kirsle/configdir"

	"n8machine/internal/log"
)

type Config struct {
	ROM   ROMConfig   `toml:"rom"`
	GDB   GDBConfig   `toml:"gdb"`
	Debug DebugConfig `toml:"debug"`
}

type ROMConfig struct {
	Path       string `toml:"path"`
	SymbolPath string `toml:"symbol_path"`
}

type GDBConfig struct {
	Addr      string `toml:"addr"`
	StepGuard int    `toml:"step_guard"`
}

type DebugConfig struct {
	Breakpoints []uint16 `toml:"breakpoints"`
	Log         string   `toml:"log"`
}

// Default returns the configuration used when no config file exists yet.
func Default() Config {
	return Config{
		GDB: GDBConfig{Addr: "localhost:2331", StepGuard: 16},
	}
}

var ConfigDir = sync.OnceValue(func() string {
	dir := configdir.LocalConfig("n8machine")
	if err := configdir.MakePath(dir); err != nil {
		log.ModMachine.Fatalf("failed to create config directory %s: %v", dir, err)
	}
	return dir
})

const cfgFilename = "config.toml"

// LoadOrDefault loads the configuration from the n8machine config
// directory, falling back to Default if no config file exists or it fails
// to parse.
func LoadOrDefault() Config {
	var cfg Config
	_, err := toml.DecodeFile(filepath.Join(ConfigDir(), cfgFilename), &cfg)
	if err != nil {
		return Default()
	}
	return cfg
}

// Load reads path (an explicit --config override) instead of the default
// config directory location.
func Load(path string) (Config, error) {
	var cfg Config
	_, err := toml.DecodeFile(path, &cfg)
	return cfg, err
}

// Save writes cfg into the n8machine config directory.
func Save(cfg Config) error {
	buf, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(ConfigDir(), cfgFilename), buf, 0644)
}
