// Package config loads the server's YAML configuration file, grounded on
// dmitrymodder-minewire's main.go (a yaml.v3-decoded Config struct read once
// at startup) generalized from its proxy-specific fields to corecraft's.
package config

import (
	"flag"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the server's static startup configuration.
type Config struct {
	ListenPort           int      `yaml:"listen_port"`
	ShutdownTimeoutMS    int      `yaml:"shutdown_timeout_ms"`
	PersistentLogs       bool     `yaml:"persistent_logs"`
	OfflineMode          bool     `yaml:"offline_mode"`
	CompressionThreshold int32    `yaml:"compression_threshold"`
	MOTD                 string   `yaml:"motd"`
	MaxPlayers           int      `yaml:"max_players"`
	FaviconPath          string   `yaml:"favicon_path"`
	Operators            []string `yaml:"operators"`
}

// IsOperator reports whether username appears in the configured operator
// list, the gate session.handleAdminCommand checks before acting on a
// privileged chat command (spec §4.6 "mutated by privileged chat commands").
func (c Config) IsOperator(username string) bool {
	for _, op := range c.Operators {
		if op == username {
			return true
		}
	}
	return false
}

// defaults mirrors minewire's "apply defaults if not specified" pattern.
func defaults() Config {
	return Config{
		ListenPort:           25565,
		ShutdownTimeoutMS:    5000,
		PersistentLogs:       false,
		OfflineMode:          false,
		CompressionThreshold: 256,
		MOTD:                 "A Corecraft Server",
		MaxPlayers:           20,
		FaviconPath:          "",
	}
}

// ShutdownTimeout is ShutdownTimeoutMS as a time.Duration.
func (c Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutMS) * time.Millisecond
}

// Load reads path as YAML over the built-in defaults(), so a config file
// only needs to set the fields it wants to override.
func Load(path string) (Config, error) {
	cfg := defaults()

	f, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// BindFlags registers CLI overrides for port and shutdown timeout on fs,
// applied by ApplyFlags after fs.Parse, in the style of the teacher's
// player_ping_no_check/enableMobs package-level flags.
func BindFlags(fs *flag.FlagSet) (port *int, shutdownMS *int) {
	port = fs.Int("port", 0, "override the configured listen port")
	shutdownMS = fs.Int("shutdown-timeout-ms", 0, "override the configured shutdown timeout")
	return
}

// ApplyFlags overlays non-zero CLI overrides onto cfg.
func ApplyFlags(cfg Config, port, shutdownMS *int) Config {
	if port != nil && *port != 0 {
		cfg.ListenPort = *port
	}
	if shutdownMS != nil && *shutdownMS != 0 {
		cfg.ShutdownTimeoutMS = *shutdownMS
	}
	return cfg
}
