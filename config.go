package main

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
)

// Config collects the command's run settings. It may be read from a TOML
// file, whose keys match the command line flags:
//
//	entry = "$$Function__main_$$"
//	timeout = "5s"
//	trace = false
//	call-limit = 1000
//	interactive = true
//	prompt = "? "
//	dump = true
type Config struct {
	Entry       string        `toml:"entry"`
	Timeout     time.Duration `toml:"timeout"`
	Trace       bool          `toml:"trace"`
	CallLimit   int           `toml:"call-limit"`
	Interactive bool          `toml:"interactive"`
	Prompt      string        `toml:"prompt"`
	Dump        bool          `toml:"dump"`
}

var defaultConfig = Config{
	Entry:  string(mainLabel),
	Prompt: "? ",
}

// loadConfig reads path over the defaults; unknown keys are an error.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return cfg, fmt.Errorf("parse error in %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return cfg, fmt.Errorf("unknown settings in %s: %v", path, undecoded)
	}
	if _, err := parseLabel(cfg.Entry); err != nil {
		return cfg, fmt.Errorf("invalid entry in %s: %w", path, err)
	}
	return cfg, nil
}

// options returns the VM options the settings call for, other than input and
// output.
func (cfg Config) options(logf func(mess string, args ...interface{})) []VMOption {
	opts := []VMOption{WithEntryLabel(Label(cfg.Entry))}
	if cfg.CallLimit != 0 {
		opts = append(opts, WithCallLimit(cfg.CallLimit))
	}
	if cfg.Trace && logf != nil {
		opts = append(opts, WithLogf(logf))
	}
	return opts
}
