// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 🔌 Parser is the interface for config parsers
type Parser interface {
	// 📝 Parse parses the config from bytes
	Parse(ctx context.Context, data []byte) (*Config, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

const (
	DefaultCommitMessage = "Replaced variables in template"
	DefaultBranchPrefix  = "templit/new-"
)

var (
	DefaultIncludeExtensions = []string{"ts", "json", "yaml", "yml", "md"}
	DefaultIncludeFiles      = []string{"Dockerfile"}
	DefaultIgnorePatterns    = []string{"**/dist/**", "**/bin/**", "**/node_modules/**"}

	// MetadataIgnorePatterns cover the template's own readme and manifest,
	// which are never rewritten regardless of configuration.
	MetadataIgnorePatterns = []string{"**/**.templit.md", "**/templit.json"}

	// SearchNames are the file names looked up in the working directory
	SearchNames = []string{".templitrc.yaml", ".templitrc.yml", ".templitrc.hcl", ".templitrc.json", ".templitrc.toml"}
)

// 📚 Config represents the complete configuration
type Config struct {
	IncludeExtensions []string `json:"include_extensions,omitempty" yaml:"include_extensions,omitempty" toml:"include_extensions,omitempty" hcl:"include_extensions,optional"`
	IncludeFiles      []string `json:"include_files,omitempty" yaml:"include_files,omitempty" toml:"include_files,omitempty" hcl:"include_files,optional"`
	IgnorePatterns    []string `json:"ignore_patterns,omitempty" yaml:"ignore_patterns,omitempty" toml:"ignore_patterns,omitempty" hcl:"ignore_patterns,optional"`
	CommitMessage     string   `json:"commit_message,omitempty" yaml:"commit_message,omitempty" toml:"commit_message,omitempty" hcl:"commit_message,optional"`
	BranchPrefix      string   `json:"branch_prefix,omitempty" yaml:"branch_prefix,omitempty" toml:"branch_prefix,omitempty" hcl:"branch_prefix,optional"`
	PersistGlobals    bool     `json:"persist_globals,omitempty" yaml:"persist_globals,omitempty" toml:"persist_globals,omitempty" hcl:"persist_globals,optional"`

	location string
}

// Default returns a validated config with every default applied
func Default() *Config {
	cfg := &Config{}
	// defaults always validate
	_ = cfg.Validate()
	return cfg
}

// 🎯 Load loads the configuration from a file
func Load(ctx context.Context, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading configuration")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("no parser found for file: %s", path)
	}

	cfg, err := p.Parse(ctx, data)
	if err != nil {
		return nil, errors.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}
	cfg.location = path

	return cfg, nil
}

// 🔎 Discover loads explicit when set, else the first SearchNames entry found in dir,
// else the defaults.
func Discover(ctx context.Context, dir, explicit string) (*Config, error) {
	if explicit != "" {
		return Load(ctx, explicit)
	}

	for _, name := range SearchNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return Load(ctx, path)
		}
	}

	zerolog.Ctx(ctx).Debug().Str("dir", dir).Msg("no config file found, using defaults")
	return Default(), nil
}

// 🔍 Validate checks if the configuration is valid and fills defaults
func (cfg *Config) Validate() error {
	if len(cfg.IncludeExtensions) == 0 {
		cfg.IncludeExtensions = append([]string(nil), DefaultIncludeExtensions...)
	}
	if len(cfg.IncludeFiles) == 0 {
		cfg.IncludeFiles = append([]string(nil), DefaultIncludeFiles...)
	}
	if cfg.IgnorePatterns == nil {
		cfg.IgnorePatterns = append([]string(nil), DefaultIgnorePatterns...)
	}
	if cfg.CommitMessage == "" {
		cfg.CommitMessage = DefaultCommitMessage
	}
	if cfg.BranchPrefix == "" {
		cfg.BranchPrefix = DefaultBranchPrefix
	}

	for i, ext := range cfg.IncludeExtensions {
		ext = strings.TrimPrefix(strings.TrimSpace(ext), ".")
		if ext == "" {
			return errors.Errorf("include_extensions[%d]: extension is empty", i)
		}
		if strings.ContainsAny(ext, "/{},") {
			return errors.Errorf("include_extensions[%d]: invalid extension %q", i, ext)
		}
		cfg.IncludeExtensions[i] = ext
	}
	for i, name := range cfg.IncludeFiles {
		if strings.TrimSpace(name) == "" {
			return errors.Errorf("include_files[%d]: file name is empty", i)
		}
		if strings.ContainsAny(name, "/{},") {
			return errors.Errorf("include_files[%d]: invalid file name %q", i, name)
		}
	}
	for i, pattern := range cfg.IgnorePatterns {
		if strings.TrimSpace(pattern) == "" {
			return errors.Errorf("ignore_patterns[%d]: pattern is empty", i)
		}
	}

	return nil
}

// Ignore returns the configured ignore patterns followed by the metadata patterns
func (cfg *Config) Ignore() []string {
	out := make([]string, 0, len(cfg.IgnorePatterns)+len(MetadataIgnorePatterns))
	seen := map[string]bool{}
	for _, p := range append(append([]string(nil), cfg.IgnorePatterns...), MetadataIgnorePatterns...) {
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

// Location returns the file the config was loaded from, empty for defaults
func (cfg *Config) Location() string {
	return cfg.location
}

// 📝 String returns a string representation of the config
func (cfg *Config) String() string {
	return fmt.Sprintf("include=*.{%s},%s ignore=%s",
		strings.Join(cfg.IncludeExtensions, ","),
		strings.Join(cfg.IncludeFiles, ","),
		strings.Join(cfg.Ignore(), ","))
}
