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
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		config      string
		wantErr     bool
		errContains string
		check       func(t *testing.T, cfg *Config)
	}{
		{
			name:     "yaml_full",
			filename: ".templitrc.yaml",
			config: `
include_extensions: [".go", "mod"]
include_files: [Makefile]
ignore_patterns:
  - "**/vendor/**"
commit_message: "chore: apply template"
branch_prefix: "tpl/"
persist_globals: true
`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, []string{"go", "mod"}, cfg.IncludeExtensions, "leading dots should be stripped")
				assert.Equal(t, []string{"Makefile"}, cfg.IncludeFiles)
				assert.Equal(t, []string{"**/vendor/**"}, cfg.IgnorePatterns)
				assert.Equal(t, "chore: apply template", cfg.CommitMessage)
				assert.Equal(t, "tpl/", cfg.BranchPrefix)
				assert.True(t, cfg.PersistGlobals)
			},
		},
		{
			name:     "yaml_empty_uses_defaults",
			filename: ".templitrc.yml",
			config:   "",
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, DefaultIncludeExtensions, cfg.IncludeExtensions)
				assert.Equal(t, DefaultIncludeFiles, cfg.IncludeFiles)
				assert.Equal(t, DefaultIgnorePatterns, cfg.IgnorePatterns)
				assert.Equal(t, DefaultCommitMessage, cfg.CommitMessage)
				assert.Equal(t, DefaultBranchPrefix, cfg.BranchPrefix)
				assert.False(t, cfg.PersistGlobals)
			},
		},
		{
			name:        "yaml_unknown_field",
			filename:    ".templitrc.yaml",
			config:      "destination: /tmp\n",
			wantErr:     true,
			errContains: "parsing YAML",
		},
		{
			name:     "json_minimal",
			filename: ".templitrc.json",
			config:   `{"include_files": ["Dockerfile", "Makefile"]}`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, []string{"Dockerfile", "Makefile"}, cfg.IncludeFiles)
				assert.Equal(t, DefaultIncludeExtensions, cfg.IncludeExtensions)
			},
		},
		{
			name:        "json_unknown_field",
			filename:    ".templitrc.json",
			config:      `{"provider": {}}`,
			wantErr:     true,
			errContains: "parsing JSON",
		},
		{
			name:     "hcl_with_env",
			filename: ".templitrc.hcl",
			config: `
include_extensions = ["ts", "go"]
commit_message     = "bootstrap by ${env.TEMPLIT_TEST_USER}"
persist_globals    = true
`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, []string{"ts", "go"}, cfg.IncludeExtensions)
				assert.Equal(t, "bootstrap by tester", cfg.CommitMessage)
				assert.True(t, cfg.PersistGlobals)
			},
		},
		{
			name:        "hcl_unknown_attribute",
			filename:    ".templitrc.hcl",
			config:      `destination = "/tmp"`,
			wantErr:     true,
			errContains: "decoding HCL",
		},
		{
			name:     "toml_full",
			filename: ".templitrc.toml",
			config: `
include_extensions = ["rs"]
ignore_patterns = ["**/target/**"]
`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, []string{"rs"}, cfg.IncludeExtensions)
				assert.Equal(t, []string{"**/target/**"}, cfg.IgnorePatterns)
			},
		},
		{
			name:        "invalid_extension",
			filename:    ".templitrc.yaml",
			config:      `include_extensions: ["{ts,js}"]`,
			wantErr:     true,
			errContains: "invalid extension",
		},
		{
			name:        "unsupported_extension",
			filename:    "templit.ini",
			config:      "x=1",
			wantErr:     true,
			errContains: "no parser found",
		},
	}

	t.Setenv("TEMPLIT_TEST_USER", "tester")

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := zerolog.New(zerolog.NewTestWriter(t)).WithContext(context.Background())
			path := filepath.Join(t.TempDir(), tt.filename)
			require.NoError(t, os.WriteFile(path, []byte(tt.config), 0644))

			cfg, err := Load(ctx, path)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, path, cfg.Location())
			tt.check(t, cfg)
		})
	}
}

func TestDiscover(t *testing.T) {
	ctx := zerolog.New(zerolog.NewTestWriter(t)).WithContext(context.Background())

	t.Run("no_file_returns_defaults", func(t *testing.T) {
		cfg, err := Discover(ctx, t.TempDir(), "")
		require.NoError(t, err)
		assert.Equal(t, "", cfg.Location())
		assert.Equal(t, DefaultIncludeExtensions, cfg.IncludeExtensions)
	})

	t.Run("finds_rc_file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, ".templitrc.yaml")
		require.NoError(t, os.WriteFile(path, []byte("include_files: [Makefile]\n"), 0644))

		cfg, err := Discover(ctx, dir, "")
		require.NoError(t, err)
		assert.Equal(t, path, cfg.Location())
		assert.Equal(t, []string{"Makefile"}, cfg.IncludeFiles)
	})

	t.Run("explicit_missing_file_fails", func(t *testing.T) {
		_, err := Discover(ctx, t.TempDir(), filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "reading config file")
	})
}

func TestConfig_Ignore(t *testing.T) {
	cfg := &Config{IgnorePatterns: []string{"**/dist/**", "**/templit.json"}}
	require.NoError(t, cfg.Validate())

	assert.Equal(t, []string{"**/dist/**", "**/templit.json", "**/**.templit.md"}, cfg.Ignore())

	// calling twice must not grow the list
	assert.Equal(t, cfg.Ignore(), cfg.Ignore())
	assert.Len(t, cfg.IgnorePatterns, 2)
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, DefaultIgnorePatterns, cfg.IgnorePatterns)
	assert.Contains(t, cfg.Ignore(), "**/**.templit.md")
	assert.Contains(t, cfg.String(), "Dockerfile")
}
