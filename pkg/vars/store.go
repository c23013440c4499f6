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

package vars

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/adrg/xdg"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

// GlobalsFile is the store location relative to the XDG config home
const GlobalsFile = "templit/globals.yaml"

// 🌍 GlobalStore remembers values the operator chose to reuse across variables
type GlobalStore struct {
	mu     sync.Mutex
	values map[string]string
}

// NewGlobalStore creates an empty store
func NewGlobalStore() *GlobalStore {
	return &GlobalStore{values: map[string]string{}}
}

// Get returns the stored value for name
func (s *GlobalStore) Get(name string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[name]
	return v, ok && v != ""
}

// Set stores value for name
func (s *GlobalStore) Set(name, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[name] = value
}

// Names returns the stored names sorted
func (s *GlobalStore) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.values))
	for n := range s.values {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// 📂 DefaultGlobalsPath returns $XDG_CONFIG_HOME/templit/globals.yaml, creating the directory
func DefaultGlobalsPath() (string, error) {
	path, err := xdg.ConfigFile(GlobalsFile)
	if err != nil {
		return "", errors.Errorf("resolving globals path: %w", err)
	}
	return path, nil
}

// 📥 LoadGlobalStore reads a store from path; a missing file yields an empty store
func LoadGlobalStore(ctx context.Context, path string) (*GlobalStore, error) {
	store := NewGlobalStore()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		zerolog.Ctx(ctx).Debug().Str("path", path).Msg("no global variables saved yet")
		return store, nil
	}
	if err != nil {
		return nil, errors.Errorf("reading globals: %w", err)
	}

	if err := yaml.Unmarshal(data, &store.values); err != nil {
		return nil, errors.Errorf("parsing globals: %w", err)
	}
	if store.values == nil {
		store.values = map[string]string{}
	}

	zerolog.Ctx(ctx).Debug().Str("path", path).Int("count", len(store.values)).Msg("loaded global variables")
	return store, nil
}

// 📤 Save writes the store to path as YAML
func (s *GlobalStore) Save(ctx context.Context, path string) error {
	s.mu.Lock()
	data, err := yaml.Marshal(s.values)
	s.mu.Unlock()
	if err != nil {
		return errors.Errorf("encoding globals: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Errorf("creating globals directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return errors.Errorf("writing globals: %w", err)
	}

	zerolog.Ctx(ctx).Debug().Str("path", path).Msg("saved global variables")
	return nil
}
