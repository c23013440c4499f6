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

package operation

import (
	"context"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/walteh/templit/pkg/log"
	"github.com/walteh/templit/pkg/text"
	"gitlab.com/tozd/go/errors"
)

// templatedDirPattern matches any path whose last segment holds a {{ ... }} pair
const templatedDirPattern = `**/*\{\{*\}\}*`

// 📂 PathRewriter renames directories whose name contains tokens
type PathRewriter struct {
	scope Scope
}

// 🏭 NewPathRewriter creates a directory rewriter. Extensions and Files of scope are unused.
func NewPathRewriter(scope Scope) *PathRewriter {
	return &PathRewriter{scope: scope}
}

// 🔍 Candidates lists templated directories relative to the root, deepest first.
// Equal depths keep lexical order.
func (p *PathRewriter) Candidates(ctx context.Context) ([]string, error) {
	var dirs []string

	err := p.scope.walk(ctx, func(rel string, d fs.DirEntry) error {
		if !d.IsDir() || !text.HasToken(path.Base(rel)) {
			return nil
		}
		if ok, _ := doublestar.Match(templatedDirPattern, rel); ok {
			dirs = append(dirs, rel)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Errorf("walking templated directories: %w", err)
	}

	sort.Strings(dirs)
	sort.SliceStable(dirs, func(i, j int) bool {
		return segments(dirs[i]) > segments(dirs[j])
	})
	return dirs, nil
}

func segments(rel string) int {
	return strings.Count(rel, "/") + 1
}

// 🏃 Run rewrites the last segment of every candidate. DryRun only records
// variable names. Apply renames, refusing targets that already exist; failures
// are collected into an *AggregateError returned after all candidates were visited.
func (p *PathRewriter) Run(ctx context.Context, vars map[string]string, mode text.Mode) (text.VariableSet, error) {
	logger := zerolog.Ctx(ctx)

	dirs, err := p.Candidates(ctx)
	if err != nil {
		return nil, errors.Errorf("listing directories: %w", err)
	}

	found := text.NewVariableSet()
	replacer := p.scope.replacer(found, vars, mode)
	agg := &AggregateError{Kind: KindPath}

	for _, rel := range dirs {
		if err := ctx.Err(); err != nil {
			return found, err
		}

		parent, name := path.Split(rel)
		newName, err := replacer.Replace(ctx, name)
		if err != nil {
			agg.add(rel+" -> ?", err)
			continue
		}

		if mode == text.DryRun || newName == name {
			continue
		}

		newRel := parent + newName
		oldPath := filepath.Join(p.scope.Root, filepath.FromSlash(rel))
		newPath := filepath.Join(p.scope.Root, filepath.FromSlash(newRel))

		logger.Debug().Str("from", rel).Str("to", newRel).Msg("renaming directory")

		if err := Rename(oldPath, newPath); err != nil {
			agg.add(rel+" -> "+newRel, err)
			log.FromContext(ctx).LogFileOperation(ctx, log.FileOperation{Path: rel, Kind: log.OpFailed, Err: err})
			continue
		}

		log.FromContext(ctx).LogFileOperation(ctx, log.FileOperation{Path: newRel, From: rel, Kind: log.OpRenamed})
	}

	return found, agg.orNil()
}

// 🔀 Rename moves oldPath to newPath, failing with *PathCollisionError when
// newPath exists. oldPath is untouched on failure.
func Rename(oldPath, newPath string) error {
	if _, err := os.Lstat(newPath); err == nil {
		return &PathCollisionError{Old: oldPath, New: newPath}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return errors.Errorf("checking %s: %w", newPath, err)
	}

	if err := os.Rename(oldPath, newPath); err != nil {
		return errors.Errorf("renaming: %w", err)
	}
	return nil
}
