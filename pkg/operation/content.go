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
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/walteh/templit/pkg/casing"
	"github.com/walteh/templit/pkg/log"
	"github.com/walteh/templit/pkg/text"
	"gitlab.com/tozd/go/errors"
)

// 🎯 Scope selects the files and directories a scan visits
type Scope struct {
	// Root is the directory scanned, usually the repository root
	Root string
	// Extensions are file extensions without the leading dot
	Extensions []string
	// Files are exact base names included regardless of extension
	Files []string
	// Ignore are doublestar globs relative to Root
	Ignore []string
	// Registry overrides the case transforms, nil means casing.Default()
	Registry casing.Registry
}

// includePatterns builds **/*.{ext,...} and **/{file,...}
func (s Scope) includePatterns() []string {
	var patterns []string
	if len(s.Extensions) > 0 {
		patterns = append(patterns, "**/*.{"+strings.Join(s.Extensions, ",")+"}")
	}
	if len(s.Files) > 0 {
		patterns = append(patterns, "**/{"+strings.Join(s.Files, ",")+"}")
	}
	return patterns
}

// 🚫 ignored reports whether rel (slash separated) matches an ignore glob.
// The .git directory is never scanned.
func (s Scope) ignored(rel string) bool {
	if rel == ".git" || strings.HasPrefix(rel, ".git/") {
		return true
	}
	for _, pattern := range s.Ignore {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

// 🚶 walk visits every entry under Root with its slash separated relative path.
// Matching is done per path with doublestar.Match so braces in directory
// names are never read as glob syntax.
func (s Scope) walk(ctx context.Context, fn func(rel string, d fs.DirEntry) error) error {
	return fs.WalkDir(os.DirFS(s.Root), ".", func(rel string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		if d.IsDir() && rel == ".git" {
			return fs.SkipDir
		}
		if s.ignored(rel) {
			return nil
		}
		return fn(rel, d)
	})
}

func matchAny(patterns []string, rel string) bool {
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

func (s Scope) replacer(found text.VariableSet, vars map[string]string, mode text.Mode) text.TextReplacer {
	var opts []text.Option
	if s.Registry != nil {
		opts = append(opts, text.WithRegistry(s.Registry))
	}
	return text.NewTokenReplacer(found, vars, mode, opts...)
}

// 📝 ContentRewriter scans included files for tokens and rewrites them in place
type ContentRewriter struct {
	scope Scope
	sink  FileSink
}

// 🏭 NewContentRewriter creates a content rewriter writing through sink.
// A nil sink writes files atomically.
func NewContentRewriter(scope Scope, sink FileSink) *ContentRewriter {
	if sink == nil {
		sink = AtomicSink{}
	}
	return &ContentRewriter{scope: scope, sink: sink}
}

// 🔍 Files lists included regular files relative to the root, sorted.
// Each call walks the tree again.
func (c *ContentRewriter) Files(ctx context.Context) ([]string, error) {
	patterns := c.scope.includePatterns()
	var files []string

	err := c.scope.walk(ctx, func(rel string, d fs.DirEntry) error {
		if !d.Type().IsRegular() || !matchAny(patterns, rel) {
			return nil
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, errors.Errorf("walking %s: %w", c.scope.Root, err)
	}

	sort.Strings(files)
	return files, nil
}

// 🏃 Run visits every included file. DryRun only records variable names;
// Apply substitutes vars and writes every visited file back through the sink.
// Per-file failures are collected into an *AggregateError returned after the scan.
func (c *ContentRewriter) Run(ctx context.Context, vars map[string]string, mode text.Mode) (text.VariableSet, error) {
	logger := zerolog.Ctx(ctx)

	files, err := c.Files(ctx)
	if err != nil {
		return nil, errors.Errorf("listing files: %w", err)
	}

	found := text.NewVariableSet()
	replacer := c.scope.replacer(found, vars, mode)
	agg := &AggregateError{Kind: KindContent}

	for _, rel := range files {
		if err := ctx.Err(); err != nil {
			return found, err
		}

		abs := filepath.Join(c.scope.Root, filepath.FromSlash(rel))
		logger.Debug().Str("file", rel).Stringer("mode", mode).Msg("scanning file")

		res, info, err := c.process(ctx, replacer, abs)
		if err != nil {
			agg.add(rel, err)
			if mode == text.Apply {
				log.FromContext(ctx).LogFileOperation(ctx, log.FileOperation{Path: rel, Kind: log.OpFailed, Err: err})
			}
			continue
		}

		if mode == text.DryRun {
			continue
		}

		if err := c.sink.WriteFile(ctx, abs, res.OriginalContent, res.ModifiedContent, info.Mode()); err != nil {
			agg.add(rel, err)
			log.FromContext(ctx).LogFileOperation(ctx, log.FileOperation{Path: rel, Kind: log.OpFailed, Err: err})
			continue
		}

		if res.ReplacementCount > 0 {
			log.FromContext(ctx).LogFileOperation(ctx, log.FileOperation{
				Path:         rel,
				Kind:         log.OpRewritten,
				Replacements: res.ReplacementCount,
			})
		}
	}

	return found, agg.orNil()
}

func (c *ContentRewriter) process(ctx context.Context, replacer text.TextReplacer, abs string) (*text.ReplacementResult, fs.FileInfo, error) {
	info, err := os.Stat(abs)
	if err != nil {
		return nil, nil, errors.Errorf("stating file: %w", err)
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, nil, errors.Errorf("reading file: %w", err)
	}

	res, err := replacer.ReplaceString(ctx, string(data))
	if err != nil {
		return nil, nil, err
	}

	return res, info, nil
}
