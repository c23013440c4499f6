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

	"github.com/walteh/templit/pkg/config"
	"github.com/walteh/templit/pkg/log"
	"github.com/walteh/templit/pkg/text"
	"gitlab.com/tozd/go/errors"
)

// ScopeFromConfig builds the scan scope for root from cfg
func ScopeFromConfig(root string, cfg *config.Config) Scope {
	return Scope{
		Root:       root,
		Extensions: cfg.IncludeExtensions,
		Files:      cfg.IncludeFiles,
		Ignore:     cfg.Ignore(),
	}
}

// 🔎 Discovery holds the variable names found by a dry run
type Discovery struct {
	Content text.VariableSet
	Paths   text.VariableSet
}

// All returns the union of content and path names
func (d *Discovery) All() text.VariableSet {
	return d.Content.Union(d.Paths)
}

// Discover dry-runs the content and directory passes over scope
func Discover(ctx context.Context, scope Scope) (*Discovery, error) {
	content, err := NewContentRewriter(scope, nil).Run(ctx, nil, text.DryRun)
	if err != nil {
		return nil, errors.Errorf("scanning content: %w", err)
	}

	paths, err := NewPathRewriter(scope).Run(ctx, nil, text.DryRun)
	if err != nil {
		return nil, errors.Errorf("scanning directories: %w", err)
	}

	return &Discovery{Content: content, Paths: paths}, nil
}

// 🏃 ApplyAll rewrites content through sink, then renames templated directories.
// A DiffSink previews content only and leaves directories alone.
func ApplyAll(ctx context.Context, scope Scope, values map[string]string, sink FileSink) error {
	logger := log.FromContext(ctx)
	logger.StartRun(ctx, log.RunOperation{Root: scope.Root, Mode: text.Apply.String()})
	defer logger.EndRun(ctx)

	if _, err := NewContentRewriter(scope, sink).Run(ctx, values, text.Apply); err != nil {
		return errors.Errorf("rewriting content: %w", err)
	}

	if _, ok := sink.(DiffSink); ok {
		return nil
	}

	if _, err := NewPathRewriter(scope).Run(ctx, values, text.Apply); err != nil {
		return errors.Errorf("renaming directories: %w", err)
	}
	return nil
}
