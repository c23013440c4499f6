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
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/walteh/templit/pkg/config"
	"github.com/walteh/templit/pkg/git"
	"github.com/walteh/templit/pkg/log"
	"github.com/walteh/templit/pkg/prompt"
	"github.com/walteh/templit/pkg/readme"
	"github.com/walteh/templit/pkg/remote"
	"github.com/walteh/templit/pkg/text"
	"github.com/walteh/templit/pkg/vars"
	"gitlab.com/tozd/go/errors"
)

// 🔧 BootstrapOptions wires the collaborators of a bootstrap run
type BootstrapOptions struct {
	// Git runs git in the target repository
	Git *git.Client
	// Asker asks the operator questions
	Asker prompt.Asker
	// Resolver determines variable values, sharing Asker
	Resolver *vars.Resolver
	// Config selects files and the commit message, nil means defaults
	Config *config.Config
	// Remotes expands template shorthands, optional
	Remotes remote.Resolver
	// Readme renders *.templit.md after the merge, optional
	Readme *readme.Renderer
}

// 🚀 Bootstrapper merges a template branch into a new branch and fills in its variables
type Bootstrapper struct {
	git      *git.Client
	asker    prompt.Asker
	resolver *vars.Resolver
	cfg      *config.Config
	remotes  remote.Resolver
	readme   *readme.Renderer
}

// 📋 BootstrapResult describes what a run did
type BootstrapResult struct {
	// Aborted is set when the run stopped early without error
	Aborted bool
	// Reason explains an abort
	Reason string
	// Branch is the branch created for the template
	Branch string
	// Values are the resolved variables
	Values map[string]string
	// Committed is set when a commit was made
	Committed bool
}

// 🏭 NewBootstrapper validates opts
func NewBootstrapper(opts BootstrapOptions) (*Bootstrapper, error) {
	if opts.Git == nil {
		return nil, errors.Errorf("git client is required")
	}
	if opts.Asker == nil {
		return nil, errors.Errorf("asker is required")
	}
	if opts.Resolver == nil {
		opts.Resolver = vars.NewResolver(nil, opts.Asker)
	}
	if opts.Config == nil {
		opts.Config = config.Default()
	}
	return &Bootstrapper{
		git:      opts.Git,
		asker:    opts.Asker,
		resolver: opts.Resolver,
		cfg:      opts.Config,
		remotes:  opts.Remotes,
		readme:   opts.Readme,
	}, nil
}

func aborted(reason string) *BootstrapResult {
	return &BootstrapResult{Aborted: true, Reason: reason}
}

// 🏃 Run performs the whole bootstrap. Declines and a dirty work tree end the run
// cleanly with Aborted set; everything else that fails is returned as an error.
func (b *Bootstrapper) Run(ctx context.Context) (*BootstrapResult, error) {
	logger := log.FromContext(ctx)

	if res, err := b.checkStatus(ctx); res != nil || err != nil {
		return res, err
	}

	branch, err := prompt.AskDefault(ctx, b.asker, "Enter branch name for new template:", vars.BranchName(b.cfg.BranchPrefix))
	if err != nil {
		return nil, err
	}
	if err := b.git.CreateBranch(ctx, branch); err != nil {
		return nil, err
	}

	if err := b.mergeTemplate(ctx); err != nil {
		return nil, err
	}
	logger.Success("Template successfully merged!")

	root, err := b.git.RepoRoot(ctx)
	if err != nil {
		return nil, err
	}

	if b.readme != nil {
		if _, err := b.readme.Show(ctx, logger.Console(), root); err != nil {
			logger.Warningf("could not show template readme: %v", err)
		}
	}

	scope := ScopeFromConfig(root, b.cfg)

	contentVars, err := NewContentRewriter(scope, nil).Run(ctx, nil, text.DryRun)
	if err != nil {
		return nil, errors.Errorf("scanning content: %w", err)
	}

	listing, err := b.git.ChangedFiles(ctx)
	if err != nil {
		return nil, err
	}
	pathVars := text.DiscoverVariables(ctx, listing)

	dirVars, err := NewPathRewriter(scope).Run(ctx, nil, text.DryRun)
	if err != nil {
		return nil, errors.Errorf("scanning directories: %w", err)
	}
	pathVars = pathVars.Union(dirVars)

	zerolog.Ctx(ctx).Debug().
		Strs("content", contentVars.Sorted()).
		Strs("paths", pathVars.Sorted()).
		Msg("variables discovered")

	values, err := b.resolver.ResolveAll(ctx, contentVars.Union(pathVars), pathVars)
	if err != nil {
		return nil, errors.Errorf("resolving variables: %w", err)
	}

	logger.StartRun(ctx, log.RunOperation{Root: root, Mode: text.Apply.String()})
	err = b.apply(ctx, scope, values, contentVars, git.SplitLines(listing))
	logger.EndRun(ctx)
	if err != nil {
		return nil, err
	}

	res := &BootstrapResult{Branch: branch, Values: values}
	if len(contentVars) > 0 || len(pathVars) > 0 {
		if err := b.git.CommitAll(ctx, b.cfg.CommitMessage); err != nil {
			return nil, err
		}
		res.Committed = true
		logger.Successf("Committed on branch %s", branch)
	}

	return res, nil
}

func (b *Bootstrapper) checkStatus(ctx context.Context) (*BootstrapResult, error) {
	logger := log.FromContext(ctx)

	status, err := b.git.Status(ctx)
	if err != nil {
		return nil, err
	}

	if status.IsModified() {
		msg := "You have modified files, please commit or stash them before continuing."
		logger.Warning(msg)
		return aborted(msg), nil
	}

	if status.HasUntracked() {
		ok, err := prompt.Confirm(ctx, b.asker, "You have untracked files, it is recommended commit or stash them before continuing. Do you want to progress anyway?")
		if err != nil {
			return nil, err
		}
		if !ok {
			return aborted("untracked files"), nil
		}
	}

	return nil, nil
}

// mergeTemplate reuses or adds the template remote and merges its branch.
// A failed merge is left for the operator to resolve.
func (b *Bootstrapper) mergeTemplate(ctx context.Context) error {
	logger := log.FromContext(ctx)

	var name string
	for name == "" {
		answer, err := b.asker.Ask(ctx, "Enter template repository name (if it's already between remotes) name:")
		if err != nil {
			return err
		}
		name = strings.TrimSpace(answer)
	}

	_, found, err := b.git.FindRemote(ctx, name)
	if err != nil {
		return err
	}

	var suggested string
	if !found {
		url, err := b.asker.Ask(ctx, "Enter url for remote:")
		if err != nil {
			return err
		}
		url = strings.TrimSpace(url)

		if b.remotes != nil {
			tmpl, ok, err := b.remotes.Resolve(ctx, url)
			switch {
			case err != nil:
				logger.Warningf("could not look up %s, using it as given: %v", url, err)
			case ok:
				url = tmpl.CloneURL
				suggested = tmpl.DefaultBranch
			}
		}

		if err := b.git.AddRemote(ctx, name, url); err != nil {
			return err
		}
	}

	branch, err := prompt.AskDefault(ctx, b.asker, "Enter name of branch containing template:", suggested)
	if err != nil {
		return err
	}

	if err := b.git.FetchAndMerge(ctx, name, branch); err != nil {
		logger.Error("The merge was not successful, please resolve the conflicts (& make commit), before continuing.")
		logger.Error(err.Error())
		if _, err := b.asker.Ask(ctx, "Press enter to continue..."); err != nil {
			return err
		}
	}

	return nil
}

func (b *Bootstrapper) apply(ctx context.Context, scope Scope, values map[string]string, contentVars text.VariableSet, changed []string) error {
	if len(contentVars) > 0 {
		if _, err := NewContentRewriter(scope, nil).Run(ctx, values, text.Apply); err != nil {
			return errors.Errorf("rewriting content: %w", err)
		}
	}

	pr := NewPathRewriter(scope)
	dirs, err := pr.Candidates(ctx)
	if err != nil {
		return err
	}

	dirsRenamed := false
	if len(dirs) > 0 {
		ok, err := prompt.Confirm(ctx, b.asker, fmt.Sprintf("Rename %d templated directories?", len(dirs)))
		if err != nil {
			return err
		}
		if ok {
			if _, err := pr.Run(ctx, values, text.Apply); err != nil {
				return errors.Errorf("renaming directories: %w", err)
			}
			dirsRenamed = true
		}
	}

	replacer := scope.replacer(nil, values, text.Apply)
	for _, file := range changed {
		if err := b.moveFile(ctx, scope.Root, replacer, file, dirsRenamed); err != nil {
			return err
		}
	}
	return nil
}

// moveFile renames one changed file to its templated name. When directories
// were renamed already, only the base name is left to change.
func (b *Bootstrapper) moveFile(ctx context.Context, root string, replacer text.TextReplacer, file string, dirsRenamed bool) error {
	newRel, err := replacer.Replace(ctx, file)
	if err != nil {
		return errors.Errorf("templating %s: %w", file, err)
	}
	if newRel == file {
		return nil
	}

	oldRel := file
	if dirsRenamed {
		dir, err := replacer.Replace(ctx, path.Dir(file))
		if err != nil {
			return errors.Errorf("templating %s: %w", file, err)
		}
		candidate := path.Join(dir, path.Base(file))
		if _, err := os.Lstat(filepath.Join(root, filepath.FromSlash(candidate))); err == nil {
			oldRel = candidate
		}
	}
	if oldRel == newRel {
		return nil
	}

	oldPath := filepath.Join(root, filepath.FromSlash(oldRel))
	newPath := filepath.Join(root, filepath.FromSlash(newRel))

	if _, err := os.Lstat(oldPath); errors.Is(err, fs.ErrNotExist) {
		zerolog.Ctx(ctx).Debug().Str("file", oldRel).Msg("changed file no longer exists, skipping")
		log.FromContext(ctx).LogFileOperation(ctx, log.FileOperation{Path: oldRel, Kind: log.OpSkipped})
		return nil
	}

	ok, err := prompt.Confirm(ctx, b.asker, fmt.Sprintf("Do you want to rename/move file '%s' to '%s'?", oldPath, newPath))
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(newPath), 0755); err != nil {
		return errors.Errorf("creating %s: %w", filepath.Dir(newPath), err)
	}
	if err := Rename(oldPath, newPath); err != nil {
		return errors.Errorf("moving %s: %w", oldRel, err)
	}

	log.FromContext(ctx).LogFileOperation(ctx, log.FileOperation{Path: newRel, From: oldRel, Kind: log.OpMoved})
	return nil
}
