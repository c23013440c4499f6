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

// Package git wraps the handful of git commands templit needs.
package git

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 🏃 Runner executes a git subcommand and returns its stdout
type Runner interface {
	Run(ctx context.Context, args ...string) (string, error)
}

// 💥 CommandError is returned when git exits unsuccessfully
type CommandError struct {
	Args   []string
	Stderr string
	Err    error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("error running command 'git %s': %s", strings.Join(e.Args, " "), strings.TrimSpace(e.Stderr))
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// ExecRunner runs the git binary inside Dir
type ExecRunner struct {
	Dir string
}

func (r *ExecRunner) Run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = r.Dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	zerolog.Ctx(ctx).Debug().Strs("args", args).Str("dir", r.Dir).Msg("running git")

	if err := cmd.Run(); err != nil {
		return "", &CommandError{Args: args, Stderr: stderr.String(), Err: err}
	}

	if stderr.Len() > 0 {
		zerolog.Ctx(ctx).Debug().Strs("args", args).Str("stderr", stderr.String()).Msg("git wrote to stderr")
	}

	return stdout.String(), nil
}

// 🌐 Remote is a fetch remote
type Remote struct {
	Name string
	URL  string
}

// 📋 Status summarises git status --porcelain
type Status struct {
	Modified  []string
	Untracked []string
}

// IsModified reports tracked changes
func (s Status) IsModified() bool {
	return len(s.Modified) > 0
}

// HasUntracked reports untracked files
func (s Status) HasUntracked() bool {
	return len(s.Untracked) > 0
}

// 🔧 Client exposes the git operations used while bootstrapping
type Client struct {
	runner Runner
}

// 🏭 New creates a client over runner
func New(runner Runner) *Client {
	return &Client{runner: runner}
}

var remoteLine = regexp.MustCompile(`^(\S+)\s+(\S+)\s+\((fetch|push)\)$`)

// Remotes lists fetch remotes from git remote -v
func (c *Client) Remotes(ctx context.Context) ([]Remote, error) {
	out, err := c.runner.Run(ctx, "remote", "-v")
	if err != nil {
		return nil, errors.Errorf("listing remotes: %w", err)
	}

	var remotes []Remote
	for _, line := range strings.Split(out, "\n") {
		m := remoteLine.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil || m[3] != "fetch" {
			continue
		}
		remotes = append(remotes, Remote{Name: m[1], URL: m[2]})
	}
	return remotes, nil
}

// FindRemote returns the fetch remote called name
func (c *Client) FindRemote(ctx context.Context, name string) (*Remote, bool, error) {
	remotes, err := c.Remotes(ctx)
	if err != nil {
		return nil, false, err
	}
	for _, r := range remotes {
		if r.Name == name {
			return &r, true, nil
		}
	}
	return nil, false, nil
}

// AddRemote runs git remote add
func (c *Client) AddRemote(ctx context.Context, name, url string) error {
	if _, err := c.runner.Run(ctx, "remote", "add", name, url); err != nil {
		return errors.Errorf("adding remote %s: %w", name, err)
	}
	return nil
}

// Status parses git status --porcelain
func (c *Client) Status(ctx context.Context) (Status, error) {
	out, err := c.runner.Run(ctx, "status", "--porcelain")
	if err != nil {
		return Status{}, errors.Errorf("getting status: %w", err)
	}

	var st Status
	for _, line := range strings.Split(out, "\n") {
		// XY<space>path
		if len(line) < 4 {
			continue
		}
		code, file := line[:2], line[3:]
		if code == "??" {
			st.Untracked = append(st.Untracked, file)
		} else {
			st.Modified = append(st.Modified, file)
		}
	}
	return st, nil
}

// FetchAndMerge fetches branch from remote and merges it, allowing unrelated histories
func (c *Client) FetchAndMerge(ctx context.Context, remote, branch string) error {
	if _, err := c.runner.Run(ctx, "fetch", remote, branch); err != nil {
		return errors.Errorf("fetching %s/%s: %w", remote, branch, err)
	}
	if _, err := c.runner.Run(ctx, "merge", "--allow-unrelated-histories", remote+"/"+branch); err != nil {
		return errors.Errorf("merging %s/%s: %w", remote, branch, err)
	}
	return nil
}

// CommitAll stages everything and commits with message
func (c *Client) CommitAll(ctx context.Context, message string) error {
	if _, err := c.runner.Run(ctx, "add", "."); err != nil {
		return errors.Errorf("staging changes: %w", err)
	}
	if _, err := c.runner.Run(ctx, "commit", "-m", message); err != nil {
		return errors.Errorf("committing: %w", err)
	}
	return nil
}

// RepoRoot returns the top level directory of the work tree
func (c *Client) RepoRoot(ctx context.Context) (string, error) {
	out, err := c.runner.Run(ctx, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", errors.Errorf("finding repository root: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// CreateBranch creates name and switches to it
func (c *Client) CreateBranch(ctx context.Context, name string) error {
	if _, err := c.runner.Run(ctx, "checkout", "-b", name); err != nil {
		return errors.Errorf("creating branch %s: %w", name, err)
	}
	return nil
}

// ChangedFiles returns the raw git diff --name-only HEAD HEAD~1 listing
func (c *Client) ChangedFiles(ctx context.Context) (string, error) {
	out, err := c.runner.Run(ctx, "diff", "--name-only", "HEAD", "HEAD~1")
	if err != nil {
		return "", errors.Errorf("listing changed files: %w", err)
	}
	return out, nil
}

// SplitLines returns the non-empty trimmed lines of a listing
func SplitLines(listing string) []string {
	var out []string
	for _, line := range strings.Split(listing, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}
