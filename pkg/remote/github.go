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

// Package remote turns template repository shorthands into clone URLs.
package remote

import (
	"context"
	"os"
	"regexp"
	"strings"

	"github.com/google/go-github/v60/github"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 📦 Template describes a template repository hosted on GitHub
type Template struct {
	Owner         string
	Repo          string
	CloneURL      string
	DefaultBranch string
}

// 🔍 Resolver expands a remote reference. ok is false when ref is already a URL
// or path that git understands as is.
type Resolver interface {
	Resolve(ctx context.Context, ref string) (tmpl *Template, ok bool, err error)
}

var shorthand = regexp.MustCompile(`^([A-Za-z0-9](?:[A-Za-z0-9-]*[A-Za-z0-9])?)/([A-Za-z0-9._-]+)$`)

// ParseShorthand accepts github:owner/repo and bare owner/repo
func ParseShorthand(ref string) (owner, repo string, ok bool) {
	ref = strings.TrimSpace(ref)
	ref = strings.TrimPrefix(ref, "github:")
	ref = strings.TrimSuffix(ref, ".git")

	m := shorthand.FindStringSubmatch(ref)
	if m == nil || m[2] == "." || m[2] == ".." {
		return "", "", false
	}
	return m[1], m[2], true
}

// 🐙 GitHubResolver looks shorthands up through the GitHub API
type GitHubResolver struct {
	client *github.Client
}

// NewGitHubResolver wraps client
func NewGitHubResolver(client *github.Client) *GitHubResolver {
	return &GitHubResolver{client: client}
}

// 🏭 NewGitHubClient creates an API client, authenticated when GITHUB_TOKEN is set
func NewGitHubClient(ctx context.Context) *github.Client {
	client := github.NewClient(nil)
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		zerolog.Ctx(ctx).Debug().Msg("using GITHUB_TOKEN for api requests")
		client = client.WithAuthToken(token)
	}
	return client
}

func (r *GitHubResolver) Resolve(ctx context.Context, ref string) (*Template, bool, error) {
	owner, repo, ok := ParseShorthand(ref)
	if !ok {
		return nil, false, nil
	}

	zerolog.Ctx(ctx).Debug().Str("owner", owner).Str("repo", repo).Msg("resolving template repository")

	info, _, err := r.client.Repositories.Get(ctx, owner, repo)
	if err != nil {
		return nil, true, errors.Errorf("getting repository %s/%s: %w", owner, repo, err)
	}

	return &Template{
		Owner:         owner,
		Repo:          repo,
		CloneURL:      info.GetCloneURL(),
		DefaultBranch: info.GetDefaultBranch(),
	}, true, nil
}
