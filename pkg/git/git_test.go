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

package git_test

import (
	"context"
	"os/exec"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/walteh/templit/pkg/git"
	"gitlab.com/tozd/go/errors"
)

// 🎭 mockRunner records git invocations
type mockRunner struct {
	mock.Mock
}

func (m *mockRunner) Run(ctx context.Context, args ...string) (string, error) {
	ret := m.Called(args)
	return ret.String(0), ret.Error(1)
}

func testContext(t *testing.T) context.Context {
	return zerolog.New(zerolog.NewTestWriter(t)).WithContext(context.Background())
}

func TestClient_Remotes(t *testing.T) {
	runner := &mockRunner{}
	runner.On("Run", []string{"remote", "-v"}).Return(
		"origin\tgit@github.com:me/app.git (fetch)\n"+
			"origin\tgit@github.com:me/app.git (push)\n"+
			"template\thttps://github.com/org/template.git (fetch)\n"+
			"template\thttps://github.com/org/template.git (push)\n", nil)

	client := git.New(runner)
	remotes, err := client.Remotes(testContext(t))
	require.NoError(t, err)

	assert.Equal(t, []git.Remote{
		{Name: "origin", URL: "git@github.com:me/app.git"},
		{Name: "template", URL: "https://github.com/org/template.git"},
	}, remotes)

	r, ok, err := client.FindRemote(testContext(t), "template")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "https://github.com/org/template.git", r.URL)

	_, ok, err = client.FindRemote(testContext(t), "upstream")
	require.NoError(t, err)
	assert.False(t, ok)

	runner.AssertExpectations(t)
}

func TestClient_Status(t *testing.T) {
	tests := []struct {
		name          string
		output        string
		wantModified  bool
		wantUntracked bool
	}{
		{
			name:   "clean",
			output: "",
		},
		{
			name:          "untracked_only",
			output:        "?? notes.txt\n?? tmp/\n",
			wantUntracked: true,
		},
		{
			name:         "modified_only",
			output:       " M package.json\n",
			wantModified: true,
		},
		{
			name:          "both",
			output:        "A  new.ts\n?? scratch.md\n",
			wantModified:  true,
			wantUntracked: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &mockRunner{}
			runner.On("Run", []string{"status", "--porcelain"}).Return(tt.output, nil)

			st, err := git.New(runner).Status(testContext(t))
			require.NoError(t, err)
			assert.Equal(t, tt.wantModified, st.IsModified())
			assert.Equal(t, tt.wantUntracked, st.HasUntracked())
		})
	}

	t.Run("file_names", func(t *testing.T) {
		runner := &mockRunner{}
		runner.On("Run", []string{"status", "--porcelain"}).Return(" M src/app.ts\n?? my notes.md\n", nil)

		st, err := git.New(runner).Status(testContext(t))
		require.NoError(t, err)
		assert.Equal(t, []string{"src/app.ts"}, st.Modified)
		assert.Equal(t, []string{"my notes.md"}, st.Untracked)
	})
}

func TestClient_Commands(t *testing.T) {
	ctx := testContext(t)
	runner := &mockRunner{}
	runner.On("Run", []string{"remote", "add", "template", "https://example.com/t.git"}).Return("", nil)
	runner.On("Run", []string{"fetch", "template", "main"}).Return("", nil)
	runner.On("Run", []string{"merge", "--allow-unrelated-histories", "template/main"}).Return("", nil)
	runner.On("Run", []string{"add", "."}).Return("", nil)
	runner.On("Run", []string{"commit", "-m", "Replaced variables in template"}).Return("", nil)
	runner.On("Run", []string{"rev-parse", "--show-toplevel"}).Return("/work/app\n", nil)
	runner.On("Run", []string{"checkout", "-b", "templit/new-abc123"}).Return("", nil)
	runner.On("Run", []string{"diff", "--name-only", "HEAD", "HEAD~1"}).Return("a.ts\n{{name}}.md\n", nil)

	client := git.New(runner)
	require.NoError(t, client.AddRemote(ctx, "template", "https://example.com/t.git"))
	require.NoError(t, client.FetchAndMerge(ctx, "template", "main"))
	require.NoError(t, client.CommitAll(ctx, "Replaced variables in template"))

	root, err := client.RepoRoot(ctx)
	require.NoError(t, err)
	assert.Equal(t, "/work/app", root)

	require.NoError(t, client.CreateBranch(ctx, "templit/new-abc123"))

	listing, err := client.ChangedFiles(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.ts", "{{name}}.md"}, git.SplitLines(listing))

	runner.AssertExpectations(t)
}

func TestClient_FetchAndMergeFailure(t *testing.T) {
	runner := &mockRunner{}
	cmdErr := &git.CommandError{
		Args:   []string{"merge", "--allow-unrelated-histories", "template/main"},
		Stderr: "CONFLICT (add/add): Merge conflict in README.md\n",
		Err:    errors.New("exit status 1"),
	}
	runner.On("Run", []string{"fetch", "template", "main"}).Return("", nil)
	runner.On("Run", []string{"merge", "--allow-unrelated-histories", "template/main"}).Return("", cmdErr)

	err := git.New(runner).FetchAndMerge(testContext(t), "template", "main")
	require.Error(t, err)

	var got *git.CommandError
	require.True(t, errors.As(err, &got))
	assert.Contains(t, got.Error(), "git merge --allow-unrelated-histories template/main")
	assert.Contains(t, got.Error(), "Merge conflict in README.md")
}

func TestExecRunner(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}

	runner := &git.ExecRunner{Dir: t.TempDir()}

	out, err := runner.Run(testContext(t), "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "git version")

	_, err = runner.Run(testContext(t), "not-a-real-subcommand")
	require.Error(t, err)

	var cmdErr *git.CommandError
	require.True(t, errors.As(err, &cmdErr))
	assert.Equal(t, []string{"not-a-real-subcommand"}, cmdErr.Args)
	assert.NotEmpty(t, cmdErr.Stderr)
}
