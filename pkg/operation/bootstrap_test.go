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

package operation_test

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/walteh/templit/pkg/git"
	"github.com/walteh/templit/pkg/operation"
	"github.com/walteh/templit/pkg/prompt"
	"github.com/walteh/templit/pkg/remote"
	"github.com/walteh/templit/pkg/vars"
	"gitlab.com/tozd/go/errors"
)

// 🎭 mockRunner stands in for the git binary
type mockRunner struct {
	mock.Mock
}

func (m *mockRunner) Run(ctx context.Context, args ...string) (string, error) {
	ret := m.Called(args)
	return ret.String(0), ret.Error(1)
}

// 🎭 fakeRemotes resolves every shorthand to a fixed template
type fakeRemotes struct {
	tmpl *remote.Template
}

func (f fakeRemotes) Resolve(ctx context.Context, ref string) (*remote.Template, bool, error) {
	if _, _, ok := remote.ParseShorthand(ref); !ok {
		return nil, false, nil
	}
	return f.tmpl, true, nil
}

var anyNewBranch = mock.MatchedBy(func(args []string) bool {
	return len(args) == 3 && args[0] == "checkout" && args[1] == "-b" && strings.HasPrefix(args[2], "templit/new-")
})

func newBootstrapper(t *testing.T, runner git.Runner, answers ...string) (*operation.Bootstrapper, *bytes.Buffer) {
	t.Helper()
	prompts := &bytes.Buffer{}
	asker := prompt.NewLineAsker(strings.NewReader(strings.Join(answers, "\n")+"\n"), prompts)

	b, err := operation.NewBootstrapper(operation.BootstrapOptions{
		Git:      git.New(runner),
		Asker:    asker,
		Resolver: vars.NewResolver(nil, asker).WithIllegalPattern(vars.IllegalPattern("linux")),
		Remotes: fakeRemotes{tmpl: &remote.Template{
			Owner:         "acme",
			Repo:          "template",
			CloneURL:      "https://github.com/acme/template.git",
			DefaultBranch: "trunk",
		}},
	})
	require.NoError(t, err)
	return b, prompts
}

func TestBootstrapper_Run(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"package.json":                   `{"name": "{{name:kebab}}"}`,
		"packages/{{lib}}-core/index.ts": "export const lib = '{{lib}}';",
		"{{name}}.md":                    "# {{name:title}}",
		"README.templit.md":              "Fill in {{untouched}}",
	})

	runner := &mockRunner{}
	runner.On("Run", []string{"status", "--porcelain"}).Return("", nil)
	runner.On("Run", anyNewBranch).Return("", nil)
	runner.On("Run", []string{"remote", "-v"}).Return("origin\tgit@github.com:me/app.git (fetch)\n", nil)
	runner.On("Run", []string{"remote", "add", "template", "https://github.com/acme/template.git"}).Return("", nil)
	runner.On("Run", []string{"fetch", "template", "trunk"}).Return("", nil)
	runner.On("Run", []string{"merge", "--allow-unrelated-histories", "template/trunk"}).Return("", nil)
	runner.On("Run", []string{"rev-parse", "--show-toplevel"}).Return(root+"\n", nil)
	runner.On("Run", []string{"diff", "--name-only", "HEAD", "HEAD~1"}).Return(
		"package.json\npackages/{{lib}}-core/index.ts\n{{name}}.md\nREADME.templit.md\n", nil)
	runner.On("Run", []string{"add", "."}).Return("", nil)
	runner.On("Run", []string{"commit", "-m", "Replaced variables in template"}).Return("", nil)

	b, prompts := newBootstrapper(t, runner,
		"",                     // default branch name
		"template",             // remote name
		"github:acme/template", // remote url
		"",                     // suggested template branch
		"widgets", "n",         // lib, not global
		"My App", "n",          // name, not global
		"y",                    // rename directories
		"y",                    // move {{name}}.md
	)

	ctx, console := testContext(t)
	res, err := b.Run(ctx)
	require.NoError(t, err)

	assert.False(t, res.Aborted)
	assert.True(t, res.Committed)
	assert.Regexp(t, `^templit/new-[a-z0-9]{6}$`, res.Branch)
	assert.Equal(t, map[string]string{"lib": "widgets", "name": "My App"}, res.Values)

	assert.Equal(t, `{"name": "my-app"}`, readFile(t, filepath.Join(root, "package.json")))
	assert.Equal(t, "export const lib = 'widgets';", readFile(t, filepath.Join(root, "packages", "widgets-core", "index.ts")))
	assert.Equal(t, "# My App", readFile(t, filepath.Join(root, "My App.md")))
	assert.NoFileExists(t, filepath.Join(root, "{{name}}.md"))
	assert.Equal(t, "Fill in {{untouched}}", readFile(t, filepath.Join(root, "README.templit.md")))

	assert.Contains(t, prompts.String(), "Enter name of branch containing template: (trunk)")
	assert.Contains(t, prompts.String(), "Rename 1 templated directories? [y/N]")
	assert.Less(t, strings.Index(prompts.String(), "'lib'"), strings.Index(prompts.String(), "'name'"))
	assert.Contains(t, console.String(), "Template successfully merged!")

	runner.AssertExpectations(t)
}

func TestBootstrapper_ModifiedTreeAborts(t *testing.T) {
	runner := &mockRunner{}
	runner.On("Run", []string{"status", "--porcelain"}).Return(" M package.json\n", nil)

	b, _ := newBootstrapper(t, runner)
	ctx, console := testContext(t)

	res, err := b.Run(ctx)
	require.NoError(t, err)
	assert.True(t, res.Aborted)
	assert.Contains(t, console.String(), "You have modified files")

	runner.AssertExpectations(t)
	runner.AssertNotCalled(t, "Run", anyNewBranch)
}

func TestBootstrapper_UntrackedDeclined(t *testing.T) {
	runner := &mockRunner{}
	runner.On("Run", []string{"status", "--porcelain"}).Return("?? notes.txt\n", nil)

	b, prompts := newBootstrapper(t, runner, "n")
	ctx, _ := testContext(t)

	res, err := b.Run(ctx)
	require.NoError(t, err)
	assert.True(t, res.Aborted)
	assert.Contains(t, prompts.String(), "Do you want to progress anyway? [y/N]")
	runner.AssertNotCalled(t, "Run", anyNewBranch)
}

func TestBootstrapper_MergeFailureContinues(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"index.ts": "no tokens"})

	runner := &mockRunner{}
	runner.On("Run", []string{"status", "--porcelain"}).Return("", nil)
	runner.On("Run", []string{"checkout", "-b", "feature/bootstrap"}).Return("", nil)
	runner.On("Run", []string{"remote", "-v"}).Return("template\thttps://example.com/t.git (fetch)\n", nil)
	runner.On("Run", []string{"fetch", "template", "main"}).Return("", nil)
	runner.On("Run", []string{"merge", "--allow-unrelated-histories", "template/main"}).Return("", &git.CommandError{
		Args:   []string{"merge", "--allow-unrelated-histories", "template/main"},
		Stderr: "CONFLICT (add/add): Merge conflict in index.ts",
		Err:    errors.New("exit status 1"),
	})
	runner.On("Run", []string{"rev-parse", "--show-toplevel"}).Return(root, nil)
	runner.On("Run", []string{"diff", "--name-only", "HEAD", "HEAD~1"}).Return("index.ts\n", nil)

	b, prompts := newBootstrapper(t, runner, "feature/bootstrap", "template", "main", "")
	ctx, console := testContext(t)

	res, err := b.Run(ctx)
	require.NoError(t, err)
	assert.False(t, res.Committed, "nothing to replace, nothing to commit")
	assert.Contains(t, console.String(), "The merge was not successful")
	assert.Contains(t, console.String(), "Merge conflict in index.ts")
	assert.Contains(t, prompts.String(), "Press enter to continue...")

	runner.AssertExpectations(t)
	runner.AssertNotCalled(t, "Run", mock.MatchedBy(func(args []string) bool {
		return len(args) > 1 && args[0] == "remote" && args[1] == "add"
	}))
	runner.AssertNotCalled(t, "Run", []string{"add", "."})
}

func TestBootstrapper_FileMoveCollision(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"{{name}}.md": "template",
		"app.md":      "existing",
	})

	runner := &mockRunner{}
	runner.On("Run", []string{"status", "--porcelain"}).Return("", nil)
	runner.On("Run", anyNewBranch).Return("", nil)
	runner.On("Run", []string{"remote", "-v"}).Return("template\thttps://example.com/t.git (fetch)\n", nil)
	runner.On("Run", []string{"fetch", "template", "main"}).Return("", nil)
	runner.On("Run", []string{"merge", "--allow-unrelated-histories", "template/main"}).Return("", nil)
	runner.On("Run", []string{"rev-parse", "--show-toplevel"}).Return(root, nil)
	runner.On("Run", []string{"diff", "--name-only", "HEAD", "HEAD~1"}).Return("{{name}}.md\n", nil)

	b, _ := newBootstrapper(t, runner, "", "template", "main", "app", "n", "y")
	ctx, _ := testContext(t)

	_, err := b.Run(ctx)
	require.Error(t, err)

	var collision *operation.PathCollisionError
	require.True(t, errors.As(err, &collision))
	assert.Equal(t, filepath.Join(root, "app.md"), collision.New)

	assert.Equal(t, "template", readFile(t, filepath.Join(root, "{{name}}.md")))
	assert.Equal(t, "existing", readFile(t, filepath.Join(root, "app.md")))
	runner.AssertNotCalled(t, "Run", []string{"add", "."})
}

func TestNewBootstrapper_Validation(t *testing.T) {
	_, err := operation.NewBootstrapper(operation.BootstrapOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "git client is required")

	_, err = operation.NewBootstrapper(operation.BootstrapOptions{Git: git.New(&mockRunner{})})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "asker is required")
}
