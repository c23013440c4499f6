package commands

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/walteh/templit/cmd/templit/opts"
	"github.com/walteh/templit/pkg/git"
	"github.com/walteh/templit/pkg/operation"
	"github.com/walteh/templit/pkg/prompt"
	"github.com/walteh/templit/pkg/readme"
	"github.com/walteh/templit/pkg/remote"
	"github.com/walteh/templit/pkg/vars"
	"gitlab.com/tozd/go/errors"
)

// NewBootstrapCmd creates the bootstrap command
func NewBootstrapCmd(opts *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bootstrap",
		Short: "Merge a template branch and fill in its variables",
		Long: `Bootstrap runs inside the repository that should receive the template.
It will:
1. Refuse to start on a work tree with modified files
2. Create a new branch (templit/new-xxxxxx unless you name one)
3. Add or reuse the template remote and merge its branch
4. Ask for every variable found in contents and names
5. Rewrite contents, rename templated directories and files
6. Commit the result`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := opts.Logger

			logger.Header("bootstrap")

			asker := prompt.New(os.Stdin, os.Stdout)

			store := vars.NewGlobalStore()
			var globalsPath string
			if opts.Config.PersistGlobals {
				path, err := vars.DefaultGlobalsPath()
				if err != nil {
					return err
				}
				if store, err = vars.LoadGlobalStore(ctx, path); err != nil {
					return err
				}
				globalsPath = path
			}

			b, err := operation.NewBootstrapper(operation.BootstrapOptions{
				Git:      git.New(&git.ExecRunner{Dir: opts.Dir}),
				Asker:    asker,
				Resolver: vars.NewResolver(store, asker),
				Config:   opts.Config,
				Remotes:  remote.NewGitHubResolver(remote.NewGitHubClient(ctx)),
				Readme:   &readme.Renderer{},
			})
			if err != nil {
				return errors.Errorf("creating bootstrapper: %w", err)
			}

			res, err := b.Run(ctx)
			if err != nil {
				return errors.Errorf("bootstrapping: %w", err)
			}

			if globalsPath != "" {
				if err := store.Save(ctx, globalsPath); err != nil {
					logger.Warningf("could not save global variables: %v", err)
				}
			}

			if res.Aborted {
				logger.Info("nothing done")
				return nil
			}

			if !res.Committed {
				logger.Info("no variables found, nothing to commit")
			}
			return nil
		},
	}

	return cmd
}
