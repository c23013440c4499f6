package commands

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/walteh/templit/cmd/templit/opts"
	"github.com/walteh/templit/pkg/operation"
	"gitlab.com/tozd/go/errors"
)

// parseVars turns name=value pairs into a map
func parseVars(pairs []string) (map[string]string, error) {
	values := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, errors.Errorf("invalid --var %q, expected name=value", pair)
		}
		values[strings.TrimSpace(name)] = value
	}
	return values, nil
}

// missingVars lists discovered names without a non-empty value
func missingVars(found *operation.Discovery, values map[string]string) []string {
	var missing []string
	for _, name := range found.All().Sorted() {
		if values[name] == "" {
			missing = append(missing, name)
		}
	}
	return missing
}

func runApply(cmd *cobra.Command, opts *opts.RootOpts, pairs []string, sink operation.FileSink) error {
	ctx := cmd.Context()

	values, err := parseVars(pairs)
	if err != nil {
		return err
	}

	scope := operation.ScopeFromConfig(opts.Dir, opts.Config)

	found, err := operation.Discover(ctx, scope)
	if err != nil {
		return errors.Errorf("scanning: %w", err)
	}

	if missing := missingVars(found, values); len(missing) > 0 {
		return errors.Errorf("missing values for: %s (pass --var name=value)", strings.Join(missing, ", "))
	}

	return operation.ApplyAll(ctx, scope, values, sink)
}

// NewApplyCmd creates the apply command
func NewApplyCmd(opts *opts.RootOpts) *cobra.Command {
	var pairs []string

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Substitute variables in --dir without git or prompts",
		Example: `  templit apply --var project="my app" --var lib=widgets
  templit apply --dir ./generated --var name=api`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Logger.Header("apply " + opts.Dir)
			if err := runApply(cmd, opts, pairs, nil); err != nil {
				return err
			}
			opts.Logger.Success("variables applied")
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&pairs, "var", nil, "variable value as name=value (repeatable)")
	return cmd
}

// NewPreviewCmd creates the preview command
func NewPreviewCmd(opts *opts.RootOpts) *cobra.Command {
	var pairs []string

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Show the content changes apply would make",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Logger.Header("preview " + opts.Dir)
			return runApply(cmd, opts, pairs, operation.DiffSink{Out: cmd.OutOrStdout(), Root: opts.Dir})
		},
	}

	cmd.Flags().StringArrayVar(&pairs, "var", nil, "variable value as name=value (repeatable)")
	return cmd
}
