package main

import (
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/templit/cmd/templit/commands"
	"github.com/walteh/templit/cmd/templit/opts"
	"github.com/walteh/templit/pkg/config"
	"github.com/walteh/templit/pkg/log"
	"gitlab.com/tozd/go/errors"
)

// rootFlags are the persistent flags shared by every command
type rootFlags struct {
	configFile string
	debug      bool
	dir        string
}

// newRootCmd builds the command tree; opts is filled before any subcommand runs
func newRootCmd() (*cobra.Command, *opts.RootOpts) {
	flags := &rootFlags{}
	o := &opts.RootOpts{}

	bootstrap := commands.NewBootstrapCmd(o)

	rootCmd := &cobra.Command{
		Use:   "templit",
		Short: "Bootstrap a project from a template branch and fill in its variables",
		Long: `templit merges a template branch from another git repository into a new
branch of the current repository, then asks for every {{variable}} it finds in
file contents and in file and directory names and substitutes the answers.

Tokens look like {{name}} or {{name:case}}, for example {{project:kebab}}.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup(cmd, flags, o)
		},
		RunE: bootstrap.RunE,
	}

	addRootFlags(rootCmd, flags)

	rootCmd.AddCommand(
		bootstrap,
		commands.NewScanCmd(o),
		commands.NewApplyCmd(o),
		commands.NewPreviewCmd(o),
		newVersionCmd(),
	)

	return rootCmd, o
}

// addRootFlags adds shared flags to the root command
func addRootFlags(cmd *cobra.Command, flags *rootFlags) {
	cmd.PersistentFlags().StringVarP(&flags.configFile, "config", "c", "", "config file path (default: .templitrc.* in --dir)")
	cmd.PersistentFlags().BoolVarP(&flags.debug, "debug", "d", false, "enable debug logging")
	cmd.PersistentFlags().StringVar(&flags.dir, "dir", ".", "directory to work in")
}

// setup configures logging and loads the config once flags are parsed
func setup(cmd *cobra.Command, flags *rootFlags, o *opts.RootOpts) error {
	ctx := cmd.Context()

	level := zerolog.InfoLevel
	if flags.debug {
		level = zerolog.DebugLevel
	}
	zlog := zerolog.Ctx(ctx).Level(level)
	ctx = zlog.WithContext(ctx)

	dir, err := filepath.Abs(flags.dir)
	if err != nil {
		return errors.Errorf("resolving directory: %w", err)
	}

	cfg, err := config.Discover(ctx, dir, flags.configFile)
	if err != nil {
		return errors.Errorf("loading config: %w", err)
	}

	o.Config = cfg
	o.Dir = dir
	o.Logger = log.New(cmd.OutOrStdout(), zlog)

	zlog.Debug().Str("dir", dir).Str("config", cfg.Location()).Stringer("settings", cfg).Msg("configured")

	cmd.SetContext(log.NewContext(ctx, o.Logger))
	return nil
}
