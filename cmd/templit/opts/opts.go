package opts

import (
	"github.com/walteh/templit/pkg/config"
	"github.com/walteh/templit/pkg/log"
)

// RootOpts contains shared options used by all commands.
// Fields are filled by the root command before a subcommand runs.
type RootOpts struct {
	// Config is the discovered or explicit run configuration
	Config *config.Config
	// Dir is the absolute directory the command works in
	Dir string
	// Logger prints operator-facing output
	Logger *log.Logger
}
