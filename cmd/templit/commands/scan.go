package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/walteh/templit/cmd/templit/opts"
	"github.com/walteh/templit/pkg/operation"
	"gitlab.com/tozd/go/errors"
)

// scanResult is the --json output of scan
type scanResult struct {
	Content []string `json:"content"`
	Paths   []string `json:"paths"`
}

// NewScanCmd creates the scan command
func NewScanCmd(opts *opts.RootOpts) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "List the variables used in --dir without changing anything",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			found, err := operation.Discover(ctx, operation.ScopeFromConfig(opts.Dir, opts.Config))
			if err != nil {
				return errors.Errorf("scanning: %w", err)
			}

			res := scanResult{Content: found.Content.Sorted(), Paths: found.Paths.Sorted()}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}

			opts.Logger.Header("scan " + opts.Dir)

			data := pterm.TableData{{"variable", "used in"}}
			for _, name := range found.All().Sorted() {
				var where []string
				if found.Content.Has(name) {
					where = append(where, "content")
				}
				if found.Paths.Has(name) {
					where = append(where, "paths")
				}
				data = append(data, []string{name, strings.Join(where, ", ")})
			}

			if len(data) == 1 {
				opts.Logger.Info("no variables found")
				return nil
			}

			table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
			if err != nil {
				return errors.Errorf("rendering table: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), table)
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}
