// Package readme finds and renders the template's *.templit.md notes.
package readme

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/glamour"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// Pattern matches template readmes at the repository root
const Pattern = "*.templit.md"

// Find lists template readmes directly under root, sorted
func Find(root string) ([]string, error) {
	matches, err := doublestar.Glob(os.DirFS(root), Pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, errors.Errorf("globbing %s: %w", Pattern, err)
	}
	sort.Strings(matches)
	return matches, nil
}

// 📖 Renderer writes markdown to a terminal
type Renderer struct {
	// Style is a glamour style name or path; empty or "auto" detects from the terminal
	Style string
	// Width wraps output, 0 keeps glamour's default
	Width int
}

func (r *Renderer) options() []glamour.TermRendererOption {
	var options []glamour.TermRendererOption
	if r.Style != "" && r.Style != "auto" {
		options = append(options, glamour.WithStylePath(r.Style))
	} else {
		options = append(options, glamour.WithAutoStyle())
	}
	if r.Width > 0 {
		options = append(options, glamour.WithWordWrap(r.Width))
	}
	return options
}

// Render renders markdown; on renderer failure the raw text is returned
func (r *Renderer) Render(ctx context.Context, markdown string) string {
	renderer, err := glamour.NewTermRenderer(r.options()...)
	if err != nil {
		zerolog.Ctx(ctx).Debug().Err(err).Msg("creating markdown renderer")
		return markdown
	}

	out, err := renderer.Render(markdown)
	if err != nil {
		zerolog.Ctx(ctx).Debug().Err(err).Msg("rendering markdown")
		return markdown
	}
	return out
}

// 🖨️ Show renders every template readme under root to w and returns the files shown
func (r *Renderer) Show(ctx context.Context, w io.Writer, root string) ([]string, error) {
	files, err := Find(root)
	if err != nil {
		return nil, err
	}

	for _, rel := range files {
		data, err := os.ReadFile(filepath.Join(root, rel))
		if err != nil {
			return nil, errors.Errorf("reading %s: %w", rel, err)
		}
		if _, err := fmt.Fprint(w, r.Render(ctx, string(data))); err != nil {
			return nil, errors.Errorf("writing %s: %w", rel, err)
		}
	}
	return files, nil
}
