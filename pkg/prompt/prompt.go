// Package prompt asks the operator questions on a terminal or a plain stream.
package prompt

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/pterm/pterm"
	"gitlab.com/tozd/go/errors"
)

// ❓ Asker shows prompt and returns the operator's answer without the line ending
type Asker interface {
	Ask(ctx context.Context, prompt string) (string, error)
}

// LineAsker reads answers line by line, for pipes and tests
type LineAsker struct {
	in  *bufio.Reader
	out io.Writer
}

// NewLineAsker creates a LineAsker printing prompts to out
func NewLineAsker(in io.Reader, out io.Writer) *LineAsker {
	return &LineAsker{in: bufio.NewReader(in), out: out}
}

func (a *LineAsker) Ask(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	fmt.Fprintf(a.out, "%s ", prompt)

	line, err := a.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", errors.Errorf("reading answer: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// TermAsker uses the pterm interactive text input
type TermAsker struct{}

func (TermAsker) Ask(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	answer, err := pterm.DefaultInteractiveTextInput.Show(prompt)
	if err != nil {
		return "", errors.Errorf("reading answer: %w", err)
	}
	return strings.TrimRight(answer, "\r\n"), nil
}

// 🎯 New picks TermAsker when both files are terminals, else a LineAsker over them
func New(in, out *os.File) Asker {
	if isTerminal(in) && isTerminal(out) {
		return TermAsker{}
	}
	return NewLineAsker(in, out)
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// ✅ Confirm asks a [y/N] question; only y or yes (any case) is a yes
func Confirm(ctx context.Context, a Asker, question string) (bool, error) {
	answer, err := a.Ask(ctx, question+" [y/N]")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// AskDefault asks question and returns def for an empty answer
func AskDefault(ctx context.Context, a Asker, question, def string) (string, error) {
	q := question
	if def != "" {
		q = fmt.Sprintf("%s (%s)", question, def)
	}
	answer, err := a.Ask(ctx, q)
	if err != nil {
		return "", err
	}
	if answer = strings.TrimSpace(answer); answer == "" {
		return def, nil
	}
	return answer, nil
}
