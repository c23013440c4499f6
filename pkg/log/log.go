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

package log

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

// 🎨 Display configuration
const (
	fileIndent  = 4  // spaces to indent file entries
	nameWidth   = 35 // Base width for filename
	kindWidth   = 10 // Width for operation kind
	statusWidth = 15 // Width for status text
)

// 🏷️ OpKind classifies what happened to a path
type OpKind int

const (
	OpRewritten OpKind = iota // content substituted
	OpRenamed                 // templated directory renamed
	OpMoved                   // changed file renamed or moved
	OpSkipped                 // nothing to do
	OpFailed                  // per-path failure
)

// String returns a string representation of OpKind
func (k OpKind) String() string {
	switch k {
	case OpRewritten:
		return "content"
	case OpRenamed:
		return "dir"
	case OpMoved:
		return "file"
	case OpSkipped:
		return "skipped"
	default:
		return "failed"
	}
}

// 🎯 FileOperation represents a path operation for logging
type FileOperation struct {
	Path         string // Path after the operation, relative to the run root
	From         string // Previous path for renames and moves
	Kind         OpKind // What happened
	Replacements int    // Number of tokens replaced
	Err          error  // Failure cause for OpFailed
}

// 📦 RunOperation describes one templating pass
type RunOperation struct {
	Root string // Repository root
	Mode string // dry-run or apply
}

// 🎯 Logger handles structured logging with console output
type Logger struct {
	zlog       zerolog.Logger
	console    io.Writer
	mu         sync.Mutex
	currentRun *RunOperation
	operations []FileOperation
}

// 🏭 New creates a new logger
func New(console io.Writer, zlog zerolog.Logger) *Logger {
	return &Logger{
		zlog:    zlog,
		console: console,
		mu:      sync.Mutex{},
	}
}

// 🔑 contextKey is the type for context values
type contextKey struct{}

// 🎯 FromContext gets the logger from context
func FromContext(ctx context.Context) *Logger {
	logger, ok := ctx.Value(contextKey{}).(*Logger)
	if !ok {
		panic("logger not found in context")
	}
	return logger
}

// 🎯 NewContext adds the logger to context
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// 📝 formatFileOperation formats a file operation for display
func (l *Logger) formatFileOperation(op FileOperation) string {
	var symbol rune
	var symbolColor color.Attribute
	switch op.Kind {
	case OpRewritten:
		symbol = '⟳'
		symbolColor = color.FgBlue
	case OpRenamed, OpMoved:
		symbol = '→'
		symbolColor = color.FgGreen
	case OpFailed:
		symbol = '✗'
		symbolColor = color.FgRed
	default:
		symbol = '-'
		symbolColor = color.FgYellow
	}

	var status string
	switch {
	case op.Err != nil:
		status = op.Err.Error()
	case op.From != "":
		status = "from " + op.From
	case op.Kind == OpRewritten:
		status = fmt.Sprintf("%d tokens", op.Replacements)
	}

	return fmt.Sprintf("%s%s %s %s %s",
		fmt.Sprintf("%*s", fileIndent, ""),
		color.New(symbolColor).Sprint(string(symbol)),
		fmt.Sprintf("%-*s", nameWidth, op.Path),
		color.New(color.FgCyan).Sprint(fmt.Sprintf("%-*s", kindWidth, op.Kind)),
		fmt.Sprintf("%-*s", statusWidth, status))
}

// 📝 LogFileOperation logs a path operation
func (l *Logger) LogFileOperation(ctx context.Context, op FileOperation) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.operations = append(l.operations, op)

	fmt.Fprintln(l.console, l.formatFileOperation(op))

	ev := l.zlog.Info()
	if op.Err != nil {
		ev = l.zlog.Error().Err(op.Err)
	}
	ev.Str("path", op.Path).
		Str("from", op.From).
		Stringer("kind", op.Kind).
		Int("replacements", op.Replacements).
		Msg("path operation")
}

// 📝 StartRun starts a new templating pass
func (l *Logger) StartRun(ctx context.Context, run RunOperation) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.currentRun = &run
	l.operations = nil

	fmt.Fprintf(l.console, "[templating %s]\n",
		color.New(color.FgCyan).Sprint(run.Root))

	fmt.Fprintf(l.console, "%s %s\n",
		color.New(color.FgMagenta).Sprint("◆"),
		color.New(color.FgYellow).Sprint(run.Mode))

	l.zlog.Info().
		Str("root", run.Root).
		Str("mode", run.Mode).
		Msg("starting templating pass")
}

// 📝 EndRun ends the current pass and returns the operations it logged
func (l *Logger) EndRun(ctx context.Context) []FileOperation {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.currentRun == nil {
		return nil
	}

	ops := l.operations
	l.zlog.Info().
		Str("root", l.currentRun.Root).
		Int("paths", len(ops)).
		Msg("templating pass complete")

	l.currentRun = nil
	l.operations = nil
	return ops
}

// 📝 LogNewline logs a newline
func (l *Logger) LogNewline() {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.console)
}

// 📝 Header logs a header
func (l *Logger) Header(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	name := color.New(color.Bold, color.FgCyan).Sprint("templit")
	fmt.Fprintf(l.console, "\n%s %s\n\n", name, color.New(color.Faint).Sprint("• "+msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Success logs a success message
func (l *Logger) Success(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "✅ %s\n", color.New(color.FgGreen).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Warning logs a warning message
func (l *Logger) Warning(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "⚠️  %s\n", color.New(color.FgYellow).Sprint(msg))
	l.zlog.Warn().Msg(msg)
}

// 📝 Error logs an error message
func (l *Logger) Error(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "❌ %s\n", color.New(color.FgRed).Sprint(msg))
	l.zlog.Error().Msg(msg)
}

// 📝 Info logs an info message
func (l *Logger) Info(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "ℹ️  %s\n", color.New(color.FgCyan).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Infof logs a formatted info message
func (l *Logger) Infof(format string, args ...interface{}) {
	l.Info(fmt.Sprintf(format, args...))
}

// 📝 Warningf logs a formatted warning message
func (l *Logger) Warningf(format string, args ...interface{}) {
	l.Warning(fmt.Sprintf(format, args...))
}

// 📝 Errorf logs a formatted error message
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.Error(fmt.Sprintf(format, args...))
}

// 📝 Successf logs a formatted success message
func (l *Logger) Successf(format string, args ...interface{}) {
	l.Success(fmt.Sprintf(format, args...))
}

// Console returns the writer used for operator output
func (l *Logger) Console() io.Writer {
	return l.console
}
