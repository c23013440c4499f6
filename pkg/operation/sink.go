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

package operation

import (
	"bytes"
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/sergi/go-diff/diffmatchpatch"
	"gitlab.com/tozd/go/errors"
)

// 💾 FileSink receives the result of an apply pass for one file
type FileSink interface {
	WriteFile(ctx context.Context, path string, original, modified []byte, mode fs.FileMode) error
}

// AtomicSink writes through a uniquely named temp file in the same directory
// and a rename, keeping the file mode
type AtomicSink struct{}

func (AtomicSink) WriteFile(ctx context.Context, path string, original, modified []byte, mode fs.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return errors.Errorf("creating temp file: %w", err)
	}
	tempPath := tmp.Name()

	if _, err := tmp.Write(modified); err != nil {
		tmp.Close()
		os.Remove(tempPath)
		return errors.Errorf("writing temp file: %w", err)
	}

	// CreateTemp always uses 0600
	if err := tmp.Chmod(mode.Perm()); err != nil {
		tmp.Close()
		os.Remove(tempPath)
		return errors.Errorf("setting file mode: %w", err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tempPath)
		return errors.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return errors.Errorf("renaming temp file: %w", err)
	}

	return nil
}

// 🔍 DiffSink prints a colored diff of each changed file instead of writing it
type DiffSink struct {
	Out  io.Writer
	Root string
}

func (s DiffSink) WriteFile(ctx context.Context, path string, original, modified []byte, mode fs.FileMode) error {
	if bytes.Equal(original, modified) {
		return nil
	}

	name := path
	if s.Root != "" {
		if rel, err := filepath.Rel(s.Root, path); err == nil {
			name = filepath.ToSlash(rel)
		}
	}

	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(string(original), string(modified))
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var out strings.Builder
	out.WriteString(color.New(color.Bold).Sprint("--- "+name) + "\n")
	for _, d := range diffs {
		prefix, c := " ", color.New(color.Faint)
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			prefix, c = "+", color.New(color.FgGreen)
		case diffmatchpatch.DiffDelete:
			prefix, c = "-", color.New(color.FgRed)
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			out.WriteString(c.Sprint(prefix+strings.TrimSuffix(line, "\n")) + "\n")
		}
	}
	out.WriteString("\n")

	if _, err := io.WriteString(s.Out, out.String()); err != nil {
		return errors.Errorf("writing diff: %w", err)
	}
	return nil
}
