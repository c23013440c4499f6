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
	"fmt"
	"strings"
)

// 💥 PathCollisionError means a rename target already exists.
// The source path is left untouched.
type PathCollisionError struct {
	Old string
	New string
}

func (e *PathCollisionError) Error() string {
	return fmt.Sprintf("path %s already exists", e.New)
}

// AggregateKind names the scan that produced an AggregateError
type AggregateKind string

const (
	KindContent AggregateKind = "content"
	KindPath    AggregateKind = "path"
)

// AggregateItem is one failed file or directory
type AggregateItem struct {
	// Subject is the file path for content failures, "old -> new" for path failures
	Subject string
	Err     error
}

// 📦 AggregateError collects every per-item failure of a bulk scan
type AggregateError struct {
	Kind  AggregateKind
	Items []AggregateItem
}

func (e *AggregateError) Error() string {
	var b strings.Builder
	switch e.Kind {
	case KindPath:
		fmt.Fprintf(&b, "failed to rename %d path(s):", len(e.Items))
	default:
		fmt.Fprintf(&b, "failed to replace variables in %d file(s):", len(e.Items))
	}
	for _, item := range e.Items {
		fmt.Fprintf(&b, "\n%s: %s", item.Subject, item.Err)
	}
	return b.String()
}

// Unwrap exposes the item errors to errors.Is and errors.As
func (e *AggregateError) Unwrap() []error {
	errs := make([]error, 0, len(e.Items))
	for _, item := range e.Items {
		errs = append(errs, item.Err)
	}
	return errs
}

func (e *AggregateError) add(subject string, err error) {
	e.Items = append(e.Items, AggregateItem{Subject: subject, Err: err})
}

// orNil returns e when it holds items
func (e *AggregateError) orNil() error {
	if len(e.Items) == 0 {
		return nil
	}
	return e
}
