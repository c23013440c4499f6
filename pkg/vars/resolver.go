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

// Package vars resolves variable values interactively for one run.
package vars

import (
	"context"
	"fmt"
	"math/rand/v2"
	"regexp"
	"runtime"
	"strings"

	"github.com/rs/zerolog"
	"github.com/walteh/templit/pkg/prompt"
	"github.com/walteh/templit/pkg/text"
)

// IllegalPattern returns the characters and names that are unsafe in a file name on goos
func IllegalPattern(goos string) *regexp.Regexp {
	switch goos {
	case "windows":
		// reserved . and .., trailing space or dot
		return regexp.MustCompile(`[\\/:*?"<>|]|^\.\.?$|[ ]$|[.]$`)
	case "darwin":
		return regexp.MustCompile(`[:/]|^\.\.?$`)
	default:
		return regexp.MustCompile(`[/]|^\.\.?$`)
	}
}

// 🧑‍💻 Resolver asks the operator for variable values, offering and recording globals
type Resolver struct {
	store   *GlobalStore
	asker   prompt.Asker
	illegal *regexp.Regexp
}

// NewResolver creates a resolver checking path values against the current OS
func NewResolver(store *GlobalStore, asker prompt.Asker) *Resolver {
	if store == nil {
		store = NewGlobalStore()
	}
	return &Resolver{
		store:   store,
		asker:   asker,
		illegal: IllegalPattern(runtime.GOOS),
	}
}

// WithIllegalPattern replaces the path safety pattern
func (r *Resolver) WithIllegalPattern(re *regexp.Regexp) *Resolver {
	r.illegal = re
	return r
}

// Store returns the global store of this run
func (r *Resolver) Store() *GlobalStore {
	return r.store
}

// 🎯 Resolve determines the value for name. Path values matching the illegal
// pattern are asked again unless the operator keeps them. A value that differs
// from the stored global may be saved as the new global.
func (r *Resolver) Resolve(ctx context.Context, name string, isPath bool) (string, error) {
	var value string

	if global, ok := r.store.Get(name); ok {
		use, err := prompt.Confirm(ctx, r.asker, fmt.Sprintf("Global variable is defined for token %s with value '%s' do you want to use it?", name, global))
		if err != nil {
			return "", err
		}
		if use {
			value = global
		}
	}

	for value == "" {
		answer, err := r.asker.Ask(ctx, fmt.Sprintf("Enter value for variable '%s':", name))
		if err != nil {
			return "", err
		}
		value = answer

		if value != "" && isPath && r.illegal.MatchString(value) {
			keep, err := prompt.Confirm(ctx, r.asker, fmt.Sprintf("The value '%s' that is used in path variable contains possible illegal characters (%s) on current platform. Do you want keep it?", value, r.illegal))
			if err != nil {
				return "", err
			}
			if !keep {
				value = ""
			}
		}
	}

	if global, _ := r.store.Get(name); global != value {
		save, err := prompt.Confirm(ctx, r.asker, "Save as global variable?")
		if err != nil {
			return "", err
		}
		if save {
			r.store.Set(name, value)
		}
	}

	zerolog.Ctx(ctx).Debug().Str("variable", name).Bool("path", isPath).Msg("variable resolved")
	return value, nil
}

// ResolveAll resolves names in lexical order. Names in pathVars get the path safety check.
func (r *Resolver) ResolveAll(ctx context.Context, names text.VariableSet, pathVars text.VariableSet) (map[string]string, error) {
	values := make(map[string]string, len(names))
	for _, name := range names.Sorted() {
		v, err := r.Resolve(ctx, name, pathVars.Has(name))
		if err != nil {
			return nil, err
		}
		values[name] = v
	}
	return values, nil
}

const sequenceChars = "abcdefghijklmnopqrstuvwxyz0123456789"

// RandomSequence returns n characters from [a-z0-9]
func RandomSequence(n int) string {
	var b strings.Builder
	b.Grow(n)
	for i := 0; i < n; i++ {
		b.WriteByte(sequenceChars[rand.IntN(len(sequenceChars))])
	}
	return b.String()
}

// BranchName returns prefix followed by six random characters
func BranchName(prefix string) string {
	return prefix + RandomSequence(6)
}
