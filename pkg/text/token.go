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

package text

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"github.com/walteh/templit/pkg/casing"
)

// 🔁 TokenReplacer implements TextReplacer for {{name:case}} placeholders.
// The same instance serves content, path segments and diff listings.
type TokenReplacer struct {
	mode  Mode
	vars  map[string]string
	found VariableSet
	cases casing.Registry
}

// Option configures a TokenReplacer
type Option func(*TokenReplacer)

// WithRegistry overrides the case transform registry
func WithRegistry(r casing.Registry) Option {
	return func(t *TokenReplacer) {
		t.cases = r
	}
}

// NewTokenReplacer creates a replacer that records unresolved names into found
func NewTokenReplacer(found VariableSet, vars map[string]string, mode Mode, opts ...Option) *TokenReplacer {
	if found == nil {
		found = NewVariableSet()
	}
	if vars == nil {
		vars = map[string]string{}
	}
	r := &TokenReplacer{
		mode:  mode,
		vars:  vars,
		found: found,
		cases: casing.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Mode implements TextReplacer.Mode
func (r *TokenReplacer) Mode() Mode {
	return r.mode
}

// ReplaceToken produces the substitution for a single token.
// An empty mapped value counts as unresolved.
func (r *TokenReplacer) ReplaceToken(ctx context.Context, tok Token) (string, error) {
	value, ok := r.vars[tok.Name]
	if !ok || value == "" {
		r.found.Add(tok.Name)
		if r.mode == Apply {
			return "", &UnresolvedVariableError{Name: tok.Name}
		}
	}

	if tok.Case != "" {
		transform, ok := r.cases.Lookup(tok.Case)
		if !ok {
			if r.mode != Apply {
				zerolog.Ctx(ctx).Warn().
					Str("case", string(tok.Case)).
					Str("token", tok.Text).
					Msgf("case type %s in %s not supported", tok.Case, tok.Text)
				return tok.Text, nil
			}
			return "", &UnknownCaseError{
				Case:      string(tok.Case),
				Token:     tok.Text,
				Supported: casing.Names(r.cases),
			}
		}
		if r.mode == Apply {
			value = transform(value)
		}
	}

	if r.mode != Apply {
		return tok.Text, nil
	}
	return value, nil
}

// ReplaceString implements TextReplacer.ReplaceString.
// Literal text between tokens is copied through unchanged.
func (r *TokenReplacer) ReplaceString(ctx context.Context, s string) (*ReplacementResult, error) {
	tokens := FindTokens(s)

	result := &ReplacementResult{
		OriginalContent:  []byte(s),
		ModifiedContent:  []byte(s),
		ReplacementCount: len(tokens),
	}
	if len(tokens) == 0 {
		return result, nil
	}

	var b strings.Builder
	b.Grow(len(s))
	last := 0
	for _, tok := range tokens {
		b.WriteString(s[last:tok.Start])
		out, err := r.ReplaceToken(ctx, tok)
		if err != nil {
			return nil, err
		}
		b.WriteString(out)
		last = tok.End
	}
	b.WriteString(s[last:])

	modified := b.String()
	result.ModifiedContent = []byte(modified)
	result.WasModified = modified != s
	return result, nil
}

// Replace implements TextReplacer.Replace
func (r *TokenReplacer) Replace(ctx context.Context, s string) (string, error) {
	res, err := r.ReplaceString(ctx, s)
	if err != nil {
		return "", err
	}
	return string(res.ModifiedContent), nil
}

// DiscoverVariables runs a dry pass over s and returns every referenced name
func DiscoverVariables(ctx context.Context, s string) VariableSet {
	found := NewVariableSet()
	r := NewTokenReplacer(found, nil, DryRun)
	// a dry pass has no failure path
	_, _ = r.ReplaceString(ctx, s)
	return found
}
