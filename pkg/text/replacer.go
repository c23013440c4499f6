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
	"regexp"
	"sort"

	"github.com/walteh/templit/pkg/casing"
)

// 🧩 TokenPattern is the placeholder grammar: {{name}} or {{name:case}}.
// Names may contain word characters, spaces, hyphens and both slash kinds.
var TokenPattern = regexp.MustCompile(`\{\{([\w\- \\/]+)(?::([a-zA-Z]+))?\}\}`)

// 🎚️ Mode selects between discovery and mutation
type Mode int

const (
	// DryRun leaves text untouched and only records referenced variable names
	DryRun Mode = iota
	// Apply substitutes resolved values; missing values and unknown cases are errors
	Apply
)

// String returns a string representation of Mode
func (m Mode) String() string {
	switch m {
	case Apply:
		return "apply"
	default:
		return "dry-run"
	}
}

// Token is a single placeholder occurrence
type Token struct {
	// Text is the full matched placeholder, braces included
	Text string
	// Name is the variable name
	Name string
	// Case is the optional case identifier
	Case casing.Case
	// Start and End are byte offsets of Text in the scanned string
	Start int
	End   int
}

// FindTokens returns every non-overlapping token in s, left to right
func FindTokens(s string) []Token {
	matches := TokenPattern.FindAllStringSubmatchIndex(s, -1)
	tokens := make([]Token, 0, len(matches))
	for _, m := range matches {
		tok := Token{
			Text:  s[m[0]:m[1]],
			Name:  s[m[2]:m[3]],
			Start: m[0],
			End:   m[1],
		}
		if m[4] >= 0 {
			tok.Case = casing.Case(s[m[4]:m[5]])
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

// HasToken reports whether s contains at least one token
func HasToken(s string) bool {
	return TokenPattern.MatchString(s)
}

// 📋 VariableSet is a set of variable names
type VariableSet map[string]struct{}

// NewVariableSet creates a set holding names
func NewVariableSet(names ...string) VariableSet {
	s := make(VariableSet, len(names))
	for _, n := range names {
		s.Add(n)
	}
	return s
}

func (s VariableSet) Add(name string) {
	s[name] = struct{}{}
}

func (s VariableSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Union returns a new set with the members of s and other
func (s VariableSet) Union(other VariableSet) VariableSet {
	out := make(VariableSet, len(s)+len(other))
	for n := range s {
		out.Add(n)
	}
	for n := range other {
		out.Add(n)
	}
	return out
}

// Sorted returns the members in lexical order
func (s VariableSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for n := range s {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// ReplacementResult contains the results of a replacement pass
type ReplacementResult struct {
	// WasModified indicates the output differs from the input
	WasModified bool

	// ReplacementCount is the number of tokens visited
	ReplacementCount int

	// OriginalContent is the content before replacements
	OriginalContent []byte

	// ModifiedContent is the content after replacements
	ModifiedContent []byte
}

// TextReplacer rewrites tokens in arbitrary text
type TextReplacer interface {
	// ReplaceString runs a replacement pass over s
	ReplaceString(ctx context.Context, s string) (*ReplacementResult, error)

	// Replace is ReplaceString returning only the rewritten text
	Replace(ctx context.Context, s string) (string, error)

	// Mode reports whether the replacer mutates or only discovers
	Mode() Mode
}
