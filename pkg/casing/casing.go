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

// Package casing maps case identifiers used in tokens to string transforms.
package casing

import (
	"sort"
	"strings"

	"github.com/go-openapi/inflect"
	"github.com/iancoleman/strcase"
)

// 🔤 Case is a case identifier as written after the colon in {{name:case}}
type Case string

const (
	Camel          Case = "camel"
	Pascal         Case = "pascal"
	Snake          Case = "snake"
	ScreamingSnake Case = "screamingSnake"
	Constant       Case = "constant"
	Kebab          Case = "kebab"
	ScreamingKebab Case = "screamingKebab"
	Dot            Case = "dot"
	Path           Case = "path"
	Upper          Case = "upper"
	Lower          Case = "lower"
	Title          Case = "title"
	Sentence       Case = "sentence"
	Plural         Case = "plural"
	Singular       Case = "singular"
)

// Transform converts a raw value into a casing convention
type Transform func(string) string

// 📚 Registry resolves case identifiers to transforms
type Registry interface {
	// Lookup returns the transform for c, or false when c is not registered
	Lookup(c Case) (Transform, bool)
	// Supported lists the registered identifiers in sorted order
	Supported() []Case
}

type registry struct {
	transforms map[Case]Transform
}

var defaultRegistry = &registry{
	transforms: map[Case]Transform{
		Camel:          strcase.ToLowerCamel,
		Pascal:         strcase.ToCamel,
		Snake:          strcase.ToSnake,
		ScreamingSnake: strcase.ToScreamingSnake,
		Constant:       strcase.ToScreamingSnake,
		Kebab:          strcase.ToKebab,
		ScreamingKebab: strcase.ToScreamingKebab,
		Dot:            func(s string) string { return strcase.ToDelimited(s, '.') },
		Path:           func(s string) string { return strcase.ToDelimited(s, '/') },
		Upper:          strings.ToUpper,
		Lower:          strings.ToLower,
		Title:          inflect.Titleize,
		Sentence:       inflect.Humanize,
		Plural:         inflect.Pluralize,
		Singular:       inflect.Singularize,
	},
}

// Default returns the built-in registry
func Default() Registry {
	return defaultRegistry
}

func (r *registry) Lookup(c Case) (Transform, bool) {
	fn, ok := r.transforms[c]
	return fn, ok
}

func (r *registry) Supported() []Case {
	out := make([]Case, 0, len(r.transforms))
	for c := range r.transforms {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Names joins the supported identifiers for error messages
func Names(r Registry) string {
	supported := r.Supported()
	names := make([]string, len(supported))
	for i, c := range supported {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}
