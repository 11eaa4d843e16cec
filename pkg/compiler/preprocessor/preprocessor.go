// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// Package preprocessor resolves .INCLUDE directives and expands .MACRO
// definitions in place over a token stream (spec.md §4.2).
package preprocessor

import (
	"path/filepath"
	"strings"

	"github.com/evochora/evochora/pkg/compiler/lexer"
	"github.com/evochora/evochora/pkg/source"
)

// FileReader abstracts reading an include target, so tests can supply an
// in-memory filesystem instead of touching disk.
type FileReader func(path string) ([]byte, error)

// macro is a recorded .MACRO definition.
type macro struct {
	params []string
	body   []lexer.Token
}

// Process expands includes and macros in the given token stream, returning
// the fully-expanded stream ready for parsing.
func Process(tokens []lexer.Token, baseDir string, read FileReader) ([]lexer.Token, *source.Diagnostics) {
	p := &processor{
		read:     read,
		diags:    &source.Diagnostics{},
		macros:   make(map[string]*macro),
		included: make(map[string]bool),
	}
	//
	out := p.expand(tokens, baseDir)
	//
	return out, p.diags
}

type processor struct {
	read     FileReader
	diags    *source.Diagnostics
	macros   map[string]*macro
	included map[string]bool
}

// expand performs one pass of include splicing, macro-definition removal and
// macro-call expansion over toks, re-scanning spliced regions so that nested
// includes and macro-calling-macros are fully resolved.
func (p *processor) expand(toks []lexer.Token, baseDir string) []lexer.Token {
	var out []lexer.Token
	//
	i := 0
	for i < len(toks) {
		tok := toks[i]
		//
		switch {
		case tok.Kind == lexer.DIRECTIVE && strings.EqualFold(tok.Text, ".INCLUDE"):
			spliced, next := p.handleInclude(toks, i, baseDir)
			out = append(out, spliced...)
			i = next
		case tok.Kind == lexer.DIRECTIVE && strings.EqualFold(tok.Text, ".MACRO"):
			next := p.handleMacroDef(toks, i)
			i = next
		case tok.Kind == lexer.IDENTIFIER:
			if m, ok := p.lookupMacro(tok.Text); ok {
				spliced, next := p.expandCall(toks, i, m)
				// Re-scan expansion: macros may call macros.
				rescanned := p.expand(spliced, baseDir)
				out = append(out, rescanned...)
				i = next
			} else {
				out = append(out, tok)
				i++
			}
		default:
			out = append(out, tok)
			i++
		}
	}
	//
	return out
}

func (p *processor) lookupMacro(name string) (*macro, bool) {
	m, ok := p.macros[strings.ToUpper(name)]
	return m, ok
}

// handleInclude consumes ".INCLUDE" STRING starting at index i, returning the
// tokens to splice in its place and the index just past the directive.
func (p *processor) handleInclude(toks []lexer.Token, i int, baseDir string) ([]lexer.Token, int) {
	directive := toks[i]
	j := i + 1
	//
	if j >= len(toks) || toks[j].Kind != lexer.STRING {
		p.diags.Add(directive.Origin, ".INCLUDE requires a string path")
		return nil, skipToNewline(toks, i)
	}
	//
	path := toks[j].Text
	full := filepath.Join(baseDir, path)
	//
	// Cycle detection: each absolute path is included at most once.
	abs, err := filepath.Abs(full)
	if err != nil {
		abs = full
	}
	//
	if p.included[abs] {
		return nil, skipToNewline(toks, i)
	}
	//
	p.included[abs] = true
	//
	bytes, err := p.read(full)
	if err != nil {
		p.diags.Add(directive.Origin, "failed to read include %q: %s", path, err)
		return nil, skipToNewline(toks, i)
	}
	//
	sub := source.NewFile(full, bytes)
	subTokens, subDiags := lexer.Lex(sub)
	p.diags.Join(subDiags)
	// Drop the included file's own EOF token; splice its content in place.
	if len(subTokens) > 0 && subTokens[len(subTokens)-1].Kind == lexer.EOF {
		subTokens = subTokens[:len(subTokens)-1]
	}
	//
	subExpanded := p.expand(subTokens, filepath.Dir(full))
	//
	return subExpanded, skipToNewline(toks, i)
}

// handleMacroDef records a ".MACRO name params... <body> .ENDM" block and
// returns the index just past it, removing it from the output stream.
func (p *processor) handleMacroDef(toks []lexer.Token, i int) int {
	directive := toks[i]
	j := i + 1
	//
	if j >= len(toks) || toks[j].Kind != lexer.IDENTIFIER {
		p.diags.Add(directive.Origin, ".MACRO requires a name")
		return skipToNewline(toks, i)
	}
	//
	name := toks[j].Text
	j++
	//
	var params []string
	for j < len(toks) && toks[j].Kind == lexer.IDENTIFIER {
		params = append(params, toks[j].Text)
		j++
	}
	// Skip to end of the .MACRO line.
	for j < len(toks) && toks[j].Kind != lexer.NEWLINE {
		j++
	}
	if j < len(toks) {
		j++ // consume the newline
	}
	//
	bodyStart := j
	for j < len(toks) {
		if toks[j].Kind == lexer.DIRECTIVE && strings.EqualFold(toks[j].Text, ".ENDM") {
			break
		}
		j++
	}
	//
	body := toks[bodyStart:j]
	//
	if j < len(toks) {
		j = skipToNewline(toks, j)
	}
	//
	p.macros[strings.ToUpper(name)] = &macro{params: params, body: body}
	//
	return j
}

// expandCall substitutes a macro invocation "name arg1 arg2 ... <newline>"
// starting at index i with the macro's body, binding parameter identifiers to
// the supplied argument tokens. Returns the substituted tokens and the index
// just past the call.
func (p *processor) expandCall(toks []lexer.Token, i int, m *macro) ([]lexer.Token, int) {
	call := toks[i]
	j := i + 1
	//
	var args [][]lexer.Token
	for j < len(toks) && toks[j].Kind != lexer.NEWLINE && toks[j].Kind != lexer.EOF {
		if toks[j].Kind == lexer.COMMA {
			j++
			continue
		}
		args = append(args, []lexer.Token{toks[j]})
		j++
	}
	//
	end := j
	if end < len(toks) && toks[end].Kind == lexer.NEWLINE {
		end++
	}
	//
	if len(args) != len(m.params) {
		p.diags.Add(call.Origin, "macro %q expects %d argument(s), got %d", call.Text, len(m.params), len(args))
		return nil, end
	}
	//
	binding := make(map[string][]lexer.Token, len(m.params))
	for k, param := range m.params {
		binding[strings.ToUpper(param)] = args[k]
	}
	//
	var out []lexer.Token
	for _, t := range m.body {
		if t.Kind == lexer.IDENTIFIER {
			if sub, ok := binding[strings.ToUpper(t.Text)]; ok {
				out = append(out, sub...)
				continue
			}
		}
		//
		out = append(out, t)
	}
	//
	return out, end
}

// skipToNewline returns the index just past the next NEWLINE token at or
// after i (or len(toks) if none remains).
func skipToNewline(toks []lexer.Token, i int) int {
	for i < len(toks) && toks[i].Kind != lexer.NEWLINE {
		i++
	}
	//
	if i < len(toks) {
		i++
	}
	//
	return i
}
