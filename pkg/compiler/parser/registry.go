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

// Package parser builds an AST from a preprocessed token stream using a
// directive-handler registry keyed by directive name (spec.md §4.3). The
// teacher's source carries two parallel directive-handler hierarchies for
// historical reasons; this implementation
// picks the single-registry design the spec's §9 notes recommend.
package parser

import "github.com/evochora/evochora/pkg/compiler/ast"

// DirectiveHandler parses one directive statement (and, for block
// directives, everything up to and including its closing directive),
// returning the resulting AST node.
type DirectiveHandler func(p *Parser) ast.Node

// DirectiveHandlerRegistry maps a directive name (without its leading dot,
// upper-cased) to the handler responsible for parsing it.
type DirectiveHandlerRegistry struct {
	handlers map[string]DirectiveHandler
}

// NewDirectiveHandlerRegistry constructs a registry pre-populated with every
// directive handler defined in this package.
func NewDirectiveHandlerRegistry() *DirectiveHandlerRegistry {
	r := &DirectiveHandlerRegistry{handlers: make(map[string]DirectiveHandler)}
	//
	r.Register("PROC", handleProc)
	r.Register("SCOPE", handleScope)
	r.Register("REG", handleReg)
	r.Register("PREG", handleReg)
	r.Register("DEFINE", handleDefine)
	r.Register("ORG", handleOrg)
	r.Register("DIR", handleDir)
	r.Register("PLACE", handlePlace)
	r.Register("IMPORT", handleImport)
	r.Register("REQUIRE", handleRequire)
	r.Register("EXPORT", handleExport)
	//
	return r
}

// Register installs (or overrides) the handler for a directive name.
func (r *DirectiveHandlerRegistry) Register(name string, h DirectiveHandler) {
	r.handlers[name] = h
}

// Lookup returns the handler registered for name, if any.
func (r *DirectiveHandlerRegistry) Lookup(name string) (DirectiveHandler, bool) {
	h, ok := r.handlers[name]
	return h, ok
}
