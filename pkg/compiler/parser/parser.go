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
package parser

import (
	"strconv"
	"strings"

	"github.com/evochora/evochora/pkg/compiler/ast"
	"github.com/evochora/evochora/pkg/compiler/lexer"
	"github.com/evochora/evochora/pkg/source"
)

// Parser is a recursive-descent parser driven by a DirectiveHandlerRegistry.
type Parser struct {
	tokens    []lexer.Token
	pos       int
	diags     *source.Diagnostics
	registry  *DirectiveHandlerRegistry
	Aliases   map[string]string   // global register-alias table
	Procs     map[string][]string // procedure name -> parameter names
}

// Parse runs the parser over a fully-expanded token stream. Besides the AST
// it returns the global register-alias table and procedure parameter tables
// built along the way: both are flat/global by construction (the grammar has
// no scoped .REG/.PROC) and are what semantic.Analyze and ir.Lower need to
// resolve aliases and procedure call sites.
func Parse(tokens []lexer.Token) (*ast.Program, map[string]string, map[string][]string, *source.Diagnostics) {
	p := &Parser{
		tokens:   tokens,
		diags:    &source.Diagnostics{},
		registry: NewDirectiveHandlerRegistry(),
		Aliases:  make(map[string]string),
		Procs:    make(map[string][]string),
	}
	//
	var stmts []ast.Node
	for !p.atEOF() {
		p.skipNewlines()
		//
		if p.atEOF() {
			break
		}
		//
		if n := p.parseStatement(); n != nil {
			stmts = append(stmts, n)
		}
	}
	//
	return &ast.Program{Statements: stmts}, p.Aliases, p.Procs, p.diags
}

// ---- token stream primitives ----

func (p *Parser) peek() lexer.Token {
	if p.pos >= len(p.tokens) {
		return lexer.Token{Kind: lexer.EOF}
	}
	//
	return p.tokens[p.pos]
}

func (p *Parser) peekN(n int) lexer.Token {
	if p.pos+n >= len(p.tokens) {
		return lexer.Token{Kind: lexer.EOF}
	}
	//
	return p.tokens[p.pos+n]
}

func (p *Parser) advance() lexer.Token {
	t := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	//
	return t
}

func (p *Parser) atEOF() bool {
	return p.peek().Kind == lexer.EOF
}

func (p *Parser) skipNewlines() {
	for p.peek().Kind == lexer.NEWLINE {
		p.advance()
	}
}

// recoverAtNewline implements the parser's error-recovery policy: skip to
// the next newline so reporting can continue for the rest of the unit.
func (p *Parser) recoverAtNewline() {
	for p.peek().Kind != lexer.NEWLINE && p.peek().Kind != lexer.EOF {
		p.advance()
	}
	//
	if p.peek().Kind == lexer.NEWLINE {
		p.advance()
	}
}

func (p *Parser) errorf(origin source.Origin, format string, args ...any) {
	p.diags.Add(origin, format, args...)
}

// isDirective checks for a DIRECTIVE token matching name, case-insensitively.
func isDirective(t lexer.Token, name string) bool {
	return t.Kind == lexer.DIRECTIVE && strings.EqualFold(t.Text, "."+name)
}

// ---- statements ----

func (p *Parser) parseStatement() ast.Node {
	tok := p.peek()
	//
	switch {
	case tok.Kind == lexer.DIRECTIVE:
		name := strings.ToUpper(strings.TrimPrefix(tok.Text, "."))
		//
		if h, ok := p.registry.Lookup(name); ok {
			return h(p)
		}
		//
		p.errorf(tok.Origin, "unknown directive %q", tok.Text)
		p.recoverAtNewline()
		//
		return nil
	case tok.Kind == lexer.IDENTIFIER && p.peekN(1).Kind == lexer.COLON:
		p.advance() // identifier
		p.advance() // colon
		//
		return ast.NewLabel(tok.Origin, tok.Text)
	case tok.Kind == lexer.IDENTIFIER:
		return p.parseInstruction()
	default:
		p.errorf(tok.Origin, "unexpected token %s %q", tok.Kind, tok.Text)
		p.recoverAtNewline()
		//
		return nil
	}
}

func (p *Parser) parseInstruction() ast.Node {
	mnem := p.advance()
	//
	var ops []ast.Operand
	for p.peek().Kind != lexer.NEWLINE && p.peek().Kind != lexer.EOF {
		if p.peek().Kind == lexer.COMMA {
			p.advance()
			continue
		}
		//
		op := p.parseOperand()
		if op == nil {
			p.recoverAtNewline()
			return ast.NewInstruction(mnem.Origin, mnem.Text, ops)
		}
		//
		ops = append(ops, op)
	}
	//
	if p.peek().Kind == lexer.NEWLINE {
		p.advance()
	}
	//
	return ast.NewInstruction(mnem.Origin, mnem.Text, ops)
}

func (p *Parser) parseOperand() ast.Operand {
	tok := p.peek()
	//
	switch tok.Kind {
	case lexer.REGISTER:
		p.advance()
		return ast.NewRegisterRef(tok.Origin, tok.Text)
	case lexer.IDENTIFIER:
		p.advance()
		return ast.NewIdentifierRef(tok.Origin, tok.Text)
	case lexer.NUMBER:
		p.advance()
		v, err := strconv.ParseInt(tok.Text, 10, 32)
		if err != nil {
			p.errorf(tok.Origin, "malformed number %q", tok.Text)
			return nil
		}
		//
		return ast.NewNumberLiteral(tok.Origin, int32(v))
	case lexer.TYPED_LITERAL:
		p.advance()
		return parseTypedLiteral(p, tok)
	case lexer.VECTOR_LITERAL:
		p.advance()
		return parseVectorLiteral(p, tok)
	default:
		p.errorf(tok.Origin, "unexpected operand token %s %q", tok.Kind, tok.Text)
		return nil
	}
}

func parseTypedLiteral(p *Parser, tok lexer.Token) ast.Operand {
	parts := strings.SplitN(tok.Text, ":", 2)
	if len(parts) != 2 {
		p.errorf(tok.Origin, "malformed typed literal %q", tok.Text)
		return nil
	}
	//
	v, err := strconv.ParseInt(parts[1], 10, 32)
	if err != nil {
		p.errorf(tok.Origin, "malformed typed literal %q", tok.Text)
		return nil
	}
	//
	return ast.NewTypedLiteral(tok.Origin, strings.ToUpper(parts[0]), int32(v))
}

func parseVectorLiteral(p *Parser, tok lexer.Token) ast.Operand {
	parts := strings.Split(tok.Text, "|")
	components := make([]int32, len(parts))
	//
	for i, part := range parts {
		v, err := strconv.ParseInt(part, 10, 32)
		if err != nil {
			p.errorf(tok.Origin, "malformed vector literal %q", tok.Text)
			return nil
		}
		//
		components[i] = int32(v)
	}
	//
	return ast.NewVectorLiteral(tok.Origin, components)
}
