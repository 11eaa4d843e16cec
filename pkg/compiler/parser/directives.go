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
	"strings"

	"github.com/evochora/evochora/pkg/compiler/ast"
	"github.com/evochora/evochora/pkg/compiler/lexer"
)

// handleProc parses ".PROC name [WITH p1, p2, ...] <body> .ENDP".
func handleProc(p *Parser) ast.Node {
	origin := p.advance().Origin // consume .PROC
	//
	if p.peek().Kind != lexer.IDENTIFIER {
		p.errorf(origin, ".PROC requires a name")
		p.recoverAtNewline()
		return nil
	}
	//
	name := p.advance().Text
	//
	var params []string
	if p.peek().Kind == lexer.IDENTIFIER && strings.EqualFold(p.peek().Text, "WITH") {
		p.advance()
		//
		for p.peek().Kind == lexer.IDENTIFIER {
			params = append(params, p.advance().Text)
			//
			if p.peek().Kind == lexer.COMMA {
				p.advance()
			}
		}
	} else if isDirective(p.peek(), "WITH") {
		p.advance()
		//
		for p.peek().Kind == lexer.IDENTIFIER {
			params = append(params, p.advance().Text)
			//
			if p.peek().Kind == lexer.COMMA {
				p.advance()
			}
		}
	}
	//
	if p.peek().Kind == lexer.NEWLINE {
		p.advance()
	}
	//
	p.Procs[strings.ToUpper(name)] = params
	//
	var body []ast.Node
	for {
		p.skipNewlines()
		//
		if p.atEOF() {
			p.errorf(origin, "unterminated .PROC %q (missing .ENDP)", name)
			break
		}
		//
		if isDirective(p.peek(), "ENDP") {
			p.advance()
			if p.peek().Kind == lexer.NEWLINE {
				p.advance()
			}
			break
		}
		//
		if n := p.parseStatement(); n != nil {
			body = append(body, n)
		}
	}
	//
	return ast.NewProcedure(origin, name, params, body)
}

// handleScope parses ".SCOPE <body> .ENDS".
func handleScope(p *Parser) ast.Node {
	origin := p.advance().Origin // consume .SCOPE
	//
	if p.peek().Kind == lexer.NEWLINE {
		p.advance()
	}
	//
	var body []ast.Node
	for {
		p.skipNewlines()
		//
		if p.atEOF() {
			p.errorf(origin, "unterminated .SCOPE (missing .ENDS)")
			break
		}
		//
		if isDirective(p.peek(), "ENDS") {
			p.advance()
			if p.peek().Kind == lexer.NEWLINE {
				p.advance()
			}
			break
		}
		//
		if n := p.parseStatement(); n != nil {
			body = append(body, n)
		}
	}
	//
	return ast.NewScope(origin, body)
}

// handleReg parses ".REG alias %DR0" / ".PREG alias %PR0", recording a
// global register alias.
func handleReg(p *Parser) ast.Node {
	directive := p.advance() // consume .REG / .PREG
	//
	if p.peek().Kind != lexer.IDENTIFIER {
		p.errorf(directive.Origin, "%s requires an alias name", directive.Text)
		p.recoverAtNewline()
		return nil
	}
	//
	alias := p.advance().Text
	//
	if p.peek().Kind != lexer.REGISTER {
		p.errorf(directive.Origin, "%s requires a register operand", directive.Text)
		p.recoverAtNewline()
		return nil
	}
	//
	reg := p.advance().Text
	p.Aliases[strings.ToUpper(alias)] = strings.ToUpper(reg)
	//
	if p.peek().Kind == lexer.NEWLINE {
		p.advance()
	}
	//
	return ast.NewDirective(directive.Origin, "REG", []ast.Operand{
		ast.NewIdentifierRef(directive.Origin, alias),
		ast.NewRegisterRef(directive.Origin, reg),
	})
}

// handleDefine parses ".DEFINE name value".
func handleDefine(p *Parser) ast.Node {
	directive := p.advance()
	//
	if p.peek().Kind != lexer.IDENTIFIER {
		p.errorf(directive.Origin, ".DEFINE requires a name")
		p.recoverAtNewline()
		return nil
	}
	//
	name := p.advance()
	val := p.parseOperand()
	//
	if p.peek().Kind == lexer.NEWLINE {
		p.advance()
	}
	//
	if val == nil {
		return nil
	}
	//
	return ast.NewDirective(directive.Origin, "DEFINE", []ast.Operand{
		ast.NewIdentifierRef(name.Origin, name.Text),
		val,
	})
}

// handleOrg parses ".ORG vec", setting the layout cursor.
func handleOrg(p *Parser) ast.Node {
	return parseVectorDirective(p, "ORG")
}

// handleDir parses ".DIR vec", setting the layout direction.
func handleDir(p *Parser) ast.Node {
	return parseVectorDirective(p, "DIR")
}

func parseVectorDirective(p *Parser, name string) ast.Node {
	directive := p.advance()
	vec := p.parseOperand()
	//
	if p.peek().Kind == lexer.NEWLINE {
		p.advance()
	}
	//
	if vec == nil {
		return nil
	}
	//
	return ast.NewDirective(directive.Origin, name, []ast.Operand{vec})
}

// handlePlace parses ".PLACE value vec".
func handlePlace(p *Parser) ast.Node {
	directive := p.advance()
	//
	valOp := p.parseOperand()
	vecOp := p.parseOperand()
	//
	if p.peek().Kind == lexer.NEWLINE {
		p.advance()
	}
	//
	val, ok1 := valOp.(*ast.TypedLiteral)
	vec, ok2 := vecOp.(*ast.VectorLiteral)
	//
	if !ok1 || !ok2 {
		p.errorf(directive.Origin, ".PLACE requires a typed literal and a vector")
		return nil
	}
	//
	return ast.NewPlace(directive.Origin, val, vec)
}

// handleImport parses ".IMPORT path AS alias".
func handleImport(p *Parser) ast.Node {
	return parseImportLike(p, "IMPORT")
}

// handleRequire parses ".REQUIRE path AS alias".
func handleRequire(p *Parser) ast.Node {
	return parseImportLike(p, "REQUIRE")
}

func parseImportLike(p *Parser, name string) ast.Node {
	directive := p.advance()
	//
	target := p.parseOperand()
	//
	var alias ast.Operand
	if p.peek().Kind == lexer.IDENTIFIER && strings.EqualFold(p.peek().Text, "AS") {
		p.advance()
		alias = p.parseOperand()
	}
	//
	if p.peek().Kind == lexer.NEWLINE {
		p.advance()
	}
	//
	if target == nil {
		return nil
	}
	//
	args := []ast.Operand{target}
	if alias != nil {
		args = append(args, alias)
	}
	//
	return ast.NewDirective(directive.Origin, name, args)
}

// handleExport parses ".EXPORT name".
func handleExport(p *Parser) ast.Node {
	directive := p.advance()
	//
	name := p.parseOperand()
	//
	if p.peek().Kind == lexer.NEWLINE {
		p.advance()
	}
	//
	if name == nil {
		return nil
	}
	//
	return ast.NewDirective(directive.Origin, "EXPORT", []ast.Operand{name})
}
