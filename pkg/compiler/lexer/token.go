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

// Package lexer tokenizes evochora assembly source, tagging every token
// with its file/line/column origin (spec.md §4.1).
package lexer

import "github.com/evochora/evochora/pkg/source"

// Kind identifies the lexical class of a Token.
type Kind uint8

const (
	// EOF signals the end of the token stream.
	EOF Kind = iota
	// NEWLINE separates statements.
	NEWLINE
	// DIRECTIVE is a dot-prefixed keyword, e.g. ".ORG".
	DIRECTIVE
	// IDENTIFIER is a bare name: mnemonic, label, macro, or alias.
	IDENTIFIER
	// REGISTER is %DRk, %PRk, %FPRk or %LRk.
	REGISTER
	// NUMBER is a signed integer literal.
	NUMBER
	// STRING is a double-quoted string, used by .INCLUDE.
	STRING
	// TYPED_LITERAL is "TYPE:value", e.g. "DATA:41".
	TYPED_LITERAL
	// VECTOR_LITERAL is "a|b|...", a d-component coordinate literal.
	VECTOR_LITERAL
	// LPAREN, RPAREN, COMMA, COLON are punctuation used by a few directives.
	LPAREN
	RPAREN
	COMMA
	COLON
)

// String gives a human-readable name for a token kind, used in diagnostics.
func (k Kind) String() string {
	switch k {
	case EOF:
		return "EOF"
	case NEWLINE:
		return "NEWLINE"
	case DIRECTIVE:
		return "DIRECTIVE"
	case IDENTIFIER:
		return "IDENTIFIER"
	case REGISTER:
		return "REGISTER"
	case NUMBER:
		return "NUMBER"
	case STRING:
		return "STRING"
	case TYPED_LITERAL:
		return "TYPED_LITERAL"
	case VECTOR_LITERAL:
		return "VECTOR_LITERAL"
	case LPAREN:
		return "LPAREN"
	case RPAREN:
		return "RPAREN"
	case COMMA:
		return "COMMA"
	case COLON:
		return "COLON"
	default:
		return "UNKNOWN"
	}
}

// Token is a single classified lexeme with its source origin.
type Token struct {
	Kind   Kind
	Text   string
	Origin source.Origin
}
