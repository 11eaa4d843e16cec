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

// Package source tracks source-file origins and aggregates diagnostics
// across the compiler pipeline, generalizing the teacher's byte-offset
// source.File to explicit 1-based line/column tracking as required for
// debugger/token-map output.
package source

import (
	"fmt"
	"os"
	"strings"
)

// File represents a single source file, tokenized with its own line/column
// coordinate space so that included files retain independent origins.
type File struct {
	Name  string
	lines []string
}

// NewFile constructs a File from raw bytes, normalizing line endings to LF.
func NewFile(name string, contents []byte) *File {
	normalized := strings.ReplaceAll(string(contents), "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\r", "\n")
	// A trailing newline terminates the last line rather than opening a new one.
	normalized = strings.TrimSuffix(normalized, "\n")
	//
	return &File{Name: name, lines: strings.Split(normalized, "\n")}
}

// ReadFile loads a source file from disk.
func ReadFile(path string) (*File, error) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	//
	return NewFile(path, bytes), nil
}

// Line returns the 1-based line's text, or "" if out of range.
func (f *File) Line(n int) string {
	if n < 1 || n > len(f.lines) {
		return ""
	}
	//
	return f.lines[n-1]
}

// LineCount returns the number of lines in this file.
func (f *File) LineCount() int {
	return len(f.lines)
}

// Origin identifies a single point (or the start of a span) within a source
// file: a 1-based line and column.
type Origin struct {
	File   string
	Line   int
	Column int
	Text   string
}

// String renders an origin as "file:line:column".
func (o Origin) String() string {
	return fmt.Sprintf("%s:%d:%d", o.File, o.Line, o.Column)
}

// Diagnostic is a single reported error or warning, tied to an Origin.
type Diagnostic struct {
	Origin  Origin
	Message string
}

// Error implements the error interface.
func (d Diagnostic) Error() string {
	return fmt.Sprintf("%s: %s", d.Origin, d.Message)
}

// Diagnostics accumulates zero or more Diagnostic values across a
// compilation unit, matching the teacher's pattern of collecting
// []source.SyntaxError and continuing to the next recovery point.
type Diagnostics struct {
	items []Diagnostic
}

// Add appends a new diagnostic at the given origin.
func (d *Diagnostics) Add(origin Origin, format string, args ...any) {
	d.items = append(d.items, Diagnostic{origin, fmt.Sprintf(format, args...)})
}

// HasErrors reports whether any diagnostics have been recorded.
func (d *Diagnostics) HasErrors() bool {
	return len(d.items) != 0
}

// Items returns the accumulated diagnostics.
func (d *Diagnostics) Items() []Diagnostic {
	return d.items
}

// Join merges another Diagnostics set into this one.
func (d *Diagnostics) Join(other *Diagnostics) {
	d.items = append(d.items, other.items...)
}

// Err converts this set of diagnostics into a single aggregated error, or nil
// if empty. This is the single aggregated failure required by the error
// handling policy: all compile-time errors are surfaced together.
func (d *Diagnostics) Err() error {
	if len(d.items) == 0 {
		return nil
	}
	//
	return &CompilationError{Diagnostics: d.items}
}

// CompilationError wraps one or more diagnostics as a single error value.
type CompilationError struct {
	Diagnostics []Diagnostic
}

// Error implements the error interface, rendering every diagnostic.
func (e *CompilationError) Error() string {
	var b strings.Builder
	//
	for i, d := range e.Diagnostics {
		if i != 0 {
			b.WriteString("\n")
		}
		//
		b.WriteString(d.Error())
	}
	//
	return b.String()
}
