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
package pipeline

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"sync"
)

// JSONLSink writes one JSON-encoded line per tick to an underlying writer,
// the on-disk trace format consumed by external replay/inspection tooling.
// It buffers writes and flushes on Close.
type JSONLSink[T any] struct {
	w      *bufio.Writer
	closer io.Closer // nil if the underlying writer doesn't need closing
	enc    *json.Encoder
	mu     sync.Mutex
	closed bool
}

// NewJSONLSink wraps w (and, if it implements io.Closer, closes it too).
func NewJSONLSink[T any](w io.Writer) *JSONLSink[T] {
	bw := bufio.NewWriter(w)
	closer, _ := w.(io.Closer)
	//
	return &JSONLSink[T]{w: bw, closer: closer, enc: json.NewEncoder(bw)}
}

// Send implements Sink.
func (s *JSONLSink[T]) Send(ctx context.Context, msg T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	//
	if s.closed {
		return ErrClosed
	}
	//
	return s.enc.Encode(msg)
}

// Close implements Sink: flushes buffered output and closes the underlying
// writer, if closeable.
func (s *JSONLSink[T]) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	//
	if s.closed {
		return nil
	}
	//
	s.closed = true
	//
	if err := s.w.Flush(); err != nil {
		return err
	}
	if s.closer != nil {
		return s.closer.Close()
	}
	//
	return nil
}
