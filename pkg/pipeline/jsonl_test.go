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
package pipeline_test

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/evochora/evochora/pkg/pipeline"
)

type tick struct {
	Tick int `json:"Tick"`
}

func TestJSONLSinkWritesOneLinePerMessage(t *testing.T) {
	var buf bytes.Buffer
	//
	s := pipeline.NewJSONLSink[tick](&buf)
	ctx := context.Background()
	//
	for i := 0; i < 3; i++ {
		if err := s.Send(ctx, tick{Tick: i}); err != nil {
			t.Fatalf("Send(%d): %v", i, err)
		}
	}
	//
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	//
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d: %q", len(lines), buf.String())
	}
	//
	for i, line := range lines {
		var got tick
		if err := json.Unmarshal([]byte(line), &got); err != nil {
			t.Fatalf("line %d not valid JSON: %v", i, err)
		}
		//
		if got.Tick != i {
			t.Fatalf("line %d: Tick = %d, want %d", i, got.Tick, i)
		}
	}
}

func TestJSONLSinkRejectsSendAfterClose(t *testing.T) {
	var buf bytes.Buffer
	//
	s := pipeline.NewJSONLSink[tick](&buf)
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	//
	if err := s.Send(context.Background(), tick{Tick: 1}); err != pipeline.ErrClosed {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestJSONLSinkCloseIsIdempotent(t *testing.T) {
	var buf bytes.Buffer
	//
	s := pipeline.NewJSONLSink[tick](&buf)
	if err := s.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	//
	if err := s.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

func TestJSONLSinkCloseFlushesBufferedOutput(t *testing.T) {
	var buf bytes.Buffer
	//
	s := pipeline.NewJSONLSink[tick](&buf)
	if err := s.Send(context.Background(), tick{Tick: 7}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	//
	// bufio.Writer only guarantees visibility after Flush/Close, reached here
	// via Close since JSONLSink exposes no standalone Flush.
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	//
	if !strings.Contains(buf.String(), `"Tick":7`) {
		t.Fatalf("expected flushed output to contain the sent tick, got %q", buf.String())
	}
}
