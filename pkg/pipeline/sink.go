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

// Package pipeline defines the tick-stream sink contract (spec.md §6): the
// scheduler is a single producer, the sink may apply backpressure between
// ticks, and its own batching/storage/serialization concerns are this
// module's external collaborator boundary, not specified here.
package pipeline

import "context"

// Sink receives one message per tick. Send may block under backpressure but
// must never be called concurrently by more than one producer. Close is
// called once, after the producer's final Send.
type Sink[T any] interface {
	Send(ctx context.Context, msg T) error
	Close() error
}
