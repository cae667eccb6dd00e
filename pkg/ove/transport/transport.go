// Copyright © 2024 Rak Laptudirm <rak@laptudirm.com>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package transport carries batched oracle requests to a model backend.
// The orchestrator talks to the Transport interface only: it hands over
// a tagged batch and receives a partial-or-complete id→text map within
// a bounded wait. A transport must never block the caller indefinitely.
package transport

import (
	"context"
	"errors"

	"laptudirm.com/x/gambit/pkg/ove/prompt"
)

// ErrEmptyResponse is reported when the backend answers with no choices.
var ErrEmptyResponse = errors.New("transport: empty response from backend")

// Request is one tagged oracle request within a batch.
type Request struct {
	ID       string
	Model    string
	Messages []prompt.Message
}

// Transport submits a batch of requests and returns whatever replies
// were collected within its wait window, keyed by request ID. Missing
// entries are normal; the orchestrator retries them on later cycles. A
// transport reports total failure as an empty map, not an error.
type Transport interface {
	SubmitBatch(ctx context.Context, requests []Request) map[string]string
}

// Func adapts a function to the Transport interface.
type Func func(ctx context.Context, requests []Request) map[string]string

func (f Func) SubmitBatch(ctx context.Context, requests []Request) map[string]string {
	return f(ctx, requests)
}
