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

package transport

import (
	"context"
	"sync"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"

	"laptudirm.com/x/gambit/pkg/ove/prompt"
)

// OpenAIConfig configures the OpenAI-backed transport.
type OpenAIConfig struct {
	APIKey  string `yaml:"api-key"`
	BaseURL string `yaml:"base-url"`

	// Number of requests dispatched concurrently per batch.
	Concurrency int `yaml:"concurrency"`

	// Cap on each individual completion call.
	RequestTimeout time.Duration `yaml:"request-timeout"`

	// Cap on the whole batch; replies still in flight afterwards are
	// dropped and retried by the orchestrator on a later cycle.
	MaxWait time.Duration `yaml:"max-wait"`
}

// OpenAI fans a batch of requests out to the chat completions API over
// a bounded worker pool and collects whatever responses arrive within
// the wait window.
type OpenAI struct {
	client *openai.Client
	config OpenAIConfig
}

// NewOpenAI builds the transport, applying defaults for unset knobs.
func NewOpenAI(config OpenAIConfig) *OpenAI {
	if config.Concurrency <= 0 {
		config.Concurrency = 8
	}
	if config.RequestTimeout <= 0 {
		config.RequestTimeout = 60 * time.Second
	}
	if config.MaxWait <= 0 {
		config.MaxWait = 120 * time.Second
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	return &OpenAI{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
	}
}

// SubmitBatch implements Transport.
func (t *OpenAI) SubmitBatch(ctx context.Context, requests []Request) map[string]string {
	jobs := make(chan Request)

	var mutex sync.Mutex
	replies := make(map[string]string, len(requests))

	var wg sync.WaitGroup
	for i := 0; i < t.config.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for request := range jobs {
				text, err := t.complete(ctx, request)
				if err != nil {
					logrus.Warnf("transport: request %s failed: %s", request.ID, err)
					continue
				}

				mutex.Lock()
				replies[request.ID] = text
				mutex.Unlock()
			}
		}()
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer wg.Wait()
		defer close(jobs)

		for _, request := range requests {
			select {
			case jobs <- request:
			case <-ctx.Done():
				return
			}
		}
	}()

	select {
	case <-done:
	case <-time.After(t.config.MaxWait):
		logrus.Warnf("transport: wait window expired with requests in flight")
	case <-ctx.Done():
	}

	mutex.Lock()
	defer mutex.Unlock()

	collected := make(map[string]string, len(replies))
	for id, text := range replies {
		collected[id] = text
	}
	return collected
}

func (t *OpenAI) complete(ctx context.Context, request Request) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.config.RequestTimeout)
	defer cancel()

	messages := make([]openai.ChatCompletionMessage, 0, len(request.Messages))
	for _, message := range request.Messages {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    message.Role,
			Content: message.Content,
		})
	}

	response, err := t.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    request.Model,
		Messages: messages,
	})
	if err != nil {
		return "", err
	}

	if len(response.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return response.Choices[0].Message.Content, nil
}

// Ask submits a single conversation and waits for its reply, used by
// model-backed opponents and guard extractors outside the batch loop.
func (t *OpenAI) Ask(ctx context.Context, model string, messages []prompt.Message) (string, error) {
	return t.complete(ctx, Request{ID: "ask", Model: model, Messages: messages})
}
