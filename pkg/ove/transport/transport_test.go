package transport_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"laptudirm.com/x/gambit/pkg/ove/prompt"
	"laptudirm.com/x/gambit/pkg/ove/transport"
)

func TestFuncAdapter(t *testing.T) {
	trans := transport.Func(func(ctx context.Context, requests []transport.Request) map[string]string {
		replies := make(map[string]string)
		for _, request := range requests {
			replies[request.ID] = "ack:" + request.Model
		}
		return replies
	})

	replies := trans.SubmitBatch(context.Background(), []transport.Request{
		{ID: "a", Model: "m1", Messages: []prompt.Message{{Role: prompt.RoleUser, Content: "hi"}}},
		{ID: "b", Model: "m2"},
	})

	assert.Equal(t, map[string]string{"a": "ack:m1", "b": "ack:m2"}, replies)
}

func TestOpenAIDefaults(t *testing.T) {
	trans := transport.NewOpenAI(transport.OpenAIConfig{APIKey: "test-key"})
	assert.NotNil(t, trans)

	// Submitting an empty batch never touches the backend.
	replies := trans.SubmitBatch(context.Background(), nil)
	assert.Empty(t, replies)
}
