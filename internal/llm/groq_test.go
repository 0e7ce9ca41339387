package llm

import (
	"context"
	"errors"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGroqAPI struct {
	gotReq openai.ChatCompletionRequest
	resp   openai.ChatCompletionResponse
	err    error
}

func (f *fakeGroqAPI) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.gotReq = req
	return f.resp, f.err
}

func TestNewGroqClientRequiresAPIKey(t *testing.T) {
	_, err := NewGroqClient(GroqConfig{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api key")
}

func TestGroqCompleteMapsRolesAndSystemBlocks(t *testing.T) {
	api := &fakeGroqAPI{
		resp: openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{
				{
					Message:      openai.ChatCompletionMessage{Content: "  reply text  "},
					FinishReason: openai.FinishReasonStop,
				},
			},
			Usage: openai.Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
		},
	}
	client := &GroqClient{api: api}

	resp, err := client.Complete(context.Background(), Request{
		Model:  "llama-3.3-70b-versatile",
		System: []string{"stay in persona"},
		Messages: []ChatMessage{
			{Role: ChatRoleUser, Content: "question"},
			{Role: ChatRoleAssistant, Content: "earlier answer"},
			{Role: ChatRoleUser, Content: "follow up"},
		},
		MaxTokens:   256,
		Temperature: 0.4,
	})
	require.NoError(t, err)

	assert.Equal(t, "reply text", resp.Text)
	assert.Equal(t, "stop", resp.StopReason)
	assert.Equal(t, int32(10), resp.Usage.InputTokens)
	assert.Equal(t, int32(5), resp.Usage.OutputTokens)

	require.Len(t, api.gotReq.Messages, 4)
	assert.Equal(t, openai.ChatMessageRoleSystem, api.gotReq.Messages[0].Role)
	assert.Equal(t, openai.ChatMessageRoleUser, api.gotReq.Messages[1].Role)
	assert.Equal(t, openai.ChatMessageRoleAssistant, api.gotReq.Messages[2].Role)
	assert.Equal(t, openai.ChatMessageRoleUser, api.gotReq.Messages[3].Role)
	assert.Equal(t, 256, api.gotReq.MaxTokens)
}

func TestGroqCompleteSkipsBlankMessages(t *testing.T) {
	api := &fakeGroqAPI{
		resp: openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{
				{Message: openai.ChatCompletionMessage{Content: "ok"}},
			},
		},
	}
	client := &GroqClient{api: api}

	_, err := client.Complete(context.Background(), Request{
		Model: "m",
		Messages: []ChatMessage{
			{Role: ChatRoleUser, Content: "   "},
			{Role: ChatRoleUser, Content: "real"},
		},
	})
	require.NoError(t, err)
	require.Len(t, api.gotReq.Messages, 1)
	assert.Equal(t, "real", api.gotReq.Messages[0].Content)
}

func TestGroqCompleteErrors(t *testing.T) {
	t.Run("missing model", func(t *testing.T) {
		client := &GroqClient{api: &fakeGroqAPI{}}
		_, err := client.Complete(context.Background(), Request{
			Messages: []ChatMessage{{Role: ChatRoleUser, Content: "q"}},
		})
		assert.Error(t, err)
	})

	t.Run("transport failure", func(t *testing.T) {
		client := &GroqClient{api: &fakeGroqAPI{err: errors.New("quota exceeded")}}
		_, err := client.Complete(context.Background(), Request{
			Model:    "m",
			Messages: []ChatMessage{{Role: ChatRoleUser, Content: "q"}},
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "quota exceeded")
	})

	t.Run("no choices", func(t *testing.T) {
		client := &GroqClient{api: &fakeGroqAPI{}}
		_, err := client.Complete(context.Background(), Request{
			Model:    "m",
			Messages: []ChatMessage{{Role: ChatRoleUser, Content: "q"}},
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no choices")
	})

	t.Run("unsupported role", func(t *testing.T) {
		client := &GroqClient{api: &fakeGroqAPI{}}
		_, err := client.Complete(context.Background(), Request{
			Model:    "m",
			Messages: []ChatMessage{{Role: "tool", Content: "q"}},
		})
		assert.Error(t, err)
	})
}
