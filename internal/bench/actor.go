// Package bench drives role-conditioned evaluation runs: it primes an actor
// model into a persona, asks it stance-eliciting questions, and records the
// judge's structured assessment of every answer.
package bench

import (
	"context"
	"fmt"

	"github.com/rolebench-ai/rolebench/internal/llm"
	"github.com/rolebench-ai/rolebench/internal/prompt"
	"github.com/rolebench-ai/rolebench/internal/session"
)

// Actor is one persona-conditioned conversation with the actor model. Its
// transcript accumulates across training and evaluation turns, which is what
// makes in-context priming work.
type Actor struct {
	client      llm.Client
	sess        *session.Session
	role        string
	model       string
	maxTokens   int32
	temperature float32
}

// NewActor starts a persona conversation seeded with the role's system
// prompt. The client must not be nil.
func NewActor(client llm.Client, role, model string, maxTokens int32, temperature float32) *Actor {
	if client == nil {
		panic("bench: nil llm client")
	}
	sess := session.New()
	sess.SetInstruction(prompt.RoleSystemPrompt(role))
	return &Actor{
		client:      client,
		sess:        sess,
		role:        role,
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
	}
}

func (a *Actor) Role() string { return a.role }

// TurnCount reports the transcript length including the instruction turn.
func (a *Actor) TurnCount() int { return a.sess.Len() }

// Transcript returns a copy of the conversation so far.
func (a *Actor) Transcript() []session.Turn { return a.sess.Turns() }

// Exchange sends one user prompt in the ongoing conversation and appends
// both sides to the transcript. A failed call leaves the transcript exactly
// as it was, so one bad exchange cannot poison later ones.
func (a *Actor) Exchange(ctx context.Context, userPrompt string) (string, error) {
	system, messages := a.sess.Messages()
	messages = append(messages, llm.ChatMessage{Role: llm.ChatRoleUser, Content: userPrompt})

	resp, err := a.client.Complete(ctx, llm.Request{
		Model:       a.model,
		System:      system,
		Messages:    messages,
		MaxTokens:   a.maxTokens,
		Temperature: a.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("bench: actor completion: %w", err)
	}

	if err := a.sess.Append(llm.ChatRoleUser, userPrompt, nil); err != nil {
		return "", err
	}
	if err := a.sess.Append(llm.ChatRoleAssistant, resp.Text, nil); err != nil {
		return "", err
	}
	return resp.Text, nil
}
