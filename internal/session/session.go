// Package session holds the ordered transcript for one persona conversation.
// A Session is pure state: it never talks to a completion backend itself.
package session

import (
	"errors"
	"fmt"

	"github.com/rolebench-ai/rolebench/internal/llm"
)

// ErrInvalidTurn indicates an append with a role the transcript cannot take.
var ErrInvalidTurn = errors.New("session: invalid turn role")

// Turn is one role-tagged entry in a transcript.
type Turn struct {
	Role     string            `json:"role"`
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Session is an append-only transcript with at most one system turn, which
// is always turn 0 when present.
type Session struct {
	turns          []Turn
	hasInstruction bool
}

func New() *Session {
	return &Session{}
}

// SetInstruction replaces turn 0 with a system turn and truncates everything
// after it.
func (s *Session) SetInstruction(text string) {
	s.turns = []Turn{{Role: llm.ChatRoleSystem, Content: text}}
	s.hasInstruction = true
}

// Append adds a user or assistant turn. System turns are only settable via
// SetInstruction.
func (s *Session) Append(role, content string, metadata map[string]string) error {
	if role != llm.ChatRoleUser && role != llm.ChatRoleAssistant {
		return fmt.Errorf("%w: %q", ErrInvalidTurn, role)
	}
	s.turns = append(s.turns, Turn{Role: role, Content: content, Metadata: metadata})
	return nil
}

// Reset truncates the transcript back to the instruction turn, or empties it
// when no instruction was set.
func (s *Session) Reset() {
	if s.hasInstruction {
		s.turns = s.turns[:1]
		return
	}
	s.turns = nil
}

// Turns returns a copy of the transcript in order.
func (s *Session) Turns() []Turn {
	out := make([]Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

// Len reports the number of turns including the instruction turn.
func (s *Session) Len() int {
	return len(s.turns)
}

// Messages converts the transcript into the completion-client wire shape.
// The instruction turn becomes the request's system block.
func (s *Session) Messages() (system []string, messages []llm.ChatMessage) {
	for _, turn := range s.turns {
		if turn.Role == llm.ChatRoleSystem {
			system = append(system, turn.Content)
			continue
		}
		messages = append(messages, llm.ChatMessage{Role: turn.Role, Content: turn.Content})
	}
	return system, messages
}
