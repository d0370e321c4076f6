// Package chatbot keeps bounded per-user conversation history and produces
// replies through the generation oracle. Functionally unrelated to
// moderation; it only shares the bounded-per-user-history shape.
package chatbot

import (
	"context"
	"sync"

	"github.com/sentinelbot/sentinel-backend/internal/oracle"
)

// Fallback is returned when the generator is unavailable. The user never
// sees a raw error.
const Fallback = "Sorry, I'm having trouble right now."

// Generator produces a reply from ordered conversation turns.
type Generator interface {
	Generate(ctx context.Context, turns []oracle.Turn) (string, error)
}

// ContextManager exclusively owns the per-user dialogue histories. At most
// keep turns are retained after each exchange and at most send turns are
// forwarded to the generator.
type ContextManager struct {
	gen  Generator
	keep int
	send int

	mu        sync.Mutex
	histories map[string]*history
}

type history struct {
	mu    sync.Mutex
	turns []oracle.Turn
}

func NewContextManager(gen Generator, keep, send int) *ContextManager {
	if send > keep {
		send = keep
	}
	return &ContextManager{
		gen:       gen,
		keep:      keep,
		send:      send,
		histories: make(map[string]*history),
	}
}

func (m *ContextManager) history(userID string) *history {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.histories[userID]
	if !ok {
		h = &history{}
		m.histories[userID] = h
	}
	return h
}

// AppendAndGenerate records the user turn, asks the generator for a reply
// over the most recent turns, records the assistant turn and returns the
// reply. On generator failure the fallback text is returned and no assistant
// turn is recorded; the user turn stays. Exchanges for one user are
// serialized, different users proceed in parallel.
func (m *ContextManager) AppendAndGenerate(ctx context.Context, userID, userText string) string {
	h := m.history(userID)
	h.mu.Lock()
	defer h.mu.Unlock()

	h.turns = append(h.turns, oracle.Turn{Role: "user", Content: userText})

	window := h.turns
	if len(window) > m.send {
		window = window[len(window)-m.send:]
	}

	reply, err := m.gen.Generate(ctx, window)
	if err != nil || reply == "" {
		return Fallback
	}

	h.turns = append(h.turns, oracle.Turn{Role: "assistant", Content: reply})
	if len(h.turns) > m.keep {
		h.turns = append([]oracle.Turn(nil), h.turns[len(h.turns)-m.keep:]...)
	}
	return reply
}

// Len reports the stored turn count for a user. Used by tests and the
// dashboard, never by other components.
func (m *ContextManager) Len(userID string) int {
	h := m.history(userID)
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.turns)
}
