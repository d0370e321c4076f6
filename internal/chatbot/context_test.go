package chatbot

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/sentinelbot/sentinel-backend/internal/oracle"
)

type fakeGenerator struct {
	mu       sync.Mutex
	reply    string
	err      error
	calls    int
	lastSeen []oracle.Turn
}

func (f *fakeGenerator) Generate(ctx context.Context, turns []oracle.Turn) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastSeen = append([]oracle.Turn(nil), turns...)
	return f.reply, f.err
}

func TestAppendAndGenerate(t *testing.T) {
	gen := &fakeGenerator{reply: "hi!"}
	m := NewContextManager(gen, 30, 20)

	reply := m.AppendAndGenerate(context.Background(), "u1", "hello")
	if reply != "hi!" {
		t.Errorf("reply = %q, want %q", reply, "hi!")
	}
	if m.Len("u1") != 2 {
		t.Errorf("turns = %d, want 2 (user + assistant)", m.Len("u1"))
	}
	if len(gen.lastSeen) != 1 || gen.lastSeen[0].Role != "user" || gen.lastSeen[0].Content != "hello" {
		t.Errorf("generator saw %+v", gen.lastSeen)
	}
}

func TestGeneratorFailureReturnsFallback(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("upstream 500")}
	m := NewContextManager(gen, 30, 20)

	if reply := m.AppendAndGenerate(context.Background(), "u1", "hello"); reply != Fallback {
		t.Errorf("reply = %q, want fallback", reply)
	}
	// The user turn is kept, the failed exchange records no assistant turn.
	if m.Len("u1") != 1 {
		t.Errorf("turns = %d, want 1", m.Len("u1"))
	}

	// Recovery on the next exchange picks up where the history left off.
	gen.err = nil
	gen.reply = "back now"
	if reply := m.AppendAndGenerate(context.Background(), "u1", "still there?"); reply != "back now" {
		t.Errorf("reply = %q, want %q", reply, "back now")
	}
	if m.Len("u1") != 3 {
		t.Errorf("turns = %d, want 3", m.Len("u1"))
	}
}

func TestEmptyReplyTreatedAsFailure(t *testing.T) {
	gen := &fakeGenerator{reply: ""}
	m := NewContextManager(gen, 30, 20)

	if reply := m.AppendAndGenerate(context.Background(), "u1", "hello"); reply != Fallback {
		t.Errorf("reply = %q, want fallback", reply)
	}
	if m.Len("u1") != 1 {
		t.Errorf("turns = %d, want 1", m.Len("u1"))
	}
}

func TestHistoryRetentionCap(t *testing.T) {
	gen := &fakeGenerator{reply: "ok"}
	m := NewContextManager(gen, 30, 20)

	// Each exchange adds two turns; far more than the cap.
	for i := 0; i < 40; i++ {
		m.AppendAndGenerate(context.Background(), "u1", fmt.Sprintf("msg %d", i))
	}
	if got := m.Len("u1"); got != 30 {
		t.Errorf("retained turns = %d, want 30", got)
	}
}

func TestGeneratorWindowCap(t *testing.T) {
	gen := &fakeGenerator{reply: "ok"}
	m := NewContextManager(gen, 30, 20)

	for i := 0; i < 40; i++ {
		m.AppendAndGenerate(context.Background(), "u1", fmt.Sprintf("msg %d", i))
	}
	if got := len(gen.lastSeen); got != 20 {
		t.Errorf("generator window = %d, want 20", got)
	}
	// The window ends with the newest user turn.
	last := gen.lastSeen[len(gen.lastSeen)-1]
	if last.Role != "user" || last.Content != "msg 39" {
		t.Errorf("window ends with %+v", last)
	}
}

func TestUsersAreIndependent(t *testing.T) {
	gen := &fakeGenerator{reply: "ok"}
	m := NewContextManager(gen, 30, 20)

	m.AppendAndGenerate(context.Background(), "u1", "one")
	m.AppendAndGenerate(context.Background(), "u1", "two")
	m.AppendAndGenerate(context.Background(), "u2", "solo")

	if m.Len("u1") != 4 {
		t.Errorf("u1 turns = %d, want 4", m.Len("u1"))
	}
	if m.Len("u2") != 2 {
		t.Errorf("u2 turns = %d, want 2", m.Len("u2"))
	}
}

func TestSendClampedToKeep(t *testing.T) {
	gen := &fakeGenerator{reply: "ok"}
	m := NewContextManager(gen, 4, 10)

	for i := 0; i < 10; i++ {
		m.AppendAndGenerate(context.Background(), "u1", fmt.Sprintf("msg %d", i))
	}
	if got := len(gen.lastSeen); got > 4+1 {
		t.Errorf("generator window = %d, want at most keep", got)
	}
	if got := m.Len("u1"); got != 4 {
		t.Errorf("retained turns = %d, want 4", got)
	}
}

func TestConcurrentExchanges(t *testing.T) {
	gen := &fakeGenerator{reply: "ok"}
	m := NewContextManager(gen, 100, 20)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			user := fmt.Sprintf("u%d", n%3)
			for j := 0; j < 5; j++ {
				m.AppendAndGenerate(context.Background(), user, "hello")
			}
		}(i)
	}
	wg.Wait()

	total := m.Len("u0") + m.Len("u1") + m.Len("u2")
	if total != 100 {
		t.Errorf("total turns = %d, want 100 (10 goroutines * 5 exchanges * 2)", total)
	}
}
