package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func replyServer(t *testing.T, content string, check func(r *http.Request, req completionRequest)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req completionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		if check != nil {
			check(r, req)
		}
		fmt.Fprintf(w, `{"choices":[{"message":{"role":"assistant","content":%q}}]}`, content)
	}))
}

func TestClassifyVerdicts(t *testing.T) {
	tests := []struct {
		name    string
		verdict string
		unsafe  bool
	}{
		{"safe", "safe", false},
		{"unsafe", "unsafe\nS1", true},
		{"unsafe uppercase", "UNSAFE", true},
		{"unsafe padded", "  unsafe S10  ", true},
		{"unrecognized", "I cannot determine that.", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := replyServer(t, tt.verdict, nil)
			defer srv.Close()

			c := New(srv.URL, "key", "guard-model", "chat-model", 5*time.Second)
			unsafe, err := c.Classify(context.Background(), "some message")
			if err != nil {
				t.Fatalf("Classify: %v", err)
			}
			if unsafe != tt.unsafe {
				t.Errorf("unsafe = %v, want %v", unsafe, tt.unsafe)
			}
		})
	}
}

func TestClassifyRequestShape(t *testing.T) {
	srv := replyServer(t, "safe", func(r *http.Request, req completionRequest) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer key" {
			t.Errorf("authorization = %q", got)
		}
		if req.Model != "guard-model" {
			t.Errorf("model = %q", req.Model)
		}
		if len(req.Messages) != 1 || req.Messages[0].Content != "check me" {
			t.Errorf("messages = %+v", req.Messages)
		}
		if req.Temperature != 0 {
			t.Errorf("temperature = %v, want unset", req.Temperature)
		}
	})
	defer srv.Close()

	c := New(srv.URL, "key", "guard-model", "chat-model", 5*time.Second)
	if _, err := c.Classify(context.Background(), "check me"); err != nil {
		t.Fatalf("Classify: %v", err)
	}
}

func TestGenerate(t *testing.T) {
	srv := replyServer(t, "  hello back  ", func(r *http.Request, req completionRequest) {
		if req.Model != "chat-model" {
			t.Errorf("model = %q", req.Model)
		}
		if req.Temperature != 0.7 {
			t.Errorf("temperature = %v, want 0.7", req.Temperature)
		}
		if len(req.Messages) != 2 {
			t.Errorf("messages = %+v", req.Messages)
		}
	})
	defer srv.Close()

	c := New(srv.URL, "key", "guard-model", "chat-model", 5*time.Second)
	reply, err := c.Generate(context.Background(), []Turn{
		{Role: "user", Content: "hi"},
		{Role: "assistant", Content: "hey"},
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if reply != "hello back" {
		t.Errorf("reply = %q, want trimmed %q", reply, "hello back")
	}
}

func TestNon200IsAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"rate limited"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := New(srv.URL, "key", "guard-model", "chat-model", 5*time.Second)
	if _, err := c.Classify(context.Background(), "some message"); err == nil {
		t.Fatal("expected error for 429 response")
	}
	if _, err := c.Generate(context.Background(), []Turn{{Role: "user", Content: "hi"}}); err == nil {
		t.Fatal("expected error for 429 response")
	}
}

func TestEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"choices":[]}`)
	}))
	defer srv.Close()

	c := New(srv.URL, "key", "guard-model", "chat-model", 5*time.Second)
	_, err := c.Generate(context.Background(), []Turn{{Role: "user", Content: "hi"}})
	if !errors.Is(err, ErrEmptyCompletion) {
		t.Errorf("err = %v, want ErrEmptyCompletion", err)
	}
}

func TestTrailingSlashBaseURL(t *testing.T) {
	srv := replyServer(t, "safe", func(r *http.Request, req completionRequest) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %q", r.URL.Path)
		}
	})
	defer srv.Close()

	c := New(srv.URL+"/", "key", "guard-model", "chat-model", 5*time.Second)
	if _, err := c.Classify(context.Background(), "some message"); err != nil {
		t.Fatalf("Classify: %v", err)
	}
}
