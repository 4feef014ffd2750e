package planner_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/tidwall/gjson"

	"github.com/HendryAvila/planwright/internal/planner"
)

// fakeMessagesAPI answers POST /v1/messages with a single text block. The
// returned func yields the last request body.
func fakeMessagesAPI(t *testing.T, reply string) (*httptest.Server, func() string) {
	t.Helper()
	var (
		mu   sync.Mutex
		last string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			http.NotFound(w, r)
			return
		}
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		last = string(body)
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{
			"id": "msg_test",
			"type": "message",
			"role": "assistant",
			"model": "test-model",
			"content": [{"type": "text", "text": %s}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 10, "output_tokens": 20}
		}`, strconv.Quote(reply))
	}))
	t.Cleanup(srv.Close)
	return srv, func() string {
		mu.Lock()
		defer mu.Unlock()
		return last
	}
}

func newTestClient(t *testing.T, srv *httptest.Server) *planner.Client {
	t.Helper()
	c, err := planner.NewClient("test-key", "test-model", 1024,
		option.WithBaseURL(srv.URL),
		option.WithMaxRetries(0),
	)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func TestNewClient_RequiresKey(t *testing.T) {
	if _, err := planner.NewClient("", "", 0); err == nil {
		t.Error("expected error without API key")
	}
}

func TestClient_GeneratePlan(t *testing.T) {
	srv, last := fakeMessagesAPI(t, samplePlan)
	c := newTestClient(t, srv)

	plan, err := c.GeneratePlan(context.Background(), "a todo API")
	if err != nil {
		t.Fatalf("GeneratePlan: %v", err)
	}
	if plan.TaskCount() != 4 {
		t.Errorf("TaskCount = %d, want 4", plan.TaskCount())
	}

	req := gjson.Parse(last())
	if req.Get("model").String() != "test-model" {
		t.Errorf("model = %q", req.Get("model").String())
	}
	if req.Get("max_tokens").Int() != 1024 {
		t.Errorf("max_tokens = %d", req.Get("max_tokens").Int())
	}
	if req.Get("messages.0.content.0.text").String() != "a todo API" {
		t.Errorf("user message = %s", req.Get("messages.0.content").Raw)
	}
}

func TestClient_GeneratePlan_BadResponse(t *testing.T) {
	srv, _ := fakeMessagesAPI(t, "Sorry, I cannot help with that.")
	c := newTestClient(t, srv)

	if _, err := c.GeneratePlan(context.Background(), "anything"); err == nil {
		t.Error("expected parse error")
	}
	if _, err := c.GeneratePlan(context.Background(), "  "); err == nil {
		t.Error("expected error for empty description")
	}
}

func TestClient_ChatSendsHistory(t *testing.T) {
	srv, last := fakeMessagesAPI(t, "  Finish the schema first.  ")
	c := newTestClient(t, srv)

	answer, err := c.Chat(context.Background(), "snapshot", []planner.ChatTurn{
		{Role: "user", Content: "hi"},
		{Role: "assistant", Content: "hello"},
	}, "what next?")
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if answer != "Finish the schema first." {
		t.Errorf("answer = %q", answer)
	}

	req := gjson.Parse(last())
	roles := req.Get("messages.#.role").Array()
	if len(roles) != 3 || roles[1].String() != "assistant" || roles[2].String() != "user" {
		t.Errorf("roles = %v", roles)
	}
	if req.Get("system.0.text").String() != "snapshot" {
		t.Errorf("system = %s", req.Get("system").Raw)
	}
}
