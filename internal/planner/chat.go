package planner

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/HendryAvila/planwright/internal/depgraph"
	"github.com/HendryAvila/planwright/internal/store"
)

// historyLimit is how many earlier messages of a thread are replayed.
const historyLimit = 20

// ChatStore is the part of the store the chat assistant reads and writes.
type ChatStore interface {
	GetProject(ctx context.Context, id int64) (*store.Project, error)
	ListTasks(ctx context.Context, projectID int64) ([]store.Task, error)
	ListEdges(ctx context.Context, projectID int64) ([]depgraph.Edge, error)
	ListMemoryItems(ctx context.Context, projectID int64, kind string, limit int) ([]store.MemoryItem, error)
	ListChatMessages(ctx context.Context, projectID int64, threadID string, limit int) ([]store.ChatMessage, error)
	AddChatMessage(ctx context.Context, projectID int64, threadID string, role store.ChatRole, content string) (*store.ChatMessage, error)
}

// ChatReply is the assistant's answer in a thread.
type ChatReply struct {
	ThreadID string `json:"thread_id"`
	Answer   string `json:"answer"`
}

// Chatter answers questions about a project's progress.
type Chatter struct {
	store ChatStore
	gen   Generator
}

// NewChatter creates a Chatter.
func NewChatter(s ChatStore, gen Generator) *Chatter {
	return &Chatter{store: s, gen: gen}
}

const chatSystemPrompt = `You are a pragmatic project assistant. Answer questions about the project below using only the snapshot and notes provided. Be concise. When recommending what to do next, prefer tasks listed as ready to start.

`

// Ask answers question in threadID, starting a new thread when threadID is
// empty. The question is stored only after the model has answered, so a
// failed call leaves the thread unchanged.
func (c *Chatter) Ask(ctx context.Context, projectID int64, threadID, question string) (*ChatReply, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, errors.New("planner: question is required")
	}
	if threadID == "" {
		threadID = uuid.NewString()
	}

	system, err := c.systemPrompt(ctx, projectID)
	if err != nil {
		return nil, err
	}

	msgs, err := c.store.ListChatMessages(ctx, projectID, threadID, historyLimit)
	if err != nil {
		return nil, fmt.Errorf("planner: load chat history: %w", err)
	}
	history := make([]ChatTurn, 0, len(msgs))
	for _, m := range msgs {
		history = append(history, ChatTurn{Role: string(m.Role), Content: m.Content})
	}

	answer, err := c.gen.Chat(ctx, system, history, question)
	if err != nil {
		return nil, fmt.Errorf("planner: chat: %w", err)
	}

	if _, err := c.store.AddChatMessage(ctx, projectID, threadID, store.RoleUser, question); err != nil {
		return nil, fmt.Errorf("planner: save question: %w", err)
	}
	if _, err := c.store.AddChatMessage(ctx, projectID, threadID, store.RoleAssistant, answer); err != nil {
		return nil, fmt.Errorf("planner: save answer: %w", err)
	}
	return &ChatReply{ThreadID: threadID, Answer: answer}, nil
}

func (c *Chatter) systemPrompt(ctx context.Context, projectID int64) (string, error) {
	project, err := c.store.GetProject(ctx, projectID)
	if err != nil {
		return "", fmt.Errorf("planner: load project: %w", err)
	}
	tasks, err := c.store.ListTasks(ctx, projectID)
	if err != nil {
		return "", fmt.Errorf("planner: load tasks: %w", err)
	}
	edges, err := c.store.ListEdges(ctx, projectID)
	if err != nil {
		return "", fmt.Errorf("planner: load dependencies: %w", err)
	}
	notes, err := c.store.ListMemoryItems(ctx, projectID, "", 0)
	if err != nil {
		return "", fmt.Errorf("planner: load memory: %w", err)
	}

	var b strings.Builder
	b.WriteString(chatSystemPrompt)
	b.WriteString(BuildProgressContext(project, tasks, edges))
	if len(notes) > 0 {
		b.WriteString("\n### Project notes\n")
		for _, n := range notes {
			fmt.Fprintf(&b, "- [%s] %s\n", n.Kind, n.Content)
		}
	}
	return b.String(), nil
}
