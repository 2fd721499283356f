package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mlevkov/go-todo-backend/internal/models"
	"github.com/mlevkov/go-todo-backend/internal/services"
)

// Result is what the route layer returns for a chat exchange.
type Result struct {
	Response    string
	Suggestions []string
}

const maxSuggestions = 4

// Service answers chat messages with the user's task list as model
// context. The model dependency is best-effort: any client failure is
// converted into a degraded but valid Result, never propagated.
type Service struct {
	logger zerolog.Logger
	// client is nil when no API key is configured; every request then
	// takes the degraded path.
	client *Client
	todos  services.TodoService
}

func NewService(
	logger zerolog.Logger,
	client *Client,
	todos services.TodoService,
) *Service {
	return &Service{
		logger: logger,
		client: client,
		todos:  todos,
	}
}

func (s *Service) Respond(ctx context.Context, userID string, messages []Message) (*Result, error) {
	todos, err := s.todos.List(ctx, userID, services.ListTodosFilter{})
	if err != nil {
		return nil, err
	}

	if s.client == nil {
		s.logger.Warn().Msg("chat client not configured, returning degraded response")
		return degradedResult(), nil
	}

	response, err := s.client.Generate(ctx, systemPrompt(todos), messages)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("chat generation failed")
		return degradedResult(), nil
	}

	return &Result{
		Response:    response,
		Suggestions: suggestions(todos),
	}, nil
}

func systemPrompt(todos []models.Todo) string {
	var b strings.Builder
	b.WriteString("You are an AI assistant for a Todo application.\n")
	b.WriteString("You can help users manage their tasks.\n")

	if len(todos) > 0 {
		b.WriteString("\nHere are the user's current tasks:\n")
		for _, todo := range todos {
			status := "Pending"
			if todo.Completed {
				status = "Completed"
			}
			fmt.Fprintf(&b, "- [%s] %s", status, todo.Title)
			if todo.Description != "" {
				fmt.Fprintf(&b, ": %s", todo.Description)
			}
			fmt.Fprintf(&b, " (ID: %s)\n", todo.ID)
		}
		b.WriteString("\nRespond to the user's request appropriately, using their task information when relevant.\n")
		b.WriteString("If the user wants to add, update, or delete tasks, guide them on how to do it through the app.\n")
		b.WriteString("If they ask about specific tasks, refer to the ones listed above.\n")
	} else {
		b.WriteString("Respond to the user's request appropriately.\n")
	}
	b.WriteString("Keep your responses helpful and concise.")
	return b.String()
}

// suggestions derives follow-up prompts from the shape of the task
// list, not from the model.
func suggestions(todos []models.Todo) []string {
	var out []string

	switch {
	case len(todos) == 0:
		out = []string{
			"Add your first task",
			"Learn how to use the app",
			"Organize your tasks",
		}
	case countPending(todos) > 0:
		out = []string{
			"Review your pending tasks",
			"Mark a task as complete",
			"Set priority for tasks",
		}
	default:
		out = []string{
			"Add a new task",
			"Review completed tasks",
			"Plan your next tasks",
		}
	}

	out = append(out,
		"Get tips on productivity",
		"Ask for help with the app",
	)

	if len(out) > maxSuggestions {
		out = out[:maxSuggestions]
	}
	return out
}

func countPending(todos []models.Todo) int {
	n := 0
	for _, todo := range todos {
		if !todo.Completed {
			n++
		}
	}
	return n
}

func degradedResult() *Result {
	return &Result{
		Response: "Sorry, I encountered an issue processing your request. Please try again.",
		Suggestions: []string{
			"Try rephrasing your request",
			"Ask about your tasks",
			"Get help with the app",
		},
	}
}
