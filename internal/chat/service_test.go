package chat

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlevkov/go-todo-backend/internal/models"
	"github.com/mlevkov/go-todo-backend/internal/services"
)

// stubTodoService serves a fixed task list; only List is exercised by
// the chat service.
type stubTodoService struct {
	todos   []models.Todo
	listErr error
}

func (s *stubTodoService) Create(context.Context, string, services.CreateTodoParams) (*models.Todo, error) {
	panic("not implemented")
}

func (s *stubTodoService) List(context.Context, string, services.ListTodosFilter) ([]models.Todo, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.todos, nil
}

func (s *stubTodoService) Get(context.Context, string, string) (*models.Todo, error) {
	panic("not implemented")
}

func (s *stubTodoService) Update(context.Context, string, string, services.UpdateTodoParams) (*models.Todo, error) {
	panic("not implemented")
}

func (s *stubTodoService) Delete(context.Context, string, string) error {
	panic("not implemented")
}

func (s *stubTodoService) ToggleCompletion(context.Context, string, string) (*models.Todo, error) {
	panic("not implemented")
}

func TestService_RespondWithoutClient(t *testing.T) {
	service := NewService(zerolog.Nop(), nil, &stubTodoService{})

	result, err := service.Respond(context.Background(), "user-1", []Message{{Role: "user", Content: "hi"}})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Response)
	assert.NotEmpty(t, result.Suggestions)
}

func TestService_RespondSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, generateContentResponse("You have one pending task."))
	}))
	defer server.Close()

	todos := &stubTodoService{todos: []models.Todo{
		{ID: "t1", Title: "Buy milk", Completed: false},
	}}
	service := NewService(zerolog.Nop(), newTestClient(t, server.URL), todos)

	result, err := service.Respond(context.Background(), "user-1", []Message{{Role: "user", Content: "what's left?"}})
	require.NoError(t, err)
	assert.Equal(t, "You have one pending task.", result.Response)
	assert.Contains(t, result.Suggestions, "Review your pending tasks")
	assert.LessOrEqual(t, len(result.Suggestions), maxSuggestions)
}

func TestService_RespondDegradesOnModelFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":{"code":400,"message":"broken","status":"INVALID_ARGUMENT"}}`)
	}))
	defer server.Close()

	service := NewService(zerolog.Nop(), newTestClient(t, server.URL), &stubTodoService{})

	result, err := service.Respond(context.Background(), "user-1", []Message{{Role: "user", Content: "hi"}})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Response)
	assert.Equal(t, []string{
		"Try rephrasing your request",
		"Ask about your tasks",
		"Get help with the app",
	}, result.Suggestions)
}

func TestService_RespondPropagatesStorageError(t *testing.T) {
	boom := errors.New("storage down")
	service := NewService(zerolog.Nop(), nil, &stubTodoService{listErr: boom})

	_, err := service.Respond(context.Background(), "user-1", []Message{{Role: "user", Content: "hi"}})
	assert.ErrorIs(t, err, boom)
}

func TestSystemPrompt_IncludesTasks(t *testing.T) {
	prompt := systemPrompt([]models.Todo{
		{ID: "t1", Title: "Buy milk", Description: "Two liters", Completed: false},
		{ID: "t2", Title: "Walk dog", Completed: true},
	})

	assert.Contains(t, prompt, "[Pending] Buy milk: Two liters (ID: t1)")
	assert.Contains(t, prompt, "[Completed] Walk dog (ID: t2)")
}

func TestSystemPrompt_NoTasks(t *testing.T) {
	prompt := systemPrompt(nil)
	assert.NotContains(t, prompt, "current tasks")
}

func TestSuggestions(t *testing.T) {
	empty := suggestions(nil)
	assert.Contains(t, empty, "Add your first task")
	assert.Len(t, empty, maxSuggestions)

	pending := suggestions([]models.Todo{{Completed: false}})
	assert.Contains(t, pending, "Review your pending tasks")
	assert.Len(t, pending, maxSuggestions)

	allDone := suggestions([]models.Todo{{Completed: true}})
	assert.Contains(t, allDone, "Add a new task")
	assert.Len(t, allDone, maxSuggestions)
}
