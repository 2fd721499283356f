package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mlevkov/go-todo-backend/internal/models"
	"github.com/mlevkov/go-todo-backend/internal/services"
)

type addTaskInput struct {
	UserID      string `json:"user_id" jsonschema:"required,The ID of the user"`
	Title       string `json:"title" jsonschema:"required,The title of the task"`
	Description string `json:"description,omitempty" jsonschema:"Optional description of the task"`
}

type addTaskOutput struct {
	TaskID string `json:"task_id" jsonschema:"The ID of the created task"`
	Title  string `json:"title" jsonschema:"The title of the created task"`
}

type listTasksInput struct {
	UserID    string `json:"user_id" jsonschema:"required,The ID of the user"`
	Completed *bool  `json:"completed,omitempty" jsonschema:"Filter by completion status (true for completed, false for pending, absent for all)"`
}

type listTasksOutput struct {
	TaskCount int `json:"task_count" jsonschema:"Number of tasks returned"`
}

type updateTaskInput struct {
	UserID      string  `json:"user_id" jsonschema:"required,The ID of the user"`
	TaskID      string  `json:"task_id" jsonschema:"required,The ID of the task to update"`
	Title       *string `json:"title,omitempty" jsonschema:"New title for the task"`
	Description *string `json:"description,omitempty" jsonschema:"New description for the task"`
	Completed   *bool   `json:"is_completed,omitempty" jsonschema:"New completion status"`
}

type taskStateOutput struct {
	TaskID    string `json:"task_id" jsonschema:"The ID of the task"`
	Title     string `json:"title" jsonschema:"The title of the task"`
	Completed bool   `json:"is_completed" jsonschema:"Whether the task is completed"`
}

type taskRefInput struct {
	UserID string `json:"user_id" jsonschema:"required,The ID of the user"`
	TaskID string `json:"task_id" jsonschema:"required,The ID of the task"`
}

type deleteTaskOutput struct {
	Deleted bool `json:"deleted" jsonschema:"Whether the task was deleted"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "add_task",
		Description: "Add a new task to the user's todo list",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args addTaskInput) (*mcp.CallToolResult, addTaskOutput, error) {
		todo, err := s.todos.Create(ctx, args.UserID, services.CreateTodoParams{
			Title:       args.Title,
			Description: args.Description,
		})
		if err != nil {
			return s.toolError("failed to add task", err), addTaskOutput{}, nil
		}

		return textResult(fmt.Sprintf("Successfully added task: %s", todo.Title)), addTaskOutput{
			TaskID: todo.ID,
			Title:  todo.Title,
		}, nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "list_tasks",
		Description: "List all tasks for a user",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args listTasksInput) (*mcp.CallToolResult, listTasksOutput, error) {
		todos, err := s.todos.List(ctx, args.UserID, services.ListTodosFilter{
			Completed: args.Completed,
		})
		if err != nil {
			return s.toolError("failed to list tasks", err), listTasksOutput{}, nil
		}

		return textResult(formatTaskList(todos)), listTasksOutput{TaskCount: len(todos)}, nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "update_task",
		Description: "Update an existing task",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args updateTaskInput) (*mcp.CallToolResult, taskStateOutput, error) {
		todo, err := s.todos.Update(ctx, args.TaskID, args.UserID, services.UpdateTodoParams{
			Title:       args.Title,
			Description: args.Description,
			Completed:   args.Completed,
		})
		if err != nil {
			return s.toolError("failed to update task", err), taskStateOutput{}, nil
		}

		return textResult(fmt.Sprintf("Successfully updated task: %s", todo.Title)), taskStateOutput{
			TaskID:    todo.ID,
			Title:     todo.Title,
			Completed: todo.Completed,
		}, nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "complete_task",
		Description: "Mark a task as complete",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args taskRefInput) (*mcp.CallToolResult, taskStateOutput, error) {
		todo, err := s.todos.ToggleCompletion(ctx, args.TaskID, args.UserID)
		if err != nil {
			return s.toolError("failed to complete task", err), taskStateOutput{}, nil
		}

		status := "complete"
		if !todo.Completed {
			status = "pending"
		}
		return textResult(fmt.Sprintf("Successfully marked task as %s: %s", status, todo.Title)), taskStateOutput{
			TaskID:    todo.ID,
			Title:     todo.Title,
			Completed: todo.Completed,
		}, nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "delete_task",
		Description: "Delete a task from the user's todo list",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args taskRefInput) (*mcp.CallToolResult, deleteTaskOutput, error) {
		err := s.todos.Delete(ctx, args.TaskID, args.UserID)
		if err != nil {
			return s.toolError("failed to delete task", err), deleteTaskOutput{}, nil
		}

		return textResult("Successfully deleted the task."), deleteTaskOutput{Deleted: true}, nil
	})
}

// toolError reports failures inside the result instead of failing the
// protocol call; a missing task must not crash the assistant session.
func (s *Server) toolError(msg string, err error) *mcp.CallToolResult {
	switch {
	case errors.Is(err, services.ErrTodoNotFound):
		msg = "Task not found or you don't have permission to access it."
	case errors.Is(err, services.ErrValidation):
		msg = fmt.Sprintf("%s: %s", msg, err.Error())
	default:
		s.logger.Error().
			Err(err).
			Msg(msg)
		msg = fmt.Sprintf("%s: %s", msg, err.Error())
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: msg}},
		IsError: true,
	}
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

func formatTaskList(todos []models.Todo) string {
	if len(todos) == 0 {
		return "No tasks found for this user."
	}

	var b strings.Builder
	b.WriteString("Your tasks:")
	for i := range todos {
		todo := &todos[i]
		status := "○"
		if todo.Completed {
			status = "✓"
		}
		b.WriteString(fmt.Sprintf("\n- %s [%s] %s", status, todo.ID, todo.Title))
		if todo.Description != "" {
			b.WriteString(" - " + todo.Description)
		}
	}
	return b.String()
}
