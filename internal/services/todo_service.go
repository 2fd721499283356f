package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mlevkov/go-todo-backend/internal/models"
	"github.com/mlevkov/go-todo-backend/internal/storage"
)

const defaultListLimit = 100

type todoServiceImpl struct {
	logger  zerolog.Logger
	gateway *storage.Gateway
}

func NewTodoService(
	logger zerolog.Logger,
	gateway *storage.Gateway,
) TodoService {
	return &todoServiceImpl{
		logger:  logger,
		gateway: gateway,
	}
}

func validateTitle(title string) error {
	n := utf8.RuneCountInString(title)
	if n < 1 || n > models.TitleMaxLen {
		return fmt.Errorf("%w: title must be between 1 and %d characters",
			ErrValidation, models.TitleMaxLen)
	}
	return nil
}

func validateDescription(description string) error {
	if utf8.RuneCountInString(description) > models.DescriptionMaxLen {
		return fmt.Errorf("%w: description must be at most %d characters",
			ErrValidation, models.DescriptionMaxLen)
	}
	return nil
}

// nullable maps an empty string to NULL so an absent description is
// stored and returned as null, not "".
func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func (s *todoServiceImpl) Create(ctx context.Context, userID string, params CreateTodoParams) (*models.Todo, error) {
	if err := validateTitle(params.Title); err != nil {
		return nil, err
	}
	if err := validateDescription(params.Description); err != nil {
		return nil, err
	}

	todoUUID, err := uuid.NewV7()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to generate todo uuid")
		return nil, err
	}

	now := time.Now().UTC()
	todo := models.Todo{
		ID:          todoUUID.String(),
		UserID:      userID,
		Title:       params.Title,
		Description: params.Description,
		Completed:   false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	const insertTodoQuery = `
INSERT INTO todos (id,
                   user_id,
                   title,
                   description,
                   completed,
                   created_at,
                   updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
`
	_, err = s.gateway.Querier().ExecContext(
		ctx,
		insertTodoQuery,
		todo.ID,
		todo.UserID,
		todo.Title,
		nullable(todo.Description),
		todo.Completed,
		todo.CreatedAt,
		todo.UpdatedAt,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to insert todo")
		return nil, err
	}

	s.logger.Info().
		Str("todo_id", todo.ID).
		Str("user_id", todo.UserID).
		Msg("created todo")
	return &todo, nil
}

func (s *todoServiceImpl) List(ctx context.Context, userID string, filter ListTodosFilter) ([]models.Todo, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	var b strings.Builder
	b.WriteString(`
SELECT id, user_id, title, description, completed, created_at, updated_at
FROM todos
WHERE user_id = $1`)
	args := []any{userID}

	if filter.Completed != nil {
		args = append(args, *filter.Completed)
		fmt.Fprintf(&b, " AND completed = $%d", len(args))
	}

	args = append(args, limit)
	fmt.Fprintf(&b, "\nORDER BY created_at, id\nLIMIT $%d", len(args))
	args = append(args, offset)
	fmt.Fprintf(&b, " OFFSET $%d", len(args))

	rows, err := s.gateway.Querier().QueryContext(ctx, b.String(), args...)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to select todos")
		return nil, err
	}
	defer rows.Close()

	todos := make([]models.Todo, 0)
	for rows.Next() {
		var (
			todo        models.Todo
			description sql.NullString
		)
		err = rows.Scan(
			&todo.ID,
			&todo.UserID,
			&todo.Title,
			&description,
			&todo.Completed,
			&todo.CreatedAt,
			&todo.UpdatedAt,
		)
		if err != nil {
			s.logger.Error().
				Err(err).
				Msg("failed to scan todo")
			return nil, err
		}
		todo.Description = description.String
		todos = append(todos, todo)
	}

	err = rows.Err()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to iterate over rows")
		return nil, err
	}

	s.logger.Debug().
		Str("user_id", userID).
		Int("count", len(todos)).
		Msg("selected todos")
	return todos, nil
}

// selectTodoQuery is shared by Get and the read half of Update.
const selectTodoQuery = `
SELECT id, user_id, title, description, completed, created_at, updated_at
FROM todos
WHERE id = $1 AND user_id = $2
`

func scanTodo(row *sql.Row) (*models.Todo, error) {
	var (
		todo        models.Todo
		description sql.NullString
	)
	err := row.Scan(
		&todo.ID,
		&todo.UserID,
		&todo.Title,
		&description,
		&todo.Completed,
		&todo.CreatedAt,
		&todo.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	todo.Description = description.String
	return &todo, nil
}

func (s *todoServiceImpl) Get(ctx context.Context, todoID, userID string) (*models.Todo, error) {
	todo, err := scanTodo(s.gateway.Querier().QueryRowContext(ctx, selectTodoQuery, todoID, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTodoNotFound
		}

		s.logger.Error().
			Err(err).
			Msg("failed to select todo")
		return nil, err
	}
	return todo, nil
}

func (s *todoServiceImpl) Update(ctx context.Context, todoID, userID string, params UpdateTodoParams) (*models.Todo, error) {
	if params.Title != nil {
		if err := validateTitle(*params.Title); err != nil {
			return nil, err
		}
	}
	if params.Description != nil {
		if err := validateDescription(*params.Description); err != nil {
			return nil, err
		}
	}

	var todo *models.Todo
	err := s.gateway.WithinTx(ctx, func(q storage.Querier) error {
		var err error
		todo, err = scanTodo(q.QueryRowContext(ctx, selectTodoQuery, todoID, userID))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrTodoNotFound
			}
			s.logger.Error().
				Err(err).
				Msg("failed to select todo")
			return err
		}

		if params.Title != nil {
			todo.Title = *params.Title
		}
		if params.Description != nil {
			todo.Description = *params.Description
		}
		if params.Completed != nil {
			todo.Completed = *params.Completed
		}
		todo.UpdatedAt = time.Now().UTC()

		const updateTodoQuery = `
UPDATE todos
SET title = $1,
    description = $2,
    completed = $3,
    updated_at = $4
WHERE id = $5 AND user_id = $6
`
		_, err = q.ExecContext(
			ctx,
			updateTodoQuery,
			todo.Title,
			nullable(todo.Description),
			todo.Completed,
			todo.UpdatedAt,
			todo.ID,
			todo.UserID,
		)
		if err != nil {
			s.logger.Error().
				Err(err).
				Msg("failed to update todo")
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("todo_id", todo.ID).
		Msg("updated todo")
	return todo, nil
}

func (s *todoServiceImpl) Delete(ctx context.Context, todoID, userID string) error {
	const deleteTodoQuery = `
DELETE FROM todos
WHERE id = $1 AND user_id = $2
`
	result, err := s.gateway.Querier().ExecContext(ctx, deleteTodoQuery, todoID, userID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to delete todo")
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to read affected rows")
		return err
	}
	if affected == 0 {
		return ErrTodoNotFound
	}

	s.logger.Info().
		Str("todo_id", todoID).
		Msg("deleted todo")
	return nil
}

func (s *todoServiceImpl) ToggleCompletion(ctx context.Context, todoID, userID string) (*models.Todo, error) {
	var todo *models.Todo
	err := s.gateway.WithinTx(ctx, func(q storage.Querier) error {
		var err error
		todo, err = scanTodo(q.QueryRowContext(ctx, selectTodoQuery, todoID, userID))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrTodoNotFound
			}
			s.logger.Error().
				Err(err).
				Msg("failed to select todo")
			return err
		}

		todo.Completed = !todo.Completed
		todo.UpdatedAt = time.Now().UTC()

		const toggleTodoQuery = `
UPDATE todos
SET completed = $1,
    updated_at = $2
WHERE id = $3 AND user_id = $4
`
		_, err = q.ExecContext(
			ctx,
			toggleTodoQuery,
			todo.Completed,
			todo.UpdatedAt,
			todo.ID,
			todo.UserID,
		)
		if err != nil {
			s.logger.Error().
				Err(err).
				Msg("failed to toggle todo")
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("todo_id", todo.ID).
		Bool("completed", todo.Completed).
		Msg("toggled todo completion")
	return todo, nil
}
