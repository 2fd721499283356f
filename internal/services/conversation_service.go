package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mlevkov/go-todo-backend/internal/models"
	"github.com/mlevkov/go-todo-backend/internal/storage"
)

type conversationServiceImpl struct {
	logger  zerolog.Logger
	gateway *storage.Gateway
}

func NewConversationService(
	logger zerolog.Logger,
	gateway *storage.Gateway,
) ConversationService {
	return &conversationServiceImpl{
		logger:  logger,
		gateway: gateway,
	}
}

func (s *conversationServiceImpl) CreateConversation(ctx context.Context, userID string) (*models.Conversation, error) {
	conversationUUID, err := uuid.NewV7()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to generate conversation uuid")
		return nil, err
	}

	now := time.Now().UTC()
	conversation := models.Conversation{
		ID:        conversationUUID.String(),
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	const insertConversationQuery = `
INSERT INTO conversations (id,
                           user_id,
                           created_at,
                           updated_at)
VALUES ($1, $2, $3, $4)
`
	_, err = s.gateway.Querier().ExecContext(
		ctx,
		insertConversationQuery,
		conversation.ID,
		conversation.UserID,
		conversation.CreatedAt,
		conversation.UpdatedAt,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to insert conversation")
		return nil, err
	}

	s.logger.Info().
		Str("conversation_id", conversation.ID).
		Str("user_id", conversation.UserID).
		Msg("created conversation")
	return &conversation, nil
}

func validateMessage(params AppendMessageParams) error {
	if params.Role != models.RoleUser && params.Role != models.RoleAssistant {
		return fmt.Errorf("%w: role must be %q or %q",
			ErrValidation, models.RoleUser, models.RoleAssistant)
	}
	n := utf8.RuneCountInString(params.Content)
	if n < 1 || n > models.MessageContentMaxLen {
		return fmt.Errorf("%w: content must be between 1 and %d characters",
			ErrValidation, models.MessageContentMaxLen)
	}
	return nil
}

func (s *conversationServiceImpl) AppendMessage(ctx context.Context, conversationID, userID string, params AppendMessageParams) (*models.Message, error) {
	if err := validateMessage(params); err != nil {
		return nil, err
	}

	messageUUID, err := uuid.NewV7()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to generate message uuid")
		return nil, err
	}

	message := models.Message{
		ID:             messageUUID.String(),
		ConversationID: conversationID,
		TodoID:         params.TodoID,
		Role:           params.Role,
		Content:        params.Content,
		CreatedAt:      time.Now().UTC(),
	}

	err = s.gateway.WithinTx(ctx, func(q storage.Querier) error {
		// The conversation lookup is the ownership check; a
		// conversation id alone never authorizes the append.
		const selectConversationQuery = `
SELECT id FROM conversations
WHERE id = $1 AND user_id = $2
`
		var id string
		err := q.QueryRowContext(ctx, selectConversationQuery, conversationID, userID).Scan(&id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrConversationNotFound
			}
			s.logger.Error().
				Err(err).
				Msg("failed to select conversation")
			return err
		}

		if message.TodoID != "" {
			const selectTodoOwnerQuery = `
SELECT id FROM todos
WHERE id = $1 AND user_id = $2
`
			err = q.QueryRowContext(ctx, selectTodoOwnerQuery, message.TodoID, userID).Scan(&id)
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return ErrTodoNotFound
				}
				s.logger.Error().
					Err(err).
					Msg("failed to select referenced todo")
				return err
			}
		}

		const insertMessageQuery = `
INSERT INTO messages (id,
                      conversation_id,
                      todo_id,
                      role,
                      content,
                      created_at)
VALUES ($1, $2, $3, $4, $5, $6)
`
		_, err = q.ExecContext(
			ctx,
			insertMessageQuery,
			message.ID,
			message.ConversationID,
			nullable(message.TodoID),
			message.Role,
			message.Content,
			message.CreatedAt,
		)
		if err != nil {
			s.logger.Error().
				Err(err).
				Msg("failed to insert message")
			return err
		}

		const touchConversationQuery = `
UPDATE conversations
SET updated_at = $1
WHERE id = $2
`
		_, err = q.ExecContext(ctx, touchConversationQuery, message.CreatedAt, conversationID)
		if err != nil {
			s.logger.Error().
				Err(err).
				Msg("failed to touch conversation")
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug().
		Str("conversation_id", conversationID).
		Str("role", message.Role).
		Msg("appended message")
	return &message, nil
}

func (s *conversationServiceImpl) ListMessages(ctx context.Context, conversationID, userID string) ([]models.Message, error) {
	const selectMessagesQuery = `
SELECT m.id, m.conversation_id, m.todo_id, m.role, m.content, m.created_at
FROM messages m
JOIN conversations c ON c.id = m.conversation_id
WHERE m.conversation_id = $1 AND c.user_id = $2
ORDER BY m.created_at, m.id
`
	rows, err := s.gateway.Querier().QueryContext(ctx, selectMessagesQuery, conversationID, userID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to select messages")
		return nil, err
	}
	defer rows.Close()

	messages := make([]models.Message, 0)
	for rows.Next() {
		var (
			message models.Message
			todoID  sql.NullString
		)
		err = rows.Scan(
			&message.ID,
			&message.ConversationID,
			&todoID,
			&message.Role,
			&message.Content,
			&message.CreatedAt,
		)
		if err != nil {
			s.logger.Error().
				Err(err).
				Msg("failed to scan message")
			return nil, err
		}
		message.TodoID = todoID.String
		messages = append(messages, message)
	}

	err = rows.Err()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to iterate over rows")
		return nil, err
	}
	return messages, nil
}
