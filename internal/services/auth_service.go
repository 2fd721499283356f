package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mlevkov/go-todo-backend/internal/auth"
	"github.com/mlevkov/go-todo-backend/internal/models"
	"github.com/mlevkov/go-todo-backend/internal/storage"
)

type authServiceImpl struct {
	logger  zerolog.Logger
	gateway *storage.Gateway
	tokens  *auth.TokenIssuer
}

func NewAuthService(
	logger zerolog.Logger,
	gateway *storage.Gateway,
	tokens *auth.TokenIssuer,
) AuthService {
	return &authServiceImpl{
		logger:  logger,
		gateway: gateway,
		tokens:  tokens,
	}
}

func (s *authServiceImpl) Register(ctx context.Context, email, password string) (*models.User, error) {
	now := time.Now().UTC()
	user := models.User{
		Email:     email,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	userUUID, err := uuid.NewV7()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to generate user uuid")
		return nil, err
	}
	user.ID = userUUID.String()

	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to hash password")
		return nil, err
	}
	user.PasswordHash = passwordHash

	const insertUserQuery = `
INSERT INTO users (id,
                   email,
                   password_hash,
                   is_active,
                   created_at,
                   updated_at)
VALUES ($1, $2, $3, $4, $5, $6)
`
	_, err = s.gateway.Querier().ExecContext(
		ctx,
		insertUserQuery,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.IsActive,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if storage.IsUniqueViolation(err) {
			s.logger.Warn().
				Str("email", user.Email).
				Msg("user with this email already exists")
			return nil, ErrUserAlreadyExists
		}

		s.logger.Error().
			Err(err).
			Msg("failed to insert user")
		return nil, err
	}

	s.logger.Info().
		Str("user_id", user.ID).
		Str("email", user.Email).
		Msg("registered user")
	return &user, nil
}

func (s *authServiceImpl) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user := models.User{Email: email}

	const selectUserByEmailQuery = `
SELECT id,
       password_hash,
       is_active,
       created_at,
       updated_at
FROM users
WHERE email = $1
`
	err := s.gateway.Querier().QueryRowContext(
		ctx,
		selectUserByEmailQuery,
		user.Email,
	).Scan(
		&user.ID,
		&user.PasswordHash,
		&user.IsActive,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.Warn().
				Str("email", user.Email).
				Msg("user not found")
			return nil, ErrInvalidCredentials
		}

		s.logger.Error().
			Err(err).
			Msg("failed to select user by email")
		return nil, err
	}

	match, err := auth.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to compare password")
		return nil, err
	} else if !match {
		s.logger.Warn().
			Str("user_id", user.ID).
			Msg("password mismatch")
		return nil, ErrInvalidCredentials
	}

	accessToken, expiresAt, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to issue access token")
		return nil, err
	}

	s.logger.Info().
		Str("user_id", user.ID).
		Msg("logged in")
	return &LoginResult{
		User:                 &user,
		AccessToken:          accessToken,
		AccessTokenExpiresAt: expiresAt,
	}, nil
}
