package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/contactkeeper/contacts_backend/internal/apperrors"
	"github.com/contactkeeper/contacts_backend/internal/core/domain"
	portsrepo "github.com/contactkeeper/contacts_backend/internal/core/ports/repositories"
	"github.com/contactkeeper/contacts_backend/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolationCode = "23505"

type PgxUserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) portsrepo.UserRepository {
	return &PgxUserRepository{db: db}
}

// Ensure PgxUserRepository implements portsrepo.UserRepository
var _ portsrepo.UserRepository = (*PgxUserRepository)(nil)

// Helper to convert domain.User to models.User
func toModelUser(d domain.User) models.User {
	m := models.User{
		UserID:       d.UserID,
		Username:     d.Username,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		Confirmed:    d.Confirmed,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
	if d.Avatar != nil {
		m.Avatar.String = *d.Avatar
		m.Avatar.Valid = true
	}
	if d.RefreshToken != nil {
		m.RefreshToken.String = *d.RefreshToken
		m.RefreshToken.Valid = true
	}
	return m
}

// Helper to convert models.User to domain.User
func toDomainUser(m models.User) domain.User {
	d := domain.User{
		UserID:       m.UserID,
		Username:     m.Username,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		Confirmed:    m.Confirmed,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
	if m.Avatar.Valid {
		avatar := m.Avatar.String
		d.Avatar = &avatar
	}
	if m.RefreshToken.Valid {
		token := m.RefreshToken.String
		d.RefreshToken = &token
	}
	return d
}

func (r *PgxUserRepository) SaveUser(ctx context.Context, user domain.User) error {
	modelUser := toModelUser(user)
	query := `
        INSERT INTO users (user_id, username, email, password, confirmed, avatar, refresh_token, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
    `
	_, err := r.db.Exec(ctx, query,
		modelUser.UserID,
		modelUser.Username,
		modelUser.Email,
		modelUser.PasswordHash,
		modelUser.Confirmed,
		modelUser.Avatar,
		modelUser.RefreshToken,
		modelUser.CreatedAt,
		modelUser.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return apperrors.ErrDuplicate
		}
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}

func (r *PgxUserRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `
		SELECT user_id, username, email, password, confirmed, avatar, refresh_token, created_at, updated_at
		FROM users
		WHERE email = $1;
	`
	var modelUser models.User
	err := r.db.QueryRow(ctx, query, email).Scan(
		&modelUser.UserID,
		&modelUser.Username,
		&modelUser.Email,
		&modelUser.PasswordHash,
		&modelUser.Confirmed,
		&modelUser.Avatar,
		&modelUser.RefreshToken,
		&modelUser.CreatedAt,
		&modelUser.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}

	domainUser := toDomainUser(modelUser)
	return &domainUser, nil
}

func (r *PgxUserRepository) ConfirmEmail(ctx context.Context, email string) error {
	query := `UPDATE users SET confirmed = TRUE, updated_at = $2 WHERE email = $1;`
	tag, err := r.db.Exec(ctx, query, email, time.Now())
	if err != nil {
		return fmt.Errorf("failed to confirm email: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxUserRepository) UpdateAvatarURL(ctx context.Context, email string, url string) (*domain.User, error) {
	query := `
		UPDATE users SET avatar = $2, updated_at = $3
		WHERE email = $1
		RETURNING user_id, username, email, password, confirmed, avatar, refresh_token, created_at, updated_at;
	`
	var modelUser models.User
	err := r.db.QueryRow(ctx, query, email, url, time.Now()).Scan(
		&modelUser.UserID,
		&modelUser.Username,
		&modelUser.Email,
		&modelUser.PasswordHash,
		&modelUser.Confirmed,
		&modelUser.Avatar,
		&modelUser.RefreshToken,
		&modelUser.CreatedAt,
		&modelUser.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update avatar URL: %w", err)
	}

	domainUser := toDomainUser(modelUser)
	return &domainUser, nil
}

func (r *PgxUserRepository) SetRefreshToken(ctx context.Context, userID string, token string) error {
	query := `UPDATE users SET refresh_token = $2, updated_at = $3 WHERE user_id = $1;`
	tag, err := r.db.Exec(ctx, query, userID, token, time.Now())
	if err != nil {
		return fmt.Errorf("failed to set refresh token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// RotateRefreshToken is a compare-and-swap: the UPDATE only matches when the
// stored slot still equals oldToken. Zero rows affected means a concurrent
// rotation (or revocation) won the race.
func (r *PgxUserRepository) RotateRefreshToken(ctx context.Context, userID string, oldToken string, newToken string) error {
	query := `
		UPDATE users SET refresh_token = $3, updated_at = $4
		WHERE user_id = $1 AND refresh_token = $2;
	`
	tag, err := r.db.Exec(ctx, query, userID, oldToken, newToken, time.Now())
	if err != nil {
		return fmt.Errorf("failed to rotate refresh token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrInvalidToken
	}
	return nil
}

func (r *PgxUserRepository) ClearRefreshToken(ctx context.Context, userID string) error {
	query := `UPDATE users SET refresh_token = NULL, updated_at = $2 WHERE user_id = $1;`
	_, err := r.db.Exec(ctx, query, userID, time.Now())
	if err != nil {
		return fmt.Errorf("failed to clear refresh token: %w", err)
	}
	return nil
}
