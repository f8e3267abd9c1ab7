package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jkusa/portal/internal/pkg/apperrors"
	"github.com/jkusa/portal/internal/pkg/dberrors"
	"github.com/jkusa/portal/internal/pkg/logger"
)

// RefreshTokenRepository handles refresh token database operations
type RefreshTokenRepository struct {
	db DB
	sb squirrel.StatementBuilderType
}

// NewRefreshTokenRepository creates a new RefreshTokenRepository
func NewRefreshTokenRepository(db DB) *RefreshTokenRepository {
	return &RefreshTokenRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create persists a new refresh token for a student
func (r *RefreshTokenRepository) Create(ctx context.Context, token string, studentID int64, expiryDate time.Time) error {
	sql, args, err := r.sb.Insert("refresh_tokens").
		Columns("token", "student_id", "expiry_date", "is_revoked", "created_at").
		Values(token, studentID, expiryDate, false, time.Now()).
		ToSql()

	if err != nil {
		logger.Error().Err(err).Msg("Error building create refresh token SQL")
		return fmt.Errorf("failed to build create refresh token query: %w", err)
	}

	_, err = r.db.Exec(ctx, sql, args...)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "refresh_tokens_pkey") {
			logger.Warn().Int64("studentID", studentID).Msg("Attempted to create duplicate refresh token")
			return apperrors.ErrTokenInvalid
		}
		logger.Error().Err(err).Int64("studentID", studentID).Msg("Error executing create refresh token query")
		return fmt.Errorf("error creating refresh token: %w", err)
	}

	return nil
}

// GetByValue retrieves an active refresh token. Revoked and expired tokens
// surface as sentinel errors so the service layer can map them to responses.
func (r *RefreshTokenRepository) GetByValue(ctx context.Context, token string) (int64, time.Time, error) {
	var studentID int64
	var expiryDate time.Time
	var isRevoked bool

	sql, args, err := r.sb.Select("student_id", "expiry_date", "is_revoked").
		From("refresh_tokens").
		Where(squirrel.Eq{"token": token}).
		Limit(1).
		ToSql()

	if err != nil {
		logger.Error().Err(err).Msg("Error building get refresh token SQL")
		return 0, time.Time{}, fmt.Errorf("failed to build get refresh token query: %w", err)
	}

	err = r.db.QueryRow(ctx, sql, args...).Scan(&studentID, &expiryDate, &isRevoked)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, time.Time{}, apperrors.ErrTokenNotFound
		}
		logger.Error().Err(err).Msg("Error scanning refresh token row")
		return 0, time.Time{}, fmt.Errorf("error retrieving refresh token: %w", err)
	}

	if isRevoked {
		return 0, time.Time{}, apperrors.ErrTokenRevoked
	}

	if expiryDate.Before(time.Now()) {
		return 0, time.Time{}, apperrors.ErrTokenExpired
	}

	return studentID, expiryDate, nil
}

// Revoke marks a single refresh token as revoked
func (r *RefreshTokenRepository) Revoke(ctx context.Context, token string) error {
	sql, args, err := r.sb.Update("refresh_tokens").
		Set("is_revoked", true).
		Where(squirrel.Eq{"token": token}).
		ToSql()

	if err != nil {
		logger.Error().Err(err).Msg("Error building revoke refresh token SQL")
		return fmt.Errorf("failed to build revoke refresh token query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing revoke refresh token query")
		return fmt.Errorf("error revoking refresh token: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrTokenNotFound
	}

	return nil
}

// RevokeAllForStudent revokes every active refresh token a student holds.
// Used on password change and on account deactivation.
func (r *RefreshTokenRepository) RevokeAllForStudent(ctx context.Context, studentID int64) error {
	sql, args, err := r.sb.Update("refresh_tokens").
		Set("is_revoked", true).
		Where(squirrel.Eq{"student_id": studentID, "is_revoked": false}).
		ToSql()

	if err != nil {
		logger.Error().Err(err).Msg("Error building revoke all refresh tokens SQL")
		return fmt.Errorf("failed to build revoke all refresh tokens query: %w", err)
	}

	if _, err = r.db.Exec(ctx, sql, args...); err != nil {
		logger.Error().Err(err).Int64("studentID", studentID).Msg("Error revoking refresh tokens for student")
		return fmt.Errorf("error revoking refresh tokens: %w", err)
	}

	return nil
}

// CleanupExpired deletes refresh tokens whose expiry has passed
func (r *RefreshTokenRepository) CleanupExpired(ctx context.Context) (int64, error) {
	sql, args, err := r.sb.Delete("refresh_tokens").
		Where(squirrel.Lt{"expiry_date": time.Now()}).
		ToSql()

	if err != nil {
		return 0, fmt.Errorf("failed to build cleanup query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("error cleaning up expired refresh tokens: %w", err)
	}

	return cmdTag.RowsAffected(), nil
}
