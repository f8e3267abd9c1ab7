package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jkusa/portal/internal/pkg/apperrors"
	"github.com/jkusa/portal/internal/pkg/logger"
)

// PasswordResetTokenRepository handles password reset token operations
type PasswordResetTokenRepository struct {
	db DB
	sb squirrel.StatementBuilderType
}

// NewPasswordResetTokenRepository creates a new PasswordResetTokenRepository
func NewPasswordResetTokenRepository(db DB) *PasswordResetTokenRepository {
	return &PasswordResetTokenRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create stores a new password reset token for a student
func (r *PasswordResetTokenRepository) Create(ctx context.Context, token string, studentID int64, expiryDate time.Time) error {
	sql, args, err := r.sb.Insert("password_reset_tokens").
		Columns("token", "student_id", "expiry_date", "used", "created_at").
		Values(token, studentID, expiryDate, false, time.Now()).
		ToSql()

	if err != nil {
		logger.Error().Err(err).Msg("Error building create reset token SQL")
		return fmt.Errorf("failed to build create reset token query: %w", err)
	}

	if _, err = r.db.Exec(ctx, sql, args...); err != nil {
		logger.Error().Err(err).Int64("studentID", studentID).Msg("Error creating reset token")
		return fmt.Errorf("error creating reset token: %w", err)
	}

	return nil
}

// Consume marks a reset token as used and returns the owning student ID.
// Single-use is enforced by the conditional UPDATE itself, so a token can
// never authorize two password resets.
func (r *PasswordResetTokenRepository) Consume(ctx context.Context, token string) (int64, error) {
	var studentID int64
	err := r.db.QueryRow(ctx, `
		UPDATE password_reset_tokens
		SET used = true
		WHERE token = $1 AND used = false AND expiry_date > NOW()
		RETURNING student_id`,
		token).Scan(&studentID)

	if err == nil {
		return studentID, nil
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		logger.Error().Err(err).Msg("Error consuming reset token")
		return 0, fmt.Errorf("error consuming reset token: %w", err)
	}

	return 0, r.classifyUnusable(ctx, token)
}

func (r *PasswordResetTokenRepository) classifyUnusable(ctx context.Context, token string) error {
	var used bool
	var expiryDate time.Time

	err := r.db.QueryRow(ctx, `
		SELECT used, expiry_date FROM password_reset_tokens WHERE token = $1`,
		token).Scan(&used, &expiryDate)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrTokenNotFound
		}
		return fmt.Errorf("error inspecting reset token: %w", err)
	}

	if used {
		return apperrors.ErrTokenUsed
	}
	if expiryDate.Before(time.Now()) {
		return apperrors.ErrTokenExpired
	}

	return apperrors.ErrTokenUsed
}

// InvalidateForStudent marks all outstanding reset tokens for a student as
// used so only the most recently issued token works.
func (r *PasswordResetTokenRepository) InvalidateForStudent(ctx context.Context, studentID int64) error {
	sql, args, err := r.sb.Update("password_reset_tokens").
		Set("used", true).
		Where(squirrel.Eq{"student_id": studentID, "used": false}).
		ToSql()

	if err != nil {
		return fmt.Errorf("failed to build invalidate reset tokens query: %w", err)
	}

	if _, err = r.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("error invalidating reset tokens: %w", err)
	}

	return nil
}

// DeleteExpired removes reset tokens past their expiry
func (r *PasswordResetTokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	sql, args, err := r.sb.Delete("password_reset_tokens").
		Where(squirrel.Lt{"expiry_date": time.Now()}).
		ToSql()

	if err != nil {
		return 0, fmt.Errorf("failed to build delete expired reset tokens query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("error deleting expired reset tokens: %w", err)
	}

	return cmdTag.RowsAffected(), nil
}
