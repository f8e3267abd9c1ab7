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

// VerificationTokenRepository handles email verification token operations
type VerificationTokenRepository struct {
	db DB
	sb squirrel.StatementBuilderType
}

// NewVerificationTokenRepository creates a new VerificationTokenRepository
func NewVerificationTokenRepository(db DB) *VerificationTokenRepository {
	return &VerificationTokenRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create stores a new verification token for a student
func (r *VerificationTokenRepository) Create(ctx context.Context, token string, studentID int64, expiryDate time.Time) error {
	sql, args, err := r.sb.Insert("email_verification_tokens").
		Columns("token", "student_id", "expiry_date", "used", "created_at").
		Values(token, studentID, expiryDate, false, time.Now()).
		ToSql()

	if err != nil {
		logger.Error().Err(err).Msg("Error building create verification token SQL")
		return fmt.Errorf("failed to build create verification token query: %w", err)
	}

	if _, err = r.db.Exec(ctx, sql, args...); err != nil {
		logger.Error().Err(err).Int64("studentID", studentID).Msg("Error creating verification token")
		return fmt.Errorf("error creating verification token: %w", err)
	}

	return nil
}

// Consume marks a verification token as used and returns the owning student
// ID. The token is consumed in a single conditional UPDATE so two concurrent
// requests with the same token cannot both succeed; the losing request gets a
// sentinel error describing why the token was unusable.
func (r *VerificationTokenRepository) Consume(ctx context.Context, token string) (int64, error) {
	var studentID int64
	err := r.db.QueryRow(ctx, `
		UPDATE email_verification_tokens
		SET used = true
		WHERE token = $1 AND used = false AND expiry_date > NOW()
		RETURNING student_id`,
		token).Scan(&studentID)

	if err == nil {
		return studentID, nil
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		logger.Error().Err(err).Msg("Error consuming verification token")
		return 0, fmt.Errorf("error consuming verification token: %w", err)
	}

	return 0, r.classifyUnusable(ctx, token)
}

// classifyUnusable explains why a token failed to consume
func (r *VerificationTokenRepository) classifyUnusable(ctx context.Context, token string) error {
	var used bool
	var expiryDate time.Time

	err := r.db.QueryRow(ctx, `
		SELECT used, expiry_date FROM email_verification_tokens WHERE token = $1`,
		token).Scan(&used, &expiryDate)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrTokenNotFound
		}
		return fmt.Errorf("error inspecting verification token: %w", err)
	}

	if used {
		return apperrors.ErrTokenUsed
	}
	if expiryDate.Before(time.Now()) {
		return apperrors.ErrTokenExpired
	}

	// Consume lost a race it should have won; treat as already used.
	return apperrors.ErrTokenUsed
}

// InvalidateForStudent marks all outstanding tokens for a student as used.
// Called before issuing a replacement so only the latest token works.
func (r *VerificationTokenRepository) InvalidateForStudent(ctx context.Context, studentID int64) error {
	sql, args, err := r.sb.Update("email_verification_tokens").
		Set("used", true).
		Where(squirrel.Eq{"student_id": studentID, "used": false}).
		ToSql()

	if err != nil {
		return fmt.Errorf("failed to build invalidate verification tokens query: %w", err)
	}

	if _, err = r.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("error invalidating verification tokens: %w", err)
	}

	return nil
}

// DeleteExpired removes verification tokens past their expiry
func (r *VerificationTokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	sql, args, err := r.sb.Delete("email_verification_tokens").
		Where(squirrel.Lt{"expiry_date": time.Now()}).
		ToSql()

	if err != nil {
		return 0, fmt.Errorf("failed to build delete expired tokens query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("error deleting expired verification tokens: %w", err)
	}

	return cmdTag.RowsAffected(), nil
}
