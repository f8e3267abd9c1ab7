package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB is the subset of pgxpool.Pool the repositories use. Tests substitute a
// pgxmock pool through the same interface.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repositories holds all the repository instances
type Repositories struct {
	StudentRepository            *StudentRepository
	VerificationTokenRepository  *VerificationTokenRepository
	PasswordResetTokenRepository *PasswordResetTokenRepository
	RefreshTokenRepository       *RefreshTokenRepository
	RateLimitRepository          *RateLimitRepository
	CollegeRepository            *CollegeRepository
}

// NewRepositories initializes all repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		StudentRepository:            NewStudentRepository(db),
		VerificationTokenRepository:  NewVerificationTokenRepository(db),
		PasswordResetTokenRepository: NewPasswordResetTokenRepository(db),
		RefreshTokenRepository:       NewRefreshTokenRepository(db),
		RateLimitRepository:          NewRateLimitRepository(db),
		CollegeRepository:            NewCollegeRepository(db),
	}
}
