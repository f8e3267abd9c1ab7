package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jkusa/portal/internal/app/models"
	"github.com/jkusa/portal/internal/pkg/apperrors"
	"github.com/jkusa/portal/internal/pkg/dberrors"
)

const studentColumns = `id, first_name, last_name, email, phone_number, registration_number,
		college_id, school_id, course, year_of_study, hashed_password, is_verified,
		email_verified_at, failed_login_count, locked_until, is_active, last_login_at,
		password_changed_at, created_at, updated_at`

// StudentRepository handles student account database operations
type StudentRepository struct {
	db DB
}

// NewStudentRepository creates a new StudentRepository
func NewStudentRepository(db DB) *StudentRepository {
	return &StudentRepository{
		db: db,
	}
}

func scanStudent(row pgx.Row) (*models.Student, error) {
	student := &models.Student{}
	err := row.Scan(
		&student.ID, &student.FirstName, &student.LastName, &student.Email,
		&student.PhoneNumber, &student.RegistrationNumber, &student.CollegeID,
		&student.SchoolID, &student.Course, &student.YearOfStudy,
		&student.HashedPassword, &student.IsVerified, &student.EmailVerifiedAt,
		&student.FailedLoginCount, &student.LockedUntil, &student.IsActive,
		&student.LastLoginAt, &student.PasswordChangedAt, &student.CreatedAt,
		&student.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrStudentNotFound
		}
		return nil, fmt.Errorf("error scanning student row: %w", err)
	}
	return student, nil
}

// Create inserts a new student account and returns its ID. Uniqueness of
// email and registration number is enforced by database constraints.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO students (first_name, last_name, email, phone_number, registration_number,
			college_id, school_id, course, year_of_study, hashed_password, is_verified, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id`,
		student.FirstName, student.LastName, student.Email, student.PhoneNumber,
		student.RegistrationNumber, student.CollegeID, student.SchoolID,
		student.Course, student.YearOfStudy, student.HashedPassword,
		student.IsVerified, student.IsActive).Scan(&id)

	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "students_email_key") {
			return 0, apperrors.ErrEmailAlreadyExists
		}
		if dberrors.IsDuplicateConstraintError(err, "students_registration_number_key") {
			return 0, apperrors.ErrRegNumberExists
		}
		return 0, fmt.Errorf("error creating student: %w", err)
	}

	return id, nil
}

// GetByID retrieves a student by ID
func (r *StudentRepository) GetByID(ctx context.Context, id int64) (*models.Student, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+studentColumns+`
		FROM students
		WHERE id = $1`,
		id)
	return scanStudent(row)
}

// GetByEmail retrieves a student by email (case-insensitive)
func (r *StudentRepository) GetByEmail(ctx context.Context, email string) (*models.Student, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+studentColumns+`
		FROM students
		WHERE email = LOWER($1)`,
		email)
	return scanStudent(row)
}

// GetByLoginID resolves a student by email (case-insensitive) or
// registration number.
func (r *StudentRepository) GetByLoginID(ctx context.Context, loginID string) (*models.Student, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+studentColumns+`
		FROM students
		WHERE email = LOWER($1) OR registration_number = UPPER($1)`,
		loginID)
	return scanStudent(row)
}

// EmailExists checks if an email is already registered
func (r *StudentRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM students WHERE email = LOWER($1))`,
		email).Scan(&exists)

	if err != nil {
		return false, fmt.Errorf("error checking email: %w", err)
	}

	return exists, nil
}

// RegNumberExists checks if a registration number is already registered
func (r *StudentRepository) RegNumberExists(ctx context.Context, regNumber string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM students WHERE registration_number = UPPER($1))`,
		regNumber).Scan(&exists)

	if err != nil {
		return false, fmt.Errorf("error checking registration number: %w", err)
	}

	return exists, nil
}

// MarkVerified marks the student's email as verified
func (r *StudentRepository) MarkVerified(ctx context.Context, studentID int64) error {
	cmdTag, err := r.db.Exec(ctx, `
		UPDATE students
		SET is_verified = true, email_verified_at = NOW(), updated_at = NOW()
		WHERE id = $1`,
		studentID)

	if err != nil {
		return fmt.Errorf("error marking student verified: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrStudentNotFound
	}

	return nil
}

// RecordFailedLogin increments the failed-attempt counter and, when the
// incremented counter reaches the threshold, transitions the account into a
// lockout window and resets the counter. The whole step is a single UPDATE so
// concurrent failures for the same account cannot exceed the ceiling.
func (r *StudentRepository) RecordFailedLogin(ctx context.Context, studentID int64, threshold int, lockedUntil time.Time) (int, *time.Time, error) {
	var count int
	var locked *time.Time

	err := r.db.QueryRow(ctx, `
		UPDATE students
		SET failed_login_count = CASE WHEN failed_login_count + 1 >= $2 THEN 0 ELSE failed_login_count + 1 END,
			locked_until = CASE WHEN failed_login_count + 1 >= $2 THEN $3 ELSE locked_until END,
			updated_at = NOW()
		WHERE id = $1
		RETURNING failed_login_count, locked_until`,
		studentID, threshold, lockedUntil).Scan(&count, &locked)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil, apperrors.ErrStudentNotFound
		}
		return 0, nil, fmt.Errorf("error recording failed login: %w", err)
	}

	return count, locked, nil
}

// RecordSuccessfulLogin resets the failed-attempt counter, clears any lock
// and stamps the last login time.
func (r *StudentRepository) RecordSuccessfulLogin(ctx context.Context, studentID int64) error {
	_, err := r.db.Exec(ctx, `
		UPDATE students
		SET failed_login_count = 0, locked_until = NULL, last_login_at = NOW(), updated_at = NOW()
		WHERE id = $1`,
		studentID)

	if err != nil {
		return fmt.Errorf("error recording successful login: %w", err)
	}

	return nil
}

// UpdatePassword replaces the stored password hash
func (r *StudentRepository) UpdatePassword(ctx context.Context, studentID int64, hashedPassword string) error {
	cmdTag, err := r.db.Exec(ctx, `
		UPDATE students
		SET hashed_password = $2, password_changed_at = NOW(), updated_at = NOW()
		WHERE id = $1`,
		studentID, hashedPassword)

	if err != nil {
		return fmt.Errorf("error updating password: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrStudentNotFound
	}

	return nil
}

// Deactivate soft-deactivates a student account. Accounts are never hard-deleted.
func (r *StudentRepository) Deactivate(ctx context.Context, studentID int64) error {
	cmdTag, err := r.db.Exec(ctx, `
		UPDATE students
		SET is_active = false, updated_at = NOW()
		WHERE id = $1`,
		studentID)

	if err != nil {
		return fmt.Errorf("error deactivating student: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrStudentNotFound
	}

	return nil
}
