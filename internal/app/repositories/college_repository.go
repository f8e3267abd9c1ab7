package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jkusa/portal/internal/app/models"
	"github.com/jkusa/portal/internal/pkg/apperrors"
	"github.com/jkusa/portal/internal/pkg/dberrors"
)

// CollegeRepository handles the college and school catalog
type CollegeRepository struct {
	db DB
	sb squirrel.StatementBuilderType
}

// NewCollegeRepository creates a new CollegeRepository
func NewCollegeRepository(db DB) *CollegeRepository {
	return &CollegeRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// GetAllColleges lists every college ordered by name
func (r *CollegeRepository) GetAllColleges(ctx context.Context) ([]models.College, error) {
	sql, args, err := r.sb.Select("id", "name", "created_at").
		From("colleges").
		OrderBy("name ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("failed to build list colleges query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing colleges: %w", err)
	}
	defer rows.Close()

	var colleges []models.College
	for rows.Next() {
		var college models.College
		if err := rows.Scan(&college.ID, &college.Name, &college.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning college row: %w", err)
		}
		colleges = append(colleges, college)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating college rows: %w", err)
	}

	return colleges, nil
}

// GetCollegeByID retrieves a single college
func (r *CollegeRepository) GetCollegeByID(ctx context.Context, id int64) (*models.College, error) {
	sql, args, err := r.sb.Select("id", "name", "created_at").
		From("colleges").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("failed to build get college query: %w", err)
	}

	college := &models.College{}
	err = r.db.QueryRow(ctx, sql, args...).Scan(&college.ID, &college.Name, &college.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrCollegeNotFound
		}
		return nil, fmt.Errorf("error retrieving college: %w", err)
	}

	return college, nil
}

// GetSchoolsByCollegeID lists the schools under a college ordered by name
func (r *CollegeRepository) GetSchoolsByCollegeID(ctx context.Context, collegeID int64) ([]models.School, error) {
	sql, args, err := r.sb.Select("id", "name", "college_id", "created_at").
		From("schools").
		Where(squirrel.Eq{"college_id": collegeID}).
		OrderBy("name ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("failed to build list schools query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing schools: %w", err)
	}
	defer rows.Close()

	var schools []models.School
	for rows.Next() {
		var school models.School
		if err := rows.Scan(&school.ID, &school.Name, &school.CollegeID, &school.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning school row: %w", err)
		}
		schools = append(schools, school)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating school rows: %w", err)
	}

	return schools, nil
}

// SchoolBelongsToCollege verifies a school exists under the given college.
// Registration uses this to reject mismatched catalog selections.
func (r *CollegeRepository) SchoolBelongsToCollege(ctx context.Context, schoolID, collegeID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM schools WHERE id = $1 AND college_id = $2)`,
		schoolID, collegeID).Scan(&exists)

	if err != nil {
		return false, fmt.Errorf("error checking school membership: %w", err)
	}

	return exists, nil
}

// CreateCollege inserts a college if absent and returns its ID. Safe to call
// repeatedly during seeding.
func (r *CollegeRepository) CreateCollege(ctx context.Context, name string) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO colleges (name) VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id`,
		name).Scan(&id)

	if err != nil {
		if dberrors.IsUniqueViolation(err) {
			return 0, apperrors.NewConflictError("college already exists")
		}
		return 0, fmt.Errorf("error creating college: %w", err)
	}

	return id, nil
}

// CreateSchool inserts a school under a college if absent and returns its ID
func (r *CollegeRepository) CreateSchool(ctx context.Context, name string, collegeID int64) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO schools (name, college_id) VALUES ($1, $2)
		ON CONFLICT (name, college_id) DO UPDATE SET name = EXCLUDED.name
		RETURNING id`,
		name, collegeID).Scan(&id)

	if err != nil {
		return 0, fmt.Errorf("error creating school: %w", err)
	}

	return id, nil
}
