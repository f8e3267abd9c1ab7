package seed

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
	appRepos "github.com/jkusa/portal/internal/app/repositories"
	"github.com/rs/zerolog"
)

// collegeCatalog is the JKUAT college and school structure students register
// against.
var collegeCatalog = map[string][]string{
	"College of Health Sciences (COHES)": {
		"School of Medicine",
		"School of Pharmacy",
		"School of Public Health",
		"School of Nursing",
		"School of Biomedical Sciences",
	},
	"College of Engineering and Technology (COETEC)": {
		"School of Mechanical, Manufacturing and Materials Engineering",
		"School of Civil, Environmental and Geospatial Engineering",
		"School of Electrical, Electronic and Information Engineering",
		"School of Biosystems and Environmental Engineering",
		"School of Architecture and Building Sciences",
	},
	"College of Pure and Applied Sciences (COPAS)": {
		"School of Biological Sciences",
		"School of Physical Sciences",
		"School of Mathematical Sciences",
		"School of Computing and Information Technology",
	},
	"College of Agriculture and Natural Resources (COANRE)": {
		"School of Agriculture and Environmental Sciences",
		"School of Food and Nutrition Sciences",
		"School of Natural Resources and Animal Sciences",
	},
	"College of Human Resource Development (COHRED)": {
		"School of Business",
		"School of Entrepreneurship, Procurement and Management",
		"School of Communication and Development Studies",
	},
}

// CreateDefaultData seeds the college and school catalog. Inserts are
// idempotent upserts, so this runs safely on every startup.
func CreateDefaultData(ctx context.Context, dbPool *pgxpool.Pool, lgr zerolog.Logger) error {
	collegeRepo := appRepos.NewCollegeRepository(dbPool)

	lgr.Info().Msg("Checking/Creating college and school catalog...")
	var finalErr error

	for collegeName, schools := range collegeCatalog {
		collegeID, err := collegeRepo.CreateCollege(ctx, collegeName)
		if err != nil {
			lgr.Error().Err(err).Str("college", collegeName).Msg("Error seeding college")
			finalErr = errors.Join(finalErr, err)
			continue
		}

		for _, schoolName := range schools {
			if _, err := collegeRepo.CreateSchool(ctx, schoolName, collegeID); err != nil {
				lgr.Error().Err(err).Str("school", schoolName).Msg("Error seeding school")
				finalErr = errors.Join(finalErr, err)
			}
		}
	}

	if finalErr == nil {
		lgr.Info().Msg("College and school catalog is up to date")
	}

	return finalErr
}
