// Package scoring turns measurement rows into a ranked team leaderboard.
//
// Scoring runs as a pipeline of pure stages: the Aggregator folds every row
// into per-team statistics, the leaderboard pass grants bonuses based on
// maxima across all teams, and Rank orders the result. The leaderboard pass
// only runs once aggregation has seen every row, so the outcome does not
// depend on row order.
package scoring

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/ahrav/go-signalhunt/internal/domain"
)

// Default rule thresholds.
const (
	// DefaultGoodSignalThreshold is the reading, in dBm, a measurement must
	// exceed to earn the good-signal bonus.
	DefaultGoodSignalThreshold = -70.0

	// DefaultManyAreasThreshold is the number of distinct areas a team needs
	// for the many-areas bonus.
	DefaultManyAreasThreshold = 4
)

// Package-level validator instance for rules validation.
var validate = validator.New()

// Rules configures a scoring run. Rules are immutable once handed to a
// Scorer or Aggregator.
type Rules struct {
	// Categories is the point table for structural and subjective bonuses.
	Categories domain.CategoryTable `validate:"-"`

	// GoodSignalThreshold is compared strictly: a reading must be greater
	// than this value to earn the good-signal bonus.
	GoodSignalThreshold float64 `validate:"gte=-200,lte=50"`

	// ManyAreasThreshold is the absolute number of distinct areas required
	// for the many-areas bonus.
	ManyAreasThreshold int `validate:"min=1,max=1000"`

	// StrictTags fails a run on tags missing from the category table
	// instead of ignoring them.
	StrictTags bool

	// CaseInsensitiveTags matches tags to categories with Unicode case
	// folding.
	CaseInsensitiveTags bool
}

// DefaultRules returns the stock event rules.
func DefaultRules() Rules {
	return Rules{
		Categories:          domain.DefaultCategoryTable(),
		GoodSignalThreshold: DefaultGoodSignalThreshold,
		ManyAreasThreshold:  DefaultManyAreasThreshold,
	}
}

// Validate checks the thresholds and the category table.
func (r Rules) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidConfiguration, err)
	}
	if err := r.Categories.Validate(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidConfiguration, err)
	}
	return nil
}
