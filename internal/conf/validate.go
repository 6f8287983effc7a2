package conf

import (
	"fmt"
	"math"
	"slices"
)

// ValidationError represents a collection of validation errors
type ValidationError struct {
	Errors []string
}

// Error returns a string representation of the validation errors
func (ve ValidationError) Error() string {
	return fmt.Sprintf("Validation errors: %v", ve.Errors)
}

// ValidateSettings validates the entire Settings struct
func ValidateSettings(settings *Settings) error {
	ve := ValidationError{}

	ve.Errors = append(ve.Errors, validateDatabaseSettings(&settings.Database)...)
	ve.Errors = append(ve.Errors, validateAssociationSettings(&settings.SourceAssociation)...)
	ve.Errors = append(ve.Errors, validateExtractionSettings(&settings.SourceExtraction)...)

	if settings.Metrics.Enabled && settings.Metrics.Listen == "" {
		ve.Errors = append(ve.Errors, "metrics.listen must be set when metrics are enabled")
	}

	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

func validateDatabaseSettings(db *DatabaseConfig) []string {
	var errs []string

	switch db.Type {
	case DatabaseSQLite:
		if db.Enabled && db.Path == "" {
			errs = append(errs, "database.path must be set for sqlite")
		}
	case DatabaseMySQL:
		if db.Enabled && (db.Host == "" || db.Name == "") {
			errs = append(errs, "database.host and database.name must be set for mysql")
		}
		if db.Port <= 0 || db.Port > math.MaxUint16 {
			errs = append(errs, fmt.Sprintf("database.port %d out of range", db.Port))
		}
	default:
		errs = append(errs, fmt.Sprintf("database.type %q must be one of sqlite, mysql", db.Type))
	}
	return errs
}

func validateAssociationSettings(sa *SourceAssociationConfig) []string {
	if !(sa.DeRuiterRadius > 0) || math.IsInf(sa.DeRuiterRadius, 0) {
		return []string{fmt.Sprintf("source_association.deruiter_radius must be a positive finite number, got %v", sa.DeRuiterRadius)}
	}
	return nil
}

func validateExtractionSettings(se *SourceExtractionConfig) []string {
	var errs []string

	if err := validateStructuringElement(se.StructuringElement); err != nil {
		errs = append(errs, err.Error())
	}
	if !(se.UnconstrainedErrorRadius > 0) || math.IsInf(se.UnconstrainedErrorRadius, 0) {
		errs = append(errs, fmt.Sprintf("source_extraction.unconstrained_error_radius must be a positive finite number, got %v",
			se.UnconstrainedErrorRadius))
	}
	if se.BackSizeX <= 0 || se.BackSizeY <= 0 {
		errs = append(errs, "source_extraction.back_sizex and back_sizey must be positive")
	}
	if se.DeblendNThresh < 0 {
		errs = append(errs, "source_extraction.deblend_nthresh must not be negative")
	}
	return errs
}

// validateStructuringElement requires a 3x3 real matrix.
func validateStructuringElement(m [][]float64) error {
	const size = 3
	if len(m) != size {
		return fmt.Errorf("source_extraction.structuring_element must have %d rows, got %d", size, len(m))
	}
	for i, row := range m {
		if len(row) != size {
			return fmt.Errorf("source_extraction.structuring_element row %d must have %d columns, got %d", i, size, len(row))
		}
		if slices.ContainsFunc(row, func(v float64) bool { return math.IsNaN(v) || math.IsInf(v, 0) }) {
			return fmt.Errorf("source_extraction.structuring_element row %d contains a non-finite value", i)
		}
	}
	return nil
}
