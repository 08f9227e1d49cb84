// Package checks holds the single-column data-quality checks that sit next
// to the column-type validator: missing-value ratio, outlier proportion and
// categorical string format. Each check is independent; they share only the
// convention of returning a verdict or a human-readable message.
package checks

import (
	"errors"
	"fmt"

	"dataval/internal/dataset"
)

var (
	// ErrNotTabular is returned when no dataset is supplied.
	ErrNotTabular = errors.New("dataset must be a tabular dataset")
	// ErrColumnNotFound is returned when the named column does not exist.
	ErrColumnNotFound = errors.New("column not found")
	// ErrThresholdRange is returned for a threshold outside [0, 1].
	ErrThresholdRange = errors.New("threshold must be between 0 and 1")
	// ErrInvalidBounds is returned when lower_bound >= upper_bound.
	ErrInvalidBounds = errors.New("lower_bound must be less than upper_bound")
	// ErrNoValues is returned when a column has nothing but missing cells.
	ErrNoValues = errors.New("column contains no non-missing values")
	// ErrColumnKind is returned when a column's kind does not suit the check.
	ErrColumnKind = errors.New("column has the wrong kind for this check")
	// ErrInvalidArgument covers other malformed options.
	ErrInvalidArgument = errors.New("invalid argument")
)

// column resolves name in ds, mapping the failure cases onto the package
// errors.
func column(ds *dataset.Dataset, name string) (*dataset.Column, error) {
	if ds == nil {
		return nil, ErrNotTabular
	}
	c, ok := ds.Column(name)
	if !ok {
		return nil, fmt.Errorf("%w: column '%s' not found", ErrColumnNotFound, name)
	}
	return c, nil
}

func checkThreshold(t float64) error {
	if t < 0 || t > 1 || t != t {
		return fmt.Errorf("%w, got %v", ErrThresholdRange, t)
	}
	return nil
}

// toFloat converts numeric cell values to float64.
func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case int:
		return float64(x), true
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	case float32:
		return float64(x), true
	case float64:
		return x, true
	}
	return 0, false
}
