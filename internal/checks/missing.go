package checks

import "dataval/internal/dataset"

// MissingOptions configures MissingValues when driven from configuration.
type MissingOptions struct {
	Column    string  `yaml:"column" json:"column"`
	Threshold float64 `yaml:"threshold" json:"threshold"`
}

// MissingValues reports whether the share of missing cells in column is at
// or below threshold. A column without rows has nothing missing and passes.
func MissingValues(ds *dataset.Dataset, col string, threshold float64) (bool, error) {
	c, err := column(ds, col)
	if err != nil {
		return false, err
	}
	if err := checkThreshold(threshold); err != nil {
		return false, err
	}
	return MissingRatio(c) <= threshold, nil
}

// MissingRatio returns the fraction of missing cells in c (0 for an empty
// column).
func MissingRatio(c *dataset.Column) float64 {
	if c.Len() == 0 {
		return 0
	}
	return float64(c.Missing()) / float64(c.Len())
}
