package checks

import (
	"fmt"
	"strconv"

	"dataval/internal/dataset"
)

// OutlierOptions configures Outliers.
type OutlierOptions struct {
	Column    string  `yaml:"column" json:"column"`
	Lower     float64 `yaml:"lower_bound" json:"lower_bound"`
	Upper     float64 `yaml:"upper_bound" json:"upper_bound"`
	Threshold float64 `yaml:"threshold" json:"threshold"`
}

// MsgOutliersOK is returned when the outlier share is within the threshold.
const MsgOutliersOK = "The proportion of outliers is within the acceptable threshold. Check complete!"

// OutlierResult carries the measured outlier share alongside the verdict.
type OutlierResult struct {
	Outliers   int
	Values     int
	Proportion float64
	Passed     bool
	Message    string
}

// Outliers measures the share of non-missing values of a numeric column that
// fall outside [Lower, Upper] and compares it with Threshold. Bounds are
// inclusive, and a share equal to the threshold passes.
func Outliers(ds *dataset.Dataset, opts OutlierOptions) (string, error) {
	res, err := MeasureOutliers(ds, opts)
	if err != nil {
		return "", err
	}
	return res.Message, nil
}

// MeasureOutliers is Outliers with the counts exposed.
func MeasureOutliers(ds *dataset.Dataset, opts OutlierOptions) (OutlierResult, error) {
	c, err := column(ds, opts.Column)
	if err != nil {
		return OutlierResult{}, err
	}
	if !(opts.Lower < opts.Upper) {
		return OutlierResult{}, fmt.Errorf("%w (got %v and %v)", ErrInvalidBounds, opts.Lower, opts.Upper)
	}
	if err := checkThreshold(opts.Threshold); err != nil {
		return OutlierResult{}, err
	}
	if c.Missing() == c.Len() {
		return OutlierResult{}, fmt.Errorf("%w: column '%s'", ErrNoValues, c.Name)
	}
	if c.Kind != dataset.KindInteger && c.Kind != dataset.KindFloat {
		return OutlierResult{}, fmt.Errorf("%w: column '%s' is %s, want a numeric column", ErrColumnKind, c.Name, c.Kind)
	}

	var res OutlierResult
	for _, v := range c.Values {
		if dataset.IsMissing(v) {
			continue
		}
		f, ok := toFloat(v)
		if !ok {
			return OutlierResult{}, fmt.Errorf("%w: column '%s' holds non-numeric value %v", ErrColumnKind, c.Name, v)
		}
		res.Values++
		if f < opts.Lower || f > opts.Upper {
			res.Outliers++
		}
	}

	res.Proportion = float64(res.Outliers) / float64(res.Values)
	res.Passed = res.Proportion <= opts.Threshold
	if res.Passed {
		res.Message = MsgOutliersOK
	} else {
		res.Message = "The proportion of outliers exceeds the threshold " +
			strconv.FormatFloat(opts.Threshold, 'g', -1, 64) + ". Check complete!"
	}
	return res, nil
}
