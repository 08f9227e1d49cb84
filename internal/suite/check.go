package suite

import (
	"fmt"

	"go.uber.org/zap"

	"dataval/internal/checks"
	"dataval/internal/coltypes"
	"dataval/internal/config"
	"dataval/internal/dataset"
)

// runCheck decodes c's options and runs it against ds. Argument errors land
// in CheckResult.Error with StatusError; they never abort the dataset.
func runCheck(ds *dataset.Dataset, c config.Check, log *zap.Logger) CheckResult {
	cr := CheckResult{Check: c.Kind}
	fail := func(err error) CheckResult {
		cr.Status = StatusError
		cr.Error = err.Error()
		return cr
	}

	switch c.Kind {
	case config.CheckColTypes:
		var o coltypes.Options
		if err := c.Decode(&o); err != nil {
			return fail(fmt.Errorf("options: %w", err))
		}
		rep, err := coltypes.Check(ds, o)
		if err != nil {
			return fail(err)
		}
		cr.Report = rep
		cr.Message = rep.Message()
		// An empty dataset has nothing to contradict the rules.
		cr.Status = verdict(rep.Outcome != coltypes.OutcomeFail)

	case config.CheckMissing:
		var o checks.MissingOptions
		if err := c.Decode(&o); err != nil {
			return fail(fmt.Errorf("options: %w", err))
		}
		cr.Column = o.Column
		ok, err := checks.MissingValues(ds, o.Column, o.Threshold)
		if err != nil {
			return fail(err)
		}
		col, _ := ds.Column(o.Column)
		cr.Message = fmt.Sprintf("%.4g of values missing (threshold %g)", checks.MissingRatio(col), o.Threshold)
		cr.Status = verdict(ok)

	case config.CheckOutliers:
		var o checks.OutlierOptions
		if err := c.Decode(&o); err != nil {
			return fail(fmt.Errorf("options: %w", err))
		}
		cr.Column = o.Column
		res, err := checks.MeasureOutliers(ds, o)
		if err != nil {
			return fail(err)
		}
		cr.Message = res.Message
		cr.Notes = []string{fmt.Sprintf("%d of %d values outside [%g, %g]", res.Outliers, res.Values, o.Lower, o.Upper)}
		cr.Status = verdict(res.Passed)

	case config.CheckCategorical:
		var o checks.CategoricalOptions
		if err := c.Decode(&o); err != nil {
			return fail(fmt.Errorf("options: %w", err))
		}
		cr.Column = o.Column
		res, err := checks.InspectCategorical(ds, o)
		if err != nil {
			return fail(err)
		}
		notify := checks.LogNotifier(log.With(zap.String("check", c.Kind)), o.Column)
		for _, f := range res.Findings {
			notify(f.Message)
			cr.Notes = append(cr.Notes, f.Message)
		}
		cr.Message = checks.MsgCategoricalDone
		cr.Status = verdict(res.Passed())

	default:
		return fail(fmt.Errorf("unknown check kind %q", c.Kind))
	}
	return cr
}

func verdict(ok bool) Status {
	if ok {
		return StatusPass
	}
	return StatusFail
}
