package visual

import "math"

// Good directions for threshold classification.
const (
	GoodHigher = "higher"
	GoodLower  = "lower"
)

// Thresholds configures breach/warning classification.
type Thresholds struct {
	// Breach and Warning are the threshold values. A nil threshold is not
	// checked.
	Breach  *float64
	Warning *float64

	// GoodDirection orients the comparison: "lower" means smaller values
	// are favorable, so meeting or exceeding a threshold is unfavorable.
	// "higher" inverts the sense. Defaults to "higher".
	GoodDirection string
}

// Classify compares v against the configured thresholds in the good
// direction's sense and returns the resulting indicator.
//
// With lower-is-good, v >= breach classifies as breach, v >= warning as
// warning, anything else as ok. With higher-is-good the comparisons invert
// to v <= threshold. A non-finite value, or a Thresholds with neither
// threshold set, classifies as ClassNone: no indicator, not ok.
func Classify(v float64, t Thresholds) Classification {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ClassNone
	}
	if t.Breach == nil && t.Warning == nil {
		return ClassNone
	}
	bad := func(threshold float64) bool {
		if t.GoodDirection == GoodLower {
			return v >= threshold
		}
		return v <= threshold
	}
	if t.Breach != nil && bad(*t.Breach) {
		return ClassBreach
	}
	if t.Warning != nil && bad(*t.Warning) {
		return ClassWarning
	}
	return ClassOK
}
