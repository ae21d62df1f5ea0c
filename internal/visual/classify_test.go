package visual

import (
	"math"
	"testing"
)

func ptr(v float64) *float64 { return &v }

func TestClassify(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name       string
		value      float64
		thresholds Thresholds
		want       Classification
	}{
		{
			name:       "lower good above breach",
			value:      110,
			thresholds: Thresholds{Breach: ptr(100), Warning: ptr(80), GoodDirection: GoodLower},
			want:       ClassBreach,
		},
		{
			name:       "lower good above warning",
			value:      90,
			thresholds: Thresholds{Breach: ptr(100), Warning: ptr(80), GoodDirection: GoodLower},
			want:       ClassWarning,
		},
		{
			name:       "lower good under both",
			value:      50,
			thresholds: Thresholds{Breach: ptr(100), Warning: ptr(80), GoodDirection: GoodLower},
			want:       ClassOK,
		},
		{
			name:       "lower good exactly at breach",
			value:      100,
			thresholds: Thresholds{Breach: ptr(100), Warning: ptr(80), GoodDirection: GoodLower},
			want:       ClassBreach,
		},
		{
			name:       "higher good under breach",
			value:      40,
			thresholds: Thresholds{Breach: ptr(50), Warning: ptr(80), GoodDirection: GoodHigher},
			want:       ClassBreach,
		},
		{
			name:       "higher good under warning",
			value:      70,
			thresholds: Thresholds{Breach: ptr(50), Warning: ptr(80), GoodDirection: GoodHigher},
			want:       ClassWarning,
		},
		{
			name:       "higher good above both",
			value:      90,
			thresholds: Thresholds{Breach: ptr(50), Warning: ptr(80), GoodDirection: GoodHigher},
			want:       ClassOK,
		},
		{
			name:       "default direction is higher",
			value:      40,
			thresholds: Thresholds{Breach: ptr(50)},
			want:       ClassBreach,
		},
		{
			name:       "warning only",
			value:      90,
			thresholds: Thresholds{Warning: ptr(80), GoodDirection: GoodLower},
			want:       ClassWarning,
		},
		{
			name:       "no thresholds means no indicator",
			value:      90,
			thresholds: Thresholds{GoodDirection: GoodLower},
			want:       ClassNone,
		},
		{
			name:       "nan value means no indicator",
			value:      math.NaN(),
			thresholds: Thresholds{Breach: ptr(100), GoodDirection: GoodLower},
			want:       ClassNone,
		},
		{
			name:       "infinite value means no indicator",
			value:      math.Inf(1),
			thresholds: Thresholds{Breach: ptr(100), GoodDirection: GoodLower},
			want:       ClassNone,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := Classify(tc.value, tc.thresholds); got != tc.want {
				t.Errorf("Classify(%v) = %q, want %q", tc.value, got, tc.want)
			}
		})
	}
}
