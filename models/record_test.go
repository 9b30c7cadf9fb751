package models

import "testing"

func TestSelectStrategy(t *testing.T) {
	tests := []struct {
		name  string
		small bool
		low   bool
		want  Strategy
	}{
		{"small and low usage", true, true, StrategyInline},
		{"small only", true, false, StrategyInline},
		{"large and low usage", false, true, StrategyExtractDefer},
		{"large and well used", false, false, StrategyPreloadDefer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ClassificationRecord{IsSmallSize: tt.small, IsLowUsage: tt.low}
			if got := SelectStrategy(rec); got != tt.want {
				t.Errorf("SelectStrategy(small=%v, low=%v) = %q, want %q", tt.small, tt.low, got, tt.want)
			}
		})
	}
}

func TestSelectStrategy_IgnoresCritical(t *testing.T) {
	rec := ClassificationRecord{IsSmallSize: false, IsLowUsage: false, IsCritical: true}
	if got := SelectStrategy(rec); got != StrategyPreloadDefer {
		t.Errorf("SelectStrategy with critical flag = %q, want %q (flag is metadata only)", got, StrategyPreloadDefer)
	}
}
