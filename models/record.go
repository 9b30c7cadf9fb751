package models

// ClassificationRecord is the per-stylesheet output of the classifier. Src,
// IsFromSameSite and the three flags are fixed at creation; only Content and
// UsedContent may be replaced later, by the transform step, and exactly once.
type ClassificationRecord struct {
	Src            string // absolute source URL
	IsFromSameSite bool   // same origin as the page
	Content        string // full stylesheet text (pre- or post-transform)
	UsedContent    string // rule-span slices joined by newline
	IsSmallSize    bool   // token-length estimate at or below SmallFileTokenLength
	IsCritical     bool   // src blocks first paint
	IsLowUsage     bool   // audit wastedPercent above WasteThresholdPercent
}

const (
	// SmallFileTokenLength is the estimated token length at or below which a
	// stylesheet is inlined outright.
	SmallFileTokenLength = 12288

	// WasteThresholdPercent is the unused-byte ratio above which a stylesheet
	// is considered low-usage.
	WasteThresholdPercent = 60
)

// Strategy is the delivery strategy chosen for one stylesheet reference.
type Strategy string

const (
	// StrategyInline replaces the <link> with a <style> holding the full text.
	StrategyInline Strategy = "inline"
	// StrategyExtractDefer replaces the <link> with a marked <style> holding
	// only the rules proven used, reconciled to the full sheet after load.
	StrategyExtractDefer Strategy = "extract-defer"
	// StrategyPreloadDefer rewrites the <link> to a preload hint that
	// upgrades to a stylesheet on load.
	StrategyPreloadDefer Strategy = "preload-defer"
)

// SelectStrategy picks exactly one delivery strategy for a record. Priority:
// small wins over low-usage wins over the preload default. IsCritical is
// carried as metadata but does not participate in selection.
func SelectStrategy(rec ClassificationRecord) Strategy {
	if rec.IsSmallSize {
		return StrategyInline
	}
	if rec.IsLowUsage {
		return StrategyExtractDefer
	}
	return StrategyPreloadDefer
}
