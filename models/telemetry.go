package models

// UsageRule is a byte-offset span within a stylesheet's full text that was
// exercised during the observed page load. Offsets are half-open
// [StartOffset, EndOffset) and come from third-party instrumentation, so they
// are not trusted to be in range.
type UsageRule struct {
	StyleSheetID string `json:"styleSheetId"`
	StartOffset  int    `json:"startOffset"`
	EndOffset    int    `json:"endOffset"`
}

// StylesheetHeader identifies a stylesheet seen on the page. Inline sheets and
// sheets without a source URL cannot be located on disk or matched back to a
// DOM <link>, so they are excluded from the pipeline.
type StylesheetHeader struct {
	StyleSheetID string `json:"styleSheetId"`
	IsInline     bool   `json:"isInline"`
	SourceURL    string `json:"sourceURL"`
}

// Stylesheet pairs a header with the full on-page CSS text.
type Stylesheet struct {
	Header  StylesheetHeader `json:"header"`
	Content string           `json:"content"`
}

// UnusedCSSAudit is a per-URL aggregate waste measurement, keyed by the
// stylesheet's source URL.
type UnusedCSSAudit struct {
	URL           string  `json:"url"`
	WastedPercent float64 `json:"wastedPercent"`
}

// CoverageReport bundles the usage telemetry captured during one page load.
type CoverageReport struct {
	Rules       []UsageRule  `json:"rules"`
	Stylesheets []Stylesheet `json:"stylesheets"`
}
