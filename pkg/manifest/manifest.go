package manifest

// PassManifest is the summary JSON written after an optimize pass. It gives a
// lightweight overview of what happened to every stylesheet without having to
// diff the rewritten page.
type PassManifest struct {
	GeneratedAt string         `json:"generated_at"`
	PageURL     string         `json:"page_url"`
	TotalSheets int            `json:"total_sheets"`
	Inlined     int            `json:"inlined"`
	Extracted   int            `json:"extracted"`
	Preloaded   int            `json:"preloaded"`
	Skipped     int            `json:"skipped"`
	Sheets      []SheetSummary `json:"sheets"`
}

// SheetSummary is the per-stylesheet entry in a pass manifest.
type SheetSummary struct {
	Src          string `json:"src"`
	Status       string `json:"status"` // "rewritten", "skipped" or "error"
	Strategy     string `json:"strategy,omitempty"`
	SameSite     bool   `json:"same_site"`
	SmallSize    bool   `json:"small_size"`
	Critical     bool   `json:"critical"`
	LowUsage     bool   `json:"low_usage"`
	ContentBytes int    `json:"content_bytes,omitempty"`
	UsedBytes    int    `json:"used_bytes,omitempty"`
	ErrorType    string `json:"error_type,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
}
