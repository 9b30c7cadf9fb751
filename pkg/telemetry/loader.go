// Package telemetry loads the page-load instrumentation bundle consumed by
// the classifier: rule usage spans, stylesheet headers and text, the
// first-paint-blocking URL list and the unused-CSS audit.
package telemetry

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/perfkit/csslim/models"
)

// LoadCoverage reads a coverage report (usage rules plus stylesheets) from a
// JSON file. Rules referencing a styleSheetId with no matching stylesheet are
// dropped; the instrumentation is third-party and occasionally emits spans
// for sheets it never delivered the text of.
func LoadCoverage(path string) (*models.CoverageReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read coverage file: %w", err)
	}

	var report models.CoverageReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to parse coverage file: %w", err)
	}

	known := make(map[string]bool, len(report.Stylesheets))
	for _, sheet := range report.Stylesheets {
		known[sheet.Header.StyleSheetID] = true
	}
	kept := report.Rules[:0]
	for _, rule := range report.Rules {
		if known[rule.StyleSheetID] {
			kept = append(kept, rule)
		}
	}
	report.Rules = kept

	return &report, nil
}

// LoadAudits reads the unused-CSS audit entries from a JSON file. A missing
// path is not an error; the pass simply runs without audit data.
func LoadAudits(path string) ([]models.UnusedCSSAudit, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read audits file: %w", err)
	}

	var audits []models.UnusedCSSAudit
	if err := json.Unmarshal(data, &audits); err != nil {
		return nil, fmt.Errorf("failed to parse audits file: %w", err)
	}
	return audits, nil
}

// LoadBlockingURLs reads the list of URLs reported as blocking first paint.
func LoadBlockingURLs(path string) ([]string, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read blocking URLs file: %w", err)
	}

	var urls []string
	if err := json.Unmarshal(data, &urls); err != nil {
		return nil, fmt.Errorf("failed to parse blocking URLs file: %w", err)
	}
	return urls, nil
}
