package manifest

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/perfkit/csslim/models"
	"github.com/perfkit/csslim/pkg/storage"
)

// SheetResult is the per-stylesheet outcome passed in by the optimize action.
// Defined here to avoid circular dependencies between packages.
type SheetResult struct {
	Record    models.ClassificationRecord
	Strategy  models.Strategy // set only when the link was rewritten
	Rewritten bool
	Error     error
	ErrorType string
}

// GenerateSummary writes a pass manifest next to the rewritten assets.
// It returns the path to the generated manifest file and any error.
func GenerateSummary(pageURL, destDir string, results []SheetResult, s *storage.Storage) (string, error) {
	m := PassManifest{
		GeneratedAt: time.Now().Format(time.RFC3339),
		PageURL:     pageURL,
		TotalSheets: len(results),
	}

	for _, result := range results {
		summary := SheetSummary{
			Src:       result.Record.Src,
			SameSite:  result.Record.IsFromSameSite,
			SmallSize: result.Record.IsSmallSize,
			Critical:  result.Record.IsCritical,
			LowUsage:  result.Record.IsLowUsage,
		}

		switch {
		case result.Error != nil:
			m.Skipped++
			summary.Status = "error"
			summary.ErrorType = result.ErrorType
			summary.ErrorMessage = result.Error.Error()
		case !result.Rewritten:
			m.Skipped++
			summary.Status = "skipped"
		default:
			summary.Status = "rewritten"
			summary.Strategy = string(result.Strategy)
			summary.ContentBytes = len(result.Record.Content)
			summary.UsedBytes = len(result.Record.UsedContent)
			switch result.Strategy {
			case models.StrategyInline:
				m.Inlined++
			case models.StrategyExtractDefer:
				m.Extracted++
			case models.StrategyPreloadDefer:
				m.Preloaded++
			}
		}

		m.Sheets = append(m.Sheets, summary)
	}

	manifestPath := filepath.Join(destDir, fmt.Sprintf("pass-%s.json", time.Now().Format("2006-01-02")))
	manifestData, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return "", fmt.Errorf("error marshalling manifest: %w", err)
	}

	if err := s.SaveFile(manifestPath, manifestData); err != nil {
		return "", fmt.Errorf("error saving manifest: %w", err)
	}

	return manifestPath, nil
}
