// Package classifier reconciles page-load telemetry into one classification
// record per eligible stylesheet. Records drive the delivery-strategy choice
// made later by the rewriter.
package classifier

import (
	"net/url"
	"strings"

	"github.com/perfkit/csslim/models"
)

// Estimator approximates the post-minification token length of CSS content.
type Estimator func(content string) int

// Classify produces one ClassificationRecord per eligible stylesheet, in
// input order. A stylesheet is eligible when it is not inline and carries a
// source URL. Usage rules with out-of-range offsets are skipped as if they
// never fired; a missing audit entry means the sheet is not low-usage.
func Classify(stylesheets []models.Stylesheet, rules []models.UsageRule, audits []models.UnusedCSSAudit, pageURL string, blockingURLs []string, estimate Estimator) []models.ClassificationRecord {
	auditByURL := make(map[string]models.UnusedCSSAudit, len(audits))
	for _, a := range audits {
		// Duplicate URLs: last entry wins.
		auditByURL[a.URL] = a
	}

	blocking := make(map[string]bool, len(blockingURLs))
	for _, u := range blockingURLs {
		blocking[u] = true
	}

	page, pageErr := url.Parse(pageURL)

	var records []models.ClassificationRecord
	for _, sheet := range stylesheets {
		if sheet.Header.IsInline || sheet.Header.SourceURL == "" {
			continue
		}
		src := sheet.Header.SourceURL

		sameSite := false
		if pageErr == nil {
			if sheetURL, err := url.Parse(src); err == nil {
				sameSite = sheetURL.Scheme == page.Scheme && sheetURL.Host == page.Host
			}
		}

		isLowUsage := false
		if audit, ok := auditByURL[src]; ok {
			isLowUsage = audit.WastedPercent > models.WasteThresholdPercent
		}

		records = append(records, models.ClassificationRecord{
			Src:            src,
			IsFromSameSite: sameSite,
			Content:        sheet.Content,
			UsedContent:    extractUsedContent(sheet, rules),
			IsSmallSize:    estimate(sheet.Content) <= models.SmallFileTokenLength,
			IsCritical:     blocking[src],
			IsLowUsage:     isLowUsage,
		})
	}
	return records
}

// extractUsedContent slices the spans of rules that fired for this stylesheet
// out of its full text and joins them with newlines. Spans come from
// third-party instrumentation, so invalid offsets are dropped rather than
// failing the pass.
func extractUsedContent(sheet models.Stylesheet, rules []models.UsageRule) string {
	var slices []string
	for _, rule := range rules {
		if rule.StyleSheetID != sheet.Header.StyleSheetID {
			continue
		}
		if rule.StartOffset < 0 || rule.EndOffset > len(sheet.Content) || rule.StartOffset > rule.EndOffset {
			continue
		}
		slices = append(slices, sheet.Content[rule.StartOffset:rule.EndOffset])
	}
	return strings.Join(slices, "\n")
}
