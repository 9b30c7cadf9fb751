package optimize

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/urfave/cli/v2"

	"github.com/perfkit/csslim/models"
)

// largeCSS builds distinct rules until the text is comfortably past the
// small-file threshold, so minification cannot shrink it back under.
func largeCSS() string {
	var sb strings.Builder
	for i := 0; sb.Len() < 2*models.SmallFileTokenLength; i++ {
		fmt.Fprintf(&sb, ".c%d{color:red}", i)
	}
	return sb.String()
}

func writeJSON(t *testing.T, path string, v interface{}) {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("WriteFile(%s) error = %v", path, err)
	}
}

func runOptimize(t *testing.T, args []string) {
	t.Helper()
	app := &cli.App{Commands: []*cli.Command{Command()}}
	if err := app.Run(append([]string{"csslim"}, args...)); err != nil {
		t.Fatalf("optimize run error = %v", err)
	}
}

func TestOptimize_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	big := largeCSS()

	page := `<html><head>` +
		`<link rel="stylesheet" href="/css/small.css">` +
		`<link rel="stylesheet" href="/css/wasted.css">` +
		`<link rel="stylesheet" href="/css/busy.css">` +
		`<link rel="stylesheet" href="https://cdn.test/lib.css">` +
		`</head><body><p>hi</p></body></html>`
	htmlPath := filepath.Join(dir, "index.html")
	if err := os.WriteFile(htmlPath, []byte(page), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	coveragePath := filepath.Join(dir, "coverage.json")
	writeJSON(t, coveragePath, models.CoverageReport{
		Rules: []models.UsageRule{
			// wasted.css: two spans covering the first two rules.
			{StyleSheetID: "2", StartOffset: 0, EndOffset: 14},
			{StyleSheetID: "2", StartOffset: 14, EndOffset: 28},
		},
		Stylesheets: []models.Stylesheet{
			{Header: models.StylesheetHeader{StyleSheetID: "1", SourceURL: "https://site.test/css/small.css"}, Content: "a{color:red}"},
			{Header: models.StylesheetHeader{StyleSheetID: "2", SourceURL: "https://site.test/css/wasted.css"}, Content: big},
			{Header: models.StylesheetHeader{StyleSheetID: "3", SourceURL: "https://site.test/css/busy.css"}, Content: big},
			{Header: models.StylesheetHeader{StyleSheetID: "4", SourceURL: "https://cdn.test/lib.css"}, Content: "x{color:blue}"},
		},
	})

	auditsPath := filepath.Join(dir, "audits.json")
	writeJSON(t, auditsPath, []models.UnusedCSSAudit{
		{URL: "https://site.test/css/wasted.css", WastedPercent: 75},
		{URL: "https://site.test/css/busy.css", WastedPercent: 30},
	})

	destDir := filepath.Join(dir, "dist")
	outputPath := filepath.Join(dir, "index.out.html")
	runOptimize(t, []string{
		"optimize",
		"--page-url", "https://site.test/index.html",
		"--html", htmlPath,
		"--telemetry", coveragePath,
		"--audits", auditsPath,
		"--source-dir", filepath.Join(dir, "src"),
		"--dest-dir", destDir,
		"--output", outputPath,
		"--db", filepath.Join(dir, "history.db"),
		"--quiet",
	})

	data, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("rewritten page not written: %v", err)
	}
	out := string(data)

	// Scenario A: small sheet inlined, its link gone.
	if !strings.Contains(out, "<style>a{color:red}</style>") {
		t.Error("small stylesheet not inlined")
	}
	if strings.Contains(out, `href="/css/small.css"`) {
		t.Error("small stylesheet link still present")
	}

	// Scenario B: low-usage sheet replaced by used slices with marker.
	if !strings.Contains(out, `data-replaced-url="https://site.test/css/wasted.css"`) {
		t.Error("low-usage stylesheet missing data-replaced-url marker")
	}
	if !strings.Contains(out, ".c0{color:red}.c1{color:red}") {
		t.Error("low-usage stylesheet missing the two used slices")
	}

	// Scenario C: well-used large sheet becomes a preload + noscript pair.
	if !strings.Contains(out, `rel="preload" href="https://site.test/css/busy.css"`) {
		t.Error("well-used stylesheet not rewritten to preload")
	}
	if !strings.Contains(out, `<noscript><link rel="stylesheet" href="https://site.test/css/busy.css"/></noscript>`) {
		t.Error("well-used stylesheet missing noscript fallback")
	}

	// Scenario D: cross-site link untouched, no file written for it.
	if !strings.Contains(out, `href="https://cdn.test/lib.css"`) {
		t.Error("cross-site stylesheet link was modified")
	}
	if _, err := os.Stat(filepath.Join(destDir, "lib.css")); !os.IsNotExist(err) {
		t.Error("cross-site stylesheet was written to the destination dir")
	}

	// Reconciliation script present exactly once.
	if got := strings.Count(out, "window.addEventListener('load'"); got != 1 {
		t.Errorf("reconciliation script count = %d, want 1", got)
	}

	// Same-site sheets persisted under the destination root.
	for _, name := range []string{"small.css", "wasted.css", "busy.css"} {
		if _, err := os.Stat(filepath.Join(destDir, "css", name)); err != nil {
			t.Errorf("transformed %s not written: %v", name, err)
		}
	}
}

func TestOptimize_DryRunWritesNothing(t *testing.T) {
	dir := t.TempDir()

	coveragePath := filepath.Join(dir, "coverage.json")
	writeJSON(t, coveragePath, models.CoverageReport{
		Stylesheets: []models.Stylesheet{
			{Header: models.StylesheetHeader{StyleSheetID: "1", SourceURL: "https://site.test/a.css"}, Content: "a{}"},
		},
	})

	runOptimize(t, []string{
		"optimize",
		"--page-url", "https://site.test/",
		"--telemetry", coveragePath,
		"--dry-run",
		"--quiet",
	})

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("dry run created files: %d entries, want only the coverage file", len(entries))
	}
}

func TestOptimize_MissingFlags(t *testing.T) {
	app := &cli.App{Commands: []*cli.Command{Command()}}
	err := app.Run([]string{"csslim", "optimize", "--quiet"})
	if err == nil {
		t.Fatal("optimize without flags succeeded, want missing-flag error")
	}
	if !strings.Contains(err.Error(), "--page-url") {
		t.Errorf("error = %v, want mention of --page-url", err)
	}
}
