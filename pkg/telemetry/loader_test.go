package telemetry

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func TestLoadCoverage(t *testing.T) {
	path := writeFile(t, "coverage.json", `{
		"rules": [
			{"styleSheetId": "1", "startOffset": 0, "endOffset": 10},
			{"styleSheetId": "ghost", "startOffset": 0, "endOffset": 5}
		],
		"stylesheets": [
			{"header": {"styleSheetId": "1", "isInline": false, "sourceURL": "https://site.test/a.css"}, "content": "a{color:red}"}
		]
	}`)

	report, err := LoadCoverage(path)
	if err != nil {
		t.Fatalf("LoadCoverage() error = %v", err)
	}
	if len(report.Stylesheets) != 1 {
		t.Fatalf("len(Stylesheets) = %d, want 1", len(report.Stylesheets))
	}
	if len(report.Rules) != 1 {
		t.Fatalf("len(Rules) = %d, want 1 (rule for unknown sheet dropped)", len(report.Rules))
	}
	if report.Rules[0].StyleSheetID != "1" {
		t.Errorf("Rules[0].StyleSheetID = %q, want %q", report.Rules[0].StyleSheetID, "1")
	}
}

func TestLoadCoverage_MalformedJSON(t *testing.T) {
	path := writeFile(t, "coverage.json", `{"rules": [`)
	if _, err := LoadCoverage(path); err == nil {
		t.Error("LoadCoverage() error = nil, want parse error")
	}
}

func TestLoadAudits(t *testing.T) {
	path := writeFile(t, "audits.json", `[{"url": "https://site.test/a.css", "wastedPercent": 75.5}]`)

	audits, err := LoadAudits(path)
	if err != nil {
		t.Fatalf("LoadAudits() error = %v", err)
	}
	if len(audits) != 1 {
		t.Fatalf("len(audits) = %d, want 1", len(audits))
	}
	if audits[0].WastedPercent != 75.5 {
		t.Errorf("WastedPercent = %v, want 75.5", audits[0].WastedPercent)
	}
}

func TestLoadAudits_EmptyPath(t *testing.T) {
	audits, err := LoadAudits("")
	if err != nil {
		t.Fatalf("LoadAudits(\"\") error = %v", err)
	}
	if audits != nil {
		t.Errorf("LoadAudits(\"\") = %v, want nil", audits)
	}
}

func TestLoadBlockingURLs(t *testing.T) {
	path := writeFile(t, "blocking.json", `["https://site.test/a.css"]`)

	urls, err := LoadBlockingURLs(path)
	if err != nil {
		t.Fatalf("LoadBlockingURLs() error = %v", err)
	}
	if len(urls) != 1 || urls[0] != "https://site.test/a.css" {
		t.Errorf("urls = %v, want the one blocking URL", urls)
	}
}
