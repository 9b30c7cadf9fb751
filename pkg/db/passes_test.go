package db

import (
	"testing"
)

// setupTestDB creates an in-memory SQLite database for testing
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	// Use in-memory database for tests
	database := &DB{path: ":memory:"}
	var err error
	database.DB, err = openDB(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := database.InitSchema(); err != nil {
		t.Fatalf("failed to initialize schema: %v", err)
	}

	return database
}

func TestRecordPass_RoundTrip(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	pass := Pass{
		PageURL:        "https://site.test/",
		OutputPath:     "dist/index.html",
		SheetCount:     3,
		InlinedCount:   1,
		ExtractedCount: 1,
		SkippedCount:   1,
	}
	sheets := []PassSheet{
		{Src: "https://site.test/a.css", Status: "rewritten", Strategy: "inline", SameSite: true, SmallSize: true, ContentBytes: 120},
		{Src: "https://site.test/b.css", Status: "rewritten", Strategy: "extract-defer", SameSite: true, LowUsage: true, ContentBytes: 50000, UsedBytes: 2000},
		{Src: "https://site.test/bad.css", Status: "error", SameSite: true, ErrorType: "transform_error", ErrorMessage: "malformed css"},
	}

	passID, err := db.RecordPass(pass, sheets)
	if err != nil {
		t.Fatalf("RecordPass() error = %v", err)
	}
	if passID == 0 {
		t.Fatal("RecordPass() returned 0 pass ID")
	}

	got, err := db.GetPassByID(passID)
	if err != nil {
		t.Fatalf("GetPassByID() error = %v", err)
	}
	if got.PageURL != pass.PageURL {
		t.Errorf("PageURL = %q, want %q", got.PageURL, pass.PageURL)
	}
	if got.SheetCount != 3 || got.InlinedCount != 1 || got.ExtractedCount != 1 || got.SkippedCount != 1 {
		t.Errorf("counts = %+v, want the recorded counts", got)
	}

	gotSheets, err := db.GetPassSheets(passID)
	if err != nil {
		t.Fatalf("GetPassSheets() error = %v", err)
	}
	if len(gotSheets) != 3 {
		t.Fatalf("len(sheets) = %d, want 3", len(gotSheets))
	}
	if gotSheets[1].Strategy != "extract-defer" {
		t.Errorf("sheets[1].Strategy = %q, want %q", gotSheets[1].Strategy, "extract-defer")
	}
	if gotSheets[2].ErrorType != "transform_error" {
		t.Errorf("sheets[2].ErrorType = %q, want %q", gotSheets[2].ErrorType, "transform_error")
	}
}

func TestListPasses_NewestFirst(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	for i := 0; i < 3; i++ {
		if _, err := db.RecordPass(Pass{PageURL: "https://site.test/", SheetCount: 1}, nil); err != nil {
			t.Fatalf("RecordPass() error = %v", err)
		}
	}

	passes, err := db.ListPasses(2)
	if err != nil {
		t.Fatalf("ListPasses() error = %v", err)
	}
	if len(passes) != 2 {
		t.Fatalf("len(passes) = %d, want 2", len(passes))
	}
	if passes[0].PassID <= passes[1].PassID {
		t.Errorf("passes not newest first: %d then %d", passes[0].PassID, passes[1].PassID)
	}
}

func TestGetPassByID_Missing(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	if _, err := db.GetPassByID(999); err == nil {
		t.Error("GetPassByID(999) error = nil, want error")
	}
}
