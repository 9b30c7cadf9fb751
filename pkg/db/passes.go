package db

import (
	"fmt"
	"time"
)

// Pass represents one recorded optimize pass.
type Pass struct {
	PassID         int64
	CreatedAt      time.Time
	PageURL        string
	OutputPath     string
	SheetCount     int
	InlinedCount   int
	ExtractedCount int
	PreloadedCount int
	SkippedCount   int
}

// PassSheet represents one stylesheet decision within a pass.
type PassSheet struct {
	SheetID      int64
	PassID       int64
	Src          string
	Status       string
	Strategy     string
	SameSite     bool
	SmallSize    bool
	Critical     bool
	LowUsage     bool
	ContentBytes int
	UsedBytes    int
	ErrorType    string
	ErrorMessage string
}

// RecordPass inserts a pass and its per-stylesheet decisions, returning the
// new pass ID.
func (db *DB) RecordPass(pass Pass, sheets []PassSheet) (int64, error) {
	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(`
		INSERT INTO passes (page_url, output_path, sheet_count, inlined_count, extracted_count, preloaded_count, skipped_count)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, pass.PageURL, pass.OutputPath, pass.SheetCount, pass.InlinedCount, pass.ExtractedCount, pass.PreloadedCount, pass.SkippedCount)
	if err != nil {
		return 0, fmt.Errorf("failed to insert pass: %w", err)
	}

	passID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get pass ID: %w", err)
	}

	for _, sheet := range sheets {
		_, err := tx.Exec(`
			INSERT INTO pass_sheets (pass_id, src, status, strategy, same_site, small_size, critical, low_usage, content_bytes, used_bytes, error_type, error_message)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, passID, sheet.Src, sheet.Status, sheet.Strategy, sheet.SameSite, sheet.SmallSize, sheet.Critical, sheet.LowUsage, sheet.ContentBytes, sheet.UsedBytes, sheet.ErrorType, sheet.ErrorMessage)
		if err != nil {
			return 0, fmt.Errorf("failed to insert pass sheet: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit pass: %w", err)
	}
	return passID, nil
}

// ListPasses returns the most recent passes, newest first.
func (db *DB) ListPasses(limit int) ([]Pass, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.Query(`
		SELECT pass_id, created_at, page_url, output_path, sheet_count, inlined_count, extracted_count, preloaded_count, skipped_count
		FROM passes ORDER BY created_at DESC, pass_id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list passes: %w", err)
	}
	defer rows.Close()

	var passes []Pass
	for rows.Next() {
		var p Pass
		if err := rows.Scan(&p.PassID, &p.CreatedAt, &p.PageURL, &p.OutputPath, &p.SheetCount, &p.InlinedCount, &p.ExtractedCount, &p.PreloadedCount, &p.SkippedCount); err != nil {
			return nil, fmt.Errorf("failed to scan pass: %w", err)
		}
		passes = append(passes, p)
	}
	return passes, rows.Err()
}

// GetPassByID returns one pass.
func (db *DB) GetPassByID(passID int64) (*Pass, error) {
	var p Pass
	err := db.QueryRow(`
		SELECT pass_id, created_at, page_url, output_path, sheet_count, inlined_count, extracted_count, preloaded_count, skipped_count
		FROM passes WHERE pass_id = ?
	`, passID).Scan(&p.PassID, &p.CreatedAt, &p.PageURL, &p.OutputPath, &p.SheetCount, &p.InlinedCount, &p.ExtractedCount, &p.PreloadedCount, &p.SkippedCount)
	if err != nil {
		return nil, fmt.Errorf("failed to get pass %d: %w", passID, err)
	}
	return &p, nil
}

// GetPassSheets returns the stylesheet decisions recorded for a pass.
func (db *DB) GetPassSheets(passID int64) ([]PassSheet, error) {
	rows, err := db.Query(`
		SELECT sheet_id, pass_id, src, status, strategy, same_site, small_size, critical, low_usage,
		       COALESCE(content_bytes, 0), COALESCE(used_bytes, 0), COALESCE(error_type, ''), COALESCE(error_message, '')
		FROM pass_sheets WHERE pass_id = ? ORDER BY sheet_id
	`, passID)
	if err != nil {
		return nil, fmt.Errorf("failed to get pass sheets: %w", err)
	}
	defer rows.Close()

	var sheets []PassSheet
	for rows.Next() {
		var s PassSheet
		if err := rows.Scan(&s.SheetID, &s.PassID, &s.Src, &s.Status, &s.Strategy, &s.SameSite, &s.SmallSize, &s.Critical, &s.LowUsage, &s.ContentBytes, &s.UsedBytes, &s.ErrorType, &s.ErrorMessage); err != nil {
			return nil, fmt.Errorf("failed to scan pass sheet: %w", err)
		}
		sheets = append(sheets, s)
	}
	return sheets, rows.Err()
}
