package db

const schema = `
-- Performance and reliability settings
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA foreign_keys = ON;
PRAGMA temp_store = MEMORY;

-- Passes: one row per optimize pass over a page
CREATE TABLE IF NOT EXISTS passes (
    pass_id INTEGER PRIMARY KEY AUTOINCREMENT,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    page_url TEXT NOT NULL,
    output_path TEXT,
    sheet_count INTEGER NOT NULL,
    inlined_count INTEGER DEFAULT 0,
    extracted_count INTEGER DEFAULT 0,
    preloaded_count INTEGER DEFAULT 0,
    skipped_count INTEGER DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_passes_created ON passes(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_passes_page ON passes(page_url);

-- Pass sheets: per-stylesheet decision within a pass
CREATE TABLE IF NOT EXISTS pass_sheets (
    sheet_id INTEGER PRIMARY KEY AUTOINCREMENT,
    pass_id INTEGER NOT NULL,
    src TEXT NOT NULL,
    status TEXT NOT NULL,          -- rewritten, skipped, error
    strategy TEXT,                 -- inline, extract-defer, preload-defer
    same_site BOOLEAN NOT NULL,
    small_size BOOLEAN NOT NULL,
    critical BOOLEAN NOT NULL,
    low_usage BOOLEAN NOT NULL,
    content_bytes INTEGER,
    used_bytes INTEGER,
    error_type TEXT,
    error_message TEXT,
    FOREIGN KEY (pass_id) REFERENCES passes(pass_id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_pass_sheets_pass ON pass_sheets(pass_id);
CREATE INDEX IF NOT EXISTS idx_pass_sheets_src ON pass_sheets(src);
`
