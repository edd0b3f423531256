package storage

const schemaSQL = `
-- One row per canonical page key. The primary key makes the insert the
-- single point that decides whether a page is seen for the first time.
CREATE TABLE IF NOT EXISTS visited (
    page_key TEXT PRIMARY KEY NOT NULL,
    visited_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
) WITHOUT ROWID;
`
