package database

// migrationsSQL contains all database migrations.
// Migrations are applied in order by version number.
var migrationsSQL = map[int]string{
	1: migrationV1YearCache,
	2: migrationV2RulesFingerprint,
}

// migrationV1YearCache creates the year cache.
//
// A built year is stored as one liturgical_years row plus one
// day_observances row per identifier, keeping the order identifiers had on
// their day. Days without observances have no rows; day_count lets GetYear
// tell a complete year from a truncated one.
const migrationV1YearCache = `
-- Migration 001: year cache

CREATE TABLE IF NOT EXISTS liturgical_years (
    year INTEGER PRIMARY KEY,

    -- 365 or 366
    day_count INTEGER NOT NULL,

    -- Where the rule tables came from ("embedded:..." or a file path)
    rules_source TEXT NOT NULL,

    built_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS day_observances (
    year INTEGER NOT NULL,

    -- YYYY-MM-DD
    date TEXT NOT NULL,

    -- Order of the identifier within its day, from 0
    position INTEGER NOT NULL,

    -- Observance name and precedence class (NULL when the token has none)
    name TEXT NOT NULL,
    precedence INTEGER,

    PRIMARY KEY (year, date, position),
    FOREIGN KEY (year) REFERENCES liturgical_years(year) ON DELETE CASCADE
);

-- Identifier lookups within a year
CREATE INDEX IF NOT EXISTS idx_day_observances_name
    ON day_observances(year, name);
`

// migrationV2RulesFingerprint records the content hash of the rule tables
// each year was built from. Rows cached before it carry '' and never match,
// so they are rebuilt on first use.
const migrationV2RulesFingerprint = `
-- Migration 002: rule table fingerprint

ALTER TABLE liturgical_years ADD COLUMN rules_fingerprint TEXT NOT NULL DEFAULT '';
`
