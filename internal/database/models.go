package database

import (
	"database/sql"
	"time"
)

// RulesVersion identifies the rule tables a year was built from.
type RulesVersion struct {
	Source      string // file path or "embedded:..."
	Fingerprint string // content hash; cache lookups match on it
}

// YearSummary describes a cached year without its days.
type YearSummary struct {
	Year             int        `json:"year"`
	DayCount         int        `json:"day_count"`
	RulesSource      string     `json:"rules_source"`
	RulesFingerprint string     `json:"rules_fingerprint"`
	BuiltAt          *time.Time `json:"built_at,omitempty"`
}

// parseTimestamp parses a timestamp from SQLite TEXT format.
// Tries multiple formats and returns nil if parsing fails.
func parseTimestamp(ns sql.NullString) *time.Time {
	if !ns.Valid || ns.String == "" {
		return nil
	}

	// Try RFC3339 format first (with timezone)
	t, err := time.Parse(time.RFC3339, ns.String)
	if err == nil {
		return &t
	}

	// Try SQLite datetime format (no timezone)
	t, err = time.Parse("2006-01-02 15:04:05", ns.String)
	if err == nil {
		return &t
	}

	return nil
}
