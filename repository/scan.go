package repository

import (
	"database/sql"
	"fmt"
	"time"
)

// Timestamps are stored as RFC3339 UTC strings in TEXT columns so the
// same value round-trips regardless of driver time parsing.
const timeLayout = time.RFC3339Nano

func fmtTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func fmtTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return fmtTime(*t)
}

// timeParser converts stored TEXT timestamps, remembering the first
// failure so scan functions report a corrupted column instead of
// silently yielding the zero time.
type timeParser struct {
	err error
}

func (p *timeParser) parse(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err == nil {
		return t
	}
	// CURRENT_TIMESTAMP defaults use sqlite's own format.
	t, fallbackErr := time.Parse("2006-01-02 15:04:05", s)
	if fallbackErr != nil && p.err == nil {
		p.err = fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t
}

func (p *timeParser) parseNull(ns sql.NullString) *time.Time {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	t := p.parse(ns.String)
	return &t
}

func floatPtr(nf sql.NullFloat64) *float64 {
	if !nf.Valid {
		return nil
	}
	v := nf.Float64
	return &v
}
