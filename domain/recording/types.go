package recording

import (
	"fmt"
	"math"
)

// SessionID identifies one recording day of experimental data collection.
type SessionID string

// ArenaType is the categorical label for the physical apparatus during a
// recording. The empty string means the label was never assigned.
type ArenaType string

// Canonical column names in the persisted table.
const (
	ColSessionID = "session_id"
	ColArenaType = "arena_type"
	ColMUARate   = "mua_rate"
	ColTimeMin   = "time_min"
	ColMUAZScore = "mua_zscore"
)

// Record is one per-timepoint observation. Missing numeric values are NaN.
type Record struct {
	SessionID SessionID
	ArenaType ArenaType
	MUARate   float64 // mean multi-unit-activity rate, NaN = missing
	TimeMin   float64 // minutes since session start
	MUAZScore float64 // derived, NaN until computed

	// Extra carries covariate columns not interpreted by the pipeline,
	// preserved verbatim across load/save.
	Extra map[string]string
}

// GroupKey is the composite normalization key. A struct key rather than a
// joined string, so session names containing the separator cannot collide.
type GroupKey struct {
	Session SessionID
	Arena   ArenaType
}

func (k GroupKey) String() string {
	return fmt.Sprintf("%s/%s", k.Session, k.Arena)
}

// HasArena reports whether the record carries an arena label. Records
// without one are permanently excluded from grouping.
func (r Record) HasArena() bool {
	return r.ArenaType != ""
}

// Key returns the normalization group key. ok is false for records with an
// unset arena type.
func (r Record) Key() (GroupKey, bool) {
	if !r.HasArena() {
		return GroupKey{}, false
	}
	return GroupKey{Session: r.SessionID, Arena: r.ArenaType}, true
}

// HasRate reports whether the MUA rate is present.
func (r Record) HasRate() bool {
	return !math.IsNaN(r.MUARate)
}

// HasScore reports whether the derived z-score has been computed.
func (r Record) HasScore() bool {
	return !math.IsNaN(r.MUAZScore)
}
