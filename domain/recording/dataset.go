package recording

import (
	"sort"

	"neuropipe/domain/core"
)

// Dataset is the in-memory table: one Record per row plus the original
// header order so covariate columns round-trip unchanged.
type Dataset struct {
	Path    string
	Headers []string
	Records []Record
}

// Validate ensures the dataset is usable for analysis.
func (d *Dataset) Validate() error {
	if len(d.Records) == 0 {
		return core.ErrDatasetEmpty
	}
	return nil
}

// RowCount returns the number of records.
func (d *Dataset) RowCount() int {
	return len(d.Records)
}

// GroupIndex partitions row indices by (session, arena) key. Rows with an
// unset arena type are not represented.
func (d *Dataset) GroupIndex() map[GroupKey][]int {
	groups := make(map[GroupKey][]int)
	for i, rec := range d.Records {
		key, ok := rec.Key()
		if !ok {
			continue
		}
		groups[key] = append(groups[key], i)
	}
	return groups
}

// SortedGroupKeys returns the group keys in deterministic order, session
// first then arena.
func SortedGroupKeys(groups map[GroupKey][]int) []GroupKey {
	keys := make([]GroupKey, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Session != keys[j].Session {
			return keys[i].Session < keys[j].Session
		}
		return keys[i].Arena < keys[j].Arena
	})
	return keys
}

// Sessions returns the distinct session IDs in sorted order.
func (d *Dataset) Sessions() []SessionID {
	seen := make(map[SessionID]bool)
	var out []SessionID
	for _, rec := range d.Records {
		if !seen[rec.SessionID] {
			seen[rec.SessionID] = true
			out = append(out, rec.SessionID)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// SessionRows returns the row indices belonging to one session, in table
// order.
func (d *Dataset) SessionRows(session SessionID) []int {
	var rows []int
	for i, rec := range d.Records {
		if rec.SessionID == session {
			rows = append(rows, i)
		}
	}
	return rows
}

// ArenaRows returns the row indices carrying the given arena label, in
// table order.
func (d *Dataset) ArenaRows(arena ArenaType) []int {
	var rows []int
	for i, rec := range d.Records {
		if rec.ArenaType == arena {
			rows = append(rows, i)
		}
	}
	return rows
}
