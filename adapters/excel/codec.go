package excel

import (
	"math"
	"strconv"

	"neuropipe/domain/core"
	"neuropipe/domain/recording"
)

// Decode maps raw table rows onto recording records. The session, arena,
// rate, and time columns are interpreted; every other column is carried in
// Extra so it round-trips on save. Unparseable or empty numeric cells become
// NaN rather than errors.
func Decode(data *TableData, path string) (*recording.Dataset, error) {
	required := []string{recording.ColSessionID, recording.ColArenaType, recording.ColMUARate, recording.ColTimeMin}
	present := make(map[string]bool, len(data.Headers))
	for _, h := range data.Headers {
		present[h] = true
	}
	for _, col := range required {
		if !present[col] {
			return nil, core.NewColumnMissingError(col)
		}
	}

	ds := &recording.Dataset{
		Path:    path,
		Headers: append([]string(nil), data.Headers...),
		Records: make([]recording.Record, 0, len(data.Rows)),
	}

	for _, row := range data.Rows {
		rec := recording.Record{
			SessionID: recording.SessionID(row[recording.ColSessionID]),
			ArenaType: recording.ArenaType(row[recording.ColArenaType]),
			MUARate:   parseCell(row[recording.ColMUARate]),
			TimeMin:   parseCell(row[recording.ColTimeMin]),
			MUAZScore: parseCell(row[recording.ColMUAZScore]),
		}
		for _, h := range data.Headers {
			if isInterpreted(h) {
				continue
			}
			if rec.Extra == nil {
				rec.Extra = make(map[string]string)
			}
			rec.Extra[h] = row[h]
		}
		ds.Records = append(ds.Records, rec)
	}

	return ds, ds.Validate()
}

// Encode converts a dataset back to raw rows, preserving the original
// header order and appending the derived column when absent.
func Encode(ds *recording.Dataset) *TableData {
	headers := append([]string(nil), ds.Headers...)
	hasScore := false
	for _, h := range headers {
		if h == recording.ColMUAZScore {
			hasScore = true
		}
	}
	if !hasScore {
		headers = append(headers, recording.ColMUAZScore)
	}

	rows := make([]RawRowData, 0, len(ds.Records))
	for _, rec := range ds.Records {
		row := make(RawRowData, len(headers))
		for _, h := range headers {
			switch h {
			case recording.ColSessionID:
				row[h] = string(rec.SessionID)
			case recording.ColArenaType:
				row[h] = string(rec.ArenaType)
			case recording.ColMUARate:
				row[h] = formatCell(rec.MUARate)
			case recording.ColTimeMin:
				row[h] = formatCell(rec.TimeMin)
			case recording.ColMUAZScore:
				row[h] = formatCell(rec.MUAZScore)
			default:
				row[h] = rec.Extra[h]
			}
		}
		rows = append(rows, row)
	}

	return &TableData{Headers: headers, Rows: rows}
}

func isInterpreted(header string) bool {
	switch header {
	case recording.ColSessionID, recording.ColArenaType, recording.ColMUARate,
		recording.ColTimeMin, recording.ColMUAZScore:
		return true
	}
	return false
}

func parseCell(raw string) float64 {
	if raw == "" || raw == "NaN" || raw == "nan" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

func formatCell(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
