package excel

import (
	"math"
	"strconv"

	"neuropipe/domain/core"
	"neuropipe/internal/extract"
)

// Tracking column names. Time in seconds, coordinates in cm.
const (
	ColTrackTime = "t"
	ColTrackX    = "x"
	ColTrackY    = "y"
)

// LoadTracking reads a tracking trace (t, x, y columns) from an xlsx or
// csv file. Unparseable coordinates become NaN, matching frames the
// tracker lost.
func LoadTracking(path string) ([]extract.Sample, error) {
	data, err := NewDataReader(path).ReadData()
	if err != nil {
		return nil, err
	}

	for _, col := range []string{ColTrackTime, ColTrackX, ColTrackY} {
		found := false
		for _, h := range data.Headers {
			if h == col {
				found = true
				break
			}
		}
		if !found {
			return nil, core.NewColumnMissingError(col)
		}
	}

	samples := make([]extract.Sample, 0, len(data.Rows))
	for _, row := range data.Rows {
		t, err := strconv.ParseFloat(row[ColTrackTime], 64)
		if err != nil {
			// frames without a timestamp cannot be placed on the trace
			continue
		}
		samples = append(samples, extract.Sample{
			T: t,
			X: parseCoord(row[ColTrackX]),
			Y: parseCoord(row[ColTrackY]),
		})
	}
	return samples, nil
}

func parseCoord(raw string) float64 {
	if raw == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
