package excel

// RawRowData maps column headers to raw cell values
type RawRowData map[string]string

// TableData contains the parsed file contents
type TableData struct {
	Headers []string
	Rows    []RawRowData
}
