package models

// RowError ties an import failure to the 1-based CSV row it came from.
type RowError struct {
	Row   int    `json:"row"`
	Error string `json:"error"`
}

// RowWarning records a repair the forgiving CSV parser made (truncated extra
// columns, patched quotes) without rejecting the row.
type RowWarning struct {
	Row     int    `json:"row"`
	Warning string `json:"warning"`
}

// BulkImportValidation is the dry-run report: what an import would do without
// inserting anything.
type BulkImportValidation struct {
	TotalRows       int          `json:"total_rows"`
	ValidRows       int          `json:"valid_rows"`
	InvalidRows     int          `json:"invalid_rows"`
	DuplicateRows   int          `json:"duplicate_rows"`
	DefaultsApplied int          `json:"defaults_applied"`
	Errors          []RowError   `json:"errors"`
	Warnings        []RowWarning `json:"warnings"`
}

// BulkImportResult is the aggregate outcome of a completed import.
type BulkImportResult struct {
	Processed       int          `json:"processed"`
	Succeeded       int          `json:"succeeded"`
	Failed          int          `json:"failed"`
	DuplicatesFound int          `json:"duplicates_found"`
	DefaultsApplied int          `json:"defaults_applied"`
	Errors          []RowError   `json:"errors"`
	Warnings        []RowWarning `json:"warnings"`
	Message         string       `json:"message"`
}
