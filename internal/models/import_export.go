package models

// ImportRowError records one skipped row of a template import. A bad row is
// collected here and never aborts the remaining rows.
type ImportRowError struct {
	Row   int    `json:"row"`
	Error string `json:"error"`
}

// TemplateExportColumns is the fixed tabular column order for both import and
// export. Changing it breaks round-trip compatibility with previously
// exported files.
var TemplateExportColumns = []string{"name", "description", "max_points", "category"}
