package core

import "strings"

// TableRef identifies a table in the catalog/schema/table hierarchy.
type TableRef struct {
	Catalog string `json:"catalog"`
	Schema  string `json:"schema_name"`
	Table   string `json:"table"`
}

// QualifiedName returns catalog.schema.table, skipping empty parts.
func (t TableRef) QualifiedName() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{t.Catalog, t.Schema, t.Table} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ".")
}

// IsComplete reports whether all three levels are set.
func (t TableRef) IsComplete() bool {
	return t.Catalog != "" && t.Schema != "" && t.Table != ""
}

// TableSelection is a table plus the columns a user picked from it.
type TableSelection struct {
	TableRef
	Columns []string `json:"columns"`
}

// ColumnInfo describes a warehouse column as returned by introspection.
type ColumnInfo struct {
	Name    string  `json:"name"`
	Type    string  `json:"type"`
	Comment *string `json:"comment"`
}
