package warehouse

import "strings"

// QuoteBacktick quotes an identifier for Databricks/Spark SQL and MySQL.
func QuoteBacktick(ident string) string {
	return "`" + strings.ReplaceAll(ident, "`", "``") + "`"
}

// QuoteDouble quotes an identifier for ANSI dialects (DuckDB, PostgreSQL).
func QuoteDouble(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

// QualifyWith quotes each non-empty part and joins them with dots.
func QualifyWith(quote func(string) string, parts ...string) string {
	quoted := make([]string, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		quoted = append(quoted, quote(p))
	}
	return strings.Join(quoted, ".")
}
