package service

import (
	"strings"

	"github.com/leapstack-labs/queryforge/pkg/core"
)

// TableInput is a table selection as the dashboard sends it.
// Some screens send "schema" instead of "schema_name"; both are accepted.
type TableInput struct {
	Catalog    string   `json:"catalog"`
	SchemaName string   `json:"schema_name"`
	Schema     string   `json:"schema,omitempty"`
	Table      string   `json:"table"`
	Columns    []string `json:"columns"`
}

// Selection normalises the input.
func (t TableInput) Selection() core.TableSelection {
	schema := t.SchemaName
	if schema == "" {
		schema = t.Schema
	}
	return core.TableSelection{
		TableRef: core.TableRef{
			Catalog: strings.TrimSpace(t.Catalog),
			Schema:  strings.TrimSpace(schema),
			Table:   strings.TrimSpace(t.Table),
		},
		Columns: t.Columns,
	}
}

func (t TableInput) isZero() bool {
	return t.Catalog == "" && t.SchemaName == "" && t.Schema == "" && t.Table == ""
}

func validateTable(field string, t core.TableSelection) error {
	switch {
	case t.Catalog == "":
		return invalid(field+".catalog", "is required")
	case t.Schema == "":
		return invalid(field+".schema_name", "is required")
	case t.Table == "":
		return invalid(field+".table", "is required")
	}
	return nil
}

// SuggestionRequest asks for business logic ideas about a table.
type SuggestionRequest struct {
	TableInput
	ModelID          string       `json:"model_id"`
	AdditionalTables []TableInput `json:"additional_tables"`
}

// SuggestionResponse carries the parsed suggestions.
type SuggestionResponse struct {
	Suggestions []string `json:"suggestions"`
	ModelUsed   string   `json:"model_used"`
}

// JoinRequest asks for join conditions between two or more tables.
type JoinRequest struct {
	Tables  []TableInput `json:"tables"`
	ModelID string       `json:"model_id"`
}

// JoinResponse carries the proposed join conditions.
type JoinResponse struct {
	JoinCondition string `json:"join_condition"`
	ModelUsed     string `json:"model_used"`
}

// GenerateSQLRequest asks for a query. Either the single table fields or
// Tables must be set; Tables wins when both are.
type GenerateSQLRequest struct {
	TableInput
	Tables         []TableInput `json:"tables"`
	BusinessLogic  string       `json:"business_logic"`
	JoinConditions string       `json:"join_conditions"`
	ModelID        string       `json:"model_id"`
}

func (r GenerateSQLRequest) selections() []core.TableSelection {
	if len(r.Tables) > 0 {
		out := make([]core.TableSelection, len(r.Tables))
		for i, t := range r.Tables {
			out[i] = t.Selection()
		}
		return out
	}
	if r.TableInput.isZero() {
		return nil
	}
	return []core.TableSelection{r.TableInput.Selection()}
}

// GenerateSQLResponse is the generated query and its explanation.
type GenerateSQLResponse struct {
	SQLQuery    string `json:"sql_query"`
	Explanation string `json:"explanation"`
	ModelUsed   string `json:"model_used"`
}

// ExecuteRequest runs a statement against the warehouse.
type ExecuteRequest struct {
	SQLQuery string `json:"sql_query"`
}

// ExecuteResponse is a materialised result.
type ExecuteResponse struct {
	Columns   []string         `json:"columns"`
	Rows      []map[string]any `json:"rows"`
	RowCount  int              `json:"row_count"`
	Truncated bool             `json:"truncated,omitempty"`
}

// Warehouse states reported by WarehouseStatus.
const (
	WarehouseRunning = "RUNNING"
	WarehouseStopped = "STOPPED"
	WarehouseUnknown = "UNKNOWN"
)

// WarehouseStatus describes the configured warehouse.
type WarehouseStatus struct {
	WarehouseID   *string `json:"warehouse_id"`
	WarehouseName string  `json:"warehouse_name"`
	Status        string  `json:"status"`
	HTTPPath      string  `json:"http_path"`
	Error         string  `json:"error,omitempty"`
}
