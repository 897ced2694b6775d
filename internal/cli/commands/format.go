package commands

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/queryforge/internal/analytics"
	"github.com/leapstack-labs/queryforge/pkg/core"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

// eventTitle renders an event type for display: sql_generation -> "SQL Generation".
func eventTitle(t core.EventType) string {
	title := titleCaser.String(strings.ReplaceAll(string(t), "_", " "))
	return strings.ReplaceAll(title, "Sql", "SQL")
}

// sessionSteps lists the workflow steps a session went through.
func sessionSteps(s analytics.QuerySession) string {
	var steps []string
	if s.BusinessLogicSuggestion != nil {
		steps = append(steps, eventTitle(core.EventBusinessLogicSuggestion))
	}
	if s.JoinConditionSuggestion != nil {
		steps = append(steps, eventTitle(core.EventJoinConditionSuggestion))
	}
	if s.SQLGeneration != nil {
		steps = append(steps, eventTitle(core.EventSQLGeneration))
	}
	if s.SQLExecution != nil {
		steps = append(steps, eventTitle(core.EventSQLExecution))
	}
	return strings.Join(steps, " → ")
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func formatPrice(p float64) string {
	return fmt.Sprintf("%.2f", p)
}

func formatCost(c float64) string {
	return fmt.Sprintf("$%.6f", c)
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if len([]rune(s)) <= n {
		return s
	}
	return string([]rune(s)[:n-1]) + "…"
}

func qualifiedTable(s analytics.QuerySession) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{s.Catalog, s.SchemaName, s.TableName} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ".")
}
