// Package prompt builds the chat prompts QueryForge sends to models and
// parses their replies.
package prompt

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/queryforge/pkg/core"
)

// Prompt is a ready-to-send system+user pair with sampling settings.
type Prompt struct {
	System      string
	User        string
	MaxTokens   int
	Temperature float64
}

const suggestionSystem = `You are a helpful data analyst assistant. Generate 3-5 different business logic examples that could be useful for analyzing the given table and columns.
Each suggestion should be a clear, concise business question or analytical task.
Return ONLY a JSON array of strings, nothing else.`

const joinSystem = `You are an expert data engineer. Given several tables and their columns, propose the SQL join conditions that relate them.
Use fully qualified table names. Prefer equality joins on key-like columns with matching names or types.
Return ONLY the join conditions, one per line, such as: a.customer_id = b.id`

const sqlSystem = `You are an expert SQL query generator. Generate clean, efficient SQL queries based on the user's requirements.
Always return the SQL query inside a single ` + "```sql" + ` code block.
After the code block write a line starting with "Explanation:" followed by two or three sentences describing what the query does.`

// tableContext renders one table as the model sees it.
func tableContext(label string, t core.TableSelection) string {
	return fmt.Sprintf("%s: %s\nColumns: %s\n", label, t.QualifiedName(), strings.Join(t.Columns, ", "))
}

// BusinessLogicSuggestion asks for 3-5 analytical questions about primary.
// Additional tables are listed as extra context for join-aware questions.
func BusinessLogicSuggestion(primary core.TableSelection, additional []core.TableSelection) Prompt {
	var b strings.Builder
	b.WriteString("Based on this table information:\n\n")
	b.WriteString(tableContext("Table", primary))

	if len(additional) > 0 {
		b.WriteString("\nThe analysis may also join these related tables:\n")
		for i, t := range additional {
			b.WriteString(tableContext(fmt.Sprintf("Related table %d", i+1), t))
		}
	}

	b.WriteString("\nGenerate 3-5 different business logic examples that would be useful for this data.\n")
	if len(additional) > 0 {
		b.WriteString("Include examples that combine information across the tables.\n")
	}
	b.WriteString("Examples should be realistic analytical questions.\n\n")
	b.WriteString(`Return ONLY a JSON array of strings like: ["example 1", "example 2", "example 3"]`)

	return Prompt{System: suggestionSystem, User: b.String(), MaxTokens: 300, Temperature: 0.7}
}

// JoinConditions asks for the join predicates relating two or more tables.
func JoinConditions(tables []core.TableSelection) Prompt {
	var b strings.Builder
	b.WriteString("Suggest join conditions for these tables:\n\n")
	for i, t := range tables {
		b.WriteString(tableContext(fmt.Sprintf("Table %d", i+1), t))
		b.WriteString("\n")
	}
	b.WriteString("Return ONLY the join conditions, nothing else.")

	return Prompt{System: joinSystem, User: b.String(), MaxTokens: 300, Temperature: 0.2}
}

// GenerateSQL asks for a SELECT answering businessLogic over tables.
// joinConditions may be empty.
func GenerateSQL(tables []core.TableSelection, businessLogic, joinConditions string) Prompt {
	var b strings.Builder
	b.WriteString("Generate a SQL query for the following:\n\n")
	for i, t := range tables {
		label := "Table"
		if len(tables) > 1 {
			label = fmt.Sprintf("Table %d", i+1)
		}
		b.WriteString(tableContext(label, t))
	}

	if jc := strings.TrimSpace(joinConditions); jc != "" {
		b.WriteString("\nJoin Conditions:\n")
		b.WriteString(jc)
		b.WriteString("\n")
	}

	b.WriteString("\nBusiness Logic:\n")
	b.WriteString(strings.TrimSpace(businessLogic))
	b.WriteString("\n\nGenerate a SELECT query that addresses this business logic using the specified columns.")
	if len(tables) > 1 {
		b.WriteString(" Join the tables as needed.")
	}
	b.WriteString("\nUse fully qualified table names.")

	return Prompt{System: sqlSystem, User: b.String(), MaxTokens: 800, Temperature: 0.3}
}
