package prompt

import (
	"testing"

	"github.com/leapstack-labs/queryforge/pkg/core"
	"github.com/stretchr/testify/assert"
)

var (
	orders = core.TableSelection{
		TableRef: core.TableRef{Catalog: "main", Schema: "sales", Table: "orders"},
		Columns:  []string{"order_id", "customer_id", "amount"},
	}
	customers = core.TableSelection{
		TableRef: core.TableRef{Catalog: "main", Schema: "sales", Table: "customers"},
		Columns:  []string{"id", "region"},
	}
)

func TestBusinessLogicSuggestion(t *testing.T) {
	p := BusinessLogicSuggestion(orders, nil)
	assert.Equal(t, 300, p.MaxTokens)
	assert.InDelta(t, 0.7, p.Temperature, 1e-9)
	assert.Contains(t, p.System, "JSON array of strings")
	assert.Contains(t, p.User, "Table: main.sales.orders")
	assert.Contains(t, p.User, "Columns: order_id, customer_id, amount")
	assert.NotContains(t, p.User, "related tables")

	multi := BusinessLogicSuggestion(orders, []core.TableSelection{customers})
	assert.Contains(t, multi.User, "Related table 1: main.sales.customers")
	assert.Contains(t, multi.User, "combine information across the tables")
}

func TestJoinConditions(t *testing.T) {
	p := JoinConditions([]core.TableSelection{orders, customers})
	assert.InDelta(t, 0.2, p.Temperature, 1e-9)
	assert.Contains(t, p.User, "Table 1: main.sales.orders")
	assert.Contains(t, p.User, "Table 2: main.sales.customers")
}

func TestGenerateSQL(t *testing.T) {
	single := GenerateSQL([]core.TableSelection{orders}, "  total revenue by customer ", "")
	assert.Equal(t, 800, single.MaxTokens)
	assert.InDelta(t, 0.3, single.Temperature, 1e-9)
	assert.Contains(t, single.System, "Explanation:")
	assert.Contains(t, single.User, "Table: main.sales.orders")
	assert.Contains(t, single.User, "Business Logic:\ntotal revenue by customer\n")
	assert.NotContains(t, single.User, "Join Conditions")

	joined := GenerateSQL([]core.TableSelection{orders, customers}, "revenue by region", "orders.customer_id = customers.id")
	assert.Contains(t, joined.User, "Table 2: main.sales.customers")
	assert.Contains(t, joined.User, "Join Conditions:\norders.customer_id = customers.id")
	assert.Contains(t, joined.User, "Join the tables as needed.")
}

func TestParseSuggestions(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "json array",
			text: `["What is the total revenue per month?", "Which customers order most?"]`,
			want: []string{"What is the total revenue per month?", "Which customers order most?"},
		},
		{
			name: "fenced json",
			text: "```json\n[\"Top products by revenue\", \"Average order value\"]\n```",
			want: []string{"Top products by revenue", "Average order value"},
		},
		{
			name: "json inside prose",
			text: "Here you go:\n[\"Monthly churn rate by cohort\"]\nHope that helps",
			want: []string{"Monthly churn rate by cohort"},
		},
		{
			name: "bulleted lines",
			text: "- Revenue by region over time\n- Short\n1. Customers with declining orders\n",
			want: []string{"Revenue by region over time", "Customers with declining orders"},
		},
		{
			name: "capped at five",
			text: "- suggestion number one\n- suggestion number two\n- suggestion number three\n- suggestion number four\n- suggestion number five\n- suggestion number six",
			want: []string{"suggestion number one", "suggestion number two", "suggestion number three", "suggestion number four", "suggestion number five"},
		},
		{
			name: "nothing usable",
			text: "ok",
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseSuggestions(tt.text))
		})
	}
}

func TestParseSQL(t *testing.T) {
	tests := []struct {
		name        string
		text        string
		wantSQL     string
		wantExplain string
	}{
		{
			name:        "fenced with explanation",
			text:        "```sql\nSELECT customer_id, SUM(amount) FROM main.sales.orders GROUP BY customer_id\n```\nExplanation: Sums order amounts per customer.",
			wantSQL:     "SELECT customer_id, SUM(amount) FROM main.sales.orders GROUP BY customer_id",
			wantExplain: "Sums order amounts per customer.",
		},
		{
			name:        "bold explanation marker",
			text:        "```sql\nSELECT 1\n```\n\n**Explanation:** Returns one.",
			wantSQL:     "SELECT 1",
			wantExplain: "Returns one.",
		},
		{
			name:        "lowercase marker",
			text:        "SELECT 1\nexplanation: trivial",
			wantSQL:     "SELECT 1",
			wantExplain: "trivial",
		},
		{
			name:    "bare sql",
			text:    "  SELECT * FROM t  ",
			wantSQL: "SELECT * FROM t",
		},
		{
			name:    "inline fences",
			text:    "```sql SELECT 2 ```",
			wantSQL: "SELECT 2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, explanation := ParseSQL(tt.text)
			assert.Equal(t, tt.wantSQL, sql)
			assert.Equal(t, tt.wantExplain, explanation)
		})
	}
}

func TestParseJoinCondition(t *testing.T) {
	assert.Equal(t, "a.id = b.a_id", ParseJoinCondition("```sql\na.id = b.a_id\n```"))
	assert.Equal(t, "a.id = b.a_id", ParseJoinCondition("  a.id = b.a_id\n"))
}
