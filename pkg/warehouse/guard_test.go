package warehouse

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckReadOnly(t *testing.T) {
	tests := []struct {
		name    string
		sql     string
		wantErr error
		anyErr  bool
	}{
		{name: "select", sql: "SELECT * FROM t"},
		{name: "lowercase select", sql: "select 1"},
		{name: "cte", sql: "WITH x AS (SELECT 1) SELECT * FROM x"},
		{name: "show", sql: "SHOW TABLES"},
		{name: "describe", sql: "DESCRIBE main.sales.orders"},
		{name: "trailing semicolon", sql: "SELECT 1;"},
		{name: "trailing semicolons and comment", sql: "SELECT 1;; -- done"},
		{name: "leading line comment", sql: "-- top customers\nSELECT * FROM customers"},
		{name: "leading block comment", sql: "/* generated */ SELECT 1"},
		{name: "semicolon in string", sql: "SELECT 'a;b' FROM t"},
		{name: "semicolon in comment", sql: "SELECT 1 /* ; DROP TABLE t */ FROM t"},
		{name: "insert", sql: "INSERT INTO t VALUES (1)", wantErr: ErrReadOnly},
		{name: "drop", sql: "DROP TABLE t", wantErr: ErrReadOnly},
		{name: "update hidden behind comment", sql: "/* SELECT */ UPDATE t SET x = 1", wantErr: ErrReadOnly},
		{name: "stacked statements", sql: "SELECT 1; DROP TABLE t", wantErr: ErrMultipleStatements},
		{name: "qualified keyword column", sql: "SELECT t.update, t.delete FROM t"},
		{name: "keyword in string", sql: "SELECT * FROM audit WHERE action = 'DELETE'"},
		{name: "keyword in quoted identifier", sql: `SELECT "insert" FROM t`},
		{name: "lone backslash in standard string", sql: `SELECT '\' AS slash FROM t`},
		{name: "positional parameter", sql: "SELECT * FROM t WHERE id = $1"},
		{name: "backslash escaped quote hides statement", sql: `SELECT E'\'' ; DELETE FROM t WHERE i = 1; --'`, wantErr: ErrMultipleStatements},
		{name: "mysql escaped quote hides statement", sql: `SELECT '\'' ; DELETE FROM t; -- '`, wantErr: ErrMultipleStatements},
		{name: "dollar quote hides statement", sql: `SELECT $$'$$ ; DELETE FROM t; --'`, wantErr: ErrMultipleStatements},
		{name: "nested comment hides statement", sql: `SELECT 1 /* /* */ ' */ ; DELETE FROM t; --'`, wantErr: ErrMultipleStatements},
		{name: "hash comment hides statement", sql: "SELECT 1 # '\n; DELETE FROM t", wantErr: ErrMultipleStatements},
		{name: "executable comment", sql: "SELECT 1 /*!50000 , (DELETE) */ FROM t", wantErr: ErrReadOnly},
		{name: "explain analyze delete", sql: "EXPLAIN ANALYZE DELETE FROM t", wantErr: ErrReadOnly},
		{name: "explain analyze options", sql: "EXPLAIN (ANALYZE, FORMAT JSON) SELECT 1", wantErr: ErrReadOnly},
		{name: "data-modifying cte", sql: "WITH d AS (DELETE FROM t RETURNING *) SELECT * FROM d", wantErr: ErrReadOnly},
		{name: "insert in cte", sql: "with x as (insert into t values (1) returning id) select id from x", wantErr: ErrReadOnly},
		{name: "select into", sql: "SELECT * INTO backup FROM t", wantErr: ErrReadOnly},
		{name: "empty", sql: "   ", anyErr: true},
		{name: "only comment", sql: "-- nothing here", anyErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckReadOnly(tt.sql)
			switch {
			case tt.wantErr != nil:
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			case tt.anyErr:
				assert.Error(t, err)
			default:
				assert.NoError(t, err)
			}
		})
	}
}

func TestQuote(t *testing.T) {
	assert.Equal(t, "`orders`", QuoteBacktick("orders"))
	assert.Equal(t, "`we``ird`", QuoteBacktick("we`ird"))
	assert.Equal(t, `"orders"`, QuoteDouble("orders"))
	assert.Equal(t, `"we""ird"`, QuoteDouble(`we"ird`))
	assert.Equal(t, "`main`.`sales`.`orders`", QualifyWith(QuoteBacktick, "main", "sales", "orders"))
	assert.Equal(t, `"sales"."orders"`, QualifyWith(QuoteDouble, "", "sales", "orders"))
}
