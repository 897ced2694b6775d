package warehouse

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// ErrReadOnly is returned when a statement would modify the warehouse.
var ErrReadOnly = errors.New("only read-only statements may be executed")

// ErrMultipleStatements is returned when more than one statement is submitted.
var ErrMultipleStatements = errors.New("multiple statements are not allowed")

// readOnlyKeywords are the statement prefixes accepted by CheckReadOnly.
var readOnlyKeywords = map[string]bool{
	"SELECT":   true,
	"WITH":     true,
	"SHOW":     true,
	"DESCRIBE": true,
	"DESC":     true,
	"EXPLAIN":  true,
	"VALUES":   true,
}

// writeKeywords may not appear anywhere outside quotes or comments, which
// rules out data-modifying CTEs and EXPLAIN ANALYZE.
var writeKeywords = map[string]bool{
	"INSERT":   true,
	"UPDATE":   true,
	"DELETE":   true,
	"MERGE":    true,
	"UPSERT":   true,
	"INTO":     true,
	"DROP":     true,
	"CREATE":   true,
	"ALTER":    true,
	"TRUNCATE": true,
	"GRANT":    true,
	"REVOKE":   true,
	"COPY":     true,
	"ATTACH":   true,
	"DETACH":   true,
	"INSTALL":  true,
	"VACUUM":   true,
	"CALL":     true,
	"ANALYZE":  true,
	"ANALYSE":  true,
}

// CheckReadOnly rejects anything but a single read-only statement.
// A trailing semicolon is allowed.
//
// The statement is lexed once per dialect quirk set, so a quote or comment
// that one engine reads differently cannot hide a second statement or a
// write keyword.
func CheckReadOnly(sqlStr string) error {
	body := stripLeadingComments(sqlStr)
	if body == "" {
		return fmt.Errorf("empty statement")
	}

	keyword := leadingKeyword(body)
	if !readOnlyKeywords[keyword] {
		return fmt.Errorf("%w: statement starts with %q", ErrReadOnly, keyword)
	}

	for _, d := range dialects() {
		res := scan(body, d)
		if res.stacked {
			return ErrMultipleStatements
		}
		for _, w := range res.words {
			if writeKeywords[w] {
				return fmt.Errorf("%w: %s is not allowed", ErrReadOnly, w)
			}
		}
	}
	return nil
}

func stripLeadingComments(s string) string {
	for {
		s = strings.TrimLeftFunc(s, unicode.IsSpace)
		switch {
		case strings.HasPrefix(s, "--"):
			nl := strings.IndexByte(s, '\n')
			if nl < 0 {
				return ""
			}
			s = s[nl+1:]
		case strings.HasPrefix(s, "/*"):
			end := strings.Index(s, "*/")
			if end < 0 {
				return ""
			}
			s = s[end+2:]
		default:
			return s
		}
	}
}

func leadingKeyword(s string) string {
	end := strings.IndexFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	if end < 0 {
		end = len(s)
	}
	return strings.ToUpper(s[:end])
}

// dialect selects the lexical rules scan applies.
type dialect struct {
	backslash bool // backslash escapes inside quotes (MySQL, Postgres E'')
	dollar    bool // $tag$ quoted strings (Postgres, DuckDB)
	nested    bool // nested block comments (Postgres)
	hash      bool // # line comments and executed /*! */ comments (MySQL)
}

// dialects returns every combination of lexical rules.
func dialects() []dialect {
	out := make([]dialect, 0, 16)
	for bits := 0; bits < 16; bits++ {
		out = append(out, dialect{
			backslash: bits&1 != 0,
			dollar:    bits&2 != 0,
			nested:    bits&4 != 0,
			hash:      bits&8 != 0,
		})
	}
	return out
}

type scanResult struct {
	// words holds upper-cased bare words, skipping those qualified by a dot.
	words []string
	// stacked is set when a token follows a statement-ending semicolon.
	stacked bool
}

func scan(s string, d dialect) scanResult {
	var res scanResult
	ended := false
	token := func() {
		if ended {
			res.stacked = true
		}
	}

	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v':
			i++
		case strings.HasPrefix(s[i:], "--"):
			i = skipLine(s, i)
		case c == '#' && d.hash:
			i = skipLine(s, i)
		case d.hash && strings.HasPrefix(s[i:], "/*!"):
			i += 3
		case d.hash && strings.HasPrefix(s[i:], "*/"):
			i += 2
		case strings.HasPrefix(s[i:], "/*"):
			i = skipBlock(s, i, d.nested)
		case c == '\'' || c == '"' || c == '`':
			token()
			i = skipQuoted(s, i, c, d.backslash && c != '`')
		case c == '$' && d.dollar:
			token()
			tag, ok := dollarTag(s[i:])
			if !ok {
				i++
				continue
			}
			end := strings.Index(s[i+len(tag):], tag)
			if end < 0 {
				i = len(s)
				continue
			}
			i += 2*len(tag) + end
		case c == ';':
			ended = true
			i++
		case isWordStart(c):
			token()
			j := i + 1
			for j < len(s) && isWordByte(s[j]) {
				j++
			}
			if i == 0 || s[i-1] != '.' {
				res.words = append(res.words, strings.ToUpper(s[i:j]))
			}
			i = j
		default:
			token()
			i++
		}
	}
	return res
}

func skipLine(s string, i int) int {
	nl := strings.IndexByte(s[i:], '\n')
	if nl < 0 {
		return len(s)
	}
	return i + nl + 1
}

func skipBlock(s string, i int, nested bool) int {
	depth := 0
	for j := i; j < len(s); {
		switch {
		case strings.HasPrefix(s[j:], "/*") && (nested || depth == 0):
			depth++
			j += 2
		case strings.HasPrefix(s[j:], "*/"):
			depth--
			j += 2
			if depth == 0 {
				return j
			}
		default:
			j++
		}
	}
	return len(s)
}

func skipQuoted(s string, i int, quote byte, backslash bool) int {
	for j := i + 1; j < len(s); j++ {
		switch {
		case backslash && s[j] == '\\':
			j++
		case s[j] == quote:
			return j + 1
		}
	}
	return len(s)
}

// dollarTag returns the opening $tag$ at the start of s.
func dollarTag(s string) (string, bool) {
	j := 1
	for j < len(s) && s[j] != '$' {
		c := s[j]
		if !isWordStart(c) && !(j > 1 && c >= '0' && c <= '9') {
			return "", false
		}
		j++
	}
	if j >= len(s) {
		return "", false
	}
	return s[:j+1], true
}

func isWordStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c >= 0x80
}

func isWordByte(c byte) bool {
	return isWordStart(c) || (c >= '0' && c <= '9') || c == '$'
}
