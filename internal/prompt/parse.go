package prompt

import (
	"encoding/json"
	"regexp"
	"strings"
)

const maxSuggestions = 5

var (
	fenceRe       = regexp.MustCompile("(?m)^[ \t]*```[a-zA-Z]*[ \t]*$")
	explanationRe = regexp.MustCompile(`(?i)(^|\n)[ \t>*#_]*explanation[*_]*\s*:[*_]*`)
	numberingRe   = regexp.MustCompile(`^\d+[.)]\s+`)
)

// stripFences removes markdown code fence lines.
func stripFences(text string) string {
	text = fenceRe.ReplaceAllString(text, "")
	text = strings.ReplaceAll(text, "```sql", "")
	text = strings.ReplaceAll(text, "```", "")
	return strings.TrimSpace(text)
}

// ParseSuggestions extracts suggestion strings from a model reply.
// A JSON string array is preferred. Otherwise non-bracket lines longer than
// ten characters are kept, with bullets and numbering trimmed, up to five.
func ParseSuggestions(text string) []string {
	cleaned := stripFences(text)

	var arr []string
	if err := json.Unmarshal([]byte(cleaned), &arr); err == nil {
		out := make([]string, 0, len(arr))
		for _, s := range arr {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		return out
	}

	if start, end := strings.Index(cleaned, "["), strings.LastIndex(cleaned, "]"); start >= 0 && end > start {
		if err := json.Unmarshal([]byte(cleaned[start:end+1]), &arr); err == nil && len(arr) > 0 {
			return arr
		}
	}

	out := []string{}
	for _, line := range strings.Split(cleaned, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "[") || strings.HasSuffix(line, "]") {
			continue
		}
		line = strings.Trim(line, "- ")
		line = numberingRe.ReplaceAllString(line, "")
		line = strings.Trim(strings.TrimSpace(line), `",`)
		if len(line) > 10 {
			out = append(out, line)
		}
		if len(out) == maxSuggestions {
			break
		}
	}
	return out
}

// ParseSQL splits a reply into the SQL statement and its explanation.
func ParseSQL(text string) (sql, explanation string) {
	body := text
	if loc := explanationRe.FindStringIndex(body); loc != nil {
		explanation = strings.TrimSpace(body[loc[1]:])
		body = body[:loc[0]]
	}
	sql = stripFences(body)
	explanation = stripFences(explanation)
	return sql, explanation
}

// ParseJoinCondition cleans a join-condition reply.
func ParseJoinCondition(text string) string {
	return stripFences(text)
}
