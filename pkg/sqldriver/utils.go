package sqldriver

import (
	"strconv"
	"strings"
	"unicode"
)

// rewriteMarkers adapts "?" markers to drivers that reject them. Only
// go-mssqldb does: it expects ordinal @pN markers, which still bind
// positionally. Question marks inside quoted strings are left alone.
func rewriteMarkers(query, driverName string) string {
	if driverName != "sqlserver" || !strings.ContainsRune(query, '?') {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 16)

	position := 0
	inString := false
	for _, r := range query {
		switch {
		case r == '\'':
			inString = !inString
			b.WriteRune(r)
		case r == '?' && !inString:
			position++
			b.WriteString("@p")
			b.WriteString(strconv.Itoa(position))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// splitStatements cuts a DDL script on semicolons. Semicolons inside
// quoted strings, dollar-quoted bodies ($$ or $tag$) and BEGIN...END
// blocks (trigger bodies) do not split; -- comments are dropped.
func splitStatements(script string) []string {
	var statements []string
	var current strings.Builder
	var word strings.Builder

	depth := 0
	inString := false
	inComment := false

	flushWord := func() {
		switch strings.ToUpper(word.String()) {
		case "BEGIN", "CASE":
			depth++
		case "END":
			if depth > 0 {
				depth--
			}
		}
		word.Reset()
	}

	emit := func() {
		if statement := strings.TrimSpace(current.String()); statement != "" {
			statements = append(statements, statement)
		}
		current.Reset()
	}

	runes := []rune(script)
	for i := 0; i < len(runes); i++ {
		r := runes[i]

		if inComment {
			if r == '\n' {
				inComment = false
				current.WriteRune(r)
			}
			continue
		}
		if inString {
			current.WriteRune(r)
			if r == '\'' {
				inString = false
			}
			continue
		}

		switch {
		case r == '\'':
			flushWord()
			inString = true
			current.WriteRune(r)

		case r == '$':
			flushWord()
			if n := dollarQuoteTag(runes, i); n > 0 {
				tag := runes[i : i+n]
				end := i + n
				for end < len(runes) && !matchesAt(runes, tag, end) {
					end++
				}
				if end < len(runes) {
					end += n
				}
				current.WriteString(string(runes[i:end]))
				i = end - 1
			} else {
				current.WriteRune(r)
			}

		case r == '-' && i+1 < len(runes) && runes[i+1] == '-':
			flushWord()
			inComment = true
			i++

		case r == ';':
			flushWord()
			if depth == 0 {
				emit()
			} else {
				current.WriteRune(r)
			}

		case unicode.IsLetter(r) || r == '_':
			word.WriteRune(r)
			current.WriteRune(r)

		default:
			flushWord()
			current.WriteRune(r)
		}
	}
	flushWord()
	emit()

	return statements
}

// dollarQuoteTag returns the length in runes of the dollar-quote tag
// opening at position i ($$, $body$, ...), or 0 when there is none.
func dollarQuoteTag(runes []rune, i int) int {
	j := i + 1
	for j < len(runes) && (unicode.IsLetter(runes[j]) || unicode.IsDigit(runes[j]) || runes[j] == '_') {
		j++
	}
	if j < len(runes) && runes[j] == '$' {
		return j - i + 1
	}
	return 0
}

// matchesAt reports whether needle occurs in runes at position i.
func matchesAt(runes, needle []rune, i int) bool {
	if i+len(needle) > len(runes) {
		return false
	}
	for k, r := range needle {
		if runes[i+k] != r {
			return false
		}
	}
	return true
}
