package database

import (
	"fmt"
	"strings"
)

// AutoincrementParameter is the reserved placeholder name marking the
// primary-key slot of an INSERT. It must be the first placeholder of its
// query and it never binds a parameter; each dialect expands it to its
// own way of letting the engine assign the key.
const AutoincrementParameter = "AUTOINCREMENT"

type queryToken struct {
	literal   string
	parameter string
}

// Query is a SQL template with ${name} placeholders, parsed once and
// formatted per dialect by a ParameterFormatter.
type Query struct {
	sql      string
	tokens   []queryToken
	names    map[string]struct{}
	types    map[string]Type
	readOnly bool
}

// NewQuery parses the template. Placeholder names are limited to ASCII
// letters, digits and underscores; an unterminated or empty placeholder
// fails with ErrBadQueryTemplate.
func NewQuery(sql string) (*Query, error) {
	q := &Query{
		sql:   sql,
		names: make(map[string]struct{}),
		types: make(map[string]Type),
	}

	rest := sql
	for {
		start := strings.Index(rest, "${")
		if start < 0 {
			break
		}
		if start > 0 {
			q.tokens = append(q.tokens, queryToken{literal: rest[:start]})
		}
		rest = rest[start+2:]

		end := strings.IndexByte(rest, '}')
		if end < 0 {
			return nil, fmt.Errorf("%w: unterminated placeholder in %q", ErrBadQueryTemplate, sql)
		}
		name := rest[:end]
		if !isValidParameterName(name) {
			return nil, fmt.Errorf("%w: bad placeholder name %q", ErrBadQueryTemplate, name)
		}
		q.tokens = append(q.tokens, queryToken{parameter: name})
		q.names[name] = struct{}{}
		rest = rest[end+1:]
	}
	if rest != "" {
		q.tokens = append(q.tokens, queryToken{literal: rest})
	}

	return q, nil
}

func isValidParameterName(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		case c == '_':
		default:
			return false
		}
	}
	return true
}

// SQL returns the original template text.
func (q *Query) SQL() string {
	return q.sql
}

// SetReadOnly declares whether the query only reads data. Read-only
// transactions refuse statements that were not declared read-only.
func (q *Query) SetReadOnly(readOnly bool) {
	q.readOnly = readOnly
}

// IsReadOnly reports the read-only declaration.
func (q *Query) IsReadOnly() bool {
	return q.readOnly
}

// HasParameter reports whether the template contains the placeholder.
func (q *Query) HasParameter(name string) bool {
	_, ok := q.names[name]
	return ok
}

// SetType declares the type of a parameter ahead of formatting, for
// engines that precompile statements. Declaring a name absent from the
// template fails with ErrInexistentItem.
func (q *Query) SetType(name string, t Type) error {
	if !q.HasParameter(name) {
		return fmt.Errorf("%w: no parameter %q in query", ErrInexistentItem, name)
	}
	q.types[name] = t
	return nil
}

// Format walks the template left to right, invoking the formatter once
// per placeholder occurrence and splicing the returned fragments into
// the literal runs.
func (q *Query) Format(formatter ParameterFormatter) (string, error) {
	var sb strings.Builder
	for _, token := range q.tokens {
		if token.parameter == "" {
			sb.WriteString(token.literal)
			continue
		}
		declared := q.types[token.parameter]
		fragment, err := formatter.Format(token.parameter, declared)
		if err != nil {
			return "", err
		}
		sb.WriteString(fragment)
	}
	return sb.String(), nil
}
