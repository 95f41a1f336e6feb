package cob

import (
	"strconv"
	"strings"
)

// ParsedField is the best-effort extraction of a single reply field: the raw
// text after the field token, plus its numeric coercion when one succeeded.
type ParsedField struct {
	Raw      string
	Number   float64
	IsNumber bool
}

// ParsedReply maps field names to parsed fields. Absence of a key means the
// field never appeared in the reply; callers decide the fallback per field.
type ParsedReply map[string]ParsedField

// Text returns the raw value for a field and whether it was present.
func (r ParsedReply) Text(field string) (string, bool) {
	f, ok := r[field]
	return f.Raw, ok
}

// Amount returns the numeric value for a field. ok is false when the field
// was absent, failed numeric coercion, or is negative.
func (r ParsedReply) Amount(field string) (float64, bool) {
	f, ok := r[field]
	if !ok || !f.IsNumber || f.Number < 0 {
		return 0, false
	}
	return f.Number, true
}

// ParseReply scans a reasoning-service reply line by line for the requested
// fields. A line matches field F when it contains the literal token "F:"
// (case-sensitive); when a field appears on multiple lines the last match
// wins. Numeric coercion strips "$" and grouping commas first; a failed
// coercion leaves the field present with only its raw text. ParseReply never
// fails: malformed input simply yields fewer fields.
func ParseReply(text string, fields []string) ParsedReply {
	reply := make(ParsedReply, len(fields))
	for _, line := range strings.Split(text, "\n") {
		for _, field := range fields {
			token := field + ":"
			idx := strings.Index(line, token)
			if idx < 0 {
				continue
			}
			raw := strings.TrimSpace(line[idx+len(token):])
			pf := ParsedField{Raw: raw}
			if n, err := strconv.ParseFloat(cleanNumber(raw), 64); err == nil {
				pf.Number = n
				pf.IsNumber = true
			}
			reply[field] = pf
		}
	}
	return reply
}

// cleanNumber strips currency and grouping characters so "$3,500.00 CAD"
// style values coerce. Trailing non-numeric tokens are dropped.
func cleanNumber(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, ' '); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimSuffix(s, "%")
	return s
}
