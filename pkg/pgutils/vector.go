// Package pgutils provides small Postgres-specific helpers: pgvector
// literal formatting, error-code introspection, and the identifier
// validator every dynamically generated SQL template relies on.
package pgutils

import (
	"strconv"
	"strings"
)

// FormatVector converts a float32 slice to the pgvector literal
// format, e.g. []float32{0.1, 0.2} -> "[0.1,0.2]".
func FormatVector(v []float32) string {
	if len(v) == 0 {
		return "[]"
	}

	var buf strings.Builder
	buf.Grow(len(v)*12 + 2)
	buf.WriteByte('[')
	for i, f := range v {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(strconv.FormatFloat(float64(f), 'f', -1, 32))
	}
	buf.WriteByte(']')
	return buf.String()
}
