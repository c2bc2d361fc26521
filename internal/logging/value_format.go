package logging

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"stagehand/internal/textutil"
)

// attrString renders v without quoting, for header fields.
func attrString(v slog.Value) string {
	return renderValue(v, false)
}

// formatValue renders v for a console field line. Strings that would be
// ambiguous unquoted are quoted, and names carrying fullwidth punctuation have
// those runes spelled out since they look identical to ASCII on a terminal.
func formatValue(v slog.Value) string {
	return renderValue(v, true)
}

func renderValue(v slog.Value, quote bool) string {
	v = v.Resolve()
	switch v.Kind() {
	case slog.KindBool:
		return strconv.FormatBool(v.Bool())
	case slog.KindInt64:
		return strconv.FormatInt(v.Int64(), 10)
	case slog.KindUint64:
		return strconv.FormatUint(v.Uint64(), 10)
	case slog.KindFloat64:
		return strconv.FormatFloat(v.Float64(), 'f', -1, 64)
	case slog.KindDuration:
		return roundDuration(v.Duration()).String()
	case slog.KindTime:
		return v.Time().Format(time.RFC3339)
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return renderString(err.Error(), quote)
		}
		return renderString(fmt.Sprint(v.Any()), quote)
	default:
		return renderString(v.String(), quote)
	}
}

func renderString(s string, quote bool) string {
	if !quote {
		return s
	}
	if textutil.HasWide(s) {
		return revealWide(s)
	}
	if needsQuotes(s) {
		return strconv.Quote(s)
	}
	return s
}

// revealWide quotes s with every fullwidth rune written as \uXXXX.
func revealWide(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch {
		case textutil.NarrowRune(r) != r:
			fmt.Fprintf(&b, `\u%04X`, r)
		case r == '"' || r == '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

func roundDuration(d time.Duration) time.Duration {
	switch {
	case d >= time.Second:
		return d.Round(time.Millisecond)
	case d >= time.Millisecond:
		return d.Round(time.Microsecond)
	default:
		return d
	}
}

func needsQuotes(s string) bool {
	if s == "" {
		return true
	}
	for _, r := range s {
		if r <= ' ' || r == '=' || r == '"' {
			return true
		}
	}
	return false
}
