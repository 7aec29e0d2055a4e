package invoice

import (
	"io"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/papayaah/invoicees/internal/rawjson"
)

func orDiscard(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return logger
}

// truthy follows the loose truthiness model output is written against:
// nil, "", 0, NaN and false are empty; objects and arrays are not.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case float64:
		return t != 0 && !math.IsNaN(t)
	case bool:
		return t
	case *rawjson.Object:
		return t != nil
	default:
		return true
	}
}

// toNumber coerces v to a finite number. Anything that cannot be read as a
// number becomes 0.
func toNumber(v any) float64 {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		f = parsed
	case bool:
		if t {
			return 1
		}
		return 0
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// scalarText renders a non-container value the way it would print in text.
func scalarText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return formatNumber(t)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

// toText coerces an update value into a snapshot text field. Containers are
// flattened into "Key: value" lines. ok is false for nil, which callers treat
// as an absent key.
func toText(key string, v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case *rawjson.Object, []any:
		return strings.Join(appendEntry(nil, key, t, 1), "\n"), true
	default:
		return scalarText(t), true
	}
}

// appendEntries adds one line per entry of obj, descending depth more levels
// into nested objects.
func appendEntries(lines []string, obj *rawjson.Object, depth int) []string {
	for _, k := range obj.Keys() {
		v, _ := obj.Get(k)
		lines = appendEntry(lines, k, v, depth)
	}
	return lines
}

func appendEntry(lines []string, key string, v any, depth int) []string {
	switch t := v.(type) {
	case *rawjson.Object:
		if t == nil || depth < 0 {
			return lines
		}
		return appendEntries(lines, t, depth-1)
	case []any:
		for _, e := range t {
			lines = appendEntry(lines, key, e, depth)
		}
		return lines
	default:
		text := scalarText(v)
		if strings.TrimSpace(text) == "" {
			return lines
		}
		return append(lines, humanizeKey(key)+": "+text)
	}
}

// humanizeKey turns a field name into a label: "venmoHandle" and
// "venmo_handle" both become "Venmo handle". All-caps words such as IBAN keep
// their case.
func humanizeKey(key string) string {
	runes := []rune(key)
	var words []string
	var cur []rune
	flush := func() {
		if len(cur) > 0 {
			words = append(words, string(cur))
			cur = cur[:0]
		}
	}
	for i, r := range runes {
		switch {
		case r == '_' || r == '-' || unicode.IsSpace(r):
			flush()
		case unicode.IsUpper(r):
			afterLower := i > 0 && (unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1]))
			startsWord := i > 0 && unicode.IsUpper(runes[i-1]) && i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if afterLower || startsWord {
				flush()
			}
			cur = append(cur, r)
		default:
			cur = append(cur, r)
		}
	}
	flush()

	for i, w := range words {
		if !isAcronym(w) {
			words[i] = strings.ToLower(w)
		}
	}
	label := strings.Join(words, " ")
	if label == "" {
		return label
	}
	first := []rune(label)
	first[0] = unicode.ToUpper(first[0])
	return string(first)
}

func isAcronym(w string) bool {
	letters := 0
	for _, r := range w {
		if unicode.IsLetter(r) {
			if !unicode.IsUpper(r) {
				return false
			}
			letters++
		}
	}
	return letters > 1
}
