package xbrl

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Value is one normalized fact value, either numeric or textual.
// Textual values cover normalized dates and free-form strings such as
// document names.
type Value struct {
	Number  float64
	Text    string
	Numeric bool
}

// NumberValue wraps a float as a Value.
func NumberValue(f float64) Value { return Value{Number: f, Numeric: true} }

// TextValue wraps a string as a Value.
func TextValue(s string) Value { return Value{Text: s} }

// IsEmpty reports whether the value carries no content. Numeric values
// are never empty; zero is a real observation.
func (v Value) IsEmpty() bool { return !v.Numeric && v.Text == "" }

// String renders the value for flat output. Numbers drop trailing
// zeros and never use exponent notation.
func (v Value) String() string {
	if v.Numeric {
		return strconv.FormatFloat(v.Number, 'f', -1, 64)
	}
	return v.Text
}

// MarshalJSON encodes numeric values as JSON numbers and textual
// values as JSON strings.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.Numeric {
		return json.Marshal(v.Number)
	}
	return json.Marshal(v.Text)
}

// UnmarshalJSON accepts either a JSON number or a JSON string.
func (v *Value) UnmarshalJSON(data []byte) error {
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*v = NumberValue(f)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*v = TextValue(s)
	return nil
}

// ParseNumber converts raw tagged text to a number. Thousands
// separators are stripped; empty text and the half- and full-width
// dash placeholders mean "no value", not zero. A sign attribute of
// "-" is authoritative and forces a negative result regardless of any
// minus sign in the text itself. Any parse failure yields absent.
func ParseNumber(text, sign string) (float64, bool) {
	s := strings.ReplaceAll(strings.TrimSpace(text), ",", "")
	if s == "" || s == "－" || s == "-" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	if sign == "-" {
		f = -math.Abs(f)
	}
	return f, true
}

var localizedDateRe = regexp.MustCompile(`^(\d{4})年(\d{1,2})月(\d{1,2})日`)

// dateLayouts are tried in order after the fixed-shape checks. The
// unpadded layout elements accept both "8" and "08".
var dateLayouts = []string{"2006/1/2", "2006.1.2", "2006-1-2", "1/2/2006"}

// NormalizeDate converts heterogeneous date text to ISO yyyy-mm-dd.
// Full-width digits and punctuation are folded to half-width first.
// Accepted shapes, in order: already-ISO, compact yyyymmdd, the
// localized year-month-day form, then a short list of delimited
// layouts. Unrecognized input comes back normalized but unconverted
// so callers can tell conversion did not happen.
func NormalizeDate(raw string) string {
	if raw == "" {
		return ""
	}
	s := norm.NFKC.String(strings.TrimSpace(raw))
	if len(s) == 10 && strings.Count(s, "-") == 2 {
		return s
	}
	if len(s) == 8 && allDigits(s) {
		return s[:4] + "-" + s[4:6] + "-" + s[6:8]
	}
	if m := localizedDateRe.FindStringSubmatch(s); m != nil {
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		return fmt.Sprintf("%s-%02d-%02d", m[1], month, day)
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return s
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// stripSpace removes every whitespace rune, including the ideographic
// space used as filler inside tagged issuer codes.
func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
