package tdnet

import "strings"

// Filter selects which disclosures a run operates on.
type Filter string

const (
	// FilterAll passes every record through.
	FilterAll Filter = "all"
	// FilterEarnings keeps earnings reports (決算短信), excluding REIT
	// filings and correction releases.
	FilterEarnings Filter = "kessan"
	// FilterForecast keeps earnings forecasts and forecast revisions.
	FilterForecast Filter = "gyoseki"
)

// Keyword tables are data, not logic, so they can be tested and extended
// without touching the filter.
var (
	earningsKeyword = "決算短信"

	reitKeywords = []string{"ＲＥＩＴ", "リート", "REIT"}

	correctionKeywords = []string{
		"訂正", "修正", "データ訂正", "数値データ訂正",
		"一部訂正", "内容訂正", "記載内容訂正",
	}

	forecastKeywords = []string{"業績予想", "業績の修正"}
)

// Valid reports whether f names a known filter.
func (f Filter) Valid() bool {
	switch f {
	case FilterAll, FilterEarnings, FilterForecast:
		return true
	}
	return false
}

// Apply returns the records matching the filter, in input order.
func (f Filter) Apply(records []Disclosure) []Disclosure {
	switch f {
	case FilterEarnings:
		var out []Disclosure
		for _, r := range records {
			if matchesEarnings(r.Title) {
				out = append(out, r)
			}
		}
		return out
	case FilterForecast:
		var out []Disclosure
		for _, r := range records {
			if containsAny(r.Title, forecastKeywords) {
				out = append(out, r)
			}
		}
		return out
	default:
		return records
	}
}

func matchesEarnings(title string) bool {
	if !strings.Contains(title, earningsKeyword) {
		return false
	}
	if containsAny(title, reitKeywords) {
		return false
	}
	return !containsAny(title, correctionKeywords)
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
