package tdnet

import (
	"time"

	"github.com/rotisserie/eris"
)

// jst is the exchange wall clock. Japan has no DST, so a fixed offset
// is exact.
var jst = time.FixedZone("JST", 9*60*60)

// TodayJST returns today's date in Japan Standard Time as YYYYMMDD.
func TodayJST() string {
	return time.Now().In(jst).Format("20060102")
}

// CanonicalDate normalizes the accepted date spellings (YYYYMMDD,
// YYYY-MM-DD, YYYY/MM/DD) to YYYYMMDD, rejecting impossible dates.
func CanonicalDate(s string) (string, error) {
	for _, layout := range []string{"20060102", "2006-01-02", "2006/01/02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("20060102"), nil
		}
	}
	return "", eris.Errorf("tdnet: invalid date %q (want YYYYMMDD, YYYY-MM-DD, or YYYY/MM/DD)", s)
}
