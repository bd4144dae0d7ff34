// Package export renders assembled filing profiles and analysis
// reports as CSV, XLSX, and JSON output.
package export

import (
	"encoding/csv"
	"io"
	"os"
	"sort"

	"github.com/rotisserie/eris"

	"github.com/nemusake/tdnet-downloader/internal/xbrl"
)

// csvColumns is the fixed flat-output header, shared with the
// workbook writer.
var csvColumns = []string{"date", "securities_code", "company_name", "category", "value"}

// identityColumns already occupy dedicated columns and are never
// repeated as category rows.
var identityColumns = map[string]bool{
	"date":            true,
	"securities_code": true,
	"company_name":    true,
}

// utf8BOM keeps spreadsheet tools from misreading Japanese text.
const utf8BOM = "\xef\xbb\xbf"

// Options control which profile keys reach the output.
type Options struct {
	// AllItems keeps keys the financial classifier would drop.
	AllItems bool
}

// record is one flat output row.
type record struct {
	date     string
	code     string
	name     string
	category string
	value    xbrl.Value
}

// buildRecords flattens profiles into output rows: identity columns
// repeated on every row, remaining keys in sorted order, empty values
// dropped, and non-financial keys dropped unless AllItems is set.
// Profile order is preserved, so the same input always yields the
// same rows.
func buildRecords(profiles []xbrl.Profile, opts Options) []record {
	var recs []record
	for _, p := range profiles {
		keys := make([]string, 0, len(p))
		for k := range p {
			if identityColumns[k] {
				continue
			}
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, k := range keys {
			v := p[k]
			if v.IsEmpty() {
				continue
			}
			if !opts.AllItems && !xbrl.IsFinancialKey(k) {
				continue
			}
			recs = append(recs, record{
				date:     p.Date(),
				code:     p.SecuritiesCode(),
				name:     p.CompanyName(),
				category: k,
				value:    v,
			})
		}
	}
	return recs
}

// WriteCSV writes profiles as BOM-prefixed CSV with CRLF row endings.
func WriteCSV(w io.Writer, profiles []xbrl.Profile, opts Options) error {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return eris.Wrap(err, "export: write BOM")
	}

	cw := csv.NewWriter(w)
	cw.UseCRLF = true
	if err := cw.Write(csvColumns); err != nil {
		return eris.Wrap(err, "export: write header")
	}
	for _, r := range buildRecords(profiles, opts) {
		row := []string{r.date, r.code, r.name, r.category, r.value.String()}
		if err := cw.Write(row); err != nil {
			return eris.Wrap(err, "export: write row")
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return eris.Wrap(err, "export: flush csv")
	}
	return nil
}

// WriteCSVFile writes profiles as CSV at path.
func WriteCSVFile(path string, profiles []xbrl.Profile, opts Options) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "export: create %s", path)
	}
	defer f.Close() //nolint:errcheck

	return WriteCSV(f, profiles, opts)
}
