package export

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/nemusake/tdnet-downloader/internal/xbrl"
)

// xlsxSheet is the single sheet written to workbook output.
const xlsxSheet = "financial_data"

// WriteXLSXFile writes profiles as a single-sheet workbook carrying
// the same rows as the CSV output. Numeric values become numeric
// cells so spreadsheets can aggregate them directly.
func WriteXLSXFile(path string, profiles []xbrl.Profile, opts Options) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet(xlsxSheet)
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	header := sheet.AddRow()
	for _, col := range csvColumns {
		header.AddCell().SetString(col)
	}

	for _, r := range buildRecords(profiles, opts) {
		row := sheet.AddRow()
		row.AddCell().SetString(r.date)
		row.AddCell().SetString(r.code)
		row.AddCell().SetString(r.name)
		row.AddCell().SetString(r.category)
		if r.value.Numeric {
			row.AddCell().SetFloat(r.value.Number)
		} else {
			row.AddCell().SetString(r.value.Text)
		}
	}

	if err := file.Save(path); err != nil {
		return eris.Wrapf(err, "export: save %s", path)
	}
	return nil
}
