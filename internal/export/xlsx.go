package export

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/geo2wiki/internal/model"
)

// SheetName is the worksheet that holds the results.
const SheetName = "Results"

// WriteXLSX saves the rows to a workbook at path. Coordinates and distances
// are stored as numbers so they sort and filter in a spreadsheet.
func WriteXLSX(path string, rows []model.Row) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet(SheetName)
	if err != nil {
		return eris.Wrap(err, "export: xlsx add sheet")
	}

	header := sheet.AddRow()
	for _, h := range Header {
		header.AddCell().SetString(h)
	}

	for _, r := range rows {
		row := sheet.AddRow()
		row.AddCell().SetString(r.Source.String())
		row.AddCell().SetString(r.Name)
		if r.Location != nil {
			row.AddCell().SetFloat(r.Location.Lat)
			row.AddCell().SetFloat(r.Location.Lon)
		} else {
			row.AddCell().SetString("")
			row.AddCell().SetString("")
		}
		if r.Distance != nil {
			row.AddCell().SetInt(*r.Distance)
		} else {
			row.AddCell().SetString("")
		}
		row.AddCell().SetString(r.URL)
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "export: save xlsx %s", path)
	}
	return nil
}
