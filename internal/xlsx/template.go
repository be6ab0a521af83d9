// Package xlsx writes the spreadsheet data template, optionally filled with
// the current catalog.
package xlsx

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/mesh-intelligence/mytree/internal/snapshot"
)

// DefaultPath is where the template goes when no path is given.
const DefaultPath = "data-templates/mytree-template.xlsx"

const defaultSheet = "Sheet1"

// SheetInfo summarizes one worksheet.
type SheetInfo struct {
	Name    string
	Headers []string
	Rows    int
}

// WriteTemplate creates a workbook at path with one sheet per snapshot
// table and a header row on each. When snap is non-nil its rows are
// written below the headers.
func WriteTemplate(path string, snap *snapshot.Snapshot) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetDocProps(&excelize.DocProperties{
		Title:   "mytree-journal template",
		Creator: "mytree",
	}); err != nil {
		return fmt.Errorf("setting properties: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}

	var tables []snapshot.Table
	if snap != nil {
		tables = snap.Tables()
	} else {
		for _, l := range snapshot.Layouts {
			tables = append(tables, snapshot.Table{Name: l.Name, Sheet: l.Sheet, Columns: l.Columns})
		}
	}

	for i, t := range tables {
		if _, err := f.NewSheet(t.Sheet); err != nil {
			return fmt.Errorf("adding sheet %s: %w", t.Sheet, err)
		}
		if err := writeSheet(f, t, bold); err != nil {
			return fmt.Errorf("writing sheet %s: %w", t.Sheet, err)
		}
		if i == 0 {
			idx, err := f.GetSheetIndex(t.Sheet)
			if err != nil {
				return err
			}
			f.SetActiveSheet(idx)
		}
	}
	if err := f.DeleteSheet(defaultSheet); err != nil {
		return fmt.Errorf("removing default sheet: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	return nil
}

func writeSheet(f *excelize.File, t snapshot.Table, headerStyle int) error {
	header := make([]any, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(t.Sheet, "A1", &header); err != nil {
		return err
	}
	if err := f.SetRowStyle(t.Sheet, 1, 1, headerStyle); err != nil {
		return err
	}
	if err := f.SetPanes(t.Sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return err
	}

	last, err := excelize.ColumnNumberToName(len(t.Columns))
	if err != nil {
		return err
	}
	if err := f.SetColWidth(t.Sheet, "A", last, 16); err != nil {
		return err
	}

	for i, row := range t.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		vals := make([]any, len(row))
		for j, v := range row {
			if v == nil {
				vals[j] = ""
				continue
			}
			vals[j] = v
		}
		if err := f.SetSheetRow(t.Sheet, cell, &vals); err != nil {
			return err
		}
	}
	return nil
}

// Inspect lists the sheets of the workbook at path with their header row
// and data row count.
func Inspect(path string) ([]SheetInfo, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var out []SheetInfo
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("reading sheet %s: %w", name, err)
		}
		info := SheetInfo{Name: name}
		if len(rows) > 0 {
			info.Headers = rows[0]
			info.Rows = len(rows) - 1
		}
		out = append(out, info)
	}
	return out, nil
}
