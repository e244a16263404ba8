// Package report turns the results of a flow run into an Excel workbook.
package report

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/arnavsurve/dropreport/pkg/core"
	"github.com/arnavsurve/dropreport/pkg/types"
	"github.com/xuri/excelize/v2"
)

const (
	defaultSheet      = "Sheet1"
	emptySheet        = "Report"
	headerColor       = "FFC000"
	maxSheetName      = 31
	maxColWidth       = 100
	widthPadding      = 2
	invalidSheetChars = `[]:*?/\`
)

// Sheet describes one worksheet written from a step result.
type Sheet struct {
	Step string
	Name string
	Rows int
}

// Workbook is what BuildWorkbook wrote.
type Workbook struct {
	Path        string
	Sheets      []Sheet
	Attachments []string
}

// Counts maps step names to the number of records written for them.
func (w *Workbook) Counts() map[string]int {
	out := make(map[string]int, len(w.Sheets))
	for _, s := range w.Sheets {
		out[s.Step] = s.Rows
	}
	return out
}

// BuildWorkbook writes one sheet per step whose result is a list of records
// and saves the workbook at path. Artifact results are collected as
// attachments. Other shapes are skipped.
func BuildWorkbook(results *core.StepResults, path string) (*Workbook, error) {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{headerColor}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("creating header style: %w", err)
	}

	wb := &Workbook{Path: path}
	used := map[string]bool{}
	var buildErr error

	results.Each(func(step string, res types.StepResult) {
		if buildErr != nil {
			return
		}
		switch res.Kind {
		case types.ResultArtifact:
			wb.Attachments = append(wb.Attachments, res.ArtifactPath)
		case types.ResultJSON:
			records, ok := asRecords(res.Output)
			if !ok {
				return
			}
			name := sheetName(step, used)
			if len(wb.Sheets) == 0 {
				buildErr = f.SetSheetName(defaultSheet, name)
			} else {
				_, buildErr = f.NewSheet(name)
			}
			if buildErr != nil {
				buildErr = fmt.Errorf("creating sheet %q: %w", name, buildErr)
				return
			}
			if buildErr = writeRecords(f, name, records, headerStyle); buildErr != nil {
				return
			}
			wb.Sheets = append(wb.Sheets, Sheet{Step: step, Name: name, Rows: len(records)})
		}
	})
	if buildErr != nil {
		return nil, buildErr
	}

	if len(wb.Sheets) == 0 {
		if err := f.SetSheetName(defaultSheet, emptySheet); err != nil {
			return nil, fmt.Errorf("naming empty sheet: %w", err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return nil, fmt.Errorf("saving workbook %q: %w", path, err)
	}
	return wb, nil
}

// asRecords accepts a list whose elements are all JSON objects.
func asRecords(v any) ([]map[string]any, bool) {
	list, ok := v.([]any)
	if !ok {
		return nil, false
	}
	records := make([]map[string]any, 0, len(list))
	for _, item := range list {
		rec, ok := item.(map[string]any)
		if !ok {
			return nil, false
		}
		records = append(records, rec)
	}
	return records, true
}

func writeRecords(f *excelize.File, sheet string, records []map[string]any, headerStyle int) error {
	columns := columnsOf(records)
	if len(columns) == 0 {
		return nil
	}

	widths := make([]int, len(columns))
	header := make([]any, len(columns))
	for i, c := range columns {
		header[i] = c
		widths[i] = utf8.RuneCountInString(c)
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("writing header of %q: %w", sheet, err)
	}

	lastCol, err := excelize.ColumnNumberToName(len(columns))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", lastCol+"1", headerStyle); err != nil {
		return fmt.Errorf("styling header of %q: %w", sheet, err)
	}

	for r, rec := range records {
		row := make([]any, len(columns))
		for i, c := range columns {
			row[i] = cellValue(rec[c])
			if n := utf8.RuneCountInString(fmt.Sprint(row[i])); n > widths[i] {
				widths[i] = n
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("writing row %d of %q: %w", r+2, sheet, err)
		}
	}

	for i, w := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		width := min(w+widthPadding, maxColWidth)
		if err := f.SetColWidth(sheet, col, col, float64(width)); err != nil {
			return fmt.Errorf("sizing column %s of %q: %w", col, sheet, err)
		}
	}
	return nil
}

// columnsOf returns the first record's keys sorted, followed by keys that
// only later records carry, in the order they are met.
func columnsOf(records []map[string]any) []string {
	seen := map[string]bool{}
	var columns []string
	for _, rec := range records {
		keys := make([]string, 0, len(rec))
		for k := range rec {
			if !seen[k] {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		for _, k := range keys {
			seen[k] = true
			columns = append(columns, k)
		}
	}
	return columns
}

func cellValue(v any) any {
	switch v := v.(type) {
	case nil:
		return ""
	case map[string]any, []any:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(data)
	default:
		return v
	}
}

// sheetName strips characters Excel rejects, truncates to 31 runes and
// suffixes a counter when the name is already taken.
func sheetName(step string, used map[string]bool) string {
	base := strings.Map(func(r rune) rune {
		if strings.ContainsRune(invalidSheetChars, r) {
			return '_'
		}
		return r
	}, step)
	base = strings.Trim(base, "'")
	if base == "" {
		base = emptySheet
	}
	base = truncateRunes(base, maxSheetName)

	name := base
	for i := 2; used[strings.ToLower(name)]; i++ {
		suffix := fmt.Sprintf("_%d", i)
		name = truncateRunes(base, maxSheetName-len(suffix)) + suffix
	}
	used[strings.ToLower(name)] = true
	return name
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
