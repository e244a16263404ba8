package report_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/arnavsurve/dropreport/pkg/core"
	"github.com/arnavsurve/dropreport/pkg/report"
	"github.com/arnavsurve/dropreport/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestBuildWorkbook(t *testing.T) {
	results := core.NewStepResults()
	results.Set("login", types.JSONResult(map[string]any{"accessToken": "abc"}))
	results.Set("users", types.JSONResult([]any{
		map[string]any{"id": float64(1), "name": "Alice", "active": true},
		map[string]any{"id": float64(2), "name": "Bob", "address": map[string]any{"city": "Oslo"}},
	}))
	results.Set("LOGS", types.ArtifactResult("LOGS.csv"))
	results.Set("todos", types.JSONResult([]any{}))
	results.Set("broken", types.ErrorResult(errors.New("boom")))

	path := filepath.Join(t.TempDir(), "daily_report.xlsx")
	wb, err := report.BuildWorkbook(results, path)
	require.NoError(t, err)

	assert.Equal(t, path, wb.Path)
	assert.Equal(t, []string{"LOGS.csv"}, wb.Attachments)
	assert.Equal(t, map[string]int{"users": 2, "todos": 0}, wb.Counts())

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"users", "todos"}, f.GetSheetList())

	rows, err := f.GetRows("users")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"active", "id", "name", "address"}, rows[0])
	assert.Equal(t, []string{"TRUE", "1", "Alice"}, rows[1])
	assert.Equal(t, []string{"", "2", "Bob", `{"city":"Oslo"}`}, rows[2])

	width, err := f.GetColWidth("users", "C")
	require.NoError(t, err)
	assert.Equal(t, float64(len("Alice")+2), width)

	styleID, err := f.GetCellStyle("users", "A1")
	require.NoError(t, err)
	assert.NotZero(t, styleID)
	bodyStyle, err := f.GetCellStyle("users", "A2")
	require.NoError(t, err)
	assert.NotEqual(t, styleID, bodyStyle)
}

func TestBuildWorkbook_NoTabularResults(t *testing.T) {
	results := core.NewStepResults()
	results.Set("login", types.JSONResult(map[string]any{"token": "abc"}))
	results.Set("note", types.JSONResult("plain text"))

	path := filepath.Join(t.TempDir(), "empty.xlsx")
	wb, err := report.BuildWorkbook(results, path)
	require.NoError(t, err)
	assert.Empty(t, wb.Sheets)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Report"}, f.GetSheetList())
}

func TestBuildWorkbook_SheetNames(t *testing.T) {
	rows := []any{map[string]any{"id": float64(1)}}

	results := core.NewStepResults()
	results.Set("a/b", types.JSONResult(rows))
	results.Set("a:b", types.JSONResult(rows))
	results.Set("a_very_long_step_name_that_excel_cannot_hold", types.JSONResult(rows))

	path := filepath.Join(t.TempDir(), "names.xlsx")
	wb, err := report.BuildWorkbook(results, path)
	require.NoError(t, err)

	require.Len(t, wb.Sheets, 3)
	assert.Equal(t, "a_b", wb.Sheets[0].Name)
	assert.Equal(t, "a_b_2", wb.Sheets[1].Name)
	assert.Equal(t, "a_very_long_step_name_that_exce", wb.Sheets[2].Name)
	assert.Equal(t, "a:b", wb.Sheets[1].Step)
}

func TestBuildWorkbook_MixedListIsSkipped(t *testing.T) {
	results := core.NewStepResults()
	results.Set("mixed", types.JSONResult([]any{map[string]any{"id": float64(1)}, "stray"}))

	wb, err := report.BuildWorkbook(results, filepath.Join(t.TempDir(), "mixed.xlsx"))
	require.NoError(t, err)
	assert.Empty(t, wb.Sheets)
}
