package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/ryabkov82/xlsx-reorder/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func saveWorkbook(t *testing.T, path string, rows [][]interface{}) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		row := row
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	require.NoError(t, f.SaveAs(path))
}

func TestLayoutCommand(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"layout"})

	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "columns:")
	assert.Contains(t, out.String(), "نام مشتری")
}

func TestRunCommand(t *testing.T) {
	dir := t.TempDir()
	order := filepath.Join(dir, "first.xlsx")
	data := filepath.Join(dir, "second.xlsx")
	out := filepath.Join(dir, "sorted.xlsx")

	saveWorkbook(t, order, [][]interface{}{{"code"}, {"B"}, {"A"}})
	saveWorkbook(t, data, [][]interface{}{{"code", "نام کالا"}, {"A", "x"}, {"B", "y"}})

	layout := filepath.Join(dir, "layout.yaml")
	require.NoError(t, os.WriteFile(layout, []byte("key_field: code\nsupply_field: \"\"\ndemand_field: \"\"\ncolumns: [code, نام کالا]\nmerge_columns: [code]\n"), 0o644))

	root := newRootCmd()
	root.SetArgs([]string{"run", "--layout", layout, "--order", order, "--data", data, "--out", out})
	require.NoError(t, root.Execute())

	_, err := os.Stat(out)
	assert.NoError(t, err)
}

func TestRunCommandMissingFiles(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"run", "--out", filepath.Join(t.TempDir(), "x.xlsx")})

	err := root.Execute()
	require.Error(t, err)
	assert.Equal(t, errors.CodeMissingInput, errors.GetCode(err))
}
