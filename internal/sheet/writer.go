package sheet

import (
	"fmt"
	"log"
	"time"

	"github.com/ryabkov82/xlsx-reorder/internal/reorder"
	"github.com/xuri/excelize/v2"
)

const (
	DefaultSheetName = "نتیجه مرتب‌سازی"
	headerHeight     = 30
)

// Writer записывает сетку результата в xlsx через StreamWriter
type Writer struct {
	SheetName string
	Style     Style
}

func NewWriter(sheetName string, style Style) *Writer {
	if sheetName == "" {
		sheetName = DefaultSheetName
	}
	return &Writer{SheetName: sheetName, Style: style}
}

// Encode формирует книгу из заголовка, строк и диапазонов объединения.
// Разделители записываются пустыми строками без стиля.
func (w *Writer) Encode(header []string, rows []reorder.OutputRow, merges []reorder.MergeRange) ([]byte, error) {
	start := time.Now()
	grid := reorder.Materialize(header, rows)

	f := excelize.NewFile()
	defer f.Close()

	defaultSheet := f.GetSheetName(0)
	if err := f.SetSheetName(defaultSheet, w.SheetName); err != nil {
		return nil, fmt.Errorf("ошибка переименования листа: %w", err)
	}

	if w.Style.RightToLeft {
		rtl := true
		if err := f.SetSheetView(w.SheetName, 0, &excelize.ViewOptions{RightToLeft: &rtl}); err != nil {
			return nil, fmt.Errorf("ошибка настройки вида листа: %w", err)
		}
	}

	styles, err := registerStyles(f, w.Style)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания стиля: %w", err)
	}

	sw, err := f.NewStreamWriter(w.SheetName)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания StreamWriter: %w", err)
	}

	// ширину колонок StreamWriter принимает только до первой строки
	widths := newColumnWidths()
	widths.analyze(grid)
	for i := range header {
		if err := sw.SetColWidth(i+1, i+1, widths.width(i)); err != nil {
			return nil, fmt.Errorf("ошибка установки ширины колонки: %w", err)
		}
	}

	headerRow := make([]interface{}, len(header))
	for i, h := range header {
		headerRow[i] = excelize.Cell{Value: h, StyleID: styles.header}
	}
	if err := sw.SetRow("A1", headerRow, excelize.RowOpts{Height: headerHeight}); err != nil {
		return nil, fmt.Errorf("ошибка записи заголовков: %w", err)
	}

	for r := 1; r < grid.Len(); r++ {
		if grid.Row(r).IsSeparator() {
			continue
		}
		values := grid.Values(r)
		rowData := make([]interface{}, len(values))
		for i, v := range values {
			rowData[i] = excelize.Cell{Value: v.Interface(), StyleID: styles.forValue(v)}
		}
		cell, _ := excelize.CoordinatesToCellName(1, r+1)
		if err := sw.SetRow(cell, rowData); err != nil {
			return nil, fmt.Errorf("ошибка записи строки %d: %w", r+1, err)
		}
	}

	for _, m := range merges {
		topLeft, err := excelize.CoordinatesToCellName(m.ColumnIndex+1, m.Start+1)
		if err != nil {
			return nil, err
		}
		bottomRight, err := excelize.CoordinatesToCellName(m.ColumnIndex+1, m.End+1)
		if err != nil {
			return nil, err
		}
		if err := sw.MergeCell(topLeft, bottomRight); err != nil {
			return nil, fmt.Errorf("ошибка объединения %s:%s: %w", topLeft, bottomRight, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return nil, fmt.Errorf("ошибка финального flush: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("ошибка сохранения книги: %w", err)
	}

	log.Printf("[Writer] %d строк, %d объединений за %s", grid.Len(), len(merges), time.Since(start))
	return buf.Bytes(), nil
}
