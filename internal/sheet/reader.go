// Package sheet читает листы xlsx/csv в записи и записывает результат
// упорядочивания обратно в xlsx.
package sheet

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ryabkov82/xlsx-reorder/internal/reorder"
	"github.com/xuri/excelize/v2"
)

// Format формат входного файла
type Format int

const (
	FormatXLSX Format = iota
	FormatCSV
)

func (f Format) String() string {
	if f == FormatCSV {
		return "csv"
	}
	return "xlsx"
}

// FormatOf определяет формат по расширению имени файла
func FormatOf(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm", ".xltx", ".xltm":
		return FormatXLSX, nil
	case ".csv":
		return FormatCSV, nil
	case ".xls":
		return 0, fmt.Errorf("формат .xls не поддерживается, сохраните файл как .xlsx")
	default:
		return 0, fmt.Errorf("неизвестный формат файла: %s", name)
	}
}

// Reader разбирает первый лист документа в записи, ключами которых служат
// заголовки первой непустой строки. Пустые ячейки в запись не попадают.
type Reader struct{}

func NewReader() *Reader {
	return &Reader{}
}

// Decode читает содержимое файла name
func (r *Reader) Decode(name string, data []byte) ([]reorder.Row, error) {
	format, err := FormatOf(name)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	var rows []reorder.Row
	switch format {
	case FormatCSV:
		rows, err = r.decodeCSV(data)
	default:
		rows, err = r.decodeXLSX(data)
	}
	if err != nil {
		return nil, err
	}

	log.Printf("[Reader] %s (%s): %d строк за %s", name, format, len(rows), time.Since(start))
	return rows, nil
}

func (r *Reader) decodeXLSX(data []byte) ([]reorder.Row, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия книги: %w", err)
	}
	defer f.Close()

	sheetList := f.GetSheetList()
	if len(sheetList) == 0 {
		return nil, fmt.Errorf("книга пустая, нет листов")
	}
	sheet := sheetList[0]

	rows, err := f.Rows(sheet)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения строк листа %s: %w", sheet, err)
	}
	defer rows.Close()

	var (
		headers []string
		records []reorder.Row
		rowNum  int
	)
	for rows.Next() {
		rowNum++
		cols, err := rows.Columns(excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("ошибка чтения строки %d: %w", rowNum, err)
		}

		if headers == nil {
			if isBlank(cols) {
				continue
			}
			headers = normalizeHeaders(cols)
			continue
		}

		record := make(reorder.Row, len(headers))
		for i, cellVal := range cols {
			if i >= len(headers) || cellVal == "" {
				continue
			}
			cellRef, err := excelize.CoordinatesToCellName(i+1, rowNum)
			if err != nil {
				return nil, err
			}
			valType, err := f.GetCellType(sheet, cellRef)
			if err != nil {
				valType = excelize.CellTypeInlineString
			}
			record[headers[i]] = typedValue(cellVal, valType)
		}

		if len(record) > 0 {
			records = append(records, record)
		}
	}
	if err := rows.Error(); err != nil {
		return nil, fmt.Errorf("ошибка чтения листа %s: %w", sheet, err)
	}

	return records, nil
}

func (r *Reader) decodeCSV(data []byte) ([]reorder.Row, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var (
		headers []string
		records []reorder.Row
	)
	for {
		cols, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ошибка чтения CSV: %w", err)
		}

		if headers == nil {
			if isBlank(cols) {
				continue
			}
			headers = normalizeHeaders(cols)
			continue
		}

		record := make(reorder.Row, len(headers))
		for i, cellVal := range cols {
			if i >= len(headers) || cellVal == "" {
				continue
			}
			record[headers[i]] = reorder.Text(cellVal)
		}
		if len(record) > 0 {
			records = append(records, record)
		}
	}

	return records, nil
}

// typedValue числовые ячейки возвращаются числом, остальные строкой.
// Ячейка без атрибута типа в OOXML числовая.
func typedValue(raw string, valType excelize.CellType) reorder.Value {
	switch valType {
	case excelize.CellTypeNumber, excelize.CellTypeUnset:
		if n, err := strconv.ParseFloat(raw, 64); err == nil {
			return reorder.Number(n)
		}
	}
	return reorder.Text(raw)
}

// normalizeHeaders обрезает заголовки, подставляет имена для пустых
// и добавляет суффиксы к повторам
func normalizeHeaders(cols []string) []string {
	headers := make([]string, len(cols))
	seen := make(map[string]int, len(cols))
	for i, h := range cols {
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("Column_%d", i+1)
		}
		if n, ok := seen[h]; ok {
			base := h
			for {
				n++
				h = fmt.Sprintf("%s_%d", base, n)
				if _, taken := seen[h]; !taken && !later(cols[i+1:], h) {
					break
				}
			}
			seen[base] = n
		}
		seen[h] = 0
		headers[i] = h
	}
	return headers
}

// later сообщает, встречается ли name среди ещё не обработанных заголовков
func later(cols []string, name string) bool {
	for _, c := range cols {
		if strings.TrimSpace(c) == name {
			return true
		}
	}
	return false
}

func isBlank(cols []string) bool {
	for _, c := range cols {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
