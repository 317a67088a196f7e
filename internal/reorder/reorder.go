// Package reorder упорядочивает и группирует строки листа данных по ключам
// листа порядка и строит план объединения ячеек.
package reorder

import (
	"github.com/ryabkov82/xlsx-reorder/internal/errors"
)

// Config параметры одного запуска
type Config struct {
	KeyField     string
	SupplyField  string
	DemandField  string
	Catalog      []string
	MergeColumns []string
}

// OverrideFields непустые поля замены
func (c Config) OverrideFields() []string {
	fields := make([]string, 0, 2)
	for _, f := range []string{c.SupplyField, c.DemandField} {
		if f != "" {
			fields = append(fields, f)
		}
	}
	return fields
}

// Result сетка результата с планом объединения
type Result struct {
	Header []string
	Rows   []OutputRow
	Merges []MergeRange
	Keys   []string
	Groups []Group
}

// DataRows количество строк данных без разделителей
func (r *Result) DataRows() int {
	n := 0
	for _, row := range r.Rows {
		if !row.IsSeparator() {
			n++
		}
	}
	return n
}

// Grid возвращает сетку для записи
func (r *Result) Grid() *Grid {
	return Materialize(r.Header, r.Rows)
}

// Reorder выполняет полный проход: порядок ключей, индекс замен, выбор
// колонок, построение групп и план объединения. Состояние между вызовами
// не сохраняется; при ошибке результат не возвращается.
func Reorder(order, data []Row, cfg Config) (*Result, error) {
	if cfg.KeyField == "" {
		return nil, errors.ProcessingError("не задано ключевое поле")
	}
	if len(cfg.Catalog) == 0 {
		return nil, errors.ProcessingError("каталог колонок пуст")
	}
	if err := requireKeyField(order, cfg.KeyField, "лист порядка"); err != nil {
		return nil, err
	}
	if err := requireKeyField(data, cfg.KeyField, "лист данных"); err != nil {
		return nil, err
	}

	keys := KeyOrder(order, cfg.KeyField)
	idx := BuildOverrideIndex(order, cfg.KeyField, cfg.OverrideFields()...)
	columns := ResolveColumns(cfg.Catalog, idx, schemaSample(data))
	rows, groups := BuildGroups(keys, data, cfg.KeyField, idx, columns)

	res := &Result{
		Header: columns,
		Rows:   rows,
		Keys:   keys,
		Groups: groups,
	}
	res.Merges = PlanMerges(res.Grid(), cfg.MergeColumns)
	return res, nil
}

// requireKeyField проверяет, что хотя бы одна строка непустого листа
// содержит ключевое поле
func requireKeyField(rows []Row, keyField, sheet string) error {
	if len(rows) == 0 {
		return nil
	}
	for _, row := range rows {
		if row.Has(keyField) {
			return nil
		}
	}
	return errors.Newf(errors.CodeProcessingError, "%s не содержит ключевого поля %q", sheet, keyField)
}
