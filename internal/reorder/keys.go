package reorder

// KeyOrder возвращает различающиеся ключи группировки в порядке первого
// появления в листе порядка. Ключи сравниваются по обрезанному тексту,
// поэтому число 12 и строка " 12" дают один ключ. Пустые ключи отбрасываются.
func KeyOrder(rows []Row, keyField string) []string {
	seen := make(map[string]struct{}, len(rows))
	order := make([]string, 0, len(rows))

	for _, row := range rows {
		key := row.Text(keyField)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		order = append(order, key)
	}

	return order
}

// OverrideIndex хранит для каждого ключа последнюю строку листа порядка
// и признаки наличия полей замены хотя бы в одной строке.
type OverrideIndex struct {
	rows    map[string]Row
	present map[string]bool
}

// BuildOverrideIndex строит индекс замен по листу порядка.
// При повторе ключа побеждает последняя строка. Наличие поля определяется
// по существованию ключа в строке, а не по непустому значению.
func BuildOverrideIndex(rows []Row, keyField string, fields ...string) *OverrideIndex {
	idx := &OverrideIndex{
		rows:    make(map[string]Row, len(rows)),
		present: make(map[string]bool, len(fields)),
	}
	for _, f := range fields {
		idx.present[f] = false
	}

	for _, row := range rows {
		for _, f := range fields {
			if !idx.present[f] && row.Has(f) {
				idx.present[f] = true
			}
		}
		key := row.Text(keyField)
		if key == "" {
			continue
		}
		idx.rows[key] = row
	}

	return idx
}

// IsOverride сообщает, является ли поле полем замены
func (idx *OverrideIndex) IsOverride(field string) bool {
	_, ok := idx.present[field]
	return ok
}

// Present сообщает, определено ли поле замены хотя бы в одной строке
func (idx *OverrideIndex) Present(field string) bool {
	return idx.present[field]
}

// Lookup возвращает строку листа порядка для ключа
func (idx *OverrideIndex) Lookup(key string) (Row, bool) {
	row, ok := idx.rows[key]
	return row, ok
}
