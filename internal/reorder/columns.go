package reorder

// ResolveColumns выбирает выходные колонки из каталога.
// Колонки замены включаются по признаку наличия в листе порядка,
// остальные по наличию в образце схемы (первой строке листа данных).
// Порядок всегда совпадает с порядком каталога.
func ResolveColumns(catalog []string, idx *OverrideIndex, sample Row) []string {
	columns := make([]string, 0, len(catalog))
	for _, col := range catalog {
		if idx.IsOverride(col) {
			if idx.Present(col) {
				columns = append(columns, col)
			}
			continue
		}
		if sample.Has(col) {
			columns = append(columns, col)
		}
	}
	return columns
}

// schemaSample первая строка листа данных или пустая запись
func schemaSample(rows []Row) Row {
	if len(rows) == 0 {
		return Row{}
	}
	return rows[0]
}
