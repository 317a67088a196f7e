package reorder

// OutputRow строка результата: либо строка данных, либо разделитель групп
type OutputRow struct {
	Key       string
	Cells     Row
	separator bool
}

// Separator пустая строка-разделитель после группы
func Separator() OutputRow {
	return OutputRow{separator: true}
}

func (r OutputRow) IsSeparator() bool { return r.separator }

// Value значение колонки; для разделителя и отсутствующей колонки пустая строка
func (r OutputRow) Value(col string) Value {
	if r.separator {
		return Text("")
	}
	if v, ok := r.Cells.Get(col); ok {
		return v
	}
	return Text("")
}

// Group описание одной группы в результате
type Group struct {
	Key   string
	Start int // индекс первой строки группы в срезе OutputRow
	Size  int
}

// BuildGroups раскладывает строки листа данных по ключам в порядке keys.
// Ключ без совпадений не даёт ни строк, ни разделителя. После каждой
// непустой группы, включая последнюю, добавляется разделитель.
func BuildGroups(keys []string, data []Row, keyField string, idx *OverrideIndex, columns []string) ([]OutputRow, []Group) {
	// разбиваем лист данных один раз, сохраняя исходный порядок строк
	buckets := make(map[string][]Row, len(keys))
	for _, row := range data {
		key := row.Text(keyField)
		if key == "" {
			continue
		}
		buckets[key] = append(buckets[key], row)
	}

	out := make([]OutputRow, 0, len(data)+len(keys))
	groups := make([]Group, 0, len(keys))

	for _, key := range keys {
		subset := buckets[key]
		if len(subset) == 0 {
			continue
		}

		override, hasOverride := idx.Lookup(key)
		groups = append(groups, Group{Key: key, Start: len(out), Size: len(subset)})

		for _, src := range subset {
			cells := make(Row, len(columns))
			for _, col := range columns {
				cells[col] = Coerce(cellValue(col, src, override, hasOverride, idx))
			}
			out = append(out, OutputRow{Key: key, Cells: cells})
		}
		out = append(out, Separator())
	}

	return out, groups
}

// cellValue выбирает источник значения колонки: строка листа порядка для
// колонок замены, если в ней задано поле, иначе строка листа данных.
func cellValue(col string, src, override Row, hasOverride bool, idx *OverrideIndex) Value {
	if hasOverride && idx.IsOverride(col) {
		if v, ok := override.Get(col); ok {
			return v
		}
	}
	if v, ok := src.Get(col); ok {
		return v
	}
	return Text("")
}
