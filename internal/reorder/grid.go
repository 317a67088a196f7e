package reorder

// Grid прямоугольная сетка результата: строка 0 это заголовок,
// строки 1..N это OutputRow в исходном порядке.
type Grid struct {
	Header []string
	Rows   []OutputRow
	cols   map[string]int
}

// MergeRange диапазон строк сетки [Start, End] в колонке Column
// с одинаковыми значениями. Индексы включительные, заголовок имеет индекс 0.
type MergeRange struct {
	Column      string `json:"column"`
	ColumnIndex int    `json:"column_index"`
	Start       int    `json:"start"`
	End         int    `json:"end"`
}

// Materialize раскладывает заголовок и строки в сетку
func Materialize(header []string, rows []OutputRow) *Grid {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[h] = i
	}
	return &Grid{Header: header, Rows: rows, cols: cols}
}

// Len количество строк сетки вместе с заголовком
func (g *Grid) Len() int { return len(g.Rows) + 1 }

// ColumnIndex возвращает позицию колонки в заголовке
func (g *Grid) ColumnIndex(col string) (int, bool) {
	i, ok := g.cols[col]
	return i, ok
}

// Row возвращает строку данных по индексу сетки (от 1)
func (g *Grid) Row(i int) OutputRow {
	return g.Rows[i-1]
}

// Values возвращает строку данных в виде среза, выровненного по заголовку
func (g *Grid) Values(i int) []Value {
	row := g.Row(i)
	values := make([]Value, len(g.Header))
	for j, col := range g.Header {
		values[j] = row.Value(col)
	}
	return values
}

// PlanMerges находит для каждой объединяемой колонки максимальные серии
// подряд идущих равных значений длиной больше одной строки.
// Колонки, которых нет в заголовке, пропускаются. Разделитель всегда
// закрывает серию и сам в объединение не входит.
func PlanMerges(g *Grid, mergeable []string) []MergeRange {
	var ranges []MergeRange

	for _, col := range mergeable {
		colIdx, ok := g.ColumnIndex(col)
		if !ok {
			continue
		}

		runStart := -1
		var runValue Value

		closeRun := func(end int) {
			if runStart >= 0 && end > runStart {
				ranges = append(ranges, MergeRange{
					Column:      col,
					ColumnIndex: colIdx,
					Start:       runStart,
					End:         end,
				})
			}
			runStart = -1
		}

		for i := 1; i < g.Len(); i++ {
			row := g.Row(i)
			if row.IsSeparator() {
				closeRun(i - 1)
				continue
			}
			v := row.Value(col)
			if runStart < 0 {
				runStart, runValue = i, v
				continue
			}
			if v != runValue {
				closeRun(i - 1)
				runStart, runValue = i, v
			}
		}
		closeRun(g.Len() - 1)
	}

	return ranges
}
