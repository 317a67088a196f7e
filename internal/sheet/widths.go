package sheet

import (
	"unicode/utf8"

	"github.com/ryabkov82/xlsx-reorder/internal/reorder"
)

const (
	minColWidth = 8
	maxColWidth = 60
)

// columnWidths максимальная ширина значения по каждой колонке сетки
type columnWidths struct {
	max map[int]int
}

func newColumnWidths() *columnWidths {
	return &columnWidths{max: make(map[int]int)}
}

// analyze проходит по всей сетке, включая заголовок
func (cw *columnWidths) analyze(g *reorder.Grid) {
	for i, h := range g.Header {
		cw.observe(i, utf8.RuneCountInString(h))
	}
	for r := 1; r < g.Len(); r++ {
		if g.Row(r).IsSeparator() {
			continue
		}
		for i, v := range g.Values(r) {
			cw.observe(i, renderedLen(v))
		}
	}
}

func (cw *columnWidths) observe(col, n int) {
	if n > cw.max[col] {
		cw.max[col] = n
	}
}

// width ширина колонки в единицах Excel
func (cw *columnWidths) width(col int) float64 {
	w := float64(cw.max[col])*1.2 + 2
	switch {
	case w < minColWidth:
		return minColWidth
	case w > maxColWidth:
		return maxColWidth
	}
	return w
}

// renderedLen длина значения с учётом разделителей тысяч у чисел
func renderedLen(v reorder.Value) int {
	s := v.String()
	n := utf8.RuneCountInString(s)
	if v.IsNumber() && n > 3 {
		n += (n - 1) / 3
	}
	return n
}
