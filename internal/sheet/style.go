package sheet

import (
	"math"
	"strings"

	"github.com/ryabkov82/xlsx-reorder/internal/reorder"
	"github.com/xuri/excelize/v2"
)

// Style параметры оформления, одинаковые для всех ячеек результата
type Style struct {
	FontName      string  `yaml:"font_name" json:"font_name"`
	FontSize      float64 `yaml:"font_size" json:"font_size"`
	Horizontal    string  `yaml:"horizontal" json:"horizontal"`
	Vertical      string  `yaml:"vertical" json:"vertical"`
	Borders       bool    `yaml:"borders" json:"borders"`
	NumberFormat  string  `yaml:"number_format" json:"number_format"`
	DecimalFormat string  `yaml:"decimal_format" json:"decimal_format"` // маска для дробных чисел
	HeaderFill    string  `yaml:"header_fill" json:"header_fill"`
	RightToLeft   bool    `yaml:"right_to_left" json:"right_to_left"`
}

func DefaultStyle() Style {
	return Style{
		FontName:      "B Nazanin",
		FontSize:      12,
		Horizontal:    "center",
		Vertical:      "center",
		Borders:       true,
		NumberFormat:  "#,##0",
		DecimalFormat: "#,##0.0#########",
		HeaderFill:    "D9E1F2",
		RightToLeft:   true,
	}
}

// styleIDs зарегистрированные в книге стили заголовка и данных
type styleIDs struct {
	header  int
	data    int
	decimal int
}

func registerStyles(f *excelize.File, s Style) (styleIDs, error) {
	var ids styleIDs

	base := func(bold bool) *excelize.Style {
		st := &excelize.Style{
			Font: &excelize.Font{
				Family: s.FontName,
				Size:   s.FontSize,
				Bold:   bold,
			},
			Alignment: &excelize.Alignment{
				Horizontal:   s.Horizontal,
				Vertical:     s.Vertical,
				WrapText:     bold,
				ReadingOrder: readingOrder(s.RightToLeft),
			},
		}
		if s.Borders {
			for _, side := range []string{"left", "top", "right", "bottom"} {
				st.Border = append(st.Border, excelize.Border{Type: side, Color: "000000", Style: 1})
			}
		}
		return st
	}

	header := base(true)
	if s.HeaderFill != "" {
		header.Fill = excelize.Fill{
			Type:    "pattern",
			Color:   []string{strings.TrimPrefix(s.HeaderFill, "#")},
			Pattern: 1,
		}
	}
	var err error
	if ids.header, err = f.NewStyle(header); err != nil {
		return ids, err
	}

	data := base(false)
	if s.NumberFormat != "" {
		numFmt := s.NumberFormat
		data.CustomNumFmt = &numFmt
	}
	if ids.data, err = f.NewStyle(data); err != nil {
		return ids, err
	}

	ids.decimal = ids.data
	if s.DecimalFormat != "" {
		decimal := base(false)
		numFmt := s.DecimalFormat
		decimal.CustomNumFmt = &numFmt
		if ids.decimal, err = f.NewStyle(decimal); err != nil {
			return ids, err
		}
	}

	return ids, nil
}

// forValue выбирает стиль ячейки: дробным числам нужна маска с десятичными знаками
func (ids styleIDs) forValue(v reorder.Value) int {
	if f, ok := v.Float(); ok && f != math.Trunc(f) {
		return ids.decimal
	}
	return ids.data
}

func readingOrder(rtl bool) uint64 {
	if rtl {
		return 2
	}
	return 0
}
