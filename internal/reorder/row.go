package reorder

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Kind различает текстовые и числовые значения ячеек
type Kind uint8

const (
	KindText Kind = iota
	KindNumber
)

// Value скалярное значение ячейки: строка или число
type Value struct {
	kind Kind
	text string
	num  float64
}

func Text(s string) Value { return Value{kind: KindText, text: s} }

func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

func (v Value) IsNumber() bool { return v.kind == KindNumber }

// Float возвращает число и признак того, что значение числовое
func (v Value) Float() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	return v.num, true
}

// String возвращает текстовое представление значения.
// Числа форматируются без экспоненты и лишних нулей: 1200, 1.5, -3.
func (v Value) String() string {
	if v.kind == KindNumber {
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	}
	return v.text
}

// Interface возвращает значение в виде, пригодном для записи в ячейку excelize
func (v Value) Interface() interface{} {
	if v.kind == KindNumber {
		return v.num
	}
	return v.text
}

// numberPattern десятичная запись числа; запятые только группами по три цифры
var numberPattern = regexp.MustCompile(`^[+-]?(\d{1,3}(,\d{3})+(\.\d+)?|\d+(\.\d+)?|\.\d+)([eE][+-]?\d+)?$`)

// Coerce приводит строку, похожую на число, к числу.
// Разделители тысяч ("1,200") допускаются. Пустая строка и всё,
// что не является конечным десятичным числом, остаются строкой. Числа не меняются.
func Coerce(v Value) Value {
	if v.kind == KindNumber {
		return v
	}
	s := strings.TrimSpace(v.text)
	if !numberPattern.MatchString(s) {
		return v
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return v
	}
	return Number(f)
}

// Row одна запись листа: имя колонки -> значение.
// Отсутствие ключа и пустое значение различаются.
type Row map[string]Value

// Get возвращает значение колонки и признак его наличия
func (r Row) Get(col string) (Value, bool) {
	v, ok := r[col]
	return v, ok
}

// Has сообщает, есть ли в записи поле col
func (r Row) Has(col string) bool {
	_, ok := r[col]
	return ok
}

// Text возвращает обрезанное текстовое представление поля.
// Для отсутствующего поля возвращается пустая строка.
func (r Row) Text(col string) string {
	v, ok := r[col]
	if !ok {
		return ""
	}
	return strings.TrimSpace(v.String())
}
