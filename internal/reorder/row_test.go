package reorder

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCoerce(t *testing.T) {
	tests := []struct {
		name string
		in   Value
		want Value
	}{
		{"thousands separator", Text("1,200"), Number(1200)},
		{"plain integer", Text("42"), Number(42)},
		{"decimal with blanks", Text(" 3.75 "), Number(3.75)},
		{"negative", Text("-1,000.5"), Number(-1000.5)},
		{"text stays text", Text("abc"), Text("abc")},
		{"empty stays empty", Text(""), Text("")},
		{"blank stays blank", Text("   "), Text("   ")},
		{"nan is text", Text("NaN"), Text("NaN")},
		{"inf is text", Text("Inf"), Text("Inf")},
		{"mixed is text", Text("12kg"), Text("12kg")},
		{"leading dot", Text(".5"), Number(0.5)},
		{"exponent", Text("1.5e3"), Number(1500)},
		{"millions", Text("12,345,678"), Number(12345678)},
		{"short comma group", Text("1,2"), Text("1,2")},
		{"uneven comma groups", Text("12,34,5"), Text("12,34,5")},
		{"leading comma", Text(",100"), Text(",100")},
		{"underscore digits", Text("1_000"), Text("1_000")},
		{"hex float", Text("0x1p4"), Text("0x1p4")},
		{"hex int", Text("0x10"), Text("0x10")},
		{"infinity word", Text("Infinity"), Text("Infinity")},
		{"number unchanged", Number(7), Number(7)},
		{"zero unchanged", Number(0), Number(0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Coerce(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, Coerce(got), "coercion must be idempotent")
		})
	}
}

func TestValueString(t *testing.T) {
	assert.Equal(t, "1200", Number(1200).String())
	assert.Equal(t, "1.5", Number(1.5).String())
	assert.Equal(t, "0", Number(0).String())
	assert.Equal(t, "abc", Text("abc").String())
}

func TestRowPresence(t *testing.T) {
	row := Row{"qty": Number(0), "name": Text("")}

	v, ok := row.Get("qty")
	assert.True(t, ok)
	assert.Equal(t, Number(0), v, "zero must not be replaced")

	assert.True(t, row.Has("name"))
	assert.False(t, row.Has("missing"))
	assert.Equal(t, "", row.Text("missing"))
	assert.Equal(t, "0", row.Text("qty"))
}
