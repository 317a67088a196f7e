package reorder

import (
	"testing"

	"github.com/ryabkov82/xlsx-reorder/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	codeField   = "کد عرضه"
	nameField   = "name"
	supplyField = "مقدار عرضه"
	demandField = "تقاضا"
	clientField = "نام مشتری"
)

func testConfig() Config {
	return Config{
		KeyField:     codeField,
		SupplyField:  supplyField,
		DemandField:  demandField,
		Catalog:      []string{codeField, nameField, clientField, supplyField, demandField},
		MergeColumns: []string{codeField, supplyField, demandField},
	}
}

func codeRow(code string, kv ...interface{}) Row {
	row := Row{codeField: Text(code)}
	for i := 0; i+1 < len(kv); i += 2 {
		switch v := kv[i+1].(type) {
		case string:
			row[kv[i].(string)] = Text(v)
		case float64:
			row[kv[i].(string)] = Number(v)
		case int:
			row[kv[i].(string)] = Number(float64(v))
		}
	}
	return row
}

func TestKeyOrder(t *testing.T) {
	rows := []Row{
		codeRow(" B "),
		codeRow("A"),
		codeRow(""),
		codeRow("   "),
		{"other": Text("x")},
		codeRow("B"),
		{codeField: Number(12)},
		codeRow("12"),
		codeRow("A"),
	}

	assert.Equal(t, []string{"B", "A", "12"}, KeyOrder(rows, codeField))
	assert.Empty(t, KeyOrder([]Row{codeRow("")}, codeField))
	assert.Empty(t, KeyOrder(nil, codeField))
}

func TestBuildOverrideIndexLastRowWins(t *testing.T) {
	rows := []Row{
		codeRow("A", supplyField, 10),
		codeRow("B"),
		codeRow("A", supplyField, 20),
	}

	idx := BuildOverrideIndex(rows, codeField, supplyField, demandField)

	row, ok := idx.Lookup("A")
	require.True(t, ok)
	assert.Equal(t, Number(20), row[supplyField])
	assert.True(t, idx.Present(supplyField))
	assert.False(t, idx.Present(demandField))
	assert.True(t, idx.IsOverride(demandField))
	assert.False(t, idx.IsOverride(nameField))
	_, ok = idx.Lookup("B")
	assert.True(t, ok)
	_, ok = idx.Lookup("C")
	assert.False(t, ok)
}

func TestBuildOverrideIndexPresenceByField(t *testing.T) {
	// пустое значение тоже означает наличие поля
	rows := []Row{codeRow("A", demandField, "")}
	idx := BuildOverrideIndex(rows, codeField, supplyField, demandField)
	assert.True(t, idx.Present(demandField))
}

func TestResolveColumns(t *testing.T) {
	catalog := []string{codeField, nameField, clientField, supplyField, demandField}

	t.Run("override column survives without data schema", func(t *testing.T) {
		idx := BuildOverrideIndex([]Row{codeRow("A", supplyField, 5)}, codeField, supplyField, demandField)
		sample := codeRow("A", nameField, "x", demandField, 3)

		got := ResolveColumns(catalog, idx, sample)

		assert.Equal(t, []string{codeField, nameField, supplyField}, got)
		assert.NotContains(t, got, clientField)
		assert.NotContains(t, got, demandField, "demand inclusion follows the order sheet only")
	})

	t.Run("catalog order wins", func(t *testing.T) {
		idx := BuildOverrideIndex(nil, codeField)
		sample := Row{clientField: Text("c"), codeField: Text("A")}
		assert.Equal(t, []string{codeField, clientField}, ResolveColumns(catalog, idx, sample))
	})

	t.Run("empty data sheet keeps only overrides", func(t *testing.T) {
		idx := BuildOverrideIndex([]Row{codeRow("A", demandField, 1)}, codeField, supplyField, demandField)
		assert.Equal(t, []string{demandField}, ResolveColumns(catalog, idx, schemaSample(nil)))
	})
}

func TestReorderRoundTrip(t *testing.T) {
	order := []Row{codeRow("A"), codeRow("B"), codeRow("A")}
	data := []Row{
		codeRow("A", nameField, "x"),
		codeRow("B", nameField, "y"),
		codeRow("A", nameField, "z"),
	}

	res, err := Reorder(order, data, testConfig())
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B"}, res.Keys)
	assert.Equal(t, []string{codeField, nameField}, res.Header)
	require.Len(t, res.Rows, 5)

	assert.Equal(t, Text("x"), res.Rows[0].Value(nameField))
	assert.Equal(t, Text("z"), res.Rows[1].Value(nameField))
	assert.True(t, res.Rows[2].IsSeparator())
	assert.Equal(t, Text("y"), res.Rows[3].Value(nameField))
	assert.True(t, res.Rows[4].IsSeparator())

	assert.Equal(t, []Group{{Key: "A", Start: 0, Size: 2}, {Key: "B", Start: 3, Size: 1}}, res.Groups)
	assert.Equal(t, 3, res.DataRows())
	assert.Equal(t, 6, res.Grid().Len())

	// код A в двух строках подряд объединяется
	assert.Equal(t, []MergeRange{{Column: codeField, ColumnIndex: 0, Start: 1, End: 2}}, res.Merges)
}

func TestReorderSkipsKeysWithoutData(t *testing.T) {
	order := []Row{codeRow("A"), codeRow("MISSING"), codeRow("B")}
	data := []Row{
		codeRow("B", nameField, "y"),
		codeRow("ORPHAN", nameField, "o"),
		codeRow("A", nameField, "x"),
	}

	res, err := Reorder(order, data, testConfig())
	require.NoError(t, err)

	require.Len(t, res.Rows, 4)
	for _, row := range res.Rows {
		assert.NotEqual(t, "MISSING", row.Key)
		assert.NotEqual(t, "ORPHAN", row.Key)
	}
	assert.Len(t, res.Groups, 2)
}

func TestReorderOverrides(t *testing.T) {
	order := []Row{
		codeRow("A", supplyField, "1,500", demandField, 900),
		codeRow("B", demandField, 40),
	}
	data := []Row{
		codeRow("A", nameField, "x", supplyField, 1, demandField, 2),
		codeRow("A", nameField, "z", supplyField, 3, demandField, 4),
		codeRow("B", nameField, "y", supplyField, 7),
	}

	res, err := Reorder(order, data, testConfig())
	require.NoError(t, err)
	assert.Equal(t, []string{codeField, nameField, supplyField, demandField}, res.Header)

	for _, row := range res.Rows[:2] {
		assert.Equal(t, Number(1500), row.Value(supplyField))
		assert.Equal(t, Number(900), row.Value(demandField))
	}

	// у B нет поля предложения в листе порядка, берётся значение листа данных
	b := res.Rows[3]
	assert.Equal(t, Number(7), b.Value(supplyField))
	assert.Equal(t, Number(40), b.Value(demandField))

	assert.Contains(t, res.Merges, MergeRange{Column: supplyField, ColumnIndex: 2, Start: 1, End: 2})
	assert.Contains(t, res.Merges, MergeRange{Column: demandField, ColumnIndex: 3, Start: 1, End: 2})
}

func TestReorderCoercesEveryCell(t *testing.T) {
	order := []Row{codeRow("A")}
	data := []Row{codeRow("A", nameField, "2,000", clientField, "")}

	res, err := Reorder(order, data, testConfig())
	require.NoError(t, err)

	row := res.Rows[0]
	assert.Equal(t, Number(2000), row.Value(nameField))
	assert.Equal(t, Text(""), row.Value(clientField))
	assert.Equal(t, Text("A"), row.Value(codeField))
}

func TestReorderNumericKeysMatchText(t *testing.T) {
	order := []Row{{codeField: Number(101)}}
	data := []Row{codeRow(" 101 ", nameField, "x")}

	res, err := Reorder(order, data, testConfig())
	require.NoError(t, err)
	require.Len(t, res.Rows, 2)
	assert.Equal(t, Number(101), res.Rows[0].Value(codeField))
}

func TestReorderEmptyDataSheet(t *testing.T) {
	order := []Row{codeRow("A", supplyField, 1)}

	res, err := Reorder(order, nil, testConfig())
	require.NoError(t, err)
	assert.Equal(t, []string{supplyField}, res.Header)
	assert.Empty(t, res.Rows)
	assert.Empty(t, res.Merges)
}

func TestReorderErrors(t *testing.T) {
	tests := []struct {
		name  string
		order []Row
		data  []Row
		cfg   func(*Config)
	}{
		{"empty key field", []Row{codeRow("A")}, []Row{codeRow("A")}, func(c *Config) { c.KeyField = "" }},
		{"empty catalog", []Row{codeRow("A")}, []Row{codeRow("A")}, func(c *Config) { c.Catalog = nil }},
		{"order without key", []Row{{"x": Text("1")}}, []Row{codeRow("A")}, nil},
		{"data without key", []Row{codeRow("A")}, []Row{{"x": Text("1")}}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			if tt.cfg != nil {
				tt.cfg(&cfg)
			}
			res, err := Reorder(tt.order, tt.data, cfg)
			assert.Nil(t, res)
			require.Error(t, err)
			assert.Equal(t, errors.CodeProcessingError, errors.GetCode(err))
		})
	}
}
