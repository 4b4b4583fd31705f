package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestBuildSheet_Headers(t *testing.T) {
	grid := [][]Cell{
		{},
		{Text("Valor"), Empty(), Text("Valor"), Text("  "), Text("Valor")},
		{Number(1), Text("a"), Number(2), Empty(), Number(3)},
		{Empty(), Empty()},
		{Number(4)},
	}

	sheet := buildSheet("Plan1", grid)

	assert.Equal(t, []string{"Valor", "__EMPTY", "Valor_1", "__EMPTY_1", "Valor_2"}, sheet.Headers)
	require.Len(t, sheet.Rows, 2) // blank row skipped

	first := sheet.Rows[0]
	assert.Equal(t, 3, first.Index)
	assert.Equal(t, Number(1), first.Get("Valor"))
	assert.Equal(t, Text("a"), first.Get("__EMPTY"))
	assert.Equal(t, Number(3), first.Get("Valor_2"))

	second := sheet.Rows[1]
	assert.Equal(t, 5, second.Index)
	assert.True(t, second.Get("Valor_1").IsEmpty(), "short rows are padded with empty cells")
}

func TestRow_GetUnknownHeader(t *testing.T) {
	row := NewRow(2, map[string]Cell{"Valor": Number(10)})

	assert.True(t, row.Get("").IsEmpty())
	assert.True(t, row.Get("Categoria").IsEmpty())
	assert.Equal(t, 10.0, row.Get("Valor").Number)
}

func TestSheet_Preview(t *testing.T) {
	grid := [][]Cell{{Text("a"), Text("b"), Text("c")}}
	for i := 0; i < 20; i++ {
		grid = append(grid, []Cell{Number(float64(i)), Text("x"), Text("y")})
	}
	sheet := buildSheet("S", grid)

	headers, rows := sheet.Preview(15, 2)

	assert.Equal(t, []string{"a", "b"}, headers)
	require.Len(t, rows, 15)
	assert.Equal(t, []string{"0", "x"}, rows[0])
	assert.Equal(t, []string{"14", "x"}, rows[14])
}

func TestCell_String(t *testing.T) {
	tests := []struct {
		name string
		cell Cell
		want string
	}{
		{"integer number", Number(45366), "45366"},
		{"decimal number", Number(12.5), "12.5"},
		{"text", Text(" Padaria "), " Padaria "},
		{"empty", Empty(), ""},
		{"empty text collapses", Text(""), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cell.String())
		})
	}
	assert.Equal(t, CellEmpty, Text("").Kind)
}

// ============================================================================
// Format readers
// ============================================================================

func TestOpen_XLSX(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"Data", "Descrição", "Valor"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{45366, "Padaria", 12.5}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A4", &[]any{"15/03/2024", "Mercado", "R$ 1.234,56"}))
	_, err := f.NewSheet("Outra")
	require.NoError(t, err)

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	wb, err := Open("gastos.xlsx", buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, wb.Format)
	assert.Equal(t, []string{"Sheet1", "Outra"}, wb.SheetNames())

	sheet, err := wb.Sheet("")
	require.NoError(t, err)
	assert.Equal(t, []string{"Data", "Descrição", "Valor"}, sheet.Headers)
	assert.True(t, sheet.HasHeader("Descrição"))
	assert.False(t, sheet.HasHeader("descrição"))
	require.Len(t, sheet.Rows, 2)

	assert.Equal(t, Number(45366), sheet.Rows[0].Get("Data"))
	assert.Equal(t, Text("Padaria"), sheet.Rows[0].Get("Descrição"))
	assert.Equal(t, Number(12.5), sheet.Rows[0].Get("Valor"))

	assert.Equal(t, 4, sheet.Rows[1].Index)
	assert.Equal(t, Text("15/03/2024"), sheet.Rows[1].Get("Data"))
	assert.Equal(t, Text("R$ 1.234,56"), sheet.Rows[1].Get("Valor"))

	other, err := wb.Sheet("Outra")
	require.NoError(t, err)
	assert.Empty(t, other.Rows)

	_, err = wb.Sheet("Missing")
	assert.ErrorIs(t, err, ErrSheetNotFound)
}

func TestOpen_CSV(t *testing.T) {
	data := []byte("Data;Descrição;Valor\n15/03/2024;Padaria;3,50\n;;\n16/03/2024;Mercado;12.5\n17/03/2024;Aluguel;1.234\n")

	wb, err := Open("gastos.csv", data)
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, wb.Format)
	assert.Equal(t, []string{"Sheet1"}, wb.SheetNames())

	sheet, err := wb.Sheet("Sheet1")
	require.NoError(t, err)
	require.Len(t, sheet.Rows, 3)

	assert.Equal(t, Text("3,50"), sheet.Rows[0].Get("Valor"))
	assert.Equal(t, Number(12.5), sheet.Rows[1].Get("Valor"))
	assert.Equal(t, Text("1.234"), sheet.Rows[2].Get("Valor"), "thousands separator stays text")
}

func TestOpen_CSVWindows1252(t *testing.T) {
	data := []byte("Descri\xe7\xe3o;Valor\nP\xe3o;3,50\n")

	wb, err := Open("export.csv", data)
	require.NoError(t, err)

	sheet, err := wb.Sheet("")
	require.NoError(t, err)
	assert.Equal(t, []string{"Descrição", "Valor"}, sheet.Headers)
	require.Len(t, sheet.Rows, 1)
	assert.Equal(t, Text("Pão"), sheet.Rows[0].Get("Descrição"))
}

func TestOpen_Errors(t *testing.T) {
	_, err := Open("empty.csv", nil)
	assert.ErrorIs(t, err, ErrEmptyFile)

	_, err = Open("notes.pdf", []byte("%PDF-1.4"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

type fakeXLSCell struct {
	typ string
	str string
	num float64
}

func (c fakeXLSCell) GetString() string   { return c.str }
func (c fakeXLSCell) GetFloat64() float64 { return c.num }
func (c fakeXLSCell) GetType() string     { return c.typ }

func TestXLSCell(t *testing.T) {
	tests := []struct {
		name string
		cell fakeXLSCell
		want Cell
	}{
		{"number record", fakeXLSCell{typ: "*record.Number", num: 12.5}, Number(12.5)},
		{"rk record", fakeXLSCell{typ: "*record.Rk", num: 45366}, Number(45366)},
		{"blank record", fakeXLSCell{typ: "*record.Blank"}, Empty()},
		{"shared string", fakeXLSCell{typ: "*record.LabelSSt", str: "Mercado"}, Text("Mercado")},
		{"empty label", fakeXLSCell{typ: "*record.LabelSSt"}, Empty()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, xlsCell(tt.cell))
		})
	}
}
