package normalizer

import (
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/casa-gastos/internal/domain/import/mapping"
	"github.com/FACorreiaa/casa-gastos/internal/domain/import/parser"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name   string
		cell   parser.Cell
		want   string
		wantOK bool
	}{
		{"serial", parser.Number(45366), "2024-03-15", true},
		{"serial with time fraction", parser.Number(45366.75), "2024-03-15", true},
		{"day first text", parser.Text("05/03/2024"), "2024-03-05", true},
		{"single digits", parser.Text("1/2/2024"), "2024-02-01", true},
		{"padded text", parser.Text(" 15/03/2024 "), "2024-03-15", true},
		{"day overflow rolls over", parser.Text("31/04/2024"), "2024-05-01", true},
		{"native date", parser.Date(time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)), "2024-03-15", true},
		{"day and month only", parser.Text("15/03"), "", false},
		{"iso text", parser.Text("2024-03-15"), "", false},
		{"two digit year", parser.Text("15/03/24"), "", false},
		{"zero serial", parser.Number(0), "", false},
		{"negative serial", parser.Number(-3), "", false},
		{"last serial", parser.Number(2958465), "9999-12-31", true},
		{"serial past year 9999", parser.Number(2958466), "", false},
		{"serial far past year 9999", parser.Number(3e6), "", false},
		{"overflowing serial", parser.Number(1e20), "", false},
		{"infinite serial", parser.Number(math.Inf(1)), "", false},
		{"year zero text", parser.Text("15/03/0000"), "", false},
		{"text rolling past year 9999", parser.Text("99/12/9999"), "", false},
		{"empty", parser.Empty(), "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseDate(tt.cell)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDate_SerialRoundTrip(t *testing.T) {
	epoch := time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)
	end := time.Date(2100, 1, 1, 0, 0, 0, 0, time.UTC)

	for d := time.Date(1901, 1, 1, 0, 0, 0, 0, time.UTC); d.Before(end); d = d.AddDate(0, 0, 37) {
		serial := float64(d.Sub(epoch).Hours() / 24)

		got, ok := ParseDate(parser.Number(serial))
		require.True(t, ok, "serial %v", serial)
		require.Equal(t, d.Format(ISODate), got, "serial %v", serial)
	}
}

func TestParseDate_DayMonthIsPositional(t *testing.T) {
	for day := 1; day <= 28; day++ {
		for month := 1; month <= 12; month++ {
			in := time.Date(2023, time.Month(month), day, 0, 0, 0, 0, time.UTC)

			got, ok := ParseDate(parser.Text(in.Format("02/01/2006")))
			require.True(t, ok)
			require.Equal(t, in.Format(ISODate), got)
		}
	}
}

func TestParseMoney(t *testing.T) {
	tests := []struct {
		name   string
		cell   parser.Cell
		want   string
		wantOK bool
	}{
		{"brl with thousands", parser.Text("R$ 1.234,56"), "1234.56", true},
		{"comma decimal", parser.Text("12,5"), "12.5", true},
		{"no symbol", parser.Text("  89,90 "), "89.9", true},
		{"negative", parser.Text("R$ -10,00"), "-10", true},
		{"number passes through", parser.Number(42.75), "42.75", true},
		{"symbol only", parser.Text("R$ "), "", false},
		{"letters", parser.Text("dez reais"), "", false},
		{"empty", parser.Empty(), "", false},
		{"date", parser.Date(time.Now()), "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseMoney(tt.cell)
			require.Equal(t, tt.wantOK, ok)
			if !ok {
				return
			}
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s", got)
		})
	}
}

var householdMapping = mapping.ColumnMapping{
	Description:   "Descrição",
	Amount:        "Valor",
	Date:          "Data",
	Category:      "Categoria",
	PaymentMethod: "Forma Pgto",
}

func TestNormalizeRow(t *testing.T) {
	row := parser.NewRow(2, map[string]parser.Cell{
		"Data":       parser.Text("15/03/2024"),
		"Descrição":  parser.Text("  Padaria "),
		"Valor":      parser.Text("R$ 12,50"),
		"Categoria":  parser.Text(" Mercado "),
		"Forma Pgto": parser.Text(" Cartao "),
	})

	d, ok := NormalizeRow(row, householdMapping, "2024-01-01")
	require.True(t, ok)
	assert.Equal(t, 2, d.Row)
	assert.Equal(t, "Padaria", d.Description)
	assert.True(t, decimal.RequireFromString("12.5").Equal(d.Amount))
	assert.Equal(t, "Mercado", d.Category)
	assert.Equal(t, "cartao", d.PaymentMethod)
	assert.Equal(t, "2024-03-15", d.Date)
}

func TestNormalizeRow_Defaults(t *testing.T) {
	row := parser.NewRow(3, map[string]parser.Cell{
		"Data":      parser.Text("15/03"),
		"Descrição": parser.Text("Farmácia"),
		"Valor":     parser.Number(30),
		"Categoria": parser.Text("   "),
	})

	d, ok := NormalizeRow(row, householdMapping, "2024-01-01")
	require.True(t, ok)
	assert.Equal(t, DefaultCategory, d.Category)
	assert.Equal(t, DefaultPaymentMethod, d.PaymentMethod)
	assert.Equal(t, "2024-01-01", d.Date, "year-less dates use the fallback")

	unmapped := mapping.ColumnMapping{Description: "Descrição", Amount: "Valor"}
	d, ok = NormalizeRow(row, unmapped, "2024-02-02")
	require.True(t, ok)
	assert.Equal(t, DefaultCategory, d.Category)
	assert.Equal(t, "2024-02-02", d.Date)
}

func TestNormalizeRow_BlankDescriptionAlwaysRejected(t *testing.T) {
	for _, desc := range []parser.Cell{parser.Empty(), parser.Text("   "), parser.Text("\t")} {
		row := parser.NewRow(2, map[string]parser.Cell{
			"Data":       parser.Text("15/03/2024"),
			"Descrição":  desc,
			"Valor":      parser.Text("R$ 12,50"),
			"Categoria":  parser.Text("Mercado"),
			"Forma Pgto": parser.Text("pix"),
		})

		_, ok := NormalizeRow(row, householdMapping, "2024-01-01")
		assert.False(t, ok)
	}
}

func TestNormalizeRow_Rejections(t *testing.T) {
	row := parser.NewRow(2, map[string]parser.Cell{
		"Descrição": parser.Text("Luz"),
		"Valor":     parser.Text("n/a"),
	})

	_, ok := NormalizeRow(row, householdMapping, "2024-01-01")
	assert.False(t, ok, "unreadable amount")

	_, ok = NormalizeRow(row, mapping.ColumnMapping{Description: "Descrição"}, "2024-01-01")
	assert.False(t, ok, "amount not mapped")
}

func TestNormalizeRows(t *testing.T) {
	rows := []parser.Row{
		parser.NewRow(2, map[string]parser.Cell{
			"Descrição": parser.Text("Sem valor"),
		}),
		parser.NewRow(3, map[string]parser.Cell{
			"Data":      parser.Text("05/03/2024"),
			"Descrição": parser.Text("Padaria"),
			"Valor":     parser.Text("12,50"),
			"Categoria": parser.Text("Alimentação"),
		}),
		parser.NewRow(4, map[string]parser.Cell{
			"Descrição": parser.Text("Gás"),
			"Valor":     parser.Number(110),
		}),
	}

	drafts, err := NormalizeRows(rows, householdMapping, "2024-03-01")
	require.NoError(t, err)
	require.Len(t, drafts, 2)
	assert.Equal(t, "2024-03-05", drafts[0].Date)
	assert.Equal(t, "Alimentação", drafts[0].Category)
	assert.Equal(t, DefaultCategory, drafts[1].Category)
	assert.Equal(t, "2024-03-01", drafts[1].Date)

	_, err = NormalizeRows(rows[:1], householdMapping, "2024-03-01")
	assert.ErrorIs(t, err, ErrNoValidRows)
}
