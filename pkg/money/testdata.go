package money

import (
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/shopspring/decimal"
)

// TestDataGenerator generates realistic household expense data using gofakeit.
type TestDataGenerator struct {
	faker *gofakeit.Faker
}

// NewTestDataGenerator creates a new test data generator with a random seed.
func NewTestDataGenerator() *TestDataGenerator {
	return &TestDataGenerator{
		faker: gofakeit.New(0), // Random seed
	}
}

// NewTestDataGeneratorWithSeed creates a generator with a specific seed for reproducibility.
func NewTestDataGeneratorWithSeed(seed int64) *TestDataGenerator {
	return &TestDataGenerator{
		faker: gofakeit.New(seed),
	}
}

// TestExpense is one generated household expense.
type TestExpense struct {
	Date          time.Time
	Description   string
	Amount        *Money
	Category      string
	PaymentMethod string
}

// PaymentMethods are the payment methods a household records.
var PaymentMethods = []string{"pix", "cartao", "dinheiro", "boleto"}

// SheetHeaders is the header row of a generated spreadsheet.
var SheetHeaders = []string{"Data", "Descrição", "Valor", "Categoria", "Forma Pgto"}

var expenseCategories = []string{
	"Alimentação", "Mercado", "Transporte", "Moradia", "Saúde", "Lazer",
	"Educação", "Pets", "Farmácia", "Assinaturas",
}

var expenseDescriptions = map[string][]string{
	"Alimentação": {"Padaria", "Almoço restaurante", "iFood", "Lanchonete"},
	"Mercado":     {"Supermercado", "Feira", "Atacadão", "Hortifruti"},
	"Transporte":  {"Uber", "Combustível", "Estacionamento", "Bilhete único"},
	"Moradia":     {"Aluguel", "Condomínio", "Conta de luz", "Conta de água", "Internet"},
	"Saúde":       {"Consulta", "Plano de saúde", "Exame"},
	"Lazer":       {"Cinema", "Streaming", "Show", "Viagem"},
	"Educação":    {"Mensalidade escola", "Material escolar", "Curso online"},
	"Pets":        {"Ração", "Veterinário", "Banho e tosa"},
	"Farmácia":    {"Farmácia", "Remédios"},
	"Assinaturas": {"Spotify", "Netflix", "Academia"},
}

// Expense generates a single expense from the last year.
func (g *TestDataGenerator) Expense() TestExpense {
	category := expenseCategories[g.faker.Number(0, len(expenseCategories)-1)]
	descriptions := expenseDescriptions[category]

	return TestExpense{
		Date:          g.faker.DateRange(time.Now().AddDate(-1, 0, 0), time.Now()),
		Description:   descriptions[g.faker.Number(0, len(descriptions)-1)],
		Amount:        g.Amount(5, 3000),
		Category:      category,
		PaymentMethod: PaymentMethods[g.faker.Number(0, len(PaymentMethods)-1)],
	}
}

// Expenses generates count expenses.
func (g *TestDataGenerator) Expenses(count int) []TestExpense {
	out := make([]TestExpense, count)
	for i := range out {
		out[i] = g.Expense()
	}
	return out
}

// Amount generates a BRL amount between minReais and maxReais.
func (g *TestDataGenerator) Amount(minReais, maxReais float64) *Money {
	d := decimal.NewFromFloat(g.faker.Float64Range(minReais, maxReais)).Round(2)
	return NewFromDecimal(d, BRL)
}

// SheetRows renders count expenses as spreadsheet rows, header first, in the
// pt-BR text form households type: dd/mm/yyyy dates and "R$ 1.234,56" amounts.
func (g *TestDataGenerator) SheetRows(count int) [][]string {
	rows := make([][]string, 0, count+1)
	rows = append(rows, SheetHeaders)
	for _, e := range g.Expenses(count) {
		rows = append(rows, []string{
			e.Date.Format("02/01/2006"),
			e.Description,
			FormatBRL(e.Amount.ToDecimal()),
			e.Category,
			e.PaymentMethod,
		})
	}
	return rows
}
