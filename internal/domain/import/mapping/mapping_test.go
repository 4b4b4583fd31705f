package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/casa-gastos/internal/domain"
)

func TestSuggest(t *testing.T) {
	tests := []struct {
		name    string
		headers []string
		want    ColumnMapping
	}{
		{
			name:    "household sheet",
			headers: []string{"Data", "Descrição", "Valor", "Categoria", "Forma Pgto"},
			want: ColumnMapping{
				Description:   "Descrição",
				Amount:        "Valor",
				Date:          "Data",
				Category:      "Categoria",
				PaymentMethod: "Forma Pgto",
			},
		},
		{
			name:    "case and padding ignored",
			headers: []string{" DATA ", "DESCRICAO", "valor (R$)", "Forma de Pagamento"},
			want: ColumnMapping{
				Description:   "DESCRICAO",
				Amount:        "valor (R$)",
				Date:          " DATA ",
				PaymentMethod: "Forma de Pagamento",
			},
		},
		{
			name:    "date requires exact match",
			headers: []string{"Data da compra", "Descrição", "Valor"},
			want: ColumnMapping{
				Description: "Descrição",
				Amount:      "Valor",
			},
		},
		{
			name:    "first matching header wins",
			headers: []string{"Valor original", "Valor pago", "Descr"},
			want: ColumnMapping{
				Description:   "Descr",
				Amount:        "Valor original",
				PaymentMethod: "Valor pago",
			},
		},
		{
			name:    "nothing recognised",
			headers: []string{"foo", "bar", "__EMPTY"},
			want:    ColumnMapping{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Suggest(tt.headers))
		})
	}
}

func TestValidate(t *testing.T) {
	headers := Headers{"Data", "Descrição", "Valor"}

	t.Run("complete mapping", func(t *testing.T) {
		m := ColumnMapping{Description: "Descrição", Amount: "Valor", Date: "Data"}
		assert.NoError(t, m.Validate(headers))
		assert.True(t, m.Complete())
	})

	t.Run("missing amount", func(t *testing.T) {
		m := ColumnMapping{Description: "Descrição"}
		err := m.Validate(headers)

		var verr *domain.ErrValidation
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "amount", verr.Field)
		assert.False(t, m.Complete())
	})

	t.Run("missing description", func(t *testing.T) {
		m := ColumnMapping{Amount: "Valor"}

		var verr *domain.ErrValidation
		require.ErrorAs(t, m.Validate(headers), &verr)
		assert.Equal(t, "description", verr.Field)
	})

	t.Run("unknown header", func(t *testing.T) {
		m := ColumnMapping{Description: "Descrição", Amount: "Valor", Category: "Categoria"}

		var verr *domain.ErrValidation
		require.ErrorAs(t, m.Validate(headers), &verr)
		assert.Equal(t, "category", verr.Field)
	})

	t.Run("no headers", func(t *testing.T) {
		m := ColumnMapping{Description: "Descrição", Amount: "Valor"}

		var verr *domain.ErrValidation
		require.ErrorAs(t, m.Validate(nil), &verr)
		assert.Equal(t, "description", verr.Field)
	})
}
