package sniffer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectConfig(t *testing.T) {
	tests := []struct {
		name          string
		data          string
		wantDelimiter rune
		wantSkip      int
		wantHeaders   []string
	}{
		{
			name:          "semicolon pt-BR export",
			data:          "Data;Descrição;Valor;Categoria\n15/03/2024;Padaria;12,50;Alimentação\n",
			wantDelimiter: ';',
			wantSkip:      0,
			wantHeaders:   []string{"Data", "Descrição", "Valor", "Categoria"},
		},
		{
			name:          "comma with CRLF",
			data:          "Date,Description,Amount\r\n2024-03-15,Coffee,3.50\r\n",
			wantDelimiter: ',',
			wantSkip:      0,
			wantHeaders:   []string{"Date", "Description", "Amount"},
		},
		{
			name:          "metadata lines above header",
			data:          "Extrato de conta\nPeríodo: março\n\nData;Histórico;Valor;Saldo\n01/03/2024;PIX;-10,00;90,00\n",
			wantDelimiter: ';',
			wantSkip:      3,
			wantHeaders:   []string{"Data", "Histórico", "Valor", "Saldo"},
		},
		{
			name:          "two columns",
			data:          "Descrição;Valor\nPadaria;12,50\n",
			wantDelimiter: ';',
			wantSkip:      0,
			wantHeaders:   []string{"Descrição", "Valor"},
		},
		{
			name:          "tab separated without keywords",
			data:          "a\tb\tc\n1\t2\t3\n",
			wantDelimiter: '\t',
			wantSkip:      0,
			wantHeaders:   []string{"a", "b", "c"},
		},
		{
			name:          "BOM is stripped from the first header",
			data:          "\uFEFFData;Valor\n01/01/2024;1\n",
			wantDelimiter: ';',
			wantSkip:      0,
			wantHeaders:   []string{"Data", "Valor"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := DetectConfig([]byte(tt.data))
			require.NoError(t, err)
			assert.Equal(t, tt.wantDelimiter, cfg.Delimiter)
			assert.Equal(t, tt.wantSkip, cfg.SkipLines)
			assert.Equal(t, tt.wantHeaders, cfg.Headers)
		})
	}
}

func TestDetectConfig_Empty(t *testing.T) {
	_, err := DetectConfig([]byte("  \n\n"))
	assert.ErrorIs(t, err, ErrEmptyFile)
}
