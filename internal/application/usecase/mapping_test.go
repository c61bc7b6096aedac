package usecase

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/erp-api/internal/application/dto"
	"github.com/jhoicas/erp-api/internal/domain"
	"github.com/jhoicas/erp-api/pkg/brdocs"
)

func TestDocumentError_MensajeFijo(t *testing.T) {
	tests := []struct {
		document string
		message  string
	}{
		{"123", "CPF deve ter 11 dígitos e CNPJ 14 caracteres"},
		{"111.111.111-11", "sequência de dígitos repetidos"},
		{"529.982.247-24", "dígitos verificadores não conferem"},
	}
	for _, tt := range tests {
		t.Run(tt.document, func(t *testing.T) {
			_, _, err := brdocs.ValidateDocument(tt.document)
			require.Error(t, err)
			derr := DocumentError(err)
			assert.ErrorIs(t, derr, domain.ErrInvalidDocument)

			var ue *domain.UserError
			require.True(t, errors.As(derr, &ue))
			assert.Equal(t, tt.message, ue.Detail)
			assert.NotContains(t, ue.Detail, "brdocs")
		})
	}
}

func TestAddressFromDTO_CEPInvalido(t *testing.T) {
	_, err := AddressFromDTO(dto.AddressDTO{CEP: "0131-00"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	var ue *domain.UserError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, "CEP deve ter 8 dígitos", ue.Detail)

	a, err := AddressFromDTO(dto.AddressDTO{CEP: "01310-100", UF: "sp"})
	require.NoError(t, err)
	assert.Equal(t, "01310100", a.CEP)
	assert.Equal(t, "SP", a.UF)
}
