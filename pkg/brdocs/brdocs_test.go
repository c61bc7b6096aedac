package brdocs_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/erp-api/pkg/brdocs"
)

func TestValidateCPF(t *testing.T) {
	cases := []struct {
		name string
		in   string
		err  error
	}{
		{"válido con máscara", "529.982.247-25", nil},
		{"válido sin máscara", "52998224725", nil},
		{"verificador incorrecto", "529.982.247-26", brdocs.ErrInvalidCheckDigits},
		{"repetidos", "111.111.111-11", brdocs.ErrRepeatedDigits},
		{"corto", "1234567890", brdocs.ErrInvalidLength},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := brdocs.ValidateCPF(tc.in)
			if tc.err == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.err)
		})
	}
}

func TestValidateCNPJ(t *testing.T) {
	assert.NoError(t, brdocs.ValidateCNPJ("11.222.333/0001-81"))
	assert.NoError(t, brdocs.ValidateCNPJ("11222333000181"))
	assert.ErrorIs(t, brdocs.ValidateCNPJ("11.222.333/0001-82"), brdocs.ErrInvalidCheckDigits)
	assert.ErrorIs(t, brdocs.ValidateCNPJ("00000000000000"), brdocs.ErrRepeatedDigits)
	assert.ErrorIs(t, brdocs.ValidateCNPJ("1122233300018"), brdocs.ErrInvalidLength)
}

// CNPJ alfanumérico: ejemplo oficial 12.ABC.345/01DE-35.
func TestValidateCNPJ_Alfanumerico(t *testing.T) {
	assert.NoError(t, brdocs.ValidateCNPJ("12.ABC.345/01DE-35"))
	assert.NoError(t, brdocs.ValidateCNPJ("12abc34501de35"))
	assert.ErrorIs(t, brdocs.ValidateCNPJ("12.ABC.345/01DE-36"), brdocs.ErrInvalidCheckDigits)
	assert.ErrorIs(t, brdocs.ValidateCNPJ("12.ABC.345/01DE-3X"), brdocs.ErrInvalidCharacter)
}

func TestComputeCheckDigits(t *testing.T) {
	d1, d2, err := brdocs.ComputeCPFCheckDigits("529982247")
	require.NoError(t, err)
	assert.Equal(t, "25", string([]byte{d1, d2}))

	d1, d2, err = brdocs.ComputeCNPJCheckDigits("112223330001")
	require.NoError(t, err)
	assert.Equal(t, "81", string([]byte{d1, d2}))
}

func TestValidateDocument(t *testing.T) {
	kind, doc, err := brdocs.ValidateDocument("529.982.247-25")
	require.NoError(t, err)
	assert.Equal(t, brdocs.KindCPF, kind)
	assert.Equal(t, "52998224725", doc)

	kind, doc, err = brdocs.ValidateDocument("11.222.333/0001-81")
	require.NoError(t, err)
	assert.Equal(t, brdocs.KindCNPJ, kind)
	assert.Equal(t, "11222333000181", doc)

	_, _, err = brdocs.ValidateDocument("123")
	assert.ErrorIs(t, err, brdocs.ErrInvalidLength)
}

func TestFormatYMask(t *testing.T) {
	assert.Equal(t, "529.982.247-25", brdocs.FormatCPF("52998224725"))
	assert.Equal(t, "11.222.333/0001-81", brdocs.FormatCNPJ("11222333000181"))
	assert.Equal(t, "*********25", brdocs.Mask("529.982.247-25"))
}

func TestNormalizeCEP(t *testing.T) {
	cep, err := brdocs.NormalizeCEP("01310-100")
	require.NoError(t, err)
	assert.Equal(t, "01310100", cep)

	_, err = brdocs.NormalizeCEP("0131010")
	assert.ErrorIs(t, err, brdocs.ErrInvalidLength)

	_, err = brdocs.NormalizeCEP("01310-10A")
	assert.ErrorIs(t, err, brdocs.ErrInvalidCharacter)
}
