package usecase

import (
	"errors"

	"github.com/jhoicas/erp-api/internal/application/dto"
	"github.com/jhoicas/erp-api/internal/domain"
	"github.com/jhoicas/erp-api/internal/domain/entity"
	"github.com/jhoicas/erp-api/pkg/brdocs"
)

// DocumentMessage motivo del rechazo de un CPF/CNPJ en texto para el usuario.
func DocumentMessage(err error) string {
	switch {
	case errors.Is(err, brdocs.ErrInvalidLength):
		return "CPF deve ter 11 dígitos e CNPJ 14 caracteres"
	case errors.Is(err, brdocs.ErrRepeatedDigits):
		return "sequência de dígitos repetidos"
	case errors.Is(err, brdocs.ErrInvalidCheckDigits):
		return "dígitos verificadores não conferem"
	case errors.Is(err, brdocs.ErrInvalidCharacter):
		return "contém caracteres inválidos"
	}
	return "documento inválido"
}

// DocumentError convierte un error de brdocs en domain.ErrInvalidDocument con mensaje fijo.
func DocumentError(err error) error {
	return domain.Detail(domain.ErrInvalidDocument, "%s", DocumentMessage(err))
}

// AddressToDTO convierte la dirección de dominio a DTO.
func AddressToDTO(a entity.Address) dto.AddressDTO {
	return dto.AddressDTO{
		CEP:        a.CEP,
		Street:     a.Street,
		Number:     a.Number,
		Complement: a.Complement,
		District:   a.District,
		City:       a.City,
		UF:         a.UF,
		IBGECode:   a.IBGECode,
	}
}

// AddressFromDTO normaliza el CEP (8 dígitos) y la UF en mayúsculas. Un CEP inválido
// devuelve domain.ErrInvalidInput.
func AddressFromDTO(in dto.AddressDTO) (entity.Address, error) {
	a := entity.Address{
		Street:     in.Street,
		Number:     in.Number,
		Complement: in.Complement,
		District:   in.District,
		City:       in.City,
		UF:         upper(in.UF),
		IBGECode:   in.IBGECode,
	}
	if in.CEP != "" {
		cep, err := brdocs.NormalizeCEP(in.CEP)
		if err != nil {
			return entity.Address{}, domain.Detail(domain.ErrInvalidInput, "CEP deve ter 8 dígitos")
		}
		a.CEP = cep
	}
	return a, nil
}

// mergeAddress completa base con los campos que ViaCEP conoce; número y complemento vienen del usuario.
func mergeAddress(base entity.Address, found *entity.Address) entity.Address {
	base.CEP = found.CEP
	base.Street = found.Street
	base.District = found.District
	base.City = found.City
	base.UF = found.UF
	base.IBGECode = found.IBGECode
	if base.Complement == "" {
		base.Complement = found.Complement
	}
	return base
}

func upper(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			b[i] = c - 32
		}
	}
	return string(b)
}
