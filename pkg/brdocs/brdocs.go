// Package brdocs valida y formatea documentos brasileños: CPF, CNPJ (numérico y
// alfanumérico, vigente desde julio de 2026) y CEP.
package brdocs

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// Kind tipo de documento fiscal.
type Kind string

const (
	KindCPF  Kind = "cpf"
	KindCNPJ Kind = "cnpj"
)

// Errores de validación.
var (
	ErrInvalidLength      = errors.New("brdocs: longitud inválida")
	ErrRepeatedDigits     = errors.New("brdocs: secuencia de dígitos repetidos")
	ErrInvalidCheckDigits = errors.New("brdocs: dígitos verificadores inválidos")
	ErrInvalidCharacter   = errors.New("brdocs: carácter inválido")
)

var (
	cnpjWeights1 = [12]int{5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
	cnpjWeights2 = [13]int{6, 5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
)

// OnlyDigits elimina todo lo que no sea dígito.
func OnlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// normalize deja solo [0-9A-Z] (en mayúsculas); puntos, barras y guiones se descartan.
func normalize(s string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(s) {
		if (r >= '0' && r <= '9') || (r >= 'A' && r <= 'Z') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidateCPF valida un CPF con o sin máscara ("529.982.247-25" o "52998224725").
func ValidateCPF(s string) error {
	d := OnlyDigits(s)
	if len(d) != 11 {
		return fmt.Errorf("%w: CPF requiere 11 dígitos, se recibieron %d", ErrInvalidLength, len(d))
	}
	if allSame(d) {
		return ErrRepeatedDigits
	}
	dv1, dv2, err := ComputeCPFCheckDigits(d[:9])
	if err != nil {
		return err
	}
	if d[9] != dv1 || d[10] != dv2 {
		return ErrInvalidCheckDigits
	}
	return nil
}

// ComputeCPFCheckDigits calcula los dos dígitos verificadores para los 9 dígitos base.
func ComputeCPFCheckDigits(base string) (byte, byte, error) {
	d := OnlyDigits(base)
	if len(d) != 9 {
		return 0, 0, fmt.Errorf("%w: base de CPF requiere 9 dígitos", ErrInvalidLength)
	}
	sum := 0
	for i := 0; i < 9; i++ {
		sum += int(d[i]-'0') * (10 - i)
	}
	dv1 := mod11Digit(sum)
	sum = 0
	for i := 0; i < 9; i++ {
		sum += int(d[i]-'0') * (11 - i)
	}
	sum += int(dv1-'0') * 2
	return dv1, mod11Digit(sum), nil
}

// ValidateCNPJ valida un CNPJ numérico o alfanumérico, con o sin máscara.
// Los 12 primeros caracteres pueden ser [0-9A-Z]; los dos verificadores son siempre dígitos.
func ValidateCNPJ(s string) error {
	n := normalize(s)
	if len(n) != 14 {
		return fmt.Errorf("%w: CNPJ requiere 14 caracteres, se recibieron %d", ErrInvalidLength, len(n))
	}
	if !isDigit(n[12]) || !isDigit(n[13]) {
		return fmt.Errorf("%w: los verificadores del CNPJ deben ser numéricos", ErrInvalidCharacter)
	}
	if allSame(n) {
		return ErrRepeatedDigits
	}
	dv1, dv2, err := ComputeCNPJCheckDigits(n[:12])
	if err != nil {
		return err
	}
	if n[12] != dv1 || n[13] != dv2 {
		return ErrInvalidCheckDigits
	}
	return nil
}

// ComputeCNPJCheckDigits calcula los verificadores para la raíz+orden (12 caracteres).
// Cada carácter vale su código ASCII menos 48, lo que mantiene el cálculo clásico para dígitos.
func ComputeCNPJCheckDigits(base string) (byte, byte, error) {
	n := normalize(base)
	if len(n) != 12 {
		return 0, 0, fmt.Errorf("%w: base de CNPJ requiere 12 caracteres", ErrInvalidLength)
	}
	sum := 0
	for i := 0; i < 12; i++ {
		sum += int(n[i]-'0') * cnpjWeights1[i]
	}
	dv1 := mod11Digit(sum)
	sum = 0
	for i := 0; i < 12; i++ {
		sum += int(n[i]-'0') * cnpjWeights2[i]
	}
	sum += int(dv1-'0') * cnpjWeights2[12]
	return dv1, mod11Digit(sum), nil
}

// ValidateDocument detecta el tipo por longitud (11 = CPF, 14 = CNPJ) y valida.
// Devuelve además el documento normalizado (sin máscara).
func ValidateDocument(s string) (Kind, string, error) {
	n := normalize(s)
	switch len(n) {
	case 11:
		if OnlyDigits(n) != n {
			return "", "", fmt.Errorf("%w: CPF solo admite dígitos", ErrInvalidCharacter)
		}
		return KindCPF, n, ValidateCPF(n)
	case 14:
		return KindCNPJ, n, ValidateCNPJ(n)
	default:
		return "", "", fmt.Errorf("%w: documento con %d caracteres", ErrInvalidLength, len(n))
	}
}

// FormatCPF aplica la máscara 000.000.000-00. Devuelve el input si no tiene 11 dígitos.
func FormatCPF(s string) string {
	d := OnlyDigits(s)
	if len(d) != 11 {
		return s
	}
	return d[0:3] + "." + d[3:6] + "." + d[6:9] + "-" + d[9:11]
}

// FormatCNPJ aplica la máscara 00.000.000/0000-00.
func FormatCNPJ(s string) string {
	n := normalize(s)
	if len(n) != 14 {
		return s
	}
	return n[0:2] + "." + n[2:5] + "." + n[5:8] + "/" + n[8:12] + "-" + n[12:14]
}

// NormalizeCEP devuelve los 8 dígitos del CEP ("01310-100" → "01310100").
func NormalizeCEP(s string) (string, error) {
	for _, r := range s {
		if !unicode.IsDigit(r) && r != '-' && r != '.' && r != ' ' {
			return "", fmt.Errorf("%w: CEP %q", ErrInvalidCharacter, s)
		}
	}
	d := OnlyDigits(s)
	if len(d) != 8 {
		return "", fmt.Errorf("%w: CEP requiere 8 dígitos", ErrInvalidLength)
	}
	return d, nil
}

// Mask oculta el documento dejando solo los dos últimos caracteres visibles (logs y LGPD).
func Mask(doc string) string {
	n := normalize(doc)
	if len(n) <= 2 {
		return strings.Repeat("*", len(n))
	}
	return strings.Repeat("*", len(n)-2) + n[len(n)-2:]
}

func mod11Digit(sum int) byte {
	r := sum % 11
	if r < 2 {
		return '0'
	}
	return byte('0' + (11 - r))
}

func allSame(s string) bool {
	for i := 1; i < len(s); i++ {
		if s[i] != s[0] {
			return false
		}
	}
	return true
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
