package nfe

import (
	"fmt"
	"strings"
)

// AccessKey chave de acesso (44 posiciones) ya validada.
type AccessKey string

// CheckDigit calcula el dígito verificador (pesos 2..9 de derecha a izquierda, módulo 11).
func CheckDigit(base string) (byte, error) {
	if len(base) != 43 {
		return 0, fmt.Errorf("nfe: base de la chave requiere 43 caracteres, se recibieron %d", len(base))
	}
	sum, weight := 0, 2
	for i := len(base) - 1; i >= 0; i-- {
		c := base[i]
		if !((c >= '0' && c <= '9') || (c >= 'A' && c <= 'Z')) {
			return 0, fmt.Errorf("nfe: carácter inválido %q en la chave", c)
		}
		sum += int(c-'0') * weight
		weight++
		if weight > 9 {
			weight = 2
		}
	}
	r := sum % 11
	if r < 2 {
		return '0', nil
	}
	return byte('0' + 11 - r), nil
}

// ValidateAccessKey verifica longitud, prefijo opcional "NFe" y dígito verificador.
func ValidateAccessKey(key string) (AccessKey, error) {
	k := strings.TrimPrefix(strings.TrimSpace(key), "NFe")
	if len(k) != 44 {
		return "", fmt.Errorf("nfe: la chave debe tener 44 caracteres, tiene %d", len(k))
	}
	dv, err := CheckDigit(k[:43])
	if err != nil {
		return "", err
	}
	if k[43] != dv {
		return "", fmt.Errorf("nfe: dígito verificador inválido: esperado %c, recibido %c", dv, k[43])
	}
	return AccessKey(k), nil
}

// CNPJ del emisor.
func (k AccessKey) CNPJ() string { return string(k)[6:20] }

// Model 55 o 65.
func (k AccessKey) Model() string { return string(k)[20:22] }

// Number nNF sin ceros a la izquierda.
func (k AccessKey) Number() string { return strings.TrimLeft(string(k)[25:34], "0") }
