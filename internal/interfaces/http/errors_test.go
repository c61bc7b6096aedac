package http

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/erp-api/internal/domain"
)

func TestSanitizeError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{"no encontrado", domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND", "Registro não encontrado."},
		{"detalle para el usuario", domain.Detail(domain.ErrInvalidInput, "quantity deve ser maior que zero"), fiber.StatusBadRequest, "VALIDATION", "Dados inválidos: quantity deve ser maior que zero"},
		{"detalle envuelto otra vez", fmt.Errorf("sales: %w", domain.Detail(domain.ErrConflict, "venda possui NF-e authorized")), fiber.StatusConflict, "CONFLICT", "Operação em conflito com o estado atual: venda possui NF-e authorized"},
		{"texto interno no se expone", fmt.Errorf("%w: brdocs: longitud inválida: documento con 3 caracteres", domain.ErrInvalidDocument), fiber.StatusBadRequest, "INVALID_DOCUMENT", "CPF ou CNPJ inválido."},
		{"envuelto con contexto previo", fmt.Errorf("sales: %w", domain.ErrInsufficientStock), fiber.StatusConflict, "INSUFFICIENT_STOCK", "Estoque insuficiente."},
		{"usuario inexistente igual que credenciales", domain.ErrUserNotFound, fiber.StatusUnauthorized, "UNAUTHORIZED", "E-mail ou senha incorretos."},
		{"proveedor caído", domain.ErrProviderUnavailable, fiber.StatusBadGateway, "PROVIDER_UNAVAILABLE", "Serviço externo indisponível. Tente novamente."},
		{"driver duplicate key", errors.New(`ERROR: duplicate key value violates unique constraint "customers_doc"`), fiber.StatusConflict, "DUPLICATE", "Este registro já existe."},
		{"proveedor rate limit", errors.New("viacep: Too Many Requests"), fiber.StatusTooManyRequests, "RATE_LIMITED", "Muitas tentativas. Aguarde alguns minutos."},
		{"desconocido", errors.New("pq: connection reset by peer"), fiber.StatusInternalServerError, "INTERNAL", genericErrorMessage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := sanitizeError(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, body.Code)
			assert.Equal(t, tt.message, body.Message)
		})
	}
}

func TestSanitizeError_5xxNoFiltraDetalle(t *testing.T) {
	_, body := sanitizeError(fmt.Errorf("%w: token sk_live_123", domain.ErrNotConfigured))
	assert.Equal(t, "Integração não configurada.", body.Message)
}

func TestResourceOf(t *testing.T) {
	assert.Equal(t, "sales", resourceOf("/api/sales/123/cancel"))
	assert.Equal(t, "customer-validation", resourceOf("/functions/v1/customer-validation"))
	assert.Equal(t, "me", resourceOf("/api/me"))
}
