package http

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/erp-api/internal/application/dto"
	"github.com/jhoicas/erp-api/internal/domain"
)

// Mensaje genérico cuando el error no es conocido; el detalle queda solo en el log.
const genericErrorMessage = "Ocorreu um erro inesperado. Tente novamente."

type errorMapping struct {
	err     error
	status  int
	code    string
	message string
}

var domainErrors = []errorMapping{
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND", "Registro não encontrado."},
	{domain.ErrUserNotFound, fiber.StatusUnauthorized, "UNAUTHORIZED", "E-mail ou senha incorretos."},
	{domain.ErrInvalidCredentials, fiber.StatusUnauthorized, "UNAUTHORIZED", "E-mail ou senha incorretos."},
	{domain.ErrEmailAlreadyExists, fiber.StatusConflict, "EMAIL_EXISTS", "Este e-mail já está cadastrado."},
	{domain.ErrInvalidDocument, fiber.StatusBadRequest, "INVALID_DOCUMENT", "CPF ou CNPJ inválido."},
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION", "Dados inválidos."},
	{domain.ErrDuplicate, fiber.StatusConflict, "DUPLICATE", "Este registro já existe."},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED", "Sessão inválida ou expirada."},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN", "Você não tem permissão para esta ação."},
	{domain.ErrInsufficientStock, fiber.StatusConflict, "INSUFFICIENT_STOCK", "Estoque insuficiente."},
	{domain.ErrInvalidTransition, fiber.StatusConflict, "INVALID_TRANSITION", "Operação não permitida no status atual."},
	{domain.ErrConflict, fiber.StatusConflict, "CONFLICT", "Operação em conflito com o estado atual."},
	{domain.ErrRateLimited, fiber.StatusTooManyRequests, "RATE_LIMITED", "Muitas tentativas. Aguarde alguns minutos."},
	{domain.ErrProviderUnavailable, fiber.StatusBadGateway, "PROVIDER_UNAVAILABLE", "Serviço externo indisponível. Tente novamente."},
	{domain.ErrNotConfigured, fiber.StatusServiceUnavailable, "NOT_CONFIGURED", "Integração não configurada."},
}

// Textos crudos conocidos (drivers, proveedores) traducidos a mensajes amigables.
var rawErrors = []struct {
	needles []string
	mapping errorMapping
}{
	{[]string{"duplicate key", "unique constraint"}, errorMapping{status: fiber.StatusConflict, code: "DUPLICATE", message: "Este registro já existe."}},
	{[]string{"invalid credentials", "invalid login", "senha"}, errorMapping{status: fiber.StatusUnauthorized, code: "UNAUTHORIZED", message: "E-mail ou senha incorretos."}},
	{[]string{"rate limit", "too many requests"}, errorMapping{status: fiber.StatusTooManyRequests, code: "RATE_LIMITED", message: "Muitas tentativas. Aguarde alguns minutos."}},
}

// sanitizeError traduce err a (status, cuerpo) sin filtrar detalles técnicos.
// Solo el detalle de un domain.UserError se agrega al mensaje, y nunca en los 5xx.
func sanitizeError(err error) (int, dto.ErrorResponse) {
	for _, m := range domainErrors {
		if errors.Is(err, m.err) {
			msg := m.message
			if detail := userDetail(err); detail != "" && m.status < 500 {
				msg = strings.TrimSuffix(msg, ".") + ": " + detail
			}
			return m.status, dto.ErrorResponse{Code: m.code, Message: msg}
		}
	}
	lower := strings.ToLower(err.Error())
	for _, r := range rawErrors {
		for _, n := range r.needles {
			if strings.Contains(lower, n) {
				return r.mapping.status, dto.ErrorResponse{Code: r.mapping.code, Message: r.mapping.message}
			}
		}
	}
	return fiber.StatusInternalServerError, dto.ErrorResponse{Code: "INTERNAL", Message: genericErrorMessage}
}

func userDetail(err error) string {
	var ue *domain.UserError
	if errors.As(err, &ue) {
		return ue.Detail
	}
	return ""
}

// respondError escribe la respuesta sanitizada; los 5xx se registran con el error real.
func respondError(c *fiber.Ctx, log zerolog.Logger, err error) error {
	status, body := sanitizeError(err)
	if status >= fiber.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Path()).Str("request_id", requestID(c)).Msg("error no controlado")
	}
	return c.Status(status).JSON(body)
}

func badRequest(c *fiber.Ctx, code, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: code, Message: message})
}
