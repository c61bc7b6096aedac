package http

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/erp-api/internal/application/dto"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// parseBody decodifica el JSON y valida los tags del DTO. Ante error ya escribió la respuesta 400
// y devuelve errBodyHandled para que el handler corte.
func parseBody(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		_ = badRequest(c, "INVALID_BODY", "Corpo da requisição inválido.")
		return errBodyHandled
	}
	return validateStruct(c, dst)
}

// parseQuery igual que parseBody para filtros en query string.
func parseQuery(c *fiber.Ctx, dst any) error {
	if err := c.QueryParser(dst); err != nil {
		_ = badRequest(c, "INVALID_QUERY", "Parâmetros de consulta inválidos.")
		return errBodyHandled
	}
	return validateStruct(c, dst)
}

func validateStruct(c *fiber.Ctx, dst any) error {
	if err := validate.Struct(dst); err != nil {
		_ = c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: validationMessage(err)})
		return errBodyHandled
	}
	return nil
}

var errBodyHandled = errors.New("respuesta ya enviada")

// validationMessage resume los campos inválidos: "campos inválidos: email (email), items (min)".
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "Dados inválidos."
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s (%s)", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return "Campos inválidos: " + strings.Join(parts, ", ")
}

// page lee limit/offset con los topes del listado.
func page(c *fiber.Ctx) (limit, offset int) {
	p := dto.PageRequest{Limit: c.QueryInt("limit", 20), Offset: c.QueryInt("offset", 0)}
	if p.Limit > 100 {
		p.Limit = 100
	}
	p.DefaultPage()
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p.Limit, p.Offset
}
