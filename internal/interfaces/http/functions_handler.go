package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/erp-api/internal/application/dto"
	"github.com/jhoicas/erp-api/internal/application/usecase"
	"github.com/jhoicas/erp-api/internal/domain"
	"github.com/jhoicas/erp-api/internal/domain/entity"
)

// functionRequest sobre común de /functions/v1/:name; cada acción lee sus propios campos.
type functionRequest struct {
	Action   string `json:"action"`
	Document string `json:"document"`
	CEP      string `json:"cep"`
	ID       string `json:"id"`
	Limit    int    `json:"limit"`
}

type functionResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
}

var errInvalidFunctionBody = errors.New("cuerpo inválido")

type functionValidationError struct{ msg string }

func (e functionValidationError) Error() string { return e.msg }

type functionAction func(c *fiber.Ctx, req functionRequest) (any, error)

// FunctionsHandler despacha las funciones por nombre y acción.
type FunctionsHandler struct {
	functions map[string]map[string]functionAction
	log       zerolog.Logger
}

// NewFunctionsHandler registra customer-validation, executar-auditoria y profile-sync.
func NewFunctionsHandler(customers *usecase.CustomerUseCase, audit *usecase.AuditUseCase, users *usecase.UserUseCase, log zerolog.Logger) *FunctionsHandler {
	h := &FunctionsHandler{log: log}
	h.functions = map[string]map[string]functionAction{
		"customer-validation": {
			"validate_document": func(c *fiber.Ctx, req functionRequest) (any, error) {
				return customers.ValidateDocument(req.Document), nil
			},
			"lookup_cep": func(c *fiber.Ctx, req functionRequest) (any, error) {
				return customers.LookupCEP(c.UserContext(), req.CEP)
			},
			"check_duplicate": func(c *fiber.Ctx, req functionRequest) (any, error) {
				return customers.CheckDuplicate(c.UserContext(), GetCompanyID(c), req.Document)
			},
		},
		"executar-auditoria": {
			"run": func(c *fiber.Ctx, _ functionRequest) (any, error) {
				if GetRole(c) != entity.RoleAdmin {
					return nil, domain.ErrForbidden
				}
				return audit.Run(c.UserContext(), GetCompanyID(c), GetUserID(c))
			},
			"history": func(c *fiber.Ctx, req functionRequest) (any, error) {
				return audit.History(c.UserContext(), GetCompanyID(c), req.Limit)
			},
			"get": func(c *fiber.Ctx, req functionRequest) (any, error) {
				return audit.Get(c.UserContext(), GetCompanyID(c), req.ID)
			},
		},
		"profile-sync": {
			"get": func(c *fiber.Ctx, _ functionRequest) (any, error) {
				return users.GetProfile(c.UserContext(), GetUserID(c))
			},
			"update": func(c *fiber.Ctx, _ functionRequest) (any, error) {
				var in dto.UpdateProfileRequest
				if err := c.BodyParser(&in); err != nil {
					return nil, errInvalidFunctionBody
				}
				if err := validate.Struct(in); err != nil {
					return nil, functionValidationError{msg: validationMessage(err)}
				}
				return users.UpdateProfile(c.UserContext(), GetUserID(c), in)
			},
		},
	}
	return h
}

// Invoke godoc
// @Summary      Ejecutar una función
// @Description  Cuerpo {"action": "...", ...}. Respuesta {"success": bool, "data"|"error"}.
// @Tags         functions
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        name  path  string  true  "customer-validation | executar-auditoria | profile-sync"
// @Success      200   {object}  functionResponse
// @Failure      400   {object}  functionResponse
// @Failure      404   {object}  functionResponse
// @Router       /functions/v1/{name} [post]
func (h *FunctionsHandler) Invoke(c *fiber.Ctx) error {
	name := c.Params("name")
	actions, ok := h.functions[name]
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(functionResponse{Code: "FUNCTION_NOT_FOUND", Error: "Função não encontrada: " + name})
	}
	var req functionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(functionResponse{Code: "INVALID_BODY", Error: "Corpo da requisição inválido."})
	}
	action, ok := actions[req.Action]
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(functionResponse{Code: "UNKNOWN_ACTION", Error: "Ação desconhecida: " + req.Action})
	}

	data, err := action(c, req)
	if err != nil {
		return h.fail(c, name, req.Action, err)
	}
	return c.JSON(functionResponse{Success: true, Data: data})
}

func (h *FunctionsHandler) fail(c *fiber.Ctx, name, action string, err error) error {
	var verr functionValidationError
	switch {
	case errors.Is(err, errInvalidFunctionBody):
		return c.Status(fiber.StatusBadRequest).JSON(functionResponse{Code: "INVALID_BODY", Error: "Corpo da requisição inválido."})
	case errors.As(err, &verr):
		return c.Status(fiber.StatusBadRequest).JSON(functionResponse{Code: "VALIDATION", Error: verr.msg})
	}
	status, body := sanitizeError(err)
	if status >= fiber.StatusInternalServerError {
		h.log.Error().Err(err).Str("function", name).Str("action", action).Str("request_id", requestID(c)).Msg("función fallida")
	}
	return c.Status(status).JSON(functionResponse{Code: body.Code, Error: body.Message})
}
