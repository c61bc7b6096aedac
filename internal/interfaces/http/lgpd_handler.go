package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/erp-api/internal/application/dto"
	"github.com/jhoicas/erp-api/internal/application/usecase"
)

// LGPDHandler consentimientos y solicitudes de titulares.
type LGPDHandler struct {
	uc  *usecase.LGPDUseCase
	log zerolog.Logger
}

// NewLGPDHandler construye el handler.
func NewLGPDHandler(uc *usecase.LGPDUseCase, log zerolog.Logger) *LGPDHandler {
	return &LGPDHandler{uc: uc, log: log}
}

// RecordConsent godoc
// @Summary      Registrar consentimiento
// @Tags         lgpd
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RecordConsentRequest  true  "Consentimiento"
// @Success      201   {object}  dto.ConsentResponse
// @Router       /api/lgpd/consents [post]
func (h *LGPDHandler) RecordConsent(c *fiber.Ctx) error {
	var in dto.RecordConsentRequest
	if err := parseBody(c, &in); err != nil {
		return nil
	}
	out, err := h.uc.RecordConsent(c.UserContext(), GetCompanyID(c), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// RevokeConsent godoc
// @Summary      Revocar consentimiento
// @Tags         lgpd
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del consentimiento"
// @Success      200  {object}  dto.ConsentResponse
// @Router       /api/lgpd/consents/{id}/revoke [post]
func (h *LGPDHandler) RevokeConsent(c *fiber.Ctx) error {
	out, err := h.uc.RevokeConsent(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// ListConsents godoc
// @Summary      Consentimientos de un cliente
// @Tags         lgpd
// @Security     Bearer
// @Produce      json
// @Param        customer_id  query  string  true  "Cliente"
// @Success      200  {array}  dto.ConsentResponse
// @Router       /api/lgpd/consents [get]
func (h *LGPDHandler) ListConsents(c *fiber.Ctx) error {
	customerID := c.Query("customer_id")
	if customerID == "" {
		return badRequest(c, "VALIDATION", "customer_id é obrigatório.")
	}
	out, err := h.uc.ListConsents(c.UserContext(), GetCompanyID(c), customerID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// OpenRequest godoc
// @Summary      Abrir solicitud del titular (exportación o anonimización)
// @Tags         lgpd
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.OpenDataRequestRequest  true  "Solicitud"
// @Success      201   {object}  dto.DataRequestResponse
// @Router       /api/lgpd/requests [post]
func (h *LGPDHandler) OpenRequest(c *fiber.Ctx) error {
	var in dto.OpenDataRequestRequest
	if err := parseBody(c, &in); err != nil {
		return nil
	}
	out, err := h.uc.OpenRequest(c.UserContext(), GetCompanyID(c), GetUserID(c), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ProcessRequest godoc
// @Summary      Procesar solicitud pendiente
// @Tags         lgpd
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la solicitud"
// @Success      200  {object}  dto.DataRequestResponse
// @Router       /api/lgpd/requests/{id}/process [post]
func (h *LGPDHandler) ProcessRequest(c *fiber.Ctx) error {
	out, err := h.uc.ProcessRequest(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// RejectRequest godoc
// @Summary      Rechazar solicitud
// @Tags         lgpd
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la solicitud"
// @Param        body  body  dto.RejectDataRequestRequest  true  "Motivo"
// @Success      200   {object}  dto.DataRequestResponse
// @Router       /api/lgpd/requests/{id}/reject [post]
func (h *LGPDHandler) RejectRequest(c *fiber.Ctx) error {
	var in dto.RejectDataRequestRequest
	if err := parseBody(c, &in); err != nil {
		return nil
	}
	out, err := h.uc.RejectRequest(c.UserContext(), GetCompanyID(c), c.Params("id"), in.Reason)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// ListRequests godoc
// @Summary      Listar solicitudes
// @Tags         lgpd
// @Security     Bearer
// @Produce      json
// @Param        status  query  string  false  "pending | completed | rejected"
// @Success      200  {array}  dto.DataRequestResponse
// @Router       /api/lgpd/requests [get]
func (h *LGPDHandler) ListRequests(c *fiber.Ctx) error {
	out, err := h.uc.ListRequests(c.UserContext(), GetCompanyID(c), c.Query("status"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// GetRequest godoc
// @Summary      Obtener solicitud (incluye el resultado de la exportación)
// @Tags         lgpd
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la solicitud"
// @Success      200  {object}  dto.DataRequestResponse
// @Router       /api/lgpd/requests/{id} [get]
func (h *LGPDHandler) GetRequest(c *fiber.Ctx) error {
	out, err := h.uc.GetRequest(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}
