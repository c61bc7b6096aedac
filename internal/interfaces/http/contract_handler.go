package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/erp-api/internal/application/dto"
	"github.com/jhoicas/erp-api/internal/application/usecase"
)

// ContractHandler contratos con clientes.
type ContractHandler struct {
	uc  *usecase.ContractUseCase
	log zerolog.Logger
}

// NewContractHandler construye el handler.
func NewContractHandler(uc *usecase.ContractUseCase, log zerolog.Logger) *ContractHandler {
	return &ContractHandler{uc: uc, log: log}
}

// Create godoc
// @Summary      Crear contrato (draft)
// @Tags         contracts
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateContractRequest  true  "Contrato"
// @Success      201   {object}  dto.ContractResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/contracts [post]
func (h *ContractHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateContractRequest
	if err := parseBody(c, &in); err != nil {
		return nil
	}
	out, err := h.uc.Create(c.UserContext(), GetCompanyID(c), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener contrato
// @Tags         contracts
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del contrato"
// @Success      200  {object}  dto.ContractResponse
// @Router       /api/contracts/{id} [get]
func (h *ContractHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar contratos
// @Tags         contracts
// @Security     Bearer
// @Produce      json
// @Param        status  query  string  false  "draft | active | suspended | expired | terminated"
// @Success      200  {object}  dto.ContractListResponse
// @Router       /api/contracts [get]
func (h *ContractHandler) List(c *fiber.Ctx) error {
	limit, offset := page(c)
	out, err := h.uc.List(c.UserContext(), GetCompanyID(c), c.Query("status"), limit, offset)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// Expiring godoc
// @Summary      Contratos que vencen en los próximos días
// @Tags         contracts
// @Security     Bearer
// @Produce      json
// @Param        days  query  int  false  "Ventana en días"  default(30)
// @Success      200  {array}  dto.ContractResponse
// @Router       /api/contracts/expiring [get]
func (h *ContractHandler) Expiring(c *fiber.Ctx) error {
	out, err := h.uc.ListExpiring(c.UserContext(), GetCompanyID(c), c.QueryInt("days", 30))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// Transition godoc
// @Summary      Cambiar el estado del contrato
// @Tags         contracts
// @Security     Bearer
// @Produce      json
// @Param        id      path  string  true  "ID del contrato"
// @Param        action  path  string  true  "activate | suspend | terminate"
// @Success      200  {object}  dto.ContractResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/contracts/{id}/{action} [post]
func (h *ContractHandler) Transition(c *fiber.Ctx) error {
	ctx, companyID, id := c.UserContext(), GetCompanyID(c), c.Params("id")
	var (
		out *dto.ContractResponse
		err error
	)
	switch c.Params("action") {
	case "activate":
		out, err = h.uc.Activate(ctx, companyID, id)
	case "suspend":
		out, err = h.uc.Suspend(ctx, companyID, id)
	case "terminate":
		out, err = h.uc.Terminate(ctx, companyID, id)
	default:
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "Ação desconhecida."})
	}
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// Renew godoc
// @Summary      Renovar contrato
// @Tags         contracts
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del contrato"
// @Param        body  body  dto.RenewContractRequest  true  "Meses"
// @Success      200   {object}  dto.ContractResponse
// @Router       /api/contracts/{id}/renew [post]
func (h *ContractHandler) Renew(c *fiber.Ctx) error {
	var in dto.RenewContractRequest
	if err := parseBody(c, &in); err != nil {
		return nil
	}
	out, err := h.uc.Renew(c.UserContext(), GetCompanyID(c), c.Params("id"), in.Months)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// ExpireSweep godoc
// @Summary      Vencer contratos con fecha final pasada
// @Description  Los contratos con renovación automática se renuevan en lugar de vencer.
// @Tags         contracts
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  usecase.ExpireResult
// @Router       /api/contracts/expire-sweep [post]
func (h *ContractHandler) ExpireSweep(c *fiber.Ctx) error {
	out, err := h.uc.ExpireSweep(c.UserContext(), GetCompanyID(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}
