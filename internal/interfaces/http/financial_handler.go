package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/erp-api/internal/application/dto"
	"github.com/jhoicas/erp-api/internal/application/usecase"
)

// FinancialHandler contas a receber / a pagar y flujo de caja.
type FinancialHandler struct {
	uc  *usecase.FinancialUseCase
	log zerolog.Logger
}

// NewFinancialHandler construye el handler.
func NewFinancialHandler(uc *usecase.FinancialUseCase, log zerolog.Logger) *FinancialHandler {
	return &FinancialHandler{uc: uc, log: log}
}

// Create godoc
// @Summary      Crear lanzamiento
// @Tags         financial
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateEntryRequest  true  "Lanzamiento"
// @Success      201   {object}  dto.FinancialEntryResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/financial/entries [post]
func (h *FinancialHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateEntryRequest
	if err := parseBody(c, &in); err != nil {
		return nil
	}
	out, err := h.uc.Create(c.UserContext(), GetCompanyID(c), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// MarkPaid godoc
// @Summary      Dar de baja un lanzamiento abierto
// @Tags         financial
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del lanzamiento"
// @Param        body  body  dto.MarkPaidRequest  false  "paid_at, payment_method"
// @Success      200   {object}  dto.FinancialEntryResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/financial/entries/{id}/pay [post]
func (h *FinancialHandler) MarkPaid(c *fiber.Ctx) error {
	var in dto.MarkPaidRequest
	if len(c.Body()) > 0 {
		if err := parseBody(c, &in); err != nil {
			return nil
		}
	}
	out, err := h.uc.MarkPaid(c.UserContext(), GetCompanyID(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// Cancel godoc
// @Summary      Cancelar lanzamiento abierto
// @Tags         financial
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del lanzamiento"
// @Success      200  {object}  dto.FinancialEntryResponse
// @Router       /api/financial/entries/{id}/cancel [post]
func (h *FinancialHandler) Cancel(c *fiber.Ctx) error {
	out, err := h.uc.Cancel(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener lanzamiento
// @Tags         financial
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del lanzamiento"
// @Success      200  {object}  dto.FinancialEntryResponse
// @Router       /api/financial/entries/{id} [get]
func (h *FinancialHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar lanzamientos
// @Tags         financial
// @Security     Bearer
// @Produce      json
// @Param        type      query  string  false  "receivable | payable"
// @Param        status    query  string  false  "open | paid | cancelled"
// @Param        due_from  query  string  false  "YYYY-MM-DD"
// @Param        due_to    query  string  false  "YYYY-MM-DD"
// @Param        overdue   query  bool    false  "Solo vencidos"
// @Success      200  {object}  dto.FinancialListResponse
// @Router       /api/financial/entries [get]
func (h *FinancialHandler) List(c *fiber.Ctx) error {
	var in dto.FinancialFilterRequest
	if err := parseQuery(c, &in); err != nil {
		return nil
	}
	out, err := h.uc.List(c.UserContext(), GetCompanyID(c), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// CashFlow godoc
// @Summary      Resumen de flujo de caja
// @Tags         financial
// @Security     Bearer
// @Produce      json
// @Param        from  query  string  false  "YYYY-MM-DD (por defecto, inicio del mes)"
// @Param        to    query  string  false  "YYYY-MM-DD (por defecto, un mes desde from)"
// @Success      200  {object}  dto.CashFlowResponse
// @Router       /api/financial/cashflow [get]
func (h *FinancialHandler) CashFlow(c *fiber.Ctx) error {
	out, err := h.uc.CashFlow(c.UserContext(), GetCompanyID(c), c.Query("from"), c.Query("to"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}
