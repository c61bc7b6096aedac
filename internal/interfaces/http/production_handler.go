package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/erp-api/internal/application/dto"
	"github.com/jhoicas/erp-api/internal/application/production"
)

// ProductionHandler órdenes de producción.
type ProductionHandler struct {
	uc  *production.UseCase
	log zerolog.Logger
}

// NewProductionHandler construye el handler.
func NewProductionHandler(uc *production.UseCase, log zerolog.Logger) *ProductionHandler {
	return &ProductionHandler{uc: uc, log: log}
}

// Create godoc
// @Summary      Crear orden de producción
// @Tags         production
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateProductionOrderRequest  true  "Orden"
// @Success      201   {object}  dto.ProductionOrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/production/orders [post]
func (h *ProductionHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateProductionOrderRequest
	if err := parseBody(c, &in); err != nil {
		return nil
	}
	out, err := h.uc.Create(c.UserContext(), GetCompanyID(c), GetUserID(c), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Transition godoc
// @Summary      Avanzar la orden
// @Description  start: planned → in_progress. complete: consume insumos e ingresa el terminado. cancel: sin movimiento de stock.
// @Tags         production
// @Security     Bearer
// @Produce      json
// @Param        id      path  string  true  "ID de la orden"
// @Param        action  path  string  true  "start | complete | cancel"
// @Success      200  {object}  dto.ProductionOrderResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/production/orders/{id}/{action} [post]
func (h *ProductionHandler) Transition(c *fiber.Ctx) error {
	ctx, companyID, id := c.UserContext(), GetCompanyID(c), c.Params("id")
	var (
		out *dto.ProductionOrderResponse
		err error
	)
	switch c.Params("action") {
	case "start":
		out, err = h.uc.Start(ctx, companyID, id)
	case "complete":
		out, err = h.uc.Complete(ctx, companyID, GetUserID(c), id)
	case "cancel":
		out, err = h.uc.Cancel(ctx, companyID, id)
	default:
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "Ação desconhecida."})
	}
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener orden
// @Tags         production
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la orden"
// @Success      200  {object}  dto.ProductionOrderResponse
// @Router       /api/production/orders/{id} [get]
func (h *ProductionHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar órdenes
// @Tags         production
// @Security     Bearer
// @Produce      json
// @Param        status  query  string  false  "planned | in_progress | completed | cancelled"
// @Success      200  {array}  dto.ProductionOrderResponse
// @Router       /api/production/orders [get]
func (h *ProductionHandler) List(c *fiber.Ctx) error {
	limit, offset := page(c)
	out, err := h.uc.List(c.UserContext(), GetCompanyID(c), c.Query("status"), limit, offset)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}
