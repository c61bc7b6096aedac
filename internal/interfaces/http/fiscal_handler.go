package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/erp-api/internal/application/dto"
	"github.com/jhoicas/erp-api/internal/application/fiscal"
)

// FiscalHandler emisión y consulta de NF-e.
type FiscalHandler struct {
	uc  *fiscal.UseCase
	log zerolog.Logger
}

// NewFiscalHandler construye el handler.
func NewFiscalHandler(uc *fiscal.UseCase, log zerolog.Logger) *FiscalHandler {
	return &FiscalHandler{uc: uc, log: log}
}

// Issue godoc
// @Summary      Emitir NF-e de una venta
// @Tags         fiscal
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.IssueNFeRequest  true  "sale_id"
// @Success      202   {object}  dto.FiscalInvoiceResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/fiscal/nfe [post]
func (h *FiscalHandler) Issue(c *fiber.Ctx) error {
	var in dto.IssueNFeRequest
	if err := parseBody(c, &in); err != nil {
		return nil
	}
	out, err := h.uc.Issue(c.UserContext(), GetCompanyID(c), in.SaleID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(out)
}

// Refresh godoc
// @Summary      Consultar el estado en el proveedor
// @Description  Al autorizarse descarga, valida y archiva el XML.
// @Tags         fiscal
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la NF-e"
// @Success      200  {object}  dto.FiscalInvoiceResponse
// @Router       /api/fiscal/nfe/{id}/refresh [post]
func (h *FiscalHandler) Refresh(c *fiber.Ctx) error {
	out, err := h.uc.Refresh(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// Cancel godoc
// @Summary      Cancelar NF-e
// @Tags         fiscal
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la NF-e"
// @Param        body  body  dto.CancelNFeRequest  true  "Justificativa (15 a 255 caracteres)"
// @Success      200   {object}  dto.FiscalInvoiceResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/fiscal/nfe/{id}/cancel [post]
func (h *FiscalHandler) Cancel(c *fiber.Ctx) error {
	var in dto.CancelNFeRequest
	if err := parseBody(c, &in); err != nil {
		return nil
	}
	out, err := h.uc.Cancel(c.UserContext(), GetCompanyID(c), c.Params("id"), in.Justification)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener NF-e
// @Tags         fiscal
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la NF-e"
// @Success      200  {object}  dto.FiscalInvoiceResponse
// @Router       /api/fiscal/nfe/{id} [get]
func (h *FiscalHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar NF-e
// @Tags         fiscal
// @Security     Bearer
// @Produce      json
// @Param        status  query  string  false  "pending | processing | authorized | rejected | cancelled | error"
// @Success      200  {array}  dto.FiscalInvoiceResponse
// @Router       /api/fiscal/nfe [get]
func (h *FiscalHandler) List(c *fiber.Ctx) error {
	limit, offset := page(c)
	out, err := h.uc.List(c.UserContext(), GetCompanyID(c), c.Query("status"), limit, offset)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// DownloadXML godoc
// @Summary      XML autorizado archivado
// @Tags         fiscal
// @Security     Bearer
// @Produce      application/xml
// @Param        id   path  string  true  "ID de la NF-e"
// @Success      200  {file}  file
// @Router       /api/fiscal/nfe/{id}/xml [get]
func (h *FiscalHandler) DownloadXML(c *fiber.Ctx) error {
	data, filename, err := h.uc.DownloadXML(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationXMLCharsetUTF8)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(data)
}
