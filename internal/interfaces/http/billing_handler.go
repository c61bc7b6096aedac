package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/erp-api/internal/application/billing"
	"github.com/jhoicas/erp-api/internal/application/dto"
	"github.com/jhoicas/erp-api/internal/application/usecase"
)

// BillingHandler planes, checkout y webhook de Stripe.
type BillingHandler struct {
	uc    *billing.UseCase
	users *usecase.UserUseCase
	log   zerolog.Logger
}

// NewBillingHandler construye el handler. users resuelve el email del comprador.
func NewBillingHandler(uc *billing.UseCase, users *usecase.UserUseCase, log zerolog.Logger) *BillingHandler {
	return &BillingHandler{uc: uc, users: users, log: log}
}

// ListPlans godoc
// @Summary      Planes comerciales activos
// @Tags         billing
// @Produce      json
// @Success      200  {array}  dto.PlanResponse
// @Router       /api/billing/plans [get]
func (h *BillingHandler) ListPlans(c *fiber.Ctx) error {
	out, err := h.uc.ListPlans(c.UserContext())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// GetSubscription godoc
// @Summary      Suscripción de la empresa
// @Tags         billing
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.SubscriptionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/billing/subscription [get]
func (h *BillingHandler) GetSubscription(c *fiber.Ctx) error {
	out, err := h.uc.GetSubscription(c.UserContext(), GetCompanyID(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// Checkout godoc
// @Summary      Crear sesión de checkout para un plan
// @Tags         billing
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CheckoutRequest  true  "Plan"
// @Success      201   {object}  dto.CheckoutResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/billing/checkout [post]
func (h *BillingHandler) Checkout(c *fiber.Ctx) error {
	var in dto.CheckoutRequest
	if err := parseBody(c, &in); err != nil {
		return nil
	}
	ctx := c.UserContext()
	profile, err := h.users.GetProfile(ctx, GetUserID(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	out, err := h.uc.Checkout(ctx, GetCompanyID(c), profile.Email, in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Webhook godoc
// @Summary      Webhook de Stripe (firma en Stripe-Signature)
// @Tags         billing
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]any
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/billing/webhook [post]
func (h *BillingHandler) Webhook(c *fiber.Ctx) error {
	ev, err := h.uc.HandleWebhook(c.UserContext(), c.Body(), c.Get("Stripe-Signature"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"received": true, "type": ev.RawType})
}
