package repository

import (
	"context"

	"github.com/jhoicas/erp-api/internal/domain/entity"
)

// PlanRepository catálogo de planes y suscripciones de las empresas.
type PlanRepository interface {
	ListPlans(ctx context.Context) ([]*entity.Plan, error)
	GetPlan(ctx context.Context, code string) (*entity.Plan, error)
	GetSubscription(ctx context.Context, companyID string) (*entity.Subscription, error)
	GetSubscriptionByStripeID(ctx context.Context, stripeSubscriptionID string) (*entity.Subscription, error)
	UpsertSubscription(ctx context.Context, s *entity.Subscription) error
}
