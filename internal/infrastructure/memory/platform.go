package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/erp-api/internal/domain"
	"github.com/jhoicas/erp-api/internal/domain/entity"
	"github.com/jhoicas/erp-api/internal/domain/repository"
)

var (
	_ repository.PlanRepository  = (*PlanRepo)(nil)
	_ repository.AuditRepository = (*AuditRepo)(nil)
	_ repository.LGPDRepository  = (*LGPDRepo)(nil)
)

// PlanRepo planes y suscripciones.
type PlanRepo struct{ s *Store }

// Plans repositorio de planes.
func (s *Store) Plans() *PlanRepo { return &PlanRepo{s: s} }

// SeedPlan agrega un plan al catálogo.
func (r *PlanRepo) SeedPlan(p entity.Plan) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p.Modules = append([]string(nil), p.Modules...)
	r.s.plans[p.Code] = p
}

func (r *PlanRepo) ListPlans(_ context.Context) ([]*entity.Plan, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var list []*entity.Plan
	for _, p := range r.s.plans {
		if p.Active {
			p := p
			list = append(list, &p)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].PriceCents < list[j].PriceCents })
	return list, nil
}

func (r *PlanRepo) GetPlan(_ context.Context, code string) (*entity.Plan, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.plans[code]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *PlanRepo) GetSubscription(_ context.Context, companyID string) (*entity.Subscription, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sub, ok := r.s.subs[companyID]
	if !ok {
		return nil, nil
	}
	return &sub, nil
}

func (r *PlanRepo) GetSubscriptionByStripeID(_ context.Context, stripeSubscriptionID string) (*entity.Subscription, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, sub := range r.s.subs {
		if sub.StripeSubscriptionID == stripeSubscriptionID {
			sub := sub
			return &sub, nil
		}
	}
	return nil, nil
}

func (r *PlanRepo) UpsertSubscription(_ context.Context, sub *entity.Subscription) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.subs[sub.CompanyID] = *sub
	return nil
}

// AuditRepo eventos y ejecuciones de auditoría.
type AuditRepo struct{ s *Store }

// Audit repositorio de auditoría.
func (s *Store) Audit() *AuditRepo { return &AuditRepo{s: s} }

func (r *AuditRepo) Log(_ context.Context, l *entity.AuditLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now()
	}
	r.s.audit = append(r.s.audit, *l)
	return nil
}

func (r *AuditRepo) ListRecent(_ context.Context, companyID string, limit int) ([]*entity.AuditLog, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var list []*entity.AuditLog
	for i := len(r.s.audit) - 1; i >= 0; i-- {
		if l := r.s.audit[i]; l.CompanyID == companyID {
			list = append(list, &l)
		}
	}
	return page(list, limit, 0), nil
}

func (r *AuditRepo) CountByAction(_ context.Context, companyID string, since time.Time) ([]entity.ActionCount, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	counts := map[string]int{}
	for _, l := range r.s.audit {
		if l.CompanyID == companyID && !l.CreatedAt.Before(since) {
			counts[l.Action]++
		}
	}
	list := make([]entity.ActionCount, 0, len(counts))
	for a, n := range counts {
		list = append(list, entity.ActionCount{Action: a, Count: n})
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Count != list[j].Count {
			return list[i].Count > list[j].Count
		}
		return list[i].Action < list[j].Action
	})
	return list, nil
}

func (r *AuditRepo) CreateRun(_ context.Context, run *entity.AuditRun) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	r.s.runs[run.ID] = *run
	return nil
}

func (r *AuditRepo) GetRun(_ context.Context, id string) (*entity.AuditRun, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	run, ok := r.s.runs[id]
	if !ok {
		return nil, nil
	}
	return &run, nil
}

func (r *AuditRepo) ListRuns(_ context.Context, companyID string, limit int) ([]*entity.AuditRun, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var list []*entity.AuditRun
	for _, run := range r.s.runs {
		if run.CompanyID == companyID {
			run := run
			list = append(list, &run)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].StartedAt.After(list[j].StartedAt) })
	return page(list, limit, 0), nil
}

// LGPDRepo consentimientos y solicitudes de titulares.
type LGPDRepo struct{ s *Store }

// LGPD repositorio LGPD.
func (s *Store) LGPD() *LGPDRepo { return &LGPDRepo{s: s} }

func (r *LGPDRepo) CreateConsent(_ context.Context, c *entity.Consent) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	r.s.consents[c.ID] = *c
	return nil
}

func (r *LGPDRepo) GetConsent(_ context.Context, id string) (*entity.Consent, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.consents[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r *LGPDRepo) UpdateConsent(_ context.Context, c *entity.Consent) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.consents[c.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.consents[c.ID] = *c
	return nil
}

func (r *LGPDRepo) ListConsents(_ context.Context, customerID string) ([]*entity.Consent, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var list []*entity.Consent
	for _, c := range r.s.consents {
		if c.CustomerID == customerID {
			c := c
			list = append(list, &c)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].GrantedAt.Before(list[j].GrantedAt) })
	return list, nil
}

func (r *LGPDRepo) CreateRequest(_ context.Context, req *entity.DataSubjectRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if req.ID == "" {
		req.ID = uuid.New().String()
	}
	r.s.requests[req.ID] = *req
	return nil
}

func (r *LGPDRepo) GetRequest(_ context.Context, id string) (*entity.DataSubjectRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	req, ok := r.s.requests[id]
	if !ok {
		return nil, nil
	}
	return &req, nil
}

func (r *LGPDRepo) UpdateRequest(_ context.Context, req *entity.DataSubjectRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.requests[req.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.requests[req.ID] = *req
	return nil
}

func (r *LGPDRepo) ListRequests(_ context.Context, companyID, status string) ([]*entity.DataSubjectRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var list []*entity.DataSubjectRequest
	for _, req := range r.s.requests {
		if req.CompanyID == companyID && (status == "" || req.Status == status) {
			req := req
			list = append(list, &req)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.Before(list[j].CreatedAt) })
	return list, nil
}
