package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/erp-api/internal/domain/repository"
)

var _ repository.DashboardRepository = (*DashboardRepo)(nil)

// DashboardRepo consultas agregadas del panel.
type DashboardRepo struct {
	q Querier
}

// NewDashboardRepository construye el adaptador.
func NewDashboardRepository(q Querier) *DashboardRepo {
	return &DashboardRepo{q: q}
}

// SalesTotals ventas confirmadas en [from, to).
func (r *DashboardRepo) SalesTotals(ctx context.Context, companyID string, from, to time.Time) (repository.SalesTotals, error) {
	var out repository.SalesTotals
	err := r.q.QueryRow(ctx, `
		SELECT COUNT(*), COALESCE(SUM(total), 0)
		FROM sales
		WHERE company_id = $1 AND status = 'confirmed' AND created_at >= $2 AND created_at < $3`,
		companyID, from, to).Scan(&out.Count, &out.Total)
	if err != nil {
		return out, fmt.Errorf("sales totals: %w", err)
	}
	return out, nil
}

// TopProducts productos por facturación en [from, to).
func (r *DashboardRepo) TopProducts(ctx context.Context, companyID string, from, to time.Time, limit int) ([]repository.TopProduct, error) {
	rows, err := r.q.Query(ctx, `
		SELECT p.id, p.sku, p.name, SUM(i.quantity), SUM(i.total) AS revenue
		FROM sale_items i
		JOIN sales s ON s.id = i.sale_id
		JOIN products p ON p.id = i.product_id
		WHERE s.company_id = $1 AND s.status = 'confirmed' AND s.created_at >= $2 AND s.created_at < $3
		GROUP BY p.id, p.sku, p.name
		ORDER BY revenue DESC
		LIMIT $4`, companyID, from, to, limit)
	if err != nil {
		return nil, fmt.Errorf("top products: %w", err)
	}
	defer rows.Close()
	var list []repository.TopProduct
	for rows.Next() {
		var tp repository.TopProduct
		if err := rows.Scan(&tp.ProductID, &tp.SKU, &tp.Name, &tp.Quantity, &tp.Revenue); err != nil {
			return nil, fmt.Errorf("scan top product: %w", err)
		}
		list = append(list, tp)
	}
	return list, rows.Err()
}

// NFeCountByStatus cantidad de NF-e por estado.
func (r *DashboardRepo) NFeCountByStatus(ctx context.Context, companyID string) (map[string]int, error) {
	rows, err := r.q.Query(ctx, `SELECT status, COUNT(*) FROM fiscal_invoices WHERE company_id = $1 GROUP BY status`, companyID)
	if err != nil {
		return nil, fmt.Errorf("nfe by status: %w", err)
	}
	defer rows.Close()
	out := map[string]int{}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan nfe status: %w", err)
		}
		out[status] = n
	}
	return out, rows.Err()
}
