package inventory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/erp-api/internal/application/dto"
	"github.com/jhoicas/erp-api/internal/domain/repository"
)

// ReplenishmentUseCase genera la lista de reposición a partir de los productos bajo el stock mínimo.
type ReplenishmentUseCase struct {
	stockRepo   repository.StockRepository
	productRepo repository.ProductRepository
}

// NewReplenishmentUseCase construye el caso de uso de reposición.
func NewReplenishmentUseCase(stockRepo repository.StockRepository, productRepo repository.ProductRepository) *ReplenishmentUseCase {
	return &ReplenishmentUseCase{stockRepo: stockRepo, productRepo: productRepo}
}

// GenerateReplenishmentList devuelve los productos bajo el mínimo con la cantidad sugerida
// de pedido (hasta 1,5 × mínimo), ordenados por déficit relativo.
func (uc *ReplenishmentUseCase) GenerateReplenishmentList(ctx context.Context, companyID string) ([]dto.ReplenishmentSuggestionDTO, error) {
	items, err := uc.stockRepo.ListLowStock(ctx, companyID)
	if err != nil {
		return nil, err
	}
	factor := decimal.NewFromFloat(1.5)
	suggestions := make([]dto.ReplenishmentSuggestionDTO, 0, len(items))
	for _, item := range items {
		unitCost := decimal.Zero
		if p, err := uc.productRepo.GetByID(ctx, item.ProductID); err == nil && p != nil {
			unitCost = p.Cost
		}
		ideal := item.MinStock.Mul(factor)
		qty := ideal.Sub(item.Quantity)
		if qty.IsNegative() {
			qty = decimal.Zero
		}
		suggestions = append(suggestions, dto.ReplenishmentSuggestionDTO{
			ProductID:          item.ProductID,
			SKU:                item.SKU,
			ProductName:        item.Name,
			CurrentStock:       item.Quantity,
			MinStock:           item.MinStock,
			IdealStock:         ideal,
			SuggestedOrderQty:  qty,
			UnitCost:           unitCost,
			EstimatedOrderCost: qty.Mul(unitCost),
		})
	}

	// Mayor déficit relativo primero (1 - actual/mínimo); desempate por SKU
	sort.SliceStable(suggestions, func(i, j int) bool {
		a, b := suggestions[i], suggestions[j]
		ra := a.CurrentStock.Div(a.MinStock)
		rb := b.CurrentStock.Div(b.MinStock)
		if !ra.Equal(rb) {
			return ra.LessThan(rb)
		}
		return a.SKU < b.SKU
	})
	for i := range suggestions {
		suggestions[i].Priority = i + 1
	}
	return suggestions, nil
}
