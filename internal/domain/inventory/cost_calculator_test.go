package inventory

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestCostCalculator(t *testing.T) {
	// 10 a 5,00 + 10 a 7,00 = 6,00
	assert.True(t, d("6").Equal(CostCalculator(d("10"), d("5"), d("10"), d("7"))))
	// sin stock previo toma el costo de la entrada
	assert.True(t, d("12.5").Equal(CostCalculator(decimal.Zero, decimal.Zero, d("4"), d("12.5"))))
	// suma no positiva
	assert.True(t, CostCalculator(decimal.Zero, d("3"), decimal.Zero, d("3")).IsZero())
}
