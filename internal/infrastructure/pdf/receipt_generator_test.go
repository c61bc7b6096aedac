package pdf

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/erp-api/internal/application/ports"
	"github.com/jhoicas/erp-api/internal/domain/entity"
)

func TestFormatBRL(t *testing.T) {
	assert.Equal(t, "R$ 0,00", formatBRL(decimal.Zero))
	assert.Equal(t, "R$ 999,90", formatBRL(decimal.RequireFromString("999.9")))
	assert.Equal(t, "R$ 1.234,56", formatBRL(decimal.RequireFromString("1234.56")))
	assert.Equal(t, "R$ 1.000.000,00", formatBRL(decimal.NewFromInt(1000000)))
	assert.Equal(t, "-R$ 10,50", formatBRL(decimal.RequireFromString("-10.5")))
}

func TestSplitEvery(t *testing.T) {
	assert.Equal(t, []string{"3526", "1011", "2"}, splitEvery("352610112", 4))
	assert.Equal(t, []string{"ab", "cd", "e"}, splitEvery("abcde", 2))
	assert.Nil(t, splitEvery("", 3))
}

func TestRenderSaleReceipt(t *testing.T) {
	sale := &entity.Sale{
		Number: 42, Status: entity.SaleStatusConfirmed, CreatedAt: time.Now(),
		Discount: decimal.NewFromInt(5),
		Items: []entity.SaleItem{
			{ProductID: "p1", Quantity: decimal.NewFromInt(2), UnitPrice: decimal.RequireFromString("19.90")},
		},
	}
	sale.ComputeTotals()
	data := ports.ReceiptData{
		Company:  &entity.Company{Name: "Loja Exemplo LTDA", CNPJ: "11222333000181"},
		Sale:     sale,
		Products: map[string]*entity.Product{"p1": {SKU: "CAM-01", Name: "Camiseta"}},
		Invoice: &entity.FiscalInvoice{
			Status: entity.NFeStatusAuthorized, Number: "1234", Series: "1",
			AccessKey: "35261011222333000181550010000012341123456787", Protocol: "135260000012345",
		},
	}

	out, err := NewReceiptGenerator().RenderSaleReceipt(context.Background(), data)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))

	data.Invoice = nil
	out, err = NewReceiptGenerator().RenderSaleReceipt(context.Background(), data)
	require.NoError(t, err)
	assert.NotEmpty(t, out)

	_, err = NewReceiptGenerator().RenderSaleReceipt(context.Background(), ports.ReceiptData{})
	assert.Error(t, err)
}
