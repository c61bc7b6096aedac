package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/erp-api/internal/domain"
	"github.com/jhoicas/erp-api/internal/domain/entity"
	"github.com/jhoicas/erp-api/internal/domain/repository"
)

func TestTxRunner_RollbackRestauraEstado(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	require.NoError(t, s.Stock().Upsert(ctx, &entity.Stock{ProductID: "p1", WarehouseID: "w1", Quantity: decimal.NewFromInt(10)}))

	err := NewTxRunner(s).Run(ctx, func(r repository.TxRepos) error {
		st, err := r.Stock.GetForUpdate(ctx, "p1", "w1")
		require.NoError(t, err)
		st.Quantity = decimal.NewFromInt(3)
		require.NoError(t, r.Stock.Upsert(ctx, st))
		require.NoError(t, r.Movements.Create(ctx, &entity.InventoryMovement{ProductID: "p1", TransactionID: "t1"}))
		return errors.New("falla a mitad de la transacción")
	})
	require.Error(t, err)

	st, _ := s.Stock().Get(ctx, "p1", "w1")
	assert.True(t, st.Quantity.Equal(decimal.NewFromInt(10)))
	movs, _ := s.Movements().ListByTransaction(ctx, "t1")
	assert.Empty(t, movs)
}

func TestTxRunner_CommitConserva(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	err := NewTxRunner(s).Run(ctx, func(r repository.TxRepos) error {
		return r.Customers.Create(ctx, &entity.Customer{CompanyID: "c1", Document: "52998224725", Name: "Ana"})
	})
	require.NoError(t, err)
	c, _ := s.Customers().GetByDocument(ctx, "c1", "52998224725")
	require.NotNil(t, c)
	assert.Equal(t, "Ana", c.Name)
}

func TestCustomerRepo_DocumentoDuplicado(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	require.NoError(t, s.Customers().Create(ctx, &entity.Customer{CompanyID: "c1", Document: "52998224725"}))
	err := s.Customers().Create(ctx, &entity.Customer{CompanyID: "c1", Document: "52998224725"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
	assert.NoError(t, s.Customers().Create(ctx, &entity.Customer{CompanyID: "c2", Document: "52998224725"}))
}

func TestSaleRepo_CopiasIndependientes(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	sale := &entity.Sale{CompanyID: "c1", Items: []entity.SaleItem{{ProductID: "p1"}}}
	require.NoError(t, s.Sales().Create(ctx, sale))
	sale.Items[0].ProductID = "alterado"

	got, err := s.Sales().GetByID(ctx, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, "p1", got.Items[0].ProductID)
	assert.Equal(t, sale.ID, got.Items[0].SaleID)
}
