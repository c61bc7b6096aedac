package repository

import "context"

// TxRepos repositorios atados a una misma transacción de BD.
type TxRepos struct {
	Movements  InventoryMovementRepository
	Stock      StockRepository
	Products   ProductRepository
	Customers  CustomerRepository
	Sales      SaleRepository
	Financial  FinancialEntryRepository
	Production ProductionOrderRepository
	Invoices   FiscalInvoiceRepository
}

// TxRunner ejecuta fn dentro de una transacción: Commit si fn devuelve nil, Rollback en otro caso.
type TxRunner interface {
	Run(ctx context.Context, fn func(r TxRepos) error) error
}
