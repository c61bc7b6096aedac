// Package memory implementa los puertos de repositorio en memoria del proceso.
// Se usa en pruebas y en desarrollo sin base de datos.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/erp-api/internal/domain/entity"
	"github.com/jhoicas/erp-api/internal/domain/repository"
)

// Store datos de todas las entidades. Los repositorios guardan copias, nunca punteros del llamador.
type Store struct {
	mu   sync.Mutex
	txMu sync.Mutex

	companies  map[string]entity.Company
	modules    map[string]entity.CompanyModule
	users      map[string]entity.User
	customers  map[string]entity.Customer
	warehouses map[string]entity.Warehouse
	products   map[string]entity.Product
	stock      map[string]entity.Stock
	movements  []entity.InventoryMovement
	sales      map[string]entity.Sale
	saleSeq    map[string]int64
	invoices   map[string]entity.FiscalInvoice
	entries    map[string]entity.FinancialEntry
	contracts  map[string]entity.Contract
	orders     map[string]entity.ProductionOrder
	orderSeq   map[string]int64
	plans      map[string]entity.Plan
	subs       map[string]entity.Subscription
	audit      []entity.AuditLog
	runs       map[string]entity.AuditRun
	consents   map[string]entity.Consent
	requests   map[string]entity.DataSubjectRequest
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{
		companies:  map[string]entity.Company{},
		modules:    map[string]entity.CompanyModule{},
		users:      map[string]entity.User{},
		customers:  map[string]entity.Customer{},
		warehouses: map[string]entity.Warehouse{},
		products:   map[string]entity.Product{},
		stock:      map[string]entity.Stock{},
		sales:      map[string]entity.Sale{},
		saleSeq:    map[string]int64{},
		invoices:   map[string]entity.FiscalInvoice{},
		entries:    map[string]entity.FinancialEntry{},
		contracts:  map[string]entity.Contract{},
		orders:     map[string]entity.ProductionOrder{},
		orderSeq:   map[string]int64{},
		plans:      map[string]entity.Plan{},
		subs:       map[string]entity.Subscription{},
		runs:       map[string]entity.AuditRun{},
		consents:   map[string]entity.Consent{},
		requests:   map[string]entity.DataSubjectRequest{},
	}
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// snapshot copia superficial de todos los mapas; los slices internos se copian al guardar.
func (s *Store) snapshot() *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	return &Store{
		companies:  cloneMap(s.companies),
		modules:    cloneMap(s.modules),
		users:      cloneMap(s.users),
		customers:  cloneMap(s.customers),
		warehouses: cloneMap(s.warehouses),
		products:   cloneMap(s.products),
		stock:      cloneMap(s.stock),
		movements:  append([]entity.InventoryMovement(nil), s.movements...),
		sales:      cloneMap(s.sales),
		saleSeq:    cloneMap(s.saleSeq),
		invoices:   cloneMap(s.invoices),
		entries:    cloneMap(s.entries),
		contracts:  cloneMap(s.contracts),
		orders:     cloneMap(s.orders),
		orderSeq:   cloneMap(s.orderSeq),
		plans:      cloneMap(s.plans),
		subs:       cloneMap(s.subs),
		audit:      append([]entity.AuditLog(nil), s.audit...),
		runs:       cloneMap(s.runs),
		consents:   cloneMap(s.consents),
		requests:   cloneMap(s.requests),
	}
}

func (s *Store) restore(snap *Store) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.companies, s.modules, s.users = snap.companies, snap.modules, snap.users
	s.customers, s.warehouses, s.products = snap.customers, snap.warehouses, snap.products
	s.stock, s.movements = snap.stock, snap.movements
	s.sales, s.saleSeq, s.invoices = snap.sales, snap.saleSeq, snap.invoices
	s.entries, s.contracts = snap.entries, snap.contracts
	s.orders, s.orderSeq = snap.orders, snap.orderSeq
	s.plans, s.subs = snap.plans, snap.subs
	s.audit, s.runs = snap.audit, snap.runs
	s.consents, s.requests = snap.consents, snap.requests
}

// TxRunner ejecuta fn de forma serializada; si fn falla el store vuelve al estado previo.
type TxRunner struct {
	s *Store
}

var _ repository.TxRunner = (*TxRunner)(nil)

// NewTxRunner construye el runner sobre el store.
func NewTxRunner(s *Store) *TxRunner { return &TxRunner{s: s} }

func (t *TxRunner) Run(ctx context.Context, fn func(r repository.TxRepos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.s.txMu.Lock()
	defer t.s.txMu.Unlock()
	snap := t.s.snapshot()
	if err := fn(t.s.TxRepos()); err != nil {
		t.s.restore(snap)
		return err
	}
	return nil
}

// TxRepos repositorios del store agrupados como en una transacción.
func (s *Store) TxRepos() repository.TxRepos {
	return repository.TxRepos{
		Movements:  s.Movements(),
		Stock:      s.Stock(),
		Products:   s.Products(),
		Customers:  s.Customers(),
		Sales:      s.Sales(),
		Financial:  s.Financial(),
		Production: s.Production(),
		Invoices:   s.FiscalInvoices(),
	}
}

func page[T any](list []T, limit, offset int) []T {
	if offset > len(list) {
		return nil
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}
