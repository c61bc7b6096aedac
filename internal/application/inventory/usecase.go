package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/erp-api/internal/domain"
	"github.com/jhoicas/erp-api/internal/domain/entity"
	"github.com/jhoicas/erp-api/internal/domain/inventory"
	"github.com/jhoicas/erp-api/internal/domain/repository"
)

// RegisterMovementUseCase registra movimientos de inventario de forma transaccional
// (IN, OUT, ADJUSTMENT, TRANSFER) con bloqueo de fila (SELECT FOR UPDATE) y Commit/Rollback.
type RegisterMovementUseCase struct {
	txRunner      repository.TxRunner
	productRepo   repository.ProductRepository
	warehouseRepo repository.WarehouseRepository
	movementRepo  repository.InventoryMovementRepository
	stockRepo     repository.StockRepository
}

// NewRegisterMovementUseCase construye el caso de uso.
func NewRegisterMovementUseCase(
	txRunner repository.TxRunner,
	productRepo repository.ProductRepository,
	warehouseRepo repository.WarehouseRepository,
	movementRepo repository.InventoryMovementRepository,
	stockRepo repository.StockRepository,
) *RegisterMovementUseCase {
	return &RegisterMovementUseCase{
		txRunner:      txRunner,
		productRepo:   productRepo,
		warehouseRepo: warehouseRepo,
		movementRepo:  movementRepo,
		stockRepo:     stockRepo,
	}
}

// MovementInputDTO entrada para registrar un movimiento de inventario.
// Para IN/OUT/ADJUSTMENT: ProductID, WarehouseID, Type, Quantity; UnitCost obligatorio en IN.
// Para TRANSFER: ProductID, FromWarehouseID, ToWarehouseID, Type=TRANSFER, Quantity.
type MovementInputDTO struct {
	CompanyID       string
	UserID          string
	ProductID       string
	WarehouseID     string
	FromWarehouseID string
	ToWarehouseID   string
	Type            string
	Quantity        decimal.Decimal
	UnitCost        *decimal.Decimal
}

// Line datos de un movimiento dentro de una operación mayor (venta, producción).
type Line struct {
	Product       *entity.Product
	WarehouseID   string
	UserID        string
	Quantity      decimal.Decimal // siempre positiva
	UnitCost      decimal.Decimal // solo IN
	TransactionID string
	Source        string
	Now           time.Time
}

// RegisterMovement valida, inicia una transacción y aplica la lógica según el tipo.
// Devuelve los movimientos creados (dos en TRANSFER).
func (uc *RegisterMovementUseCase) RegisterMovement(ctx context.Context, input MovementInputDTO) ([]*entity.InventoryMovement, error) {
	switch input.Type {
	case entity.MovementTypeIN, entity.MovementTypeOUT, entity.MovementTypeADJUSTMENT:
		if input.ProductID == "" || input.WarehouseID == "" {
			return nil, domain.ErrInvalidInput
		}
		if input.Quantity.IsZero() {
			return nil, domain.ErrInvalidInput
		}
		if input.Type == entity.MovementTypeIN && (input.UnitCost == nil || input.UnitCost.IsNegative() || input.Quantity.IsNegative()) {
			return nil, domain.ErrInvalidInput
		}
		if input.Type == entity.MovementTypeOUT && input.Quantity.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
	case entity.MovementTypeTRANSFER:
		if input.ProductID == "" || input.FromWarehouseID == "" || input.ToWarehouseID == "" {
			return nil, domain.ErrInvalidInput
		}
		if input.FromWarehouseID == input.ToWarehouseID || !input.Quantity.IsPositive() {
			return nil, domain.ErrInvalidInput
		}
	default:
		return nil, domain.ErrInvalidInput
	}

	// Producto y depósito(s) deben existir y ser de la empresa
	product, err := uc.productRepo.GetByID(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if product.CompanyID != input.CompanyID {
		return nil, domain.ErrForbidden
	}
	whIDs := []string{input.WarehouseID}
	if input.Type == entity.MovementTypeTRANSFER {
		whIDs = []string{input.FromWarehouseID, input.ToWarehouseID}
	}
	for _, id := range whIDs {
		wh, err := uc.warehouseRepo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if wh == nil || wh.CompanyID != input.CompanyID {
			return nil, domain.ErrNotFound
		}
	}

	now := time.Now().UTC()
	txID := uuid.New().String()
	line := Line{
		Product:       product,
		WarehouseID:   input.WarehouseID,
		UserID:        input.UserID,
		Quantity:      input.Quantity,
		TransactionID: txID,
		Source:        entity.MovementSourceManual,
		Now:           now,
	}

	var created []*entity.InventoryMovement
	err = uc.txRunner.Run(ctx, func(r repository.TxRepos) error {
		// Releer el producto dentro de la tx: el costo pudo cambiar
		p, err := r.Products.GetByID(ctx, product.ID)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.ErrNotFound
		}
		line.Product = p
		switch input.Type {
		case entity.MovementTypeIN:
			line.UnitCost = *input.UnitCost
			m, err := ApplyIN(ctx, r, line)
			created = append(created, m)
			return err
		case entity.MovementTypeOUT:
			m, err := ApplyOUT(ctx, r, line)
			created = append(created, m)
			return err
		case entity.MovementTypeADJUSTMENT:
			m, err := applyAdjustment(ctx, r, line, input.UnitCost)
			created = append(created, m)
			return err
		case entity.MovementTypeTRANSFER:
			ms, err := applyTransfer(ctx, r, line, input.FromWarehouseID, input.ToWarehouseID)
			created = ms
			return err
		}
		return domain.ErrInvalidInput
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// ApplyIN bloquea la fila (GetForUpdate), recalcula el costo promedio ponderado,
// suma el stock y guarda el movimiento. Se ejecuta en la transacción del llamador.
func ApplyIN(ctx context.Context, r repository.TxRepos, l Line) (*entity.InventoryMovement, error) {
	stock, err := r.Stock.GetForUpdate(ctx, l.Product.ID, l.WarehouseID)
	if err != nil {
		return nil, err
	}
	newCost := inventory.CostCalculator(stock.Quantity, l.Product.Cost, l.Quantity, l.UnitCost)
	if err := r.Products.UpdateCost(ctx, l.Product.ID, newCost); err != nil {
		return nil, err
	}
	l.Product.Cost = newCost

	stock.Quantity = stock.Quantity.Add(l.Quantity)
	stock.UpdatedAt = l.Now
	if err := r.Stock.Upsert(ctx, stock); err != nil {
		return nil, err
	}
	mov := newMovement(l, l.WarehouseID, entity.MovementTypeIN, l.Quantity, l.UnitCost)
	if err := r.Movements.Create(ctx, mov); err != nil {
		return nil, err
	}
	return mov, nil
}

// ApplyOUT bloquea la fila, verifica StockActual >= Cantidad, resta y guarda el movimiento
// al costo promedio actual. Se ejecuta en la transacción del llamador.
func ApplyOUT(ctx context.Context, r repository.TxRepos, l Line) (*entity.InventoryMovement, error) {
	stock, err := r.Stock.GetForUpdate(ctx, l.Product.ID, l.WarehouseID)
	if err != nil {
		return nil, err
	}
	if stock.Quantity.LessThan(l.Quantity) {
		return nil, domain.ErrInsufficientStock
	}
	stock.Quantity = stock.Quantity.Sub(l.Quantity)
	stock.UpdatedAt = l.Now
	if err := r.Stock.Upsert(ctx, stock); err != nil {
		return nil, err
	}
	mov := newMovement(l, l.WarehouseID, entity.MovementTypeOUT, l.Quantity.Neg(), l.Product.Cost)
	if err := r.Movements.Create(ctx, mov); err != nil {
		return nil, err
	}
	return mov, nil
}

// applyAdjustment: positivo como IN, negativo como OUT.
func applyAdjustment(ctx context.Context, r repository.TxRepos, l Line, unitCost *decimal.Decimal) (*entity.InventoryMovement, error) {
	var (
		mov *entity.InventoryMovement
		err error
	)
	if l.Quantity.IsPositive() {
		l.UnitCost = l.Product.Cost
		if unitCost != nil {
			l.UnitCost = *unitCost
		}
		mov, err = ApplyIN(ctx, r, l)
	} else {
		l.Quantity = l.Quantity.Neg()
		mov, err = ApplyOUT(ctx, r, l)
	}
	if mov != nil {
		mov.Type = entity.MovementTypeADJUSTMENT
	}
	return mov, err
}

// applyTransfer resta del depósito origen y suma en el destino; dos registros con el mismo TransactionID.
func applyTransfer(ctx context.Context, r repository.TxRepos, l Line, fromID, toID string) ([]*entity.InventoryMovement, error) {
	origin, err := r.Stock.GetForUpdate(ctx, l.Product.ID, fromID)
	if err != nil {
		return nil, err
	}
	if origin.Quantity.LessThan(l.Quantity) {
		return nil, domain.ErrInsufficientStock
	}
	dest, err := r.Stock.GetForUpdate(ctx, l.Product.ID, toID)
	if err != nil {
		return nil, err
	}
	origin.Quantity = origin.Quantity.Sub(l.Quantity)
	dest.Quantity = dest.Quantity.Add(l.Quantity)
	origin.UpdatedAt = l.Now
	dest.UpdatedAt = l.Now
	if err := r.Stock.Upsert(ctx, origin); err != nil {
		return nil, err
	}
	if err := r.Stock.Upsert(ctx, dest); err != nil {
		return nil, err
	}
	outMov := newMovement(l, fromID, entity.MovementTypeTRANSFER, l.Quantity.Neg(), l.Product.Cost)
	if err := r.Movements.Create(ctx, outMov); err != nil {
		return nil, err
	}
	inMov := newMovement(l, toID, entity.MovementTypeTRANSFER, l.Quantity, l.Product.Cost)
	if err := r.Movements.Create(ctx, inMov); err != nil {
		return nil, err
	}
	return []*entity.InventoryMovement{outMov, inMov}, nil
}

func newMovement(l Line, warehouseID, typ string, qty, unitCost decimal.Decimal) *entity.InventoryMovement {
	return &entity.InventoryMovement{
		ID:            uuid.New().String(),
		CompanyID:     l.Product.CompanyID,
		TransactionID: l.TransactionID,
		Source:        l.Source,
		ProductID:     l.Product.ID,
		WarehouseID:   warehouseID,
		Type:          typ,
		Quantity:      qty,
		UnitCost:      unitCost,
		TotalCost:     qty.Mul(unitCost),
		CreatedAt:     l.Now,
		CreatedBy:     l.UserID,
	}
}

// GetStock stock de un producto en un depósito de la empresa.
func (uc *RegisterMovementUseCase) GetStock(ctx context.Context, companyID, productID, warehouseID string) (*entity.Stock, error) {
	product, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil || product.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	return uc.stockRepo.Get(ctx, productID, warehouseID)
}

// ListMovements historial del producto, más reciente primero.
func (uc *RegisterMovementUseCase) ListMovements(ctx context.Context, companyID, productID string, limit, offset int) ([]*entity.InventoryMovement, error) {
	product, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil || product.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	return uc.movementRepo.ListByProduct(ctx, productID, limit, offset)
}
