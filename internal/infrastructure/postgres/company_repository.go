package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/erp-api/internal/domain"
	"github.com/jhoicas/erp-api/internal/domain/entity"
	"github.com/jhoicas/erp-api/internal/domain/repository"
)

// Asegura que CompanyRepo implementa repository.CompanyRepository.
var _ repository.CompanyRepository = (*CompanyRepo)(nil)

// CompanyRepo implementación del puerto CompanyRepository sobre PostgreSQL.
type CompanyRepo struct {
	q Querier
}

// NewCompanyRepository construye el adaptador de persistencia para empresas.
func NewCompanyRepository(q Querier) *CompanyRepo {
	return &CompanyRepo{q: q}
}

const companyColumns = `id, name, trade_name, cnpj, state_registration, tax_regime,
	cep, street, number, complement, district, city, uf, ibge_code,
	phone, email, status, nfe_provider_id, created_at, updated_at`

func scanCompany(row pgx.Row) (*entity.Company, error) {
	var c entity.Company
	a := &c.Address
	err := row.Scan(&c.ID, &c.Name, &c.TradeName, &c.CNPJ, &c.StateRegistration, &c.TaxRegime,
		&a.CEP, &a.Street, &a.Number, &a.Complement, &a.District, &a.City, &a.UF, &a.IBGECode,
		&c.Phone, &c.Email, &c.Status, &c.NFeProviderID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create persiste una nueva empresa.
func (r *CompanyRepo) Create(ctx context.Context, c *entity.Company) error {
	query := `INSERT INTO companies (` + companyColumns + `)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)`
	a := c.Address
	_, err := r.q.Exec(ctx, query,
		c.ID, c.Name, c.TradeName, c.CNPJ, c.StateRegistration, c.TaxRegime,
		a.CEP, a.Street, a.Number, a.Complement, a.District, a.City, a.UF, a.IBGECode,
		c.Phone, c.Email, c.Status, c.NFeProviderID, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert company: %w", err)
	}
	return nil
}

// GetByID obtiene una empresa por ID.
func (r *CompanyRepo) GetByID(ctx context.Context, id string) (*entity.Company, error) {
	c, err := scanCompany(r.q.QueryRow(ctx, `SELECT `+companyColumns+` FROM companies WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get company: %w", err)
	}
	return c, nil
}

// GetByCNPJ obtiene una empresa por CNPJ (sin máscara).
func (r *CompanyRepo) GetByCNPJ(ctx context.Context, cnpj string) (*entity.Company, error) {
	c, err := scanCompany(r.q.QueryRow(ctx, `SELECT `+companyColumns+` FROM companies WHERE cnpj = $1`, cnpj))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get company by CNPJ: %w", err)
	}
	return c, nil
}

// Update actualiza una empresa existente.
func (r *CompanyRepo) Update(ctx context.Context, c *entity.Company) error {
	query := `
		UPDATE companies SET name = $2, trade_name = $3, cnpj = $4, state_registration = $5, tax_regime = $6,
			cep = $7, street = $8, number = $9, complement = $10, district = $11, city = $12, uf = $13, ibge_code = $14,
			phone = $15, email = $16, status = $17, nfe_provider_id = $18, updated_at = $19
		WHERE id = $1`
	a := c.Address
	cmd, err := r.q.Exec(ctx, query,
		c.ID, c.Name, c.TradeName, c.CNPJ, c.StateRegistration, c.TaxRegime,
		a.CEP, a.Street, a.Number, a.Complement, a.District, a.City, a.UF, a.IBGECode,
		c.Phone, c.Email, c.Status, c.NFeProviderID, c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update company: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List devuelve empresas con paginación.
func (r *CompanyRepo) List(ctx context.Context, limit, offset int) ([]*entity.Company, error) {
	rows, err := r.q.Query(ctx, `SELECT `+companyColumns+` FROM companies ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	defer rows.Close()

	var list []*entity.Company
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, fmt.Errorf("scan company: %w", err)
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

// HasActiveModule informa si la empresa tiene el módulo activo y sin vencer.
func (r *CompanyRepo) HasActiveModule(ctx context.Context, companyID, moduleName string) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM company_modules
			 WHERE company_id  = $1
			   AND module_name = $2
			   AND is_active   = true
			   AND (expires_at IS NULL OR expires_at > now())
		)`
	var active bool
	if err := r.q.QueryRow(ctx, query, companyID, moduleName).Scan(&active); err != nil {
		return false, fmt.Errorf("check module %s: %w", moduleName, err)
	}
	return active, nil
}

// ListModules módulos configurados para la empresa.
func (r *CompanyRepo) ListModules(ctx context.Context, companyID string) ([]*entity.CompanyModule, error) {
	rows, err := r.q.Query(ctx, `
		SELECT company_id, module_name, is_active, activated_at, expires_at, updated_at
		FROM company_modules WHERE company_id = $1 ORDER BY module_name`, companyID)
	if err != nil {
		return nil, fmt.Errorf("list modules: %w", err)
	}
	defer rows.Close()
	var list []*entity.CompanyModule
	for rows.Next() {
		var m entity.CompanyModule
		if err := rows.Scan(&m.CompanyID, &m.ModuleName, &m.IsActive, &m.ActivatedAt, &m.ExpiresAt, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan module: %w", err)
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}

// SetModule activa, desactiva o cambia el vencimiento de un módulo.
func (r *CompanyRepo) SetModule(ctx context.Context, m *entity.CompanyModule) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO company_modules (company_id, module_name, is_active, activated_at, expires_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (company_id, module_name)
		DO UPDATE SET is_active = EXCLUDED.is_active, activated_at = EXCLUDED.activated_at,
			expires_at = EXCLUDED.expires_at, updated_at = EXCLUDED.updated_at`,
		m.CompanyID, m.ModuleName, m.IsActive, m.ActivatedAt, m.ExpiresAt, m.UpdatedAt)
	if err != nil {
		return fmt.Errorf("set module %s: %w", m.ModuleName, err)
	}
	return nil
}
