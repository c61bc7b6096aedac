package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/erp-api/internal/domain"
	"github.com/jhoicas/erp-api/internal/domain/entity"
	"github.com/jhoicas/erp-api/internal/domain/repository"
)

var _ repository.CustomerRepository = (*CustomerRepo)(nil)

// CustomerRepo implementación de CustomerRepository sobre PostgreSQL (pool o tx).
type CustomerRepo struct {
	q Querier
}

// NewCustomerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCustomerRepository(q Querier) *CustomerRepo {
	return &CustomerRepo{q: q}
}

const customerColumns = `id, company_id, name, document, document_kind, email, phone,
	cep, street, number, complement, district, city, uf, ibge_code,
	search_key, anonymized, created_at, updated_at`

func scanCustomer(row pgx.Row) (*entity.Customer, error) {
	var c entity.Customer
	a := &c.Address
	if err := row.Scan(&c.ID, &c.CompanyID, &c.Name, &c.Document, &c.DocumentKind, &c.Email, &c.Phone,
		&a.CEP, &a.Street, &a.Number, &a.Complement, &a.District, &a.City, &a.UF, &a.IBGECode,
		&c.SearchKey, &c.Anonymized, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// Create persiste un cliente. Documento repetido en la empresa -> domain.ErrDuplicate.
func (r *CustomerRepo) Create(ctx context.Context, c *entity.Customer) error {
	a := c.Address
	_, err := r.q.Exec(ctx, `INSERT INTO customers (`+customerColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)`,
		c.ID, c.CompanyID, c.Name, c.Document, c.DocumentKind, c.Email, c.Phone,
		a.CEP, a.Street, a.Number, a.Complement, a.District, a.City, a.UF, a.IBGECode,
		c.SearchKey, c.Anonymized, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert customer: %w", err)
	}
	return nil
}

// GetByID obtiene un cliente por ID.
func (r *CustomerRepo) GetByID(ctx context.Context, id string) (*entity.Customer, error) {
	c, err := scanCustomer(r.q.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get customer: %w", err)
	}
	return c, nil
}

// GetByDocument busca por CPF/CNPJ dentro de la empresa.
func (r *CustomerRepo) GetByDocument(ctx context.Context, companyID, document string) (*entity.Customer, error) {
	c, err := scanCustomer(r.q.QueryRow(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE company_id = $1 AND document = $2`, companyID, document))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get customer by document: %w", err)
	}
	return c, nil
}

// List lista clientes; Search filtra por search_key (sin acentos) o documento.
func (r *CustomerRepo) List(ctx context.Context, companyID string, f repository.CustomerFilter) ([]*entity.Customer, error) {
	a := &argList{}
	query := `SELECT ` + customerColumns + ` FROM customers WHERE company_id = ` + a.add(companyID)
	if f.Search != "" {
		p := a.add("%" + f.Search + "%")
		query += ` AND (search_key LIKE ` + p + ` OR document LIKE ` + p + `)`
	}
	query += ` ORDER BY search_key LIMIT ` + a.add(f.Limit) + ` OFFSET ` + a.add(f.Offset)

	rows, err := r.q.Query(ctx, query, a.args...)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()
	var list []*entity.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

// Update actualiza los datos del cliente.
func (r *CustomerRepo) Update(ctx context.Context, c *entity.Customer) error {
	a := c.Address
	cmd, err := r.q.Exec(ctx, `
		UPDATE customers SET name = $2, document = $3, document_kind = $4, email = $5, phone = $6,
			cep = $7, street = $8, number = $9, complement = $10, district = $11, city = $12, uf = $13, ibge_code = $14,
			search_key = $15, anonymized = $16, updated_at = $17
		WHERE id = $1`,
		c.ID, c.Name, c.Document, c.DocumentKind, c.Email, c.Phone,
		a.CEP, a.Street, a.Number, a.Complement, a.District, a.City, a.UF, a.IBGECode,
		c.SearchKey, c.Anonymized, c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update customer: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina un cliente. Con ventas asociadas falla por FK (usar anonimización LGPD).
func (r *CustomerRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("delete customer: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
