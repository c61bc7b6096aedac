package entity

import "time"

// Customer cliente de la empresa. Document es el CPF o CNPJ sin máscara.
type Customer struct {
	ID           string
	CompanyID    string
	Name         string
	Document     string
	DocumentKind string // cpf | cnpj
	Email        string
	Phone        string
	Address      Address
	SearchKey    string // nombre en minúsculas y sin acentos
	Anonymized   bool   // LGPD: datos personales eliminados
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
