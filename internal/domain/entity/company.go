package entity

import "time"

// Address dirección brasileña (formato ViaCEP / NF-e).
type Address struct {
	CEP        string
	Street     string // logradouro
	Number     string
	Complement string
	District   string // bairro
	City       string // localidade
	UF         string
	IBGECode   string // código de municipio, obligatorio en la NF-e (cMun)
}

// Regímenes tributarios (CRT de la NF-e).
const (
	TaxRegimeSimples       = "1" // Simples Nacional
	TaxRegimeSimplesExcess = "2"
	TaxRegimeNormal        = "3" // Régimen normal
)

// Company representa una organización/tenant del sistema (multi-tenant, Brasil).
type Company struct {
	ID                string
	Name              string // razão social
	TradeName         string // nome fantasia
	CNPJ              string // sin máscara
	StateRegistration string // inscrição estadual
	TaxRegime         string
	Address           Address
	Phone             string
	Email             string
	Status            string // active, suspended, inactive
	NFeProviderID     string // id de la empresa en el proveedor de NF-e
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Módulos SaaS disponibles (deben coincidir con el CHECK de la tabla company_modules).
const (
	ModuleInventory   = "inventory"
	ModuleSales       = "sales"
	ModuleFinancial   = "financial"
	ModuleFiscal      = "fiscal"
	ModuleContracts   = "contracts"
	ModuleProduction  = "production"
	ModuleLGPD        = "lgpd"
	ModuleMarketplace = "marketplace"
)

// AllModules lista de módulos válidos.
var AllModules = []string{
	ModuleInventory, ModuleSales, ModuleFinancial, ModuleFiscal,
	ModuleContracts, ModuleProduction, ModuleLGPD, ModuleMarketplace,
}

// IsValidModule informa si name es un módulo conocido.
func IsValidModule(name string) bool {
	for _, m := range AllModules {
		if m == name {
			return true
		}
	}
	return false
}

// CompanyModule representa la activación de un módulo SaaS en una empresa.
type CompanyModule struct {
	CompanyID   string
	ModuleName  string
	IsActive    bool
	ActivatedAt time.Time
	ExpiresAt   *time.Time // nil = sin vencimiento
	UpdatedAt   time.Time
}
