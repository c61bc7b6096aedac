package nfeio

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/erp-api/internal/application/ports"
	"github.com/jhoicas/erp-api/internal/domain"
	"github.com/jhoicas/erp-api/internal/domain/entity"
)

// amount serializa decimales como número JSON, no como string.
type amount decimal.Decimal

func (a amount) MarshalJSON() ([]byte, error) {
	return []byte(decimal.Decimal(a).StringFixed(2)), nil
}

// ── Request ───────────────────────────────────────────────────────────────────

type issuePayload struct {
	ExternalID      string        `json:"externalId"`
	OperationNature string        `json:"operationNature"`
	Buyer           *buyerPayload `json:"buyer,omitempty"`
	Items           []itemPayload `json:"items"`
	Payment         []payment     `json:"payment"`
	Totals          totalsPayload `json:"totals"`
}

type buyerPayload struct {
	Name             string          `json:"name"`
	FederalTaxNumber string          `json:"federalTaxNumber"`
	Email            string          `json:"email,omitempty"`
	Address          *addressPayload `json:"address,omitempty"`
}

type addressPayload struct {
	PostalCode     string `json:"postalCode"`
	Street         string `json:"street"`
	Number         string `json:"number"`
	AdditionalInfo string `json:"additionalInformation,omitempty"`
	District       string `json:"district"`
	CityCode       string `json:"cityCode"`
	CityName       string `json:"cityName"`
	State          string `json:"state"`
}

type itemPayload struct {
	Code        string `json:"code"`
	Description string `json:"description"`
	NCM         string `json:"ncm"`
	CFOP        string `json:"cfop"`
	Unit        string `json:"unit"`
	Quantity    amount `json:"quantity"`
	UnitAmount  amount `json:"unitAmount"`
	TotalAmount amount `json:"totalAmount"`
}

type payment struct {
	Method string `json:"method"`
	Amount amount `json:"amount"`
}

type totalsPayload struct {
	Discount      amount `json:"discount"`
	InvoiceAmount amount `json:"invoiceAmount"`
}

// paymentCodes tPag de la NF-e.
var paymentCodes = map[string]string{
	entity.PaymentCash:   "01",
	entity.PaymentCard:   "03",
	entity.PaymentBoleto: "15",
	entity.PaymentPix:    "17",
}

func buildIssuePayload(req ports.NFeIssueRequest) (*issuePayload, error) {
	if req.Sale == nil || len(req.Sale.Items) == 0 {
		return nil, fmt.Errorf("%w: venta sin ítems", domain.ErrInvalidInput)
	}
	p := &issuePayload{
		ExternalID:      req.InvoiceID,
		OperationNature: "Venda de mercadoria",
		Totals: totalsPayload{
			Discount:      amount(req.Sale.Discount),
			InvoiceAmount: amount(req.Sale.Total),
		},
	}
	if c := req.Customer; c != nil && !c.Anonymized {
		b := &buyerPayload{Name: c.Name, FederalTaxNumber: c.Document, Email: c.Email}
		if c.Address.CEP != "" {
			b.Address = &addressPayload{
				PostalCode:     c.Address.CEP,
				Street:         c.Address.Street,
				Number:         c.Address.Number,
				AdditionalInfo: c.Address.Complement,
				District:       c.Address.District,
				CityCode:       c.Address.IBGECode,
				CityName:       c.Address.City,
				State:          c.Address.UF,
			}
		}
		p.Buyer = b
	}
	for _, it := range req.Sale.Items {
		prod := req.Products[it.ProductID]
		if prod == nil {
			return nil, fmt.Errorf("%w: producto %s sin datos fiscales", domain.ErrInvalidInput, it.ProductID)
		}
		if len(prod.NCM) != 8 {
			return nil, fmt.Errorf("%w: producto %s sin NCM válido", domain.ErrInvalidInput, prod.SKU)
		}
		cfop := prod.CFOP
		if cfop == "" {
			cfop = "5102"
		}
		p.Items = append(p.Items, itemPayload{
			Code:        prod.SKU,
			Description: prod.Name,
			NCM:         prod.NCM,
			CFOP:        cfop,
			Unit:        prod.Unit,
			Quantity:    amount(it.Quantity),
			UnitAmount:  amount(it.UnitPrice),
			TotalAmount: amount(it.Total),
		})
	}
	code, ok := paymentCodes[req.Sale.PaymentMethod]
	if !ok {
		code = "99" // outros
	}
	p.Payment = []payment{{Method: code, Amount: amount(req.Sale.Total)}}
	return p, nil
}

// ── Response ──────────────────────────────────────────────────────────────────

type invoiceResponse struct {
	ID            string `json:"id"`
	Status        string `json:"status"`
	FlowStatus    string `json:"flowStatus"`
	FlowMessage   string `json:"flowMessage"`
	AccessKey     string `json:"accessKey"`
	Number        string `json:"number"`
	Serie         string `json:"serie"`
	Authorization *struct {
		Protocol string `json:"protocol"`
	} `json:"authorization"`
}

func (r *invoiceResponse) toStatus() *ports.NFeProviderStatus {
	st := &ports.NFeProviderStatus{
		ProviderID: r.ID,
		Status:     mapFlowStatus(r.FlowStatus),
		AccessKey:  r.AccessKey,
		Number:     r.Number,
		Series:     r.Serie,
		Message:    r.FlowMessage,
	}
	if r.Authorization != nil {
		st.Protocol = r.Authorization.Protocol
	}
	return st
}

// mapFlowStatus traduce el flowStatus del proveedor a los estados de entity.FiscalInvoice.
func mapFlowStatus(flow string) string {
	switch flow {
	case "Issued":
		return entity.NFeStatusAuthorized
	case "Cancelled":
		return entity.NFeStatusCancelled
	case "CancelFailed":
		return entity.NFeStatusAuthorized // la cancelación falló, la nota sigue válida
	case "IssueDenied":
		return entity.NFeStatusRejected
	case "IssueFailed", "Error":
		return entity.NFeStatusError
	default:
		return entity.NFeStatusProcessing
	}
}
