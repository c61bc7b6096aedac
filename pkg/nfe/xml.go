package nfe

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"
	"github.com/ucarion/c14n"
)

// cStat de la SEFAZ que significan autorización.
const (
	StatusAuthorized        = "100"
	StatusAuthorizedOutside = "150" // autorizada fuera de plazo
	StatusCancelled         = "101"
)

// Authorization datos del protocolo de autorización extraídos del nfeProc.
type Authorization struct {
	AccessKey  AccessKey
	Protocol   string
	Status     string // cStat
	Reason     string // xMotivo
	ReceivedAt time.Time
	Number     string
	Series     string
	IssuerCNPJ string
	Total      decimal.Decimal
}

// Authorized indica si cStat corresponde a una NF-e autorizada.
func (a *Authorization) Authorized() bool {
	return a.Status == StatusAuthorized || a.Status == StatusAuthorizedOutside
}

// ParseAuthorizedXML lee un nfeProc (NFe + protNFe) y devuelve el protocolo.
// La chave se valida con el dígito verificador.
func ParseAuthorizedXML(data []byte) (*Authorization, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("nfe: XML inválido: %w", err)
	}
	inf := doc.FindElement("//protNFe/infProt")
	if inf == nil {
		return nil, fmt.Errorf("nfe: el XML no contiene protNFe/infProt")
	}
	key, err := ValidateAccessKey(childText(inf, "chNFe"))
	if err != nil {
		return nil, err
	}
	auth := &Authorization{
		AccessKey: key,
		Protocol:  childText(inf, "nProt"),
		Status:    childText(inf, "cStat"),
		Reason:    childText(inf, "xMotivo"),
	}
	if raw := childText(inf, "dhRecbto"); raw != "" {
		if ts, err := time.Parse(time.RFC3339, raw); err == nil {
			auth.ReceivedAt = ts
		}
	}
	if ide := doc.FindElement("//infNFe/ide"); ide != nil {
		auth.Number = childText(ide, "nNF")
		auth.Series = childText(ide, "serie")
	}
	if emit := doc.FindElement("//infNFe/emit"); emit != nil {
		auth.IssuerCNPJ = childText(emit, "CNPJ")
	}
	if tot := doc.FindElement("//infNFe/total/ICMSTot/vNF"); tot != nil {
		if v, err := decimal.NewFromString(strings.TrimSpace(tot.Text())); err == nil {
			auth.Total = v
		}
	}
	return auth, nil
}

// CanonicalDigest SHA-256 (hex) de la forma canónica C14N del XML. Se guarda junto al
// archivo para detectar alteraciones del documento archivado.
func CanonicalDigest(data []byte) (string, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Entity = map[string]string{}
	canonical, err := c14n.Canonicalize(dec)
	if err != nil {
		return "", fmt.Errorf("nfe: canonicalizar XML: %w", err)
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

func childText(el *etree.Element, tag string) string {
	if c := el.SelectElement(tag); c != nil {
		return strings.TrimSpace(c.Text())
	}
	return ""
}
