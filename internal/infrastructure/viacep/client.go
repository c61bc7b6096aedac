// Package viacep consulta direcciones por CEP en la API pública de ViaCEP.
package viacep

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jhoicas/erp-api/internal/application/ports"
	"github.com/jhoicas/erp-api/internal/domain"
	"github.com/jhoicas/erp-api/internal/domain/entity"
	"github.com/jhoicas/erp-api/pkg/brdocs"
	"github.com/jhoicas/erp-api/pkg/retry"
)

var _ ports.CEPLookup = (*Client)(nil)

const defaultBaseURL = "https://viacep.com.br"

// Client adaptador HTTP de ViaCEP. Cada consulta pasa por la política de reintentos.
type Client struct {
	baseURL    string
	httpClient *http.Client
	policy     retry.Policy
}

// NewClient construye el cliente. baseURL vacío usa el servicio público.
func NewClient(baseURL string, timeout time.Duration, policy retry.Policy) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		policy:     policy,
	}
}

// ── Tipos de la respuesta ─────────────────────────────────────────────────────

type viaCEPResponse struct {
	CEP         string          `json:"cep"`
	Logradouro  string          `json:"logradouro"`
	Complemento string          `json:"complemento"`
	Bairro      string          `json:"bairro"`
	Localidade  string          `json:"localidade"`
	UF          string          `json:"uf"`
	IBGE        string          `json:"ibge"`
	Erro        json.RawMessage `json:"erro"` // true o "true" según la versión de la API
}

func (r *viaCEPResponse) notFound() bool {
	v := strings.Trim(string(bytes.TrimSpace(r.Erro)), `"`)
	return v == "true"
}

// Lookup devuelve la dirección del CEP o domain.ErrNotFound si no existe.
func (c *Client) Lookup(ctx context.Context, cep string) (*entity.Address, error) {
	digits, err := brdocs.NormalizeCEP(cep)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	var out viaCEPResponse
	err = retry.Do(ctx, c.policy, func(ctx context.Context) error {
		return c.fetch(ctx, digits, &out)
	})
	if err != nil {
		var se *retry.StatusError
		if errors.As(err, &se) && se.StatusCode == http.StatusBadRequest {
			return nil, fmt.Errorf("%w: CEP %s", domain.ErrInvalidInput, digits)
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("viacep: timeout o cancelación: %w", err)
		}
		return nil, fmt.Errorf("%w: viacep: %v", domain.ErrProviderUnavailable, err)
	}
	if out.notFound() {
		return nil, domain.ErrNotFound
	}
	return &entity.Address{
		CEP:        digits,
		Street:     out.Logradouro,
		Complement: out.Complemento,
		District:   out.Bairro,
		City:       out.Localidade,
		UF:         out.UF,
		IBGECode:   out.IBGE,
	}, nil
}

func (c *Client) fetch(ctx context.Context, cep string, out *viaCEPResponse) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/ws/"+cep+"/json/", nil)
	if err != nil {
		return retry.Permanent(fmt.Errorf("viacep: crear request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("viacep: llamada HTTP fallida: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return fmt.Errorf("viacep: leer respuesta: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return &retry.StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	*out = viaCEPResponse{}
	if err := json.Unmarshal(body, out); err != nil {
		return retry.Permanent(fmt.Errorf("viacep: deserializar respuesta: %w", err))
	}
	return nil
}
