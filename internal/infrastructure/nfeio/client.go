// Package nfeio implementa ports.NFeProvider sobre una API REST estilo NFe.io
// (emisión asíncrona: el documento queda en procesamiento y se consulta después).
package nfeio

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jhoicas/erp-api/internal/application/ports"
	"github.com/jhoicas/erp-api/internal/domain"
	"github.com/jhoicas/erp-api/pkg/retry"
)

var _ ports.NFeProvider = (*Client)(nil)

// Client adaptador HTTP del proveedor de NF-e.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	policy     retry.Policy
}

// NewClient construye el cliente. Sin apiKey todas las llamadas devuelven domain.ErrNotConfigured.
func NewClient(baseURL, apiKey string, timeout time.Duration, policy retry.Policy) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		policy:     policy,
	}
}

// Issue envía la NF-e. La referencia local viaja como Idempotency-Key para que un
// reintento tras un 5xx no duplique el documento en el proveedor.
func (c *Client) Issue(ctx context.Context, providerCompanyID string, req ports.NFeIssueRequest) (*ports.NFeProviderStatus, error) {
	payload, err := buildIssuePayload(req)
	if err != nil {
		return nil, err
	}
	var out invoiceResponse
	path := "/v2/companies/" + url.PathEscape(providerCompanyID) + "/productinvoices"
	if err := c.doJSON(ctx, http.MethodPost, path, req.InvoiceID, payload, &out); err != nil {
		return nil, err
	}
	return out.toStatus(), nil
}

// Get consulta el estado actual del documento.
func (c *Client) Get(ctx context.Context, providerCompanyID, providerID string) (*ports.NFeProviderStatus, error) {
	var out invoiceResponse
	if err := c.doJSON(ctx, http.MethodGet, invoicePath(providerCompanyID, providerID), "", nil, &out); err != nil {
		return nil, err
	}
	return out.toStatus(), nil
}

// DownloadXML descarga el nfeProc autorizado.
func (c *Client) DownloadXML(ctx context.Context, providerCompanyID, providerID string) ([]byte, error) {
	var data []byte
	err := c.call(ctx, http.MethodGet, invoicePath(providerCompanyID, providerID)+"/xml", "", nil, "application/xml",
		func(body []byte) error {
			data = body
			return nil
		})
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Cancel solicita la cancelación con la justificación exigida por la SEFAZ.
func (c *Client) Cancel(ctx context.Context, providerCompanyID, providerID, justification string) (*ports.NFeProviderStatus, error) {
	var out invoiceResponse
	path := invoicePath(providerCompanyID, providerID) + "?reason=" + url.QueryEscape(justification)
	if err := c.doJSON(ctx, http.MethodDelete, path, "", nil, &out); err != nil {
		return nil, err
	}
	return out.toStatus(), nil
}

func invoicePath(companyID, id string) string {
	return "/v2/companies/" + url.PathEscape(companyID) + "/productinvoices/" + url.PathEscape(id)
}

func (c *Client) doJSON(ctx context.Context, method, path, idemKey string, in, out any) error {
	var body []byte
	if in != nil {
		var err error
		if body, err = json.Marshal(in); err != nil {
			return fmt.Errorf("nfeio: serializar request: %w", err)
		}
	}
	return c.call(ctx, method, path, idemKey, body, "application/json", func(resp []byte) error {
		if err := json.Unmarshal(resp, out); err != nil {
			return retry.Permanent(fmt.Errorf("nfeio: deserializar respuesta: %w", err))
		}
		return nil
	})
}

// call ejecuta la petición con reintentos y traduce el error final a errores de dominio.
func (c *Client) call(ctx context.Context, method, path, idemKey string, body []byte, accept string, decode func([]byte) error) error {
	if c.apiKey == "" || c.baseURL == "" {
		return fmt.Errorf("%w: proveedor de NF-e", domain.ErrNotConfigured)
	}
	err := retry.Do(ctx, c.policy, func(ctx context.Context) error {
		var rd io.Reader
		if body != nil {
			rd = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
		if err != nil {
			return retry.Permanent(fmt.Errorf("nfeio: crear request: %w", err))
		}
		req.Header.Set("Authorization", c.apiKey)
		req.Header.Set("Accept", accept)
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if idemKey != "" {
			req.Header.Set("Idempotency-Key", idemKey)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("nfeio: llamada HTTP fallida: %w", err)
		}
		defer resp.Body.Close()
		raw, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
		if err != nil {
			return fmt.Errorf("nfeio: leer respuesta: %w", err)
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return &retry.StatusError{StatusCode: resp.StatusCode, Body: providerMessage(raw)}
		}
		return decode(raw)
	})
	return translate(err)
}

func translate(err error) error {
	if err == nil {
		return nil
	}
	var se *retry.StatusError
	if errors.As(err, &se) {
		switch se.StatusCode {
		case http.StatusNotFound:
			return fmt.Errorf("%w: documento no existe en el proveedor", domain.ErrNotFound)
		case http.StatusBadRequest, http.StatusUnprocessableEntity:
			return fmt.Errorf("%w: %s", domain.ErrInvalidInput, se.Body)
		case http.StatusConflict:
			return fmt.Errorf("%w: %s", domain.ErrConflict, se.Body)
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: credenciales del proveedor de NF-e rechazadas", domain.ErrNotConfigured)
		case http.StatusTooManyRequests:
			return fmt.Errorf("%w: proveedor de NF-e", domain.ErrRateLimited)
		}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("nfeio: timeout o cancelación: %w", err)
	}
	return fmt.Errorf("%w: nfeio: %v", domain.ErrProviderUnavailable, err)
}

// providerMessage extrae "message" del cuerpo de error; si no es JSON devuelve el texto recortado.
func providerMessage(raw []byte) string {
	var e struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &e) == nil && e.Message != "" {
		return e.Message
	}
	s := strings.TrimSpace(string(raw))
	if len(s) > 300 {
		s = s[:300]
	}
	return s
}
