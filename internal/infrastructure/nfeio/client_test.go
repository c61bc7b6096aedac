package nfeio_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/erp-api/internal/application/ports"
	"github.com/jhoicas/erp-api/internal/domain"
	"github.com/jhoicas/erp-api/internal/domain/entity"
	"github.com/jhoicas/erp-api/internal/infrastructure/nfeio"
	"github.com/jhoicas/erp-api/pkg/retry"
)

func fastPolicy() retry.Policy {
	p := retry.DefaultPolicy()
	p.BaseDelay, p.MaxDelay = time.Millisecond, time.Millisecond
	return p
}

func issueRequest() ports.NFeIssueRequest {
	sale := &entity.Sale{
		ID:            "sale-1",
		PaymentMethod: entity.PaymentPix,
		Discount:      decimal.NewFromInt(10),
		Items: []entity.SaleItem{
			{ProductID: "p1", Quantity: decimal.NewFromInt(2), UnitPrice: decimal.RequireFromString("50.00")},
		},
	}
	sale.ComputeTotals()
	return ports.NFeIssueRequest{
		InvoiceID: "inv-1",
		Company:   &entity.Company{ID: "c1"},
		Customer: &entity.Customer{
			Name: "Maria Silva", Document: "52998224725",
			Address: entity.Address{CEP: "01001000", Street: "Praça da Sé", Number: "1", City: "São Paulo", UF: "SP", IBGECode: "3550308"},
		},
		Sale: sale,
		Products: map[string]*entity.Product{
			"p1": {ID: "p1", SKU: "CAM-01", Name: "Camiseta", NCM: "61091000", Unit: "UN"},
		},
	}
}

func TestIssue_EnviaPayloadYMapeaEstado(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v2/companies/prov-co/productinvoices", r.URL.Path)
		assert.Equal(t, "key-123", r.Header.Get("Authorization"))
		assert.Equal(t, "inv-1", r.Header.Get("Idempotency-Key"))

		raw, _ := io.ReadAll(r.Body)
		var body map[string]any
		require.NoError(t, json.Unmarshal(raw, &body))
		assert.Equal(t, "inv-1", body["externalId"])
		totals := body["totals"].(map[string]any)
		assert.Equal(t, 90.0, totals["invoiceAmount"])
		items := body["items"].([]any)
		item := items[0].(map[string]any)
		assert.Equal(t, "61091000", item["ncm"])
		assert.Equal(t, "5102", item["cfop"])
		assert.Equal(t, 100.0, item["totalAmount"])
		pay := body["payment"].([]any)[0].(map[string]any)
		assert.Equal(t, "17", pay["method"])
		buyer := body["buyer"].(map[string]any)
		assert.Equal(t, "52998224725", buyer["federalTaxNumber"])

		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(`{"id":"nfe-9","flowStatus":"WaitingSend"}`))
	}))
	defer srv.Close()

	c := nfeio.NewClient(srv.URL, "key-123", time.Second, fastPolicy())
	st, err := c.Issue(context.Background(), "prov-co", issueRequest())
	require.NoError(t, err)
	assert.Equal(t, "nfe-9", st.ProviderID)
	assert.Equal(t, entity.NFeStatusProcessing, st.Status)
}

func TestIssue_ProductoSinNCM(t *testing.T) {
	req := issueRequest()
	req.Products["p1"].NCM = ""
	c := nfeio.NewClient("http://unused", "k", time.Second, fastPolicy())
	_, err := c.Issue(context.Background(), "prov-co", req)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestGet_Autorizada(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/companies/prov-co/productinvoices/nfe-9", r.URL.Path)
		_, _ = w.Write([]byte(`{"id":"nfe-9","flowStatus":"Issued","accessKey":"35261011222333000181550010000012341123456787","number":"1234","serie":"1","authorization":{"protocol":"135260000012345"}}`))
	}))
	defer srv.Close()

	st, err := nfeio.NewClient(srv.URL, "k", time.Second, fastPolicy()).Get(context.Background(), "prov-co", "nfe-9")
	require.NoError(t, err)
	assert.Equal(t, entity.NFeStatusAuthorized, st.Status)
	assert.Equal(t, "135260000012345", st.Protocol)
	assert.Equal(t, "1234", st.Number)
}

func TestCancel_EnviaJustificativa(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "Erro na digitação do valor", r.URL.Query().Get("reason"))
		_, _ = w.Write([]byte(`{"id":"nfe-9","flowStatus":"Cancelled"}`))
	}))
	defer srv.Close()

	st, err := nfeio.NewClient(srv.URL, "k", time.Second, fastPolicy()).
		Cancel(context.Background(), "prov-co", "nfe-9", "Erro na digitação do valor")
	require.NoError(t, err)
	assert.Equal(t, entity.NFeStatusCancelled, st.Status)
}

func TestDownloadXML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/companies/prov-co/productinvoices/nfe-9/xml", r.URL.Path)
		_, _ = w.Write([]byte(`<nfeProc/>`))
	}))
	defer srv.Close()

	data, err := nfeio.NewClient(srv.URL, "k", time.Second, fastPolicy()).DownloadXML(context.Background(), "prov-co", "nfe-9")
	require.NoError(t, err)
	assert.Equal(t, "<nfeProc/>", string(data))
}

func TestErrores(t *testing.T) {
	cases := []struct {
		status int
		want   error
		calls  int32
	}{
		{http.StatusNotFound, domain.ErrNotFound, 1},
		{http.StatusUnprocessableEntity, domain.ErrInvalidInput, 1},
		{http.StatusTooManyRequests, domain.ErrRateLimited, 3},
		{http.StatusInternalServerError, domain.ErrProviderUnavailable, 3},
	}
	for _, tc := range cases {
		var calls int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			atomic.AddInt32(&calls, 1)
			w.WriteHeader(tc.status)
			_, _ = w.Write([]byte(`{"message":"falha"}`))
		}))
		_, err := nfeio.NewClient(srv.URL, "k", time.Second, fastPolicy()).Get(context.Background(), "prov-co", "x")
		assert.ErrorIs(t, err, tc.want, "status %d", tc.status)
		assert.Equal(t, tc.calls, atomic.LoadInt32(&calls), "status %d", tc.status)
		srv.Close()
	}
}

func TestSinAPIKey(t *testing.T) {
	_, err := nfeio.NewClient("http://x", "", time.Second, fastPolicy()).Get(context.Background(), "a", "b")
	assert.ErrorIs(t, err, domain.ErrNotConfigured)
}
