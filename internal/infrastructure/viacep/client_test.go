package viacep_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/erp-api/internal/domain"
	"github.com/jhoicas/erp-api/internal/infrastructure/viacep"
	"github.com/jhoicas/erp-api/pkg/retry"
)

func fastPolicy() retry.Policy {
	p := retry.DefaultPolicy()
	p.BaseDelay, p.MaxDelay = time.Millisecond, time.Millisecond
	return p
}

func TestLookup_OK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ws/01001000/json/", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"cep":"01001-000","logradouro":"Praça da Sé","complemento":"lado ímpar","bairro":"Sé","localidade":"São Paulo","uf":"SP","ibge":"3550308"}`))
	}))
	defer srv.Close()

	addr, err := viacep.NewClient(srv.URL, time.Second, fastPolicy()).Lookup(context.Background(), "01001-000")
	require.NoError(t, err)
	assert.Equal(t, "01001000", addr.CEP)
	assert.Equal(t, "Praça da Sé", addr.Street)
	assert.Equal(t, "Sé", addr.District)
	assert.Equal(t, "São Paulo", addr.City)
	assert.Equal(t, "SP", addr.UF)
	assert.Equal(t, "3550308", addr.IBGECode)
}

func TestLookup_CEPInexistente(t *testing.T) {
	for _, body := range []string{`{"erro": true}`, `{"erro": "true"}`} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(body))
		}))
		_, err := viacep.NewClient(srv.URL, time.Second, fastPolicy()).Lookup(context.Background(), "99999999")
		assert.ErrorIs(t, err, domain.ErrNotFound)
		srv.Close()
	}
}

func TestLookup_CEPMalFormado(t *testing.T) {
	_, err := viacep.NewClient("http://unused", time.Second, fastPolicy()).Lookup(context.Background(), "123")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestLookup_ReintentaErrores5xx(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"cep":"01310-100","logradouro":"Avenida Paulista","localidade":"São Paulo","uf":"SP","ibge":"3550308"}`))
	}))
	defer srv.Close()

	addr, err := viacep.NewClient(srv.URL, time.Second, fastPolicy()).Lookup(context.Background(), "01310100")
	require.NoError(t, err)
	assert.Equal(t, "Avenida Paulista", addr.Street)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestLookup_ProveedorCaido(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := viacep.NewClient(srv.URL, time.Second, fastPolicy()).Lookup(context.Background(), "01310100")
	assert.ErrorIs(t, err, domain.ErrProviderUnavailable)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestLookup_400NoSeReintenta(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := viacep.NewClient(srv.URL, time.Second, fastPolicy()).Lookup(context.Background(), "01310100")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}
