package nfe_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/erp-api/pkg/nfe"
)

const testKey = "35261011222333000181550010000012341123456787"

func TestAccessKey_Partes(t *testing.T) {
	key, err := nfe.ValidateAccessKey(testKey)
	require.NoError(t, err)
	assert.Equal(t, "11222333000181", key.CNPJ())
	assert.Equal(t, "55", key.Model())
	assert.Equal(t, "1234", key.Number())
}

func TestValidateAccessKey(t *testing.T) {
	_, err := nfe.ValidateAccessKey(testKey)
	assert.NoError(t, err)

	_, err = nfe.ValidateAccessKey("NFe" + testKey)
	assert.NoError(t, err, "el prefijo NFe del atributo Id se acepta")

	_, err = nfe.ValidateAccessKey(testKey[:43] + "0")
	assert.Error(t, err)

	_, err = nfe.ValidateAccessKey("123")
	assert.Error(t, err)
}

const procXML = `<?xml version="1.0" encoding="UTF-8"?>
<nfeProc xmlns="http://www.portalfiscal.inf.br/nfe" versao="4.00">
  <NFe>
    <infNFe Id="NFe` + testKey + `" versao="4.00">
      <ide><serie>1</serie><nNF>1234</nNF></ide>
      <emit><CNPJ>11222333000181</CNPJ></emit>
      <total><ICMSTot><vNF>1190.00</vNF></ICMSTot></total>
    </infNFe>
  </NFe>
  <protNFe versao="4.00">
    <infProt>
      <tpAmb>2</tpAmb>
      <chNFe>` + testKey + `</chNFe>
      <dhRecbto>2026-10-05T10:15:00-03:00</dhRecbto>
      <nProt>135260000012345</nProt>
      <cStat>100</cStat>
      <xMotivo>Autorizado o uso da NF-e</xMotivo>
    </infProt>
  </protNFe>
</nfeProc>`

func TestParseAuthorizedXML(t *testing.T) {
	auth, err := nfe.ParseAuthorizedXML([]byte(procXML))
	require.NoError(t, err)

	assert.True(t, auth.Authorized())
	assert.Equal(t, nfe.AccessKey(testKey), auth.AccessKey)
	assert.Equal(t, "135260000012345", auth.Protocol)
	assert.Equal(t, "1234", auth.Number)
	assert.Equal(t, "1", auth.Series)
	assert.Equal(t, "11222333000181", auth.IssuerCNPJ)
	assert.True(t, decimal.RequireFromString("1190").Equal(auth.Total))
	assert.Equal(t, 2026, auth.ReceivedAt.Year())
}

func TestParseAuthorizedXML_SinProtocolo(t *testing.T) {
	_, err := nfe.ParseAuthorizedXML([]byte(`<NFe><infNFe/></NFe>`))
	assert.Error(t, err)
}

func TestCanonicalDigest(t *testing.T) {
	d1, err := nfe.CanonicalDigest([]byte(procXML))
	require.NoError(t, err)
	d2, err := nfe.CanonicalDigest([]byte(procXML))
	require.NoError(t, err)
	assert.Equal(t, d1, d2)
	assert.Len(t, d1, 64)

	altered, err := nfe.CanonicalDigest([]byte(`<a><b>1</b></a>`))
	require.NoError(t, err)
	assert.NotEqual(t, d1, altered)
}
