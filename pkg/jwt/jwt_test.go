package jwt_test

import (
	"testing"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/erp-api/pkg/jwt"
)

const secret = "segredo-de-teste"

func TestGenerateParse(t *testing.T) {
	tok, err := jwt.Generate(secret, "u1", "c1", "financeiro", "erp-api", 60)
	require.NoError(t, err)

	userID, companyID, role, err := jwt.Parse(secret, tok)
	require.NoError(t, err)
	assert.Equal(t, "u1", userID)
	assert.Equal(t, "c1", companyID)
	assert.Equal(t, "financeiro", role)
}

func TestParse_Rechazos(t *testing.T) {
	expired, err := jwt.Generate(secret, "u1", "c1", "admin", "erp-api", -1)
	require.NoError(t, err)
	_, _, _, err = jwt.Parse(secret, expired)
	assert.ErrorIs(t, err, gojwt.ErrTokenExpired)

	tok, err := jwt.Generate(secret, "u1", "c1", "admin", "erp-api", 60)
	require.NoError(t, err)
	_, _, _, err = jwt.Parse("otro-segredo", tok)
	assert.ErrorIs(t, err, gojwt.ErrTokenSignatureInvalid)

	// alg none no se acepta aunque los claims sean válidos
	none := gojwt.NewWithClaims(gojwt.SigningMethodNone, jwt.Claims{UserID: "u1", CompanyID: "c1", Role: "admin"})
	raw, err := none.SignedString(gojwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, _, _, err = jwt.Parse(secret, raw)
	assert.Error(t, err)
}

func TestSecretVacio(t *testing.T) {
	_, err := jwt.Generate("", "u1", "c1", "admin", "erp-api", 60)
	assert.Error(t, err)
	_, _, _, err = jwt.Parse("", "x.y.z")
	assert.Error(t, err)
}
