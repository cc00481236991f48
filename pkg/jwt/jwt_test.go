package jwt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgjwt "github.com/jhoicas/viaticos-api/pkg/jwt"
)

const testSecret = "test-secret-key-for-unit-tests"

func claimsJefe() pkgjwt.Claims {
	return pkgjwt.Claims{
		PrincipalID:        "8-123-456",
		Kind:               pkgjwt.KindEmployee,
		DisplayName:        "Ana Pérez",
		RoleID:             2,
		RoleName:           "Jefe Inmediato",
		DepartmentID:       7,
		ManagedDepartments: []int{7},
		Permissions:        map[string]map[string]bool{"misiones": {"aprobar": true}},
	}
}

func TestGenerateAndParse_ConservaInstantanea(t *testing.T) {
	tok, err := pkgjwt.Generate(testSecret, claimsJefe(), "viaticos-test", 60)
	require.NoError(t, err)

	c, err := pkgjwt.Parse(testSecret, tok)
	require.NoError(t, err)

	assert.Equal(t, "8-123-456", c.PrincipalID)
	assert.Equal(t, pkgjwt.KindEmployee, c.Kind)
	assert.Equal(t, 2, c.RoleID)
	assert.Equal(t, []int{7}, c.ManagedDepartments)
	assert.True(t, c.Permissions["misiones"]["aprobar"])
	assert.Equal(t, "empleado:8-123-456", c.Subject)
	assert.Equal(t, "viaticos-test", c.Issuer)
}

func TestParse_TokenExpirado(t *testing.T) {
	tok, err := pkgjwt.Generate(testSecret, claimsJefe(), "viaticos-test", -1)
	require.NoError(t, err)

	_, err = pkgjwt.Parse(testSecret, tok)
	assert.Error(t, err, "token expirado debe retornar error")
}

func TestParse_SecretIncorrecto(t *testing.T) {
	tok, err := pkgjwt.Generate(testSecret, claimsJefe(), "viaticos-test", 60)
	require.NoError(t, err)

	_, err = pkgjwt.Parse("otro-secret-completamente-distinto", tok)
	assert.Error(t, err)
}

func TestGenerate_SecretVacio(t *testing.T) {
	_, err := pkgjwt.Generate("", claimsJefe(), "viaticos-test", 60)
	assert.Error(t, err)
}
