package http_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/viaticos-api/internal/application/auth"
	"github.com/jhoicas/viaticos-api/internal/domain/entity"
	apphttp "github.com/jhoicas/viaticos-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/viaticos-api/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testIssuer    = "viaticos-test"
	testExpMin    = 60
)

func perms(module string, actions ...string) entity.PermissionSet {
	set := entity.PermissionSet{module: {}}
	for _, a := range actions {
		set[module][a] = true
	}
	return set
}

func tesorero() *entity.FinancialUser {
	return &entity.FinancialUser{
		ID:       3,
		Username: "tesoreria",
		RoleRef:  entity.FinancialRole{ID: 3, Name: "Analista Tesorería"},
		Active:   true,
		Perms:    perms("misiones", "ver", "aprobar", "devolver"),
	}
}

func jefeDepto() *entity.Employee {
	return &entity.Employee{
		Cedula:             "8-1-1",
		Name:               "Ana Pérez",
		DepartmentID:       7,
		EmployeeRole:       entity.EmployeeRoleDepartmentHead,
		ManagedDepartments: []int{7},
		Perms:              perms("misiones", "ver", "crear", "aprobar"),
	}
}

// bearer token firmado con la instantánea del principal.
func bearer(t *testing.T, p entity.Principal) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, auth.ClaimsFromPrincipal(p), testIssuer, testExpMin)
	require.NoError(t, err, "debe generarse un token JWT válido")
	return "Bearer " + tok
}

// buildTestApp AuthMiddleware + RequirePermission + handler que devuelve el principal.
func buildTestApp(module, action string) *fiber.App {
	app := fiber.New()
	app.Get("/protected",
		apphttp.AuthMiddleware(testJWTSecret),
		apphttp.RequirePermission(module, action),
		func(c *fiber.Ctx) error {
			p := apphttp.GetPrincipal(c)
			return c.JSON(fiber.Map{"ok": true, "id": p.PrincipalID(), "kind": string(p.Kind())})
		},
	)
	return app
}

func doRequest(t *testing.T, app *fiber.App, authHeader string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// ──────────────────────────────────────────────────────────────────────────────
// AuthMiddleware
// ──────────────────────────────────────────────────────────────────────────────

func TestAuthMiddleware_ReconstruyeEmpleado(t *testing.T) {
	app := buildTestApp("misiones", "aprobar")
	resp := doRequest(t, app, bearer(t, jefeDepto()))
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "8-1-1", body["id"])
	assert.Equal(t, "empleado", body["kind"])
}

func TestAuthMiddleware_ReconstruyeUsuarioFinanciero(t *testing.T) {
	app := buildTestApp("misiones", "devolver")
	resp := doRequest(t, app, bearer(t, tesorero()))
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "3", body["id"])
	assert.Equal(t, "usuario_financiero", body["kind"])
}

func TestAuthMiddleware_SinToken(t *testing.T) {
	resp := doRequest(t, buildTestApp("misiones", "ver"), "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "MISSING_TOKEN")
}

func TestAuthMiddleware_FormatoInvalido(t *testing.T) {
	resp := doRequest(t, buildTestApp("misiones", "ver"), "Token abc")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "INVALID_TOKEN")
}

func TestAuthMiddleware_FirmaDeOtroSecreto(t *testing.T) {
	tok, err := pkgjwt.Generate("otro-secreto-distinto", auth.ClaimsFromPrincipal(tesorero()), testIssuer, testExpMin)
	require.NoError(t, err)

	resp := doRequest(t, buildTestApp("misiones", "ver"), "Bearer "+tok)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddleware_TokenExpirado(t *testing.T) {
	tok, err := pkgjwt.Generate(testJWTSecret, auth.ClaimsFromPrincipal(tesorero()), testIssuer, -1)
	require.NoError(t, err)

	resp := doRequest(t, buildTestApp("misiones", "ver"), "Bearer "+tok)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddleware_RolDeEmpleadoInvalido(t *testing.T) {
	claims := auth.ClaimsFromPrincipal(jefeDepto())
	claims.RoleID = 7
	tok, err := pkgjwt.Generate(testJWTSecret, claims, testIssuer, testExpMin)
	require.NoError(t, err)

	resp := doRequest(t, buildTestApp("misiones", "ver"), "Bearer "+tok)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// RequirePermission
// ──────────────────────────────────────────────────────────────────────────────

func TestRequirePermission_SinPermisoEs403(t *testing.T) {
	resp := doRequest(t, buildTestApp("misiones", "pagar"), bearer(t, tesorero()))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "PERMISSION_DENIED")
	assert.Contains(t, string(body), "misiones.pagar")
}

func TestRequirePermission_OtroModuloEs403(t *testing.T) {
	resp := doRequest(t, buildTestApp("roles", "ver"), bearer(t, jefeDepto()))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
