package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Tipos de principal que puede portar un token.
const (
	KindFinancialUser = "usuario_financiero"
	KindEmployee      = "empleado"
)

// Claims incluye los claims estándar JWT más la instantánea de autorización del principal.
// El middleware reconstruye el principal desde aquí sin volver a consultar la DB ni RRHH.
type Claims struct {
	jwt.RegisteredClaims
	PrincipalID        string                     `json:"principal_id"`
	Kind               string                     `json:"kind"`
	DisplayName        string                     `json:"name"`
	RoleID             int                        `json:"role_id"`
	RoleName           string                     `json:"role_name"`
	DepartmentID       int                        `json:"department_id,omitempty"`
	ManagedDepartments []int                      `json:"managed_departments,omitempty"`
	Permissions        map[string]map[string]bool `json:"permissions"`
}

// Generate firma un token HS256 con los claims indicados; Issuer, Subject y las fechas se completan aquí.
func Generate(secret string, claims Claims, issuer string, expMinutes int) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("jwt: secret vacío")
	}
	now := time.Now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   claims.Kind + ":" + claims.PrincipalID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(expMinutes) * time.Minute)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// Parse valida el token y devuelve sus claims.
// Retorna error si el token es inválido, expirado o tiene firma incorrecta.
func Parse(secret, tokenString string) (*Claims, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt: secret vacío")
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("método de firma inesperado: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("claims inválidos")
	}
	return claims, nil
}
