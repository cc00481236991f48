// Package password verifica credenciales de los dos orígenes de identidad:
// bcrypt para usuarios del sistema financiero y MD5 heredado para empleados de RRHH.
package password

import (
	"crypto/md5"
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// legacyHashLen es la longitud exacta del MD5 en hexadecimal guardado en nompersonal.usr_password.
const legacyHashLen = 32

// Hash genera el hash bcrypt de una contraseña con el costo por defecto.
func Hash(plain string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// VerifyBcrypt informa si plain corresponde al hash bcrypt almacenado.
func VerifyBcrypt(hash, plain string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// VerifyLegacyMD5 compara contra el formato heredado de RRHH.
// Cualquier valor almacenado que no sea exactamente 32 caracteres hexadecimales no verifica.
func VerifyLegacyMD5(stored, plain string) bool {
	if len(stored) != legacyHashLen {
		return false
	}
	stored = strings.ToLower(stored)
	if _, err := hex.DecodeString(stored); err != nil {
		return false
	}
	sum := md5.Sum([]byte(plain))
	digest := hex.EncodeToString(sum[:])
	return subtle.ConstantTimeCompare([]byte(digest), []byte(stored)) == 1
}
