package session

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"finsight/internal/core"
)

// DecodeRole reads the "role" claim from a JWT payload. The signature is
// not checked: the role only decides which controls are shown, the backend
// still authorizes every call.
func DecodeRole(token string) (string, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return "", fmt.Errorf("decode token: %w", err)
	}
	role, _ := claims["role"].(string)
	return role, nil
}

func IsAdminRole(role string) bool {
	return role == core.RoleAdmin
}
