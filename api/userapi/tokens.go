package userapi

import (
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

// Claims are the claims of a session token. Sessions are issued by the
// external login service; this server only verifies them.
type Claims struct {
	UserID       string `json:"uid"`
	DepartmentID uint   `json:"department_id"`
	Name         string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// Tokens signs and verifies HS256 session tokens
type Tokens struct {
	secret   []byte
	issuer   string
	lifetime time.Duration
}

// NewTokens creates a new Tokens
func NewTokens(secret []byte, issuer string, lifetime time.Duration) *Tokens {
	if lifetime <= 0 {
		lifetime = 12 * time.Hour
	}
	return &Tokens{
		secret:   secret,
		issuer:   issuer,
		lifetime: lifetime,
	}
}

// Issue signs a session token for a user of a department
func (t *Tokens) Issue(userID string, departmentID uint, name string) (string, error) {
	if userID == "" || departmentID == 0 {
		return "", errors.New("user id and department id are required")
	}
	now := time.Now()
	claims := Claims{
		UserID:       userID,
		DepartmentID: departmentID,
		Name:         name,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.lifetime)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	return signed, errors.WithStack(err)
}

// Parse verifies a session token and returns its claims
func (t *Tokens) Parse(token string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if t.issuer != "" {
		opts = append(opts, jwt.WithIssuer(t.issuer))
	}
	parsed, err := jwt.ParseWithClaims(
		token, &Claims{}, func(*jwt.Token) (any, error) {
			return t.secret, nil
		}, opts...,
	)
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.UserID == "" || claims.DepartmentID == 0 {
		return nil, errors.New("token misses user or department")
	}
	return claims, nil
}
