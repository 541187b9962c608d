package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"pizza_service/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// JWTClaims custom claims for JWT
type JWTClaims struct {
	UserID int                    `json:"id"`
	Name   string                 `json:"name"`
	Email  string                 `json:"email"`
	Roles  []model.RoleAssignment `json:"roles"`
	jwt.RegisteredClaims
}

// User rebuilds the user described by the claims. Roles are taken as issued.
func (c *JWTClaims) User() *model.User {
	return &model.User{
		ID:    c.UserID,
		Name:  c.Name,
		Email: c.Email,
		Roles: c.Roles,
	}
}

// JWTUtil provides JWT generation and validation
type JWTUtil struct {
	secretKey       string
	expirationHours int64
}

// NewJWTUtil creates a new JWTUtil
func NewJWTUtil(secretKey string, expirationHours int64) *JWTUtil {
	return &JWTUtil{secretKey: secretKey, expirationHours: expirationHours}
}

// GenerateToken signs a token carrying the user's identity and roles.
// Every token gets a fresh jti so two logins never share a signature.
func (ju *JWTUtil) GenerateToken(user *model.User) (string, error) {
	now := time.Now()
	claims := &JWTClaims{
		UserID: user.ID,
		Name:   user.Name,
		Email:  user.Email,
		Roles:  user.Roles,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour * time.Duration(ju.expirationHours))),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   strconv.Itoa(user.ID),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(ju.secretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken validates the JWT token
func (ju *JWTUtil) ValidateToken(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(ju.secretKey), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token")
}

// TokenSignature returns the third dot-separated segment of a token, or "" if there is none.
// The session store is keyed by this value.
func TokenSignature(token string) string {
	parts := strings.Split(token, ".")
	if len(parts) > 2 {
		return parts[2]
	}
	return ""
}
