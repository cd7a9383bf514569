package auth

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"runright.io/internal/cms"
)

const (
	issuer            = "runright"
	secretEnvVariable = "RUNRIGHT_AUTH_SECRET"
)

// TokenTTL is the lifetime of a token minted at login.
const TokenTTL = 8 * time.Hour

var (
	errMissingSecret = errors.New("auth secret is not configured")

	secretMu sync.Mutex
	secret   cachedSecret
)

type cachedSecret struct {
	value []byte
	err   error
	ready bool
}

// Claims is the payload embedded in a bearer token at login. It is a
// snapshot of the principal at issuance time; authorization-relevant
// state is re-verified against the live user record on every call.
type Claims struct {
	UserID        string `json:"user_id"`
	Email         string `json:"email"`
	Name          string `json:"name,omitempty"`
	Role          int    `json:"role"`
	CompanyID     string `json:"company_id"`
	BranchID      string `json:"branch_id"`
	Type          string `json:"type,omitempty"`
	LicenceExpiry int64  `json:"licence_expiry,omitempty"`
	jwt.RegisteredClaims
}

// GenerateToken signs a JWT carrying the principal snapshot using HS256.
func GenerateToken(p Principal, ttl time.Duration) (string, error) {
	if strings.TrimSpace(p.Email) == "" {
		return "", errors.New("principal email is required")
	}
	if ttl <= 0 {
		return "", errors.New("ttl must be greater than zero")
	}
	secretBytes, err := loadSecret()
	if err != nil {
		return "", err
	}

	now := time.Now().UTC()
	claims := Claims{
		UserID:        p.UserID,
		Email:         p.Email,
		Name:          p.Name,
		Role:          p.Role,
		CompanyID:     p.CompanyID,
		BranchID:      p.BranchID,
		Type:          p.Type,
		LicenceExpiry: p.LicenceExpiry,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   p.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secretBytes)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ParseAndValidate verifies the token signature, signing method and expiry
// and returns the embedded claims. The claims are a transport snapshot
// only; callers must resolve them against live records before trusting
// anything authorization-relevant.
func ParseAndValidate(token string) (*Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvalidToken
	}
	secretBytes, err := loadSecret()
	if err != nil {
		return nil, err
	}

	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, ErrInvalidToken
		}
		return secretBytes, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if err := validateClaims(claims); err != nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func validateClaims(claims *Claims) error {
	if strings.TrimSpace(claims.Email) == "" {
		return errors.New("email missing")
	}
	if claims.Role < 0 || claims.Role > cms.RoleAdmin {
		return fmt.Errorf("role out of range: %d", claims.Role)
	}
	if claims.ExpiresAt == nil {
		return errors.New("expiry missing")
	}
	now := time.Now().UTC()
	if now.After(claims.ExpiresAt.Time) {
		return errors.New("token expired")
	}
	if claims.IssuedAt != nil {
		// Allow a small clock skew of 5 seconds when validating issued-at.
		if claims.IssuedAt.Time.After(now.Add(5 * time.Second)) {
			return errors.New("token issued in the future")
		}
		if claims.ExpiresAt.Time.Before(claims.IssuedAt.Time) {
			return errors.New("token expiry precedes issued-at")
		}
	}
	return nil
}

func loadSecret() ([]byte, error) {
	secretMu.Lock()
	defer secretMu.Unlock()
	if secret.ready {
		return secret.value, secret.err
	}
	raw := strings.TrimSpace(os.Getenv(secretEnvVariable))
	if raw == "" {
		secret.err = errMissingSecret
		secret.ready = true
		return nil, secret.err
	}
	secret.value = []byte(raw)
	secret.err = nil
	secret.ready = true
	return secret.value, nil
}

// ResetSecretForTests clears the cached secret value. Only intended for test use.
func ResetSecretForTests() {
	secretMu.Lock()
	defer secretMu.Unlock()
	secret = cachedSecret{}
}
