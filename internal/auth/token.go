package auth

import (
	"errors"
	"time"

	"github.com/subzcrib/billing-platform/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultTokenTTL matches the platform's 7-day session window
const DefaultTokenTTL = 7 * 24 * time.Hour

// Identity is the verified caller identity used everywhere inside
// request processing. The token issuer is its only source; no component
// re-derives role or tenant from any other input.
type Identity struct {
	UserID     uuid.UUID
	Email      string
	Role       domain.Role
	MerchantID *uuid.UUID
	CustomerID *uuid.UUID
}

// TokenClaims is the JWT payload
type TokenClaims struct {
	Email      string `json:"email"`
	Role       string `json:"role"`
	MerchantID string `json:"merchantId,omitempty"`
	CustomerID string `json:"customerId,omitempty"`
	jwt.RegisteredClaims
}

// TokenIssuer issues and validates bearer credentials
type TokenIssuer interface {
	Issue(user *domain.User) (string, error)
	Verify(tokenString string) (Identity, error)
}

type jwtIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer creates a JWT-backed issuer with the given signing
// secret and validity window. A zero ttl falls back to DefaultTokenTTL.
func NewTokenIssuer(secret string, ttl time.Duration) TokenIssuer {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &jwtIssuer{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue encodes the user's identity into a signed token
func (i *jwtIssuer) Issue(user *domain.User) (string, error) {
	now := i.now()

	claims := TokenClaims{
		Email: user.Email,
		Role:  string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}
	if user.MerchantID != nil {
		claims.MerchantID = user.MerchantID.String()
	}
	if user.CustomerID != nil {
		claims.CustomerID = user.CustomerID.String()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.secret)
}

// Verify parses and validates a token. It fails closed: signature
// mismatch, expiry or any malformed field yields ErrUnauthenticated,
// never a partially trusted identity.
func (i *jwtIssuer) Verify(tokenString string) (Identity, error) {
	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return i.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithTimeFunc(i.now))
	if err != nil || !token.Valid {
		return Identity{}, domain.ErrUnauthenticated
	}

	claims, ok := token.Claims.(*TokenClaims)
	if !ok {
		return Identity{}, domain.ErrUnauthenticated
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return Identity{}, domain.ErrUnauthenticated
	}

	role := domain.Role(claims.Role)
	if !role.Valid() {
		return Identity{}, domain.ErrUnauthenticated
	}

	identity := Identity{
		UserID: userID,
		Email:  claims.Email,
		Role:   role,
	}
	if claims.MerchantID != "" {
		merchantID, err := uuid.Parse(claims.MerchantID)
		if err != nil {
			return Identity{}, domain.ErrUnauthenticated
		}
		identity.MerchantID = &merchantID
	}
	if claims.CustomerID != "" {
		customerID, err := uuid.Parse(claims.CustomerID)
		if err != nil {
			return Identity{}, domain.ErrUnauthenticated
		}
		identity.CustomerID = &customerID
	}

	return identity, nil
}
