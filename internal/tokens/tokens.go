package tokens

import (
	"errors"
	"fmt"
	"time"

	"github.com/docentes-portal/backend/internal/config"
	"github.com/docentes-portal/backend/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrNoSecret is returned when signing is attempted without a configured secret.
var ErrNoSecret = errors.New("jwt secret not configured")

// Claims is the identity carried by an access token. Instructors carry
// Cedula, administrators carry Username.
type Claims struct {
	Cedula   string      `json:"cedula,omitempty"`
	Username string      `json:"username,omitempty"`
	Nombre   string      `json:"nombre"`
	Email    string      `json:"email"`
	Role     models.Role `json:"role"`
	jwt.RegisteredClaims
}

// Issuer signs and verifies HS256 access tokens
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewIssuer(secret string, ttl time.Duration) *Issuer {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// NewIssuerFromConfig builds an Issuer from the JWT section of cfg.
func NewIssuerFromConfig(cfg *config.Config) *Issuer {
	return NewIssuer(cfg.JWT.Secret, cfg.JWT.AccessTokenTTL)
}

// Sign stamps jti, iat and exp on c and returns the signed token.
func (i *Issuer) Sign(c Claims) (string, error) {
	if len(i.secret) == 0 {
		return "", ErrNoSecret
	}
	now := i.now()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.IssuedAt = jwt.NewNumericDate(now)
	c.ExpiresAt = jwt.NewNumericDate(now.Add(i.ttl))
	jt := jwt.NewWithClaims(jwt.SigningMethodHS256, &c)
	return jt.SignedString(i.secret)
}

// Verify parses raw, checks the HS256 signature and expiry, and returns its claims.
func (i *Issuer) Verify(raw string) (*Claims, error) {
	var c Claims
	tok, err := jwt.ParseWithClaims(raw, &c, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !tok.Valid {
		return nil, errors.New("invalid token")
	}
	if c.Subject == "" {
		return nil, errors.New("token has no subject")
	}
	return &c, nil
}
