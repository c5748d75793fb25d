package utils // package utils provides helper functions for token creation and password hashing

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessToken represents a signed JWT access token along with its expiry.
// Token contains the serialized JWT.  Exp is the UTC expiration time with
// the same second precision as the token's exp claim.
type AccessToken struct {
	Token string
	Exp   time.Time
}

// TokenParams carries the issuer settings applied to every access token.
type TokenParams struct {
	Secret   string
	Issuer   string
	Audience string
	TTL      time.Duration
}

// NewAccessToken builds and signs an HS256 JWT for username.  The token
// carries subject (sub), a unique token id (jti), issuer (iss), audience
// (aud), issued-at (iat) and expiration (exp).
func NewAccessToken(p TokenParams, username string) (AccessToken, error) {
	if p.Secret == "" {
		return AccessToken{}, errors.New("jwt secret is empty")
	}
	now := time.Now().UTC().Truncate(time.Second)
	exp := now.Add(p.TTL)
	claims := jwt.RegisteredClaims{
		Subject:   username,
		ID:        uuid.NewString(),
		Issuer:    p.Issuer,
		Audience:  jwt.ClaimStrings{p.Audience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(p.Secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// ParseAccessToken verifies raw against the signing secret, issuer,
// audience and expiry and returns its registered claims.
func ParseAccessToken(p TokenParams, raw string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if p.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(p.Issuer))
	}
	if p.Audience != "" {
		opts = append(opts, jwt.WithAudience(p.Audience))
	}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(p.Secret), nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	if !tok.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}
