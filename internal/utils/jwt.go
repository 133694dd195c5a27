package utils // package utils provides helpers for the bearer tokens issued by the identity provider

import (
    "errors"
    "time"

    "github.com/golang-jwt/jwt/v5"
)

// Claims are the JWT claims the service understands: the standard subject
// (user id) and expiry plus the caller's role (admin, org or client).
type Claims struct {
    Role string `json:"role"`
    jwt.RegisteredClaims
}

// AccessToken represents a signed JWT access token along with its expiry.
type AccessToken struct {
    Token string    // the serialized JWT string
    Exp   time.Time // the UTC expiration time
}

var (
    ErrMissingSubject = errors.New("token has no subject")
    ErrMissingRole    = errors.New("token has no role")
)

// NewAccessToken builds and signs an HS256 JWT for userID with role,
// valid for ttl.  Tokens are normally minted by the identity provider;
// cmd/token and the tests use this to produce compatible ones.
func NewAccessToken(secret, userID, role string, ttl time.Duration) (AccessToken, error) {
    now := time.Now().UTC()
    exp := now.Add(ttl)
    claims := Claims{
        Role: role,
        RegisteredClaims: jwt.RegisteredClaims{
            Subject:   userID,
            IssuedAt:  jwt.NewNumericDate(now),
            ExpiresAt: jwt.NewNumericDate(exp),
        },
    }
    signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
    if err != nil {
        return AccessToken{}, err
    }
    return AccessToken{Token: signed, Exp: exp}, nil
}

// ParseAccessToken verifies an HS256 token signed with secret and returns
// its claims.  Expired tokens and tokens without subject or role are
// rejected.
func ParseAccessToken(secret, raw string) (*Claims, error) {
    claims := &Claims{}
    _, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
        return []byte(secret), nil
    }, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
    if err != nil {
        return nil, err
    }
    if claims.Subject == "" {
        return nil, ErrMissingSubject
    }
    if claims.Role == "" {
        return nil, ErrMissingRole
    }
    return claims, nil
}
