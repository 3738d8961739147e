package utils // package utils provides session token and password helpers

import (
    "errors"
    "time"

    "github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned when a session token fails to parse or
// verify.
var ErrInvalidToken = errors.New("invalid session token")

// NewSessionToken builds and signs the HS256 JWT stored in the admin
// session cookie.  The claims are deliberately minimal: subject, role,
// expiry and issue time.  There is a single admin identity, so the subject
// is fixed.
func NewSessionToken(secret string, ttlMin int) (string, time.Time, error) {
    exp := time.Now().UTC().Add(time.Duration(ttlMin) * time.Minute)
    claims := jwt.MapClaims{
        "sub":  "admin",
        "role": "admin",
        "exp":  exp.Unix(),
        "iat":  time.Now().UTC().Unix(),
    }
    t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
    signed, err := t.SignedString([]byte(secret))
    if err != nil {
        return "", time.Time{}, err
    }
    return signed, exp, nil
}

// ParseSessionToken verifies a session cookie value and returns its claims.
// Any parse or signature failure collapses into ErrInvalidToken; callers
// only need "valid or not".
func ParseSessionToken(secret, raw string) (jwt.MapClaims, error) {
    tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
        if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, ErrInvalidToken
        }
        return []byte(secret), nil
    })
    if err != nil || !tok.Valid {
        return nil, ErrInvalidToken
    }
    claims, ok := tok.Claims.(jwt.MapClaims)
    if !ok {
        return nil, ErrInvalidToken
    }
    return claims, nil
}
