package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims carried by a session token: email, subject (external id) and the
// trust source that vouched for the identity.
type Claims struct {
	Email       string `json:"email"`
	TrustSource string `json:"acc_type"`
	jwt.RegisteredClaims
}

func MakeAccess(secret, externalID, email, trustSource string, ttl time.Duration) (string, error) {
	c := Claims{
		Email:       email,
		TrustSource: trustSource,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			Subject:   externalID,
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	return t.SignedString([]byte(secret))
}

// ParseAccess fails closed: signature mismatch, expiry and malformed
// structure all collapse into a single error outcome.
func ParseAccess(secret, token string) (*Claims, error) {
	t, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return nil, err
	}
	c, ok := t.Claims.(*Claims)
	if !ok || !t.Valid {
		return nil, errors.New("invalid token")
	}
	return c, nil
}
