package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Codec issues and validates signed session tokens. Tokens are self-contained
// HS256 JWTs carrying a subject (the user id) and an absolute expiry; there is
// no server-side revocation.
type Codec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewCodec(secret []byte, ttl time.Duration) *Codec {
	return &Codec{secret: secret, ttl: ttl, now: time.Now}
}

// Issue signs a token asserting subject, expiring after the configured TTL.
func (c *Codec) Issue(subject string) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(c.now().Add(c.ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

// Validate returns the subject of a well-formed, correctly signed, unexpired
// token. Every failure mode collapses into ErrInvalidToken; callers never
// learn whether a rejected token was tampered with or merely expired.
func (c *Codec) Validate(token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(t *jwt.Token) (interface{}, error) { return c.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return c.now() }),
	)
	if err != nil || !parsed.Valid || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
