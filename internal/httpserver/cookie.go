package httpserver

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/hkdf"

	"github.com/robalobadob/wordle/apps/session-server/internal/config"
)

const cookieKeyInfo = "wordle session cookie v1"

// sessionCookies issues and verifies the signed session cookie.
// The cookie value is an HS256 JWT whose subject is the session id.
type sessionCookies struct {
	name   string
	key    []byte
	ttl    time.Duration
	secure bool
	now    func() time.Time
}

func newSessionCookies(cfg config.Session, production bool) (*sessionCookies, error) {
	if cfg.Secret == "" {
		return nil, errors.New("session secret is empty")
	}
	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(cfg.Secret), nil, []byte(cookieKeyInfo)), key); err != nil {
		return nil, fmt.Errorf("derive cookie key: %w", err)
	}
	return &sessionCookies{
		name:   cfg.CookieName,
		key:    key,
		ttl:    cfg.TTL,
		secure: production,
		now:    time.Now,
	}, nil
}

// ensure returns the session id carried by r, issuing a new cookie when the
// request has none or an invalid one. A valid cookie past half its lifetime
// is re-signed for the same session.
func (c *sessionCookies) ensure(w http.ResponseWriter, r *http.Request) (string, error) {
	id := ""
	if ck, err := r.Cookie(c.name); err == nil && ck.Value != "" {
		sid, exp, err := c.parse(ck.Value)
		if err == nil && exp.Sub(c.now()) > c.ttl/2 {
			return sid, nil
		}
		if err == nil {
			id = sid
		}
	}
	if id == "" {
		id = uuid.NewString()
	}
	tok, exp, err := c.sign(id)
	if err != nil {
		return "", err
	}
	c.set(w, tok, exp)
	return id, nil
}

func (c *sessionCookies) sign(id string) (string, time.Time, error) {
	now := c.now()
	exp := now.Add(c.ttl)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   id,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	ss, err := t.SignedString(c.key)
	return ss, exp, err
}

// parse verifies tok and returns its session id and expiry.
func (c *sessionCookies) parse(tok string) (string, time.Time, error) {
	claims := &jwt.RegisteredClaims{}
	t, err := jwt.ParseWithClaims(tok, claims, func(*jwt.Token) (interface{}, error) {
		return c.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(c.now))
	if err != nil || !t.Valid || claims.ExpiresAt == nil {
		return "", time.Time{}, errors.New("invalid session token")
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return "", time.Time{}, errors.New("invalid session id")
	}
	return claims.Subject, claims.ExpiresAt.Time, nil
}

// set writes the session cookie with appropriate security attributes.
func (c *sessionCookies) set(w http.ResponseWriter, token string, exp time.Time) {
	sameSite := http.SameSiteLaxMode
	if c.secure {
		sameSite = http.SameSiteNoneMode // required for third‑party contexts when Secure
	}
	http.SetCookie(w, &http.Cookie{
		Name:     c.name,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: sameSite,
		Expires:  exp,
	})
}
