package session

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const CookieName = "markethub.sid"

var ErrNoSession = errors.New("no valid session")

type Claims struct {
	jwt.RegisteredClaims
}

// Manager issues and resolves session cookies. The cookie carries a random
// session id signed with Secret; the Store entry is the only proof that the
// session is live.
type Manager struct {
	Store  Store
	Secret []byte
	TTL    time.Duration
	Secure bool
	Now    func() time.Time
}

func NewManager(store Store, secret []byte, ttl time.Duration, secure bool) *Manager {
	return &Manager{Store: store, Secret: secret, TTL: ttl, Secure: secure, Now: time.Now}
}

func Sha256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

func (m *Manager) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

// Start creates a session for userID and returns the cookie to set.
func (m *Manager) Start(ctx context.Context, userID uint) (*http.Cookie, error) {
	sid := uuid.NewString()
	exp := m.now().Add(m.TTL)

	if err := m.Store.Save(ctx, Sha256Hex(sid), Record{UserID: userID, ExpiresAt: exp}); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sid,
			Subject:   strconv.FormatUint(uint64(userID), 10),
			IssuedAt:  jwt.NewNumericDate(m.now()),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.Secret)
	if err != nil {
		return nil, fmt.Errorf("sign session: %w", err)
	}

	return m.cookie(signed, exp), nil
}

// Resolve returns the user id bound to the request's session cookie.
func (m *Manager) Resolve(ctx context.Context, r *http.Request) (uint, error) {
	ck, err := r.Cookie(CookieName)
	if err != nil || ck.Value == "" {
		return 0, ErrNoSession
	}

	claims, err := m.parse(ck.Value)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrNoSession, err)
	}

	rec, err := m.Store.Get(ctx, Sha256Hex(claims.ID))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return 0, ErrNoSession
		}
		return 0, err
	}
	if !rec.ExpiresAt.After(m.now()) {
		_ = m.Store.Delete(ctx, Sha256Hex(claims.ID))
		return 0, ErrNoSession
	}
	if strconv.FormatUint(uint64(rec.UserID), 10) != claims.Subject {
		return 0, ErrNoSession
	}
	return rec.UserID, nil
}

// Destroy removes the request's session, if any, and returns a cookie that
// clears it on the client.
func (m *Manager) Destroy(ctx context.Context, r *http.Request) (*http.Cookie, error) {
	gone := m.cookie("", time.Unix(0, 0))
	gone.MaxAge = -1

	ck, err := r.Cookie(CookieName)
	if err != nil || ck.Value == "" {
		return gone, nil
	}
	claims, err := m.parse(ck.Value)
	if err != nil {
		return gone, nil
	}
	if err := m.Store.Delete(ctx, Sha256Hex(claims.ID)); err != nil {
		return nil, fmt.Errorf("delete session: %w", err)
	}
	return gone, nil
}

func (m *Manager) parse(raw string) (*Claims, error) {
	var claims Claims
	tkn, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected sign method")
		}
		return m.Secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil {
		return nil, err
	}
	if !tkn.Valid || claims.ID == "" {
		return nil, errors.New("invalid session token")
	}
	return &claims, nil
}

func (m *Manager) cookie(value string, exp time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		Expires:  exp,
		MaxAge:   int(m.TTL.Seconds()),
		HttpOnly: true,
		Secure:   m.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}
