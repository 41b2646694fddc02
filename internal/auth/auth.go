package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// SessionCookie is the cookie carrying the signed session token.
const SessionCookie = "session"

const sessionTTL = 7 * 24 * time.Hour

var ErrInvalidCredentials = errors.New("invalid credentials")

type sessionClaims struct {
	jwt.RegisteredClaims
}

// Service implements the shared-password scheme: one password for the whole
// library, exchanged at login for a signed random-ID session token. The token
// is an HS256 JWT rather than a hash of the password, so leaking a cookie
// never leaks anything derived from the password itself.
type Service struct {
	secret       []byte
	passwordHash []byte
	revoked      *revocationCache
}

// NewService hashes the shared password up front. An empty password disables
// authentication entirely: every check passes, matching unconfigured
// deployments of old.
func NewService(secret, password string) (*Service, error) {
	s := &Service{secret: []byte(secret), revoked: newRevocationCache()}
	if password == "" {
		return s, nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	s.passwordHash = hash
	return s, nil
}

func (s *Service) Enabled() bool {
	return s.passwordHash != nil
}

// Login checks the submitted password and mints a session token.
func (s *Service) Login(password string) (string, error) {
	if !s.Enabled() {
		return "", errors.New("authentication not configured")
	}
	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}
	now := time.Now()
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        randomTokenID(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(sessionTTL)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return token, nil
}

// Logout revokes the token server side until its natural expiry, on top of
// whatever cookie clearing the handler does.
func (s *Service) Logout(token string) {
	claims, err := s.parse(token)
	if err != nil {
		return
	}
	until := time.Now().Add(sessionTTL)
	if claims.ExpiresAt != nil {
		until = claims.ExpiresAt.Time
	}
	s.revoked.Add(claims.ID, until)
}

// Valid reports whether token is a well-signed, unexpired, unrevoked session.
func (s *Service) Valid(token string) bool {
	claims, err := s.parse(token)
	if err != nil {
		return false
	}
	return !s.revoked.Contains(claims.ID, time.Now())
}

func (s *Service) parse(token string) (*sessionClaims, error) {
	parsed, err := jwt.ParseWithClaims(token, &sessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*sessionClaims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// Authenticated answers the per-request credential predicate. The token comes
// from the session cookie or, for direct media links, a token query
// parameter. With auth disabled everything passes.
func (s *Service) Authenticated(r *http.Request) bool {
	if !s.Enabled() {
		return true
	}
	if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
		if s.Valid(c.Value) {
			return true
		}
	}
	if t := r.URL.Query().Get("token"); t != "" {
		return s.Valid(t)
	}
	return false
}

// RequireAuth guards mutating routes; unauthenticated callers get 401.
func (s *Service) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.Authenticated(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func randomTokenID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(buf)
}
