package httpapi

import (
	"errors"
	"fmt"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"rawbazaar/backend/internal/domain"
)

const sessionIssuer = "rawbazaar"

// SessionManager signs and checks session tokens. A token only names the
// directory user a client acts as; no credentials are involved.
type SessionManager struct {
	secret   []byte
	tokenTTL time.Duration
	now      func() time.Time
}

type sessionClaims struct {
	jwtlib.RegisteredClaims
	UserType domain.UserType `json:"user_type"`
	UserID   int64           `json:"user_id"`
}

func NewSessionManager(secret string, tokenTTL time.Duration) *SessionManager {
	if secret == "" {
		secret = "dev-change-me"
	}
	if tokenTTL <= 0 {
		tokenTTL = 12 * time.Hour
	}
	return &SessionManager{
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
		now:      time.Now,
	}
}

func (m *SessionManager) Issue(actor domain.Actor) (token string, expiresAt time.Time, err error) {
	if !actor.Valid() {
		return "", time.Time{}, errors.New("invalid session actor")
	}
	issuedAt := m.now().UTC()
	expiresAt = issuedAt.Add(m.tokenTTL)
	claims := sessionClaims{
		RegisteredClaims: jwtlib.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   actor.Key(),
			IssuedAt:  jwtlib.NewNumericDate(issuedAt),
			ExpiresAt: jwtlib.NewNumericDate(expiresAt),
			Issuer:    sessionIssuer,
		},
		UserType: actor.UserType,
		UserID:   actor.UserID,
	}
	token, err = jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session: %w", err)
	}
	return token, expiresAt, nil
}

func (m *SessionManager) Parse(tokenStr string) (domain.Actor, error) {
	claims := &sessionClaims{}
	token, err := jwtlib.ParseWithClaims(tokenStr, claims, func(t *jwtlib.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwtlib.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	},
		jwtlib.WithValidMethods([]string{"HS256"}),
		jwtlib.WithIssuer(sessionIssuer),
		jwtlib.WithTimeFunc(m.now),
	)
	if err != nil || !token.Valid {
		return domain.Actor{}, errors.New("invalid or expired session")
	}

	actor := domain.Actor{UserID: claims.UserID, UserType: claims.UserType}
	if !actor.Valid() {
		return domain.Actor{}, errors.New("invalid session subject")
	}
	if sub, err := claims.GetSubject(); err != nil || sub != actor.Key() {
		return domain.Actor{}, errors.New("invalid session subject")
	}
	if _, err := uuid.Parse(claims.ID); err != nil {
		return domain.Actor{}, errors.New("invalid session id")
	}
	return actor, nil
}
