package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/KmNeetuSingh/Exam-Proctor/internal/domain/user"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Issuer names tokens minted by this service. Verification rejects tokens
// issued by anything else, even when they share a signing secret.
const Issuer = "exam-proctor"

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrWrongTokenUse = errors.New("token used for the wrong purpose")
	ErrUnknownRole   = errors.New("unknown role in token")
)

// Claims travel in both token kinds. Role rides along so RBAC never needs a
// user lookup per request; JTI keys refresh-token rows in the database.
type Claims struct {
	UserID    string `json:"sub"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	TokenType string `json:"typ"`
	JTI       string `json:"jti"`
	jwt.RegisteredClaims
}

// Manager mints and verifies the HS256 token pair.
type Manager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewManager(secret string, accessTTL time.Duration, refreshTTL time.Duration) *Manager {
	return &Manager{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

func validRole(role string) bool {
	return role == user.RoleStudent || role == user.RoleProctor
}

func (m *Manager) mint(userID, email, role, kind string, ttl time.Duration) (signed string, jti string, expiresAt time.Time, err error) {
	if !validRole(role) {
		return "", "", time.Time{}, ErrUnknownRole
	}

	now := time.Now().UTC()
	jti = uuid.NewString()
	expiresAt = now.Add(ttl)

	claims := Claims{
		UserID:    userID,
		Email:     email,
		Role:      role,
		TokenType: kind,
		JTI:       jti,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)

	return signed, jti, expiresAt, err
}

func (m *Manager) GenerateAccessToken(userID, email, role string) (string, error) {
	signed, _, _, err := m.mint(userID, email, role, tokenTypeAccess, m.accessTTL)
	return signed, err
}

// GenerateRefreshToken returns the raw token plus the JTI and expiry the
// caller persists alongside its hash.
func (m *Manager) GenerateRefreshToken(userID, email, role string) (raw string, jti string, expiresAt time.Time, err error) {
	return m.mint(userID, email, role, tokenTypeRefresh, m.refreshTTL)
}

func (m *Manager) keyFunc(*jwt.Token) (any, error) {
	return m.secret, nil
}

func (m *Manager) parse(raw, kind string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(raw, &Claims{}, m.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
	)

	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)

	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.TokenType != kind {
		return nil, ErrWrongTokenUse
	}

	if !validRole(claims.Role) {
		return nil, ErrUnknownRole
	}

	return claims, nil
}

func (m *Manager) VerifyAccessToken(raw string) (*Claims, error) {
	return m.parse(raw, tokenTypeAccess)
}

func (m *Manager) VerifyRefreshToken(raw string) (*Claims, error) {
	claims, err := m.parse(raw, tokenTypeRefresh)

	if err != nil {
		return nil, err
	}

	if claims.JTI == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// HashRefreshToken is the storable form of a refresh token: HMAC keyed with
// the signing secret, so rows leaked from the database cannot be replayed as
// tokens. Deterministic, so the hash doubles as the lookup value.
func (m *Manager) HashRefreshToken(raw string) string {
	mac := hmac.New(sha256.New, m.secret)
	mac.Write([]byte(raw))
	return hex.EncodeToString(mac.Sum(nil))
}
