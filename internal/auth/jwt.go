// Package auth issues and verifies access tokens and hashes passwords.
package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/PaulBabatuyi/chitChest-gRPC/internal/normalize"
)

// defaultKid names the key when a single secret is configured.
const defaultKid = "default"

// JWTManager signs and validates JWT tokens used by the API. It holds every
// known signing key by kid so tokens signed before a rotation keep verifying.
type JWTManager struct {
	keys      map[string][]byte // kid -> HMAC secret
	activeKid string            // key used for new tokens
	duration  time.Duration     // how long tokens are valid
	now       func() time.Time
}

// Claims is the custom JWT payload (identity id + username).
type Claims struct {
	UserID               string `json:"user_id"`
	Username             string `json:"username"` // normalized username
	jwt.RegisteredClaims        // ExpiresAt, IssuedAt, ...
}

// NewJWTManager returns a manager with a single signing key.
func NewJWTManager(secretKey string, duration time.Duration) *JWTManager {
	return NewJWTManagerFromKeys(map[string]string{defaultKid: secretKey}, defaultKid, duration)
}

// NewJWTManagerFromKeys returns a manager that signs with keys[activeKid] and
// verifies with whichever key the token's kid header names. An empty or
// unknown activeKid picks the smallest kid so startup never fails on it.
func NewJWTManagerFromKeys(keys map[string]string, activeKid string, duration time.Duration) *JWTManager {
	m := &JWTManager{
		keys:     make(map[string][]byte, len(keys)),
		duration: duration,
		now:      time.Now,
	}
	for kid, secret := range keys {
		m.keys[kid] = []byte(secret)
	}
	if _, ok := m.keys[activeKid]; !ok {
		activeKid = ""
		for kid := range m.keys {
			if activeKid == "" || kid < activeKid {
				activeKid = kid
			}
		}
	}
	m.activeKid = activeKid
	return m
}

// ParseKeys parses "kid:secret,kid2:secret2" as used by the JWT_KEYS setting.
func ParseKeys(s string) (map[string]string, error) {
	keys := map[string]string{}
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		kid, secret, ok := strings.Cut(p, ":")
		if !ok || kid == "" || secret == "" {
			return nil, errors.Errorf("invalid key entry %q", p)
		}
		keys[kid] = secret
	}
	if len(keys) == 0 {
		return nil, errors.New("no keys configured")
	}
	return keys, nil
}

// GenerateToken issues a signed JWT for an identity.
func (m *JWTManager) GenerateToken(userID, username string) (string, time.Time, error) {
	secret, ok := m.keys[m.activeKid]
	if !ok {
		return "", time.Time{}, errors.New("no active signing key")
	}

	now := m.now()
	expiresAt := now.Add(m.duration)
	claims := &Claims{
		UserID:   userID,
		Username: normalize.Username(username),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	// HS256; the kid header tells VerifyToken which secret to use
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token.Header["kid"] = m.activeKid

	tokenString, err := token.SignedString(secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// VerifyToken parses and validates a token and returns its claims.
func (m *JWTManager) VerifyToken(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// only HMAC; refuses alg=none and asymmetric algs
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		kid, _ := token.Header["kid"].(string)
		if kid == "" {
			// tokens from before kid headers were added
			kid = m.activeKid
		}
		secret, ok := m.keys[kid]
		if !ok {
			return nil, fmt.Errorf("unknown key id %q", kid)
		}
		return secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.UserID == "" {
		return nil, errors.New("token has no subject")
	}
	return claims, nil
}

// HashPassword returns a bcrypt hash for the provided plaintext.
func HashPassword(password string) (string, error) {
	// default cost (10 rounds)
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashedPassword), nil
}

// CheckPassword compares a plaintext password against a bcrypt hash.
func CheckPassword(hash, password string) error {
	// constant time with respect to the password
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
