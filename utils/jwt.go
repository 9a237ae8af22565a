package utils

import (
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const tokenTTL = 24 * time.Hour

var (
	jwtSecret   = []byte("TestSecretKeyVenue1945")
	jwtSecretMu sync.RWMutex

	blacklistedTokens = make(map[string]time.Time)
	blacklistMutex    sync.RWMutex
)

// SetJWTSecret mengganti secret default (dipanggil sekali dari main setelah config dimuat).
func SetJWTSecret(secret string) {
	if secret == "" {
		InfoLogger.Warn("JWT_SECRET not set, using development secret")
		return
	}
	jwtSecretMu.Lock()
	defer jwtSecretMu.Unlock()
	jwtSecret = []byte(secret)
}

func secret() []byte {
	jwtSecretMu.RLock()
	defer jwtSecretMu.RUnlock()
	return jwtSecret
}

type CustomClaims struct {
	UserID  uint   `json:"user_id"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"is_admin"`
	jwt.RegisteredClaims
}

// Expiry adalah waktu kedaluwarsa token; zero kalau token tidak punya exp.
func (c *CustomClaims) Expiry() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

func GenerateToken(userID uint, email string, isAdmin bool) (string, error) {
	now := time.Now()
	claims := &CustomClaims{
		UserID:  userID,
		Email:   email,
		IsAdmin: isAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "VenueBooking",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(secret())
	if err != nil {
		ErrorLogger.Printf("Error generating token: %v", err)
		return "", err
	}
	return tokenString, nil
}

func ParseToken(tokenString string) (*CustomClaims, error) {
	if IsTokenBlacklisted(tokenString) {
		return nil, errors.New("token has been revoked")
	}

	token, err := jwt.ParseWithClaims(tokenString, &CustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret(), nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("invalid or expired token")
	}

	claims, ok := token.Claims.(*CustomClaims)
	if !ok || claims.UserID == 0 {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

// BlacklistToken menyimpan token yang sudah logout sampai masa berlakunya habis.
func BlacklistToken(token string) {
	blacklistMutex.Lock()
	defer blacklistMutex.Unlock()
	blacklistedTokens[token] = time.Now().Add(tokenTTL)
}

func IsTokenBlacklisted(token string) bool {
	blacklistMutex.RLock()
	expiry, exists := blacklistedTokens[token]
	blacklistMutex.RUnlock()
	if !exists {
		return false
	}
	if time.Now().Before(expiry) {
		return true
	}

	// Hapus token kadaluarsa dari blacklist
	blacklistMutex.Lock()
	delete(blacklistedTokens, token)
	blacklistMutex.Unlock()
	return false
}

// CleanupBlacklist membuang token kadaluarsa; dipanggil berkala oleh server.
func CleanupBlacklist() int {
	blacklistMutex.Lock()
	defer blacklistMutex.Unlock()

	removed := 0
	now := time.Now()
	for token, expiry := range blacklistedTokens {
		if now.After(expiry) {
			delete(blacklistedTokens, token)
			removed++
		}
	}
	return removed
}
