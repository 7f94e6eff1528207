package util

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"restlab/config"
	"restlab/dao/model"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
	ErrRevokedToken = errors.New("token revoked")
)

// Principal is the authenticated subject of a request.
type Principal struct {
	Kind       model.PrincipalKind
	ID         uint
	Identifier string
}

type JWTClaims struct {
	Model      model.PrincipalKind `json:"model"`
	SubjectID  uint                `json:"id"`
	Identifier string              `json:"identifier,omitempty"`
	jwt.RegisteredClaims
}

// TokenInfo is what CheckToken learns from a valid token.
type TokenInfo struct {
	Principal
	JTI       string
	ExpiresAt time.Time
}

type TokenManager struct {
	secretKey string
	ttl       time.Duration
}

var (
	once     sync.Once
	tokenMgr *TokenManager
)

func GetTokenMgr() *TokenManager {
	once.Do(func() {
		auth := config.GetConfig().Auth
		tokenMgr = NewTokenManager(auth.SecretKey, auth.TokenTTL)
	})
	return tokenMgr
}

func NewTokenManager(secretKey string, ttl time.Duration) *TokenManager {
	return &TokenManager{
		secretKey: secretKey,
		ttl:       ttl,
	}
}

// CreateToken signs an HS256 token for p that expires after the configured TTL.
func (tm *TokenManager) CreateToken(p Principal) (string, error) {
	now := time.Now()
	claims := &JWTClaims{
		Model:      p.Kind,
		SubjectID:  p.ID,
		Identifier: p.Identifier,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tm.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(tm.secretKey))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// CheckToken verifies signature and expiry and returns the token subject.
func (tm *TokenManager) CheckToken(requestToken string) (TokenInfo, error) {
	claims := JWTClaims{}
	_, err := jwt.ParseWithClaims(requestToken, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(tm.secretKey), nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return TokenInfo{}, ErrExpiredToken
		}
		return TokenInfo{}, ErrInvalidToken
	}

	switch claims.Model {
	case model.KindLandlord, model.KindTenant, model.KindUser, model.KindViewer:
	default:
		return TokenInfo{}, ErrInvalidToken
	}
	if claims.SubjectID == 0 {
		return TokenInfo{}, ErrInvalidToken
	}

	info := TokenInfo{
		Principal: Principal{Kind: claims.Model, ID: claims.SubjectID, Identifier: claims.Identifier},
		JTI:       claims.RegisteredClaims.ID,
	}
	if claims.ExpiresAt != nil {
		info.ExpiresAt = claims.ExpiresAt.Time
	}
	return info, nil
}
