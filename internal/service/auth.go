package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/fixlab/api-core/internal/apierror"
	"github.com/fixlab/api-core/internal/catalog"
	"github.com/fixlab/api-core/internal/models"
	"github.com/fixlab/api-core/internal/storage"
	"github.com/fixlab/api-core/internal/store"
)

// AuthService registers principals, issues API keys and session tokens,
// and resolves inbound credentials back to a principal.
type AuthService struct {
	store     store.PrincipalStore
	redis     *storage.RedisClient // optional lookup cache, may be nil
	logger    *zap.Logger
	jwtSecret []byte // stored in env (JWT_SECRET)
	jwtExpiry time.Duration
}

func NewAuthService(principals store.PrincipalStore, redis *storage.RedisClient, logger *zap.Logger, secret string, expiryHours int) *AuthService {
	return &AuthService{
		store:     principals,
		redis:     redis,
		logger:    logger,
		jwtSecret: []byte(secret),
		jwtExpiry: time.Duration(expiryHours) * time.Hour,
	}
}

// Register creates a new principal and returns it along with the plain API
// key. The key is shown once; only its hash is stored.
func (s *AuthService) Register(ctx context.Context, email, password, company string, tierID catalog.TierID) (*models.Principal, string, error) {
	if tierID == "" {
		tierID = catalog.Default().ID
	}
	tier, ok := catalog.Resolve(tierID)
	if !ok {
		return nil, "", apierror.InvalidSubscription(string(tierID))
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	key, keyHash, err := generateAPIKey()
	if err != nil {
		return nil, "", err
	}

	principal := &models.Principal{
		Email:        email,
		PasswordHash: string(hashedPassword),
		Company:      company,
		Tier:         string(tier.ID),
		APIKeyHash:   keyHash,
		Role:         "user",
	}

	if err := s.store.Create(ctx, principal); err != nil {
		if err == store.ErrDuplicateEmail {
			return nil, "", apierror.Conflict("an account with this email already exists")
		}
		return nil, "", fmt.Errorf("failed to create principal: %w", err)
	}

	s.logger.Info("principal registered",
		zap.String("id", principal.ID.String()),
		zap.String("tier", principal.Tier))

	return principal, key, nil
}

// Login authenticates by email and password and returns a signed session
// token valid for the configured expiry.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *models.Principal, error) {
	principal, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		return "", nil, err
	}
	if principal == nil {
		return "", nil, apierror.Unauthenticated("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(principal.PasswordHash), []byte(password)); err != nil {
		return "", nil, apierror.Unauthenticated("invalid credentials")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   principal.ID.String(),
		"email": principal.Email,
		"role":  principal.Role,
		"exp":   time.Now().Add(s.jwtExpiry).Unix(),
		"iat":   time.Now().Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, principal, nil
}

// cachedIdentity is the subset of a principal stored in the lookup cache.
// Usage counters are deliberately excluded: they move on every metered
// request and are always read from the store.
type cachedIdentity struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Company   string    `json:"company,omitempty"`
	Tier      string    `json:"tier"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func identityFrom(p *models.Principal) cachedIdentity {
	return cachedIdentity{
		ID:        p.ID,
		Email:     p.Email,
		Company:   p.Company,
		Tier:      p.Tier,
		Role:      p.Role,
		CreatedAt: p.CreatedAt,
	}
}

func (c cachedIdentity) principal() *models.Principal {
	return &models.Principal{
		ID:        c.ID,
		Email:     c.Email,
		Company:   c.Company,
		Tier:      c.Tier,
		Role:      c.Role,
		CreatedAt: c.CreatedAt,
	}
}

// ResolveAPIKey looks up the principal whose stored key hash matches the
// presented key. Lookups go through Redis when a cache is configured; the
// cache holds identity and tier only, never counters.
func (s *AuthService) ResolveAPIKey(ctx context.Context, key string) (*models.Principal, error) {
	hash := sha256.Sum256([]byte(key))
	keyHash := hex.EncodeToString(hash[:])

	cacheKey := fmt.Sprintf("principal:cache:%s", keyHash)
	if s.redis != nil {
		cached, err := s.redis.Get(ctx, cacheKey)
		if err == nil && cached != "" {
			var identity cachedIdentity
			if err := json.Unmarshal([]byte(cached), &identity); err == nil {
				return identity.principal(), nil
			}
			// Unreadable entry: drop it and fall through to the store.
			s.redis.Del(ctx, cacheKey)
		}
	}

	principal, err := s.store.FindByKeyHash(ctx, keyHash)
	if err != nil {
		return nil, err
	}
	if principal == nil {
		return nil, nil
	}

	if s.redis != nil {
		identityJSON, _ := json.Marshal(identityFrom(principal))
		s.redis.Set(ctx, cacheKey, identityJSON, 5*time.Minute)
	}

	return principal, nil
}

// ResolveToken verifies a session token's signature and expiry and looks up
// the embedded principal.
func (s *AuthService) ResolveToken(ctx context.Context, tokenString string) (*models.Principal, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, nil
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, nil
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, nil
	}

	return s.store.FindByID(ctx, sub)
}

// GetByID retrieves a principal by its identifier.
func (s *AuthService) GetByID(ctx context.Context, id string) (*models.Principal, error) {
	return s.store.FindByID(ctx, id)
}

func generateAPIKey() (key, keyHash string, err error) {
	keyBytes := make([]byte, 32)
	if _, err := rand.Read(keyBytes); err != nil {
		return "", "", fmt.Errorf("failed to generate random key: %w", err)
	}

	key = "fx_" + base64.URLEncoding.EncodeToString(keyBytes)

	hash := sha256.Sum256([]byte(key))
	keyHash = hex.EncodeToString(hash[:])

	return key, keyHash, nil
}
