package bookly

import (
	"crypto/hmac"
	"crypto/sha256"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ActionPurpose scopes an action token to a single flow. A token minted
// for one purpose never verifies for another.
type ActionPurpose = string

const (
	// PurposeEmailVerification covers the signup verification link
	PurposeEmailVerification ActionPurpose = "email-verification"
	// PurposePasswordReset covers the password reset link
	PurposePasswordReset ActionPurpose = "password-reset"
)

type actionClaims struct {
	jwt.RegisteredClaims
	Email   string `json:"email"`
	Purpose string `json:"purpose"`
}

// ActionTokenService mints and verifies the single-purpose tokens that go
// into emailed links. Each purpose signs with its own key, derived from
// the signing secret and a configured salt, so bearer tokens and action
// tokens for other purposes never cross over.
type ActionTokenService struct {
	secret []byte
	method jwt.SigningMethod
	salt   string
	maxAge time.Duration
	logger Logger
}

// NewActionTokenService creates a new ActionTokenService instance. A nil or
// non-HMAC method falls back to HS256; Verify only accepts HMAC signatures.
func NewActionTokenService(secret []byte, method jwt.SigningMethod, salt string, maxAge time.Duration, logger Logger) *ActionTokenService {
	if logger == nil {
		logger = defLogger{}
	}
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		method = jwt.SigningMethodHS256
	}
	return &ActionTokenService{
		secret: secret,
		method: method,
		salt:   salt,
		maxAge: maxAge,
		logger: logger,
	}
}

// Issue mints an action token binding the email to the given purpose
func (s *ActionTokenService) Issue(email string, purpose ActionPurpose) (string, error) {
	if email == "" {
		return "", ErrNoEmptyString
	}

	now := time.Now()
	claims := &actionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.maxAge)),
		},
		Email:   email,
		Purpose: purpose,
	}

	ensureTokenID(&claims.RegisteredClaims)

	token := jwt.NewWithClaims(s.method, claims)

	signed, err := token.SignedString(s.deriveKey(purpose))
	if err != nil {
		s.logger.Error("ActionTokenService failed to sign token", "purpose", purpose, "error", err)
		return "", ErrActionTokenInvalid
	}

	return signed, nil
}

// Verify checks an action token against the expected purpose and returns
// the email it was minted for. Every failure mode collapses into
// ErrActionTokenInvalid so a caller probing the endpoint learns nothing
// about which check rejected the token.
func (s *ActionTokenService) Verify(tokenString string, purpose ActionPurpose) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &actionClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrActionTokenInvalid
		}
		return s.deriveKey(purpose), nil
	})

	if err != nil {
		s.logger.Debug("ActionTokenService rejected token", "purpose", purpose, "error", err)
		return "", ErrActionTokenInvalid
	}

	claims, ok := token.Claims.(*actionClaims)
	if !ok || !token.Valid {
		return "", ErrActionTokenInvalid
	}

	if claims.Purpose != purpose || claims.Email == "" {
		return "", ErrActionTokenInvalid
	}

	return claims.Email, nil
}

func (s *ActionTokenService) deriveKey(purpose ActionPurpose) []byte {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(s.salt))
	mac.Write([]byte(":"))
	mac.Write([]byte(purpose))
	return mac.Sum(nil)
}
