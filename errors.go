package bookly

import "github.com/goliatone/go-errors"

const (
	TextCodeInvalidToken           = "invalid_token"
	TextCodeTokenExpired           = "token_expired"
	TextCodeCredentialsMissing     = "credentials_missing"
	TextCodeWrongTokenKind         = "wrong_token_kind"
	TextCodeTokenRevoked           = "token_revoked"
	TextCodeInvalidCredentials     = "invalid_credentials"
	TextCodeAccountNotVerified     = "account_not_verified"
	TextCodeInsufficientPermission = "insufficient_permission"
	TextCodeDuplicateAccount       = "duplicate_account"
	TextCodeUserNotFound           = "user_not_found"
	TextCodeActionTokenInvalid     = "action_token_invalid"
	TextCodePasswordMismatch       = "password_mismatch"
	TextCodeTooManyAttempts        = "too_many_login_attempts"
	TextCodeValidationError        = "validation_error"
	TextCodeServerError            = "server_error"
)

// ErrTokenInvalid is the single outward-facing error for tokens that fail
// signature or structural checks. Internal callers can still distinguish
// the cause through ErrTokenExpired and ErrTokenMalformed.
var ErrTokenInvalid = errors.New("Token is invalid or expired", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidToken).
	WithCode(errors.CodeUnauthorized)

// ErrTokenExpired is returned when a well formed token is past its expiry.
var ErrTokenExpired = errors.New("Token is invalid or expired", errors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(errors.CodeUnauthorized)

// ErrRefreshTokenExpired is returned when a refresh token's embedded expiry
// has already passed by the time a new access token is requested.
var ErrRefreshTokenExpired = errors.New("Token is invalid or expired", errors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(errors.CodeBadRequest)

// ErrTokenMalformed is returned when a token cannot be parsed at all.
var ErrTokenMalformed = errors.New("Token is invalid or expired", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidToken).
	WithCode(errors.CodeUnauthorized)

// ErrTokenRevoked is returned when a token identifier is on the blocklist.
var ErrTokenRevoked = errors.New("Token is invalid or has been revoked", errors.CategoryAuth).
	WithTextCode(TextCodeTokenRevoked).
	WithCode(errors.CodeUnauthorized)

// ErrCredentialsMissing is returned when a guarded route gets no bearer token.
var ErrCredentialsMissing = errors.New("Missing or malformed credentials", errors.CategoryAuth).
	WithTextCode(TextCodeCredentialsMissing).
	WithCode(errors.CodeUnauthorized)

// ErrAccessTokenRequired is returned when a refresh token is presented to a
// route that expects an access token.
var ErrAccessTokenRequired = errors.New("Please provide a valid access token", errors.CategoryAuth).
	WithTextCode(TextCodeWrongTokenKind).
	WithCode(errors.CodeForbidden)

// ErrRefreshTokenRequired is returned when an access token is presented to a
// route that expects a refresh token.
var ErrRefreshTokenRequired = errors.New("Please provide a valid refresh token", errors.CategoryAuth).
	WithTextCode(TextCodeWrongTokenKind).
	WithCode(errors.CodeForbidden)

// ErrMismatchedHashAndPassword is the single credential failure error. It
// covers both unknown accounts and wrong passwords so login responses do
// not leak which one happened.
var ErrMismatchedHashAndPassword = errors.New("Invalid email or password", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidCredentials).
	WithCode(errors.CodeForbidden)

// ErrTooManyLoginAttempts is returned when an account is inside its login
// cooldown window.
var ErrTooManyLoginAttempts = errors.New("Too many failed login attempts, try again later", errors.CategoryRateLimit).
	WithTextCode(TextCodeTooManyAttempts).
	WithCode(errors.CodeForbidden)

// ErrAccountNotVerified is returned when an unverified account reaches a
// route that requires a verified email.
var ErrAccountNotVerified = errors.New("Account not verified", errors.CategoryAuthz).
	WithTextCode(TextCodeAccountNotVerified).
	WithCode(errors.CodeForbidden)

// ErrInsufficientPermission is returned when the caller's role is not in the
// route's allowed set.
var ErrInsufficientPermission = errors.New("You do not have enough permissions to perform this action", errors.CategoryAuthz).
	WithTextCode(TextCodeInsufficientPermission).
	WithCode(errors.CodeForbidden)

// ErrDuplicateAccount is returned on signup when the email is taken.
var ErrDuplicateAccount = errors.New("User with email already exists", errors.CategoryConflict).
	WithTextCode(TextCodeDuplicateAccount).
	WithCode(errors.CodeForbidden)

// ErrUserNotFound is returned when a flow references an account that does
// not exist.
var ErrUserNotFound = errors.New("User not found", errors.CategoryNotFound).
	WithTextCode(TextCodeUserNotFound).
	WithCode(errors.CodeNotFound)

// ErrActionTokenInvalid covers every action token failure: bad signature,
// wrong purpose, expired, or undecodable. The flows treat all of them the
// same so the caller learns nothing about which check tripped.
var ErrActionTokenInvalid = errors.New("Error occurred during verification", errors.CategoryAuth).
	WithTextCode(TextCodeActionTokenInvalid).
	WithCode(errors.CodeInternal)

// ErrPasswordMismatch is returned when a password reset confirmation sends
// two different passwords.
var ErrPasswordMismatch = errors.New("Passwords do not match", errors.CategoryBadInput).
	WithTextCode(TextCodePasswordMismatch).
	WithCode(errors.CodeBadRequest)

// ErrNoEmptyString is returned when a hashing input is empty.
var ErrNoEmptyString = errors.New("input cannot be empty", errors.CategoryValidation).
	WithTextCode(TextCodeValidationError).
	WithCode(errors.CodeBadRequest)
