package bookly

import (
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
)

// RouteRegistrar captures the router methods used by the controllers.
type RouteRegistrar interface {
	Get(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Post(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Put(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Patch(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Delete(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
}

// RenderError writes the JSON error envelope for err. Rich errors keep
// their status code and text code; anything else collapses to a generic
// 500 so internals never leak to the client.
func RenderError(ctx router.Context, err error) error {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryInternal, "Oops! Something went wrong").
			WithTextCode(TextCodeServerError).
			WithCode(errors.CodeInternal)
	}

	status := richErr.Code
	if status < http.StatusBadRequest {
		status = http.StatusInternalServerError
	}

	body := map[string]any{
		"message":    richErr.Message,
		"error_code": richErr.TextCode,
	}

	if richErr.TextCode == TextCodeAccountNotVerified {
		body["resolution"] = "Please check your email for verification details"
	}

	return ctx.JSON(status, body)
}

// logFlowError logs a failed flow, expanding rich error metadata so the
// log line carries the context the JSON envelope hides from the client.
func logFlowError(logger Logger, flow string, err error) {
	var richErr *errors.Error
	if errors.As(err, &richErr) && len(richErr.Metadata) > 0 {
		logger.Error(flow, "error", err, "details", print.MaybePrettyJSON(richErr.Metadata))
		return
	}
	logger.Error(flow, "error", err)
}

func wrapValidationError(err error) error {
	return errors.Wrap(err, errors.CategoryValidation, err.Error()).
		WithTextCode(TextCodeValidationError).
		WithCode(errors.CodeBadRequest)
}

func wrapBindError(err error) error {
	return errors.Wrap(err, errors.CategoryBadInput, "Failed to parse request body").
		WithTextCode(TextCodeValidationError).
		WithCode(errors.CodeBadRequest)
}

// AuthControllerConfig wires the auth flows and guards into the controller.
type AuthControllerConfig struct {
	Auth         *Auther
	Tokens       TokenService
	Policy       *Policy
	Guard        router.MiddlewareFunc
	RefreshGuard router.MiddlewareFunc
	Register     *RegisterUserHandler
	Verify       *VerifyAccountHandler
	ResetInit    *InitializePasswordResetHandler
	ResetFinal   *FinalizePasswordResetHandler
	ContextKey   string
	Logger       Logger
}

// AuthController exposes the auth flows as a JSON API.
type AuthController struct {
	auth         *Auther
	tokens       TokenService
	policy       *Policy
	guard        router.MiddlewareFunc
	refreshGuard router.MiddlewareFunc
	register     *RegisterUserHandler
	verify       *VerifyAccountHandler
	resetInit    *InitializePasswordResetHandler
	resetFinal   *FinalizePasswordResetHandler
	contextKey   string
	logger       Logger
}

// NewAuthController creates the auth controller from its dependencies
func NewAuthController(cfg AuthControllerConfig) *AuthController {
	if cfg.ContextKey == "" {
		cfg.ContextKey = "user"
	}

	if cfg.Logger == nil {
		cfg.Logger = defLogger{}
	}

	return &AuthController{
		auth:         cfg.Auth,
		tokens:       cfg.Tokens,
		policy:       cfg.Policy,
		guard:        cfg.Guard,
		refreshGuard: cfg.RefreshGuard,
		register:     cfg.Register,
		verify:       cfg.Verify,
		resetInit:    cfg.ResetInit,
		resetFinal:   cfg.ResetFinal,
		contextKey:   cfg.ContextKey,
		logger:       cfg.Logger,
	}
}

// RegisterRoutes registers the auth endpoints on the given group
func (a *AuthController) RegisterRoutes(group RouteRegistrar) {
	group.Post("/signup", a.Signup)
	group.Get("/verify/:token", a.VerifyAccount)
	group.Post("/login", a.Login)
	group.Get("/refresh_token", a.RefreshToken, a.refreshGuard)
	group.Get("/me", a.CurrentUser, a.guard, a.policy.Middleware())
	group.Get("/logout", a.Logout, a.guard)
	group.Post("/password-reset", a.PasswordResetRequest)
	group.Post("/password-reset-confirm/:token", a.PasswordResetConfirm)
}

// SignupPayload is the account creation body
type SignupPayload struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// Validate will validate the payload
func (r SignupPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FirstName, validation.Length(0, 25)),
		validation.Field(&r.LastName, validation.Length(0, 25)),
		validation.Field(&r.Username, validation.Required, validation.Length(1, 8)),
		validation.Field(&r.Email, validation.Required, validation.Length(3, 40), is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(6, 100)),
	)
}

// Signup creates a new account and queues the verification email
func (a *AuthController) Signup(ctx router.Context) error {
	payload := new(SignupPayload)

	if err := ctx.Bind(payload); err != nil {
		a.logger.Error("signup parse payload", "error", err)
		return RenderError(ctx, wrapBindError(err))
	}

	if err := payload.Validate(); err != nil {
		return RenderError(ctx, wrapValidationError(err))
	}

	var created *User

	msg := RegisterUserMessage{
		FirstName: payload.FirstName,
		LastName:  payload.LastName,
		Username:  payload.Username,
		Email:     payload.Email,
		Password:  payload.Password,
		OnResponse: func(user *User) {
			created = user
		},
	}

	if err := a.register.Execute(ctx.Context(), msg); err != nil {
		logFlowError(a.logger, "signup execute", err)
		return RenderError(ctx, err)
	}

	return ctx.JSON(http.StatusCreated, map[string]any{
		"message": "Account Created! Check email to verify your account",
		"user":    userResponse(created),
	})
}

// VerifyAccount marks the account behind the emailed token as verified
func (a *AuthController) VerifyAccount(ctx router.Context) error {
	token := ctx.Param("token")

	msg := VerifyAccountMessage{Token: token}

	if err := a.verify.Execute(ctx.Context(), msg); err != nil {
		logFlowError(a.logger, "account verification", err)
		return RenderError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"message": "Account verified successfully",
	})
}

// LoginPayload is the credential exchange body
type LoginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate will validate the payload
func (r LoginPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, validation.Length(3, 40), is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(6, 100)),
	)
}

// Login exchanges credentials for an access and refresh token pair
func (a *AuthController) Login(ctx router.Context) error {
	payload := new(LoginPayload)

	if err := ctx.Bind(payload); err != nil {
		a.logger.Error("login parse payload", "error", err)
		return RenderError(ctx, wrapBindError(err))
	}

	if err := payload.Validate(); err != nil {
		return RenderError(ctx, wrapValidationError(err))
	}

	pair, err := a.auth.Login(ctx.Context(), payload.Email, payload.Password)
	if err != nil {
		logFlowError(a.logger, "login", err)
		return RenderError(ctx, err)
	}

	claims, err := a.tokens.Validate(pair.AccessToken)
	if err != nil {
		return RenderError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"message":       "Login successful",
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
		"user": map[string]any{
			"email": claims.Email(),
			"uid":   claims.UserID(),
		},
	})
}

// RefreshToken issues a fresh access token. The route runs behind the
// refresh guard so the claims in locals are a validated refresh token.
func (a *AuthController) RefreshToken(ctx router.Context) error {
	claims, ok := GetRouterClaims(ctx, a.contextKey)
	if !ok {
		return RenderError(ctx, ErrCredentialsMissing)
	}

	token, err := a.auth.Refresh(ctx.Context(), claims)
	if err != nil {
		logFlowError(a.logger, "refresh token", err)
		return RenderError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"access_token": token,
	})
}

// CurrentUser returns the account record loaded by the access policy
func (a *AuthController) CurrentUser(ctx router.Context) error {
	user, ok := GetRouterUser(ctx)
	if !ok {
		return RenderError(ctx, ErrCredentialsMissing)
	}

	return ctx.JSON(router.StatusOK, userResponse(user))
}

// Logout revokes the presented token
func (a *AuthController) Logout(ctx router.Context) error {
	claims, ok := GetRouterClaims(ctx, a.contextKey)
	if !ok {
		return RenderError(ctx, ErrCredentialsMissing)
	}

	if err := a.auth.Revoke(ctx.Context(), claims); err != nil {
		logFlowError(a.logger, "logout revoke", err)
		return RenderError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"message": "Logged Out Successfully",
	})
}

// PasswordResetRequestPayload holds the email for the reset flow
type PasswordResetRequestPayload struct {
	Email string `json:"email"`
}

// Validate will validate the payload
func (r PasswordResetRequestPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, validation.Length(3, 40), is.Email),
	)
}

// PasswordResetRequest starts the reset flow. The response is identical
// whether or not the email maps to an account.
func (a *AuthController) PasswordResetRequest(ctx router.Context) error {
	payload := new(PasswordResetRequestPayload)

	if err := ctx.Bind(payload); err != nil {
		a.logger.Error("password reset parse payload", "error", err)
		return RenderError(ctx, wrapBindError(err))
	}

	if err := payload.Validate(); err != nil {
		return RenderError(ctx, wrapValidationError(err))
	}

	msg := InitializePasswordResetMessage{Email: payload.Email}

	if err := a.resetInit.Execute(ctx.Context(), msg); err != nil {
		logFlowError(a.logger, "password reset init", err)
		return RenderError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"message": "Please check your email for instructions to reset your password",
	})
}

// PasswordResetConfirmPayload carries the replacement password
type PasswordResetConfirmPayload struct {
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_new_password"`
}

// Validate will validate the payload
func (r PasswordResetConfirmPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.NewPassword, validation.Required, validation.Length(6, 100)),
		validation.Field(&r.ConfirmPassword, validation.Required, validation.Length(6, 100)),
	)
}

// PasswordResetConfirm finalizes the reset flow with the emailed token
func (a *AuthController) PasswordResetConfirm(ctx router.Context) error {
	token := ctx.Param("token")
	payload := new(PasswordResetConfirmPayload)

	if err := ctx.Bind(payload); err != nil {
		a.logger.Error("password reset confirm parse payload", "error", err)
		return RenderError(ctx, wrapBindError(err))
	}

	if err := payload.Validate(); err != nil {
		return RenderError(ctx, wrapValidationError(err))
	}

	msg := FinalizePasswordResetMessage{
		Token:           token,
		NewPassword:     payload.NewPassword,
		ConfirmPassword: payload.ConfirmPassword,
	}

	if err := a.resetFinal.Execute(ctx.Context(), msg); err != nil {
		logFlowError(a.logger, "password reset confirm", err)
		return RenderError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"message": "Password reset Successfully",
	})
}

func userResponse(user *User) map[string]any {
	if user == nil {
		return nil
	}
	return map[string]any{
		"uid":         user.ID,
		"username":    user.Username,
		"email":       user.Email,
		"first_name":  user.FirstName,
		"last_name":   user.LastName,
		"role":        user.Role,
		"is_verified": user.EmailValidated,
		"created_at":  user.CreatedAt,
	}
}
