package bookly

import (
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/goliatone/go-router"
	"github.com/google/uuid"
)

// ReviewsControllerConfig wires the review dependencies.
type ReviewsControllerConfig struct {
	Reviews Reviews
	Books   Books
	Guard   router.MiddlewareFunc
	Policy  *Policy
	Logger  Logger
}

// ReviewsController exposes book reviews as a JSON API.
type ReviewsController struct {
	reviews Reviews
	books   Books
	guard   router.MiddlewareFunc
	policy  *Policy
	logger  Logger
}

// NewReviewsController creates the reviews controller from its dependencies
func NewReviewsController(cfg ReviewsControllerConfig) *ReviewsController {
	if cfg.Logger == nil {
		cfg.Logger = defLogger{}
	}

	return &ReviewsController{
		reviews: cfg.Reviews,
		books:   cfg.Books,
		guard:   cfg.Guard,
		policy:  cfg.Policy,
		logger:  cfg.Logger,
	}
}

// RegisterRoutes registers the review endpoints on the given group
func (r *ReviewsController) RegisterRoutes(group RouteRegistrar) {
	mw := []router.MiddlewareFunc{r.guard, r.policy.Middleware(RoleAdmin, RoleUser)}

	group.Get("/book/:book_uid", r.ListByBook, mw...)
	group.Post("/book/:book_uid", r.Create, mw...)
	group.Get("/:review_uid", r.Get, mw...)
	group.Delete("/:review_uid", r.Delete, mw...)
}

// ListByBook returns every review for the given book
func (r *ReviewsController) ListByBook(ctx router.Context) error {
	bookID, err := paramUUID(ctx, "book_uid")
	if err != nil {
		return RenderError(ctx, err)
	}

	reviews, err := r.reviews.ListByBook(ctx.Context(), bookID)
	if err != nil {
		r.logger.Error("review list by book", "error", err)
		return RenderError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"reviews": reviews,
	})
}

// Get returns a single review
func (r *ReviewsController) Get(ctx router.Context) error {
	reviewID, err := paramUUID(ctx, "review_uid")
	if err != nil {
		return RenderError(ctx, err)
	}

	review, err := r.reviews.GetByID(ctx.Context(), reviewID)
	if err != nil {
		return RenderError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, review)
}

// ReviewCreatePayload is the review submission body
type ReviewCreatePayload struct {
	Rating     int    `json:"rating"`
	ReviewText string `json:"review_text"`
}

// Validate will validate the payload
func (p ReviewCreatePayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Rating, validation.Required, validation.Min(1), validation.Max(5)),
		validation.Field(&p.ReviewText, validation.Required, validation.Length(1, 500)),
	)
}

// Create adds the current user's review to a book
func (r *ReviewsController) Create(ctx router.Context) error {
	user, ok := GetRouterUser(ctx)
	if !ok {
		return RenderError(ctx, ErrCredentialsMissing)
	}

	bookID, err := paramUUID(ctx, "book_uid")
	if err != nil {
		return RenderError(ctx, err)
	}

	payload := new(ReviewCreatePayload)

	if err := ctx.Bind(payload); err != nil {
		r.logger.Error("review create parse payload", "error", err)
		return RenderError(ctx, wrapBindError(err))
	}

	if err := payload.Validate(); err != nil {
		return RenderError(ctx, wrapValidationError(err))
	}

	// the book must exist before we attach a review to it
	book, err := r.books.GetByID(ctx.Context(), bookID)
	if err != nil {
		return RenderError(ctx, err)
	}

	review := &Review{
		ID:         uuid.New(),
		UserID:     &user.ID,
		BookID:     &book.ID,
		Rating:     payload.Rating,
		ReviewText: payload.ReviewText,
	}

	created, err := r.reviews.Create(ctx.Context(), review)
	if err != nil {
		r.logger.Error("review create", "error", err)
		return RenderError(ctx, err)
	}

	return ctx.JSON(http.StatusCreated, created)
}

// Delete removes a review. Only the author or an admin may do so.
func (r *ReviewsController) Delete(ctx router.Context) error {
	user, ok := GetRouterUser(ctx)
	if !ok {
		return RenderError(ctx, ErrCredentialsMissing)
	}

	reviewID, err := paramUUID(ctx, "review_uid")
	if err != nil {
		return RenderError(ctx, err)
	}

	review, err := r.reviews.GetByID(ctx.Context(), reviewID)
	if err != nil {
		return RenderError(ctx, err)
	}

	if !canModify(user, review.UserID) {
		return RenderError(ctx, ErrInsufficientPermission)
	}

	if err := r.reviews.Delete(ctx.Context(), reviewID); err != nil {
		r.logger.Error("review delete", "error", err)
		return RenderError(ctx, err)
	}

	return ctx.Status(http.StatusNoContent).SendString("")
}
