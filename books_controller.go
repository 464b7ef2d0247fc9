package bookly

import (
	"net/http"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
	"github.com/google/uuid"
)

const (
	defaultPageLimit = 50
	maxPageLimit     = 200
)

// BooksControllerConfig wires the book catalog dependencies.
type BooksControllerConfig struct {
	Books  Books
	Guard  router.MiddlewareFunc
	Policy *Policy
	Logger Logger
}

// BooksController exposes the book catalog as a JSON API. Every route
// requires a verified account; mutations additionally require ownership
// or the admin role.
type BooksController struct {
	books  Books
	guard  router.MiddlewareFunc
	policy *Policy
	logger Logger
}

// NewBooksController creates the books controller from its dependencies
func NewBooksController(cfg BooksControllerConfig) *BooksController {
	if cfg.Logger == nil {
		cfg.Logger = defLogger{}
	}

	return &BooksController{
		books:  cfg.Books,
		guard:  cfg.Guard,
		policy: cfg.Policy,
		logger: cfg.Logger,
	}
}

// RegisterRoutes registers the book endpoints on the given group
func (b *BooksController) RegisterRoutes(group RouteRegistrar) {
	mw := []router.MiddlewareFunc{b.guard, b.policy.Middleware(RoleAdmin, RoleUser)}

	group.Get("/", b.List, mw...)
	group.Post("/", b.Create, mw...)
	group.Get("/user/:user_uid", b.ListByUser, mw...)
	group.Get("/:book_uid", b.Get, mw...)
	group.Patch("/:book_uid", b.Update, mw...)
	group.Delete("/:book_uid", b.Delete, mw...)
}

// List returns a page of books
func (b *BooksController) List(ctx router.Context) error {
	limit := queryInt(ctx, "limit", defaultPageLimit)
	if limit < 1 || limit > maxPageLimit {
		limit = defaultPageLimit
	}

	offset := queryInt(ctx, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	books, err := b.books.ListAll(ctx.Context(), limit, offset)
	if err != nil {
		b.logger.Error("book list", "error", err)
		return RenderError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"books": books,
	})
}

// ListByUser returns all books submitted by the given user
func (b *BooksController) ListByUser(ctx router.Context) error {
	userID, err := paramUUID(ctx, "user_uid")
	if err != nil {
		return RenderError(ctx, err)
	}

	books, err := b.books.ListByUser(ctx.Context(), userID)
	if err != nil {
		b.logger.Error("book list by user", "error", err)
		return RenderError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"books": books,
	})
}

// Get returns a single book with its reviews
func (b *BooksController) Get(ctx router.Context) error {
	bookID, err := paramUUID(ctx, "book_uid")
	if err != nil {
		return RenderError(ctx, err)
	}

	book, err := b.books.GetByID(ctx.Context(), bookID)
	if err != nil {
		return RenderError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, book)
}

// BookCreatePayload is the submission body
type BookCreatePayload struct {
	Title         string `json:"title"`
	Author        string `json:"author"`
	Publisher     string `json:"publisher"`
	PublishedDate string `json:"published_date"`
	PageCount     int    `json:"page_count"`
	Language      string `json:"language"`
}

// Validate will validate the payload
func (r BookCreatePayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Author, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Publisher, validation.Length(0, 200)),
		validation.Field(&r.PublishedDate, validation.Date("2006-01-02")),
		validation.Field(&r.PageCount, validation.Min(1)),
		validation.Field(&r.Language, validation.Length(0, 30)),
	)
}

// Create registers a new book owned by the current user
func (b *BooksController) Create(ctx router.Context) error {
	user, ok := GetRouterUser(ctx)
	if !ok {
		return RenderError(ctx, ErrCredentialsMissing)
	}

	payload := new(BookCreatePayload)

	if err := ctx.Bind(payload); err != nil {
		b.logger.Error("book create parse payload", "error", err)
		return RenderError(ctx, wrapBindError(err))
	}

	if err := payload.Validate(); err != nil {
		return RenderError(ctx, wrapValidationError(err))
	}

	book := &Book{
		ID:            uuid.New(),
		UserID:        &user.ID,
		Title:         payload.Title,
		Author:        payload.Author,
		Publisher:     payload.Publisher,
		PublishedDate: payload.PublishedDate,
		PageCount:     payload.PageCount,
		Language:      payload.Language,
	}

	created, err := b.books.Create(ctx.Context(), book)
	if err != nil {
		b.logger.Error("book create", "error", err)
		return RenderError(ctx, err)
	}

	return ctx.JSON(http.StatusCreated, created)
}

// BookUpdatePayload carries the updatable fields, all optional
type BookUpdatePayload struct {
	Title         string `json:"title"`
	Author        string `json:"author"`
	Publisher     string `json:"publisher"`
	PublishedDate string `json:"published_date"`
	PageCount     int    `json:"page_count"`
	Language      string `json:"language"`
}

// Validate will validate the payload
func (r BookUpdatePayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Length(1, 200)),
		validation.Field(&r.Author, validation.Length(1, 200)),
		validation.Field(&r.Publisher, validation.Length(0, 200)),
		validation.Field(&r.PublishedDate, validation.Date("2006-01-02")),
		validation.Field(&r.PageCount, validation.Min(1)),
		validation.Field(&r.Language, validation.Length(0, 30)),
	)
}

// Update modifies a book. Only the owner or an admin may do so.
func (b *BooksController) Update(ctx router.Context) error {
	user, ok := GetRouterUser(ctx)
	if !ok {
		return RenderError(ctx, ErrCredentialsMissing)
	}

	bookID, err := paramUUID(ctx, "book_uid")
	if err != nil {
		return RenderError(ctx, err)
	}

	payload := new(BookUpdatePayload)

	if err := ctx.Bind(payload); err != nil {
		b.logger.Error("book update parse payload", "error", err)
		return RenderError(ctx, wrapBindError(err))
	}

	if err := payload.Validate(); err != nil {
		return RenderError(ctx, wrapValidationError(err))
	}

	book, err := b.books.GetByID(ctx.Context(), bookID)
	if err != nil {
		return RenderError(ctx, err)
	}

	if !canModify(user, book.UserID) {
		return RenderError(ctx, ErrInsufficientPermission)
	}

	if payload.Title != "" {
		book.Title = payload.Title
	}
	if payload.Author != "" {
		book.Author = payload.Author
	}
	if payload.Publisher != "" {
		book.Publisher = payload.Publisher
	}
	if payload.PublishedDate != "" {
		book.PublishedDate = payload.PublishedDate
	}
	if payload.PageCount > 0 {
		book.PageCount = payload.PageCount
	}
	if payload.Language != "" {
		book.Language = payload.Language
	}

	updated, err := b.books.Update(ctx.Context(), book)
	if err != nil {
		b.logger.Error("book update", "error", err)
		return RenderError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, updated)
}

// Delete removes a book. Only the owner or an admin may do so.
func (b *BooksController) Delete(ctx router.Context) error {
	user, ok := GetRouterUser(ctx)
	if !ok {
		return RenderError(ctx, ErrCredentialsMissing)
	}

	bookID, err := paramUUID(ctx, "book_uid")
	if err != nil {
		return RenderError(ctx, err)
	}

	book, err := b.books.GetByID(ctx.Context(), bookID)
	if err != nil {
		return RenderError(ctx, err)
	}

	if !canModify(user, book.UserID) {
		return RenderError(ctx, ErrInsufficientPermission)
	}

	if err := b.books.Delete(ctx.Context(), bookID); err != nil {
		b.logger.Error("book delete", "error", err)
		return RenderError(ctx, err)
	}

	return ctx.Status(http.StatusNoContent).SendString("")
}

func canModify(user *User, ownerID *uuid.UUID) bool {
	if user == nil {
		return false
	}
	if user.Role == RoleAdmin {
		return true
	}
	return ownerID != nil && *ownerID == user.ID
}

func paramUUID(ctx router.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Param(name))
	if err != nil {
		return uuid.Nil, errors.Wrap(err, errors.CategoryBadInput, "Invalid identifier").
			WithTextCode(TextCodeValidationError).
			WithCode(errors.CodeBadRequest)
	}
	return id, nil
}

func queryInt(ctx router.Context, name string, def int) int {
	raw := ctx.Query(name, "")
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return val
}
