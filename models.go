package bookly

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// UserRole is the user's role
type UserRole string

const (
	// RoleUser is the default role for new accounts
	RoleUser UserRole = "user"
	// RoleAdmin can manage any book or review
	RoleAdmin UserRole = "admin"
)

// User is the user model
type User struct {
	bun.BaseModel  `bun:"table:users,alias:usr"`
	ID             uuid.UUID      `bun:"id,pk,nullzero,type:uuid" json:"uid,omitempty"`
	Role           UserRole       `bun:"user_role,notnull" json:"role,omitempty"`
	FirstName      string         `bun:"first_name,notnull" json:"first_name,omitempty"`
	LastName       string         `bun:"last_name,notnull" json:"last_name,omitempty"`
	Username       string         `bun:"username,notnull,unique" json:"username,omitempty"`
	Email          string         `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash   string         `bun:"password_hash" json:"-"`
	EmailValidated bool           `bun:"is_verified" json:"is_verified"`
	LoginAttempts  int            `bun:"login_attempts" json:"-"`
	LoginAttemptAt *time.Time     `bun:"login_attempt_at" json:"-"`
	LoggedInAt     *time.Time     `bun:"loggedin_at" json:"-"`
	Metadata       map[string]any `bun:"metadata" json:"metadata,omitempty"`
	Books          []*Book        `bun:"rel:has-many,join:id=user_id" json:"books,omitempty"`
	Reviews        []*Review      `bun:"rel:has-many,join:id=user_id" json:"reviews,omitempty"`
	ResetedAt      *time.Time     `bun:"reseted_at,nullzero" json:"-"`
	CreatedAt      *time.Time     `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt      *time.Time     `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt      *time.Time     `bun:"deleted_at,soft_delete,nullzero" json:"-"`
}

// AddMetadata will append information to a metadata attribute
func (u *User) AddMetadata(key string, val any) *User {
	if u.Metadata == nil {
		u.Metadata = make(map[string]interface{})
	}
	u.Metadata[key] = val
	return u
}

// Book is the book model
type Book struct {
	bun.BaseModel `bun:"table:books,alias:bk"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"uid,omitempty"`
	UserID        *uuid.UUID `bun:"user_id,type:uuid" json:"user_uid,omitempty"`
	User          *User      `bun:"rel:belongs-to,join:user_id=id" json:"user,omitempty"`
	Title         string     `bun:"title,notnull" json:"title,omitempty"`
	Author        string     `bun:"author,notnull" json:"author,omitempty"`
	Publisher     string     `bun:"publisher" json:"publisher,omitempty"`
	PublishedDate string     `bun:"published_date" json:"published_date,omitempty"`
	PageCount     int        `bun:"page_count" json:"page_count,omitempty"`
	Language      string     `bun:"language" json:"language,omitempty"`
	Reviews       []*Review  `bun:"rel:has-many,join:id=book_id" json:"reviews,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"-"`
}

// Review is a user's review of a book
type Review struct {
	bun.BaseModel `bun:"table:reviews,alias:rvw"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"uid,omitempty"`
	UserID        *uuid.UUID `bun:"user_id,type:uuid" json:"user_uid,omitempty"`
	User          *User      `bun:"rel:belongs-to,join:user_id=id" json:"user,omitempty"`
	BookID        *uuid.UUID `bun:"book_id,type:uuid" json:"book_uid,omitempty"`
	Book          *Book      `bun:"rel:belongs-to,join:book_id=id" json:"book,omitempty"`
	Rating        int        `bun:"rating,notnull" json:"rating"`
	ReviewText    string     `bun:"review_text,notnull" json:"review_text,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"-"`
}
