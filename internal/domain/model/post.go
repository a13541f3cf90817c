//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"strings"
	"time"
)

// PostStatus is the publication state of a post.
type PostStatus string

const (
	PostStatusDraft     PostStatus = "draft"
	PostStatusPublished PostStatus = "published"
)

// Valid reports whether the status is supported.
func (s PostStatus) Valid() bool {
	return s == PostStatusDraft || s == PostStatusPublished
}

// Post is a bilingual news article.
type Post struct {
	ID            string     `json:"id"                   db:"id"`
	TitleEN       string     `json:"title_en"             db:"title_en"`
	TitleID       *string    `json:"title_id,omitempty"   db:"title_id"`
	SlugEN        string     `json:"slug_en"              db:"slug_en"`
	SlugID        *string    `json:"slug_id,omitempty"    db:"slug_id"`
	ContentEN     string     `json:"content_en"           db:"content_en"`
	ContentID     *string    `json:"content_id,omitempty" db:"content_id"`
	ExcerptEN     *string    `json:"excerpt_en,omitempty" db:"excerpt_en"`
	ExcerptID     *string    `json:"excerpt_id,omitempty" db:"excerpt_id"`
	FeaturedImage *string    `json:"featured_image"       db:"featured_image"`
	Category      string     `json:"category"             db:"category"`
	Status        PostStatus `json:"status"               db:"status"`
	AuthorID      *string    `json:"author_id,omitempty"  db:"author_id"`
	PublishedAt   *time.Time `json:"published_at"         db:"published_at"`
	IsFeatured    bool       `json:"is_featured"          db:"is_featured"`
	ViewsCount    int        `json:"views_count"          db:"views_count"`
	CreatedAt     time.Time  `json:"created_at"           db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"           db:"updated_at"`
}

// Title returns the title in the requested locale.
func (p *Post) Title(l Locale) string { return Localized(l, p.TitleEN, p.TitleID) }

// Content returns the body in the requested locale.
func (p *Post) Content(l Locale) string { return Localized(l, p.ContentEN, p.ContentID) }

// Excerpt returns the excerpt in the requested locale, or an empty string.
func (p *Post) Excerpt(l Locale) string {
	en := ""
	if p.ExcerptEN != nil {
		en = *p.ExcerptEN
	}
	return Localized(l, en, p.ExcerptID)
}

// Slug returns the slug in the requested locale.
func (p *Post) Slug(l Locale) string { return Localized(l, p.SlugEN, p.SlugID) }

// PostInput is the admin form payload for creating or replacing a post.
type PostInput struct {
	TitleEN       string     `form:"title_en"       validate:"required,max=200"`
	TitleID       string     `form:"title_id"       validate:"max=200"`
	SlugEN        string     `form:"slug_en"        validate:"required,max=200,slug"`
	SlugID        string     `form:"slug_id"        validate:"omitempty,max=200,slug"`
	ContentEN     string     `form:"content_en"     validate:"required"`
	ContentID     string     `form:"content_id"`
	ExcerptEN     string     `form:"excerpt_en"     validate:"max=500"`
	ExcerptID     string     `form:"excerpt_id"     validate:"max=500"`
	FeaturedImage string     `form:"featured_image" validate:"omitempty,url"`
	Category      string     `form:"category"       validate:"required,max=50"`
	Status        PostStatus `form:"status"         validate:"required,oneof=draft published"`
	IsFeatured    bool       `form:"is_featured"`
	AuthorID      *string    `form:"-"`
}

// Normalize trims fields, lowercases the category and derives a missing English slug from the title.
func (in *PostInput) Normalize() {
	in.TitleEN = strings.TrimSpace(in.TitleEN)
	in.TitleID = strings.TrimSpace(in.TitleID)
	in.SlugEN = strings.TrimSpace(in.SlugEN)
	in.SlugID = strings.TrimSpace(in.SlugID)
	in.Category = strings.ToLower(strings.TrimSpace(in.Category))
	in.FeaturedImage = strings.TrimSpace(in.FeaturedImage)
	if in.SlugEN == "" {
		in.SlugEN = Slugify(in.TitleEN)
	}
	if in.SlugID == "" && in.TitleID != "" {
		in.SlugID = Slugify(in.TitleID)
	}
	if in.Status == "" {
		in.Status = PostStatusDraft
	}
}

// Validate normalizes and validates the input.
func (in *PostInput) Validate() error {
	in.Normalize()
	return ValidateStruct(in)
}

// Nullable returns the optional columns as nullable values in insert order:
// title_id, slug_id, content_id, excerpt_en, excerpt_id, featured_image.
func (in *PostInput) Nullable() []*string {
	return []*string{
		optional(in.TitleID),
		optional(in.SlugID),
		optional(in.ContentID),
		optional(in.ExcerptEN),
		optional(in.ExcerptID),
		optional(in.FeaturedImage),
	}
}

// InputFromPost builds a form payload from an existing post for editing.
func InputFromPost(p *Post) PostInput {
	in := PostInput{
		TitleEN:    p.TitleEN,
		SlugEN:     p.SlugEN,
		ContentEN:  p.ContentEN,
		Category:   p.Category,
		Status:     p.Status,
		IsFeatured: p.IsFeatured,
		AuthorID:   p.AuthorID,
	}
	in.TitleID = deref(p.TitleID)
	in.SlugID = deref(p.SlugID)
	in.ContentID = deref(p.ContentID)
	in.ExcerptEN = deref(p.ExcerptEN)
	in.ExcerptID = deref(p.ExcerptID)
	in.FeaturedImage = deref(p.FeaturedImage)
	return in
}

// PostCounts summarizes posts for the dashboard.
type PostCounts struct {
	Total  int `db:"total"`
	Drafts int `db:"drafts"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
