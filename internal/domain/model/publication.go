//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"fmt"
	"strings"
	"time"
)

// Publication is an issue of the organization's bulletin or journal.
type Publication struct {
	ID            string    `json:"id"                       db:"id"`
	TitleEN       string    `json:"title_en"                 db:"title_en"`
	TitleID       *string   `json:"title_id,omitempty"       db:"title_id"`
	DescriptionEN *string   `json:"description_en,omitempty" db:"description_en"`
	DescriptionID *string   `json:"description_id,omitempty" db:"description_id"`
	VolumeNumber  *int      `json:"volume_number,omitempty"  db:"volume_number"`
	IssueNumber   *int      `json:"issue_number,omitempty"   db:"issue_number"`
	PublishDate   time.Time `json:"publish_date"             db:"publish_date"`
	CoverImage    *string   `json:"cover_image,omitempty"    db:"cover_image"`
	PDFURL        string    `json:"pdf_url"                  db:"pdf_url"`
	FileSize      *int64    `json:"file_size,omitempty"      db:"file_size"`
	DownloadCount int       `json:"download_count"           db:"download_count"`
	CreatedAt     time.Time `json:"created_at"               db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"               db:"updated_at"`
}

// Title returns the title in the requested locale.
func (p *Publication) Title(l Locale) string { return Localized(l, p.TitleEN, p.TitleID) }

// Description returns the description in the requested locale.
func (p *Publication) Description(l Locale) string {
	return Localized(l, deref(p.DescriptionEN), p.DescriptionID)
}

// Issue renders the volume/issue label, e.g. "Vol. 3 No. 2".
func (p *Publication) Issue() string {
	switch {
	case p.VolumeNumber != nil && p.IssueNumber != nil:
		return fmt.Sprintf("Vol. %d No. %d", *p.VolumeNumber, *p.IssueNumber)
	case p.VolumeNumber != nil:
		return fmt.Sprintf("Vol. %d", *p.VolumeNumber)
	default:
		return ""
	}
}

// HumanSize renders FileSize in KB or MB.
func (p *Publication) HumanSize() string {
	if p.FileSize == nil || *p.FileSize <= 0 {
		return ""
	}
	const mb = 1 << 20
	if *p.FileSize >= mb {
		return fmt.Sprintf("%.1f MB", float64(*p.FileSize)/mb)
	}
	return fmt.Sprintf("%d KB", (*p.FileSize+1023)/1024)
}

// PublicationInput is the admin form payload for creating or replacing a publication.
type PublicationInput struct {
	TitleEN       string    `form:"title_en"       validate:"required,max=200"`
	TitleID       string    `form:"title_id"       validate:"max=200"`
	DescriptionEN string    `form:"description_en"`
	DescriptionID string    `form:"description_id"`
	VolumeNumber  *int      `form:"volume_number"  validate:"omitempty,gte=1"`
	IssueNumber   *int      `form:"issue_number"   validate:"omitempty,gte=1"`
	PublishDate   time.Time `form:"publish_date"   validate:"required"`
	CoverImage    string    `form:"cover_image"    validate:"omitempty,url"`
	PDFURL        string    `form:"pdf_url"        validate:"required,url"`
	FileSize      *int64    `form:"file_size"      validate:"omitempty,gte=0"`
}

// Validate normalizes and validates the input.
func (in *PublicationInput) Validate() error {
	in.TitleEN = strings.TrimSpace(in.TitleEN)
	in.PDFURL = strings.TrimSpace(in.PDFURL)
	in.CoverImage = strings.TrimSpace(in.CoverImage)
	return ValidateStruct(in)
}

// Nullable returns the optional text columns in insert order:
// title_id, description_en, description_id, cover_image.
func (in *PublicationInput) Nullable() []*string {
	return []*string{
		optional(in.TitleID),
		optional(in.DescriptionEN),
		optional(in.DescriptionID),
		optional(in.CoverImage),
	}
}

// InputFromPublication builds a form payload from an existing publication for editing.
func InputFromPublication(p *Publication) PublicationInput {
	return PublicationInput{
		TitleEN:       p.TitleEN,
		TitleID:       deref(p.TitleID),
		DescriptionEN: deref(p.DescriptionEN),
		DescriptionID: deref(p.DescriptionID),
		VolumeNumber:  p.VolumeNumber,
		IssueNumber:   p.IssueNumber,
		PublishDate:   p.PublishDate,
		CoverImage:    deref(p.CoverImage),
		PDFURL:        p.PDFURL,
		FileSize:      p.FileSize,
	}
}
