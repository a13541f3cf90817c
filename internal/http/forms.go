package httpx

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/mpo-id/portal/internal/domain/model"
)

const (
	dateTimeLayout = "2006-01-02T15:04"
	dateLayout     = "2006-01-02"
)

// FormMode represents the mode of a form (create or edit).
type FormMode string

const (
	FormModeCreate FormMode = "create"
	FormModeEdit   FormMode = "edit"
)

// formView is the data behind every admin editor.
type formView[In any] struct {
	Mode   FormMode
	ID     string
	Action string
	Input  In
	Extra  any
}

// formReader collects parse errors per field while reading a posted form.
type formReader struct {
	r    *http.Request
	errs map[string]string
}

func newFormReader(r *http.Request) *formReader {
	return &formReader{r: r, errs: map[string]string{}}
}

func (f *formReader) str(name string) string { return strings.TrimSpace(f.r.PostFormValue(name)) }

func (f *formReader) raw(name string) string { return f.r.PostFormValue(name) }

func (f *formReader) checkbox(name string) bool {
	switch f.r.PostFormValue(name) {
	case "on", "true", "1":
		return true
	}
	return false
}

func (f *formReader) optInt(name string) *int {
	v := f.str(name)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		f.errs[name] = "Enter a whole number."
		return nil
	}
	return &n
}

func (f *formReader) optInt64(name string) *int64 {
	v := f.str(name)
	if v == "" {
		return nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		f.errs[name] = "Enter a whole number."
		return nil
	}
	return &n
}

func (f *formReader) time(name, layout string) time.Time {
	v := f.str(name)
	if v == "" {
		return time.Time{}
	}
	t, err := time.ParseInLocation(layout, v, time.Local)
	if err != nil {
		f.errs[name] = "Enter a valid date."
		return time.Time{}
	}
	return t
}

func (f *formReader) optTime(name, layout string) *time.Time {
	t := f.time(name, layout)
	if t.IsZero() {
		return nil
	}
	return &t
}

func parsePostForm(r *http.Request) (model.PostInput, map[string]string) {
	f := newFormReader(r)
	return model.PostInput{
		TitleEN:       f.str("title_en"),
		TitleID:       f.str("title_id"),
		SlugEN:        f.str("slug_en"),
		SlugID:        f.str("slug_id"),
		ContentEN:     f.raw("content_en"),
		ContentID:     f.raw("content_id"),
		ExcerptEN:     f.str("excerpt_en"),
		ExcerptID:     f.str("excerpt_id"),
		FeaturedImage: f.str("featured_image"),
		Category:      f.str("category"),
		Status:        model.PostStatus(f.str("status")),
		IsFeatured:    f.checkbox("is_featured"),
	}, f.errs
}

func parseEventForm(r *http.Request) (model.EventInput, map[string]string) {
	f := newFormReader(r)
	return model.EventInput{
		TitleEN:          f.str("title_en"),
		TitleID:          f.str("title_id"),
		DescriptionEN:    f.raw("description_en"),
		DescriptionID:    f.raw("description_id"),
		StartDate:        f.time("start_date", dateTimeLayout),
		EndDate:          f.optTime("end_date", dateTimeLayout),
		Category:         model.EventCategory(f.str("category")),
		Type:             f.str("type"),
		Location:         f.str("location"),
		RegistrationLink: f.str("registration_link"),
		IsRecurring:      f.checkbox("is_recurring"),
		RecurrenceRule:   f.str("recurrence_rule"),
		Color:            f.str("color"),
	}, f.errs
}

func parsePublicationForm(r *http.Request) (model.PublicationInput, map[string]string) {
	f := newFormReader(r)
	return model.PublicationInput{
		TitleEN:       f.str("title_en"),
		TitleID:       f.str("title_id"),
		DescriptionEN: f.raw("description_en"),
		DescriptionID: f.raw("description_id"),
		VolumeNumber:  f.optInt("volume_number"),
		IssueNumber:   f.optInt("issue_number"),
		PublishDate:   f.time("publish_date", dateLayout),
		CoverImage:    f.str("cover_image"),
		PDFURL:        f.str("pdf_url"),
		FileSize:      f.optInt64("file_size"),
	}, f.errs
}
