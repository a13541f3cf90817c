//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"strings"
	"time"
)

// EventCategory groups events on the public calendar.
type EventCategory string

const (
	EventCategoryAcademic   EventCategory = "academic"
	EventCategoryIslamic    EventCategory = "islamic"
	EventCategoryEvent      EventCategory = "event"
	EventCategoryConference EventCategory = "conference"
)

// EventCategories lists every category in display order.
func EventCategories() []EventCategory {
	return []EventCategory{EventCategoryAcademic, EventCategoryIslamic, EventCategoryEvent, EventCategoryConference}
}

// ParseEventCategory normalizes value and reports whether it is a known category.
func ParseEventCategory(value string) (EventCategory, bool) {
	c := EventCategory(strings.ToLower(strings.TrimSpace(value)))
	for _, known := range EventCategories() {
		if c == known {
			return c, true
		}
	}
	return "", false
}

// Event is a calendar entry.
type Event struct {
	ID               string        `json:"id"                          db:"id"`
	TitleEN          string        `json:"title_en"                    db:"title_en"`
	TitleID          *string       `json:"title_id,omitempty"          db:"title_id"`
	DescriptionEN    *string       `json:"description_en,omitempty"    db:"description_en"`
	DescriptionID    *string       `json:"description_id,omitempty"    db:"description_id"`
	StartDate        time.Time     `json:"start_date"                  db:"start_date"`
	EndDate          *time.Time    `json:"end_date,omitempty"          db:"end_date"`
	Category         EventCategory `json:"category"                    db:"category"`
	Type             *string       `json:"type,omitempty"              db:"type"`
	Location         *string       `json:"location,omitempty"          db:"location"`
	RegistrationLink *string       `json:"registration_link,omitempty" db:"registration_link"`
	IsRecurring      bool          `json:"is_recurring"                db:"is_recurring"`
	RecurrenceRule   *string       `json:"recurrence_rule,omitempty"   db:"recurrence_rule"`
	Color            *string       `json:"color,omitempty"             db:"color"`
	CreatedAt        time.Time     `json:"created_at"                  db:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"                  db:"updated_at"`
}

// Title returns the title in the requested locale.
func (e *Event) Title(l Locale) string { return Localized(l, e.TitleEN, e.TitleID) }

// Description returns the description in the requested locale.
func (e *Event) Description(l Locale) string {
	return Localized(l, deref(e.DescriptionEN), e.DescriptionID)
}

// EventInput is the admin form payload for creating or replacing an event.
type EventInput struct {
	TitleEN          string        `form:"title_en"          validate:"required,max=200"`
	TitleID          string        `form:"title_id"          validate:"max=200"`
	DescriptionEN    string        `form:"description_en"`
	DescriptionID    string        `form:"description_id"`
	StartDate        time.Time     `form:"start_date"        validate:"required"`
	EndDate          *time.Time    `form:"end_date"`
	Category         EventCategory `form:"category"          validate:"required,oneof=academic islamic event conference"`
	Type             string        `form:"type"              validate:"max=50"`
	Location         string        `form:"location"          validate:"max=200"`
	RegistrationLink string        `form:"registration_link" validate:"omitempty,url,startswith=https://"`
	IsRecurring      bool          `form:"is_recurring"`
	RecurrenceRule   string        `form:"recurrence_rule"   validate:"required_if=IsRecurring true,max=200"`
	Color            string        `form:"color"             validate:"omitempty,hexcolor"`
}

// Validate normalizes and validates the input.
func (in *EventInput) Validate() error {
	in.TitleEN = strings.TrimSpace(in.TitleEN)
	in.RegistrationLink = strings.TrimSpace(in.RegistrationLink)
	in.Category = EventCategory(strings.ToLower(strings.TrimSpace(string(in.Category))))
	if !in.IsRecurring {
		in.RecurrenceRule = ""
	}
	err := ValidateStruct(in)
	if in.EndDate != nil && !in.StartDate.IsZero() && in.EndDate.Before(in.StartDate) {
		fe, ok := AsFieldErrors(err)
		if !ok {
			if err != nil {
				return err
			}
			fe = FieldErrors{}
		}
		fe["end_date"] = "End must not be before start."
		return fe
	}
	return err
}

// Nullable returns the optional text columns in insert order:
// title_id, description_en, description_id, type, location, registration_link, recurrence_rule, color.
func (in *EventInput) Nullable() []*string {
	return []*string{
		optional(in.TitleID),
		optional(in.DescriptionEN),
		optional(in.DescriptionID),
		optional(in.Type),
		optional(in.Location),
		optional(in.RegistrationLink),
		optional(in.RecurrenceRule),
		optional(in.Color),
	}
}

// InputFromEvent builds a form payload from an existing event for editing.
func InputFromEvent(e *Event) EventInput {
	return EventInput{
		TitleEN:          e.TitleEN,
		TitleID:          deref(e.TitleID),
		DescriptionEN:    deref(e.DescriptionEN),
		DescriptionID:    deref(e.DescriptionID),
		StartDate:        e.StartDate,
		EndDate:          e.EndDate,
		Category:         e.Category,
		Type:             deref(e.Type),
		Location:         deref(e.Location),
		RegistrationLink: deref(e.RegistrationLink),
		IsRecurring:      e.IsRecurring,
		RecurrenceRule:   deref(e.RecurrenceRule),
		Color:            deref(e.Color),
	}
}
