//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"fmt"
	"strings"
	"time"
)

// Locale selects the language variant of bilingual content.
type Locale string

const (
	LocaleEN Locale = "en"
	LocaleID Locale = "id"
)

// ParseLocale maps a query or cookie value to a Locale, defaulting to English.
func ParseLocale(s string) Locale {
	if strings.EqualFold(strings.TrimSpace(s), string(LocaleID)) {
		return LocaleID
	}
	return LocaleEN
}

// Localized returns the Indonesian variant when requested and present, otherwise English.
func Localized(l Locale, en string, id *string) string {
	if l == LocaleID && id != nil && strings.TrimSpace(*id) != "" {
		return *id
	}
	return en
}

var indonesianMonths = [...]string{
	"Januari", "Februari", "Maret", "April", "Mei", "Juni",
	"Juli", "Agustus", "September", "Oktober", "November", "Desember",
}

// FormatDate renders a long-form date in the given locale, e.g. "March 5, 2025" or "5 Maret 2025".
func FormatDate(t time.Time, l Locale) string {
	if t.IsZero() {
		return ""
	}
	if l == LocaleID {
		return fmt.Sprintf("%d %s %d", t.Day(), indonesianMonths[t.Month()-1], t.Year())
	}
	return t.Format("January 2, 2006")
}
