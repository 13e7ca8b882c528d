package domain

import "strings"

// Language identifies one of the supported interface languages.
type Language string

const (
	English   Language = "english"
	Hindi     Language = "hindi"
	Telugu    Language = "telugu"
	Kannada   Language = "kannada"
	Malayalam Language = "malayalam"
	Tamil     Language = "tamil"
)

// DefaultLanguage is used until the visitor picks one.
const DefaultLanguage = English

// Languages lists the supported languages in display order.
var Languages = []Language{English, Hindi, Telugu, Kannada, Malayalam, Tamil}

// ParseLanguage normalizes s and reports whether it names a supported language.
func ParseLanguage(s string) (Language, bool) {
	lang := Language(strings.ToLower(strings.TrimSpace(s)))
	for _, l := range Languages {
		if l == lang {
			return l, true
		}
	}
	return DefaultLanguage, false
}
