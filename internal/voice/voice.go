// Package voice binds the interface language to speech synthesis and
// recognition capabilities supplied by the client.
package voice

import (
	"strings"

	"github.com/ashureev/swasthya-bandhu/internal/domain"
	"golang.org/x/text/language"
)

// DefaultLocale is used for unknown languages.
const DefaultLocale = "en-IN"

var locales = map[domain.Language]string{
	domain.English:   "en-IN",
	domain.Hindi:     "hi-IN",
	domain.Telugu:    "te-IN",
	domain.Kannada:   "kn-IN",
	domain.Malayalam: "ml-IN",
	domain.Tamil:     "ta-IN",
}

// LocaleFor returns the BCP-47 locale for lang.
func LocaleFor(lang domain.Language) string {
	if code, ok := locales[lang]; ok {
		return code
	}
	return DefaultLocale
}

// Voice is one synthesized voice offered by the platform.
type Voice struct {
	Name string `json:"name"`
	Lang string `json:"lang"`
}

// qualityHints are name fragments that usually mark a neural or female voice.
var qualityHints = []string{"female", "woman", "zira", "synthesizer", "neural", "wavenet"}

func soundsHighQuality(name string) bool {
	lowered := strings.ToLower(name)
	for _, h := range qualityHints {
		if strings.Contains(lowered, h) {
			return true
		}
	}
	return false
}

// matchesLocale compares language and region; a voice tagged "en_IN" matches
// "en-IN" but a bare "en" does not.
func matchesLocale(voiceLang, target string) bool {
	vt, verr := language.Parse(voiceLang)
	tt, terr := language.Parse(target)
	if verr != nil || terr != nil {
		return strings.HasPrefix(strings.ToLower(voiceLang), strings.ToLower(target))
	}
	vb, _, vr := vt.Raw()
	tb, _, tr := tt.Raw()
	return vb == tb && vr == tr
}

// Select picks the best voice for locale. ok is false when voices is empty.
func Select(voices []Voice, locale string) (Voice, bool) {
	if len(voices) == 0 {
		return Voice{}, false
	}
	for _, v := range voices {
		if matchesLocale(v.Lang, locale) && soundsHighQuality(v.Name) {
			return v, true
		}
	}
	for _, v := range voices {
		if matchesLocale(v.Lang, locale) {
			return v, true
		}
	}
	for _, v := range voices {
		if soundsHighQuality(v.Name) {
			return v, true
		}
	}
	return voices[0], true
}
